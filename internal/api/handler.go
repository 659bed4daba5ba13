// Package api exposes the HTTP surface of the routing engine: the health
// check and the quote endpoint.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"routing-engine/internal/cache"
	"routing-engine/internal/graph"
	"routing-engine/internal/routing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

const defaultSlippage = 0.5

// quoteCacheSize bounds the handler-level quote envelope cache.
const quoteCacheSize = 500

// Handler serves the engine's HTTP endpoints.
type Handler struct {
	router     *routing.Router
	graph      *graph.PoolGraph
	quoteCache *cache.LruCache[string, *routing.Quote]
	chainID    uint64
}

// NewHandler creates a handler. ttl bounds the handler-level quote cache.
func NewHandler(router *routing.Router, g *graph.PoolGraph, chainID uint64, ttl time.Duration) *Handler {
	return &Handler{
		router:     router,
		graph:      g,
		quoteCache: cache.NewLruCache[string, *routing.Quote](quoteCacheSize, ttl),
		chainID:    chainID,
	}
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status     string           `json:"status"`
	Version    string           `json:"version"`
	ChainID    uint64           `json:"chainId"`
	GraphStats graph.GraphStats `json:"graphStats"`
}

// QuoteResponse wraps a quote with request bookkeeping.
type QuoteResponse struct {
	Quote     *routing.Quote `json:"quote"`
	Timestamp uint64         `json:"timestamp"`
	Cached    bool           `json:"cached"`
}

// ErrorResponse is the JSON error shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthCheck reports service status and graph freshness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "healthy",
		Version:    Version,
		ChainID:    h.chainID,
		GraphStats: h.graph.Stats(),
	})
}

// GetQuote handles GET /v1/quote.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	tokenInParam := query.Get("tokenIn")
	if !common.IsHexAddress(tokenInParam) {
		writeError(w, http.StatusBadRequest, "invalid tokenIn address: "+tokenInParam)
		return
	}
	tokenOutParam := query.Get("tokenOut")
	if !common.IsHexAddress(tokenOutParam) {
		writeError(w, http.StatusBadRequest, "invalid tokenOut address: "+tokenOutParam)
		return
	}
	tokenIn := common.HexToAddress(tokenInParam)
	tokenOut := common.HexToAddress(tokenOutParam)

	amountIn, err := uint256.FromDecimal(query.Get("amountIn"))
	if err != nil || amountIn.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid amount: "+query.Get("amountIn"))
		return
	}

	slippage := defaultSlippage
	if s := query.Get("slippage"); s != "" {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid slippage: "+s)
			return
		}
		slippage = parsed
	}

	maxHops := 0
	if s := query.Get("maxHops"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid maxHops: "+s)
			return
		}
		maxHops = parsed
	}

	maxSplits := 0
	if s := query.Get("maxSplits"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid maxSplits: "+s)
			return
		}
		maxSplits = parsed
	}

	cacheKey := fmt.Sprintf("%s:%s:%s:%d:%d", tokenIn.Hex(), tokenOut.Hex(), routing.BucketAmount(amountIn), maxHops, maxSplits)
	if cached, ok := h.quoteCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, QuoteResponse{
			Quote:     cached,
			Timestamp: uint64(time.Now().Unix()),
			Cached:    true,
		})
		return
	}

	var quote *routing.Quote
	if maxSplits > 1 {
		quote, err = h.router.GetSplitQuote(r.Context(), tokenIn, tokenOut, amountIn, slippage, maxHops, maxSplits)
	} else {
		quote, err = h.router.GetQuote(r.Context(), tokenIn, tokenOut, amountIn, slippage, maxHops)
	}
	if err != nil {
		log.Printf("API: quote failed for %s -> %s: %v", tokenIn.Hex(), tokenOut.Hex(), err)
		writeRoutingError(w, err)
		return
	}

	h.quoteCache.Insert(cacheKey, quote)

	writeJSON(w, http.StatusOK, QuoteResponse{
		Quote:     quote,
		Timestamp: uint64(time.Now().Unix()),
		Cached:    false,
	})
}

// writeRoutingError maps engine errors to HTTP statuses.
func writeRoutingError(w http.ResponseWriter, err error) {
	var noRoute *routing.NoRouteFoundError
	var invalidAmount *routing.InvalidAmountError
	var invalidToken *routing.InvalidTokenAddressError

	switch {
	case errors.As(err, &noRoute):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalidAmount), errors.As(err, &invalidToken):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("API: failed to encode response: %v", err)
	}
}
