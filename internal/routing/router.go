package routing

import (
	"context"
	"log"
	"time"

	"routing-engine/internal/clmm"
	"routing-engine/internal/graph"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// RouterConfig tunes the router facade.
type RouterConfig struct {
	EnableCache     bool
	EnableParallel  bool
	CacheTTLSeconds uint64
	MaxRoutesCached int
	MaxQuotesCached int
	// MaxPriceImpact rejects routes whose impact exceeds this percentage.
	// Zero disables the guard.
	MaxPriceImpact float64
}

// DefaultRouterConfig returns the production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		EnableCache:     true,
		EnableParallel:  true,
		CacheTTLSeconds: 15,
		MaxRoutesCached: 1000,
		MaxQuotesCached: 2000,
	}
}

// Router is the engine facade: strategy selection plus cache I/O. All public
// operations complete without blocking on I/O; context is honoured at search
// checkpoints.
type Router struct {
	graph  *graph.PoolGraph
	cache  *EnhancedRouteCache
	config RouterConfig
}

// NewRouter creates a router with the default configuration.
func NewRouter(g *graph.PoolGraph) *Router {
	return NewRouterWithConfig(g, DefaultRouterConfig())
}

// NewRouterWithConfig creates a router with an explicit configuration.
func NewRouterWithConfig(g *graph.PoolGraph, config RouterConfig) *Router {
	ttl := time.Duration(config.CacheTTLSeconds) * time.Second
	return &Router{
		graph:  g,
		cache:  NewEnhancedRouteCache(config.MaxRoutesCached, config.MaxQuotesCached, ttl),
		config: config,
	}
}

// FindRoute finds the best route for a swap. maxHops <= 0 selects the
// engine default. Strategy: single-hop only for maxHops 1, parallel
// fan-out for deeper searches when enabled, otherwise the better of
// single-hop and best-first.
func (r *Router) FindRoute(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int, maxHops int) (*Route, error) {
	if maxHops <= 0 {
		maxHops = clmm.MaxHops
	}
	start := time.Now()

	if r.config.EnableCache {
		if cached, ok := r.cache.GetRoute(tokenIn, tokenOut, amountIn, maxHops); ok {
			log.Printf("Router: route cache hit in %v", time.Since(start))
			return cached, nil
		}
	}

	var route *Route
	var err error

	switch {
	case maxHops == 1:
		route, err = FindBestSingleHopRoute(r.graph, tokenIn, tokenOut, amountIn)
		if err != nil {
			return nil, err
		}
	case r.config.EnableParallel && maxHops > 2:
		route = FindBestRouteParallel(ctx, r.graph, tokenIn, tokenOut, amountIn, maxHops)
		if route == nil {
			return nil, &NoRouteFoundError{From: tokenIn, To: tokenOut}
		}
	default:
		singleHop, singleErr := FindBestSingleHopRoute(r.graph, tokenIn, tokenOut, amountIn)
		multiHop, multiErr := FindBestMultiHopRoute(ctx, r.graph, tokenIn, tokenOut, amountIn, maxHops)

		switch {
		case singleErr == nil && multiErr == nil:
			if multiHop.TotalAmountOut.Cmp(singleHop.TotalAmountOut) > 0 {
				route = multiHop
			} else {
				route = singleHop
			}
		case singleErr == nil:
			route = singleHop
		case multiErr == nil:
			route = multiHop
		default:
			return nil, multiErr
		}
	}

	if r.config.MaxPriceImpact > 0 && route.PriceImpact > r.config.MaxPriceImpact {
		return nil, &PriceImpactTooHighError{Impact: route.PriceImpact}
	}

	if r.config.EnableCache {
		r.cache.InsertRoute(tokenIn, tokenOut, amountIn, maxHops, route)
	}

	log.Printf("Router: route found in %v (%d hops, out=%s)", time.Since(start), route.HopCount(), route.TotalAmountOut.Dec())
	return route, nil
}

// FindSplitRoute finds the best allocation of the input across up to
// maxSplits routes. Small amounts short-circuit to a single route.
func (r *Router) FindSplitRoute(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int, maxHops, maxSplits int) (*SplitRoute, error) {
	if maxHops <= 0 {
		maxHops = clmm.MaxHops
	}
	if maxSplits <= 0 {
		maxSplits = clmm.MaxSplits
	}
	start := time.Now()

	if r.config.EnableCache {
		if cached, ok := r.cache.GetSplitRoute(tokenIn, tokenOut, amountIn, maxHops); ok {
			log.Printf("Router: split route cache hit in %v", time.Since(start))
			return cached, nil
		}
	}

	// Below this size the gas overhead of extra submissions outweighs the gain.
	if amountIn.Cmp(MinSplitAmount) < 0 {
		route, err := r.FindRoute(ctx, tokenIn, tokenOut, amountIn, maxHops)
		if err != nil {
			return nil, err
		}
		return SingleSplitRoute(route), nil
	}

	topRoutes := FindTopRoutes(ctx, r.graph, tokenIn, tokenOut, amountIn, maxHops, maxSplits*2)
	if len(topRoutes) == 0 {
		route, err := r.FindRoute(ctx, tokenIn, tokenOut, amountIn, maxHops)
		if err != nil {
			return nil, err
		}
		return SingleSplitRoute(route), nil
	}

	splitRoute, err := OptimizeSplitRoute(topRoutes, amountIn)
	if err != nil {
		return nil, err
	}

	if r.config.EnableCache {
		r.cache.InsertSplitRoute(tokenIn, tokenOut, amountIn, maxHops, splitRoute)
	}

	log.Printf("Router: split route found in %v (%d ways)", time.Since(start), splitRoute.SplitCount())
	return splitRoute, nil
}

// GetQuote wraps the best single route in a quote envelope. Slippage is a
// percentage (0.5 = 0.5%).
func (r *Router) GetQuote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int, slippage float64, maxHops int) (*Quote, error) {
	if maxHops <= 0 {
		maxHops = clmm.MaxHops
	}
	start := time.Now()

	if r.config.EnableCache {
		if cached, ok := r.cache.GetQuote(tokenIn, tokenOut, amountIn, slippage, maxHops); ok {
			log.Printf("Router: quote cache hit in %v", time.Since(start))
			return cached, nil
		}
	}

	route, err := r.FindRoute(ctx, tokenIn, tokenOut, amountIn, maxHops)
	if err != nil {
		return nil, err
	}
	quote := QuoteFromRoute(SingleSplitRoute(route), slippage)

	if r.config.EnableCache {
		r.cache.InsertQuote(tokenIn, tokenOut, amountIn, slippage, maxHops, quote)
	}

	log.Printf("Router: quote generated in %v", time.Since(start))
	return quote, nil
}

// GetSplitQuote wraps the optimised split route in a quote envelope.
func (r *Router) GetSplitQuote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int, slippage float64, maxHops, maxSplits int) (*Quote, error) {
	splitRoute, err := r.FindSplitRoute(ctx, tokenIn, tokenOut, amountIn, maxHops, maxSplits)
	if err != nil {
		return nil, err
	}
	return QuoteFromRoute(splitRoute, slippage), nil
}

// Graph returns the underlying pool graph.
func (r *Router) Graph() *graph.PoolGraph {
	return r.graph
}

// CacheStats returns the router cache statistics.
func (r *Router) CacheStats() CacheStatistics {
	return r.cache.Stats()
}

// ClearCache empties all router caches.
func (r *Router) ClearCache() {
	r.cache.ClearAll()
}
