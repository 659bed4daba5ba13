package routing

import (
	"strings"
	"time"

	"routing-engine/internal/cache"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// RouteKey identifies a cached route computation. Amounts are bucketed so
// near-identical requests share an entry.
type RouteKey struct {
	TokenIn      common.Address
	TokenOut     common.Address
	AmountBucket string
	MaxHops      int
}

// QuoteKey extends RouteKey with the slippage setting.
type QuoteKey struct {
	TokenIn      common.Address
	TokenOut     common.Address
	AmountBucket string
	SlippageBps  uint32
	MaxHops      int
}

// EnhancedRouteCache caches routes, split routes and quotes under bucketed
// amount keys to raise the hit rate across near-identical requests.
type EnhancedRouteCache struct {
	routeCache *cache.LruCache[RouteKey, *Route]
	splitCache *cache.LruCache[RouteKey, *SplitRoute]
	quoteCache *cache.LruCache[QuoteKey, *Quote]
}

// CacheStatistics aggregates the per-sub-cache stats.
type CacheStatistics struct {
	RouteStats cache.Stats `json:"routes"`
	SplitStats cache.Stats `json:"splitRoutes"`
	QuoteStats cache.Stats `json:"quotes"`
}

// NewEnhancedRouteCache sizes the route cache at maxRoutes, the split cache
// at half that, and the quote cache at maxQuotes.
func NewEnhancedRouteCache(maxRoutes, maxQuotes int, ttl time.Duration) *EnhancedRouteCache {
	return &EnhancedRouteCache{
		routeCache: cache.NewLruCache[RouteKey, *Route](maxRoutes, ttl),
		splitCache: cache.NewLruCache[RouteKey, *SplitRoute](maxRoutes/2, ttl),
		quoteCache: cache.NewLruCache[QuoteKey, *Quote](maxQuotes, ttl),
	}
}

// GetRoute returns a cached route for the bucketed request, if any.
func (c *EnhancedRouteCache) GetRoute(tokenIn, tokenOut common.Address, amount *uint256.Int, maxHops int) (*Route, bool) {
	route, ok := c.routeCache.Get(routeKey(tokenIn, tokenOut, amount, maxHops))
	if !ok {
		return nil, false
	}
	return route.Clone(), true
}

// InsertRoute caches a route under the bucketed request key.
func (c *EnhancedRouteCache) InsertRoute(tokenIn, tokenOut common.Address, amount *uint256.Int, maxHops int, route *Route) {
	c.routeCache.Insert(routeKey(tokenIn, tokenOut, amount, maxHops), route.Clone())
}

// GetSplitRoute returns a cached split route for the bucketed request.
func (c *EnhancedRouteCache) GetSplitRoute(tokenIn, tokenOut common.Address, amount *uint256.Int, maxHops int) (*SplitRoute, bool) {
	split, ok := c.splitCache.Get(routeKey(tokenIn, tokenOut, amount, maxHops))
	if !ok {
		return nil, false
	}
	return split.Clone(), true
}

// InsertSplitRoute caches a split route under the bucketed request key.
func (c *EnhancedRouteCache) InsertSplitRoute(tokenIn, tokenOut common.Address, amount *uint256.Int, maxHops int, split *SplitRoute) {
	c.splitCache.Insert(routeKey(tokenIn, tokenOut, amount, maxHops), split.Clone())
}

// GetQuote returns a cached quote for the bucketed request.
func (c *EnhancedRouteCache) GetQuote(tokenIn, tokenOut common.Address, amount *uint256.Int, slippage float64, maxHops int) (*Quote, bool) {
	quote, ok := c.quoteCache.Get(quoteKey(tokenIn, tokenOut, amount, slippage, maxHops))
	if !ok {
		return nil, false
	}
	return quote.Clone(), true
}

// InsertQuote caches a quote under the bucketed request key.
func (c *EnhancedRouteCache) InsertQuote(tokenIn, tokenOut common.Address, amount *uint256.Int, slippage float64, maxHops int, quote *Quote) {
	c.quoteCache.Insert(quoteKey(tokenIn, tokenOut, amount, slippage, maxHops), quote.Clone())
}

// ClearExpired opportunistically drops expired entries from all sub-caches.
func (c *EnhancedRouteCache) ClearExpired() {
	c.routeCache.ClearExpired()
	c.splitCache.ClearExpired()
	c.quoteCache.ClearExpired()
}

// ClearAll empties all sub-caches.
func (c *EnhancedRouteCache) ClearAll() {
	c.routeCache.Clear()
	c.splitCache.Clear()
	c.quoteCache.Clear()
}

// Stats returns the per-sub-cache statistics.
func (c *EnhancedRouteCache) Stats() CacheStatistics {
	return CacheStatistics{
		RouteStats: c.routeCache.Stats(),
		SplitStats: c.splitCache.Stats(),
		QuoteStats: c.quoteCache.Stats(),
	}
}

func routeKey(tokenIn, tokenOut common.Address, amount *uint256.Int, maxHops int) RouteKey {
	return RouteKey{
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		AmountBucket: BucketAmount(amount),
		MaxHops:      maxHops,
	}
}

func quoteKey(tokenIn, tokenOut common.Address, amount *uint256.Int, slippage float64, maxHops int) QuoteKey {
	return QuoteKey{
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		AmountBucket: BucketAmount(amount),
		SlippageBps:  uint32(slippage * 100.0),
		MaxHops:      maxHops,
	}
}

// BucketAmount coarsens an amount to its first two significant decimal
// digits, preserving the digit count (98765 -> "98000"). Amounts with at
// most two digits pass through unchanged.
func BucketAmount(amount *uint256.Int) string {
	if amount.IsZero() {
		return "0"
	}

	amountStr := amount.Dec()
	if len(amountStr) <= 2 {
		return amountStr
	}

	return amountStr[:2] + strings.Repeat("0", len(amountStr)-2)
}
