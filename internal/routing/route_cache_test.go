package routing

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketAmount(t *testing.T) {
	cases := map[string]string{
		"0":      "0",
		"5":      "5",
		"99":     "99",
		"123":    "120",
		"1234":   "1200",
		"98765":  "98000",
		"100000": "100000",
	}
	for in, want := range cases {
		assert.Equal(t, want, BucketAmount(uint256.MustFromDecimal(in)), "bucket of %s", in)
	}
}

func TestBucketAmount_SharedBucket(t *testing.T) {
	// Same first two significant digits and digit count share a bucket.
	a := BucketAmount(uint256.MustFromDecimal("1234"))
	b := BucketAmount(uint256.MustFromDecimal("1250"))
	assert.Equal(t, a, b)

	// Different digit count does not.
	c := BucketAmount(uint256.MustFromDecimal("12500"))
	assert.NotEqual(t, a, c)
}

func TestEnhancedRouteCache_MissOnEmpty(t *testing.T) {
	c := NewEnhancedRouteCache(10, 10, time.Minute)

	_, ok := c.GetRoute(testAddress(1), testAddress(2), uint256.NewInt(1000), 2)
	assert.False(t, ok)
}

func TestEnhancedRouteCache_HitWithSimilarAmounts(t *testing.T) {
	c := NewEnhancedRouteCache(10, 10, time.Minute)

	route := makeSplitTestRoute(1, 1000, 990, 0.1, 100_000)
	c.InsertRoute(testAddress(1), testAddress(2), uint256.NewInt(1234), 2, route)

	// 1250 lands in the 1200 bucket with 1234.
	cached, ok := c.GetRoute(testAddress(1), testAddress(2), uint256.NewInt(1250), 2)
	require.True(t, ok)
	assert.Equal(t, route.TotalAmountOut, cached.TotalAmountOut)

	// A different hop limit is a different key.
	_, ok = c.GetRoute(testAddress(1), testAddress(2), uint256.NewInt(1250), 3)
	assert.False(t, ok)
}

func TestEnhancedRouteCache_ReturnsClones(t *testing.T) {
	c := NewEnhancedRouteCache(10, 10, time.Minute)

	route := makeSplitTestRoute(1, 1000, 990, 0.1, 100_000)
	c.InsertRoute(testAddress(1), testAddress(2), uint256.NewInt(1000), 2, route)

	first, ok := c.GetRoute(testAddress(1), testAddress(2), uint256.NewInt(1000), 2)
	require.True(t, ok)
	first.TotalAmountOut.Clear()

	second, ok := c.GetRoute(testAddress(1), testAddress(2), uint256.NewInt(1000), 2)
	require.True(t, ok)
	assert.Equal(t, uint256.NewInt(990), second.TotalAmountOut, "mutating a returned route must not poison the cache")
}

func TestEnhancedRouteCache_QuoteSlippageKeyed(t *testing.T) {
	c := NewEnhancedRouteCache(10, 10, time.Minute)

	quote := QuoteFromRoute(SingleSplitRoute(makeSplitTestRoute(1, 1000, 990, 0.1, 100_000)), 0.5)
	c.InsertQuote(testAddress(1), testAddress(2), uint256.NewInt(1000), 0.5, 4, quote)

	_, ok := c.GetQuote(testAddress(1), testAddress(2), uint256.NewInt(1000), 0.5, 4)
	assert.True(t, ok)

	_, ok = c.GetQuote(testAddress(1), testAddress(2), uint256.NewInt(1000), 1.0, 4)
	assert.False(t, ok, "different slippage must miss")
}

func TestEnhancedRouteCache_SplitRoutes(t *testing.T) {
	c := NewEnhancedRouteCache(10, 10, time.Minute)

	split := SingleSplitRoute(makeSplitTestRoute(1, 1000, 990, 0.1, 100_000))
	c.InsertSplitRoute(testAddress(1), testAddress(2), uint256.NewInt(1000), 4, split)

	cached, ok := c.GetSplitRoute(testAddress(1), testAddress(2), uint256.NewInt(1000), 4)
	require.True(t, ok)
	assert.Equal(t, 1, cached.SplitCount())
}

func TestEnhancedRouteCache_ClearAll(t *testing.T) {
	c := NewEnhancedRouteCache(10, 10, time.Minute)

	c.InsertRoute(testAddress(1), testAddress(2), uint256.NewInt(1000), 2, makeSplitTestRoute(1, 1000, 990, 0.1, 100_000))
	c.ClearAll()

	_, ok := c.GetRoute(testAddress(1), testAddress(2), uint256.NewInt(1000), 2)
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, 0, stats.RouteStats.Size)
}
