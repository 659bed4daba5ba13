package routing

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterFindRoute_CacheHit(t *testing.T) {
	router := NewRouter(buildTestGraph())
	ctx := context.Background()

	route1, err := router.FindRoute(ctx, testAddress(1), testAddress(4), testAmount(oneToken), 4)
	require.NoError(t, err)

	route2, err := router.FindRoute(ctx, testAddress(1), testAddress(4), testAmount(oneToken), 4)
	require.NoError(t, err)

	assert.Equal(t, route1.TotalAmountOut, route2.TotalAmountOut)

	stats := router.CacheStats()
	assert.Equal(t, 1, stats.RouteStats.Size)
	assert.GreaterOrEqual(t, stats.RouteStats.TotalAccesses, uint64(1))
}

func TestRouterFindRoute_SingleHopStrategy(t *testing.T) {
	router := NewRouter(buildTestGraph())

	route, err := router.FindRoute(context.Background(), testAddress(1), testAddress(4), testAmount(oneToken), 1)
	require.NoError(t, err)
	assert.Len(t, route.Hops, 1)
}

func TestRouterFindRoute_SequentialStrategy(t *testing.T) {
	config := DefaultRouterConfig()
	config.EnableParallel = false
	router := NewRouterWithConfig(buildTestGraph(), config)

	route, err := router.FindRoute(context.Background(), testAddress(1), testAddress(4), testAmount(oneToken), 2)
	require.NoError(t, err)
	assert.True(t, route.TotalAmountOut.Sign() > 0)

	// The sequential strategy keeps the better of single- and multi-hop.
	single, err := FindBestSingleHopRoute(router.Graph(), testAddress(1), testAddress(4), testAmount(oneToken))
	require.NoError(t, err)
	assert.True(t, route.TotalAmountOut.Cmp(single.TotalAmountOut) >= 0)
}

func TestRouterFindRoute_NoRoute(t *testing.T) {
	router := NewRouter(buildTestGraph())

	_, err := router.FindRoute(context.Background(), testAddress(1), testAddress(99), testAmount(oneToken), 4)
	require.Error(t, err)
	assert.IsType(t, &NoRouteFoundError{}, err)
}

func TestRouterFindRoute_EmptyGraph(t *testing.T) {
	router := NewRouter(buildEmptyGraph())

	_, err := router.FindRoute(context.Background(), testAddress(1), testAddress(2), testAmount(oneToken), 4)
	require.Error(t, err)
	assert.IsType(t, &NoRouteFoundError{}, err)
}

func TestRouterFindSplitRoute(t *testing.T) {
	router := NewRouter(buildTestGraph())

	// 10 tokens is comfortably above the split floor.
	split, err := router.FindSplitRoute(context.Background(), testAddress(1), testAddress(4), testAmount("10000000000000000000"), 4, 3)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, split.SplitCount(), 1)
	assert.LessOrEqual(t, split.SplitCount(), 3)

	total := 0
	for _, wr := range split.Routes {
		total += int(wr.Percentage)
	}
	assert.Equal(t, 100, total)
}

func TestRouterFindSplitRoute_SmallAmountShortCircuits(t *testing.T) {
	router := NewRouter(buildTestGraph())

	// 0.01 token is below the split floor; exactly one route comes back.
	split, err := router.FindSplitRoute(context.Background(), testAddress(1), testAddress(4), testAmount("10000000000000000"), 4, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, split.SplitCount())
	assert.Equal(t, uint8(100), split.Routes[0].Percentage)
}

func TestRouterGetQuote(t *testing.T) {
	router := NewRouter(buildTestGraph())

	quote, err := router.GetQuote(context.Background(), testAddress(1), testAddress(4), testAmount(oneToken), 0.5, 4)
	require.NoError(t, err)

	assert.NotEmpty(t, quote.AmountOut)
	assert.NotEmpty(t, quote.RouteString)
	assert.Greater(t, quote.GasEstimate, uint64(0))

	// amountOutMin = amountOut * (1 - 50/10000)
	out := testAmount(quote.AmountOut)
	expected := new(uint256.Int).Mul(out, uint256.NewInt(9950))
	expected.Div(expected, uint256.NewInt(10000))
	assert.Equal(t, expected, testAmount(quote.AmountOutMin))
}

func TestRouterGetSplitQuote(t *testing.T) {
	router := NewRouter(buildTestGraph())

	quote, err := router.GetSplitQuote(context.Background(), testAddress(1), testAddress(4), testAmount("10000000000000000000"), 0.5, 4, 3)
	require.NoError(t, err)

	assert.NotNil(t, quote.Route)
	assert.GreaterOrEqual(t, quote.Route.SplitCount(), 1)
}

func TestRouterPriceImpactGuard(t *testing.T) {
	config := DefaultRouterConfig()
	config.MaxPriceImpact = 0.0000001
	router := NewRouterWithConfig(buildTestGraph(), config)

	_, err := router.FindRoute(context.Background(), testAddress(1), testAddress(4), testAmount(oneToken), 4)
	require.Error(t, err)
	assert.IsType(t, &PriceImpactTooHighError{}, err)
}

func TestRouterCacheDisabled(t *testing.T) {
	config := DefaultRouterConfig()
	config.EnableCache = false
	router := NewRouterWithConfig(buildTestGraph(), config)

	_, err := router.FindRoute(context.Background(), testAddress(1), testAddress(4), testAmount(oneToken), 4)
	require.NoError(t, err)

	stats := router.CacheStats()
	assert.Equal(t, 0, stats.RouteStats.Size)
}

func TestRouterClearCache(t *testing.T) {
	router := NewRouter(buildTestGraph())

	_, err := router.FindRoute(context.Background(), testAddress(1), testAddress(4), testAmount(oneToken), 4)
	require.NoError(t, err)
	require.Equal(t, 1, router.CacheStats().RouteStats.Size)

	router.ClearCache()
	assert.Equal(t, 0, router.CacheStats().RouteStats.Size)
}
