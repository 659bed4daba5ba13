package routing

import (
	"context"
	"sort"
	"sync"

	"routing-engine/internal/clmm"
	"routing-engine/internal/graph"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"
)

// parallelTopN is how many routes each multi-hop strategy contributes.
const parallelTopN = 5

// RouteRequest is one entry of a batch route query.
type RouteRequest struct {
	TokenIn  common.Address
	TokenOut common.Address
	AmountIn *uint256.Int
	MaxHops  int
}

// FindRoutesParallel fans one search task out per hop count (single-hop for
// h=1, bounded best-first otherwise) and merges the results sorted by
// descending output. Cancelling the context aborts in-flight searches at
// their next heap pop.
func FindRoutesParallel(ctx context.Context, g *graph.PoolGraph, tokenIn, tokenOut common.Address, amountIn *uint256.Int, maxHops int) []*Route {
	if maxHops > clmm.MaxHops {
		maxHops = clmm.MaxHops
	}

	eg, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var routes []*Route

	for hops := 1; hops <= maxHops; hops++ {
		eg.Go(func() error {
			var found []*Route
			if hops == 1 {
				found = FindAllSingleHopRoutes(g, tokenIn, tokenOut, amountIn)
			} else {
				found = FindTopRoutes(ctx, g, tokenIn, tokenOut, amountIn, hops, parallelTopN)
			}

			mu.Lock()
			routes = append(routes, found...)
			mu.Unlock()
			return nil
		})
	}

	_ = eg.Wait()

	sortRoutesByOutput(routes)
	return routes
}

// FindBestRouteParallel returns the head of the merged parallel result, or
// nil when no route exists.
func FindBestRouteParallel(ctx context.Context, g *graph.PoolGraph, tokenIn, tokenOut common.Address, amountIn *uint256.Int, maxHops int) *Route {
	routes := FindRoutesParallel(ctx, g, tokenIn, tokenOut, amountIn, maxHops)
	if len(routes) == 0 {
		return nil
	}
	return routes[0]
}

// BatchFindRoutes evaluates independent route requests concurrently. The
// result slice is positionally aligned with the requests; entries with no
// route are nil.
func BatchFindRoutes(ctx context.Context, g *graph.PoolGraph, requests []RouteRequest) []*Route {
	results := make([]*Route, len(requests))

	eg, ctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		eg.Go(func() error {
			results[i] = FindBestRouteParallel(ctx, g, req.TokenIn, req.TokenOut, req.AmountIn, req.MaxHops)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

// SimulateAmountsParallel finds the best route for each candidate amount.
// Useful for probing optimal trade size.
func SimulateAmountsParallel(ctx context.Context, g *graph.PoolGraph, tokenIn, tokenOut common.Address, amounts []*uint256.Int, maxHops int) []*Route {
	results := make([]*Route, len(amounts))

	eg, ctx := errgroup.WithContext(ctx)
	for i, amount := range amounts {
		eg.Go(func() error {
			results[i] = FindBestRouteParallel(ctx, g, tokenIn, tokenOut, amount, maxHops)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

// sortRoutesByOutput orders routes by descending output; ties break by fewer
// hops so merged results stay stable across runs.
func sortRoutesByOutput(routes []*Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		if c := routes[i].TotalAmountOut.Cmp(routes[j].TotalAmountOut); c != 0 {
			return c > 0
		}
		return len(routes[i].Hops) < len(routes[j].Hops)
	})
}
