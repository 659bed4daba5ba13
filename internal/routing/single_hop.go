package routing

import (
	"bytes"
	"sort"

	"routing-engine/internal/clmm"
	"routing-engine/internal/graph"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// dustFloor is the minimum acceptable output in atomic units; anything below
// is treated as insufficient liquidity.
var dustFloor = uint256.NewInt(100)

// Gas ranking constants. Engine-configurable in principle, but part of the
// ranking function, so kept as package constants.
const (
	swapGasBase      = 100_000
	swapGasHook      = 50_000
	swapGasHighFee   = 5_000
	highFeeTierFloor = 10_000
)

// FindBestSingleHopRoute enumerates the direct pools between the pair and
// returns the one with the greatest output. Ties break by lower gas estimate,
// then by smaller pool id.
func FindBestSingleHopRoute(g *graph.PoolGraph, tokenIn, tokenOut common.Address, amountIn *uint256.Int) (*Route, error) {
	var best *Route

	for _, pool := range g.GetPoolsForToken(tokenIn) {
		other, ok := pool.OtherToken(tokenIn)
		if !ok || other != tokenOut {
			continue
		}

		amountOut, gasEstimate, err := simulateSwapThroughPool(pool, tokenIn, amountIn)
		if err != nil {
			continue // skip pools that cannot satisfy the input
		}

		candidate := &Route{
			Hops: []RouteHop{{
				Pool:      pool,
				TokenIn:   tokenIn,
				TokenOut:  tokenOut,
				AmountIn:  new(uint256.Int).Set(amountIn),
				AmountOut: amountOut,
			}},
			TotalAmountIn:  new(uint256.Int).Set(amountIn),
			TotalAmountOut: amountOut,
			PriceImpact:    calculatePriceImpact(g, tokenIn, tokenOut, amountIn, amountOut),
			GasEstimate:    gasEstimate,
		}

		if best == nil || betterSingleHop(candidate, best) {
			best = candidate
		}
	}

	if best == nil {
		return nil, &NoRouteFoundError{From: tokenIn, To: tokenOut}
	}
	return best, nil
}

// FindAllSingleHopRoutes returns every viable direct route, sorted by
// descending output.
func FindAllSingleHopRoutes(g *graph.PoolGraph, tokenIn, tokenOut common.Address, amountIn *uint256.Int) []*Route {
	var routes []*Route

	for _, pool := range g.GetPoolsForToken(tokenIn) {
		other, ok := pool.OtherToken(tokenIn)
		if !ok || other != tokenOut {
			continue
		}

		amountOut, gasEstimate, err := simulateSwapThroughPool(pool, tokenIn, amountIn)
		if err != nil {
			continue
		}

		routes = append(routes, &Route{
			Hops: []RouteHop{{
				Pool:      pool,
				TokenIn:   tokenIn,
				TokenOut:  tokenOut,
				AmountIn:  new(uint256.Int).Set(amountIn),
				AmountOut: amountOut,
			}},
			TotalAmountIn:  new(uint256.Int).Set(amountIn),
			TotalAmountOut: amountOut,
			PriceImpact:    calculatePriceImpact(g, tokenIn, tokenOut, amountIn, amountOut),
			GasEstimate:    gasEstimate,
		})
	}

	sort.SliceStable(routes, func(i, j int) bool {
		return betterSingleHop(routes[i], routes[j])
	})

	return routes
}

// betterSingleHop orders candidates by output desc, gas asc, pool id asc.
func betterSingleHop(a, b *Route) bool {
	if c := a.TotalAmountOut.Cmp(b.TotalAmountOut); c != 0 {
		return c > 0
	}
	if a.GasEstimate != b.GasEstimate {
		return a.GasEstimate < b.GasEstimate
	}
	return bytes.Compare(a.Hops[0].Pool.PoolID[:], b.Hops[0].Pool.PoolID[:]) < 0
}

// simulateSwapThroughPool prices a swap through one pool and estimates gas.
func simulateSwapThroughPool(pool *graph.PoolEdge, tokenIn common.Address, amountIn *uint256.Int) (*uint256.Int, uint64, error) {
	zeroForOne, ok := pool.ZeroForOne(tokenIn)
	if !ok {
		return nil, 0, &InternalError{Reason: "token not in pool"}
	}

	amountOut, err := calculateAmountOut(pool, amountIn, zeroForOne)
	if err != nil {
		return nil, 0, err
	}

	return amountOut, estimateSwapGas(pool), nil
}

// calculateAmountOut runs a single CLMM swap step within the pool's current
// tick range, with the target price one tick spacing away.
func calculateAmountOut(pool *graph.PoolEdge, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if pool.Liquidity.IsZero() {
		return nil, &InsufficientLiquidityError{Required: amountIn.Dec(), Available: "0"}
	}

	var sqrtPriceTarget *uint256.Int
	if zeroForOne {
		sqrtPriceTarget = clmm.TickToSqrtPriceX96(pool.Tick - pool.TickSpacing)
	} else {
		sqrtPriceTarget = clmm.TickToSqrtPriceX96(pool.Tick + pool.TickSpacing)
	}

	step := clmm.ComputeSwapStep(pool.SqrtPriceX96, sqrtPriceTarget, pool.Liquidity, amountIn, pool.Fee)

	if step.AmountOut.Cmp(dustFloor) < 0 {
		return nil, &InsufficientLiquidityError{Required: amountIn.Dec(), Available: step.AmountOut.Dec()}
	}

	return step.AmountOut, nil
}

// estimateSwapGas estimates gas for one swap through a pool.
func estimateSwapGas(pool *graph.PoolEdge) uint64 {
	gas := uint64(swapGasBase)
	if pool.HookAddress != (common.Address{}) {
		gas += swapGasHook
	}
	if pool.Fee >= highFeeTierFloor {
		gas += swapGasHighFee
	}
	return gas
}

// calculatePriceImpact computes the percentage deviation of the effective
// rate from 1:1, normalised by token decimals when both tokens are known to
// the graph. Capped at 100.
func calculatePriceImpact(g *graph.PoolGraph, tokenIn, tokenOut common.Address, amountIn, amountOut *uint256.Int) float64 {
	if amountIn.IsZero() || amountOut.IsZero() {
		return 0.0
	}

	in := clmm.Float64(amountIn)
	out := clmm.Float64(amountOut)

	if nodeIn, ok := g.GetToken(tokenIn); ok {
		if nodeOut, ok := g.GetToken(tokenOut); ok {
			in /= pow10(nodeIn.Decimals)
			out /= pow10(nodeOut.Decimals)
		}
	}

	actualRate := in / out
	impact := (actualRate - 1.0)
	if impact < 0 {
		impact = -impact
	}
	impact *= 100.0
	if impact > 100.0 {
		impact = 100.0
	}
	return impact
}

func pow10(decimals uint8) float64 {
	out := 1.0
	for i := uint8(0); i < decimals; i++ {
		out *= 10.0
	}
	return out
}
