// Package simulation provides a standalone single-pool swap simulator on top
// of the CLMM math. A full implementation would walk the tick bitmap and
// adjust liquidity at each crossing; this one steps one tick spacing at a
// time with constant liquidity.
package simulation

import (
	"routing-engine/internal/clmm"
	"routing-engine/internal/graph"
	"routing-engine/internal/routing"

	"github.com/holiman/uint256"
)

// SwapResult is the post-swap pool view.
type SwapResult struct {
	AmountOut      *uint256.Int
	SqrtPriceAfter *uint256.Int
	TickAfter      int32
}

// SwapSimulator simulates swaps through individual pools.
type SwapSimulator struct{}

// NewSwapSimulator creates a simulator.
func NewSwapSimulator() *SwapSimulator {
	return &SwapSimulator{}
}

// SimulateSwap runs a single swap step within the pool's current tick range,
// with the target price one tick spacing away in the swap direction.
func (s *SwapSimulator) SimulateSwap(pool *graph.PoolEdge, amountIn *uint256.Int, zeroForOne bool) (*SwapResult, error) {
	if amountIn.IsZero() {
		return &SwapResult{
			AmountOut:      new(uint256.Int),
			SqrtPriceAfter: new(uint256.Int).Set(pool.SqrtPriceX96),
			TickAfter:      pool.Tick,
		}, nil
	}

	if pool.Liquidity.IsZero() {
		return nil, &routing.InsufficientLiquidityError{Required: amountIn.Dec(), Available: "0"}
	}

	var sqrtPriceTarget *uint256.Int
	if zeroForOne {
		sqrtPriceTarget = clmm.TickToSqrtPriceX96(pool.Tick - pool.TickSpacing)
	} else {
		sqrtPriceTarget = clmm.TickToSqrtPriceX96(pool.Tick + pool.TickSpacing)
	}

	step := clmm.ComputeSwapStep(pool.SqrtPriceX96, sqrtPriceTarget, pool.Liquidity, amountIn, pool.Fee)

	return &SwapResult{
		AmountOut:      step.AmountOut,
		SqrtPriceAfter: step.SqrtPriceNext,
		TickAfter:      clmm.SqrtPriceX96ToTick(step.SqrtPriceNext),
	}, nil
}

// SimulateSwapMultiStep runs up to maxSteps swap steps, each spanning one
// tick spacing, accumulating output and consuming input plus fee per step.
func (s *SwapSimulator) SimulateSwapMultiStep(pool *graph.PoolEdge, amountIn *uint256.Int, zeroForOne bool, maxSteps int) (*SwapResult, error) {
	if amountIn.IsZero() {
		return &SwapResult{
			AmountOut:      new(uint256.Int),
			SqrtPriceAfter: new(uint256.Int).Set(pool.SqrtPriceX96),
			TickAfter:      pool.Tick,
		}, nil
	}

	if pool.Liquidity.IsZero() {
		return nil, &routing.InsufficientLiquidityError{Required: amountIn.Dec(), Available: "0"}
	}

	remaining := new(uint256.Int).Set(amountIn)
	totalOut := new(uint256.Int)
	currentSqrtPrice := new(uint256.Int).Set(pool.SqrtPriceX96)
	currentTick := pool.Tick

	for i := 0; i < maxSteps; i++ {
		if remaining.IsZero() {
			break
		}

		var targetTick int32
		if zeroForOne {
			targetTick = currentTick - pool.TickSpacing
		} else {
			targetTick = currentTick + pool.TickSpacing
		}

		step := clmm.ComputeSwapStep(currentSqrtPrice, clmm.TickToSqrtPriceX96(targetTick), pool.Liquidity, remaining, pool.Fee)

		totalOut.Add(totalOut, step.AmountOut)

		consumed := new(uint256.Int).Add(step.AmountIn, step.FeeAmount)
		if remaining.Cmp(consumed) > 0 {
			remaining.Sub(remaining, consumed)
		} else {
			remaining.Clear()
		}

		currentSqrtPrice = step.SqrtPriceNext
		currentTick = clmm.SqrtPriceX96ToTick(currentSqrtPrice)
	}

	return &SwapResult{
		AmountOut:      totalOut,
		SqrtPriceAfter: currentSqrtPrice,
		TickAfter:      currentTick,
	}, nil
}
