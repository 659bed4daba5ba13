// Package clmm implements the Q64.96 fixed-point swap math used to price
// a swap through one concentrated-liquidity pool within one tick range.
package clmm

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

// Engine constants.
const (
	// FeeDenominator is the fee scale: fees are expressed in millionths (pips).
	FeeDenominator = 1_000_000

	// MaxHops is the hard cap on hops per route.
	MaxHops = 4

	// MaxSplits is the hard cap on parallel sub-routes per split.
	MaxSplits = 3
)

// MinLiquidity is the minimum liquidity threshold (1 token in 18-decimal units).
var MinLiquidity = uint256.MustFromDecimal("1000000000000000000")

// q96 = 2^96, the fixed-point scale for sqrt prices.
var q96 = new(uint256.Int).Lsh(uint256.NewInt(1), 96)

// Q96 returns a fresh copy of the 2^96 fixed-point scale.
func Q96() *uint256.Int {
	return new(uint256.Int).Set(q96)
}

// SwapStepResult is the outcome of a single swap step within one tick range.
type SwapStepResult struct {
	// SqrtPriceNext is the sqrt price after the step.
	SqrtPriceNext *uint256.Int
	// AmountIn is the input consumed by the step (excluding the fee).
	AmountIn *uint256.Int
	// AmountOut is the output produced by the step.
	AmountOut *uint256.Int
	// FeeAmount is the fee taken from the input.
	FeeAmount *uint256.Int
}

// ComputeSwapStep computes a single swap step within a tick range, mirroring
// the Uniswap v3 SwapMath.computeSwapStep semantics.
//
// Direction is implied by the price ordering: sqrtPriceCurrent >= sqrtPriceTarget
// means token0 -> token1 (price moves down), otherwise token1 -> token0.
func ComputeSwapStep(sqrtPriceCurrent, sqrtPriceTarget, liquidity, amountRemaining *uint256.Int, feePips uint32) SwapStepResult {
	if amountRemaining.IsZero() || liquidity.IsZero() {
		return SwapStepResult{
			SqrtPriceNext: new(uint256.Int).Set(sqrtPriceCurrent),
			AmountIn:      new(uint256.Int),
			AmountOut:     new(uint256.Int),
			FeeAmount:     new(uint256.Int),
		}
	}

	zeroForOne := sqrtPriceCurrent.Cmp(sqrtPriceTarget) >= 0

	feeDenom := uint256.NewInt(FeeDenominator)
	fee := uint256.NewInt(uint64(feePips))

	// Input remaining after the fee is carved out up-front.
	amountRemainingLessFee := new(uint256.Int).Mul(amountRemaining, new(uint256.Int).Sub(feeDenom, fee))
	amountRemainingLessFee.Div(amountRemainingLessFee, feeDenom)

	// Maximum input consumable before the price reaches the target.
	var amountInMax *uint256.Int
	if zeroForOne {
		amountInMax = getAmount0Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidity)
	} else {
		amountInMax = getAmount1Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidity)
	}

	var sqrtPriceNext, amountIn, amountOut *uint256.Int
	reachedTarget := amountRemainingLessFee.Cmp(amountInMax) >= 0

	if reachedTarget {
		sqrtPriceNext = new(uint256.Int).Set(sqrtPriceTarget)
		amountIn = amountInMax
		if zeroForOne {
			amountOut = getAmount1Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidity)
		} else {
			amountOut = getAmount0Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidity)
		}
	} else {
		if zeroForOne {
			sqrtPriceNext = getNextSqrtPriceFromAmount0(sqrtPriceCurrent, liquidity, amountRemainingLessFee)
			amountIn = getAmount0Delta(sqrtPriceNext, sqrtPriceCurrent, liquidity)
			amountOut = getAmount1Delta(sqrtPriceNext, sqrtPriceCurrent, liquidity)
		} else {
			sqrtPriceNext = getNextSqrtPriceFromAmount1(sqrtPriceCurrent, liquidity, amountRemainingLessFee)
			amountIn = getAmount1Delta(sqrtPriceCurrent, sqrtPriceNext, liquidity)
			amountOut = getAmount0Delta(sqrtPriceCurrent, sqrtPriceNext, liquidity)
		}
	}

	feeAmount := new(uint256.Int)
	if reachedTarget {
		if feePips > 0 {
			// Uniswap-compatible round-up: amountIn * fee / (1e6 - fee) + 1
			feeAmount.Mul(amountIn, fee)
			feeAmount.Div(feeAmount, new(uint256.Int).Sub(feeDenom, fee))
			feeAmount.AddUint64(feeAmount, 1)
		}
	} else {
		feeAmount.Sub(amountRemaining, amountIn)
	}

	return SwapStepResult{
		SqrtPriceNext: sqrtPriceNext,
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		FeeAmount:     feeAmount,
	}
}

// getAmount0Delta returns the token0 delta between two sqrt prices:
// L * Q96 * (upper - lower) / (upper * lower), rounded up. Computed in two
// stages so the 512-bit intermediate never truncates.
func getAmount0Delta(sqrtPriceLower, sqrtPriceUpper, liquidity *uint256.Int) *uint256.Int {
	if sqrtPriceLower.Cmp(sqrtPriceUpper) >= 0 || sqrtPriceLower.IsZero() {
		return new(uint256.Int)
	}
	diff := new(uint256.Int).Sub(sqrtPriceUpper, sqrtPriceLower)
	interim := mulDivCeil(new(uint256.Int).Mul(liquidity, q96), diff, sqrtPriceUpper)
	return divCeil(interim, sqrtPriceLower)
}

// getAmount1Delta returns the token1 delta between two sqrt prices:
// L * (upper - lower) / Q96, rounded up.
func getAmount1Delta(sqrtPriceLower, sqrtPriceUpper, liquidity *uint256.Int) *uint256.Int {
	if sqrtPriceLower.Cmp(sqrtPriceUpper) >= 0 {
		return new(uint256.Int)
	}
	diff := new(uint256.Int).Sub(sqrtPriceUpper, sqrtPriceLower)
	return mulDivCeil(liquidity, diff, q96)
}

// getNextSqrtPriceFromAmount0 computes the price after consuming token0 input:
// sqrtP_next = sqrtP * L / (L + amount * sqrtP / Q96), rounding toward current.
func getNextSqrtPriceFromAmount0(sqrtPrice, liquidity, amount *uint256.Int) *uint256.Int {
	if amount.IsZero() {
		return new(uint256.Int).Set(sqrtPrice)
	}
	denominator := mulDiv(amount, sqrtPrice, q96)
	denominator.Add(denominator, liquidity)
	if denominator.IsZero() {
		return new(uint256.Int).Set(sqrtPrice)
	}
	return mulDivCeil(liquidity, sqrtPrice, denominator)
}

// getNextSqrtPriceFromAmount1 computes the price after consuming token1 input:
// sqrtP_next = sqrtP + amount * Q96 / L.
func getNextSqrtPriceFromAmount1(sqrtPrice, liquidity, amount *uint256.Int) *uint256.Int {
	if liquidity.IsZero() {
		return new(uint256.Int).Set(sqrtPrice)
	}
	delta := mulDiv(amount, q96, liquidity)
	return delta.Add(sqrtPrice, delta)
}

// mulDiv computes a * b / denom, falling back to big.Int when the product
// overflows 256 bits.
func mulDiv(a, b, denom *uint256.Int) *uint256.Int {
	if denom.IsZero() {
		return new(uint256.Int)
	}
	if prod, overflow := new(uint256.Int).MulOverflow(a, b); !overflow {
		return prod.Div(prod, denom)
	}
	prod := new(big.Int).Mul(a.ToBig(), b.ToBig())
	prod.Quo(prod, denom.ToBig())
	out, overflow := uint256.FromBig(prod)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return out
}

// mulDivCeil computes ceil(a * b / denom) with the same overflow fallback.
func mulDivCeil(a, b, denom *uint256.Int) *uint256.Int {
	if denom.IsZero() {
		return new(uint256.Int)
	}
	if prod, overflow := new(uint256.Int).MulOverflow(a, b); !overflow {
		return divCeil(prod, denom)
	}
	prod := new(big.Int).Mul(a.ToBig(), b.ToBig())
	quo, rem := new(big.Int).QuoRem(prod, denom.ToBig(), new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	out, overflow := uint256.FromBig(quo)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return out
}

// divCeil computes ceil(a / denom).
func divCeil(a, denom *uint256.Int) *uint256.Int {
	if denom.IsZero() {
		return new(uint256.Int)
	}
	quo := new(uint256.Int).Div(a, denom)
	rem := new(uint256.Int).Mod(a, denom)
	if !rem.IsZero() {
		quo.AddUint64(quo, 1)
	}
	return quo
}

// TickToSqrtPriceX96 converts a tick to its sqrtPriceX96:
// sqrt(1.0001^tick) * 2^96. Computed via floating point; precision is
// sufficient for ranking (round-trips within one tick over |tick| <= 100000).
func TickToSqrtPriceX96(tick int32) *uint256.Int {
	sqrtRatio := math.Pow(1.0001, float64(tick)/2.0)
	value := sqrtRatio * math.Pow(2, 96)
	if value <= 0 || math.IsInf(value, 0) || math.IsNaN(value) {
		return Q96() // price 1.0
	}
	f := new(big.Float).SetFloat64(value)
	i, _ := f.Int(nil)
	out, overflow := uint256.FromBig(i)
	if overflow {
		return Q96()
	}
	return out
}

// SqrtPriceX96ToTick converts a sqrtPriceX96 to the nearest tick below.
func SqrtPriceX96ToTick(sqrtPriceX96 *uint256.Int) int32 {
	f, _ := new(big.Float).SetInt(sqrtPriceX96.ToBig()).Float64()
	sqrtRatio := f / math.Pow(2, 96)
	if sqrtRatio <= 0 {
		return 0
	}
	tick := math.Log(sqrtRatio*sqrtRatio) / math.Log(1.0001)
	return int32(math.Floor(tick))
}

// ApplySlippage reduces an amount by a slippage tolerance in basis points.
func ApplySlippage(amount *uint256.Int, slippageBps uint32) *uint256.Int {
	basisPoints := uint256.NewInt(10000)
	out := new(uint256.Int).Mul(amount, new(uint256.Int).Sub(basisPoints, uint256.NewInt(uint64(slippageBps))))
	return out.Div(out, basisPoints)
}

// Float64 converts an amount to float64 for ranking and display. The result
// must never feed back into amount accounting.
func Float64(x *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(x.ToBig()).Float64()
	return f
}
