package routing

import (
	"math"

	"routing-engine/internal/clmm"

	"github.com/holiman/uint256"
)

// MinSplitAmount is the input size below which splitting is not worth the
// extra gas (0.1 token in 18-decimal units).
var MinSplitAmount = uint256.MustFromDecimal("100000000000000000")

// OptimizeSplitRoute allocates totalAmount across up to MaxSplits of the
// given routes to maximise summed output. Candidate allocations are scored by
// linearly scaling each route's precomputed output; diversity of the input
// route set is what captures the non-linear effects.
func OptimizeSplitRoute(routes []*Route, totalAmount *uint256.Int) (*SplitRoute, error) {
	if len(routes) == 0 {
		return nil, &InternalError{Reason: "no routes provided for split optimization"}
	}

	if len(routes) == 1 {
		return SingleSplitRoute(routes[0]), nil
	}

	if len(routes) > clmm.MaxSplits {
		routes = routes[:clmm.MaxSplits]
	}

	switch len(routes) {
	case 1:
		return SingleSplitRoute(routes[0]), nil
	case 2:
		return optimizeTwoRouteSplit(routes[0], routes[1], totalAmount), nil
	default:
		return optimizeThreeRouteSplit(routes[0], routes[1], routes[2], totalAmount), nil
	}
}

// optimizeTwoRouteSplit grid-searches (a, 100-a) on a 5% grid, rejecting
// non-zero shares below 5%.
func optimizeTwoRouteSplit(routeA, routeB *Route, totalAmount *uint256.Int) *SplitRoute {
	bestOutput := new(uint256.Int)
	bestSplit := [2]uint8{100, 0}
	bestAmounts := [2]*uint256.Int{new(uint256.Int), new(uint256.Int)}

	for splitA := 0; splitA <= 100; splitA += 5 {
		splitB := 100 - splitA

		if splitA > 0 && splitA < 5 {
			continue
		}
		if splitB > 0 && splitB < 5 {
			continue
		}

		amountA := shareOf(totalAmount, splitA)
		amountB := new(uint256.Int).Sub(totalAmount, amountA)

		totalOutput := new(uint256.Int)
		if splitA > 0 {
			totalOutput.Add(totalOutput, simulateRouteOutput(routeA, amountA))
		}
		if splitB > 0 {
			totalOutput.Add(totalOutput, simulateRouteOutput(routeB, amountB))
		}

		if totalOutput.Cmp(bestOutput) > 0 {
			bestOutput = totalOutput
			bestSplit = [2]uint8{uint8(splitA), uint8(splitB)}
			bestAmounts = [2]*uint256.Int{amountA, amountB}
		}
	}

	var split []WeightedRoute
	if bestSplit[0] > 0 {
		split = append(split, WeightedRoute{Route: scaleRoute(routeA, bestAmounts[0]), Percentage: bestSplit[0]})
	}
	if bestSplit[1] > 0 {
		split = append(split, WeightedRoute{Route: scaleRoute(routeB, bestAmounts[1]), Percentage: bestSplit[1]})
	}

	return assembleSplitRoute(split, totalAmount, bestOutput)
}

// optimizeThreeRouteSplit grid-searches (a, b, 100-a-b) on a 10% grid,
// rejecting non-zero shares below 10%.
func optimizeThreeRouteSplit(routeA, routeB, routeC *Route, totalAmount *uint256.Int) *SplitRoute {
	bestOutput := new(uint256.Int)
	bestSplit := [3]uint8{100, 0, 0}
	bestAmounts := [3]*uint256.Int{new(uint256.Int).Set(totalAmount), new(uint256.Int), new(uint256.Int)}

	for splitA := 0; splitA <= 100; splitA += 10 {
		for splitB := 0; splitB <= 100-splitA; splitB += 10 {
			splitC := 100 - splitA - splitB

			if splitA > 0 && splitA < 10 {
				continue
			}
			if splitB > 0 && splitB < 10 {
				continue
			}
			if splitC > 0 && splitC < 10 {
				continue
			}

			amountA := shareOf(totalAmount, splitA)
			amountB := shareOf(totalAmount, splitB)
			amountC := new(uint256.Int).Sub(totalAmount, amountA)
			amountC.Sub(amountC, amountB)

			totalOutput := new(uint256.Int)
			if splitA > 0 {
				totalOutput.Add(totalOutput, simulateRouteOutput(routeA, amountA))
			}
			if splitB > 0 {
				totalOutput.Add(totalOutput, simulateRouteOutput(routeB, amountB))
			}
			if splitC > 0 {
				totalOutput.Add(totalOutput, simulateRouteOutput(routeC, amountC))
			}

			if totalOutput.Cmp(bestOutput) > 0 {
				bestOutput = totalOutput
				bestSplit = [3]uint8{uint8(splitA), uint8(splitB), uint8(splitC)}
				bestAmounts = [3]*uint256.Int{amountA, amountB, amountC}
			}
		}
	}

	var split []WeightedRoute
	if bestSplit[0] > 0 {
		split = append(split, WeightedRoute{Route: scaleRoute(routeA, bestAmounts[0]), Percentage: bestSplit[0]})
	}
	if bestSplit[1] > 0 {
		split = append(split, WeightedRoute{Route: scaleRoute(routeB, bestAmounts[1]), Percentage: bestSplit[1]})
	}
	if bestSplit[2] > 0 {
		split = append(split, WeightedRoute{Route: scaleRoute(routeC, bestAmounts[2]), Percentage: bestSplit[2]})
	}

	return assembleSplitRoute(split, totalAmount, bestOutput)
}

// shareOf returns share% of total.
func shareOf(total *uint256.Int, share int) *uint256.Int {
	if share == 0 {
		return new(uint256.Int)
	}
	out := new(uint256.Int).Mul(total, uint256.NewInt(uint64(share)))
	return out.Div(out, uint256.NewInt(100))
}

// simulateRouteOutput estimates the route output for a different input by
// linear scaling of the precomputed totals. Re-simulating every hop per grid
// point would be exact but costly.
func simulateRouteOutput(route *Route, amount *uint256.Int) *uint256.Int {
	if amount.IsZero() || route.TotalAmountIn.IsZero() {
		return new(uint256.Int)
	}

	out := new(uint256.Int).Mul(route.TotalAmountOut, amount)
	return out.Div(out, route.TotalAmountIn)
}

// scaleRoute copies a route onto a new input amount. Price impact scales by
// the square root of the amount ratio as a non-linear penalty.
func scaleRoute(route *Route, newAmount *uint256.Int) *Route {
	newOutput := simulateRouteOutput(route, newAmount)

	scaleFactor := 1.0
	if !route.TotalAmountIn.IsZero() {
		scaleFactor = clmm.Float64(newAmount) / clmm.Float64(route.TotalAmountIn)
	}

	scaled := route.Clone()
	scaled.TotalAmountIn = new(uint256.Int).Set(newAmount)
	scaled.TotalAmountOut = newOutput
	scaled.PriceImpact = route.PriceImpact * math.Sqrt(scaleFactor)
	return scaled
}

// assembleSplitRoute builds the aggregate fields of a split route.
func assembleSplitRoute(routes []WeightedRoute, totalAmount, totalOutput *uint256.Int) *SplitRoute {
	var totalGas uint64
	for _, wr := range routes {
		totalGas += wr.Route.GasEstimate
	}

	return &SplitRoute{
		Routes:              routes,
		TotalAmountIn:       new(uint256.Int).Set(totalAmount),
		TotalAmountOut:      totalOutput,
		CombinedPriceImpact: combinedPriceImpact(routes),
		TotalGasEstimate:    totalGas,
	}
}

// combinedPriceImpact is the share-weighted average of the sub-route impacts.
func combinedPriceImpact(routes []WeightedRoute) float64 {
	total := 0.0
	for _, wr := range routes {
		total += wr.Route.PriceImpact * (float64(wr.Percentage) / 100.0)
	}
	return total
}
