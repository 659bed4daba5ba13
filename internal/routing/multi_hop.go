package routing

import (
	"bytes"
	"container/heap"
	"context"

	"routing-engine/internal/clmm"
	"routing-engine/internal/graph"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// pathState is one frontier entry of the best-first search. tokens records
// the token chain from the origin, so hop reconstruction never has to infer
// the entry token of a pool.
type pathState struct {
	token     common.Address
	amountOut *uint256.Int
	path      []*graph.PoolEdge
	tokens    []common.Address
	visited   map[common.Address]bool
	gasUsed   uint64
	index     int
}

// pathQueue is a max-heap over cumulative output. Ties break by fewer hops,
// then by lexicographic pool-id sequence, keeping results stable.
type pathQueue []*pathState

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool {
	if c := pq[i].amountOut.Cmp(pq[j].amountOut); c != 0 {
		return c > 0
	}
	if len(pq[i].path) != len(pq[j].path) {
		return len(pq[i].path) < len(pq[j].path)
	}
	for k := range pq[i].path {
		if k >= len(pq[j].path) {
			break
		}
		if c := bytes.Compare(pq[i].path[k].PoolID[:], pq[j].path[k].PoolID[:]); c != 0 {
			return c < 0
		}
	}
	return false
}

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *pathQueue) Push(x interface{}) {
	n := len(*pq)
	state := x.(*pathState)
	state.index = n
	*pq = append(*pq, state)
}

func (pq *pathQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	state := old[n-1]
	old[n-1] = nil
	state.index = -1
	*pq = old[0 : n-1]
	return state
}

// pruneToleranceNumerator: a popped state below 95% of the best output seen at its
// token is discarded. The slack keeps diverse routes alive for splitting.
const pruneToleranceNumerator = 95

// FindTopRoutes performs a bounded best-first search and returns up to topN
// routes sorted by descending output. Cancellation is checked between heap
// pops.
func FindTopRoutes(ctx context.Context, g *graph.PoolGraph, tokenIn, tokenOut common.Address, amountIn *uint256.Int, maxHops, topN int) []*Route {
	if maxHops > clmm.MaxHops {
		maxHops = clmm.MaxHops
	}

	if !g.HasPath(tokenIn, tokenOut) {
		return nil
	}

	pq := make(pathQueue, 0)
	heap.Init(&pq)

	bestPerToken := make(map[common.Address]*uint256.Int)
	var completed []*Route

	heap.Push(&pq, &pathState{
		token:     tokenIn,
		amountOut: new(uint256.Int).Set(amountIn),
		tokens:    []common.Address{tokenIn},
		visited:   map[common.Address]bool{tokenIn: true},
	})

	for pq.Len() > 0 && ctx.Err() == nil {
		state := heap.Pop(&pq).(*pathState)

		if state.token == tokenOut && len(state.path) > 0 {
			if route, err := buildRoute(g, state, amountIn); err == nil {
				completed = append(completed, route)
				if len(completed) >= topN {
					break
				}
			}
			continue
		}

		if best, ok := bestPerToken[state.token]; ok {
			floor := new(uint256.Int).Mul(best, uint256.NewInt(pruneToleranceNumerator))
			floor.Div(floor, uint256.NewInt(100))
			if state.amountOut.Cmp(floor) < 0 {
				continue
			}
			if state.amountOut.Cmp(best) > 0 {
				bestPerToken[state.token] = new(uint256.Int).Set(state.amountOut)
			}
		} else {
			bestPerToken[state.token] = new(uint256.Int).Set(state.amountOut)
		}

		if len(state.path) >= maxHops {
			continue
		}

		for _, pool := range g.GetPoolsForToken(state.token) {
			nextToken, ok := pool.OtherToken(state.token)
			if !ok || state.visited[nextToken] {
				continue
			}

			amountOut := simulateDirectedSwap(pool, state.token, state.amountOut)
			if amountOut.Cmp(dustFloor) < 0 {
				continue
			}

			newPath := make([]*graph.PoolEdge, len(state.path)+1)
			copy(newPath, state.path)
			newPath[len(newPath)-1] = pool

			newTokens := make([]common.Address, len(state.tokens)+1)
			copy(newTokens, state.tokens)
			newTokens[len(newTokens)-1] = nextToken

			newVisited := make(map[common.Address]bool, len(state.visited)+1)
			for t := range state.visited {
				newVisited[t] = true
			}
			newVisited[nextToken] = true

			heap.Push(&pq, &pathState{
				token:     nextToken,
				amountOut: amountOut,
				path:      newPath,
				tokens:    newTokens,
				visited:   newVisited,
				gasUsed:   state.gasUsed + estimateSwapGas(pool),
			})
		}
	}

	sortRoutesByOutput(completed)
	return completed
}

// FindBestMultiHopRoute returns the single best multi-hop route.
func FindBestMultiHopRoute(ctx context.Context, g *graph.PoolGraph, tokenIn, tokenOut common.Address, amountIn *uint256.Int, maxHops int) (*Route, error) {
	routes := FindTopRoutes(ctx, g, tokenIn, tokenOut, amountIn, maxHops, 1)
	if len(routes) == 0 {
		return nil, &NoRouteFoundError{From: tokenIn, To: tokenOut}
	}
	return routes[0], nil
}

// simulateDirectedSwap prices one hop for ranking purposes, with the swap
// direction derived from the actual input token. Failures rank as zero.
func simulateDirectedSwap(pool *graph.PoolEdge, tokenIn common.Address, amountIn *uint256.Int) *uint256.Int {
	if amountIn.IsZero() || pool.Liquidity.IsZero() {
		return new(uint256.Int)
	}

	zeroForOne, ok := pool.ZeroForOne(tokenIn)
	if !ok {
		return new(uint256.Int)
	}

	var sqrtPriceTarget *uint256.Int
	if zeroForOne {
		sqrtPriceTarget = clmm.TickToSqrtPriceX96(pool.Tick - pool.TickSpacing)
	} else {
		sqrtPriceTarget = clmm.TickToSqrtPriceX96(pool.Tick + pool.TickSpacing)
	}

	step := clmm.ComputeSwapStep(pool.SqrtPriceX96, sqrtPriceTarget, pool.Liquidity, amountIn, pool.Fee)
	return step.AmountOut
}

// buildRoute materialises a completed search state into a Route. The token
// chain recorded on the state drives hop reconstruction.
func buildRoute(g *graph.PoolGraph, state *pathState, initialAmount *uint256.Int) (*Route, error) {
	if len(state.path) == 0 {
		return nil, &InternalError{Reason: "empty path"}
	}
	if len(state.tokens) != len(state.path)+1 {
		return nil, &InternalError{Reason: "token chain does not match path"}
	}

	hops := make([]RouteHop, 0, len(state.path))
	currentAmount := new(uint256.Int).Set(initialAmount)

	for i, pool := range state.path {
		tokenIn := state.tokens[i]
		tokenOut, ok := pool.OtherToken(tokenIn)
		if !ok {
			return nil, &InternalError{Reason: "token not in pool during route reconstruction"}
		}
		if tokenOut != state.tokens[i+1] {
			return nil, &InternalError{Reason: "token chain does not match pool endpoints"}
		}

		amountOut := simulateDirectedSwap(pool, tokenIn, currentAmount)

		hops = append(hops, RouteHop{
			Pool:      pool,
			TokenIn:   tokenIn,
			TokenOut:  tokenOut,
			AmountIn:  currentAmount,
			AmountOut: amountOut,
		})

		currentAmount = new(uint256.Int).Set(amountOut)
	}

	first := state.tokens[0]
	last := state.tokens[len(state.tokens)-1]

	return &Route{
		Hops:           hops,
		TotalAmountIn:  new(uint256.Int).Set(initialAmount),
		TotalAmountOut: new(uint256.Int).Set(state.amountOut),
		PriceImpact:    calculatePriceImpact(g, first, last, initialAmount, state.amountOut),
		GasEstimate:    state.gasUsed,
	}, nil
}
