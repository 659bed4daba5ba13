package routing

import (
	"routing-engine/internal/clmm"
	"routing-engine/internal/graph"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func testAddress(n uint64) common.Address {
	return common.BigToAddress(uint256.NewInt(n).ToBig())
}

func testPoolID(n uint64) common.Hash {
	return common.BigToHash(uint256.NewInt(n).ToBig())
}

func newTestPool(id uint64, token0, token1 common.Address, fee uint32, tickSpacing int32, liquidity string, tick int32) *graph.PoolEdge {
	return graph.NewPoolEdge(
		testPoolID(id),
		token0,
		token1,
		fee,
		tickSpacing,
		uint256.MustFromDecimal(liquidity),
		clmm.TickToSqrtPriceX96(tick),
		tick,
	)
}

// buildTestGraph wires a chain A-B-C-D plus a direct A-D pool with a higher
// fee and thinner liquidity.
func buildTestGraph() *graph.PoolGraph {
	g := graph.NewPoolGraph()

	a := graph.NewTokenNode(testAddress(1), "A", 18)
	b := graph.NewTokenNode(testAddress(2), "B", 18)
	c := graph.NewTokenNode(testAddress(3), "C", 18)
	d := graph.NewTokenNode(testAddress(4), "D", 18)

	g.UpsertPool(newTestPool(1, a.Address, b.Address, 3000, 60, "1000000000000000000000", 0), a, b)
	g.UpsertPool(newTestPool(2, b.Address, c.Address, 3000, 60, "1000000000000000000000", 0), b, c)
	g.UpsertPool(newTestPool(3, c.Address, d.Address, 3000, 60, "1000000000000000000000", 0), c, d)
	g.UpsertPool(newTestPool(4, a.Address, d.Address, 10000, 200, "500000000000000000000", 0), a, d)

	return g
}

func buildEmptyGraph() *graph.PoolGraph {
	return graph.NewPoolGraph()
}

var oneToken = "1000000000000000000"

func testAmount(dec string) *uint256.Int {
	return uint256.MustFromDecimal(dec)
}
