// Package graph holds the concurrent pool graph: tokens are nodes, pools are
// pairs of opposing directed edges sharing one PoolEdge.
package graph

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// halfEdge is one directed edge of a pool. Both directions of a pool point at
// the same PoolEdge, so an upsert swaps the state for both at once.
type halfEdge struct {
	to   int
	pool *PoolEdge
}

type poolRef struct {
	node0, node1 int
	e0, e1       *halfEdge
}

// PoolGraph is a directed multigraph of tokens and pools. Nodes are
// arena-allocated and addressed by dense indices; structural mutation
// serialises behind a writer lock, queries take shared access.
type PoolGraph struct {
	mu         sync.RWMutex
	nodes      []TokenNode
	adjacency  [][]*halfEdge
	tokenIndex map[common.Address]int
	poolIndex  map[common.Hash]poolRef
	lastUpdate atomic.Int64
}

// GraphStats is a snapshot of graph size and freshness.
type GraphStats struct {
	TokenCount int    `json:"tokenCount"`
	PoolCount  int    `json:"poolCount"`
	LastUpdate uint64 `json:"lastUpdate"`
}

// NewPoolGraph creates an empty pool graph.
func NewPoolGraph() *PoolGraph {
	return &PoolGraph{
		tokenIndex: make(map[common.Address]int),
		poolIndex:  make(map[common.Hash]poolRef),
	}
}

// getOrCreateNode returns the index for a token, installing it if new.
// Caller must hold the write lock.
func (g *PoolGraph) getOrCreateNode(token TokenNode) int {
	if idx, ok := g.tokenIndex[token.Address]; ok {
		return idx
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, token)
	g.adjacency = append(g.adjacency, nil)
	g.tokenIndex[token.Address] = idx
	return idx
}

// UpsertPool installs both directed edges for a pool, creating token nodes as
// needed. Re-upserting the same poolId replaces the pool state atomically for
// both directions.
func (g *PoolGraph) UpsertPool(pool *PoolEdge, token0, token1 TokenNode) {
	g.mu.Lock()
	node0 := g.getOrCreateNode(token0)
	node1 := g.getOrCreateNode(token1)

	if ref, ok := g.poolIndex[pool.PoolID]; ok {
		// Replace state in place; both directions share the new edge value.
		ref.e0.pool = pool
		ref.e1.pool = pool
	} else {
		e0 := &halfEdge{to: node1, pool: pool}
		e1 := &halfEdge{to: node0, pool: pool}
		g.adjacency[node0] = append(g.adjacency[node0], e0)
		g.adjacency[node1] = append(g.adjacency[node1], e1)
		g.poolIndex[pool.PoolID] = poolRef{node0: node0, node1: node1, e0: e0, e1: e1}
	}
	g.mu.Unlock()

	g.lastUpdate.Store(time.Now().Unix())
}

// GetPoolsForToken returns all pools on outgoing edges of a token. Each
// physical pool appears once per direction from this token's perspective.
func (g *PoolGraph) GetPoolsForToken(token common.Address) []*PoolEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	idx, ok := g.tokenIndex[token]
	if !ok {
		return nil
	}

	pools := make([]*PoolEdge, 0, len(g.adjacency[idx]))
	for _, e := range g.adjacency[idx] {
		pools = append(pools, e.pool)
	}
	return pools
}

// GetPool returns the pool with the given id, if present.
func (g *PoolGraph) GetPool(poolID common.Hash) (*PoolEdge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ref, ok := g.poolIndex[poolID]
	if !ok {
		return nil, false
	}
	return ref.e0.pool, true
}

// GetToken returns the token node installed for an address.
func (g *PoolGraph) GetToken(address common.Address) (TokenNode, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	idx, ok := g.tokenIndex[address]
	if !ok {
		return TokenNode{}, false
	}
	return g.nodes[idx], true
}

// HasPath reports whether any route of pools connects the two tokens.
func (g *PoolGraph) HasPath(from, to common.Address) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	start, ok := g.tokenIndex[from]
	if !ok {
		return false
	}
	end, ok := g.tokenIndex[to]
	if !ok {
		return false
	}
	if start == end {
		return true
	}

	visited := make([]bool, len(g.nodes))
	visited[start] = true
	queue := []int{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, e := range g.adjacency[current] {
			if e.to == end {
				return true
			}
			if !visited[e.to] {
				visited[e.to] = true
				queue = append(queue, e.to)
			}
		}
	}
	return false
}

// GetAllTokens returns all installed token nodes.
func (g *PoolGraph) GetAllTokens() []TokenNode {
	g.mu.RLock()
	defer g.mu.RUnlock()

	tokens := make([]TokenNode, len(g.nodes))
	copy(tokens, g.nodes)
	return tokens
}

// Stats returns a snapshot of the graph size and last update time.
func (g *PoolGraph) Stats() GraphStats {
	g.mu.RLock()
	tokenCount := len(g.nodes)
	poolCount := len(g.poolIndex)
	g.mu.RUnlock()

	return GraphStats{
		TokenCount: tokenCount,
		PoolCount:  poolCount,
		LastUpdate: uint64(g.lastUpdate.Load()),
	}
}
