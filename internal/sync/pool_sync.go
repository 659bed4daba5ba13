// Package sync feeds the pool graph with pool state. An external ingestor
// (subgraph or RPC scraper) publishes pool records to Redis; the syncer
// reads them on a fixed cadence and upserts them into the graph. When Redis
// holds no records, a realistic seed set keeps the engine routable for
// development and testing.
package sync

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"routing-engine/internal/clmm"
	"routing-engine/internal/graph"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-redis/redis/v8"
	"github.com/holiman/uint256"
)

const (
	keyPrefix   = "router:"
	allPoolsKey = keyPrefix + "all_pools"
	recordTTL   = 24 * time.Hour
)

// SyncConfig configures the pool syncer.
type SyncConfig struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RefreshInterval time.Duration
}

// DefaultSyncConfig returns the defaults: local Redis, one refresh per
// ~block time.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		RedisAddr:       "localhost:6379",
		RefreshInterval: 12 * time.Second,
	}
}

// PoolRecord is the wire format an ingestor publishes per pool.
type PoolRecord struct {
	Pool   *graph.PoolEdge `json:"pool"`
	Token0 graph.TokenNode `json:"token0"`
	Token1 graph.TokenNode `json:"token1"`
}

// PoolSyncer keeps the graph in step with the published pool state.
type PoolSyncer struct {
	graph  *graph.PoolGraph
	client *redis.Client
	config SyncConfig
}

// NewPoolSyncer creates a syncer with the default configuration.
func NewPoolSyncer(g *graph.PoolGraph) *PoolSyncer {
	return NewPoolSyncerWithConfig(g, DefaultSyncConfig())
}

// NewPoolSyncerWithConfig creates a syncer with an explicit configuration.
func NewPoolSyncerWithConfig(g *graph.PoolGraph, config SyncConfig) *PoolSyncer {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	return &PoolSyncer{
		graph:  g,
		client: client,
		config: config,
	}
}

// SyncPools loads the published pool records and upserts them into the
// graph. Falls back to the seed set when Redis is unreachable or empty.
func (ps *PoolSyncer) SyncPools(ctx context.Context) error {
	records, err := ps.loadPoolRecords(ctx)
	if err != nil {
		log.Printf("PoolSyncer: failed to load pool records (%v), seeding defaults", err)
		ps.seedPools()
		return nil
	}
	if len(records) == 0 {
		log.Printf("PoolSyncer: no published pool records, seeding defaults")
		ps.seedPools()
		return nil
	}

	for _, rec := range records {
		ps.graph.UpsertPool(rec.Pool, rec.Token0, rec.Token1)
	}

	stats := ps.graph.Stats()
	log.Printf("PoolSyncer: sync complete, %d tokens, %d pools", stats.TokenCount, stats.PoolCount)
	return nil
}

// StartPeriodicSync refreshes the graph on the configured interval until the
// context is cancelled.
func (ps *PoolSyncer) StartPeriodicSync(ctx context.Context) {
	log.Printf("PoolSyncer: starting periodic sync with %v interval", ps.config.RefreshInterval)
	ticker := time.NewTicker(ps.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := ps.SyncPools(ctx); err != nil {
				log.Printf("PoolSyncer: periodic sync failed: %v", err)
			}
		case <-ctx.Done():
			log.Printf("PoolSyncer: stopping periodic sync")
			return
		}
	}
}

// StorePoolRecord publishes one pool record. Ingestors call this for each
// observed pool.
func (ps *PoolSyncer) StorePoolRecord(ctx context.Context, rec *PoolRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%spool:%s", keyPrefix, rec.Pool.PoolID.Hex())
	if err := ps.client.Set(ctx, key, data, recordTTL).Err(); err != nil {
		return err
	}

	if err := ps.client.SAdd(ctx, allPoolsKey, rec.Pool.PoolID.Hex()).Err(); err != nil {
		return err
	}
	ps.client.Expire(ctx, allPoolsKey, recordTTL)

	return nil
}

// loadPoolRecords fetches every published pool record in one pipeline.
func (ps *PoolSyncer) loadPoolRecords(ctx context.Context) ([]*PoolRecord, error) {
	ids, err := ps.client.SMembers(ctx, allPoolsKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := ps.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(ids))
	for _, id := range ids {
		key := fmt.Sprintf("%spool:%s", keyPrefix, id)
		cmds[id] = pipe.Get(ctx, key)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	var records []*PoolRecord
	for id, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			if err != redis.Nil {
				log.Printf("PoolSyncer: failed to get pool %s from pipeline: %v", id, err)
			}
			continue
		}

		var rec PoolRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			log.Printf("PoolSyncer: failed to unmarshal pool %s: %v", id, err)
			continue
		}
		records = append(records, &rec)
	}

	return records, nil
}

// Close releases the Redis connection.
func (ps *PoolSyncer) Close() error {
	return ps.client.Close()
}

// ComputePoolID derives a pool id the way the pool manager does: the hash of
// the pool key fields.
func ComputePoolID(token0, token1 common.Address, fee uint32, tickSpacing int32, hook common.Address) common.Hash {
	var feeBytes [4]byte
	binary.BigEndian.PutUint32(feeBytes[:], fee)
	var spacingBytes [4]byte
	binary.BigEndian.PutUint32(spacingBytes[:], uint32(tickSpacing))

	return crypto.Keccak256Hash(token0.Bytes(), token1.Bytes(), feeBytes[:], spacingBytes[:], hook.Bytes())
}

// seedPools installs a Base mainnet pool set with real token addresses and
// fee tiers. The WETH/USDC, USDC/DAI and cbETH/WETH pools start at realistic
// ticks; WETH/DAI, WETH/cbBTC and cbBTC/USDC start at tick 0 (price 1.0).
func (ps *PoolSyncer) seedPools() {
	weth := graph.NewNativeTokenNode(common.HexToAddress("0x4200000000000000000000000000000000000006"), "WETH", 18)
	usdc := graph.NewTokenNode(common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"), "USDC", 6)
	dai := graph.NewTokenNode(common.HexToAddress("0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb"), "DAI", 18)
	cbbtc := graph.NewTokenNode(common.HexToAddress("0x0555E30da8f98308EdB960aa94C0Db47230d2B9c"), "cbBTC", 8)
	cbeth := graph.NewTokenNode(common.HexToAddress("0x2Ae3F1Ec7F1F5012CFEab0185bfc7aa3cf0DEc22"), "cbETH", 18)

	type seed struct {
		token0, token1 graph.TokenNode
		fee            uint32
		tickSpacing    int32
		liquidity      string
		tick           int32
	}

	// tick -196256 ~ $3000 WETH(18)/USDC(6); tick 276324 ~ 1:1 USDC(6)/DAI(18)
	seeds := []seed{
		{weth, usdc, 3000, 60, "50000000000000000000000", -196256},
		{weth, usdc, 500, 10, "30000000000000000000000", -196256},
		{weth, dai, 3000, 60, "20000000000000000000000", 0},
		{usdc, dai, 100, 1, "100000000000000000000000", 276324},
		{weth, cbbtc, 3000, 60, "10000000000000000000000", 0},
		{cbeth, weth, 500, 10, "15000000000000000000000", 100},
		{cbbtc, usdc, 3000, 60, "8000000000000000000000", 0},
	}

	for _, s := range seeds {
		poolID := ComputePoolID(s.token0.Address, s.token1.Address, s.fee, s.tickSpacing, common.Address{})
		pool := graph.NewPoolEdge(
			poolID,
			s.token0.Address,
			s.token1.Address,
			s.fee,
			s.tickSpacing,
			uint256.MustFromDecimal(s.liquidity),
			clmm.TickToSqrtPriceX96(s.tick),
			s.tick,
		)
		ps.graph.UpsertPool(pool, s.token0, s.token1)
	}

	stats := ps.graph.Stats()
	log.Printf("PoolSyncer: seeded %d pools across %d tokens", stats.PoolCount, stats.TokenCount)
}
