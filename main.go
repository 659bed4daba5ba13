package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"routing-engine/config"
	"routing-engine/internal/api"
	"routing-engine/internal/graph"
	"routing-engine/internal/routing"
	poolsync "routing-engine/internal/sync"

	"github.com/gorilla/mux"
)

func main() {
	if err := config.Init(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	log.Printf("Starting routing engine (chain_id=%d, max_hops=%d, max_splits=%d)",
		config.AppConfig.Chain.ChainID,
		config.AppConfig.Routing.MaxHops,
		config.AppConfig.Routing.MaxSplits)

	if contracts, ok := config.ForChain(config.AppConfig.Chain.ChainID); ok {
		if err := contracts.Validate(); err != nil {
			log.Fatalf("Invalid contract registry: %v", err)
		}
	}

	poolGraph := graph.NewPoolGraph()

	syncer := poolsync.NewPoolSyncerWithConfig(poolGraph, poolsync.SyncConfig{
		RedisAddr:       config.AppConfig.Redis.Addr,
		RedisPassword:   config.AppConfig.Redis.Password,
		RedisDB:         config.AppConfig.Redis.DB,
		RefreshInterval: time.Duration(config.AppConfig.Sync.RefreshIntervalSeconds) * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Println("Syncing pool data...")
	if err := syncer.SyncPools(ctx); err != nil {
		log.Fatalf("Initial pool sync failed: %v", err)
	}
	stats := poolGraph.Stats()
	log.Printf("Pool sync complete: %d tokens, %d pools", stats.TokenCount, stats.PoolCount)

	go syncer.StartPeriodicSync(ctx)

	router := routing.NewRouterWithConfig(poolGraph, routing.RouterConfig{
		EnableCache:     config.AppConfig.Routing.EnableCache,
		EnableParallel:  config.AppConfig.Routing.EnableParallel,
		CacheTTLSeconds: config.AppConfig.Routing.CacheTTLSeconds,
		MaxRoutesCached: config.AppConfig.Routing.MaxRoutesCached,
		MaxQuotesCached: config.AppConfig.Routing.MaxQuotesCached,
	})

	handler := api.NewHandler(router, poolGraph, config.AppConfig.Chain.ChainID,
		time.Duration(config.AppConfig.Routing.CacheTTLSeconds)*time.Second)

	r := mux.NewRouter()
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.HandleFunc("/v1/quote", handler.GetQuote).Methods("GET")

	addr := config.AppConfig.Server.Host + ":" + config.AppConfig.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	log.Printf("HTTP server starting on http://%s", addr)
	log.Fatal(server.ListenAndServe())
}
