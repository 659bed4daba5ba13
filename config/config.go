package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Chain   ChainConfig   `yaml:"chain"`
	Redis   RedisConfig   `yaml:"redis"`
	Routing RoutingConfig `yaml:"routing"`
	Sync    SyncConfig    `yaml:"sync"`
}

type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
}

type ChainConfig struct {
	ChainID     uint64 `yaml:"chain_id"`
	RPCURL      string `yaml:"rpc_url"`
	PoolManager string `yaml:"pool_manager"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RoutingConfig struct {
	MaxHops         int    `yaml:"max_hops"`
	MaxSplits       int    `yaml:"max_splits"`
	EnableCache     bool   `yaml:"enable_cache"`
	EnableParallel  bool   `yaml:"enable_parallel"`
	CacheTTLSeconds uint64 `yaml:"cache_ttl_seconds"`
	MaxRoutesCached int    `yaml:"max_routes_cached"`
	MaxQuotesCached int    `yaml:"max_quotes_cached"`
}

type SyncConfig struct {
	RefreshIntervalSeconds int `yaml:"refresh_interval_seconds"`
}

var AppConfig *Config

// loadConfigFromFile loads default configuration from a YAML file.
func loadConfigFromFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: YAML config file not found at %s. Using env vars and defaults only.", path)
			return nil
		}
		return err
	}
	if err = yaml.Unmarshal(data, config); err != nil {
		return err
	}
	log.Printf("Loaded configuration defaults from %s", path)
	return nil
}

func Init() error {
	AppConfig = &Config{Routing: RoutingConfig{EnableCache: true, EnableParallel: true}}

	if err := loadConfigFromFile("config/config.yaml", AppConfig); err != nil {
		log.Printf("Warning: Failed to load config.yaml: %v. Using defaults.", err)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	AppConfig.Server.Host = getEnv("SERVER_HOST", AppConfig.Server.Host, "0.0.0.0")
	AppConfig.Server.Port = getEnv("SERVER_PORT", AppConfig.Server.Port, "3001")
	AppConfig.Server.ReadTimeout = getEnvAsInt("SERVER_READ_TIMEOUT", AppConfig.Server.ReadTimeout, 15)
	AppConfig.Server.WriteTimeout = getEnvAsInt("SERVER_WRITE_TIMEOUT", AppConfig.Server.WriteTimeout, 15)

	AppConfig.Chain.ChainID = uint64(getEnvAsInt64("CHAIN_ID", int64(AppConfig.Chain.ChainID), 8453))
	AppConfig.Chain.RPCURL = getEnv("CHAIN_RPC_URL", AppConfig.Chain.RPCURL, "https://mainnet.base.org")
	AppConfig.Chain.PoolManager = getEnv("CHAIN_POOL_MANAGER", AppConfig.Chain.PoolManager, "")

	AppConfig.Redis.Addr = getEnv("REDIS_ADDR", AppConfig.Redis.Addr, "localhost:6379")
	AppConfig.Redis.Password = getEnv("REDIS_PASSWORD", AppConfig.Redis.Password, "")
	AppConfig.Redis.DB = getEnvAsInt("REDIS_DB", AppConfig.Redis.DB, 0)

	AppConfig.Routing.MaxHops = getEnvAsInt("MAX_HOPS", AppConfig.Routing.MaxHops, 4)
	AppConfig.Routing.MaxSplits = getEnvAsInt("MAX_SPLITS", AppConfig.Routing.MaxSplits, 3)
	AppConfig.Routing.EnableCache = getEnvAsBool("ENABLE_CACHE", AppConfig.Routing.EnableCache)
	AppConfig.Routing.EnableParallel = getEnvAsBool("ENABLE_PARALLEL", AppConfig.Routing.EnableParallel)
	AppConfig.Routing.CacheTTLSeconds = uint64(getEnvAsInt64("CACHE_TTL_SECONDS", int64(AppConfig.Routing.CacheTTLSeconds), 15))
	AppConfig.Routing.MaxRoutesCached = getEnvAsInt("MAX_ROUTES_CACHED", AppConfig.Routing.MaxRoutesCached, 1000)
	AppConfig.Routing.MaxQuotesCached = getEnvAsInt("MAX_QUOTES_CACHED", AppConfig.Routing.MaxQuotesCached, 2000)

	AppConfig.Sync.RefreshIntervalSeconds = getEnvAsInt("SYNC_REFRESH_SECONDS", AppConfig.Sync.RefreshIntervalSeconds, 12)

	// Resolve the pool manager from the chain registry when not set explicitly.
	if AppConfig.Chain.PoolManager == "" {
		if contracts, ok := ForChain(AppConfig.Chain.ChainID); ok {
			AppConfig.Chain.PoolManager = contracts.PoolManager
		}
	}

	return nil
}

// getEnv returns env value if set, otherwise yamlValue if not empty, otherwise fallback.
func getEnv(key string, yamlValue string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if yamlValue != "" {
		return yamlValue
	}
	return fallback
}

// getEnvAsInt returns env int if set, otherwise yamlValue if non-zero, otherwise fallback.
func getEnvAsInt(key string, yamlValue int, fallback int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	if yamlValue != 0 {
		return yamlValue
	}
	return fallback
}

// getEnvAsInt64 returns env int64 if set, otherwise yamlValue if non-zero, otherwise fallback.
func getEnvAsInt64(key string, yamlValue int64, fallback int64) int64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	if yamlValue != 0 {
		return yamlValue
	}
	return fallback
}

// getEnvAsBool returns env bool if set, otherwise fallback.
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
