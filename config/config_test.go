package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	require.NoError(t, Init())

	assert.Equal(t, "3001", AppConfig.Server.Port)
	assert.Equal(t, uint64(8453), AppConfig.Chain.ChainID)
	assert.Equal(t, 4, AppConfig.Routing.MaxHops)
	assert.Equal(t, 3, AppConfig.Routing.MaxSplits)
	assert.True(t, AppConfig.Routing.EnableCache)
	assert.True(t, AppConfig.Routing.EnableParallel)
	assert.Equal(t, uint64(15), AppConfig.Routing.CacheTTLSeconds)
	assert.Equal(t, 1000, AppConfig.Routing.MaxRoutesCached)
	assert.Equal(t, 2000, AppConfig.Routing.MaxQuotesCached)
	assert.Equal(t, 12, AppConfig.Sync.RefreshIntervalSeconds)

	// The pool manager resolves from the chain registry.
	assert.Equal(t, BaseMainnetContracts().PoolManager, AppConfig.Chain.PoolManager)
}

func TestInitEnvOverride(t *testing.T) {
	os.Setenv("MAX_HOPS", "2")
	os.Setenv("SERVER_PORT", "9000")
	defer os.Unsetenv("MAX_HOPS")
	defer os.Unsetenv("SERVER_PORT")

	require.NoError(t, Init())

	assert.Equal(t, 2, AppConfig.Routing.MaxHops)
	assert.Equal(t, "9000", AppConfig.Server.Port)
}

func TestForChain(t *testing.T) {
	contracts, ok := ForChain(8453)
	assert.True(t, ok)
	assert.Equal(t, "0x91B9463d0e4d99BB2D922cba2C9D4cd13c9a7C05", contracts.PoolManager)

	_, ok = ForChain(84532)
	assert.True(t, ok)

	_, ok = ForChain(1)
	assert.False(t, ok)
}

func TestContractValidation(t *testing.T) {
	contracts := BaseMainnetContracts()
	assert.NoError(t, contracts.Validate())

	contracts.Quoter = "0x0000000000000000000000000000000000000000"
	err := contracts.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quoter")

	contracts = BaseMainnetContracts()
	contracts.SwapRouter = "not-an-address"
	assert.Error(t, contracts.Validate())
}
