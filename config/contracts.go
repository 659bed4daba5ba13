package config

import "github.com/ethereum/go-ethereum/common"

// ContractAddresses holds the DEX contract addresses for one chain.
type ContractAddresses struct {
	// PoolManager is the singleton managing all liquidity pools.
	PoolManager string `json:"pool_manager"`
	// SwapRouter executes swaps through pools.
	SwapRouter string `json:"swap_router"`
	// PositionManager manages LP positions.
	PositionManager string `json:"position_manager"`
	// Quoter provides swap quotes via view functions.
	Quoter string `json:"quoter"`
}

// BaseMainnetContracts returns the Base mainnet deployment.
func BaseMainnetContracts() ContractAddresses {
	return ContractAddresses{
		PoolManager:     "0x91B9463d0e4d99BB2D922cba2C9D4cd13c9a7C05",
		SwapRouter:      "0xFf438e2d528F55fD1141382D1eB436201552d1A5",
		PositionManager: "0xCf31fbdBD7A44ba1bCF99642E64a1d0B56a372bA",
		Quoter:          "0x3e3D0d2cC349F42825B5cF58fd34d3bDFE25404b",
	}
}

// BaseSepoliaContracts returns the Base Sepolia deployment.
func BaseSepoliaContracts() ContractAddresses {
	return ContractAddresses{
		PoolManager:     "0x91B9463d0e4d99BB2D922cba2C9D4cd13c9a7C05",
		SwapRouter:      "0xFf438e2d528F55fD1141382D1eB436201552d1A5",
		PositionManager: "0xCf31fbdBD7A44ba1bCF99642E64a1d0B56a372bA",
		Quoter:          "0x3e3D0d2cC349F42825B5cF58fd34d3bDFE25404b",
	}
}

// ForChain returns the contract registry entry for a chain id.
func ForChain(chainID uint64) (ContractAddresses, bool) {
	switch chainID {
	case 8453:
		return BaseMainnetContracts(), true
	case 84532:
		return BaseSepoliaContracts(), true
	default:
		return ContractAddresses{}, false
	}
}

// Validate rejects registry entries carrying the zero address.
func (c ContractAddresses) Validate() error {
	for name, addr := range map[string]string{
		"pool_manager":     c.PoolManager,
		"swap_router":      c.SwapRouter,
		"position_manager": c.PositionManager,
		"quoter":           c.Quoter,
	} {
		if !common.IsHexAddress(addr) || common.HexToAddress(addr) == (common.Address{}) {
			return &AddressError{Field: name, Value: addr}
		}
	}
	return nil
}

// AddressError reports an invalid registry address.
type AddressError struct {
	Field string
	Value string
}

func (e *AddressError) Error() string {
	return "invalid contract address for " + e.Field + ": " + e.Value
}
