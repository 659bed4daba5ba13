package routing

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// NoRouteFoundError reports that no path connects the pair, or that every
// candidate was dust-floored away.
type NoRouteFoundError struct {
	From common.Address
	To   common.Address
}

func (e *NoRouteFoundError) Error() string {
	return fmt.Sprintf("no route found from %s to %s", e.From.Hex(), e.To.Hex())
}

// InsufficientLiquidityError reports that a pool cannot satisfy the input.
type InsufficientLiquidityError struct {
	Required  string
	Available string
}

func (e *InsufficientLiquidityError) Error() string {
	return fmt.Sprintf("insufficient liquidity: required %s, available %s", e.Required, e.Available)
}

// PriceImpactTooHighError reports a route rejected by an impact threshold.
type PriceImpactTooHighError struct {
	Impact float64
}

func (e *PriceImpactTooHighError) Error() string {
	return fmt.Sprintf("price impact too high: %.2f%%", e.Impact)
}

// InvalidTokenAddressError reports a malformed token address in a request.
type InvalidTokenAddressError struct {
	Address string
}

func (e *InvalidTokenAddressError) Error() string {
	return fmt.Sprintf("invalid token address: %s", e.Address)
}

// InvalidAmountError reports a malformed or non-positive request amount.
type InvalidAmountError struct {
	Amount string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount: %s", e.Amount)
}

// PoolNotFoundError reports a lookup for an unknown pool id.
type PoolNotFoundError struct {
	PoolID common.Hash
}

func (e *PoolNotFoundError) Error() string {
	return fmt.Sprintf("pool not found: %s", e.PoolID.Hex())
}

// SimulationError reports a swap simulation failure.
type SimulationError struct {
	Reason string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation failed: %s", e.Reason)
}

// RPCError reports a chain RPC failure.
type RPCError struct {
	Reason string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error: %s", e.Reason)
}

// CacheError reports a cache subsystem failure.
type CacheError struct {
	Reason string
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: %s", e.Reason)
}

// ConfigError reports an invalid engine configuration.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// InternalError reports an engine invariant violation. These are never
// silently corrected.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Reason)
}
