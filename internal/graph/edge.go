package graph

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PoolEdge represents one concentrated-liquidity pool connecting two tokens.
// The same PoolEdge backs both directed edges of the pool in the graph.
type PoolEdge struct {
	PoolID       common.Hash    `json:"poolId"`
	Token0       common.Address `json:"token0"`
	Token1       common.Address `json:"token1"`
	Fee          uint32         `json:"fee"` // in millionths (3000 = 0.3%)
	TickSpacing  int32          `json:"tickSpacing"`
	Liquidity    *uint256.Int   `json:"liquidity"`
	SqrtPriceX96 *uint256.Int   `json:"sqrtPriceX96"`
	Tick         int32          `json:"tick"`
	HookAddress  common.Address `json:"hookAddress"`
}

// NewPoolEdge creates a pool edge without a hook.
func NewPoolEdge(poolID common.Hash, token0, token1 common.Address, fee uint32, tickSpacing int32, liquidity, sqrtPriceX96 *uint256.Int, tick int32) *PoolEdge {
	return &PoolEdge{
		PoolID:       poolID,
		Token0:       token0,
		Token1:       token1,
		Fee:          fee,
		TickSpacing:  tickSpacing,
		Liquidity:    liquidity,
		SqrtPriceX96: sqrtPriceX96,
		Tick:         tick,
	}
}

// NewPoolEdgeWithHook creates a pool edge with a hook extension.
func NewPoolEdgeWithHook(poolID common.Hash, token0, token1 common.Address, fee uint32, tickSpacing int32, liquidity, sqrtPriceX96 *uint256.Int, tick int32, hook common.Address) *PoolEdge {
	p := NewPoolEdge(poolID, token0, token1, fee, tickSpacing, liquidity, sqrtPriceX96, tick)
	p.HookAddress = hook
	return p
}

// OtherToken returns the pool's other token, or false when the token is not
// part of the pool.
func (p *PoolEdge) OtherToken(token common.Address) (common.Address, bool) {
	switch token {
	case p.Token0:
		return p.Token1, true
	case p.Token1:
		return p.Token0, true
	default:
		return common.Address{}, false
	}
}

// ContainsToken reports whether the pool touches the given token.
func (p *PoolEdge) ContainsToken(token common.Address) bool {
	return p.Token0 == token || p.Token1 == token
}

// ZeroForOne returns the swap direction for the given input token, or false
// when the token is not part of the pool.
func (p *PoolEdge) ZeroForOne(tokenIn common.Address) (bool, bool) {
	switch tokenIn {
	case p.Token0:
		return true, true
	case p.Token1:
		return false, true
	default:
		return false, false
	}
}

// MarshalJSON renders the 256-bit fields as decimal strings.
func (p *PoolEdge) MarshalJSON() ([]byte, error) {
	type Alias PoolEdge
	return json.Marshal(&struct {
		Liquidity    string `json:"liquidity"`
		SqrtPriceX96 string `json:"sqrtPriceX96"`
		*Alias
	}{
		Liquidity:    p.Liquidity.Dec(),
		SqrtPriceX96: p.SqrtPriceX96.Dec(),
		Alias:        (*Alias)(p),
	})
}

// UnmarshalJSON parses the 256-bit fields from decimal strings.
func (p *PoolEdge) UnmarshalJSON(data []byte) error {
	type Alias PoolEdge
	aux := &struct {
		Liquidity    string `json:"liquidity"`
		SqrtPriceX96 string `json:"sqrtPriceX96"`
		*Alias
	}{
		Alias: (*Alias)(p),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Liquidity != "" {
		liquidity, err := uint256.FromDecimal(aux.Liquidity)
		if err != nil {
			return fmt.Errorf("invalid liquidity format: %s", aux.Liquidity)
		}
		p.Liquidity = liquidity
	}

	if aux.SqrtPriceX96 != "" {
		sqrtPrice, err := uint256.FromDecimal(aux.SqrtPriceX96)
		if err != nil {
			return fmt.Errorf("invalid sqrtPriceX96 format: %s", aux.SqrtPriceX96)
		}
		p.SqrtPriceX96 = sqrtPrice
	}

	return nil
}
