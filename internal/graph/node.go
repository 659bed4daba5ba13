package graph

import "github.com/ethereum/go-ethereum/common"

// TokenNode represents a token in the graph.
type TokenNode struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
	IsNative bool           `json:"isNative"`
}

// NewTokenNode creates a non-native token node.
func NewTokenNode(address common.Address, symbol string, decimals uint8) TokenNode {
	return TokenNode{
		Address:  address,
		Symbol:   symbol,
		Decimals: decimals,
	}
}

// NewNativeTokenNode creates a native (gas) token node.
func NewNativeTokenNode(address common.Address, symbol string, decimals uint8) TokenNode {
	return TokenNode{
		Address:  address,
		Symbol:   symbol,
		Decimals: decimals,
		IsNative: true,
	}
}
