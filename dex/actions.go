// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"fmt"

	"github.com/luxfi/ledgerprecompile/selector"
)

// Action is one entry point of the exchange precompile.
type Action uint8

const (
	GetLiquidityPool Action = iota + 1
	GetLiquidityTokenAddress
	GetSwapTargetAmount
	GetSwapSupplyAmount
	SwapWithExactSupply
	SwapWithExactTarget
	AddLiquidity
	RemoveLiquidity
)

// Actions maps selectors to exchange actions.
var Actions = selector.MustNewTable(
	selector.Def(GetLiquidityPool, "getLiquidityPool(address,address)"),
	selector.Def(GetLiquidityTokenAddress, "getLiquidityTokenAddress(address,address)"),
	selector.Def(GetSwapTargetAmount, "getSwapTargetAmount(address[],uint256)"),
	selector.Def(GetSwapSupplyAmount, "getSwapSupplyAmount(address[],uint256)"),
	selector.Def(SwapWithExactSupply, "swapWithExactSupply(address,address[],uint256,uint256)"),
	selector.Def(SwapWithExactTarget, "swapWithExactTarget(address,address[],uint256,uint256)"),
	selector.Def(AddLiquidity, "addLiquidity(address,address,address,uint256,uint256,uint256)"),
	selector.Def(RemoveLiquidity, "removeLiquidity(address,address,address,uint256,uint256,uint256)"),
)

// Gas costs
const (
	GasPoolLookup      uint64 = 2_000  // Pool reserves or share token
	GasSwapQuote       uint64 = 5_000  // Quote along a path
	GasSwap            uint64 = 25_000 // Swap along a path
	GasAddLiquidity    uint64 = 30_000 // Add liquidity
	GasRemoveLiquidity uint64 = 30_000 // Remove liquidity
)

func (a Action) String() string {
	if sig, ok := Actions.Signature(a); ok {
		return sig
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// Mutating reports whether a changes ledger state.
func (a Action) Mutating() bool {
	switch a {
	case SwapWithExactSupply, SwapWithExactTarget, AddLiquidity, RemoveLiquidity:
		return true
	default:
		return false
	}
}

// Gas returns the fixed cost of a.
func (a Action) Gas() uint64 {
	switch a {
	case GetLiquidityPool, GetLiquidityTokenAddress:
		return GasPoolLookup
	case GetSwapTargetAmount, GetSwapSupplyAmount:
		return GasSwapQuote
	case SwapWithExactSupply, SwapWithExactTarget:
		return GasSwap
	case AddLiquidity:
		return GasAddLiquidity
	case RemoveLiquidity:
		return GasRemoveLiquidity
	default:
		return GasPoolLookup
	}
}
