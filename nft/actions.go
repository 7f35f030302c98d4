// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package nft

import (
	"fmt"

	"github.com/luxfi/ledgerprecompile/selector"
)

// Action is one entry point of the asset registry precompile.
type Action uint8

const (
	QueryBalance Action = iota + 1
	QueryOwner
	Transfer
)

// Actions maps selectors to registry actions.
var Actions = selector.MustNewTable(
	selector.Def(QueryBalance, "balanceOf(address)"),
	selector.Def(QueryOwner, "ownerOf(uint256,uint256)"),
	selector.Def(Transfer, "transfer(address,address,uint256,uint256)"),
)

// Gas costs
const (
	GasQuery    uint64 = 2_000  // Balance or owner lookup
	GasTransfer uint64 = 20_000 // Ownership change
)

func (a Action) String() string {
	if sig, ok := Actions.Signature(a); ok {
		return sig
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

func (a Action) Mutating() bool {
	return a == Transfer
}

func (a Action) Gas() uint64 {
	if a == Transfer {
		return GasTransfer
	}
	return GasQuery
}
