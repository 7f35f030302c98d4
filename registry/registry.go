// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"github.com/luxfi/geth/common"
)

// ============================================================================
// LEDGER PRECOMPILE ADDRESS SCHEME
// ============================================================================
//
// Native ledger precompiles use trailing-significant 20-byte addresses in the
// 0x0400-0x04FF page:
//   Format: 0x00000000000000000000000000000000000004II
//
//   II = 0x01 → Asset registry (NFT)
//   II = 0x05 → Exchange (DEX)
//
// The remaining items in the page are unassigned.

const (
	NFTAddress = "0x0000000000000000000000000000000000000401"
	DEXAddress = "0x0000000000000000000000000000000000000405"
)

// PrecompileInfo contains metadata about a precompile
type PrecompileInfo struct {
	Address     string
	Name        string
	ConfigKey   string
	Description string
}

// AllPrecompiles lists the ledger precompiles in address order.
var AllPrecompiles = []PrecompileInfo{
	{NFTAddress, "NFT", "nftConfig", "Non-fungible asset registry"},
	{DEXAddress, "DEX", "dexConfig", "Liquidity exchange"},
}

// GetPrecompileAddress returns the address for a precompile by name
func GetPrecompileAddress(name string) common.Address {
	for _, p := range AllPrecompiles {
		if p.Name == name {
			return common.HexToAddress(p.Address)
		}
	}
	return common.Address{}
}

// GetPrecompileInfo returns the precompile at addr.
func GetPrecompileInfo(addr common.Address) (PrecompileInfo, bool) {
	for _, p := range AllPrecompiles {
		if common.HexToAddress(p.Address) == addr {
			return p, true
		}
	}
	return PrecompileInfo{}, false
}
