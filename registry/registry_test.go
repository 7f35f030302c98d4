// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

func TestGetPrecompileAddress(t *testing.T) {
	require.Equal(t, common.HexToAddress("0x0401"), GetPrecompileAddress("NFT"))
	require.Equal(t, common.HexToAddress("0x0405"), GetPrecompileAddress("DEX"))
	require.Equal(t, common.Address{}, GetPrecompileAddress("EVM"))
}

func TestGetPrecompileInfo(t *testing.T) {
	info, ok := GetPrecompileInfo(common.HexToAddress(DEXAddress))
	require.True(t, ok)
	require.Equal(t, "dexConfig", info.ConfigKey)

	_, ok = GetPrecompileInfo(common.HexToAddress("0x0402"))
	require.False(t, ok)
}
