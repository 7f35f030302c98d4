// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract defines the interfaces between the host EVM and the
// ledger precompiles.
package contract

import (
	"math/big"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/vm"

	"github.com/luxfi/ledgerprecompile/precompileconfig"
)

// Errors the host interprets. They are the EVM's own values so that callers
// can match them with errors.Is.
var (
	ErrExecutionReverted = vm.ErrExecutionReverted
	ErrOutOfGas          = vm.ErrOutOfGas
	ErrWriteProtection   = vm.ErrWriteProtection
)

// StatefulPrecompiledContract is the interface for executing a precompiled contract with state access
type StatefulPrecompiledContract interface {
	// Run executes the precompiled contract.
	Run(accessibleState AccessibleState, caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) (ret []byte, remainingGas uint64, err error)
}

// AccessibleState is what the host exposes to a precompile during a call.
type AccessibleState interface {
	GetBlockContext() BlockContext
}

// ConfigurationBlockContext defines the interface required to configure a precompile
type ConfigurationBlockContext interface {
	Number() *big.Int
	Timestamp() uint64
}

// BlockContext provides the block context to precompiles
type BlockContext interface {
	ConfigurationBlockContext
}

// Configurator applies a precompile config to its contract.
type Configurator interface {
	MakeConfig() precompileconfig.Config
	Configure(cfg precompileconfig.Config, blockContext ConfigurationBlockContext) error
}
