// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"math/big"

	"github.com/luxfi/ledgerprecompile/input"
)

// DeductGas charges requiredGas against suppliedGas. On failure no gas is
// left.
func DeductGas(suppliedGas uint64, requiredGas uint64) (uint64, error) {
	if suppliedGas < requiredGas {
		return 0, ErrOutOfGas
	}
	return suppliedGas - requiredGas, nil
}

// Block is a fixed block context, for tools and tests that call precompiles
// outside a running chain.
type Block struct {
	Height uint64
	Time   uint64
}

var (
	_ AccessibleState = (*Block)(nil)
	_ BlockContext    = (*Block)(nil)
)

func (b *Block) Number() *big.Int {
	return new(big.Int).SetUint64(b.Height)
}

func (b *Block) Timestamp() uint64 {
	return b.Time
}

func (b *Block) GetBlockContext() BlockContext {
	return b
}

// Revert converts a failed call into Error(string) revert data carrying
// err's message.
func Revert(err error, remainingGas uint64) ([]byte, uint64, error) {
	return input.PackRevert(err.Error()), remainingGas, ErrExecutionReverted
}
