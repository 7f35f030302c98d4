// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package input decodes precompile call payloads into typed arguments and
// encodes results back into ABI words.
//
// A payload is a 4-byte selector followed by 32-byte argument words.
// Arguments are addressed by their fixed word position: position i covers
// bytes [4+32*(i-1), 4+32*i). Dynamic arrays are read with their length word
// at the argument position and the elements in the words that follow it; the
// ABI offset word that precedes them is never dereferenced.
package input

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/ledgerprecompile/ledger"
	"github.com/luxfi/ledgerprecompile/selector"
)

// Input is a read-only view of one call payload.
type Input[A comparable] struct {
	data    []byte
	actions *selector.Table[A]
	ids     ledger.IdentifierTranslator
}

// New wraps data without copying it. data must not be modified while the
// Input is in use.
func New[A comparable](data []byte, actions *selector.Table[A], ids ledger.IdentifierTranslator) *Input[A] {
	return &Input[A]{data: data, actions: actions, ids: ids}
}

// Bytes returns the raw payload.
func (in *Input[A]) Bytes() []byte {
	return in.data
}

// Action resolves the selector at the head of the payload.
func (in *Input[A]) Action() (A, error) {
	var zero A
	sel, ok := selector.FromBytes(in.data)
	if !ok {
		return zero, decodeErr(0, ErrOutOfBounds)
	}
	action, ok := in.actions.Lookup(sel)
	if !ok {
		return zero, decodeErr(0, ErrUnknownSelector)
	}
	return action, nil
}

func (in *Input[A]) Uint32At(i int) (uint32, error) {
	return Uint32(in.data, i)
}

func (in *Input[A]) Uint64At(i int) (uint64, error) {
	return Uint64(in.data, i)
}

// BalanceAt reads a ledger amount, which is limited to 128 bits.
func (in *Input[A]) BalanceAt(i int) (*uint256.Int, error) {
	return Uint128(in.data, i)
}

func (in *Input[A]) AddressAt(i int) (common.Address, error) {
	return Address(in.data, i)
}

// AccountIDAt reads an address and resolves its ledger account.
func (in *Input[A]) AccountIDAt(i int) (ledger.AccountID, error) {
	addr, err := in.AddressAt(i)
	if err != nil {
		return ledger.AccountID{}, err
	}
	account, ok := in.ids.AccountID(addr)
	if !ok {
		return ledger.AccountID{}, decodeErr(i, ErrUnmappedIdentifier)
	}
	return account, nil
}

// CurrencyIDAt reads an address and resolves the currency it stands for.
func (in *Input[A]) CurrencyIDAt(i int) (ledger.CurrencyID, error) {
	addr, err := in.AddressAt(i)
	if err != nil {
		return 0, err
	}
	id, ok := in.ids.CurrencyID(addr)
	if !ok {
		return 0, decodeErr(i, ErrUnmappedIdentifier)
	}
	return id, nil
}

// PathAt reads a swap path whose length word is at position i. A length
// above maxLen is rejected before any element is touched, and a path needs at
// least two currencies.
func (in *Input[A]) PathAt(i int, maxLen int) ([]ledger.CurrencyID, error) {
	length, err := Uint256(in.data, i)
	if err != nil {
		return nil, err
	}
	if maxLen < 0 || length.GtUint64(uint64(maxLen)) {
		return nil, decodeErr(i, ErrArrayTooLong)
	}
	n := int(length.Uint64())
	if n < 2 {
		return nil, decodeErr(i, ErrInvalidPath)
	}

	path := make([]ledger.CurrencyID, 0, n)
	for j := 1; j <= n; j++ {
		id, err := in.CurrencyIDAt(i + j)
		if err != nil {
			return nil, err
		}
		path = append(path, id)
	}
	return path, nil
}
