// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package input

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/ledgerprecompile/ledger"
)

// revertSelector is keccak256("Error(string)")[:4].
var revertSelector = [4]byte{0x08, 0xc3, 0x79, 0xa0}

// Output accumulates ABI words for a call result.
type Output struct {
	buf []byte
}

// NewOutput returns an empty builder with room for n words.
func NewOutput(n int) *Output {
	return &Output{buf: make([]byte, 0, n*WordLength)}
}

// Empty is the result of actions that return nothing.
func Empty() []byte {
	return []byte{}
}

// CheckBalance reports ErrEncodingDefect for a value that is not a ledger
// amount. Callers run it on manager results before building the output.
func CheckBalance(v *uint256.Int) error {
	if v == nil || v.BitLen() > ledger.BalanceBits {
		return ErrEncodingDefect
	}
	return nil
}

// Uint128 appends a ledger amount as one word.
func (o *Output) Uint128(v *uint256.Int) *Output {
	return o.Uint256(v)
}

// Uint128Tuple appends two amounts as consecutive words.
func (o *Output) Uint128Tuple(a, b *uint256.Int) *Output {
	return o.Uint128(a).Uint128(b)
}

func (o *Output) Uint256(v *uint256.Int) *Output {
	word := v.Bytes32()
	o.buf = append(o.buf, word[:]...)
	return o
}

// Address appends addr left-padded to a word.
func (o *Output) Address(addr common.Address) *Output {
	o.buf = append(o.buf, common.LeftPadBytes(addr.Bytes(), WordLength)...)
	return o
}

// Bytes returns the encoded result.
func (o *Output) Bytes() []byte {
	return o.buf
}

// PackRevert encodes reason as Error(string) revert data.
func PackRevert(reason string) []byte {
	padded := (len(reason) + WordLength - 1) / WordLength * WordLength
	out := make([]byte, len(revertSelector)+2*WordLength+padded)

	n := copy(out, revertSelector[:])
	binary.BigEndian.PutUint64(out[n+WordLength-8:], WordLength)
	n += WordLength
	binary.BigEndian.PutUint64(out[n+WordLength-8:], uint64(len(reason)))
	n += WordLength
	copy(out[n:], reason)
	return out
}
