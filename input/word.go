// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package input

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/ledgerprecompile/selector"
)

// WordLength is the size of one ABI word.
const WordLength = 32

// WordCount returns how many complete argument words follow the selector.
func WordCount(data []byte) int {
	if len(data) < selector.Length {
		return 0
	}
	return (len(data) - selector.Length) / WordLength
}

// Word returns the argument word at position i. Position 1 is the first word
// after the selector. The returned slice aliases data.
func Word(data []byte, i int) ([]byte, error) {
	if i < 1 || i > WordCount(data) {
		return nil, decodeErr(i, ErrOutOfBounds)
	}
	start := selector.Length + (i-1)*WordLength
	return data[start : start+WordLength], nil
}

// Uint256 reads the full word at i.
func Uint256(data []byte, i int) (*uint256.Int, error) {
	w, err := Word(data, i)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes32(w), nil
}

// Uint128 reads a 128-bit value. A non-zero byte in the upper half of the
// word is rejected.
func Uint128(data []byte, i int) (*uint256.Int, error) {
	w, err := narrow(data, i, 16)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(w), nil
}

func Uint64(data []byte, i int) (uint64, error) {
	w, err := narrow(data, i, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(w), nil
}

func Uint32(data []byte, i int) (uint32, error) {
	w, err := narrow(data, i, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(w), nil
}

// Address reads the low 20 bytes of the word at i. The high 12 bytes are not
// inspected: callers are allowed to leave garbage there, and it is dropped.
func Address(data []byte, i int) (common.Address, error) {
	w, err := Word(data, i)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(w[WordLength-common.AddressLength:]), nil
}

// narrow returns the low size bytes of the word at i after checking the rest
// of the word is zero.
func narrow(data []byte, i int, size int) ([]byte, error) {
	w, err := Word(data, i)
	if err != nil {
		return nil, err
	}
	for _, b := range w[:WordLength-size] {
		if b != 0 {
			return nil, decodeErr(i, ErrInvalidEncoding)
		}
	}
	return w[WordLength-size:], nil
}
