// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package memledger provides in-memory reference implementations of the
// ledger managers, backed by a key-value database. They exist for local
// tooling and integration tests; the swap math is a plain constant-product
// curve.
package memledger

import (
	"encoding/binary"
	"errors"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/zeebo/blake3"

	"github.com/luxfi/ledgerprecompile/ledger"
)

// Storage key prefixes
var (
	prefixBalance     = []byte("memledger.balance")
	prefixPair        = []byte("memledger.pair")
	prefixReserve     = []byte("memledger.reserve")
	prefixShare       = []byte("memledger.share")
	prefixTotalShares = []byte("memledger.totalShares")
	prefixOwner       = []byte("memledger.owner")
	prefixNFTCount    = []byte("memledger.nftCount")
)

// storageKey hashes a prefix and its identifiers into a fixed-size key.
func storageKey(prefix []byte, ids ...[]byte) []byte {
	h := blake3.New()
	h.Write(prefix)
	for _, id := range ids {
		h.Write(id)
	}
	key := make([]byte, 32)
	h.Digest().Read(key)
	return key
}

func currencyBytes(id ledger.CurrencyID) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(id))
	return b[:]
}

// overlay buffers writes on top of a database so a multi-step operation can
// read its own writes and commit them in one batch, or be dropped.
type overlay struct {
	db      database.Database
	pending map[string][]byte
	order   []string
}

func newOverlay(db database.Database) *overlay {
	return &overlay{db: db, pending: make(map[string][]byte)}
}

func (o *overlay) get(key []byte) ([]byte, error) {
	if v, ok := o.pending[string(key)]; ok {
		return v, nil
	}
	v, err := o.db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (o *overlay) put(key, value []byte) {
	k := string(key)
	if _, ok := o.pending[k]; !ok {
		o.order = append(o.order, k)
	}
	o.pending[k] = value
}

func (o *overlay) getUint(key []byte) (*uint256.Int, error) {
	v, err := o.get(key)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(v), nil
}

func (o *overlay) putUint(key []byte, v *uint256.Int) {
	b := v.Bytes32()
	o.put(key, b[:])
}

// commit writes every pending entry in one batch.
func (o *overlay) commit() error {
	batch := o.db.NewBatch()
	for _, k := range o.order {
		if err := batch.Put([]byte(k), o.pending[k]); err != nil {
			return err
		}
	}
	return batch.Write()
}

// add returns a + b, failing when the sum is not a ledger amount.
func add(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || sum.Gt(ledger.MaxBalance) {
		return nil, ErrBalanceOverflow
	}
	return sum, nil
}

// sub returns a - b, failing with errUnderflow when b > a.
func sub(a, b *uint256.Int, errUnderflow error) (*uint256.Int, error) {
	if a.Lt(b) {
		return nil, errUnderflow
	}
	return new(uint256.Int).Sub(a, b), nil
}
