// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memledger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"

	"github.com/luxfi/ledgerprecompile/ledger"
)

var _ ledger.AssetRegistry = (*Registry)(nil)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExists   = errors.New("token already exists")
	ErrSelfTransfer  = errors.New("token already owned by recipient")
)

// Registry is an AssetRegistry that tracks token ownership and per-account
// token counts.
type Registry struct {
	mu sync.Mutex
	db database.Database
}

func NewRegistry(db database.Database) *Registry {
	return &Registry{db: db}
}

func tokenID(class ledger.ClassID, token ledger.TokenID) []byte {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], class)
	binary.BigEndian.PutUint64(b[4:], token)
	return b[:]
}

// Mint creates token in class and assigns it to owner.
func (r *Registry) Mint(class ledger.ClassID, token ledger.TokenID, owner ledger.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := newOverlay(r.db)
	key := storageKey(prefixOwner, tokenID(class, token))
	existing, err := st.get(key)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %d/%d", ErrTokenExists, class, token)
	}
	st.put(key, owner.Bytes())
	if err := r.adjustCount(st, owner, 1); err != nil {
		return err
	}
	return st.commit()
}

// Balance returns the number of tokens held by who, zero on a storage
// failure.
func (r *Registry) Balance(who ledger.AccountID) *uint256.Int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := newOverlay(r.db).getUint(storageKey(prefixNFTCount, who.Bytes()))
	if err != nil {
		return new(uint256.Int)
	}
	return n
}

func (r *Registry) Owner(class ledger.ClassID, token ledger.TokenID) (ledger.AccountID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok, err := r.owner(newOverlay(r.db), class, token)
	if err != nil {
		return ledger.AccountID{}, false
	}
	return owner, ok
}

func (r *Registry) Transfer(class ledger.ClassID, token ledger.TokenID, to ledger.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := newOverlay(r.db)
	from, ok, err := r.owner(st, class, token)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d/%d", ErrTokenNotFound, class, token)
	}
	if from == to {
		return ErrSelfTransfer
	}

	st.put(storageKey(prefixOwner, tokenID(class, token)), to.Bytes())
	if err := r.adjustCount(st, from, -1); err != nil {
		return err
	}
	if err := r.adjustCount(st, to, 1); err != nil {
		return err
	}
	return st.commit()
}

func (r *Registry) owner(st *overlay, class ledger.ClassID, token ledger.TokenID) (ledger.AccountID, bool, error) {
	v, err := st.get(storageKey(prefixOwner, tokenID(class, token)))
	if err != nil || len(v) != ledger.AccountIDLength {
		return ledger.AccountID{}, false, err
	}
	var owner ledger.AccountID
	copy(owner[:], v)
	return owner, true, nil
}

func (r *Registry) adjustCount(st *overlay, who ledger.AccountID, delta int) error {
	key := storageKey(prefixNFTCount, who.Bytes())
	n, err := st.getUint(key)
	if err != nil {
		return err
	}
	if delta > 0 {
		n, err = add(n, uint256.NewInt(uint64(delta)))
	} else {
		n, err = sub(n, uint256.NewInt(uint64(-delta)), ErrTokenNotFound)
	}
	if err != nil {
		return err
	}
	st.putUint(key, n)
	return nil
}
