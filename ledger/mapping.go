// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/geth/common"
)

// Currency addresses live under a fixed 16-byte prefix with the id in the
// low four bytes:
//
//	0x00000000000000000001000000000000 || uint32(id)
var currencyAddressPrefix = [16]byte{9: 0x01}

// evmAccountPrefix marks accounts derived from an EVM address.
var evmAccountPrefix = []byte("evm:")

var (
	ErrAddressBound   = errors.New("address already bound to an account")
	ErrAccountBound   = errors.New("account already bound to an address")
)

var _ IdentifierTranslator = (*AddressMapping)(nil)

// CurrencyAddress returns the EVM address that represents id.
func CurrencyAddress(id CurrencyID) common.Address {
	var addr common.Address
	copy(addr[:16], currencyAddressPrefix[:])
	binary.BigEndian.PutUint32(addr[16:], uint32(id))
	return addr
}

// DecodeCurrencyAddress is the inverse of CurrencyAddress. It does not check
// whether the currency is registered.
func DecodeCurrencyAddress(addr common.Address) (CurrencyID, bool) {
	if !bytes.Equal(addr[:16], currencyAddressPrefix[:]) {
		return 0, false
	}
	return CurrencyID(binary.BigEndian.Uint32(addr[16:])), true
}

// DefaultAccountID derives the ledger account of an EVM address that has not
// been bound: "evm:" || address || zero padding.
func DefaultAccountID(addr common.Address) AccountID {
	var account AccountID
	copy(account[:], evmAccountPrefix)
	copy(account[len(evmAccountPrefix):], addr[:])
	return account
}

// DefaultEVMAddress recovers the address of a DefaultAccountID account, or
// takes the first 20 bytes of any other account.
func DefaultEVMAddress(account AccountID) common.Address {
	if bytes.HasPrefix(account[:], evmAccountPrefix) {
		return common.BytesToAddress(account[len(evmAccountPrefix) : len(evmAccountPrefix)+common.AddressLength])
	}
	return common.BytesToAddress(account[:common.AddressLength])
}

// AddressMapping is an in-memory IdentifierTranslator. Currencies must be
// registered to be resolvable; accounts resolve through explicit bindings and
// fall back to DefaultAccountID.
type AddressMapping struct {
	mu         sync.RWMutex
	currencies map[CurrencyID]struct{}
	accounts   map[common.Address]AccountID
	addresses  map[AccountID]common.Address
}

func NewAddressMapping() *AddressMapping {
	return &AddressMapping{
		currencies: make(map[CurrencyID]struct{}),
		accounts:   make(map[common.Address]AccountID),
		addresses:  make(map[AccountID]common.Address),
	}
}

// RegisterCurrency makes ids resolvable from their currency addresses.
func (m *AddressMapping) RegisterCurrency(ids ...CurrencyID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		m.currencies[id] = struct{}{}
	}
}

// Bind associates addr and account in both directions.
func (m *AddressMapping) Bind(addr common.Address, account AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.accounts[addr]; ok && existing != account {
		return fmt.Errorf("%w: %s", ErrAddressBound, addr)
	}
	if existing, ok := m.addresses[account]; ok && existing != addr {
		return fmt.Errorf("%w: %s", ErrAccountBound, account)
	}
	m.accounts[addr] = account
	m.addresses[account] = addr
	return nil
}

func (m *AddressMapping) CurrencyID(addr common.Address) (CurrencyID, bool) {
	id, ok := DecodeCurrencyAddress(addr)
	if !ok {
		return 0, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.currencies[id]; !ok {
		return 0, false
	}
	return id, true
}

// AccountID never fails for a non-currency address: unbound addresses map to
// their default account. Currency addresses are not accounts.
func (m *AddressMapping) AccountID(addr common.Address) (AccountID, bool) {
	if _, ok := DecodeCurrencyAddress(addr); ok {
		return AccountID{}, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if account, ok := m.accounts[addr]; ok {
		return account, true
	}
	return DefaultAccountID(addr), true
}

func (m *AddressMapping) EVMAddress(account AccountID) (common.Address, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	addr, ok := m.addresses[account]
	return addr, ok
}

func (m *AddressMapping) DefaultEVMAddress(account AccountID) common.Address {
	return DefaultEVMAddress(account)
}
