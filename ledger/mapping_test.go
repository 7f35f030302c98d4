// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

func TestCurrencyAddress(t *testing.T) {
	addr := CurrencyAddress(7)
	require.Equal(t, common.HexToAddress("0x0000000000000000000100000000000000000007"), addr)

	id, ok := DecodeCurrencyAddress(addr)
	require.True(t, ok)
	require.Equal(t, CurrencyID(7), id)

	_, ok = DecodeCurrencyAddress(common.HexToAddress("0x1000000000000000000100000000000000000007"))
	require.False(t, ok)
}

func TestDefaultAccountRoundTrip(t *testing.T) {
	addr := common.HexToAddress("0x8db97C7cEcE249c2b98bDC0226Cc4C2A57BF52FC")

	account := DefaultAccountID(addr)
	require.Equal(t, []byte("evm:"), account[:4])
	require.Equal(t, addr.Bytes(), account[4:24])
	require.Equal(t, make([]byte, 8), account[24:])

	require.Equal(t, addr, DefaultEVMAddress(account))
}

func TestDefaultEVMAddressNativeAccount(t *testing.T) {
	var account AccountID
	for i := range account {
		account[i] = byte(i + 1)
	}
	require.Equal(t, common.BytesToAddress(account[:20]), DefaultEVMAddress(account))
}

func TestAddressMappingCurrency(t *testing.T) {
	m := NewAddressMapping()

	_, ok := m.CurrencyID(CurrencyAddress(1))
	require.False(t, ok, "unregistered currency must not resolve")

	m.RegisterCurrency(1, 2)
	id, ok := m.CurrencyID(CurrencyAddress(2))
	require.True(t, ok)
	require.Equal(t, CurrencyID(2), id)

	_, ok = m.CurrencyID(common.HexToAddress("0x01"))
	require.False(t, ok)
}

func TestAddressMappingAccounts(t *testing.T) {
	m := NewAddressMapping()
	alice := common.HexToAddress("0xa11ce")
	bob := common.HexToAddress("0xb0b")

	account, ok := m.AccountID(alice)
	require.True(t, ok)
	require.Equal(t, DefaultAccountID(alice), account)

	_, ok = m.EVMAddress(account)
	require.False(t, ok, "default accounts have no explicit binding")

	var native AccountID
	native[0] = 0x42
	require.NoError(t, m.Bind(bob, native))

	account, ok = m.AccountID(bob)
	require.True(t, ok)
	require.Equal(t, native, account)

	addr, ok := m.EVMAddress(native)
	require.True(t, ok)
	require.Equal(t, bob, addr)

	// Rebinding the same pair is a no-op.
	require.NoError(t, m.Bind(bob, native))
	require.ErrorIs(t, m.Bind(alice, native), ErrAccountBound)

	var other AccountID
	other[0] = 0x43
	require.ErrorIs(t, m.Bind(bob, other), ErrAddressBound)

	_, ok = m.AccountID(CurrencyAddress(1))
	require.False(t, ok, "currency addresses are not accounts")
}

func TestMaxBalance(t *testing.T) {
	require.Equal(t, 128, MaxBalance.BitLen())
	require.Equal(t, "340282366920938463463374607431768211455", MaxBalance.Dec())
	require.True(t, new(uint256.Int).AddUint64(MaxBalance, 1).BitLen() > BalanceBits)
}

func TestSwapLimit(t *testing.T) {
	l := ExactSupply(uint256.NewInt(1000), uint256.NewInt(1))
	require.Equal(t, ExactSupplyLimit, l.Kind)
	require.Equal(t, "exact-supply(supply=1000, target=1)", l.String())

	l = ExactTarget(uint256.NewInt(5), nil)
	require.Equal(t, "exact-target(supply=5, target=<nil>)", l.String())
}

func TestManagerError(t *testing.T) {
	reason := errString("liquidity too low")
	err := &ManagerError{Op: "swapWithExactSupply", Err: reason}
	require.EqualError(t, err, "liquidity too low")
	require.ErrorIs(t, err, reason)

	require.EqualError(t, &ManagerError{Op: "transfer"}, "transfer failed")
}

type errString string

func (e errString) Error() string { return string(e) }
