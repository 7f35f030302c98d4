// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger defines the native ledger values the precompiles trade in
// and the capabilities they consume from the exchange engine, the asset
// registry and the account mapping.
package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
)

// BalanceBits is the width of every ledger amount.
const BalanceBits = 128

// MaxBalance is the largest representable ledger amount, 2^128 - 1.
var MaxBalance = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), BalanceBits), 1)

// CurrencyID identifies a fungible asset known to the ledger.
type CurrencyID uint32

func (c CurrencyID) String() string {
	return fmt.Sprintf("currency(%d)", uint32(c))
}

// AccountIDLength is the byte length of a ledger account.
const AccountIDLength = 32

// AccountID is a native ledger account.
type AccountID [AccountIDLength]byte

func (a AccountID) Bytes() []byte {
	return a[:]
}

func (a AccountID) String() string {
	return hexutil.Encode(a[:])
}

// IsZero reports whether a is the all-zero account.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

// ClassID identifies an NFT class.
type ClassID = uint32

// TokenID identifies an NFT within its class.
type TokenID = uint64

// SwapLimitKind selects which side of a swap is fixed.
type SwapLimitKind uint8

const (
	// ExactSupplyLimit fixes the supply amount and bounds the target from below.
	ExactSupplyLimit SwapLimitKind = iota
	// ExactTargetLimit fixes the target amount and bounds the supply from above.
	ExactTargetLimit
)

func (k SwapLimitKind) String() string {
	switch k {
	case ExactSupplyLimit:
		return "exact-supply"
	case ExactTargetLimit:
		return "exact-target"
	default:
		return fmt.Sprintf("swap-limit(%d)", uint8(k))
	}
}

// SwapLimit constrains a swap along a path.
//
// For ExactSupplyLimit, Supply is the exact amount paid in and Target the
// minimum accepted out. For ExactTargetLimit, Supply is the maximum paid in
// and Target the exact amount received.
type SwapLimit struct {
	Kind   SwapLimitKind
	Supply *uint256.Int
	Target *uint256.Int
}

// ExactSupply builds an exact-supply limit.
func ExactSupply(supply, minTarget *uint256.Int) SwapLimit {
	return SwapLimit{Kind: ExactSupplyLimit, Supply: supply, Target: minTarget}
}

// ExactTarget builds an exact-target limit.
func ExactTarget(maxSupply, target *uint256.Int) SwapLimit {
	return SwapLimit{Kind: ExactTargetLimit, Supply: maxSupply, Target: target}
}

func (l SwapLimit) String() string {
	return fmt.Sprintf("%s(supply=%s, target=%s)", l.Kind, amountString(l.Supply), amountString(l.Target))
}

func amountString(v *uint256.Int) string {
	if v == nil {
		return "<nil>"
	}
	return v.Dec()
}

// ExchangeManager is the liquidity-exchange engine. Implementations own pool
// bookkeeping, swap math and their own transactional discipline.
type ExchangeManager interface {
	// GetLiquidityPool returns the pool reserves of a and b, in that order.
	GetLiquidityPool(a, b CurrencyID) (*uint256.Int, *uint256.Int)
	// GetLiquidityTokenAddress returns the EVM address of the pool share token.
	GetLiquidityTokenAddress(a, b CurrencyID) (common.Address, bool)
	// GetSwapAmount quotes a swap along path without executing it.
	GetSwapAmount(path []CurrencyID, limit SwapLimit) (supply, target *uint256.Int, ok bool)
	// SwapWithSpecificPath executes a swap hop by hop along path.
	SwapWithSpecificPath(who AccountID, path []CurrencyID, limit SwapLimit) (supply, target *uint256.Int, err error)
	AddLiquidity(who AccountID, a, b CurrencyID, maxA, maxB, minShareIncrement *uint256.Int, stakeIncrementShare bool) error
	RemoveLiquidity(who AccountID, a, b CurrencyID, removeShare, minWithdrawnA, minWithdrawnB *uint256.Int, byUnstake bool) error
}

// AssetRegistry is the non-fungible asset registry.
type AssetRegistry interface {
	// Balance returns the number of tokens held by who.
	Balance(who AccountID) *uint256.Int
	Owner(class ClassID, token TokenID) (AccountID, bool)
	Transfer(class ClassID, token TokenID, to AccountID) error
}

// IdentifierTranslator maps EVM addresses to ledger identifiers and back.
type IdentifierTranslator interface {
	// CurrencyID resolves the currency whose EVM address is addr.
	CurrencyID(addr common.Address) (CurrencyID, bool)
	// AccountID resolves the ledger account behind addr.
	AccountID(addr common.Address) (AccountID, bool)
	// EVMAddress returns the EVM address bound to account, if any.
	EVMAddress(account AccountID) (common.Address, bool)
	// DefaultEVMAddress derives an address for an account with no binding.
	DefaultEVMAddress(account AccountID) common.Address
}
