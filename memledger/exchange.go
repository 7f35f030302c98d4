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
	"github.com/luxfi/geth/common"

	"github.com/luxfi/ledgerprecompile/ledger"
)

var _ ledger.ExchangeManager = (*Exchange)(nil)

var (
	ErrIdenticalCurrencies            = errors.New("identical currencies")
	ErrPairNotEnabled                 = errors.New("trading pair not enabled")
	ErrPairAlreadyEnabled             = errors.New("trading pair already enabled")
	ErrInsufficientLiquidity          = errors.New("insufficient liquidity")
	ErrInsufficientBalance            = errors.New("insufficient balance")
	ErrInsufficientTargetAmount       = errors.New("insufficient target amount")
	ErrExcessiveSupplyAmount          = errors.New("excessive supply amount")
	ErrInvalidLiquidityIncrement      = errors.New("invalid liquidity increment")
	ErrUnacceptableShareIncrement     = errors.New("unacceptable share increment")
	ErrUnacceptableLiquidityWithdrawn = errors.New("unacceptable liquidity withdrawn")
	ErrInsufficientShare              = errors.New("insufficient share")
	ErrStakingUnsupported             = errors.New("share staking not supported")
	ErrBalanceOverflow                = errors.New("balance overflow")
	ErrInvalidSwapPath                = errors.New("invalid swap path")
)

// Default swap fee: 0.3%.
const (
	DefaultFeeNumerator   = 3
	DefaultFeeDenominator = 1000
)

// liquidityTokenMarker tags the share token addresses of trading pairs:
// byte 9 is 0x02, bytes 12..20 hold the sorted pair.
const liquidityTokenMarker = 0x02

// LiquidityTokenAddress returns the share token address of the pair a/b.
func LiquidityTokenAddress(a, b ledger.CurrencyID) common.Address {
	lo, hi := sortPair(a, b)
	var addr common.Address
	addr[9] = liquidityTokenMarker
	binary.BigEndian.PutUint32(addr[12:16], uint32(lo))
	binary.BigEndian.PutUint32(addr[16:20], uint32(hi))
	return addr
}

func sortPair(a, b ledger.CurrencyID) (ledger.CurrencyID, ledger.CurrencyID) {
	if a > b {
		return b, a
	}
	return a, b
}

func pairID(a, b ledger.CurrencyID) []byte {
	lo, hi := sortPair(a, b)
	return append(currencyBytes(lo), currencyBytes(hi)...)
}

// Exchange is a constant-product ExchangeManager. Pools are keyed by the
// sorted currency pair and must be enabled before use.
type Exchange struct {
	mu sync.Mutex
	db database.Database

	feeNumerator   *uint256.Int
	feeDenominator *uint256.Int
}

func NewExchange(db database.Database) *Exchange {
	return &Exchange{
		db:             db,
		feeNumerator:   uint256.NewInt(DefaultFeeNumerator),
		feeDenominator: uint256.NewInt(DefaultFeeDenominator),
	}
}

// EnableTradingPair allows pools and swaps between a and b.
func (e *Exchange) EnableTradingPair(a, b ledger.CurrencyID) error {
	if a == b {
		return ErrIdenticalCurrencies
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	key := storageKey(prefixPair, pairID(a, b))
	ok, err := e.db.Has(key)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: %s/%s", ErrPairAlreadyEnabled, a, b)
	}
	return e.db.Put(key, []byte{1})
}

// Deposit credits amount of currency to who.
func (e *Exchange) Deposit(who ledger.AccountID, currency ledger.CurrencyID, amount *uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := newOverlay(e.db)
	if err := e.credit(st, who, currency, amount); err != nil {
		return err
	}
	return st.commit()
}

// Balance returns the free balance of who in currency.
func (e *Exchange) Balance(who ledger.AccountID, currency ledger.CurrencyID) (*uint256.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return newOverlay(e.db).getUint(balanceKey(who, currency))
}

// Shares returns the pool share of who in the a/b pool.
func (e *Exchange) Shares(who ledger.AccountID, a, b ledger.CurrencyID) (*uint256.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return newOverlay(e.db).getUint(shareKey(who, a, b))
}

func (e *Exchange) GetLiquidityPool(a, b ledger.CurrencyID) (*uint256.Int, *uint256.Int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ra, rb, err := e.reserves(newOverlay(e.db), a, b)
	if err != nil {
		return new(uint256.Int), new(uint256.Int)
	}
	return ra, rb
}

func (e *Exchange) GetLiquidityTokenAddress(a, b ledger.CurrencyID) (common.Address, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if enabled, err := e.enabled(newOverlay(e.db), a, b); err != nil || !enabled {
		return common.Address{}, false
	}
	return LiquidityTokenAddress(a, b), true
}

func (e *Exchange) GetSwapAmount(path []ledger.CurrencyID, limit ledger.SwapLimit) (*uint256.Int, *uint256.Int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	amounts, err := e.swapAmounts(newOverlay(e.db), path, limit)
	if err != nil {
		return nil, nil, false
	}
	return amounts[0], amounts[len(amounts)-1], true
}

func (e *Exchange) SwapWithSpecificPath(who ledger.AccountID, path []ledger.CurrencyID, limit ledger.SwapLimit) (*uint256.Int, *uint256.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := newOverlay(e.db)
	amounts, err := e.swapAmounts(st, path, limit)
	if err != nil {
		return nil, nil, err
	}

	supply, target := amounts[0], amounts[len(amounts)-1]
	if err := e.debit(st, who, path[0], supply); err != nil {
		return nil, nil, err
	}
	for i := 0; i+1 < len(path); i++ {
		in, out := path[i], path[i+1]
		rIn, rOut, err := e.reserves(st, in, out)
		if err != nil {
			return nil, nil, err
		}
		if rIn, err = add(rIn, amounts[i]); err != nil {
			return nil, nil, err
		}
		if rOut, err = sub(rOut, amounts[i+1], ErrInsufficientLiquidity); err != nil {
			return nil, nil, err
		}
		e.setReserves(st, in, out, rIn, rOut)
	}
	if err := e.credit(st, who, path[len(path)-1], target); err != nil {
		return nil, nil, err
	}
	if err := st.commit(); err != nil {
		return nil, nil, err
	}
	return supply, target, nil
}

func (e *Exchange) AddLiquidity(who ledger.AccountID, a, b ledger.CurrencyID, maxA, maxB, minShareIncrement *uint256.Int, stakeIncrementShare bool) error {
	if stakeIncrementShare {
		return ErrStakingUnsupported
	}
	if maxA.IsZero() || maxB.IsZero() {
		return ErrInvalidLiquidityIncrement
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st := newOverlay(e.db)
	if err := e.requireEnabled(st, a, b); err != nil {
		return err
	}
	ra, rb, err := e.reserves(st, a, b)
	if err != nil {
		return err
	}
	total, err := st.getUint(totalSharesKey(a, b))
	if err != nil {
		return err
	}

	var amountA, amountB, share *uint256.Int
	if total.IsZero() {
		// The first provider sets the price and gets one share per unit of a.
		amountA, amountB, share = maxA, maxB, maxA
	} else {
		// Deposit at the current price, bounded by whichever side runs out.
		amountA, amountB = maxA, mulDiv(maxA, rb, ra)
		if amountB.Gt(maxB) {
			amountA, amountB = mulDiv(maxB, ra, rb), maxB
		}
		share = mulDiv(amountA, total, ra)
	}
	if amountA.IsZero() || amountB.IsZero() || share.IsZero() {
		return ErrInvalidLiquidityIncrement
	}
	if share.Lt(minShareIncrement) {
		return ErrUnacceptableShareIncrement
	}

	if err := e.debit(st, who, a, amountA); err != nil {
		return err
	}
	if err := e.debit(st, who, b, amountB); err != nil {
		return err
	}
	if ra, err = add(ra, amountA); err != nil {
		return err
	}
	if rb, err = add(rb, amountB); err != nil {
		return err
	}
	e.setReserves(st, a, b, ra, rb)
	if err := e.addShares(st, who, a, b, share, total); err != nil {
		return err
	}
	return st.commit()
}

func (e *Exchange) RemoveLiquidity(who ledger.AccountID, a, b ledger.CurrencyID, removeShare, minWithdrawnA, minWithdrawnB *uint256.Int, byUnstake bool) error {
	if byUnstake {
		return ErrStakingUnsupported
	}
	if removeShare.IsZero() {
		return ErrInvalidLiquidityIncrement
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st := newOverlay(e.db)
	if err := e.requireEnabled(st, a, b); err != nil {
		return err
	}
	owned, err := st.getUint(shareKey(who, a, b))
	if err != nil {
		return err
	}
	if owned.Lt(removeShare) {
		return ErrInsufficientShare
	}
	total, err := st.getUint(totalSharesKey(a, b))
	if err != nil {
		return err
	}
	ra, rb, err := e.reserves(st, a, b)
	if err != nil {
		return err
	}

	amountA := mulDiv(ra, removeShare, total)
	amountB := mulDiv(rb, removeShare, total)
	if amountA.Lt(minWithdrawnA) || amountB.Lt(minWithdrawnB) {
		return ErrUnacceptableLiquidityWithdrawn
	}

	e.setReserves(st, a, b, new(uint256.Int).Sub(ra, amountA), new(uint256.Int).Sub(rb, amountB))
	st.putUint(shareKey(who, a, b), new(uint256.Int).Sub(owned, removeShare))
	st.putUint(totalSharesKey(a, b), new(uint256.Int).Sub(total, removeShare))
	if err := e.credit(st, who, a, amountA); err != nil {
		return err
	}
	if err := e.credit(st, who, b, amountB); err != nil {
		return err
	}
	return st.commit()
}

// swapAmounts returns the amount entering each hop of path: amounts[0] is
// the supply and the last entry the target.
func (e *Exchange) swapAmounts(st *overlay, path []ledger.CurrencyID, limit ledger.SwapLimit) ([]*uint256.Int, error) {
	if len(path) < 2 {
		return nil, ErrInvalidSwapPath
	}
	amounts := make([]*uint256.Int, len(path))

	switch limit.Kind {
	case ledger.ExactSupplyLimit:
		amounts[0] = limit.Supply
		for i := 0; i+1 < len(path); i++ {
			rIn, rOut, err := e.hopReserves(st, path[i], path[i+1])
			if err != nil {
				return nil, err
			}
			amounts[i+1] = e.targetAmount(rIn, rOut, amounts[i])
			if amounts[i+1].IsZero() {
				return nil, ErrInsufficientLiquidity
			}
		}
		if limit.Target != nil && amounts[len(path)-1].Lt(limit.Target) {
			return nil, ErrInsufficientTargetAmount
		}

	case ledger.ExactTargetLimit:
		amounts[len(path)-1] = limit.Target
		for i := len(path) - 1; i > 0; i-- {
			rIn, rOut, err := e.hopReserves(st, path[i-1], path[i])
			if err != nil {
				return nil, err
			}
			supply, ok := e.supplyAmount(rIn, rOut, amounts[i])
			if !ok {
				return nil, ErrInsufficientLiquidity
			}
			amounts[i-1] = supply
		}
		if limit.Supply != nil && amounts[0].Gt(limit.Supply) {
			return nil, ErrExcessiveSupplyAmount
		}

	default:
		return nil, fmt.Errorf("unknown swap limit %s", limit.Kind)
	}
	return amounts, nil
}

// targetAmount is the constant-product output for supply after the fee:
//
//	out = supply*(1-fee)*rOut / (rIn + supply*(1-fee))
func (e *Exchange) targetAmount(rIn, rOut, supply *uint256.Int) *uint256.Int {
	if rIn.IsZero() || rOut.IsZero() || supply.IsZero() {
		return new(uint256.Int)
	}
	net := e.afterFee(supply)
	denominator := new(uint256.Int).Mul(rIn, e.feeDenominator)
	denominator.Add(denominator, net)
	out, _ := new(uint256.Int).MulDivOverflow(net, rOut, denominator)
	return out
}

// supplyAmount is the inverse of targetAmount, rounded up.
func (e *Exchange) supplyAmount(rIn, rOut, target *uint256.Int) (*uint256.Int, bool) {
	if rIn.IsZero() || rOut.IsZero() || target.IsZero() || !target.Lt(rOut) {
		return nil, false
	}
	scaled := new(uint256.Int).Mul(rIn, e.feeDenominator)
	denominator := new(uint256.Int).Sub(rOut, target)
	denominator.Mul(denominator, new(uint256.Int).Sub(e.feeDenominator, e.feeNumerator))
	supply, overflow := new(uint256.Int).MulDivOverflow(scaled, target, denominator)
	if overflow {
		return nil, false
	}
	supply.AddUint64(supply, 1)
	if supply.Gt(ledger.MaxBalance) {
		return nil, false
	}
	return supply, true
}

// afterFee scales supply by feeDenominator-feeNumerator, leaving the result
// in feeDenominator units.
func (e *Exchange) afterFee(supply *uint256.Int) *uint256.Int {
	return new(uint256.Int).Mul(supply, new(uint256.Int).Sub(e.feeDenominator, e.feeNumerator))
}

func (e *Exchange) hopReserves(st *overlay, in, out ledger.CurrencyID) (*uint256.Int, *uint256.Int, error) {
	if err := e.requireEnabled(st, in, out); err != nil {
		return nil, nil, err
	}
	return e.reserves(st, in, out)
}

func (e *Exchange) enabled(st *overlay, a, b ledger.CurrencyID) (bool, error) {
	if a == b {
		return false, nil
	}
	v, err := st.get(storageKey(prefixPair, pairID(a, b)))
	return v != nil, err
}

func (e *Exchange) requireEnabled(st *overlay, a, b ledger.CurrencyID) error {
	ok, err := e.enabled(st, a, b)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrPairNotEnabled, a, b)
	}
	return nil
}

// reserves returns the pool reserves of a and b in argument order.
func (e *Exchange) reserves(st *overlay, a, b ledger.CurrencyID) (*uint256.Int, *uint256.Int, error) {
	v, err := st.get(storageKey(prefixReserve, pairID(a, b)))
	if err != nil {
		return nil, nil, err
	}
	lo, hi := new(uint256.Int), new(uint256.Int)
	if len(v) == 64 {
		lo.SetBytes32(v[:32])
		hi.SetBytes32(v[32:])
	}
	if a > b {
		return hi, lo, nil
	}
	return lo, hi, nil
}

func (e *Exchange) setReserves(st *overlay, a, b ledger.CurrencyID, ra, rb *uint256.Int) {
	if a > b {
		ra, rb = rb, ra
	}
	lo, hi := ra.Bytes32(), rb.Bytes32()
	st.put(storageKey(prefixReserve, pairID(a, b)), append(lo[:], hi[:]...))
}

func (e *Exchange) addShares(st *overlay, who ledger.AccountID, a, b ledger.CurrencyID, share, total *uint256.Int) error {
	owned, err := st.getUint(shareKey(who, a, b))
	if err != nil {
		return err
	}
	if owned, err = add(owned, share); err != nil {
		return err
	}
	if total, err = add(total, share); err != nil {
		return err
	}
	st.putUint(shareKey(who, a, b), owned)
	st.putUint(totalSharesKey(a, b), total)
	return nil
}

func (e *Exchange) credit(st *overlay, who ledger.AccountID, currency ledger.CurrencyID, amount *uint256.Int) error {
	key := balanceKey(who, currency)
	balance, err := st.getUint(key)
	if err != nil {
		return err
	}
	if balance, err = add(balance, amount); err != nil {
		return err
	}
	st.putUint(key, balance)
	return nil
}

func (e *Exchange) debit(st *overlay, who ledger.AccountID, currency ledger.CurrencyID, amount *uint256.Int) error {
	key := balanceKey(who, currency)
	balance, err := st.getUint(key)
	if err != nil {
		return err
	}
	if balance, err = sub(balance, amount, ErrInsufficientBalance); err != nil {
		return err
	}
	st.putUint(key, balance)
	return nil
}

func balanceKey(who ledger.AccountID, currency ledger.CurrencyID) []byte {
	return storageKey(prefixBalance, who.Bytes(), currencyBytes(currency))
}

func shareKey(who ledger.AccountID, a, b ledger.CurrencyID) []byte {
	return storageKey(prefixShare, pairID(a, b), who.Bytes())
}

func totalSharesKey(a, b ledger.CurrencyID) []byte {
	return storageKey(prefixTotalShares, pairID(a, b))
}

// mulDiv returns x*y/z, or zero when z is zero. Callers pass ledger
// amounts, so the quotient fits.
func mulDiv(x, y, z *uint256.Int) *uint256.Int {
	if z.IsZero() {
		return new(uint256.Int)
	}
	q, _ := new(uint256.Int).MulDivOverflow(x, y, z)
	return q
}
