// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dex implements the exchange precompile. It decodes ABI call
// payloads, forwards them to a ledger.ExchangeManager and encodes the
// results.
package dex

import (
	"errors"
	"sync/atomic"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/ledgerprecompile/contract"
	"github.com/luxfi/ledgerprecompile/input"
	"github.com/luxfi/ledgerprecompile/ledger"
)

var _ contract.StatefulPrecompiledContract = (*Contract)(nil)

var (
	ErrNoRoute  = errors.New("no swap route")
	ErrNotFound = errors.New("liquidity token not found")
)

// Argument positions. Word 0 is the selector.
const (
	argPairA = 1
	argPairB = 2

	// getSwapTargetAmount / getSwapSupplyAmount: offset, amount, path
	argQuoteAmount = 2
	argQuotePath   = 3

	// swapWithExactSupply / swapWithExactTarget: who, offset, amounts, path
	argSwapWho    = 1
	argSwapAmount = 3
	argSwapLimit  = 4
	argSwapPath   = 5

	// addLiquidity / removeLiquidity
	argLiqWho = 1
	argLiqA   = 2
	argLiqB   = 3
	argLiqX   = 4
	argLiqY   = 5
	argLiqZ   = 6
)

// Option configures a Contract.
type Option func(*Contract)

// WithLogger sets the logger used for per-call debug output.
func WithLogger(l log.Logger) Option {
	return func(c *Contract) {
		c.log = l
	}
}

// WithMaxPathLength sets the initial swap path cap.
func WithMaxPathLength(n uint32) Option {
	return func(c *Contract) {
		c.maxPathLength.Store(n)
	}
}

// Contract is the exchange precompile.
type Contract struct {
	exchange ledger.ExchangeManager
	ids      ledger.IdentifierTranslator
	log      log.Logger

	maxPathLength atomic.Uint32
}

func NewContract(exchange ledger.ExchangeManager, ids ledger.IdentifierTranslator, opts ...Option) *Contract {
	c := &Contract{
		exchange: exchange,
		ids:      ids,
		log:      log.NewNoOpLogger(),
	}
	c.maxPathLength.Store(DefaultMaxPathLength)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Contract) MaxPathLength() uint32 {
	return c.maxPathLength.Load()
}

func (c *Contract) SetMaxPathLength(n uint32) {
	c.maxPathLength.Store(n)
}

// Run executes the precompile
func (c *Contract) Run(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	data []byte,
	suppliedGas uint64,
	readOnly bool,
) (ret []byte, remainingGas uint64, err error) {
	remainingGas, err = contract.DeductGas(suppliedGas, c.RequiredGas(data))
	if err != nil {
		return nil, 0, err
	}

	in := input.New(data, Actions, c.ids)
	action, err := in.Action()
	if err != nil {
		return contract.Revert(err, remainingGas)
	}
	if readOnly && action.Mutating() {
		return nil, remainingGas, contract.ErrWriteProtection
	}

	c.log.Debug("exchange call", "caller", caller, "action", action)
	ret, err = c.execute(in, action)
	if err != nil {
		return contract.Revert(err, remainingGas)
	}
	return ret, remainingGas, nil
}

// Execute runs a payload without gas or static-call checks and returns the
// structured error on failure.
func (c *Contract) Execute(data []byte) ([]byte, error) {
	in := input.New(data, Actions, c.ids)
	action, err := in.Action()
	if err != nil {
		return nil, err
	}
	return c.execute(in, action)
}

// RequiredGas returns the gas required for the precompile input
func (c *Contract) RequiredGas(data []byte) uint64 {
	in := input.New(data, Actions, c.ids)
	action, err := in.Action()
	if err != nil {
		return GasPoolLookup
	}
	return action.Gas()
}

func (c *Contract) execute(in *input.Input[Action], action Action) ([]byte, error) {
	switch action {
	case GetLiquidityPool:
		return c.getLiquidityPool(in)
	case GetLiquidityTokenAddress:
		return c.getLiquidityTokenAddress(in)
	case GetSwapTargetAmount:
		return c.getSwapTargetAmount(in)
	case GetSwapSupplyAmount:
		return c.getSwapSupplyAmount(in)
	case SwapWithExactSupply:
		return c.swapWithExactSupply(in)
	case SwapWithExactTarget:
		return c.swapWithExactTarget(in)
	case AddLiquidity:
		return c.addLiquidity(in)
	case RemoveLiquidity:
		return c.removeLiquidity(in)
	default:
		return nil, &input.DecodeError{Index: 0, Err: input.ErrUnknownSelector}
	}
}

func (c *Contract) pair(in *input.Input[Action]) (ledger.CurrencyID, ledger.CurrencyID, error) {
	a, err := in.CurrencyIDAt(argPairA)
	if err != nil {
		return 0, 0, err
	}
	b, err := in.CurrencyIDAt(argPairB)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func (c *Contract) path(in *input.Input[Action], i int) ([]ledger.CurrencyID, error) {
	return in.PathAt(i, int(c.MaxPathLength()))
}

func (c *Contract) getLiquidityPool(in *input.Input[Action]) ([]byte, error) {
	a, b, err := c.pair(in)
	if err != nil {
		return nil, err
	}
	c.log.Debug("getLiquidityPool", "currencyA", a, "currencyB", b)

	poolA, poolB := c.exchange.GetLiquidityPool(a, b)
	if err := checkBalances(poolA, poolB); err != nil {
		return nil, err
	}
	return input.NewOutput(2).Uint128Tuple(poolA, poolB).Bytes(), nil
}

func (c *Contract) getLiquidityTokenAddress(in *input.Input[Action]) ([]byte, error) {
	a, b, err := c.pair(in)
	if err != nil {
		return nil, err
	}
	c.log.Debug("getLiquidityTokenAddress", "currencyA", a, "currencyB", b)

	token, ok := c.exchange.GetLiquidityTokenAddress(a, b)
	if !ok {
		return nil, ErrNotFound
	}
	return input.NewOutput(1).Address(token).Bytes(), nil
}

func (c *Contract) getSwapTargetAmount(in *input.Input[Action]) ([]byte, error) {
	supply, err := in.BalanceAt(argQuoteAmount)
	if err != nil {
		return nil, err
	}
	path, err := c.path(in, argQuotePath)
	if err != nil {
		return nil, err
	}
	c.log.Debug("getSwapTargetAmount", "path", path, "supply", supply)

	_, target, ok := c.exchange.GetSwapAmount(path, ledger.ExactSupply(supply, new(uint256.Int)))
	if !ok {
		return nil, ErrNoRoute
	}
	if err := checkBalances(target); err != nil {
		return nil, err
	}
	return input.NewOutput(1).Uint128(target).Bytes(), nil
}

func (c *Contract) getSwapSupplyAmount(in *input.Input[Action]) ([]byte, error) {
	target, err := in.BalanceAt(argQuoteAmount)
	if err != nil {
		return nil, err
	}
	path, err := c.path(in, argQuotePath)
	if err != nil {
		return nil, err
	}
	c.log.Debug("getSwapSupplyAmount", "path", path, "target", target)

	supply, _, ok := c.exchange.GetSwapAmount(path, ledger.ExactTarget(ledger.MaxBalance.Clone(), target))
	if !ok {
		return nil, ErrNoRoute
	}
	if err := checkBalances(supply); err != nil {
		return nil, err
	}
	return input.NewOutput(1).Uint128(supply).Bytes(), nil
}

// swapArgs decodes the shared layout of the two swap actions.
func (c *Contract) swapArgs(in *input.Input[Action]) (ledger.AccountID, *uint256.Int, *uint256.Int, []ledger.CurrencyID, error) {
	who, err := in.AccountIDAt(argSwapWho)
	if err != nil {
		return ledger.AccountID{}, nil, nil, nil, err
	}
	amount, err := in.BalanceAt(argSwapAmount)
	if err != nil {
		return ledger.AccountID{}, nil, nil, nil, err
	}
	limit, err := in.BalanceAt(argSwapLimit)
	if err != nil {
		return ledger.AccountID{}, nil, nil, nil, err
	}
	path, err := c.path(in, argSwapPath)
	if err != nil {
		return ledger.AccountID{}, nil, nil, nil, err
	}
	return who, amount, limit, path, nil
}

func (c *Contract) swapWithExactSupply(in *input.Input[Action]) ([]byte, error) {
	who, supply, minTarget, path, err := c.swapArgs(in)
	if err != nil {
		return nil, err
	}
	c.log.Debug("swapWithExactSupply", "who", who, "path", path, "supply", supply, "minTarget", minTarget)

	_, target, err := c.exchange.SwapWithSpecificPath(who, path, ledger.ExactSupply(supply, minTarget))
	if err != nil {
		return nil, &ledger.ManagerError{Op: SwapWithExactSupply.String(), Err: err}
	}
	if err := checkBalances(target); err != nil {
		return nil, err
	}
	return input.NewOutput(1).Uint128(target).Bytes(), nil
}

func (c *Contract) swapWithExactTarget(in *input.Input[Action]) ([]byte, error) {
	who, target, maxSupply, path, err := c.swapArgs(in)
	if err != nil {
		return nil, err
	}
	c.log.Debug("swapWithExactTarget", "who", who, "path", path, "target", target, "maxSupply", maxSupply)

	supply, _, err := c.exchange.SwapWithSpecificPath(who, path, ledger.ExactTarget(maxSupply, target))
	if err != nil {
		return nil, &ledger.ManagerError{Op: SwapWithExactTarget.String(), Err: err}
	}
	if err := checkBalances(supply); err != nil {
		return nil, err
	}
	return input.NewOutput(1).Uint128(supply).Bytes(), nil
}

type liquidityArgs struct {
	who     ledger.AccountID
	a, b    ledger.CurrencyID
	x, y, z *uint256.Int
}

func (c *Contract) liquidityArgs(in *input.Input[Action]) (liquidityArgs, error) {
	var (
		args liquidityArgs
		err  error
	)
	if args.who, err = in.AccountIDAt(argLiqWho); err != nil {
		return args, err
	}
	if args.a, err = in.CurrencyIDAt(argLiqA); err != nil {
		return args, err
	}
	if args.b, err = in.CurrencyIDAt(argLiqB); err != nil {
		return args, err
	}
	if args.x, err = in.BalanceAt(argLiqX); err != nil {
		return args, err
	}
	if args.y, err = in.BalanceAt(argLiqY); err != nil {
		return args, err
	}
	if args.z, err = in.BalanceAt(argLiqZ); err != nil {
		return args, err
	}
	return args, nil
}

func (c *Contract) addLiquidity(in *input.Input[Action]) ([]byte, error) {
	args, err := c.liquidityArgs(in)
	if err != nil {
		return nil, err
	}
	c.log.Debug("addLiquidity",
		"who", args.who,
		"currencyA", args.a,
		"currencyB", args.b,
		"maxA", args.x,
		"maxB", args.y,
		"minShareIncrement", args.z,
	)

	if err := c.exchange.AddLiquidity(args.who, args.a, args.b, args.x, args.y, args.z, false); err != nil {
		return nil, &ledger.ManagerError{Op: AddLiquidity.String(), Err: err}
	}
	return input.Empty(), nil
}

func (c *Contract) removeLiquidity(in *input.Input[Action]) ([]byte, error) {
	args, err := c.liquidityArgs(in)
	if err != nil {
		return nil, err
	}
	c.log.Debug("removeLiquidity",
		"who", args.who,
		"currencyA", args.a,
		"currencyB", args.b,
		"share", args.x,
		"minA", args.y,
		"minB", args.z,
	)

	if err := c.exchange.RemoveLiquidity(args.who, args.a, args.b, args.x, args.y, args.z, false); err != nil {
		return nil, &ledger.ManagerError{Op: RemoveLiquidity.String(), Err: err}
	}
	return input.Empty(), nil
}

func checkBalances(vs ...*uint256.Int) error {
	for _, v := range vs {
		if err := input.CheckBalance(v); err != nil {
			return err
		}
	}
	return nil
}
