// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package nft implements the asset registry precompile on top of a
// ledger.AssetRegistry.
package nft

import (
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/ledgerprecompile/contract"
	"github.com/luxfi/ledgerprecompile/input"
	"github.com/luxfi/ledgerprecompile/ledger"
)

var _ contract.StatefulPrecompiledContract = (*Contract)(nil)

const (
	argBalanceAccount = 1

	argOwnerClass = 1
	argOwnerToken = 2

	argTransferFrom  = 1
	argTransferTo    = 2
	argTransferClass = 3
	argTransferToken = 4
)

type Option func(*Contract)

func WithLogger(l log.Logger) Option {
	return func(c *Contract) {
		c.log = l
	}
}

// Contract is the asset registry precompile.
type Contract struct {
	assets ledger.AssetRegistry
	ids    ledger.IdentifierTranslator
	log    log.Logger
}

func NewContract(assets ledger.AssetRegistry, ids ledger.IdentifierTranslator, opts ...Option) *Contract {
	c := &Contract{
		assets: assets,
		ids:    ids,
		log:    log.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
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

	c.log.Debug("asset registry call", "caller", caller, "action", action)
	ret, err = c.execute(in, action)
	if err != nil {
		return contract.Revert(err, remainingGas)
	}
	return ret, remainingGas, nil
}

// Execute runs a payload without gas or static-call checks.
func (c *Contract) Execute(data []byte) ([]byte, error) {
	in := input.New(data, Actions, c.ids)
	action, err := in.Action()
	if err != nil {
		return nil, err
	}
	return c.execute(in, action)
}

func (c *Contract) RequiredGas(data []byte) uint64 {
	action, err := input.New(data, Actions, c.ids).Action()
	if err != nil {
		return GasQuery
	}
	return action.Gas()
}

func (c *Contract) execute(in *input.Input[Action], action Action) ([]byte, error) {
	switch action {
	case QueryBalance:
		return c.balanceOf(in)
	case QueryOwner:
		return c.ownerOf(in)
	case Transfer:
		return c.transfer(in)
	default:
		return nil, &input.DecodeError{Index: 0, Err: input.ErrUnknownSelector}
	}
}

func (c *Contract) balanceOf(in *input.Input[Action]) ([]byte, error) {
	who, err := in.AccountIDAt(argBalanceAccount)
	if err != nil {
		return nil, err
	}
	c.log.Debug("balanceOf", "who", who)

	balance := c.assets.Balance(who)
	if err := input.CheckBalance(balance); err != nil {
		return nil, err
	}
	return input.NewOutput(1).Uint128(balance).Bytes(), nil
}

// ownerOf answers the zero address for an unowned token.
func (c *Contract) ownerOf(in *input.Input[Action]) ([]byte, error) {
	class, err := in.Uint32At(argOwnerClass)
	if err != nil {
		return nil, err
	}
	token, err := in.Uint64At(argOwnerToken)
	if err != nil {
		return nil, err
	}
	c.log.Debug("ownerOf", "class", class, "token", token)

	var owner common.Address
	if account, ok := c.assets.Owner(class, token); ok {
		if addr, ok := c.ids.EVMAddress(account); ok {
			owner = addr
		} else {
			owner = c.ids.DefaultEVMAddress(account)
		}
	}
	return input.NewOutput(1).Address(owner).Bytes(), nil
}

// transfer moves a token to the recipient. The sender argument is decoded
// for validation and logging only: ownership is enforced by the registry.
func (c *Contract) transfer(in *input.Input[Action]) ([]byte, error) {
	from, err := in.AccountIDAt(argTransferFrom)
	if err != nil {
		return nil, err
	}
	to, err := in.AccountIDAt(argTransferTo)
	if err != nil {
		return nil, err
	}
	class, err := in.Uint32At(argTransferClass)
	if err != nil {
		return nil, err
	}
	token, err := in.Uint64At(argTransferToken)
	if err != nil {
		return nil, err
	}
	c.log.Debug("transfer", "from", from, "to", to, "class", class, "token", token)

	if err := c.assets.Transfer(class, token, to); err != nil {
		return nil, &ledger.ManagerError{Op: Transfer.String(), Err: err}
	}
	return input.Empty(), nil
}
