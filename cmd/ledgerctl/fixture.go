// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common/hexutil"
	"gopkg.in/yaml.v3"

	"github.com/luxfi/ledgerprecompile/ledger"
	"github.com/luxfi/ledgerprecompile/memledger"
)

// fixture describes the initial state of a development ledger.
type fixture struct {
	// MaxPathLength overrides the exchange path cap. Zero keeps the default.
	MaxPathLength uint32 `yaml:"maxPathLength"`

	Currencies []uint32         `yaml:"currencies"`
	Bindings   []bindingFixture `yaml:"bindings"`
	Pairs      []pairFixture    `yaml:"pairs"`
	Deposits   []depositFixture `yaml:"deposits"`
	Liquidity  []poolFixture    `yaml:"liquidity"`
	Tokens     []tokenFixture   `yaml:"tokens"`
}

type bindingFixture struct {
	Address string `yaml:"address"`
	Account string `yaml:"account"`
}

type pairFixture struct {
	A uint32 `yaml:"a"`
	B uint32 `yaml:"b"`
}

type depositFixture struct {
	Account  string `yaml:"account"`
	Currency uint32 `yaml:"currency"`
	Amount   string `yaml:"amount"`
}

type poolFixture struct {
	Account string `yaml:"account"`
	A       uint32 `yaml:"a"`
	B       uint32 `yaml:"b"`
	AmountA string `yaml:"amountA"`
	AmountB string `yaml:"amountB"`
}

type tokenFixture struct {
	Class uint32 `yaml:"class"`
	Token uint64 `yaml:"token"`
	Owner string `yaml:"owner"`
}

// ledgerState is a fixture loaded into in-memory managers.
type ledgerState struct {
	db       database.Database
	ids      *ledger.AddressMapping
	exchange *memledger.Exchange
	assets   *memledger.Registry
}

func readFixture(path string) (*fixture, error) {
	f := &fixture{}
	if path == "" {
		return f, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, f); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	return f, nil
}

// load builds the ledger state in fixture order: currencies and bindings
// first so every later account resolves the same way a call would.
func (f *fixture) load() (*ledgerState, error) {
	db := memdb.New()
	st := &ledgerState{
		db:       db,
		ids:      ledger.NewAddressMapping(),
		exchange: memledger.NewExchange(db),
		assets:   memledger.NewRegistry(db),
	}

	for _, id := range f.Currencies {
		st.ids.RegisterCurrency(ledger.CurrencyID(id))
	}
	for i, b := range f.Bindings {
		addr, err := parseAddress(b.Address)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		account, err := parseAccountID(b.Account)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		if err := st.ids.Bind(addr, account); err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
	}
	for i, p := range f.Pairs {
		if err := st.exchange.EnableTradingPair(ledger.CurrencyID(p.A), ledger.CurrencyID(p.B)); err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
	}
	for i, d := range f.Deposits {
		who, err := st.account(d.Account)
		if err != nil {
			return nil, fmt.Errorf("deposit %d: %w", i, err)
		}
		amount, err := parseAmount(d.Amount)
		if err != nil {
			return nil, fmt.Errorf("deposit %d: %w", i, err)
		}
		if err := st.exchange.Deposit(who, ledger.CurrencyID(d.Currency), amount); err != nil {
			return nil, fmt.Errorf("deposit %d: %w", i, err)
		}
	}
	for i, p := range f.Liquidity {
		who, err := st.account(p.Account)
		if err != nil {
			return nil, fmt.Errorf("liquidity %d: %w", i, err)
		}
		amountA, err := parseAmount(p.AmountA)
		if err != nil {
			return nil, fmt.Errorf("liquidity %d: %w", i, err)
		}
		amountB, err := parseAmount(p.AmountB)
		if err != nil {
			return nil, fmt.Errorf("liquidity %d: %w", i, err)
		}
		err = st.exchange.AddLiquidity(who, ledger.CurrencyID(p.A), ledger.CurrencyID(p.B), amountA, amountB, new(uint256.Int), false)
		if err != nil {
			return nil, fmt.Errorf("liquidity %d: %w", i, err)
		}
	}
	for i, t := range f.Tokens {
		owner, err := st.account(t.Owner)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		if err := st.assets.Mint(t.Class, t.Token, owner); err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
	}
	return st, nil
}

// account resolves an EVM address the way the precompiles do.
func (st *ledgerState) account(s string) (ledger.AccountID, error) {
	addr, err := parseAddress(s)
	if err != nil {
		return ledger.AccountID{}, err
	}
	who, ok := st.ids.AccountID(addr)
	if !ok {
		return ledger.AccountID{}, fmt.Errorf("%s is a currency address", addr)
	}
	return who, nil
}

func parseAccountID(s string) (ledger.AccountID, error) {
	var account ledger.AccountID
	raw, err := hexutil.Decode(s)
	if err != nil {
		return account, fmt.Errorf("account %q: %w", s, err)
	}
	if len(raw) != ledger.AccountIDLength {
		return account, fmt.Errorf("account %q: want %d bytes, got %d", s, ledger.AccountIDLength, len(raw))
	}
	copy(account[:], raw)
	return account, nil
}
