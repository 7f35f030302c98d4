// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/luxfi/log"
	"github.com/spf13/cobra"

	"github.com/luxfi/ledgerprecompile/contract"
	"github.com/luxfi/ledgerprecompile/dex"
	"github.com/luxfi/ledgerprecompile/modules"
	"github.com/luxfi/ledgerprecompile/nft"
	"github.com/luxfi/ledgerprecompile/precompileconfig"
)

const defaultCallGas uint64 = 1_000_000

type callFlags struct {
	surface  string
	fixture  string
	data     string
	caller   string
	gas      uint64
	static   bool
	logLevel string
	height   uint64
	time     uint64
}

func newCallCommand() *cobra.Command {
	flags := &callFlags{}

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Execute a payload against a fixture ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCall(cmd.OutOrStdout(), flags)
		},
	}
	cmd.Flags().StringVar(&flags.surface, "surface", "dex", "precompile to call (dex or nft)")
	cmd.Flags().StringVar(&flags.fixture, "fixture", "", "YAML file with the initial ledger state")
	cmd.Flags().StringVar(&flags.data, "data", "", "hex call payload")
	cmd.Flags().StringVar(&flags.caller, "caller", "0x0000000000000000000000000000000000000000", "caller address")
	cmd.Flags().Uint64Var(&flags.gas, "gas", defaultCallGas, "gas supplied to the call")
	cmd.Flags().BoolVar(&flags.static, "static", false, "execute as a static call")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "off", "log level (off, info, debug)")
	cmd.Flags().Uint64Var(&flags.height, "height", 1, "block height")
	cmd.Flags().Uint64Var(&flags.time, "time", 0, "block timestamp")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func runCall(out io.Writer, flags *callFlags) error {
	s, err := lookupSurface(flags.surface)
	if err != nil {
		return err
	}
	payload, err := hexutil.Decode(flags.data)
	if err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	caller, err := parseAddress(flags.caller)
	if err != nil {
		return fmt.Errorf("caller: %w", err)
	}
	level, err := log.ToLevel(flags.logLevel)
	if err != nil {
		return err
	}
	logger := log.NewTestLogger(level)

	f, err := readFixture(flags.fixture)
	if err != nil {
		return err
	}
	st, err := f.load()
	if err != nil {
		return err
	}
	defer st.db.Close()

	block := &contract.Block{Height: flags.height, Time: flags.time}
	host, err := newHost(st, f, logger, block)
	if err != nil {
		return err
	}

	ret, remaining, err := host.Call(block, caller, s.Address, payload, flags.gas, flags.static)
	if errors.Is(err, contract.ErrExecutionReverted) {
		reason, unpackErr := abi.UnpackRevert(ret)
		if unpackErr != nil {
			return fmt.Errorf("%w: %s", err, hexutil.Encode(ret))
		}
		fmt.Fprintf(out, "gas left: %d\n", remaining)
		return fmt.Errorf("%w: %s", err, reason)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "result: %s\n", hexutil.Encode(ret))
	fmt.Fprintf(out, "gas left: %d\n", remaining)
	return nil
}

// newHost registers both precompiles over the fixture ledger and activates
// them from genesis.
func newHost(st *ledgerState, f *fixture, logger log.Logger, block *contract.Block) (*modules.Registry, error) {
	host := modules.NewRegistry()
	exchange := dex.NewContract(st.exchange, st.ids, dex.WithLogger(logger))
	assets := nft.NewContract(st.assets, st.ids, nft.WithLogger(logger))
	if err := host.Register(dex.NewModule(exchange)); err != nil {
		return nil, err
	}
	if err := host.Register(nft.NewModule(assets)); err != nil {
		return nil, err
	}

	genesis := uint64(0)
	upgrade := precompileconfig.Upgrade{BlockTimestamp: &genesis}
	if err := host.Configure(&dex.Config{Upgrade: upgrade, MaxPathLength: f.MaxPathLength}, block); err != nil {
		return nil, err
	}
	if err := host.Configure(&nft.Config{Upgrade: upgrade}, block); err != nil {
		return nil, err
	}
	return host, nil
}
