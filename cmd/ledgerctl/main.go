// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// ledgerctl inspects the ledger precompiles: it lists their selectors,
// encodes call payloads and executes payloads against a fixture ledger.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect and exercise the native ledger precompiles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newSelectorsCommand(),
		newEncodeCommand(),
		newCallCommand(),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
