// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/luxfi/ledgerprecompile/registry"
)

func newSelectorsCommand() *cobra.Command {
	var surfaceName string

	cmd := &cobra.Command{
		Use:   "selectors",
		Short: "List the selectors, signatures and gas of each precompile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := surfaceNames()
			if surfaceName != "" {
				if _, err := lookupSurface(surfaceName); err != nil {
					return err
				}
				names = []string{surfaceName}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range names {
				s := surfaces[name]
				header := fmt.Sprintf("# %s %s", s.Name, s.Address)
				if info, ok := registry.GetPrecompileInfo(s.Address); ok {
					header += " " + info.Description
				}
				fmt.Fprintln(w, header)
				for _, m := range s.Methods {
					kind := "view"
					if m.Mutating {
						kind = "mutating"
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", m.Selector, m.Signature, m.Gas, kind)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&surfaceName, "surface", "", "only list one surface (dex or nft)")
	return cmd
}
