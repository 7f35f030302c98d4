// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/spf13/cobra"
)

var (
	errArgumentCount = errors.New("wrong number of arguments")
	errBadAddress    = errors.New("invalid address")
	errBadNumber     = errors.New("invalid number")
)

func newEncodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <surface> <method> [args...]",
		Short: "ABI-encode a call payload",
		Long: `Encode a call payload for a precompile method. Addresses are hex,
numbers are decimal or 0x-prefixed hex and address arrays are
comma-separated lists.`,
		Example: "  ledgerctl encode dex swapWithExactSupply 0x8db9... 0x...0001,0x...0002 1000 1",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := lookupSurface(args[0])
			if err != nil {
				return err
			}
			m, err := s.Method(args[1])
			if err != nil {
				return err
			}
			payload, err := encodeCall(m, args[2:])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(payload))
			return err
		},
	}
}

// encodeCall packs args with the standard ABI encoder after the method
// selector.
func encodeCall(m method, args []string) ([]byte, error) {
	types := m.Types()
	if len(args) != len(types) {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", errArgumentCount, m.Signature, len(types), len(args))
	}

	arguments := make(abi.Arguments, 0, len(types))
	values := make([]interface{}, 0, len(types))
	for i, t := range types {
		typ, err := abi.NewType(t, "", nil)
		if err != nil {
			return nil, err
		}
		v, err := parseValue(t, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		arguments = append(arguments, abi.Argument{Type: typ})
		values = append(values, v)
	}

	packed, err := arguments.Pack(values...)
	if err != nil {
		return nil, err
	}
	return append(m.Selector.Bytes(), packed...), nil
}

func parseValue(typ, s string) (interface{}, error) {
	switch typ {
	case "address":
		return parseAddress(s)
	case "address[]":
		var out []common.Address
		for _, part := range strings.Split(s, ",") {
			if part == "" {
				continue
			}
			addr, err := parseAddress(part)
			if err != nil {
				return nil, err
			}
			out = append(out, addr)
		}
		return out, nil
	case "uint256":
		v, err := parseAmount(s)
		if err != nil {
			return nil, err
		}
		return v.ToBig(), nil
	default:
		return nil, fmt.Errorf("unsupported type %s", typ)
	}
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w %q", errBadAddress, s)
	}
	return common.HexToAddress(s), nil
}

// parseAmount reads a decimal or 0x-prefixed hex number.
func parseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", errBadNumber, s, err)
	}
	return v, nil
}
