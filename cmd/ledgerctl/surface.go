// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/ledgerprecompile/dex"
	"github.com/luxfi/ledgerprecompile/nft"
	"github.com/luxfi/ledgerprecompile/selector"
)

var (
	errUnknownSurface = errors.New("unknown surface")
	errUnknownMethod  = errors.New("unknown method")
)

type action interface {
	comparable
	Gas() uint64
	Mutating() bool
}

// method is one callable entry of a precompile surface.
type method struct {
	Name      string
	Signature string
	Selector  selector.Selector
	Gas       uint64
	Mutating  bool
}

// Types returns the argument types of the method signature.
func (m method) Types() []string {
	open := strings.IndexByte(m.Signature, '(')
	args := strings.TrimSuffix(m.Signature[open+1:], ")")
	if args == "" {
		return nil
	}
	return strings.Split(args, ",")
}

type surface struct {
	Name    string
	Address common.Address
	Methods []method
}

func (s surface) Method(name string) (method, error) {
	for _, m := range s.Methods {
		if m.Name == name || m.Signature == name {
			return m, nil
		}
	}
	return method{}, fmt.Errorf("%w %q on %s", errUnknownMethod, name, s.Name)
}

func methodsOf[A action](t *selector.Table[A]) []method {
	entries := t.Entries()
	out := make([]method, 0, len(entries))
	for _, e := range entries {
		out = append(out, method{
			Name:      e.Signature[:strings.IndexByte(e.Signature, '(')],
			Signature: e.Signature,
			Selector:  e.Selector,
			Gas:       e.Action.Gas(),
			Mutating:  e.Action.Mutating(),
		})
	}
	return out
}

var surfaces = map[string]surface{
	"dex": {Name: "dex", Address: dex.ContractAddress, Methods: methodsOf(dex.Actions)},
	"nft": {Name: "nft", Address: nft.ContractAddress, Methods: methodsOf(nft.Actions)},
}

func surfaceNames() []string {
	names := make([]string, 0, len(surfaces))
	for name := range surfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupSurface(name string) (surface, error) {
	s, ok := surfaces[name]
	if !ok {
		return surface{}, fmt.Errorf("%w %q (want one of %s)", errUnknownSurface, name, strings.Join(surfaceNames(), ", "))
	}
	return s, nil
}
