// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package selector builds closed tables that map 4-byte function selectors
// to the actions a precompile exposes. Selectors are always derived from the
// human-readable signature so the two can never drift apart.
package selector

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common/hexutil"
)

// Length is the byte length of a function selector.
const Length = 4

var (
	ErrDuplicateAction    = errors.New("duplicate action")
	ErrDuplicateSignature = errors.New("duplicate signature")
	ErrDuplicateSelector  = errors.New("duplicate selector")
	ErrEmptySignature     = errors.New("empty signature")
)

// Selector is the left-justified function identifier at the start of a call
// payload.
type Selector [Length]byte

// FromSignature returns the first four bytes of keccak256(sig).
func FromSignature(sig string) Selector {
	var s Selector
	copy(s[:], crypto.Keccak256([]byte(sig))[:Length])
	return s
}

// FromBytes reads a selector from the head of b. It reports false when b is
// shorter than a selector.
func FromBytes(b []byte) (Selector, bool) {
	var s Selector
	if len(b) < Length {
		return s, false
	}
	copy(s[:], b[:Length])
	return s, true
}

func (s Selector) Uint32() uint32 {
	return binary.BigEndian.Uint32(s[:])
}

func (s Selector) Bytes() []byte {
	return s[:]
}

func (s Selector) String() string {
	return hexutil.Encode(s[:])
}

// Entry is one row of a Table.
type Entry[A comparable] struct {
	Action    A
	Signature string
	Selector  Selector
}

// Def declares an action by its canonical signature.
func Def[A comparable](action A, signature string) Entry[A] {
	return Entry[A]{Action: action, Signature: signature}
}

// Table is an immutable selector to action mapping for one precompile surface.
type Table[A comparable] struct {
	entries    []Entry[A]
	bySelector map[Selector]int
	byAction   map[A]int
}

// NewTable computes the selector of every definition and rejects duplicate
// actions, signatures and selector collisions.
func NewTable[A comparable](defs ...Entry[A]) (*Table[A], error) {
	t := &Table[A]{
		entries:    make([]Entry[A], 0, len(defs)),
		bySelector: make(map[Selector]int, len(defs)),
		byAction:   make(map[A]int, len(defs)),
	}
	signatures := make(map[string]struct{}, len(defs))

	for _, def := range defs {
		if def.Signature == "" {
			return nil, fmt.Errorf("%w for action %v", ErrEmptySignature, def.Action)
		}
		if _, ok := t.byAction[def.Action]; ok {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateAction, def.Action)
		}
		if _, ok := signatures[def.Signature]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSignature, def.Signature)
		}
		sel := FromSignature(def.Signature)
		if i, ok := t.bySelector[sel]; ok {
			return nil, fmt.Errorf("%w: %s collides with %s", ErrDuplicateSelector, def.Signature, t.entries[i].Signature)
		}

		def.Selector = sel
		signatures[def.Signature] = struct{}{}
		t.bySelector[sel] = len(t.entries)
		t.byAction[def.Action] = len(t.entries)
		t.entries = append(t.entries, def)
	}
	return t, nil
}

// MustNewTable is NewTable for package-level tables. It panics on an invalid
// definition list, which can only happen at init time.
func MustNewTable[A comparable](defs ...Entry[A]) *Table[A] {
	t, err := NewTable(defs...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the action registered for sel.
func (t *Table[A]) Lookup(sel Selector) (A, bool) {
	i, ok := t.bySelector[sel]
	if !ok {
		var zero A
		return zero, false
	}
	return t.entries[i].Action, true
}

// Selector returns the selector of action.
func (t *Table[A]) Selector(action A) (Selector, bool) {
	i, ok := t.byAction[action]
	if !ok {
		return Selector{}, false
	}
	return t.entries[i].Selector, true
}

// Signature returns the canonical signature of action.
func (t *Table[A]) Signature(action A) (string, bool) {
	i, ok := t.byAction[action]
	if !ok {
		return "", false
	}
	return t.entries[i].Signature, true
}

// Entries returns the table rows in definition order.
func (t *Table[A]) Entries() []Entry[A] {
	out := make([]Entry[A], len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Table[A]) Len() int {
	return len(t.entries)
}
