// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package input

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds        = errors.New("argument out of bounds")
	ErrInvalidEncoding    = errors.New("invalid argument encoding")
	ErrUnknownSelector    = errors.New("unknown selector")
	ErrUnmappedIdentifier = errors.New("unmapped identifier")
	ErrArrayTooLong       = errors.New("array too long")
	ErrInvalidPath        = errors.New("invalid swap path")

	// ErrEncodingDefect reports a result that cannot be encoded, such as a
	// nil amount returned by a manager.
	ErrEncodingDefect = errors.New("output encoding defect")
)

// DecodeError is a failure to read the argument at a word position. Index 0
// is the selector.
type DecodeError struct {
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("argument %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(index int, err error) error {
	return &DecodeError{Index: index, Err: err}
}
