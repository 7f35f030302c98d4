// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

// ManagerError carries a failure reported by an external manager. Its
// message is the manager's reason, unchanged.
type ManagerError struct {
	// Op names the precompile action that made the call.
	Op  string
	Err error
}

func (e *ManagerError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *ManagerError) Unwrap() error {
	return e.Err
}
