// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package precompileconfig defines the configuration every ledger precompile
// exposes to the host chain.
package precompileconfig

// Config is the JSON-decodable configuration of one precompile.
type Config interface {
	// Key is the name of the config in the chain's upgrade file.
	Key() string
	// Timestamp is when the config takes effect. Nil means never.
	Timestamp() *uint64
	IsDisabled() bool
	Equal(Config) bool
	Verify() error
}

// Upgrade is embedded by every Config to schedule activation.
type Upgrade struct {
	BlockTimestamp *uint64 `json:"blockTimestamp,omitempty"`
	Disable        bool    `json:"disable,omitempty"`
}

func (u *Upgrade) Timestamp() *uint64 {
	return u.BlockTimestamp
}

func (u *Upgrade) Equal(other *Upgrade) bool {
	if other == nil {
		return false
	}
	if u.Disable != other.Disable {
		return false
	}
	if u.BlockTimestamp == nil || other.BlockTimestamp == nil {
		return u.BlockTimestamp == nil && other.BlockTimestamp == nil
	}
	return *u.BlockTimestamp == *other.BlockTimestamp
}

// IsActive reports whether cfg is enabled at timestamp.
func IsActive(cfg Config, timestamp uint64) bool {
	if cfg == nil || cfg.IsDisabled() {
		return false
	}
	ts := cfg.Timestamp()
	return ts != nil && *ts <= timestamp
}
