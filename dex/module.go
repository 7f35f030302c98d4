// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"errors"
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/ledgerprecompile/contract"
	"github.com/luxfi/ledgerprecompile/modules"
	"github.com/luxfi/ledgerprecompile/precompileconfig"
	"github.com/luxfi/ledgerprecompile/registry"
)

var _ contract.Configurator = (*configurator)(nil)

// ConfigKey is the key used in json config files to specify this precompile config.
const ConfigKey = "dexConfig"

// ContractAddress is where the exchange precompile is installed.
var ContractAddress = common.HexToAddress(registry.DEXAddress)

// Swap path length bounds.
const (
	DefaultMaxPathLength uint32 = 4
	MinMaxPathLength     uint32 = 2
	MaxMaxPathLength     uint32 = 16
)

var ErrInvalidMaxPathLength = errors.New("invalid max path length")

// NewModule wraps c for registration with a modules.Registry.
func NewModule(c *Contract) modules.Module {
	return modules.Module{
		ConfigKey:    ConfigKey,
		Address:      ContractAddress,
		Contract:     c,
		Configurator: &configurator{contract: c},
	}
}

type configurator struct {
	contract *Contract
}

func (*configurator) MakeConfig() precompileconfig.Config {
	return new(Config)
}

func (c *configurator) Configure(
	cfg precompileconfig.Config,
	blockContext contract.ConfigurationBlockContext,
) error {
	config, ok := cfg.(*Config)
	if !ok {
		return fmt.Errorf("expected config type %T, got %T: %v", &Config{}, cfg, cfg)
	}

	c.contract.SetMaxPathLength(config.PathLimit())
	c.contract.log.Info("configured exchange precompile",
		"maxPathLength", config.PathLimit(),
		"block", blockContext.Number(),
	)
	return nil
}

// Config implements the precompileconfig.Config interface
type Config struct {
	Upgrade precompileconfig.Upgrade `json:"upgrade,omitempty"`
	// MaxPathLength caps the number of currencies in a swap path. Zero
	// selects DefaultMaxPathLength.
	MaxPathLength uint32 `json:"maxPathLength,omitempty"`
}

func (c *Config) Key() string {
	return ConfigKey
}

func (c *Config) Timestamp() *uint64 {
	return c.Upgrade.Timestamp()
}

func (c *Config) IsDisabled() bool {
	return c.Upgrade.Disable
}

func (c *Config) Equal(cfg precompileconfig.Config) bool {
	other, ok := cfg.(*Config)
	if !ok {
		return false
	}
	return c.Upgrade.Equal(&other.Upgrade) &&
		c.PathLimit() == other.PathLimit()
}

func (c *Config) Verify() error {
	if c.MaxPathLength == 0 {
		return nil
	}
	if c.MaxPathLength < MinMaxPathLength || c.MaxPathLength > MaxMaxPathLength {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidMaxPathLength, c.MaxPathLength, MinMaxPathLength, MaxMaxPathLength)
	}
	return nil
}

// PathLimit is the effective path cap.
func (c *Config) PathLimit() uint32 {
	if c.MaxPathLength == 0 {
		return DefaultMaxPathLength
	}
	return c.MaxPathLength
}
