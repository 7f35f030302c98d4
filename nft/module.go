// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package nft

import (
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/ledgerprecompile/contract"
	"github.com/luxfi/ledgerprecompile/modules"
	"github.com/luxfi/ledgerprecompile/precompileconfig"
	"github.com/luxfi/ledgerprecompile/registry"
)

var _ contract.Configurator = (*configurator)(nil)

// ConfigKey is the key used in json config files to specify this precompile config.
const ConfigKey = "nftConfig"

// ContractAddress is where the asset registry precompile is installed.
var ContractAddress = common.HexToAddress(registry.NFTAddress)

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
	if _, ok := cfg.(*Config); !ok {
		return fmt.Errorf("expected config type %T, got %T: %v", &Config{}, cfg, cfg)
	}
	c.contract.log.Info("configured asset registry precompile", "block", blockContext.Number())
	return nil
}

// Config implements the precompileconfig.Config interface
type Config struct {
	Upgrade precompileconfig.Upgrade `json:"upgrade,omitempty"`
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
	return c.Upgrade.Equal(&other.Upgrade)
}

func (c *Config) Verify() error {
	return nil
}
