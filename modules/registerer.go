// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/ledgerprecompile/contract"
	"github.com/luxfi/ledgerprecompile/precompileconfig"
)

var (
	ErrUnknownPrecompile = errors.New("no precompile at address")
	ErrNotActive         = errors.New("precompile not active")
	ErrUnknownConfig     = errors.New("no precompile for config key")
)

// AddressRange represents a continuous range of addresses
type AddressRange struct {
	Start common.Address
	End   common.Address
}

// Contains returns true iff [addr] is contained within the (inclusive)
// range of addresses defined by [a].
func (a *AddressRange) Contains(addr common.Address) bool {
	addrBytes := addr.Bytes()
	return bytes.Compare(addrBytes, a.Start[:]) >= 0 && bytes.Compare(addrBytes, a.End[:]) <= 0
}

// BlackholeAddr is the address where assets are burned
var BlackholeAddr = common.Address{
	1, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Reserved address ranges for ledger precompiles.
//
// LOW-BYTE RANGES (0x0000...XXXX):
// 0x0400-0x04FF: Native ledger (asset registry, exchange)
var reservedRanges = []AddressRange{
	{
		Start: common.HexToAddress("0x0000000000000000000000000000000000000400"),
		End:   common.HexToAddress("0x00000000000000000000000000000000000004ff"),
	},
}

// ReservedAddress returns true if [addr] is in a reserved range for ledger precompiles
func ReservedAddress(addr common.Address) bool {
	for _, reservedRange := range reservedRanges {
		if reservedRange.Contains(addr) {
			return true
		}
	}

	return false
}

// Registry holds the precompiles of one host and their active configs.
type Registry struct {
	mu sync.RWMutex
	// sorted by address for deterministic iteration
	modules []Module
	configs map[string]precompileconfig.Config
}

func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[string]precompileconfig.Config),
	}
}

// Register adds a stateful precompile module.
func (r *Registry) Register(stm Module) error {
	address := stm.Address
	key := stm.ConfigKey

	if address == BlackholeAddr {
		return fmt.Errorf("address %s overlaps with blackhole address", address)
	}
	if !ReservedAddress(address) {
		return fmt.Errorf("address %s not in a reserved range", address)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, registeredModule := range r.modules {
		if registeredModule.ConfigKey == key {
			return fmt.Errorf("name %s already used by a stateful precompile", key)
		}
		if registeredModule.Address == address {
			return fmt.Errorf("address %s already used by a stateful precompile", address)
		}
	}
	r.modules = insertSortedByAddress(r.modules, stm)
	return nil
}

func (r *Registry) ByAddress(address common.Address) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stm := range r.modules {
		if stm.Address == address {
			return stm, true
		}
	}
	return Module{}, false
}

func (r *Registry) ByKey(key string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byKey(key)
}

func (r *Registry) byKey(key string) (Module, bool) {
	for _, stm := range r.modules {
		if stm.ConfigKey == key {
			return stm, true
		}
	}
	return Module{}, false
}

// Modules returns the registered modules ordered by address.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// Configure verifies cfg and applies it to the module registered under
// cfg.Key(). The config then governs when the module is callable.
func (r *Registry) Configure(cfg precompileconfig.Config, blockContext contract.ConfigurationBlockContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stm, ok := r.byKey(cfg.Key())
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConfig, cfg.Key())
	}
	if err := cfg.Verify(); err != nil {
		return fmt.Errorf("invalid %s config: %w", cfg.Key(), err)
	}
	if err := stm.Configure(cfg, blockContext); err != nil {
		return err
	}
	r.configs[cfg.Key()] = cfg
	return nil
}

// IsActive reports whether the precompile at address is enabled at timestamp.
func (r *Registry) IsActive(address common.Address, timestamp uint64) bool {
	stm, ok := r.ByAddress(address)
	if !ok {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return precompileconfig.IsActive(r.configs[stm.ConfigKey], timestamp)
}

// Call routes a host call to the precompile at addr.
func (r *Registry) Call(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	stm, ok := r.ByAddress(addr)
	if !ok {
		return nil, suppliedGas, fmt.Errorf("%w %s", ErrUnknownPrecompile, addr)
	}
	if !r.IsActive(addr, accessibleState.GetBlockContext().Timestamp()) {
		return nil, suppliedGas, fmt.Errorf("%w: %s", ErrNotActive, stm.ConfigKey)
	}
	return stm.Contract.Run(accessibleState, caller, addr, input, suppliedGas, readOnly)
}

func insertSortedByAddress(data []Module, stm Module) []Module {
	data = append(data, stm)
	sort.Sort(moduleArray(data))
	return data
}
