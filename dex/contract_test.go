// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dex

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ledgerprecompile/contract"
	"github.com/luxfi/ledgerprecompile/input"
	"github.com/luxfi/ledgerprecompile/ledger"
	"github.com/luxfi/ledgerprecompile/modules"
	"github.com/luxfi/ledgerprecompile/precompileconfig"
)

// stubExchange records every call and returns canned results.
type stubExchange struct {
	calls []string

	poolA, poolB *uint256.Int

	token   common.Address
	tokenOK bool

	quoteSupply, quoteTarget *uint256.Int
	quoteOK                  bool

	swapSupply, swapTarget *uint256.Int
	swapErr                error

	liquidityErr error

	who   ledger.AccountID
	pair  [2]ledger.CurrencyID
	path  []ledger.CurrencyID
	limit ledger.SwapLimit
	args  []*uint256.Int
	flag  bool
}

func (s *stubExchange) GetLiquidityPool(a, b ledger.CurrencyID) (*uint256.Int, *uint256.Int) {
	s.calls = append(s.calls, "GetLiquidityPool")
	s.pair = [2]ledger.CurrencyID{a, b}
	return s.poolA, s.poolB
}

func (s *stubExchange) GetLiquidityTokenAddress(a, b ledger.CurrencyID) (common.Address, bool) {
	s.calls = append(s.calls, "GetLiquidityTokenAddress")
	s.pair = [2]ledger.CurrencyID{a, b}
	return s.token, s.tokenOK
}

func (s *stubExchange) GetSwapAmount(path []ledger.CurrencyID, limit ledger.SwapLimit) (*uint256.Int, *uint256.Int, bool) {
	s.calls = append(s.calls, "GetSwapAmount")
	s.path, s.limit = path, limit
	return s.quoteSupply, s.quoteTarget, s.quoteOK
}

func (s *stubExchange) SwapWithSpecificPath(who ledger.AccountID, path []ledger.CurrencyID, limit ledger.SwapLimit) (*uint256.Int, *uint256.Int, error) {
	s.calls = append(s.calls, "SwapWithSpecificPath")
	s.who, s.path, s.limit = who, path, limit
	return s.swapSupply, s.swapTarget, s.swapErr
}

func (s *stubExchange) AddLiquidity(who ledger.AccountID, a, b ledger.CurrencyID, maxA, maxB, minShare *uint256.Int, stake bool) error {
	s.calls = append(s.calls, "AddLiquidity")
	s.who, s.pair, s.args, s.flag = who, [2]ledger.CurrencyID{a, b}, []*uint256.Int{maxA, maxB, minShare}, stake
	return s.liquidityErr
}

func (s *stubExchange) RemoveLiquidity(who ledger.AccountID, a, b ledger.CurrencyID, share, minA, minB *uint256.Int, unstake bool) error {
	s.calls = append(s.calls, "RemoveLiquidity")
	s.who, s.pair, s.args, s.flag = who, [2]ledger.CurrencyID{a, b}, []*uint256.Int{share, minA, minB}, unstake
	return s.liquidityErr
}

var (
	alice     = common.HexToAddress("0x8db97C7cEcE249c2b98bDC0226Cc4C2A57BF52FC")
	currencyA = ledger.CurrencyAddress(1)
	currencyB = ledger.CurrencyAddress(2)
	currencyC = ledger.CurrencyAddress(3)
)

func newTestContract(opts ...Option) (*Contract, *stubExchange) {
	ids := ledger.NewAddressMapping()
	ids.RegisterCurrency(1, 2, 3, 4, 5)
	stub := &stubExchange{}
	return NewContract(stub, ids, opts...), stub
}

// call builds a payload from a selector and argument words.
func call(action Action, words ...[]byte) []byte {
	sel, ok := Actions.Selector(action)
	if !ok {
		panic("unknown action")
	}
	out := append([]byte{}, sel.Bytes()...)
	for _, w := range words {
		out = append(out, common.LeftPadBytes(w, input.WordLength)...)
	}
	return out
}

func num(v uint64) []byte {
	return new(big.Int).SetUint64(v).Bytes()
}

func addr(a common.Address) []byte {
	return a.Bytes()
}

func word(t *testing.T, v uint64) []byte {
	t.Helper()
	return common.LeftPadBytes(num(v), input.WordLength)
}

func TestGetLiquidityPool(t *testing.T) {
	c, stub := newTestContract()
	stub.poolA, stub.poolB = uint256.NewInt(100), uint256.NewInt(200)

	payload := call(GetLiquidityPool, addr(currencyA), addr(currencyB))
	ret, err := c.Execute(payload)
	require.NoError(t, err)
	require.Equal(t, append(word(t, 100), word(t, 200)...), ret)
	require.Equal(t, [2]ledger.CurrencyID{1, 2}, stub.pair)

	again, err := c.Execute(payload)
	require.NoError(t, err)
	require.Equal(t, ret, again)
	require.Len(t, stub.calls, 2)
}

func TestGetLiquidityTokenAddress(t *testing.T) {
	c, stub := newTestContract()
	payload := call(GetLiquidityTokenAddress, addr(currencyA), addr(currencyC))

	_, err := c.Execute(payload)
	require.ErrorIs(t, err, ErrNotFound)

	stub.token, stub.tokenOK = common.HexToAddress("0x0000000000000000000200000000000000000103"), true
	ret, err := c.Execute(payload)
	require.NoError(t, err)
	require.Equal(t, common.LeftPadBytes(stub.token.Bytes(), input.WordLength), ret)
	require.Equal(t, [2]ledger.CurrencyID{1, 3}, stub.pair)
}

func TestSwapQuotes(t *testing.T) {
	c, stub := newTestContract()
	stub.quoteSupply, stub.quoteTarget, stub.quoteOK = uint256.NewInt(600), uint256.NewInt(500), true

	// offset, amount, length, path...
	ret, err := c.Execute(call(GetSwapTargetAmount, num(64), num(1000), num(2), addr(currencyA), addr(currencyB)))
	require.NoError(t, err)
	require.Equal(t, word(t, 500), ret)
	require.Equal(t, []ledger.CurrencyID{1, 2}, stub.path)
	require.Equal(t, ledger.ExactSupplyLimit, stub.limit.Kind)
	require.Equal(t, uint64(1000), stub.limit.Supply.Uint64())
	require.True(t, stub.limit.Target.IsZero())

	ret, err = c.Execute(call(GetSwapSupplyAmount, num(64), num(500), num(3), addr(currencyA), addr(currencyC), addr(currencyB)))
	require.NoError(t, err)
	require.Equal(t, word(t, 600), ret)
	require.Equal(t, []ledger.CurrencyID{1, 3, 2}, stub.path)
	require.Equal(t, ledger.ExactTargetLimit, stub.limit.Kind)
	require.True(t, stub.limit.Supply.Eq(ledger.MaxBalance))
	require.Equal(t, uint64(500), stub.limit.Target.Uint64())

	stub.quoteOK = false
	_, err = c.Execute(call(GetSwapTargetAmount, num(64), num(1000), num(2), addr(currencyA), addr(currencyB)))
	require.ErrorIs(t, err, ErrNoRoute)
}

func swapPayload(action Action, amount, limit uint64, path ...common.Address) []byte {
	words := [][]byte{addr(alice), num(128), num(amount), num(limit), num(uint64(len(path)))}
	for _, p := range path {
		words = append(words, addr(p))
	}
	return call(action, words...)
}

func TestSwapWithExactSupply(t *testing.T) {
	c, stub := newTestContract()
	stub.swapSupply, stub.swapTarget = uint256.NewInt(1000), uint256.NewInt(1950)

	ret, err := c.Execute(swapPayload(SwapWithExactSupply, 1000, 1, currencyA, currencyB))
	require.NoError(t, err)
	require.Equal(t, word(t, 1950), ret)

	require.Equal(t, ledger.DefaultAccountID(alice), stub.who)
	require.Equal(t, []ledger.CurrencyID{1, 2}, stub.path)
	require.Equal(t, ledger.ExactSupplyLimit, stub.limit.Kind)
	require.Equal(t, uint64(1000), stub.limit.Supply.Uint64())
	require.Equal(t, uint64(1), stub.limit.Target.Uint64())
}

func TestSwapWithExactTarget(t *testing.T) {
	c, stub := newTestContract()
	stub.swapSupply, stub.swapTarget = uint256.NewInt(1040), uint256.NewInt(2000)

	ret, err := c.Execute(swapPayload(SwapWithExactTarget, 2000, 1100, currencyA, currencyB))
	require.NoError(t, err)
	require.Equal(t, word(t, 1040), ret)

	require.Equal(t, ledger.ExactTargetLimit, stub.limit.Kind)
	require.Equal(t, uint64(1100), stub.limit.Supply.Uint64())
	require.Equal(t, uint64(2000), stub.limit.Target.Uint64())
}

func TestSwapManagerFailure(t *testing.T) {
	c, stub := newTestContract()
	reason := errors.New("liquidity too low")
	stub.swapErr = reason

	payload := swapPayload(SwapWithExactSupply, 1000, 1, currencyA, currencyB)
	ret, err := c.Execute(payload)
	require.Nil(t, ret)
	require.EqualError(t, err, "liquidity too low")
	require.ErrorIs(t, err, reason)

	var managerErr *ledger.ManagerError
	require.ErrorAs(t, err, &managerErr)
	require.Equal(t, SwapWithExactSupply.String(), managerErr.Op)

	ret, _, err = c.Run(&contract.Block{}, alice, ContractAddress, payload, GasSwap, false)
	require.ErrorIs(t, err, contract.ErrExecutionReverted)
	got, err := abi.UnpackRevert(ret)
	require.NoError(t, err)
	require.Equal(t, "liquidity too low", got)
}

func TestNilAmountIsEncodingDefect(t *testing.T) {
	c, stub := newTestContract()
	stub.poolA = uint256.NewInt(1)

	_, err := c.Execute(call(GetLiquidityPool, addr(currencyA), addr(currencyB)))
	require.ErrorIs(t, err, input.ErrEncodingDefect)
}

func TestLiquidity(t *testing.T) {
	c, stub := newTestContract()

	ret, err := c.Execute(call(AddLiquidity, addr(alice), addr(currencyA), addr(currencyB), num(1000), num(2000), num(5)))
	require.NoError(t, err)
	require.Empty(t, ret)
	require.Equal(t, []string{"AddLiquidity"}, stub.calls)
	require.Equal(t, [2]ledger.CurrencyID{1, 2}, stub.pair)
	require.Equal(t, uint64(1000), stub.args[0].Uint64())
	require.Equal(t, uint64(2000), stub.args[1].Uint64())
	require.Equal(t, uint64(5), stub.args[2].Uint64())
	require.False(t, stub.flag)

	stub.liquidityErr = errors.New("share too small")
	_, err = c.Execute(call(RemoveLiquidity, addr(alice), addr(currencyA), addr(currencyB), num(10), num(1), num(1)))
	require.EqualError(t, err, "share too small")
	require.False(t, stub.flag)
}

func TestMissingArgumentsNeverReachManager(t *testing.T) {
	tests := []struct {
		action Action
		words  [][]byte
	}{
		{GetLiquidityPool, [][]byte{addr(currencyA)}},
		{GetLiquidityTokenAddress, nil},
		{GetSwapTargetAmount, [][]byte{num(64), num(1)}},
		{GetSwapSupplyAmount, [][]byte{num(64), num(1), num(2), addr(currencyA)}},
		{SwapWithExactSupply, [][]byte{addr(alice), num(128), num(1000)}},
		{SwapWithExactTarget, [][]byte{addr(alice), num(128), num(1000), num(1), num(2), addr(currencyA)}},
		{AddLiquidity, [][]byte{addr(alice), addr(currencyA), addr(currencyB), num(1), num(2)}},
		{RemoveLiquidity, [][]byte{addr(alice)}},
	}
	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			c, stub := newTestContract()
			_, err := c.Execute(call(tt.action, tt.words...))
			require.ErrorIs(t, err, input.ErrOutOfBounds)
			require.Empty(t, stub.calls)
		})
	}
}

func TestInvalidArgumentsNeverReachManager(t *testing.T) {
	over128 := new(big.Int).Lsh(big.NewInt(1), 128).Bytes()
	unmapped := addr(ledger.CurrencyAddress(99))

	tests := []struct {
		name    string
		payload []byte
		wantErr error
	}{
		{
			name:    "unmapped currency",
			payload: call(GetLiquidityPool, addr(currencyA), unmapped),
			wantErr: input.ErrUnmappedIdentifier,
		},
		{
			name:    "amount over 128 bits",
			payload: call(AddLiquidity, addr(alice), addr(currencyA), addr(currencyB), over128, num(1), num(1)),
			wantErr: input.ErrInvalidEncoding,
		},
		{
			name:    "path over the cap",
			payload: swapPayload(SwapWithExactSupply, 1000, 1, currencyA, currencyB, currencyC, currencyA, currencyB),
			wantErr: input.ErrArrayTooLong,
		},
		{
			name:    "path of one",
			payload: swapPayload(SwapWithExactSupply, 1000, 1, currencyA),
			wantErr: input.ErrInvalidPath,
		},
		{
			name:    "empty path",
			payload: swapPayload(SwapWithExactTarget, 1000, 1),
			wantErr: input.ErrInvalidPath,
		},
		{
			name:    "unknown selector",
			payload: []byte{0xde, 0xad, 0xbe, 0xef},
			wantErr: input.ErrUnknownSelector,
		},
		{
			name:    "short payload",
			payload: []byte{0xde, 0xad},
			wantErr: input.ErrOutOfBounds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, stub := newTestContract()
			_, err := c.Execute(tt.payload)
			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, stub.calls)
		})
	}
}

func TestAccountMustNotBeCurrency(t *testing.T) {
	c, stub := newTestContract()
	payload := call(AddLiquidity, addr(currencyA), addr(currencyA), addr(currencyB), num(1), num(1), num(1))
	_, err := c.Execute(payload)
	require.ErrorIs(t, err, input.ErrUnmappedIdentifier)
	require.Empty(t, stub.calls)
}

func TestPathLengthCap(t *testing.T) {
	c, stub := newTestContract(WithMaxPathLength(2))
	stub.swapSupply, stub.swapTarget = uint256.NewInt(1), uint256.NewInt(1)

	_, err := c.Execute(swapPayload(SwapWithExactSupply, 1, 1, currencyA, currencyC, currencyB))
	require.ErrorIs(t, err, input.ErrArrayTooLong)
	require.Empty(t, stub.calls)

	c.SetMaxPathLength(3)
	_, err = c.Execute(swapPayload(SwapWithExactSupply, 1, 1, currencyA, currencyC, currencyB))
	require.NoError(t, err)
	require.Equal(t, []ledger.CurrencyID{1, 3, 2}, stub.path)
}

func TestRun(t *testing.T) {
	c, stub := newTestContract()
	stub.poolA, stub.poolB = uint256.NewInt(100), uint256.NewInt(200)
	stub.swapSupply, stub.swapTarget = uint256.NewInt(1000), uint256.NewInt(1950)
	block := &contract.Block{Height: 1, Time: 1}

	t.Run("query", func(t *testing.T) {
		ret, gas, err := c.Run(block, alice, ContractAddress, call(GetLiquidityPool, addr(currencyA), addr(currencyB)), GasPoolLookup+10, true)
		require.NoError(t, err)
		require.Equal(t, uint64(10), gas)
		require.Len(t, ret, 64)
	})

	t.Run("out of gas", func(t *testing.T) {
		ret, gas, err := c.Run(block, alice, ContractAddress, swapPayload(SwapWithExactSupply, 1000, 1, currencyA, currencyB), GasSwap-1, false)
		require.ErrorIs(t, err, contract.ErrOutOfGas)
		require.Nil(t, ret)
		require.Zero(t, gas)
	})

	t.Run("static call rejects swap", func(t *testing.T) {
		before := len(stub.calls)
		_, _, err := c.Run(block, alice, ContractAddress, swapPayload(SwapWithExactSupply, 1000, 1, currencyA, currencyB), GasSwap, true)
		require.ErrorIs(t, err, contract.ErrWriteProtection)
		require.Len(t, stub.calls, before)
	})

	t.Run("swap", func(t *testing.T) {
		ret, gas, err := c.Run(block, alice, ContractAddress, swapPayload(SwapWithExactSupply, 1000, 1, currencyA, currencyB), GasSwap, false)
		require.NoError(t, err)
		require.Zero(t, gas)
		require.Equal(t, word(t, 1950), ret)
	})

	t.Run("decode failure reverts", func(t *testing.T) {
		ret, _, err := c.Run(block, alice, ContractAddress, []byte{1, 2, 3, 4}, GasPoolLookup, false)
		require.ErrorIs(t, err, contract.ErrExecutionReverted)
		reason, err := abi.UnpackRevert(ret)
		require.NoError(t, err)
		require.Equal(t, "argument 0: unknown selector", reason)
	})
}

func TestRequiredGas(t *testing.T) {
	c, _ := newTestContract()
	for _, e := range Actions.Entries() {
		require.Equal(t, e.Action.Gas(), c.RequiredGas(e.Selector.Bytes()), e.Signature)
	}
	require.Equal(t, GasPoolLookup, c.RequiredGas(nil))
}

const exchangeABI = `[
	{"type":"function","name":"getLiquidityPool","inputs":[{"name":"a","type":"address"},{"name":"b","type":"address"}],"outputs":[{"type":"uint256"},{"type":"uint256"}]},
	{"type":"function","name":"swapWithExactSupply","inputs":[{"name":"who","type":"address"},{"name":"path","type":"address[]"},{"name":"supply","type":"uint256"},{"name":"minTarget","type":"uint256"}],"outputs":[{"type":"uint256"}]},
	{"type":"function","name":"getSwapSupplyAmount","inputs":[{"name":"path","type":"address[]"},{"name":"target","type":"uint256"}],"outputs":[{"type":"uint256"}]}
]`

func TestABIPackedPayloads(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(exchangeABI))
	require.NoError(t, err)

	c, stub := newTestContract()
	stub.poolA, stub.poolB = uint256.NewInt(100), uint256.NewInt(200)
	stub.swapSupply, stub.swapTarget = uint256.NewInt(1000), uint256.NewInt(1950)
	stub.quoteSupply, stub.quoteOK = uint256.NewInt(42), true

	payload, err := parsed.Pack("getLiquidityPool", currencyA, currencyB)
	require.NoError(t, err)
	ret, err := c.Execute(payload)
	require.NoError(t, err)
	out, err := parsed.Unpack("getLiquidityPool", ret)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), out[0])
	require.Equal(t, big.NewInt(200), out[1])

	payload, err = parsed.Pack("swapWithExactSupply", alice, []common.Address{currencyA, currencyB}, big.NewInt(1000), big.NewInt(1))
	require.NoError(t, err)
	ret, err = c.Execute(payload)
	require.NoError(t, err)
	out, err = parsed.Unpack("swapWithExactSupply", ret)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1950), out[0])

	// With the array first, its offset word sits where the fixed layout
	// expects it and the amount follows.
	payload, err = parsed.Pack("getSwapSupplyAmount", []common.Address{currencyB, currencyA}, big.NewInt(7))
	require.NoError(t, err)
	ret, err = c.Execute(payload)
	require.NoError(t, err)
	require.Equal(t, word(t, 42), ret)
	require.Equal(t, []ledger.CurrencyID{2, 1}, stub.path)
	require.Equal(t, uint64(7), stub.limit.Target.Uint64())
}

func TestModule(t *testing.T) {
	c, _ := newTestContract()
	r := modules.NewRegistry()
	require.NoError(t, r.Register(NewModule(c)))

	mod, ok := r.ByAddress(ContractAddress)
	require.True(t, ok)
	require.Equal(t, ConfigKey, mod.ConfigKey)

	cfg, ok := mod.MakeConfig().(*Config)
	require.True(t, ok)

	activation := uint64(10)
	cfg.Upgrade = precompileconfig.Upgrade{BlockTimestamp: &activation}
	cfg.MaxPathLength = 8
	require.NoError(t, r.Configure(cfg, &contract.Block{Time: 5}))
	require.Equal(t, uint32(8), c.MaxPathLength())

	require.False(t, r.IsActive(ContractAddress, 9))
	require.True(t, r.IsActive(ContractAddress, 10))
}

func TestConfigVerify(t *testing.T) {
	tests := []struct {
		name    string
		max     uint32
		want    uint32
		wantErr error
	}{
		{name: "default", max: 0, want: DefaultMaxPathLength},
		{name: "minimum", max: 2, want: 2},
		{name: "maximum", max: 16, want: 16},
		{name: "too small", max: 1, wantErr: ErrInvalidMaxPathLength},
		{name: "too large", max: 17, wantErr: ErrInvalidMaxPathLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{MaxPathLength: tt.max}
			err := cfg.Verify()
			require.ErrorIs(t, err, tt.wantErr)
			if err == nil {
				require.Equal(t, tt.want, cfg.PathLimit())
			}
		})
	}

	require.True(t, (&Config{}).Equal(&Config{MaxPathLength: DefaultMaxPathLength}))
	require.False(t, (&Config{}).Equal(&Config{MaxPathLength: 3}))
	require.False(t, (&Config{}).Equal(nil))
}
