package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/btcsuite/btcutil/bech32"

	"github.com/quicksilver-zone/qs-stake/internal/config"
	"github.com/quicksilver-zone/qs-stake/internal/logging"
	"github.com/quicksilver-zone/qs-stake/internal/node"
	ui "github.com/quicksilver-zone/qs-stake/internal/ui"
	"github.com/quicksilver-zone/qs-stake/internal/validator"
	"github.com/quicksilver-zone/qs-stake/internal/wizard"
)

// errMock is a generic error for test assertions.
var errMock = errors.New("mock error")

// addr builds a valid bech32 address of 20 repeated fill bytes.
func addr(t *testing.T, prefix string, fill byte) string {
	t.Helper()
	conv, err := bech32.ConvertBits(bytes.Repeat([]byte{fill}, 20), 8, 5, true)
	if err != nil {
		t.Fatal(err)
	}
	s, err := bech32.Encode(prefix, conv)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// mockValidator implements validator.Service for testing.
type mockValidator struct {
	keyAddrs   map[string]string // binary -> address
	keyErr     error
	deposit    string
	depositErr error
	stakeResp  validator.TxResponse
	stakeErr   error
	redeemResp validator.TxResponse
	redeemErr  error

	staked   []validator.StakeArgs
	redeemed []validator.RedeemArgs
}

func (m *mockValidator) KeyAddress(ctx context.Context, chain config.ChainConfig, keyName string) (string, error) {
	if m.keyErr != nil {
		return "", m.keyErr
	}
	a, ok := m.keyAddrs[chain.Binary]
	if !ok {
		return "", fmt.Errorf("mock: no key for %s", chain.Binary)
	}
	return a, nil
}

func (m *mockValidator) DepositAddress(ctx context.Context, chain config.ChainConfig) (string, error) {
	return m.deposit, m.depositErr
}

func (m *mockValidator) Stake(ctx context.Context, args validator.StakeArgs) (validator.TxResponse, error) {
	m.staked = append(m.staked, args)
	return m.stakeResp, m.stakeErr
}

func (m *mockValidator) Redeem(ctx context.Context, args validator.RedeemArgs) (validator.TxResponse, error) {
	m.redeemed = append(m.redeemed, args)
	return m.redeemResp, m.redeemErr
}

// mockNode implements node.Client for testing.
type mockNode struct {
	balances map[string]string // "addr/denom" -> amount
	balErr   error
	tx       node.TxResult
	txErr    error
	vals     []node.Validator
}

func (m *mockNode) Validators(ctx context.Context) ([]node.Validator, error) { return m.vals, nil }
func (m *mockNode) Zones(ctx context.Context) ([]node.Zone, error)          { return nil, nil }

func (m *mockNode) Balance(ctx context.Context, addr, denom string) (node.Coin, error) {
	if m.balErr != nil {
		return node.Coin{}, m.balErr
	}
	return node.Coin{Denom: denom, Amount: m.balances[addr+"/"+denom]}, nil
}

func (m *mockNode) WaitForTx(ctx context.Context, hash string) (node.TxResult, error) {
	if m.txErr != nil {
		return node.TxResult{}, m.txErr
	}
	r := m.tx
	r.Hash = hash
	return r, nil
}

// mockFetcher implements ValidatorFetcher for testing.
type mockFetcher struct {
	list validator.ValidatorList
	err  error
}

func (m *mockFetcher) GetAllValidators(ctx context.Context, chain config.ChainConfig) (validator.ValidatorList, error) {
	return m.list, m.err
}

// mockPrompter returns responses in order.
type mockPrompter struct {
	responses   []string
	interactive bool
	callIndex   int
}

func (p *mockPrompter) ReadLine(prompt string) (string, error) {
	if p.callIndex >= len(p.responses) {
		return "", fmt.Errorf("no more responses configured")
	}
	resp := p.responses[p.callIndex]
	p.callIndex++
	return resp, nil
}

func (p *mockPrompter) IsInteractive() bool { return p.interactive }

// mockWizard records the options and lets the test drive the session.
type mockWizard struct {
	opts  wizard.Options
	drive func(m *wizard.Model)
	err   error
}

func (w *mockWizard) Run(opts wizard.Options) (*wizard.Model, error) {
	w.opts = opts
	m := wizard.NewModel(opts)
	if w.drive != nil {
		w.drive(m)
	}
	return m, w.err
}

type testEnv struct {
	d      *Deps
	out    *bytes.Buffer
	val    *mockValidator
	host   *mockNode
	quick  *mockNode
	prompt *mockPrompter
}

// newTestEnv wires Deps over mocks and the built-in mainnet registry.
func newTestEnv(t *testing.T, format string) *testEnv {
	t.Helper()
	reg, err := config.LoadRegistry(config.EnvMainnet, "")
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	host, quick := &mockNode{balances: map[string]string{}}, &mockNode{balances: map[string]string{}}
	val := &mockValidator{keyAddrs: map[string]string{}}
	prompt := &mockPrompter{}
	cfg := config.Defaults()
	cfg.KeyName = "me"
	return &testEnv{
		d: &Deps{
			Cfg:       cfg,
			Registry:  reg,
			Validator: val,
			Fetcher:   &mockFetcher{},
			NodeFor:   func(config.ChainConfig) node.Client { return host },
			Quick:     quick,
			Printer:   ui.NewPrinter(format, ui.Options{NoColor: true, NoEmoji: true}).WithWriter(&out),
			Prompter:  prompt,
			Wizard:    &mockWizard{},
			Log:       logging.Nop(),
		},
		out: &out, val: val, host: host, quick: quick, prompt: prompt,
	}
}

// withYes sets --yes for the duration of the test.
func withYes(t *testing.T) {
	t.Helper()
	orig := flagYes
	flagYes = true
	t.Cleanup(func() { flagYes = orig })
}

func mustContain(t *testing.T, s string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(s, w) {
			t.Errorf("output missing %q:\n%s", w, s)
		}
	}
}

func mustChain(t *testing.T, e *testEnv, name string) config.ChainConfig {
	t.Helper()
	c, err := e.d.Registry.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return c
}
