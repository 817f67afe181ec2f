package main

import (
	"errors"
	"fmt"
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/quicksilver-zone/qs-stake/internal/config"
	"github.com/quicksilver-zone/qs-stake/internal/exitcodes"
	"github.com/quicksilver-zone/qs-stake/internal/intent"
	"github.com/quicksilver-zone/qs-stake/internal/memo"
	"github.com/quicksilver-zone/qs-stake/internal/node"
	ui "github.com/quicksilver-zone/qs-stake/internal/ui"
	"github.com/quicksilver-zone/qs-stake/internal/validator"
)

// classify attaches an exit code to errors coming out of the domain packages.
// Errors that already carry a code are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ec *exitcodes.ErrorWithCode
	if errors.As(err, &ec) {
		return err
	}
	var (
		txErr  *validator.TxError
		status *node.StatusError
		reg    *errorsmod.Error
	)
	switch {
	case errors.As(err, &txErr):
		return exitcodes.TxErr(err)
	case errors.As(err, &status):
		return exitcodes.NetworkErr(err)
	case errors.As(err, &reg):
		switch reg.Codespace() {
		case "memo":
			return exitcodes.EncodingErr(err)
		case "intent", "wizard":
			return exitcodes.ValidationErr(err)
		}
	}
	return err
}

// resolveChain looks up --chain in the registry.
func resolveChain(d *Deps, name string) (config.ChainConfig, error) {
	if strings.TrimSpace(name) == "" {
		return config.ChainConfig{}, exitcodes.InvalidArgsErrorf("--chain is required (one of: %s)", strings.Join(d.Registry.Names(), ", "))
	}
	c, err := d.Registry.Lookup(name)
	if err != nil {
		return config.ChainConfig{}, exitcodes.WrapError(exitcodes.InvalidArgs, "", err)
	}
	return c, nil
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// selectionFromFlag builds a selection from --validators. Every address must
// be a valid operator address of chain; max caps the selection.
func selectionFromFlag(chain config.ChainConfig, csv string, max int) (*intent.Selection, error) {
	addrs := splitList(csv)
	if len(addrs) == 0 {
		return nil, exitcodes.ValidationErr(intent.ErrNoValidators)
	}
	if max > intent.MaxValidatorsSecondary {
		return nil, exitcodes.InvalidArgsErrorf("--max-validators cannot exceed %d", intent.MaxValidatorsSecondary)
	}
	if max <= 0 {
		max = chain.MaxSelection(intent.MaxValidatorsPrimary)
	}
	sel := intent.NewSelection(max)
	for _, a := range addrs {
		if _, err := memo.AddressBytes(a, chain.Valoper()); err != nil {
			return nil, exitcodes.WrapError(exitcodes.InvalidArgs, "", err)
		}
		if err := sel.Add(intent.Validator{OperatorAddress: a}); err != nil {
			return nil, classify(err)
		}
	}
	return sel, nil
}

// intentsFromFlags normalizes --validators and --weights into intents.
func intentsFromFlags(chain config.ChainConfig, validatorsCSV, weights string, max int) ([]intent.Intent, error) {
	sel, err := selectionFromFlag(chain, validatorsCSV, max)
	if err != nil {
		return nil, err
	}
	addrs := sel.Addresses()
	custom, err := intent.ParseCustomWeights(addrs, weights)
	if err != nil {
		return nil, exitcodes.WrapError(exitcodes.InvalidArgs, "", err)
	}
	intents, err := intent.Normalize(addrs, custom)
	return intents, classify(err)
}

// encodeMemo builds the memo for intents on chain. The receiving address is
// only carried for chains without coin type 118.
func encodeMemo(chain config.ChainConfig, intents []intent.Intent, receiver string) (string, error) {
	m, err := memo.Encode(intents, memo.Options{
		Is118:            chain.Is118,
		ReceivingAddress: receiver,
		ValoperPrefix:    chain.Valoper(),
	})
	return m, classify(err)
}

// parseAmount converts a major-denom amount flag into the minor denom.
func parseAmount(chain config.ChainConfig, amount string) (string, error) {
	if strings.TrimSpace(amount) == "" {
		return "", exitcodes.InvalidArgsError("--amount is required")
	}
	minor, err := chain.ToMinor(amount)
	if err != nil {
		return "", exitcodes.WrapError(exitcodes.InvalidArgs, "", err)
	}
	return minor, nil
}

// confirm asks a yes/no question unless --yes was given. Without a terminal
// the caller must pass --yes.
func confirm(d *Deps, question string) error {
	if flagYes {
		return nil
	}
	if d.Prompter == nil || !d.Prompter.IsInteractive() {
		return exitcodes.PreconditionErrorf("%s: confirmation required, pass --yes", question)
	}
	ans, err := d.Prompter.ReadLine(fmt.Sprintf("%s [y/N]: ", question))
	if err != nil {
		return exitcodes.WrapError(exitcodes.Cancelled, "prompt aborted", err)
	}
	switch strings.ToLower(strings.TrimSpace(ans)) {
	case "y", "yes":
		return nil
	}
	return exitcodes.NewError(exitcodes.Cancelled, "cancelled")
}

// truncateAddress keeps the prefix and tail of long bech32 addresses.
func truncateAddress(addr string, maxWidth int) string {
	if len(addr) <= maxWidth || maxWidth < 12 {
		return addr
	}
	i := strings.LastIndexByte(addr, '1')
	if i < 0 || i+5 > len(addr) {
		return addr
	}
	head := addr[:i+5]
	tail := maxWidth - len(head) - 3
	if tail < 4 {
		return addr
	}
	return head + "..." + addr[len(addr)-tail:]
}

// quickChain describes Quicksilver itself, for key lookups and redemptions.
func quickChain(cfg config.Config) config.ChainConfig {
	return config.ChainConfig{
		Name:         "quicksilver",
		ChainID:      cfg.QuickChainID,
		Bech32Prefix: cfg.QuickPrefix,
		Binary:       cfg.QuickBinary,
		RPC:          cfg.QuickRPC,
		LCD:          cfg.QuickLCD,
	}
}

// checkBalance fails with PreconditionFailed when have < need. Both are in
// minor units; the message shows major units.
func checkBalance(have node.Coin, need string, exponent int, major string) error {
	h, ok := sdkmath.NewIntFromString(valueOrZero(have.Amount))
	if !ok {
		return fmt.Errorf("unparseable balance %q", have.Amount)
	}
	n, ok := sdkmath.NewIntFromString(need)
	if !ok {
		return fmt.Errorf("unparseable amount %q", need)
	}
	if h.LT(n) {
		return exitcodes.PreconditionErrorf("insufficient balance: have %s, need %s",
			ui.FormatAmount(h.String(), exponent, major), ui.FormatAmount(need, exponent, major))
	}
	return nil
}

func valueOrZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
