package validator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/quicksilver-zone/qs-stake/internal/config"
	"github.com/quicksilver-zone/qs-stake/internal/node"
)

// QuickChain is the Quicksilver side of a redemption.
type QuickChain struct {
	ChainID   string
	RPC       string
	Binary    string
	GasPrices string
}

type Options struct {
	Keyring       string
	KeyringDir    string // optional --keyring-dir passed to every binary
	GasAdjustment string
	Timeout       time.Duration
	Quick         QuickChain
	// Zones lists Quicksilver zones; used when a chain has no configured
	// deposit address.
	Zones func(ctx context.Context) ([]node.Zone, error)
}

func NewWith(opts Options) Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.GasAdjustment == "" {
		opts.GasAdjustment = "1.4"
	}
	if opts.Quick.Binary == "" {
		opts.Quick.Binary = "quicksilverd"
	}
	return &svc{opts: opts}
}

type svc struct{ opts Options }

// commandContext resolves name on PATH so a missing binary fails with a
// clear message before the context is consumed.
func commandContext(ctx context.Context, name string, args ...string) (*exec.Cmd, error) {
	if name == "" {
		return nil, errors.New("chain binary not configured")
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", name, err)
	}
	return exec.CommandContext(ctx, bin, args...), nil
}

func (s *svc) keyringArgs() []string {
	args := []string{"--keyring-backend", s.opts.Keyring}
	if s.opts.KeyringDir != "" {
		args = append(args, "--keyring-dir", s.opts.KeyringDir)
	}
	return args
}

func (s *svc) KeyAddress(ctx context.Context, chain config.ChainConfig, keyName string) (string, error) {
	if keyName == "" {
		return "", errors.New("key name required")
	}
	args := append([]string{"keys", "show", keyName, "-a"}, s.keyringArgs()...)
	cmd, err := commandContext(ctx, chain.Binary, args...)
	if err != nil {
		return "", err
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := extractErrorLine(string(out))
		if msg == "" {
			msg = strings.TrimSpace(string(out))
		}
		return "", fmt.Errorf("keys show %s: %s", keyName, valueOr(msg, err.Error()))
	}
	addr := lastLine(string(out))
	if !strings.HasPrefix(addr, chain.Bech32Prefix+"1") {
		return "", fmt.Errorf("key %s resolved to %q, expected a %s address", keyName, addr, chain.Bech32Prefix)
	}
	return addr, nil
}

func (s *svc) DepositAddress(ctx context.Context, chain config.ChainConfig) (string, error) {
	if chain.DepositAddress != "" {
		return chain.DepositAddress, nil
	}
	if s.opts.Zones == nil {
		return "", fmt.Errorf("no deposit address configured for %s", chain.Name)
	}
	zones, err := s.opts.Zones(ctx)
	if err != nil {
		return "", fmt.Errorf("query zones: %w", err)
	}
	for _, z := range zones {
		if z.ChainID == chain.ChainID {
			if z.DepositAddress == "" {
				return "", fmt.Errorf("zone %s has no deposit address yet", chain.ChainID)
			}
			return z.DepositAddress, nil
		}
	}
	return "", fmt.Errorf("%s is not a registered Quicksilver zone", chain.ChainID)
}

// Stake sends Amount of the chain's minor denom to the zone deposit address
// with the intent memo attached.
func (s *svc) Stake(ctx context.Context, args StakeArgs) (TxResponse, error) {
	if args.Amount == "" {
		return TxResponse{}, errors.New("amount required")
	}
	if args.KeyName == "" {
		return TxResponse{}, errors.New("key name required")
	}
	deposit := args.DepositAddress
	if deposit == "" {
		var err error
		if deposit, err = s.DepositAddress(ctx, args.Chain); err != nil {
			return TxResponse{}, err
		}
	}

	txArgs := []string{"tx", "bank", "send", args.KeyName, deposit,
		args.Amount + args.Chain.MinorDenom,
		"--chain-id", args.Chain.ChainID,
		"--node", args.Chain.RPC,
	}
	if args.Memo != "" {
		txArgs = append(txArgs, "--note", args.Memo)
	}
	txArgs = append(txArgs, s.feeArgs(args.Chain.GasPrices)...)
	return s.broadcast(ctx, args.Chain.Binary, txArgs)
}

// Redeem burns qAssets on Quicksilver for the native asset at Destination.
func (s *svc) Redeem(ctx context.Context, args RedeemArgs) (TxResponse, error) {
	if args.Amount == "" || args.Denom == "" {
		return TxResponse{}, errors.New("amount and denom required")
	}
	if args.Destination == "" {
		return TxResponse{}, errors.New("destination address required")
	}
	if args.KeyName == "" {
		return TxResponse{}, errors.New("key name required")
	}
	q := s.opts.Quick
	txArgs := []string{"tx", "interchainstaking", "redeem",
		args.Amount + args.Denom, args.Destination,
		"--from", args.KeyName,
		"--chain-id", q.ChainID,
		"--node", q.RPC,
	}
	txArgs = append(txArgs, s.feeArgs(q.GasPrices)...)
	return s.broadcast(ctx, q.Binary, txArgs)
}

func (s *svc) feeArgs(gasPrices string) []string {
	args := []string{"--gas=auto", "--gas-adjustment=" + s.opts.GasAdjustment}
	if gasPrices != "" {
		args = append(args, "--gas-prices="+gasPrices)
	}
	args = append(args, s.keyringArgs()...)
	return append(args, "--yes", "-o", "json")
}

func (s *svc) broadcast(ctx context.Context, bin string, args []string) (TxResponse, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	cmd, err := commandContext(ctxTimeout, bin, args...)
	if err != nil {
		return TxResponse{}, err
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := extractErrorLine(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return TxResponse{}, errors.New(msg)
	}
	return parseTxResponse(out)
}

// TxError is a broadcast that reached the chain and was rejected.
type TxError struct {
	Resp TxResponse
}

func (e *TxError) Error() string {
	return fmt.Sprintf("tx %s failed with code %d: %s", e.Resp.TxHash, e.Resp.Code, e.Resp.RawLog)
}

// parseTxResponse reads the json broadcast result, falling back to the
// "txhash:" text form some binaries print before the json.
func parseTxResponse(out []byte) (TxResponse, error) {
	for _, ln := range strings.Split(string(out), "\n") {
		ln = strings.TrimSpace(ln)
		if !strings.HasPrefix(ln, "{") {
			continue
		}
		var raw struct {
			TxHash string          `json:"txhash"`
			Code   uint32          `json:"code"`
			RawLog string          `json:"raw_log"`
			Height json.RawMessage `json:"height"`
		}
		if json.Unmarshal([]byte(ln), &raw) != nil || raw.TxHash == "" {
			continue
		}
		resp := TxResponse{TxHash: raw.TxHash, Code: raw.Code, RawLog: raw.RawLog}
		// height is a quoted number in sdk output
		var h json.Number
		if json.Unmarshal(raw.Height, &h) == nil {
			resp.Height, _ = h.Int64()
		}
		if resp.Code != 0 {
			return resp, &TxError{Resp: resp}
		}
		return resp, nil
	}
	for _, ln := range strings.Split(string(out), "\n") {
		if strings.Contains(ln, "txhash:") {
			parts := strings.SplitN(ln, "txhash:", 2)
			if h := strings.TrimSpace(parts[1]); h != "" {
				return TxResponse{TxHash: h}, nil
			}
		}
	}
	return TxResponse{}, errors.New("transaction submitted; txhash not found in output")
}

func extractErrorLine(s string) string {
	for _, l := range strings.Split(s, "\n") {
		if strings.Contains(l, "rpc error:") ||
			strings.Contains(l, "failed to execute message") ||
			strings.Contains(l, "insufficient") ||
			strings.Contains(l, "unauthorized") ||
			strings.Contains(l, "key not found") ||
			strings.Contains(l, "is not a valid name or address") ||
			strings.Contains(l, "account sequence mismatch") {
			return strings.TrimSpace(l)
		}
	}
	return ""
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func valueOr(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}
