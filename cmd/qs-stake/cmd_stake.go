package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quicksilver-zone/qs-stake/internal/config"
	"github.com/quicksilver-zone/qs-stake/internal/exitcodes"
	"github.com/quicksilver-zone/qs-stake/internal/memo"
	"github.com/quicksilver-zone/qs-stake/internal/node"
	ui "github.com/quicksilver-zone/qs-stake/internal/ui"
	"github.com/quicksilver-zone/qs-stake/internal/validator"
	"github.com/quicksilver-zone/qs-stake/internal/wizard"
)

type stakeOpts struct {
	intentFlags
	amount      string
	receiver    string
	wait        bool
	waitTimeout time.Duration
}

func newStakeCmd() *cobra.Command {
	var o stakeOpts
	cmd := &cobra.Command{
		Use:   "stake",
		Short: "Liquid-stake tokens with a validator intent",
		Long: `Send tokens to the Quicksilver deposit address of a host chain with an
intent memo naming the validators to delegate to.

Without --validators on an interactive terminal, a wizard walks through
validator selection, weights and confirmation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(ctx context.Context, d *Deps) error {
				return handleStake(ctx, d, o)
			})
		},
	}
	o.register(cmd)
	cmd.Flags().StringVar(&o.amount, "amount", "", "Amount in the major denom, e.g. 1.5")
	cmd.Flags().StringVar(&o.receiver, "receiver", "", "Quicksilver address receiving the qAsset (non-118 chains; default: --key on quicksilverd)")
	cmd.Flags().BoolVar(&o.wait, "wait", false, "Wait until the transaction is committed")
	cmd.Flags().DurationVar(&o.waitTimeout, "wait-timeout", 90*time.Second, "How long --wait waits for inclusion")
	return cmd
}

// stakeTarget is what the pre-flight queries resolve.
type stakeTarget struct {
	chain    config.ChainConfig
	sender   string
	deposit  string
	receiver string
}

// preflight resolves the sender, the deposit address and, for chains without
// coin type 118, the qAsset receiver. The lookups run concurrently.
func preflight(ctx context.Context, d *Deps, chain config.ChainConfig, receiver string) (stakeTarget, error) {
	t := stakeTarget{chain: chain, receiver: receiver}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr, err := d.Validator.KeyAddress(gctx, chain, d.Cfg.KeyName)
		if err != nil {
			return exitcodes.WrapError(exitcodes.PreconditionFailed, "", err)
		}
		t.sender = addr
		return nil
	})
	g.Go(func() error {
		addr, err := d.Validator.DepositAddress(gctx, chain)
		if err != nil {
			return classify(err)
		}
		t.deposit = addr
		return nil
	})
	if !chain.Is118 && receiver == "" {
		g.Go(func() error {
			addr, err := d.Validator.KeyAddress(gctx, quickChain(d.Cfg), d.Cfg.KeyName)
			if err != nil {
				return exitcodes.WrapError(exitcodes.PreconditionFailed, "resolve qAsset receiver (pass --receiver)", err)
			}
			t.receiver = addr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return t, err
	}
	if t.receiver != "" && !chain.Is118 {
		if _, err := memo.AddressBytes(t.receiver, d.Cfg.QuickPrefix); err != nil {
			return t, exitcodes.WrapError(exitcodes.InvalidArgs, "", err)
		}
	}
	d.Log.Info("stake preflight",
		zap.String("chain", chain.Name),
		zap.String("sender", t.sender),
		zap.String("deposit", t.deposit),
		zap.String("receiver", t.receiver),
	)
	return t, nil
}

// stakeResult is printed for --output json|yaml.
type stakeResult struct {
	OK       bool        `json:"ok" yaml:"ok"`
	Chain    string      `json:"chain" yaml:"chain"`
	TxHash   string      `json:"txhash" yaml:"txhash"`
	Height   int64       `json:"height,omitempty" yaml:"height,omitempty"`
	Amount   string      `json:"amount" yaml:"amount"`
	Denom    string      `json:"denom" yaml:"denom"`
	Sender   string      `json:"sender" yaml:"sender"`
	Deposit  string      `json:"deposit_address" yaml:"deposit_address"`
	Receiver string      `json:"receiver,omitempty" yaml:"receiver,omitempty"`
	Memo     string      `json:"memo" yaml:"memo"`
	Intents  []intentRow `json:"intents" yaml:"intents"`
}

// submitStake checks the balance, broadcasts and optionally waits.
func submitStake(ctx context.Context, d *Deps, t stakeTarget, minor, memoStr string, wait bool, waitTimeout time.Duration) (validator.TxResponse, error) {
	client := d.NodeFor(t.chain)
	bal, err := client.Balance(ctx, t.sender, t.chain.MinorDenom)
	if err != nil {
		return validator.TxResponse{}, classify(fmt.Errorf("balance: %w", err))
	}
	if err := checkBalance(bal, minor, t.chain.Exponent, t.chain.MajorDenom); err != nil {
		return validator.TxResponse{}, err
	}

	resp, err := d.Validator.Stake(ctx, validator.StakeArgs{
		Chain:          t.chain,
		Amount:         minor,
		Memo:           memoStr,
		KeyName:        d.Cfg.KeyName,
		DepositAddress: t.deposit,
	})
	if err != nil {
		d.Log.Warn("stake failed", zap.String("chain", t.chain.Name), zap.Error(err))
		return resp, classify(err)
	}
	d.Log.Info("stake broadcast", zap.String("chain", t.chain.Name), zap.String("txhash", resp.TxHash))
	if !wait {
		return resp, nil
	}
	return waitCommitted(ctx, d, client.WaitForTx, resp, waitTimeout)
}

// waitCommitted blocks until resp's tx is in a block.
func waitCommitted(ctx context.Context, d *Deps, waitFn func(context.Context, string) (node.TxResult, error), resp validator.TxResponse, timeout time.Duration) (validator.TxResponse, error) {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res, err := waitFn(wctx, resp.TxHash)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return resp, exitcodes.WrapError(exitcodes.NetworkError, fmt.Sprintf("tx %s not committed within %s", resp.TxHash, timeout), err)
		}
		return resp, classify(err)
	}
	resp.Height = res.Height
	if res.Code != 0 {
		resp.Code, resp.RawLog = res.Code, res.Log
		return resp, exitcodes.TxErr(&validator.TxError{Resp: resp})
	}
	d.Log.Info("tx committed", zap.String("txhash", resp.TxHash), zap.Int64("height", res.Height))
	return resp, nil
}

func handleStake(ctx context.Context, d *Deps, o stakeOpts) error {
	chain, err := resolveChain(d, o.chain)
	if err != nil {
		return err
	}
	if strings.TrimSpace(o.validators) == "" {
		if !d.Prompter.IsInteractive() || d.Printer.Structured() {
			return exitcodes.InvalidArgsError("--validators is required when not running interactively")
		}
		return runStakeWizard(ctx, d, chain, o)
	}

	minor, err := parseAmount(chain, o.amount)
	if err != nil {
		return err
	}
	intents, err := intentsFromFlags(chain, o.validators, o.weights, o.max)
	if err != nil {
		return err
	}
	t, err := preflight(ctx, d, chain, o.receiver)
	if err != nil {
		return err
	}
	memoStr, err := encodeMemo(chain, intents, t.receiver)
	if err != nil {
		return err
	}

	display := ui.FormatAmount(minor, chain.Exponent, chain.MajorDenom)
	if !d.Printer.Structured() {
		printIntents(d.Printer, chain, intents)
		d.Printer.KeyValueLine("Amount", display, "yellow")
		d.Printer.KeyValueLine("From", t.sender, "")
		d.Printer.KeyValueLine("Deposit", t.deposit, "")
		if t.receiver != "" && !chain.Is118 {
			d.Printer.KeyValueLine("Receiver", t.receiver, "")
		}
		d.Printer.KeyValueLine("Memo", memoStr, "dim")
		d.Printer.Textf("\n")
	}
	if err := confirm(d, fmt.Sprintf("Stake %s on %s", display, chain.Name)); err != nil {
		return err
	}

	resp, err := submitStake(ctx, d, t, minor, memoStr, o.wait, o.waitTimeout)
	if err != nil {
		if !d.Printer.Structured() {
			msg := ui.RetryMessage("stake on "+chain.Name+" failed", err.Error())
			msg.Hints = []string{"qs-stake balance --chain " + chain.Name}
			d.Printer.PrintError(msg)
			return silentErr{err}
		}
		return err
	}

	if d.Printer.Structured() {
		d.Printer.Data(stakeResult{
			OK: true, Chain: chain.Name, TxHash: resp.TxHash, Height: resp.Height,
			Amount: minor, Denom: chain.MinorDenom, Sender: t.sender, Deposit: t.deposit,
			Receiver: t.receiver, Memo: memoStr, Intents: intentRows(intents),
		})
		return nil
	}
	d.Printer.Success(fmt.Sprintf("Staked %s on %s", display, chain.Name))
	d.Printer.KeyValueLine("Tx", resp.TxHash, "blue")
	if resp.Height > 0 {
		d.Printer.KeyValueLine("Height", fmt.Sprintf("%d", resp.Height), "")
	}
	return nil
}

// runStakeWizard launches the interactive flow over the chain's active
// validators.
func runStakeWizard(ctx context.Context, d *Deps, chain config.ChainConfig, o stakeOpts) error {
	t, err := preflight(ctx, d, chain, o.receiver)
	if err != nil {
		return err
	}
	fctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	list, err := d.Fetcher.GetAllValidators(fctx, chain)
	cancel()
	if err != nil {
		return classify(fmt.Errorf("validators: %w", err))
	}
	vals := validator.Query{Sort: validator.SortPower}.Apply(list)
	if len(vals) == 0 {
		return exitcodes.PreconditionErrorf("%s has no active validators", chain.Name)
	}

	model, err := d.Wizard.Run(wizard.Options{
		Context:    ctx,
		Chain:      chain,
		Validators: vals,
		Max:        o.max,
		Amount:     o.amount,
		Receiver:   t.receiver,
		Submit: func(ctx context.Context, sub wizard.Submission) wizard.Outcome {
			resp, err := submitStake(ctx, d, t, sub.Minor, sub.Memo, o.wait, o.waitTimeout)
			if err != nil {
				return wizard.Outcome{TxHash: resp.TxHash, Err: err}
			}
			return wizard.Outcome{TxHash: resp.TxHash, Height: resp.Height}
		},
	})
	if err != nil {
		return err
	}
	if model.Cancelled() {
		return exitcodes.NewError(exitcodes.Cancelled, "stake cancelled")
	}
	out, ok := model.Session().Outcome()
	if !ok {
		return exitcodes.NewError(exitcodes.Cancelled, "stake cancelled")
	}
	if !out.OK() {
		return out.Err
	}
	intents, _ := model.Session().Intents()
	d.Printer.Success(fmt.Sprintf("Staked %s %s on %s with %d validators",
		model.Session().Amount(), strings.ToUpper(chain.MajorDenom), chain.Name, len(intents)))
	d.Printer.KeyValueLine("Tx", out.TxHash, "blue")
	return nil
}
