package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quicksilver-zone/qs-stake/internal/exitcodes"
	"github.com/quicksilver-zone/qs-stake/internal/memo"
	ui "github.com/quicksilver-zone/qs-stake/internal/ui"
	"github.com/quicksilver-zone/qs-stake/internal/validator"
)

type redeemOpts struct {
	chain       string
	amount      string
	destination string
	wait        bool
	waitTimeout time.Duration
}

func newRedeemCmd() *cobra.Command {
	var o redeemOpts
	cmd := &cobra.Command{
		Use:   "redeem",
		Short: "Redeem qAssets for the native token on the host chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(ctx context.Context, d *Deps) error {
				return handleRedeem(ctx, d, o)
			})
		},
	}
	cmd.Flags().StringVar(&o.chain, "chain", "", "Host chain name or chain id")
	cmd.Flags().StringVar(&o.amount, "amount", "", "qAsset amount in the major denom")
	cmd.Flags().StringVar(&o.destination, "destination", "", "Host chain address receiving the unbonded tokens (default: --key on the host chain)")
	cmd.Flags().BoolVar(&o.wait, "wait", false, "Wait until the transaction is committed")
	cmd.Flags().DurationVar(&o.waitTimeout, "wait-timeout", 90*time.Second, "How long --wait waits for inclusion")
	return cmd
}

func handleRedeem(ctx context.Context, d *Deps, o redeemOpts) error {
	chain, err := resolveChain(d, o.chain)
	if err != nil {
		return err
	}
	if chain.QAssetDenom == "" {
		return exitcodes.PreconditionErrorf("%s has no qAsset configured", chain.Name)
	}
	minor, err := parseAmount(chain, o.amount)
	if err != nil {
		return err
	}

	dest := strings.TrimSpace(o.destination)
	if dest == "" {
		if dest, err = d.Validator.KeyAddress(ctx, chain, d.Cfg.KeyName); err != nil {
			return exitcodes.WrapError(exitcodes.PreconditionFailed, "resolve destination (pass --destination)", err)
		}
	}
	if _, err := memo.AddressBytes(dest, chain.Bech32Prefix); err != nil {
		return exitcodes.WrapError(exitcodes.InvalidArgs, "", err)
	}

	qc := quickChain(d.Cfg)
	sender, err := d.Validator.KeyAddress(ctx, qc, d.Cfg.KeyName)
	if err != nil {
		return exitcodes.WrapError(exitcodes.PreconditionFailed, "", err)
	}
	bal, err := d.Quick.Balance(ctx, sender, chain.QAssetDenom)
	if err != nil {
		return classify(fmt.Errorf("balance: %w", err))
	}
	qDenom := "q" + chain.MajorDenom
	if err := checkBalance(bal, minor, chain.Exponent, qDenom); err != nil {
		return err
	}

	display := ui.FormatAmount(minor, chain.Exponent, qDenom)
	if !d.Printer.Structured() {
		d.Printer.KeyValueLine("Redeem", display, "yellow")
		d.Printer.KeyValueLine("From", sender, "")
		d.Printer.KeyValueLine("To", dest, "")
		d.Printer.Textf("\n")
	}
	if err := confirm(d, fmt.Sprintf("Redeem %s to %s", display, chain.Name)); err != nil {
		return err
	}

	resp, err := d.Validator.Redeem(ctx, validator.RedeemArgs{
		Amount:      minor,
		Denom:       chain.QAssetDenom,
		Destination: dest,
		KeyName:     d.Cfg.KeyName,
	})
	if err != nil {
		d.Log.Warn("redeem failed", zap.String("chain", chain.Name), zap.Error(err))
		if !d.Printer.Structured() {
			d.Printer.PrintError(ui.RetryMessage("redeem of "+display+" failed", err.Error()))
			return silentErr{classify(err)}
		}
		return classify(err)
	}
	if o.wait {
		if resp, err = waitCommitted(ctx, d, d.Quick.WaitForTx, resp, o.waitTimeout); err != nil {
			return err
		}
	}

	if d.Printer.Structured() {
		d.Printer.Data(map[string]any{
			"ok":          true,
			"txhash":      resp.TxHash,
			"height":      resp.Height,
			"amount":      minor,
			"denom":       chain.QAssetDenom,
			"destination": dest,
		})
		return nil
	}
	d.Printer.Success("Redemption submitted; tokens arrive after the host chain unbonding period")
	d.Printer.KeyValueLine("Tx", resp.TxHash, "blue")
	return nil
}
