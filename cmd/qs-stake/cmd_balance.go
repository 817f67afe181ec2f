package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/quicksilver-zone/qs-stake/internal/exitcodes"
	"github.com/quicksilver-zone/qs-stake/internal/memo"
	"github.com/quicksilver-zone/qs-stake/internal/node"
	ui "github.com/quicksilver-zone/qs-stake/internal/ui"
)

func newBalanceCmd() *cobra.Command {
	var chain, quickAddr string
	cmd := &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the native balance and the qAsset balance",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(ctx context.Context, d *Deps) error {
				return handleBalance(ctx, d, chain, quickAddr, args)
			})
		},
	}
	cmd.Flags().StringVar(&chain, "chain", "", "Host chain name or chain id")
	cmd.Flags().StringVar(&quickAddr, "quick-address", "", "Quicksilver address holding the qAsset")
	return cmd
}

// handleBalance resolves the address from the argument or --key, then
// queries the host chain and Quicksilver in parallel.
func handleBalance(ctx context.Context, d *Deps, chainName, quickAddr string, args []string) error {
	chain, err := resolveChain(d, chainName)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var addr string
	if len(args) > 0 {
		addr = args[0]
		if _, err := memo.AddressBytes(addr, chain.Bech32Prefix); err != nil {
			return exitcodes.WrapError(exitcodes.InvalidArgs, "", err)
		}
	} else {
		if addr, err = d.Validator.KeyAddress(ctx, chain, d.Cfg.KeyName); err != nil {
			return exitcodes.WrapError(exitcodes.PreconditionFailed, "resolve address (pass one as an argument)", err)
		}
	}
	if quickAddr == "" && chain.Is118 {
		// same key bytes on both chains
		if bz, err := memo.AddressBytes(addr, ""); err == nil {
			quickAddr, _ = memo.AddressFromBytes(d.Cfg.QuickPrefix, bz)
		}
	}

	var native, qasset node.Coin
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := d.NodeFor(chain).Balance(gctx, addr, chain.MinorDenom)
		native = c
		return err
	})
	if quickAddr != "" && chain.QAssetDenom != "" {
		g.Go(func() error {
			c, err := d.Quick.Balance(gctx, quickAddr, chain.QAssetDenom)
			qasset = c
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return classify(fmt.Errorf("balance: %w", err))
	}

	if d.Printer.Structured() {
		out := map[string]any{
			"ok":      true,
			"chain":   chain.Name,
			"address": addr,
			"balance": native.Amount,
			"denom":   chain.MinorDenom,
		}
		if qasset.Denom != "" {
			out["quick_address"] = quickAddr
			out["qasset_balance"] = qasset.Amount
			out["qasset_denom"] = qasset.Denom
		}
		d.Printer.Data(out)
		return nil
	}
	d.Printer.KeyValueLine(addr, ui.FormatAmount(valueOrZero(native.Amount), chain.Exponent, chain.MajorDenom), "green")
	if qasset.Denom != "" {
		d.Printer.KeyValueLine(quickAddr, ui.FormatAmount(valueOrZero(qasset.Amount), chain.Exponent, "q"+chain.MajorDenom), "blue")
	}
	return nil
}
