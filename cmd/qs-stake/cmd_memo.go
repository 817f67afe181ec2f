package main

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quicksilver-zone/qs-stake/internal/exitcodes"
	"github.com/quicksilver-zone/qs-stake/internal/memo"
	ui "github.com/quicksilver-zone/qs-stake/internal/ui"
)

func newMemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memo",
		Short: "Build or parse intent memos",
	}

	var (
		f        intentFlags
		receiver string
	)
	encode := &cobra.Command{
		Use:   "encode",
		Short: "Encode a validator intent as a transfer memo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(ctx context.Context, d *Deps) error {
				return handleMemoEncode(ctx, d, f, receiver)
			})
		},
	}
	f.register(encode)
	encode.Flags().StringVar(&receiver, "receiver", "", "Quicksilver address receiving the qAsset (non-118 chains)")

	var chain string
	decode := &cobra.Command{
		Use:   "decode <memo>",
		Short: "Decode an intent memo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(ctx context.Context, d *Deps) error {
				return handleMemoDecode(ctx, d, chain, args[0])
			})
		},
	}
	decode.Flags().StringVar(&chain, "chain", "", "Render validator addresses with this chain's prefix")

	cmd.AddCommand(encode, decode)
	return cmd
}

func handleMemoEncode(_ context.Context, d *Deps, f intentFlags, receiver string) error {
	chain, err := resolveChain(d, f.chain)
	if err != nil {
		return err
	}
	intents, err := intentsFromFlags(chain, f.validators, f.weights, f.max)
	if err != nil {
		return err
	}
	if receiver != "" && chain.Is118 {
		d.Printer.Warn(fmt.Sprintf("%s derives accounts with coin type 118; --receiver is not encoded", chain.Name))
	}
	m, err := encodeMemo(chain, intents, receiver)
	if err != nil {
		return err
	}
	raw, _ := base64.StdEncoding.DecodeString(m)

	if d.Printer.Structured() {
		d.Printer.Data(map[string]any{
			"chain":   chain.Name,
			"memo":    m,
			"hex":     hex.EncodeToString(raw),
			"bytes":   len(raw),
			"intents": intentRows(intents),
		})
		return nil
	}
	printIntents(d.Printer, chain, intents)
	d.Printer.Textf("\n")
	d.Printer.KeyValueLine("Memo", m, "green")
	d.Printer.KeyValueLine("Size", strconv.Itoa(len(raw))+" bytes", "dim")
	return nil
}

func handleMemoDecode(_ context.Context, d *Deps, chainName, s string) error {
	opts := memo.DecodeOptions{AccountPrefix: d.Cfg.QuickPrefix}
	if chainName != "" {
		chain, err := resolveChain(d, chainName)
		if err != nil {
			return err
		}
		opts.ValoperPrefix = chain.Valoper()
	}
	dec, err := memo.Decode(s, opts)
	if err != nil {
		return exitcodes.EncodingErr(err)
	}
	if d.Printer.Structured() {
		d.Printer.Data(dec)
		return nil
	}
	if len(dec.Intents) == 0 && dec.ReceivingRaw == "" {
		d.Printer.Info("Memo is empty")
		return nil
	}
	rows := make([][]string, 0, len(dec.Intents))
	for _, it := range dec.Intents {
		addr := it.Address
		if addr == "" {
			addr = it.Raw
		}
		rows = append(rows, []string{addr, it.Weight.String(), strconv.Itoa(int(it.WeightByte))})
	}
	d.Printer.Header("Decoded memo")
	d.Printer.Textf("%s", ui.Table(d.Printer.Colors, []string{"VALIDATOR", "WEIGHT", "BYTE"}, rows, nil))
	if dec.ReceivingAddress != "" {
		d.Printer.KeyValueLine("Receiver", dec.ReceivingAddress, "blue")
	} else if dec.ReceivingRaw != "" {
		d.Printer.KeyValueLine("Receiver (hex)", dec.ReceivingRaw, "blue")
	}
	return nil
}
