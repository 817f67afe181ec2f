package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quicksilver-zone/qs-stake/internal/config"
	"github.com/quicksilver-zone/qs-stake/internal/intent"
	"github.com/quicksilver-zone/qs-stake/internal/memo"
	ui "github.com/quicksilver-zone/qs-stake/internal/ui"
)

// intentFlags are shared by intent, memo encode and stake.
type intentFlags struct {
	chain      string
	validators string
	weights    string
	max        int
}

func (f *intentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.chain, "chain", "", "Host chain name or chain id")
	cmd.Flags().StringVar(&f.validators, "validators", "", "Comma separated operator addresses, in priority order")
	cmd.Flags().StringVar(&f.weights, "weights", "", `Custom percents: "30,70" or "addr1=30,addr2=70" (default equal)`)
	cmd.Flags().IntVar(&f.max, "max-validators", 0, "Selection cap (default: chain limit)")
}

func newIntentCmd() *cobra.Command {
	var f intentFlags
	cmd := &cobra.Command{
		Use:   "intent",
		Short: "Show the normalized weights for a validator selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(ctx context.Context, d *Deps) error {
				return handleIntent(ctx, d, f)
			})
		},
	}
	f.register(cmd)
	return cmd
}

type intentRow struct {
	Address    string `json:"address" yaml:"address"`
	Weight     string `json:"weight" yaml:"weight"`
	Percent    string `json:"percent" yaml:"percent"`
	WeightByte byte   `json:"weight_byte" yaml:"weight_byte"`
}

func intentRows(intents []intent.Intent) []intentRow {
	out := make([]intentRow, 0, len(intents))
	for _, it := range intents {
		out = append(out, intentRow{
			Address:    it.Address,
			Weight:     it.Weight.String(),
			Percent:    it.Percent(),
			WeightByte: memo.WeightByte(it.Weight),
		})
	}
	return out
}

func handleIntent(_ context.Context, d *Deps, f intentFlags) error {
	chain, err := resolveChain(d, f.chain)
	if err != nil {
		return err
	}
	intents, err := intentsFromFlags(chain, f.validators, f.weights, f.max)
	if err != nil {
		return err
	}
	if d.Printer.Structured() {
		d.Printer.Data(map[string]any{"chain": chain.Name, "intents": intentRows(intents)})
		return nil
	}
	printIntents(d.Printer, chain, intents)
	return nil
}

// printIntents renders intents as a table with weight bars.
func printIntents(p ui.Printer, chain config.ChainConfig, intents []intent.Intent) {
	rows := make([][]string, 0, len(intents))
	for _, it := range intents {
		w, _ := it.Weight.Float64()
		rows = append(rows, []string{
			truncateAddress(it.Address, 30),
			it.Percent(),
			p.Colors.WeightBar(w*100, 20),
			strconv.Itoa(int(memo.WeightByte(it.Weight))),
		})
	}
	p.Header(fmt.Sprintf("Intent on %s", chain.Name))
	p.Textf("%s", ui.Table(p.Colors, []string{"VALIDATOR", "WEIGHT", "", "BYTE"}, rows, nil))
}
