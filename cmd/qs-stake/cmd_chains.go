package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quicksilver-zone/qs-stake/internal/intent"
	ui "github.com/quicksilver-zone/qs-stake/internal/ui"
)

func newChainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List chains that can be liquid staked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, handleChains)
		},
	}
}

// handleChains prints the registry of the selected environment.
func handleChains(_ context.Context, d *Deps) error {
	chains := d.Registry.All()
	if d.Printer.Structured() {
		d.Printer.Data(map[string]any{"env": d.Registry.Env(), "chains": chains})
		return nil
	}
	rows := make([][]string, 0, len(chains))
	for _, c := range chains {
		coin := "118"
		if !c.Is118 {
			coin = "other"
		}
		rows = append(rows, []string{c.Name, c.ChainID, c.MajorDenom, c.QAssetDenom, coin, strconv.Itoa(c.MaxSelection(intent.MaxValidatorsPrimary))})
	}
	d.Printer.Header("Chains (" + d.Registry.Env() + ")")
	d.Printer.Textf("%s", ui.Table(d.Printer.Colors, []string{"NAME", "CHAIN ID", "DENOM", "QASSET", "COIN TYPE", "MAX VALIDATORS"}, rows, nil))
	return nil
}
