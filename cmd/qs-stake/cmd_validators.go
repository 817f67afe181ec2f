package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quicksilver-zone/qs-stake/internal/exitcodes"
	ui "github.com/quicksilver-zone/qs-stake/internal/ui"
	"github.com/quicksilver-zone/qs-stake/internal/validator"
)

type validatorsOpts struct {
	chain  string
	sort   string
	search string
	all    bool
	limit  int
}

func newValidatorsCmd() *cobra.Command {
	var o validatorsOpts
	cmd := &cobra.Command{
		Use:   "validators",
		Short: "List validators of a host chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(ctx context.Context, d *Deps) error {
				return handleValidators(ctx, d, o)
			})
		},
	}
	cmd.Flags().StringVar(&o.chain, "chain", "", "Host chain name or chain id")
	cmd.Flags().StringVar(&o.sort, "sort", "power", "Sort by power|name|commission")
	cmd.Flags().StringVar(&o.search, "search", "", "Filter by moniker or operator address")
	cmd.Flags().BoolVar(&o.all, "all", false, "Include inactive and jailed validators")
	cmd.Flags().IntVar(&o.limit, "limit", 0, "Show at most N validators (0 = all)")
	return cmd
}

// handleValidators prints a table (default) or the structured list.
func handleValidators(ctx context.Context, d *Deps, o validatorsOpts) error {
	chain, err := resolveChain(d, o.chain)
	if err != nil {
		return err
	}
	key, err := validator.ParseSortKey(o.sort)
	if err != nil {
		return exitcodes.WrapError(exitcodes.InvalidArgs, "", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	list, err := d.Fetcher.GetAllValidators(ctx, chain)
	if err != nil {
		d.Log.Warn("validator fetch failed", zap.String("chain", chain.Name), zap.Error(err))
		return classify(fmt.Errorf("validators: %w", err))
	}
	vals := validator.Query{Sort: key, Search: o.search, All: o.all}.Apply(list)
	if o.limit > 0 && len(vals) > o.limit {
		vals = vals[:o.limit]
	}
	d.Log.Info("validators listed", zap.String("chain", chain.Name), zap.Int("total", list.Total), zap.Int("shown", len(vals)))

	if d.Printer.Structured() {
		type row struct {
			OperatorAddress string `json:"operator_address" yaml:"operator_address"`
			Moniker         string `json:"moniker" yaml:"moniker"`
			Status          string `json:"status" yaml:"status"`
			Jailed          bool   `json:"jailed" yaml:"jailed"`
			Tokens          string `json:"tokens" yaml:"tokens"`
			Commission      string `json:"commission" yaml:"commission"`
		}
		out := make([]row, 0, len(vals))
		for _, v := range vals {
			out = append(out, row{v.OperatorAddress, v.Moniker, v.Status, v.Jailed, v.Tokens, v.Commission})
		}
		d.Printer.Data(map[string]any{"chain": chain.Name, "total": list.Total, "validators": out})
		return nil
	}

	if len(vals) == 0 {
		d.Printer.Info("No validators match")
		return nil
	}
	c := d.Printer.Colors
	rows := make([][]string, 0, len(vals))
	for i, v := range vals {
		status := v.Status
		if v.Jailed {
			status = "JAILED"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			v.Moniker,
			c.StatusIcon(status) + " " + status,
			ui.FormatNumber(v.VotingPower),
			v.Commission,
			truncateAddress(v.OperatorAddress, 30),
		})
	}
	d.Printer.Header(fmt.Sprintf("%s validators", chain.Name))
	d.Printer.Textf("%s", ui.Table(c, []string{"#", "MONIKER", "STATUS", "POWER", "COMMISSION", "ADDRESS"}, rows, nil))
	d.Printer.Textf("%s\n", c.Description(fmt.Sprintf("%d of %d validators", len(vals), list.Total)))
	return nil
}
