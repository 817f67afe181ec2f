package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quicksilver-zone/qs-stake/internal/exitcodes"
	ui "github.com/quicksilver-zone/qs-stake/internal/ui"
	"github.com/quicksilver-zone/qs-stake/internal/update"
)

var flagCheckUpdate bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := getPrinter()
		if !flagCheckUpdate {
			printVersion(p)
			return nil
		}
		cfg, err := loadCfg()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		return handleVersionCheck(ctx, p, update.Checker{HomeDir: cfg.HomeDir})
	},
}

func printVersion(p ui.Printer) {
	if p.Structured() {
		p.Data(map[string]string{
			"version":    Version,
			"commit":     Commit,
			"build_date": BuildDate,
		})
		return
	}
	fmt.Fprintf(p.Writer(), "qs-stake %s (%s) built %s\n", Version, Commit, BuildDate)
}

func handleVersionCheck(ctx context.Context, p ui.Printer, c update.Checker) error {
	res, err := c.Check(ctx, Version, false)
	if err != nil {
		return exitcodes.NetworkErr(fmt.Errorf("update check: %w", err))
	}
	if p.Structured() {
		p.Data(res)
		return nil
	}
	printVersion(p)
	if res.UpdateAvailable {
		p.Warn(fmt.Sprintf("qs-stake %s is available: %s", res.LatestVersion, res.URL))
		return nil
	}
	p.Success("Up to date")
	return nil
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return exitcodes.InvalidArgsErrorf("unknown shell: %s", args[0])
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}
