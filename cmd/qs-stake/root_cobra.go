package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quicksilver-zone/qs-stake/internal/config"
	"github.com/quicksilver-zone/qs-stake/internal/exitcodes"
	ui "github.com/quicksilver-zone/qs-stake/internal/ui"
)

// Version information - set via -ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "qs-stake",
	Short:         "Quicksilver liquid staking",
	Long:          "Liquid-stake on Quicksilver with a validator intent: pick validators, weight them, and send.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set NO_COLOR env so lipgloss and other libraries respect the flag
		if flagNoColor {
			os.Setenv("NO_COLOR", "1")
		}
	},
}

var (
	flagEnv            string
	flagHome           string
	flagKey            string
	flagKeyring        string
	flagChainsFile     string
	flagQuickRPC       string
	flagQuickLCD       string
	flagOutput         string
	flagVerbose        bool
	flagDebug          bool
	flagLogJSON        bool
	flagLogFile        string
	flagNoColor        bool
	flagNoEmoji        bool
	flagYes            bool
	flagNonInteractive bool
)

func init() {
	// Names of the config-backed flags match the keys config.Load binds.
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagEnv, "env", "", "Network environment: mainnet|testnet")
	pf.StringVar(&flagHome, "home", "", "qs-stake home directory (config.yaml lives here)")
	pf.StringVar(&flagKey, "key", "", "Keyring key used to sign")
	pf.StringVar(&flagKeyring, "keyring-backend", "", "Keyring backend: os|file|test")
	pf.StringVar(&flagChainsFile, "chains-file", "", "YAML file overlaying the built-in chain table")
	pf.StringVar(&flagQuickRPC, "quick-rpc", "", "Quicksilver RPC endpoint")
	pf.StringVar(&flagQuickLCD, "quick-lcd", "", "Quicksilver REST endpoint")
	pf.StringVarP(&flagOutput, "output", "o", "text", "Output format: json|yaml|text")
	pf.BoolVar(&flagVerbose, "verbose", false, "Verbose output")
	pf.BoolVarP(&flagDebug, "debug", "d", false, "Debug output: extra diagnostic logs")
	pf.BoolVar(&flagLogJSON, "log-json", false, "Write diagnostic logs as JSON")
	pf.StringVar(&flagLogFile, "log-file", "", "Write diagnostic logs to a file instead of stderr")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable ANSI colors")
	pf.BoolVar(&flagNoEmoji, "no-emoji", false, "Disable emoji output")
	pf.BoolVarP(&flagYes, "yes", "y", false, "Assume yes for all prompts")
	pf.BoolVar(&flagNonInteractive, "non-interactive", false, "Fail instead of prompting")

	// Replace root help to present grouped output.
	// Only apply custom help to the root command; subcommands use cobra's default help.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			fmt.Fprintln(os.Stdout, cmd.UsageString())
			return
		}
		// Help runs before PersistentPreRun, so manually configure colors
		c := ui.NewColorConfig()
		c.Enabled = c.Enabled && !flagNoColor
		c.EmojiEnabled = c.EmojiEnabled && !flagNoEmoji
		w := os.Stdout

		const cmdWidth = 34

		fmt.Fprintln(w, c.Header(" Quicksilver Stake "))
		fmt.Fprintln(w, c.Description(rootCmd.Long))
		fmt.Fprintln(w, c.Separator(50))
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.SubHeader("USAGE"))
		fmt.Fprintf(w, "  %s <command> [flags]\n", "qs-stake")
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.SubHeader("Staking"))
		fmt.Fprintln(w, c.FormatCommandAligned("stake", "Liquid-stake with a validator intent", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("redeem", "Redeem qAssets back to the host chain", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("balance [address]", "Show native and qAsset balances", cmdWidth))
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.SubHeader("Intents"))
		fmt.Fprintln(w, c.FormatCommandAligned("validators", "List a chain's validators", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("intent", "Show normalized validator weights", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("memo encode", "Build an intent memo", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("memo decode <memo>", "Parse an intent memo", cmdWidth))
		fmt.Fprintln(w)

		fmt.Fprintln(w, c.SubHeader("Utilities"))
		fmt.Fprintln(w, c.FormatCommandAligned("chains", "List supported chains", cmdWidth))
		fmt.Fprintln(w, c.FormatCommandAligned("version", "Show version", cmdWidth))
		fmt.Fprintln(w)
	})

	rootCmd.AddCommand(
		newChainsCmd(),
		newValidatorsCmd(),
		newIntentCmd(),
		newMemoCmd(),
		newStakeCmd(),
		newRedeemCmd(),
		newBalanceCmd(),
	)
}

// silentErr has already been shown to the user; Execute only sets the exit code.
type silentErr struct{ error }

func (e silentErr) Unwrap() error { return e.error }

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var se silentErr
		if !errors.As(err, &se) {
			if flagOutput == ui.FormatJSON {
				getPrinter().WithWriter(os.Stderr).JSON(map[string]any{"ok": false, "error": err.Error()})
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
		}
		stop()
		os.Exit(exitcodes.CodeForError(err))
	}
}

// loadCfg reads defaults, config file and env via config.Load, then applies
// whichever persistent flags were set.
func loadCfg() (config.Config, error) {
	cfg, err := config.Load(rootCmd.PersistentFlags())
	if err != nil {
		return cfg, exitcodes.WrapError(exitcodes.PreconditionFailed, "", err)
	}
	switch cfg.Environment {
	case config.EnvMainnet, config.EnvTestnet:
	default:
		return cfg, exitcodes.InvalidArgsErrorf("unknown --env %q (use mainnet|testnet)", cfg.Environment)
	}
	return cfg, nil
}

// getPrinter returns a UI printer bound to the current --output flag.
func getPrinter() ui.Printer {
	return ui.NewPrinter(flagOutput, ui.Options{NoColor: flagNoColor, NoEmoji: flagNoEmoji})
}
