package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/quicksilver-zone/qs-stake/internal/config"
	"github.com/quicksilver-zone/qs-stake/internal/exitcodes"
	"github.com/quicksilver-zone/qs-stake/internal/logging"
	"github.com/quicksilver-zone/qs-stake/internal/node"
	ui "github.com/quicksilver-zone/qs-stake/internal/ui"
	"github.com/quicksilver-zone/qs-stake/internal/validator"
	"github.com/quicksilver-zone/qs-stake/internal/wizard"
)

// Prompter abstracts interactive terminal I/O for testability.
type Prompter interface {
	// ReadLine displays the prompt and reads a line of input.
	ReadLine(prompt string) (string, error)
	// IsInteractive returns whether the terminal supports interactive input.
	IsInteractive() bool
}

// ValidatorFetcher abstracts the cached validator query for testability.
type ValidatorFetcher interface {
	GetAllValidators(ctx context.Context, chain config.ChainConfig) (validator.ValidatorList, error)
}

// WizardRunner runs the interactive staking flow and returns the final model.
type WizardRunner interface {
	Run(opts wizard.Options) (*wizard.Model, error)
}

// Deps holds all injectable dependencies for command handlers.
type Deps struct {
	Cfg       config.Config
	Registry  config.Registry
	Validator validator.Service
	Fetcher   ValidatorFetcher
	// NodeFor returns the LCD client of a host chain.
	NodeFor  func(chain config.ChainConfig) node.Client
	Quick    node.Client // Quicksilver LCD, for zones and qAsset balances
	Printer  ui.Printer
	Prompter Prompter
	Wizard   WizardRunner
	Log      logging.Logger
}

// Close releases the log file, if any.
func (d *Deps) Close() error { return d.Log.Close() }

// ttyPrompter is the production implementation of Prompter.
// It uses /dev/tty when stdin is not a terminal (e.g., piped input).
type ttyPrompter struct{}

func (p *ttyPrompter) ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)

	var reader *bufio.Reader
	if term.IsTerminal(int(os.Stdin.Fd())) {
		reader = bufio.NewReader(os.Stdin)
	} else {
		tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			return "", fmt.Errorf("no interactive terminal available: %w", err)
		}
		defer tty.Close()
		reader = bufio.NewReader(tty)
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *ttyPrompter) IsInteractive() bool {
	if flagNonInteractive {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// teaWizard is the production WizardRunner.
type teaWizard struct{}

func (teaWizard) Run(opts wizard.Options) (*wizard.Model, error) {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	m := wizard.NewModel(opts)
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithInput(os.Stdin),
		tea.WithOutput(os.Stdout),
		tea.WithContext(opts.Context),
	)
	_, err := p.Run()
	ui.ResetTerminalAfterTUI()
	// Flush stale terminal responses that arrive after the alternate screen closes
	ui.FlushStdinWithTimeout(50 * time.Millisecond)
	if err != nil {
		return m, fmt.Errorf("wizard: %w", err)
	}
	return m, nil
}

// newDeps creates production dependencies from the current flags and config.
func newDeps() (*Deps, error) {
	cfg, err := loadCfg()
	if err != nil {
		return nil, err
	}
	switch flagOutput {
	case ui.FormatText, ui.FormatJSON, ui.FormatYAML:
	default:
		return nil, exitcodes.InvalidArgsErrorf("invalid --output: %s (use json|yaml|text)", flagOutput)
	}
	reg, err := config.LoadRegistry(cfg.Environment, cfg.ChainsFile)
	if err != nil {
		return nil, exitcodes.WrapError(exitcodes.PreconditionFailed, "", err)
	}
	log, err := logging.New(logging.Options{
		Debug:   flagDebug,
		Verbose: flagVerbose || flagDebug,
		JSON:    flagLogJSON,
		File:    flagLogFile,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("config loaded",
		zap.String("env", cfg.Environment),
		zap.String("home", cfg.HomeDir),
		zap.String("quick_lcd", cfg.QuickLCD),
		zap.Int("chains", len(reg.Names())),
	)

	quick := node.New(cfg.QuickLCD, cfg.QuickRPC)
	return &Deps{
		Cfg:      cfg,
		Registry: reg,
		Validator: validator.NewWith(serviceOptions(cfg, quick)),
		Fetcher:  validator.NewFetcher(nil),
		NodeFor:  func(c config.ChainConfig) node.Client { return node.New(c.LCD, c.RPC) },
		Quick:    quick,
		Printer:  getPrinter(),
		Prompter: &ttyPrompter{},
		Wizard:   teaWizard{},
		Log:      log,
	}, nil
}

// serviceOptions configures the signing service; quick answers zone queries.
func serviceOptions(cfg config.Config, quick node.Client) validator.Options {
	return validator.Options{
		Keyring:       cfg.KeyringBackend,
		GasAdjustment: cfg.GasAdjustment,
		Timeout:       cfg.TxTimeout,
		Quick: validator.QuickChain{
			ChainID:   cfg.QuickChainID,
			RPC:       cfg.QuickRPC,
			Binary:    cfg.QuickBinary,
			GasPrices: cfg.QuickGasPrices,
		},
		Zones: quick.Zones,
	}
}

// withDeps adapts a handler to cobra, owning the Deps lifetime.
func withDeps(cmd *cobra.Command, run func(ctx context.Context, d *Deps) error) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.Close()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return run(ctx, d)
}
