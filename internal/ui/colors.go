package ui

import (
	"fmt"
	"os"
	"strings"
)

// Color codes for terminal output
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Cyan    = "\033[36m"
	Magenta = "\033[35m"

	BrightBlack   = "\033[90m"
	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
)

// Theme defines the color scheme for different UI elements
type Theme struct {
	Success string
	Warning string
	Error   string
	Info    string

	Header      string
	SubHeader   string
	Label       string
	Value       string
	Command     string
	Description string
	Separator   string

	Weight  string // weight bars and percentages
	Pending string
}

// DefaultTheme returns the default color theme
func DefaultTheme() *Theme {
	return &Theme{
		Success: BrightGreen,
		Warning: BrightYellow,
		Error:   BrightRed,
		Info:    BrightCyan,

		Header:      Bold + BrightMagenta,
		SubHeader:   Bold + Magenta,
		Label:       Bold, // terminal default color for visibility on all backgrounds
		Value:       "",
		Command:     BrightGreen,
		Description: BrightBlack,
		Separator:   BrightBlack,

		Weight:  BrightCyan,
		Pending: BrightBlack,
	}
}

// ColorConfig manages color output settings
type ColorConfig struct {
	Enabled      bool
	EmojiEnabled bool
	Theme        *Theme
}

// NewColorConfig creates a color configuration from the environment.
// Colors are off when NO_COLOR is set or TERM is empty or dumb.
func NewColorConfig() *ColorConfig {
	noColor := os.Getenv("NO_COLOR") != ""
	term := os.Getenv("TERM")

	return &ColorConfig{
		Enabled:      !noColor && term != "dumb" && term != "",
		EmojiEnabled: true,
		Theme:        DefaultTheme(),
	}
}

// Apply applies a color to text if colors are enabled
func (c *ColorConfig) Apply(color, text string) string {
	if !c.Enabled || color == "" {
		return text
	}
	return color + text + Reset
}

func (c *ColorConfig) Success(text string) string     { return c.Apply(c.Theme.Success, text) }
func (c *ColorConfig) Warning(text string) string     { return c.Apply(c.Theme.Warning, text) }
func (c *ColorConfig) Error(text string) string       { return c.Apply(c.Theme.Error, text) }
func (c *ColorConfig) Info(text string) string        { return c.Apply(c.Theme.Info, text) }
func (c *ColorConfig) Header(text string) string      { return c.Apply(c.Theme.Header, text) }
func (c *ColorConfig) SubHeader(text string) string   { return c.Apply(c.Theme.SubHeader, text) }
func (c *ColorConfig) Label(text string) string       { return c.Apply(c.Theme.Label, text) }
func (c *ColorConfig) Value(text string) string       { return c.Apply(c.Theme.Value, text) }
func (c *ColorConfig) Command(text string) string     { return c.Apply(c.Theme.Command, text) }
func (c *ColorConfig) Description(text string) string { return c.Apply(c.Theme.Description, text) }

// FormatKeyValue formats a key-value pair with proper colors
func (c *ColorConfig) FormatKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s", c.Label(key), c.Value(value))
}

// Separator returns a colored separator line
func (c *ColorConfig) Separator(width int) string {
	return c.Apply(c.Theme.Separator, strings.Repeat("─", width))
}

// StatusIcon returns a colored icon for a validator status (respects emoji settings)
func (c *ColorConfig) StatusIcon(status string) string {
	type icon struct{ emoji, plain, color string }
	var ic icon
	switch strings.ToLower(status) {
	case "bonded", "active", "success":
		ic = icon{"✓", "[OK]", c.Theme.Success}
	case "unbonding", "pending":
		ic = icon{"⚠", "[WARN]", c.Theme.Warning}
	case "jailed", "failed", "error":
		ic = icon{"✗", "[ERR]", c.Theme.Error}
	default:
		ic = icon{"○", "[ ]", c.Theme.Pending}
	}
	if c.EmojiEnabled {
		return c.Apply(ic.color, ic.emoji)
	}
	return c.Apply(ic.color, ic.plain)
}

// WeightBar renders percent (0..100) as a bar of width cells.
func (c *ColorConfig) WeightBar(percent float64, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(float64(width)*percent/100 + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return c.Apply(c.Theme.Weight, strings.Repeat("█", filled)) +
		c.Apply(c.Theme.Pending, strings.Repeat("░", width-filled))
}

// FormatCommandAligned renders a help line with the command padded to width.
func (c *ColorConfig) FormatCommandAligned(cmd, desc string, width int) string {
	pad := width - len([]rune(cmd))
	if pad < 1 {
		pad = 1
	}
	return "  " + c.Command(cmd) + strings.Repeat(" ", pad) + c.Description(desc)
}
