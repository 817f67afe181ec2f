package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Options holds the global output switches set from flags at startup.
type Options struct {
	NoColor bool
	NoEmoji bool
}

// Printer centralizes output formatting for commands.
// - Respects --output (text|json|yaml)
// - Uses ColorConfig for styling when printing text
// - Provides helpers for common message types
type Printer struct {
	format string
	out    io.Writer
	Colors *ColorConfig
}

func NewPrinter(format string, opts Options) Printer {
	c := NewColorConfig()
	c.Enabled = c.Enabled && !opts.NoColor
	c.EmojiEnabled = c.EmojiEnabled && !opts.NoEmoji
	return Printer{format: format, out: os.Stdout, Colors: c}
}

// WithWriter returns a copy of p writing to w.
func (p Printer) WithWriter(w io.Writer) Printer {
	p.out = w
	return p
}

func (p Printer) Writer() io.Writer {
	if p.out == nil {
		return os.Stdout
	}
	return p.out
}

func (p Printer) Format() string { return p.format }

// Structured reports whether output should be machine readable.
func (p Printer) Structured() bool { return p.format == FormatJSON || p.format == FormatYAML }

// Textf prints formatted text (always text path).
func (p Printer) Textf(format string, a ...any) { fmt.Fprintf(p.Writer(), format, a...) }

// JSON pretty-prints a JSON value.
func (p Printer) JSON(v any) {
	enc := json.NewEncoder(p.Writer())
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// YAML prints v as a yaml document.
func (p Printer) YAML(v any) {
	enc := yaml.NewEncoder(p.Writer())
	enc.SetIndent(2)
	_ = enc.Encode(v)
	_ = enc.Close()
}

// Data prints v in the structured format selected.
func (p Printer) Data(v any) {
	if p.format == FormatYAML {
		p.YAML(v)
		return
	}
	p.JSON(v)
}

func (p Printer) line(icon, plain, msg string, colorize func(string) string) {
	prefix := plain
	if p.Colors.EmojiEnabled {
		prefix = icon
	}
	space := " "
	if len(msg) > 0 && (msg[0] == ' ' || msg[0] == '\t') {
		space = ""
	}
	fmt.Fprintf(p.Writer(), "%s%s%s\n", colorize(prefix), space, msg)
}

// Success prints a success line with themed prefix.
func (p Printer) Success(msg string) { p.line("✓", "[OK]", msg, p.Colors.Success) }

// Info prints an informational line.
func (p Printer) Info(msg string) { p.line("ℹ", "[INFO]", msg, p.Colors.Info) }

// Warn prints a warning line.
func (p Printer) Warn(msg string) { p.line("!", "[WARN]", msg, p.Colors.Warning) }

// Error prints an error line.
func (p Printer) Error(msg string) { p.line("✗", "[ERR]", msg, p.Colors.Error) }

// Header prints a section header.
func (p Printer) Header(title string) {
	fmt.Fprintln(p.Writer(), p.Colors.Header(" "+title+" "))
}

// Section prints a section header with separator
func (p Printer) Section(title string) {
	w := p.Writer()
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Colors.SubHeader(title))
	fmt.Fprintln(w, p.Colors.Separator(40))
}

// KeyValueLine prints a key-value pair; colorType is one of blue, yellow,
// green, dim or empty.
func (p Printer) KeyValueLine(key, value, colorType string) {
	t := p.Colors.Theme
	var coloredValue string
	switch colorType {
	case "blue":
		coloredValue = p.Colors.Apply(t.Info, value)
	case "yellow":
		coloredValue = p.Colors.Apply(t.Warning, value)
	case "green":
		coloredValue = p.Colors.Apply(t.Success, value)
	case "dim":
		coloredValue = p.Colors.Apply(t.Description, value)
	default:
		coloredValue = p.Colors.Value(value)
	}
	fmt.Fprintf(p.Writer(), "%s %s\n", p.Colors.Label(key+":"), coloredValue)
}

// PrintError renders a structured error.
func (p Printer) PrintError(e ErrorMessage) {
	fmt.Fprintln(p.Writer(), e.Format(p.Colors))
}
