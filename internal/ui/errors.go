package ui

import (
	"strings"
)

// ErrorMessage represents a structured, actionable error to present to users.
type ErrorMessage struct {
	Problem string   // one-line problem statement
	Causes  []string // possible causes
	Actions []string // actionable steps to resolve
	Hints   []string // optional hints (e.g., commands to try)
}

// Format renders the error using the color theme. It does not include ANSI
// codes when colors are disabled (NO_COLOR or dumb terminal).
func (e ErrorMessage) Format(c *ColorConfig) string {
	var b strings.Builder
	b.WriteString(c.Error("✗ "))
	b.WriteString(c.Header("Error"))
	b.WriteString("\n")
	if e.Problem != "" {
		b.WriteString("  " + c.Label("Problem") + ": " + e.Problem + "\n")
	}
	list := func(title, bullet string, items []string, style func(string) string) {
		if len(items) == 0 {
			return
		}
		b.WriteString("  " + c.Label(title) + ":\n")
		for _, it := range items {
			b.WriteString("   " + bullet + " " + style(it) + "\n")
		}
	}
	plain := func(s string) string { return s }
	list("Possible causes", "•", e.Causes, plain)
	list("Try", "→", e.Actions, plain)
	list("Hints", "·", e.Hints, c.Description)
	return b.String()
}

// RetryMessage builds the message shown when a stake or redeem fails. The
// user's selection and weights are kept, so the first action is always to
// try again.
func RetryMessage(problem string, causes ...string) ErrorMessage {
	return ErrorMessage{
		Problem: problem,
		Causes:  causes,
		Actions: []string{"Try again: your validators and weights were kept"},
	}
}
