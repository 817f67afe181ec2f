package ui

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

var initOnce sync.Once

// IsTTY reports whether both stdin and stdout are terminals.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// InitTerminal must run before the first lipgloss or bubbletea call.
// termenv queries the background color via OSC 11 and the reply leaks into
// stdout; setting COLORFGBG skips the query.
func InitTerminal() {
	initOnce.Do(func() {
		if os.Getenv("COLORFGBG") == "" {
			os.Setenv("COLORFGBG", "0;15")
		}
		if term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprint(os.Stdout, "\033[?1004l") // focus reporting off
			time.Sleep(20 * time.Millisecond)
			FlushStdinWithTimeout(150 * time.Millisecond)
		}
	})
}

// ResetTerminalAfterTUI cleans up terminal state after the wizard exits so
// late cursor-position and OSC replies do not show up in the shell.
func ResetTerminalAfterTUI() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	fmt.Fprint(os.Stdout, "\033[?1004l") // focus reporting
	fmt.Fprint(os.Stdout, "\033[?1003l") // all mouse tracking
	fmt.Fprint(os.Stdout, "\033[?1000l") // X10 mouse
	fmt.Fprint(os.Stdout, "\033[?1006l") // SGR mouse
	fmt.Fprint(os.Stdout, "\033[?25h")   // cursor on
	fmt.Fprint(os.Stdout, "\r")
	time.Sleep(30 * time.Millisecond)
	FlushStdinWithTimeout(150 * time.Millisecond)
}

// FlushStdinWithTimeout reads and discards stdin for the specified duration.
// Only flushes if stdin is a terminal; piped input is never consumed.
func FlushStdinWithTimeout(timeout time.Duration) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	if err := syscall.SetNonblock(fd, true); err != nil {
		return
	}
	defer syscall.SetNonblock(fd, false)

	buf := make([]byte, 256)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if n, _ := os.Stdin.Read(buf); n <= 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}
