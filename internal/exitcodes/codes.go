package exitcodes

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
)

// Exit codes returned by qs-stake
const (
	Success = 0

	// GeneralError indicates a general/unknown error
	GeneralError = 1

	// InvalidArgs indicates invalid command-line arguments or flags
	InvalidArgs = 2

	// PreconditionFailed indicates a precondition was not met
	// (e.g., chain binary missing, key not in keyring, no deposit address)
	PreconditionFailed = 3

	// NetworkError indicates LCD/RPC failure or timeout
	NetworkError = 4

	// TxFailed indicates a transaction the chain rejected
	TxFailed = 5

	// ValidationError indicates invalid weights or selection
	ValidationError = 6

	// EncodingError indicates a memo could not be built or parsed
	EncodingError = 7

	// Cancelled indicates the user aborted an interactive flow
	Cancelled = 130
)

// Exit terminates the program with the given code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError prints error message to stderr and exits with the given code
func ExitWithError(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}

// CodeForError returns the exit code carried anywhere in err's chain.
// Timeouts and dial failures without an explicit code map to NetworkError.
func CodeForError(err error) int {
	if err == nil {
		return Success
	}

	var ec *ErrorWithCode
	if errors.As(err, &ec) {
		return ec.Code
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NetworkError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return NetworkError
	}
	if errors.Is(err, context.Canceled) {
		return Cancelled
	}

	return GeneralError
}
