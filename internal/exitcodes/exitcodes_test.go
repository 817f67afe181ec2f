package exitcodes

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
)

// TestExitCodeConstants verifies all exit code constants have expected values
func TestExitCodeConstants(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"Success", Success, 0},
		{"GeneralError", GeneralError, 1},
		{"InvalidArgs", InvalidArgs, 2},
		{"PreconditionFailed", PreconditionFailed, 3},
		{"NetworkError", NetworkError, 4},
		{"TxFailed", TxFailed, 5},
		{"ValidationError", ValidationError, 6},
		{"EncodingError", EncodingError, 7},
		{"Cancelled", Cancelled, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}

func TestErrorWithCode_Error(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  *ErrorWithCode
		want string
	}{
		{"message only", NewError(InvalidArgs, "bad flag"), "bad flag"},
		{"formatted", NewErrorf(InvalidArgs, "bad %s", "flag"), "bad flag"},
		{"message and cause", WrapError(NetworkError, "lcd", cause), "lcd: boom"},
		{"cause only", WrapError(NetworkError, "", cause), "boom"},
		{"nil cause", WrapError(ValidationError, "weights", nil), "weights"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		name string
		err  *ErrorWithCode
		want int
	}{
		{"InvalidArgsError", InvalidArgsError("x"), InvalidArgs},
		{"InvalidArgsErrorf", InvalidArgsErrorf("x %d", 1), InvalidArgs},
		{"PreconditionErrorf", PreconditionErrorf("x %d", 1), PreconditionFailed},
		{"NetworkErr", NetworkErr(cause), NetworkError},
		{"ValidationErr", ValidationErr(cause), ValidationError},
		{"EncodingErr", EncodingErr(cause), EncodingError},
		{"TxErr", TxErr(cause), TxFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.want {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.want)
			}
		})
	}
	if !errors.Is(EncodingErr(cause), cause) {
		t.Error("EncodingErr should unwrap to its cause")
	}
}

func TestCodeForError(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "lcd.invalid", IsNotFound: true}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"plain", errors.New("x"), GeneralError},
		{"explicit", ValidationErr(errors.New("x")), ValidationError},
		{"wrapped explicit", fmt.Errorf("stake: %w", EncodingErr(errors.New("x"))), EncodingError},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), NetworkError},
		{"net error", fmt.Errorf("get: %w", dnsErr), NetworkError},
		{"cancelled", context.Canceled, Cancelled},
		{"explicit beats deadline", TxErr(context.DeadlineExceeded), TxFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeForError(tt.err); got != tt.want {
				t.Errorf("CodeForError() = %d, want %d", got, tt.want)
			}
		})
	}
}
