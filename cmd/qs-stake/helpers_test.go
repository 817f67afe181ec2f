package main

import (
	"errors"
	"fmt"
	"testing"

	errorsmod "cosmossdk.io/errors"

	"github.com/quicksilver-zone/qs-stake/internal/exitcodes"
	"github.com/quicksilver-zone/qs-stake/internal/intent"
	"github.com/quicksilver-zone/qs-stake/internal/memo"
	"github.com/quicksilver-zone/qs-stake/internal/node"
	"github.com/quicksilver-zone/qs-stake/internal/validator"
	"github.com/quicksilver-zone/qs-stake/internal/wizard"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"intent", errorsmod.Wrap(intent.ErrWeightsNotHundred, "90"), exitcodes.ValidationError},
		{"wizard", wizard.ErrInvalidTransition, exitcodes.ValidationError},
		{"memo", memo.ErrMemoTooLarge, exitcodes.EncodingError},
		{"tx", fmt.Errorf("broadcast: %w", &validator.TxError{}), exitcodes.TxFailed},
		{"http", &node.StatusError{Code: 500}, exitcodes.NetworkError},
		{"coded", exitcodes.InvalidArgsError("x"), exitcodes.InvalidArgs},
		{"plain", errors.New("boom"), exitcodes.GeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := exitcodes.CodeForError(classify(tt.err)); code != tt.code {
				t.Errorf("code = %d, want %d", code, tt.code)
			}
		})
	}
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}

func TestConfirm(t *testing.T) {
	e := newTestEnv(t, "text")

	if code := exitcodes.CodeForError(confirm(e.d, "Go")); code != exitcodes.PreconditionFailed {
		t.Errorf("non-interactive: code = %d", code)
	}

	e.prompt.interactive = true
	e.prompt.responses = []string{" Y ", "", "no"}
	if err := confirm(e.d, "Go"); err != nil {
		t.Errorf("Y: %v", err)
	}
	for _, want := range []string{"empty", "no"} {
		if code := exitcodes.CodeForError(confirm(e.d, "Go")); code != exitcodes.Cancelled {
			t.Errorf("%s: code = %d", want, code)
		}
	}
	if code := exitcodes.CodeForError(confirm(e.d, "Go")); code != exitcodes.Cancelled {
		t.Errorf("prompt error: code = %d", code)
	}

	withYes(t)
	e.prompt.interactive = false
	if err := confirm(e.d, "Go"); err != nil {
		t.Errorf("--yes: %v", err)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b,,c ")
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}

func TestTruncateAddress(t *testing.T) {
	a := addr(t, "cosmosvaloper", 7)
	got := truncateAddress(a, 30)
	if len(got) != 30 {
		t.Errorf("len = %d (%s)", len(got), got)
	}
	if got[:len("cosmosvaloper1")] != "cosmosvaloper1" || got[len(got)-4:] != a[len(a)-4:] {
		t.Errorf("truncated form %q does not keep head and tail of %q", got, a)
	}
	if truncateAddress("short", 30) != "short" {
		t.Error("short addresses are unchanged")
	}
}

func TestCheckBalance(t *testing.T) {
	if err := checkBalance(node.Coin{Amount: "100"}, "100", 6, "atom"); err != nil {
		t.Errorf("equal balance: %v", err)
	}
	if err := checkBalance(node.Coin{}, "1", 6, "atom"); exitcodes.CodeForError(err) != exitcodes.PreconditionFailed {
		t.Errorf("empty balance: %v", err)
	}
	if err := checkBalance(node.Coin{Amount: "x"}, "1", 6, "atom"); err == nil {
		t.Error("unparseable balance should fail")
	}
}

func TestQuickChain(t *testing.T) {
	e := newTestEnv(t, "text")
	qc := quickChain(e.d.Cfg)
	if qc.Bech32Prefix != "quick" || qc.Binary != "quicksilverd" || qc.Name != "quicksilver" {
		t.Errorf("unexpected chain: %+v", qc)
	}
}
