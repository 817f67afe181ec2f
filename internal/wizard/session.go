// Package wizard drives the interactive staking flow. Session is the state
// machine; Model renders it with bubbletea.
package wizard

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"

	"github.com/quicksilver-zone/qs-stake/internal/config"
	"github.com/quicksilver-zone/qs-stake/internal/intent"
	"github.com/quicksilver-zone/qs-stake/internal/memo"
)

// State is a wizard step.
type State int

const (
	StateSelectValidators State = iota
	StateSetWeights
	StateConfirm
	StateResult
)

func (s State) String() string {
	switch s {
	case StateSelectValidators:
		return "select-validators"
	case StateSetWeights:
		return "set-weights"
	case StateConfirm:
		return "confirm"
	case StateResult:
		return "result"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var ErrInvalidTransition = errorsmod.Register("wizard", 2, "invalid wizard transition")

// Outcome is what a submission produced.
type Outcome struct {
	TxHash string
	Height int64
	Err    error
}

func (o Outcome) OK() bool { return o.Err == nil }

// Session holds one staking attempt. It has no UI and no I/O; every method
// either moves to a new state or returns ErrInvalidTransition and leaves the
// session untouched.
type Session struct {
	chain     config.ChainConfig
	state     State
	selection *intent.Selection
	mode      intent.Mode
	weights   intent.CustomWeights
	amount    string // major denom as typed
	receiver  string
	outcome   *Outcome
	maxVals   int
}

// NewSession starts at validator selection for chain. max caps the selection;
// zero uses the chain's limit or MaxValidatorsPrimary.
func NewSession(chain config.ChainConfig, max int) *Session {
	if max <= 0 {
		max = chain.MaxSelection(intent.MaxValidatorsPrimary)
	}
	sel := intent.NewSelection(max)
	return &Session{
		chain:     chain,
		selection: sel,
		weights:   intent.CustomWeights{},
		maxVals:   sel.Max(),
	}
}

func (s *Session) State() State                  { return s.state }
func (s *Session) Chain() config.ChainConfig     { return s.chain }
func (s *Session) Selection() *intent.Selection  { return s.selection }
func (s *Session) Mode() intent.Mode             { return s.mode }
func (s *Session) Weights() intent.CustomWeights { return s.weights }
func (s *Session) Amount() string                { return s.amount }
func (s *Session) Receiver() string              { return s.receiver }

// Outcome returns the submission result once in StateResult.
func (s *Session) Outcome() (Outcome, bool) {
	if s.outcome == nil {
		return Outcome{}, false
	}
	return *s.outcome, true
}

func (s *Session) require(states ...State) error {
	for _, st := range states {
		if s.state == st {
			return nil
		}
	}
	return errorsmod.Wrapf(ErrInvalidTransition, "not allowed in %s", s.state)
}

// Toggle adds or removes v from the selection.
func (s *Session) Toggle(v intent.Validator) (bool, error) {
	if err := s.require(StateSelectValidators); err != nil {
		return false, err
	}
	return s.selection.Toggle(v)
}

// SetMode switches between equal and custom weighting.
func (s *Session) SetMode(m intent.Mode) error {
	if err := s.require(StateSelectValidators, StateSetWeights); err != nil {
		return err
	}
	s.mode = m
	return nil
}

// SetWeight records a custom percent for addr. Invalid input is rejected
// without touching what was entered before.
func (s *Session) SetWeight(addr string, pct int) error {
	if err := s.require(StateSetWeights); err != nil {
		return err
	}
	if !s.selection.Contains(addr) {
		return errorsmod.Wrapf(ErrInvalidTransition, "%s is not selected", addr)
	}
	return s.weights.Set(addr, pct)
}

// SetAmount and SetReceiver are allowed until submission.
func (s *Session) SetAmount(amount string) error {
	if err := s.require(StateSelectValidators, StateSetWeights, StateConfirm); err != nil {
		return err
	}
	s.amount = amount
	return nil
}

func (s *Session) SetReceiver(addr string) error {
	if err := s.require(StateSelectValidators, StateSetWeights, StateConfirm); err != nil {
		return err
	}
	s.receiver = addr
	return nil
}

// needsWeights reports whether the SetWeights step applies.
func (s *Session) needsWeights() bool {
	return s.mode == intent.ModeCustom && s.selection.Len() > 1
}

// Next advances SelectValidators and SetWeights. Confirm only moves on
// through Complete.
func (s *Session) Next() error {
	switch s.state {
	case StateSelectValidators:
		n := s.selection.Len()
		if n == 0 {
			return intent.ErrNoValidators
		}
		if n > s.maxVals {
			return errorsmod.Wrapf(intent.ErrTooManyValidators, "limit is %d", s.maxVals)
		}
		if s.needsWeights() {
			s.state = StateSetWeights
		} else {
			s.state = StateConfirm
		}
		return nil
	case StateSetWeights:
		if s.mode == intent.ModeCustom {
			if err := s.weights.Validate(s.selection.Addresses()); err != nil {
				return err
			}
		}
		s.state = StateConfirm
		return nil
	}
	return errorsmod.Wrapf(ErrInvalidTransition, "next from %s", s.state)
}

// Back returns to the previous input step.
func (s *Session) Back() error {
	switch s.state {
	case StateSetWeights:
		s.state = StateSelectValidators
		return nil
	case StateConfirm:
		if s.needsWeights() {
			s.state = StateSetWeights
		} else {
			s.state = StateSelectValidators
		}
		return nil
	}
	return errorsmod.Wrapf(ErrInvalidTransition, "back from %s", s.state)
}

// Complete records the submission outcome and moves Confirm to Result.
func (s *Session) Complete(o Outcome) error {
	if err := s.require(StateConfirm); err != nil {
		return err
	}
	s.outcome = &o
	s.state = StateResult
	return nil
}

// Retry returns a failed Result to Confirm with all input kept.
func (s *Session) Retry() error {
	if err := s.require(StateResult); err != nil {
		return err
	}
	if s.outcome != nil && s.outcome.OK() {
		return errorsmod.Wrap(ErrInvalidTransition, "last submission succeeded")
	}
	s.outcome = nil
	s.state = StateConfirm
	return nil
}

// ChangeChain switches the target chain and drops the selection and weights,
// since validator addresses do not carry across chains.
func (s *Session) ChangeChain(chain config.ChainConfig) error {
	if err := s.require(StateSelectValidators, StateSetWeights, StateConfirm, StateResult); err != nil {
		return err
	}
	*s = *NewSession(chain, 0)
	return nil
}

// Intents derives the normalized weights for the current selection.
func (s *Session) Intents() ([]intent.Intent, error) {
	var w intent.CustomWeights
	if s.needsWeights() {
		w = s.weights
	}
	return intent.Normalize(s.selection.Addresses(), w)
}

// Memo encodes the current intents for the chain.
func (s *Session) Memo() (string, error) {
	intents, err := s.Intents()
	if err != nil {
		return "", err
	}
	return memo.Encode(intents, memo.Options{
		Is118:            s.chain.Is118,
		ReceivingAddress: s.receiver,
		ValoperPrefix:    s.chain.Valoper(),
	})
}
