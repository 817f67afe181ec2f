package intent

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// Validator caps enforced by the selection flows.
const (
	MaxValidatorsPrimary   = 8
	MaxValidatorsSecondary = 100
)

// Validator identifies a selectable validator.
type Validator struct {
	OperatorAddress string `json:"operator_address" yaml:"operator_address"`
	Name            string `json:"name" yaml:"name"`
}

// Selection is an ordered set of validators, unique by operator address.
// Insertion order is selection order. The zero value is unusable; use
// NewSelection.
type Selection struct {
	max   int
	items []Validator
}

// NewSelection returns an empty selection capped at max validators.
// A non-positive max falls back to MaxValidatorsPrimary; no cap exceeds
// MaxValidatorsSecondary.
func NewSelection(max int) *Selection {
	if max <= 0 {
		max = MaxValidatorsPrimary
	}
	if max > MaxValidatorsSecondary {
		max = MaxValidatorsSecondary
	}
	return &Selection{max: max}
}

func (s *Selection) Max() int { return s.max }
func (s *Selection) Len() int { return len(s.items) }
func (s *Selection) Full() bool { return len(s.items) >= s.max }

// Add appends v to the selection.
func (s *Selection) Add(v Validator) error {
	v.OperatorAddress = strings.TrimSpace(v.OperatorAddress)
	if v.OperatorAddress == "" {
		return errorsmod.Wrap(ErrNoValidators, "empty operator address")
	}
	if s.Contains(v.OperatorAddress) {
		return errorsmod.Wrap(ErrDuplicateValidator, v.OperatorAddress)
	}
	if s.Full() {
		return errorsmod.Wrapf(ErrTooManyValidators, "limit is %d", s.max)
	}
	s.items = append(s.items, v)
	return nil
}

// Remove drops addr from the selection, keeping the order of the rest.
func (s *Selection) Remove(addr string) bool {
	i := s.index(addr)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// Toggle adds v when absent and removes it when present. It reports whether
// v is selected afterwards.
func (s *Selection) Toggle(v Validator) (bool, error) {
	if s.Remove(v.OperatorAddress) {
		return false, nil
	}
	if err := s.Add(v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Selection) Contains(addr string) bool { return s.index(addr) >= 0 }

// Validators returns a copy of the selected validators in selection order.
func (s *Selection) Validators() []Validator {
	out := make([]Validator, len(s.items))
	copy(out, s.items)
	return out
}

// Addresses returns the selected operator addresses in selection order.
func (s *Selection) Addresses() []string {
	out := make([]string, len(s.items))
	for i, v := range s.items {
		out[i] = v.OperatorAddress
	}
	return out
}

// Reset clears the selection. Used when the target chain changes.
func (s *Selection) Reset() { s.items = nil }

func (s *Selection) index(addr string) int {
	for i, v := range s.items {
		if v.OperatorAddress == addr {
			return i
		}
	}
	return -1
}
