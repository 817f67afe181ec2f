package intent

import (
	"fmt"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// Mode selects how weights are assigned across a selection.
type Mode int

const (
	ModeEqual Mode = iota
	ModeCustom
)

func (m Mode) String() string {
	switch m {
	case ModeEqual:
		return "equal"
	case ModeCustom:
		return "custom"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// weights are carried with four decimal places
const (
	weightPrecision = 4
	weightScale     = 10000
)

// CustomWeights maps operator address to a whole percent in [0,100].
type CustomWeights map[string]int

// Set stores pct for addr.
func (w CustomWeights) Set(addr string, pct int) error {
	if pct < 0 || pct > 100 {
		return errorsmod.Wrapf(ErrPercentOutOfRange, "%s: %d", addr, pct)
	}
	w[addr] = pct
	return nil
}

// Sum adds the percentages of addresses. Missing entries count as zero.
func (w CustomWeights) Sum(addresses []string) int {
	total := 0
	for _, a := range addresses {
		total += w[a]
	}
	return total
}

// Validate reports whether the weights of addresses sum to exactly 100.
// Entries for addresses outside the list are ignored.
func (w CustomWeights) Validate(addresses []string) error {
	for _, a := range addresses {
		if p := w[a]; p < 0 || p > 100 {
			return errorsmod.Wrapf(ErrPercentOutOfRange, "%s: %d", a, p)
		}
	}
	if sum := w.Sum(addresses); sum != 100 {
		return errorsmod.Wrapf(ErrWeightsNotHundred, "got %d", sum)
	}
	return nil
}

// Intent is one validator's share of a delegation.
type Intent struct {
	Address string         `json:"address" yaml:"address"`
	Weight  math.LegacyDec `json:"weight" yaml:"weight"`
}

// Percent renders the weight as a percentage with two decimals.
func (i Intent) Percent() string {
	bp := i.Weight.MulInt64(weightScale).RoundInt64()
	return fmt.Sprintf("%d.%02d%%", bp/100, bp%100)
}

// Normalize turns the selected addresses and optional custom weights into
// intents whose weights sum to exactly one. Without custom weights each
// validator receives 1/N rounded to four places. The last entry absorbs the
// rounding remainder.
func Normalize(addresses []string, custom CustomWeights) ([]Intent, error) {
	n := len(addresses)
	if n == 0 {
		return nil, ErrNoValidators
	}
	seen := make(map[string]struct{}, n)
	for _, a := range addresses {
		if _, dup := seen[a]; dup {
			return nil, errorsmod.Wrap(ErrDuplicateValidator, a)
		}
		seen[a] = struct{}{}
	}
	if n == 1 {
		return []Intent{{Address: addresses[0], Weight: math.LegacyOneDec()}}, nil
	}

	units := make([]int64, n)
	if len(custom) == 0 {
		u := equalUnits(n)
		for i := range units {
			units[i] = u
		}
	} else {
		if err := custom.Validate(addresses); err != nil {
			return nil, err
		}
		for i, a := range addresses {
			units[i] = int64(custom[a]) * (weightScale / 100)
		}
	}

	out := make([]Intent, n)
	assigned := math.LegacyZeroDec()
	for i := 0; i < n-1; i++ {
		w := math.LegacyNewDecWithPrec(units[i], weightPrecision)
		out[i] = Intent{Address: addresses[i], Weight: w}
		assigned = assigned.Add(w)
	}
	out[n-1] = Intent{Address: addresses[n-1], Weight: math.LegacyOneDec().Sub(assigned)}
	return out, nil
}

// Equal is Normalize without custom weights.
func Equal(addresses []string) ([]Intent, error) { return Normalize(addresses, nil) }

// Custom is Normalize in custom mode: an empty weight map is not treated as
// equal weighting and fails the sum check.
func Custom(addresses []string, weights CustomWeights) ([]Intent, error) {
	if len(addresses) > 1 {
		if err := weights.Validate(addresses); err != nil {
			return nil, err
		}
	}
	return Normalize(addresses, weights)
}

// Sum adds all intent weights.
func Sum(intents []Intent) math.LegacyDec {
	total := math.LegacyZeroDec()
	for _, in := range intents {
		total = total.Add(in.Weight)
	}
	return total
}

// equalUnits is 1/n in ten-thousandths, rounded half up.
func equalUnits(n int) int64 {
	d := int64(n)
	return (2*weightScale + d) / (2 * d)
}

// ParseCustomWeights reads weights typed on the command line. Two forms are
// accepted: positional ("30,70"), matched to addresses in order, and keyed
// ("addr1=30,addr2=70"). An empty string means equal weighting.
func ParseCustomWeights(addresses []string, s string) (CustomWeights, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	keyed := strings.Contains(s, "=")
	if !keyed && len(parts) != len(addresses) {
		return nil, errorsmod.Wrapf(ErrInvalidWeights, "%d weights for %d validators", len(parts), len(addresses))
	}

	w := make(CustomWeights, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		addr := ""
		if keyed {
			k, v, ok := strings.Cut(p, "=")
			if !ok {
				return nil, errorsmod.Wrapf(ErrInvalidWeights, "mixed weight forms near %q", p)
			}
			addr, p = strings.TrimSpace(k), strings.TrimSpace(v)
			if !contains(addresses, addr) {
				return nil, errorsmod.Wrapf(ErrInvalidWeights, "%s is not selected", addr)
			}
		} else {
			addr = addresses[i]
		}
		pct, err := strconv.Atoi(strings.TrimSuffix(p, "%"))
		if err != nil {
			return nil, errorsmod.Wrapf(ErrInvalidWeights, "%q is not a whole percent", p)
		}
		if _, dup := w[addr]; dup {
			return nil, errorsmod.Wrapf(ErrInvalidWeights, "weight for %s given twice", addr)
		}
		if err := w.Set(addr, pct); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
