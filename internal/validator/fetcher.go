package validator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cosmossdk.io/math"

	"github.com/quicksilver-zone/qs-stake/internal/config"
	"github.com/quicksilver-zone/qs-stake/internal/node"
)

// Lister is the part of node.Client the fetcher needs.
type Lister interface {
	Validators(ctx context.Context) ([]node.Validator, error)
}

// ClientFactory returns a lister for a chain's LCD.
type ClientFactory func(chain config.ChainConfig) Lister

type cacheEntry struct {
	list      ValidatorList
	fetchedAt time.Time
}

// Fetcher handles validator data fetching with caching
type Fetcher struct {
	mu        sync.Mutex
	cache     map[string]cacheEntry // keyed by chain id
	cacheTTL  time.Duration
	newClient ClientFactory
	now       func() time.Time
}

// NewFetcher creates a new validator fetcher with 30s cache
func NewFetcher(newClient ClientFactory) *Fetcher {
	if newClient == nil {
		newClient = func(c config.ChainConfig) Lister { return node.New(c.LCD, c.RPC) }
	}
	return &Fetcher{
		cache:     make(map[string]cacheEntry),
		cacheTTL:  30 * time.Second,
		newClient: newClient,
		now:       time.Now,
	}
}

// GetAllValidators fetches all validators of chain with 30s caching
func (f *Fetcher) GetAllValidators(ctx context.Context, chain config.ChainConfig) (ValidatorList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cached, ok := f.cache[chain.ChainID]
	if ok && f.now().Sub(cached.fetchedAt) < f.cacheTTL && cached.list.Total > 0 {
		return cached.list, nil
	}

	list, err := f.fetchAllValidators(ctx, chain)
	if err != nil {
		// Return stale cache if available
		if cached.list.Total > 0 {
			return cached.list, nil
		}
		return ValidatorList{}, err
	}

	f.cache[chain.ChainID] = cacheEntry{list: list, fetchedAt: f.now()}
	return list, nil
}

func (f *Fetcher) fetchAllValidators(ctx context.Context, chain config.ChainConfig) (ValidatorList, error) {
	raw, err := f.newClient(chain).Validators(ctx)
	if err != nil {
		return ValidatorList{}, fmt.Errorf("query validators on %s: %w", chain.ChainID, err)
	}

	scale := math.NewIntWithDecimal(1, chain.Exponent)
	validators := make([]ValidatorInfo, 0, len(raw))
	for _, v := range raw {
		moniker := strings.TrimSpace(v.Moniker)
		if moniker == "" {
			moniker = "unknown"
		}

		var votingPower int64
		if tokens, ok := math.NewIntFromString(v.Tokens); ok {
			if p := tokens.Quo(scale); p.IsInt64() {
				votingPower = p.Int64()
			}
		}

		rate := math.LegacyZeroDec()
		commission := "0%"
		if d, err := math.LegacyNewDecFromStr(v.Commission); err == nil {
			rate = d
			commission = formatPercent(d)
		}

		validators = append(validators, ValidatorInfo{
			OperatorAddress: v.OperatorAddress,
			Moniker:         moniker,
			Status:          parseStatus(v.Status),
			Tokens:          v.Tokens,
			VotingPower:     votingPower,
			Commission:      commission,
			CommissionRate:  rate,
			Jailed:          v.Jailed,
		})
	}
	SortValidators(validators, SortPower)

	return ValidatorList{
		Validators: validators,
		Total:      len(validators),
	}, nil
}

func formatPercent(rate math.LegacyDec) string {
	pct := rate.MulInt64(100)
	if pct.IsInteger() {
		return pct.TruncateInt().String() + "%"
	}
	s := strings.TrimRight(pct.String(), "0")
	if i := strings.Index(s, "."); i >= 0 && len(s)-i > 3 {
		s = s[:i+3]
	}
	return s + "%"
}

func parseStatus(status string) string {
	switch status {
	case "BOND_STATUS_BONDED":
		return "BONDED"
	case "BOND_STATUS_UNBONDING":
		return "UNBONDING"
	case "BOND_STATUS_UNBONDED":
		return "UNBONDED"
	default:
		return status
	}
}

// SortKey selects the validator list ordering.
type SortKey string

const (
	SortPower      SortKey = "power"
	SortName       SortKey = "name"
	SortCommission SortKey = "commission"
)

// ParseSortKey accepts power, name or commission.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "", SortPower:
		return SortPower, nil
	case SortName, SortCommission:
		return k, nil
	}
	return "", fmt.Errorf("invalid sort %q (use power, name or commission)", s)
}

// SortValidators orders vals in place: power descending, name ascending
// (case-insensitive) or commission ascending. Ties fall back to operator
// address so the order is stable across refreshes.
func SortValidators(vals []ValidatorInfo, by SortKey) {
	sort.SliceStable(vals, func(i, j int) bool {
		a, b := vals[i], vals[j]
		switch by {
		case SortName:
			an, bn := strings.ToLower(a.Moniker), strings.ToLower(b.Moniker)
			if an != bn {
				return an < bn
			}
		case SortCommission:
			ar, br := rateOf(a), rateOf(b)
			if !ar.Equal(br) {
				return ar.LT(br)
			}
			if a.VotingPower != b.VotingPower {
				return a.VotingPower > b.VotingPower
			}
		default:
			if a.VotingPower != b.VotingPower {
				return a.VotingPower > b.VotingPower
			}
		}
		return a.OperatorAddress < b.OperatorAddress
	})
}

func rateOf(v ValidatorInfo) math.LegacyDec {
	if v.CommissionRate.IsNil() {
		return math.LegacyZeroDec()
	}
	return v.CommissionRate
}

// Search returns the validators whose moniker or operator address contains q,
// case-insensitively. An empty query matches everything.
func Search(vals []ValidatorInfo, q string) []ValidatorInfo {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]ValidatorInfo, 0, len(vals))
	for _, v := range vals {
		if q == "" ||
			strings.Contains(strings.ToLower(v.Moniker), q) ||
			strings.Contains(strings.ToLower(v.OperatorAddress), q) {
			out = append(out, v)
		}
	}
	return out
}

// ActiveOnly drops unbonded and jailed validators.
func ActiveOnly(vals []ValidatorInfo) []ValidatorInfo {
	out := make([]ValidatorInfo, 0, len(vals))
	for _, v := range vals {
		if v.Active() {
			out = append(out, v)
		}
	}
	return out
}

// Query combines the list filters used by the CLI and the wizard.
type Query struct {
	Sort   SortKey
	Search string
	All    bool // include inactive validators
}

// Apply filters and sorts a copy of list.
func (q Query) Apply(list ValidatorList) []ValidatorInfo {
	vals := list.Validators
	if !q.All {
		vals = ActiveOnly(vals)
	}
	vals = Search(vals, q.Search)
	SortValidators(vals, q.Sort)
	return vals
}
