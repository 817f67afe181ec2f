package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"cosmossdk.io/math"
	"gopkg.in/yaml.v3"
)

//go:embed chains.yaml
var defaultChains []byte

// ChainConfig describes a host chain that can be liquid staked.
type ChainConfig struct {
	Name           string `yaml:"name" json:"name"`
	ChainID        string `yaml:"chain_id" json:"chain_id"`
	Bech32Prefix   string `yaml:"bech32_prefix" json:"bech32_prefix"`
	ValoperPrefix  string `yaml:"valoper_prefix,omitempty" json:"valoper_prefix,omitempty"`
	Is118          bool   `yaml:"is_118" json:"is_118"`
	MajorDenom     string `yaml:"major_denom" json:"major_denom"`
	MinorDenom     string `yaml:"minor_denom" json:"minor_denom"`
	Exponent       int    `yaml:"exponent" json:"exponent"`
	QAssetDenom    string `yaml:"qasset_denom" json:"qasset_denom"`
	Binary         string `yaml:"binary" json:"binary"`
	RPC            string `yaml:"rpc" json:"rpc"`
	LCD            string `yaml:"lcd" json:"lcd"`
	GasPrices      string `yaml:"gas_prices,omitempty" json:"gas_prices,omitempty"`
	DepositAddress string `yaml:"deposit_address,omitempty" json:"deposit_address,omitempty"`
	MaxValidators  int    `yaml:"max_validators,omitempty" json:"max_validators,omitempty"`
}

// Valoper returns the validator operator prefix, derived from the account
// prefix when not configured.
func (c ChainConfig) Valoper() string {
	if c.ValoperPrefix != "" {
		return c.ValoperPrefix
	}
	return c.Bech32Prefix + "valoper"
}

// Validate checks the fields required to build and submit a stake.
func (c ChainConfig) Validate() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("chain: name required")
	case c.ChainID == "":
		return fmt.Errorf("chain %s: chain_id required", c.Name)
	case c.Bech32Prefix == "":
		return fmt.Errorf("chain %s: bech32_prefix required", c.Name)
	case c.MinorDenom == "":
		return fmt.Errorf("chain %s: minor_denom required", c.Name)
	case c.Exponent < 0 || c.Exponent > 18:
		return fmt.Errorf("chain %s: exponent %d out of range", c.Name, c.Exponent)
	case c.LCD == "":
		return fmt.Errorf("chain %s: lcd required", c.Name)
	}
	return nil
}

// ToMinor converts an amount in the major denom ("1.5") into an integer
// amount of the minor denom ("1500000").
func (c ChainConfig) ToMinor(amount string) (string, error) {
	d, err := math.LegacyNewDecFromStr(strings.TrimSpace(amount))
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !d.IsPositive() {
		return "", fmt.Errorf("amount must be positive, got %s", amount)
	}
	d = d.Mul(math.LegacyNewDec(10).Power(uint64(c.Exponent)))
	if !d.IsInteger() {
		return "", fmt.Errorf("amount %s has more than %d decimals", amount, c.Exponent)
	}
	return d.TruncateInt().String(), nil
}

// MaxSelection is the validator cap for this chain.
func (c ChainConfig) MaxSelection(fallback int) int {
	if c.MaxValidators > 0 {
		return c.MaxValidators
	}
	return fallback
}

type registryFile struct {
	Environments map[string][]ChainConfig `yaml:"environments"`
}

// Registry is the read-only chain table of one environment. It is built
// once and handed to callers; lookups return copies.
type Registry struct {
	env    string
	order  []string
	chains map[string]ChainConfig
}

// LoadRegistry builds the registry for env from the built-in table,
// overlaid by the file at overlayPath when non-empty. Overlay entries replace
// built-in chains of the same name.
func LoadRegistry(env, overlayPath string) (Registry, error) {
	docs := [][]byte{defaultChains}
	if overlayPath != "" {
		b, err := os.ReadFile(overlayPath)
		if err != nil {
			return Registry{}, fmt.Errorf("read chains file: %w", err)
		}
		docs = append(docs, b)
	}
	return ParseRegistry(env, docs...)
}

// ParseRegistry builds a registry for env from yaml documents, later
// documents overriding earlier ones.
func ParseRegistry(env string, docs ...[]byte) (Registry, error) {
	r := Registry{env: env, chains: map[string]ChainConfig{}}
	for _, doc := range docs {
		var f registryFile
		if err := yaml.Unmarshal(doc, &f); err != nil {
			return Registry{}, fmt.Errorf("parse chains: %w", err)
		}
		for _, c := range f.Environments[env] {
			if err := c.Validate(); err != nil {
				return Registry{}, err
			}
			key := strings.ToLower(c.Name)
			if _, ok := r.chains[key]; !ok {
				r.order = append(r.order, key)
			}
			r.chains[key] = c
		}
	}
	if len(r.chains) == 0 {
		return Registry{}, fmt.Errorf("no chains configured for environment %q", env)
	}
	return r, nil
}

func (r Registry) Env() string { return r.env }

// Lookup finds a chain by name or chain id, case-insensitively.
func (r Registry) Lookup(name string) (ChainConfig, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := r.chains[key]; ok {
		return c, nil
	}
	for _, c := range r.chains {
		if strings.EqualFold(c.ChainID, key) {
			return c, nil
		}
	}
	return ChainConfig{}, fmt.Errorf("unknown chain %q in %s (have: %s)", name, r.env, strings.Join(r.Names(), ", "))
}

// Names returns chain names in file order.
func (r Registry) Names() []string {
	out := make([]string, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.chains[k].Name)
	}
	return out
}

// All returns every chain sorted by name.
func (r Registry) All() []ChainConfig {
	out := make([]ChainConfig, 0, len(r.chains))
	for _, c := range r.chains {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
