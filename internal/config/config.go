package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Environments with a built-in chain table.
const (
	EnvMainnet = "mainnet"
	EnvTestnet = "testnet"
)

const envPrefix = "QS_STAKE"

// Config holds user/system configuration for the CLI.
type Config struct {
	Environment    string
	HomeDir        string
	KeyringBackend string
	KeyName        string
	ChainsFile     string // optional overlay for the chain registry

	QuickChainID   string // Quicksilver chain, where redemptions happen
	QuickRPC       string
	QuickLCD       string
	QuickBinary    string
	QuickPrefix    string
	QuickGasPrices string // --gas-prices for Quicksilver txs

	GasAdjustment string
	TxTimeout     time.Duration
}

type quickEndpoints struct {
	chainID, rpc, lcd string
}

var quickDefaults = map[string]quickEndpoints{
	EnvMainnet: {"quicksilver-2", "https://quicksilver-rpc.publicnode.com:443", "https://quicksilver-rest.publicnode.com"},
	EnvTestnet: {"rhye-2", "https://rpc.test.quicksilver.zone:443", "https://lcd.test.quicksilver.zone"},
}

// Defaults returns the mainnet configuration.
func Defaults() Config {
	home, _ := os.UserHomeDir()
	q := quickDefaults[EnvMainnet]
	return Config{
		Environment:    EnvMainnet,
		HomeDir:        filepath.Join(home, ".qs-stake"),
		KeyringBackend: "os",
		KeyName:        "default",
		QuickChainID:   q.chainID,
		QuickRPC:       q.rpc,
		QuickLCD:       q.lcd,
		QuickBinary:    "quicksilverd",
		QuickPrefix:    "quick",
		QuickGasPrices: "0.0001uqck",
		GasAdjustment:  "1.4",
		TxTimeout:      60 * time.Second,
	}
}

// keys that may be bound to command-line flags of the same name
var flagKeys = []string{"env", "home", "keyring-backend", "key", "chains-file", "quick-rpc", "quick-lcd"}

// Load layers, lowest first: defaults, <home>/config.yaml, QS_STAKE_* env,
// then any of flags that were set. HOME_DIR moves the default home directory.
// Quicksilver endpoints follow the selected environment unless set explicitly.
func Load(flags *pflag.FlagSet) (Config, error) {
	d := Defaults()
	if v := os.Getenv("HOME_DIR"); v != "" {
		d.HomeDir = v
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if flags != nil {
		for _, k := range flagKeys {
			if f := flags.Lookup(k); f != nil {
				if err := v.BindPFlag(k, f); err != nil {
					return d, fmt.Errorf("bind flag %s: %w", k, err)
				}
			}
		}
	}

	v.SetDefault("env", d.Environment)
	v.SetDefault("home", d.HomeDir)
	v.SetDefault("keyring-backend", d.KeyringBackend)
	v.SetDefault("key", d.KeyName)
	v.SetDefault("chains-file", "")
	v.SetDefault("quick-chain-id", "")
	v.SetDefault("quick-rpc", "")
	v.SetDefault("quick-lcd", "")
	v.SetDefault("quick-binary", d.QuickBinary)
	v.SetDefault("quick-prefix", d.QuickPrefix)
	v.SetDefault("quick-gas-prices", d.QuickGasPrices)
	v.SetDefault("gas-adjustment", d.GasAdjustment)
	v.SetDefault("tx-timeout", d.TxTimeout)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("home"))
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return d, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Environment:    strings.ToLower(v.GetString("env")),
		HomeDir:        v.GetString("home"),
		KeyringBackend: v.GetString("keyring-backend"),
		KeyName:        v.GetString("key"),
		ChainsFile:     v.GetString("chains-file"),
		QuickChainID:   v.GetString("quick-chain-id"),
		QuickRPC:       v.GetString("quick-rpc"),
		QuickLCD:       v.GetString("quick-lcd"),
		QuickBinary:    v.GetString("quick-binary"),
		QuickPrefix:    v.GetString("quick-prefix"),
		QuickGasPrices: v.GetString("quick-gas-prices"),
		GasAdjustment:  v.GetString("gas-adjustment"),
		TxTimeout:      v.GetDuration("tx-timeout"),
	}
	cfg.ApplyEnvironment()
	return cfg, nil
}

// ApplyEnvironment fills unset Quicksilver endpoints for cfg.Environment.
func (c *Config) ApplyEnvironment() {
	q, ok := quickDefaults[c.Environment]
	if !ok {
		return
	}
	if c.QuickChainID == "" {
		c.QuickChainID = q.chainID
	}
	if c.QuickRPC == "" {
		c.QuickRPC = q.rpc
	}
	if c.QuickLCD == "" {
		c.QuickLCD = q.lcd
	}
}
