package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HOME_DIR", "QS_STAKE_ENV", "QS_STAKE_KEY", "QS_STAKE_KEYRING_BACKEND", "QS_STAKE_QUICK_LCD"} {
		if v, ok := os.LookupEnv(k); ok {
			os.Unsetenv(k)
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("env", "", "")
	fs.String("home", "", "")
	fs.String("key", "", "")
	fs.String("keyring-backend", "", "")
	fs.String("chains-file", "", "")
	return fs
}

func TestDefaults_AllFields(t *testing.T) {
	home, _ := os.UserHomeDir()
	cfg := Defaults()

	if cfg.Environment != EnvMainnet {
		t.Errorf("Expected Environment to be 'mainnet', got '%s'", cfg.Environment)
	}
	if cfg.HomeDir != filepath.Join(home, ".qs-stake") {
		t.Errorf("unexpected HomeDir '%s'", cfg.HomeDir)
	}
	if cfg.KeyringBackend != "os" {
		t.Errorf("Expected KeyringBackend to be 'os', got '%s'", cfg.KeyringBackend)
	}
	if cfg.QuickChainID != "quicksilver-2" {
		t.Errorf("Expected QuickChainID to be 'quicksilver-2', got '%s'", cfg.QuickChainID)
	}
	if cfg.TxTimeout != 60*time.Second {
		t.Errorf("Expected TxTimeout 60s, got %s", cfg.TxTimeout)
	}
	if cfg.QuickGasPrices != "0.0001uqck" {
		t.Errorf("Expected QuickGasPrices '0.0001uqck', got '%s'", cfg.QuickGasPrices)
	}
}

func TestLoad_HomeDirEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("HOME_DIR", dir)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HomeDir != dir {
		t.Errorf("Expected HomeDir '%s', got '%s'", dir, cfg.HomeDir)
	}
}

func TestLoad_ConfigFileAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("HOME_DIR", dir)
	yaml := "key: alice\nkeyring-backend: file\ntx-timeout: 5s\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.KeyName != "alice" || cfg.KeyringBackend != "file" {
		t.Errorf("config file not applied: %+v", cfg)
	}
	if cfg.TxTimeout != 5*time.Second {
		t.Errorf("Expected TxTimeout 5s, got %s", cfg.TxTimeout)
	}
	if cfg.QuickGasPrices != "0.0001uqck" {
		t.Errorf("QuickGasPrices default lost: '%s'", cfg.QuickGasPrices)
	}

	t.Setenv("QS_STAKE_QUICK_GAS_PRICES", "0.002uqck")
	cfg, err = Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QuickGasPrices != "0.002uqck" {
		t.Errorf("env should set QuickGasPrices, got '%s'", cfg.QuickGasPrices)
	}

	t.Setenv("QS_STAKE_KEYRING_BACKEND", "test")
	cfg, err = Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.KeyringBackend != "test" {
		t.Errorf("env should override config file, got '%s'", cfg.KeyringBackend)
	}
}

func TestLoad_FlagsWin(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME_DIR", t.TempDir())
	t.Setenv("QS_STAKE_KEY", "from-env")

	fs := testFlags()
	if err := fs.Parse([]string{"--env", "testnet", "--key", "from-flag"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.KeyName != "from-flag" {
		t.Errorf("Expected flag value, got '%s'", cfg.KeyName)
	}
	if cfg.Environment != EnvTestnet {
		t.Errorf("Expected testnet, got '%s'", cfg.Environment)
	}
	if cfg.QuickChainID != "rhye-2" {
		t.Errorf("testnet should switch Quicksilver chain, got '%s'", cfg.QuickChainID)
	}
}

func TestLoad_UnsetFlagsKeepDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME_DIR", t.TempDir())

	cfg, err := Load(testFlags())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != EnvMainnet || cfg.KeyName != "default" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestApplyEnvironment_KeepsExplicit(t *testing.T) {
	c := Config{Environment: EnvTestnet, QuickLCD: "http://localhost:1317"}
	c.ApplyEnvironment()
	if c.QuickLCD != "http://localhost:1317" {
		t.Errorf("explicit LCD replaced: %s", c.QuickLCD)
	}
	if c.QuickRPC == "" {
		t.Error("RPC not filled")
	}
}
