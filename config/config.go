package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"nftmarket/native/common"
	"nftmarket/native/fees"
	"nftmarket/native/market"
)

// Config is the marketd configuration file.
type Config struct {
	ListenAddress  string   `toml:"ListenAddress"`
	DataDir        string   `toml:"DataDir"`
	AdminAddress   string   `toml:"AdminAddress"`
	FeeRateBps     uint32   `toml:"FeeRateBps"`
	FeeDestination string   `toml:"FeeDestination"`
	VaultAddress   string   `toml:"VaultAddress"`
	Intermediaries []string `toml:"Intermediaries"`
	Disallowed     []string `toml:"Disallowed"`
	PausedModules  []string `toml:"PausedModules"`
}

// Load reads the configuration from the given path, creating a commented
// default file when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = ":8651"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./marketdata"
	}
	if cfg.FeeRateBps == 0 {
		cfg.FeeRateBps = fees.DefaultRateBps
	}
	if strings.TrimSpace(cfg.VaultAddress) == "" {
		cfg.VaultAddress = defaultVaultAddress
	}
}

// Validate checks address fields and the fee rate cap.
func (c *Config) Validate() error {
	if err := fees.ValidateRate(c.FeeRateBps); err != nil {
		return err
	}
	for field, value := range map[string]string{
		"AdminAddress":   c.AdminAddress,
		"FeeDestination": c.FeeDestination,
		"VaultAddress":   c.VaultAddress,
	} {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, err := ParseAddress(value); err != nil {
			return fmt.Errorf("config: invalid %s: %w", field, err)
		}
	}
	for _, list := range [][]string{c.Intermediaries, c.Disallowed} {
		for _, value := range list {
			if _, err := ParseAddress(value); err != nil {
				return fmt.Errorf("config: invalid address %q: %w", value, err)
			}
		}
	}
	return nil
}

// FeePolicy builds the fee policy described by the configuration.
func (c *Config) FeePolicy() (fees.Policy, error) {
	policy := fees.Policy{RateBps: c.FeeRateBps}
	if strings.TrimSpace(c.FeeDestination) != "" {
		destination, err := ParseAddress(c.FeeDestination)
		if err != nil {
			return fees.Policy{}, err
		}
		policy.Destination = destination
	}
	return policy, nil
}

// Gate builds the allowlist access gate described by the configuration.
func (c *Config) Gate() (*market.StaticGate, error) {
	intermediaries, err := parseAddressList(c.Intermediaries)
	if err != nil {
		return nil, err
	}
	disallowed, err := parseAddressList(c.Disallowed)
	if err != nil {
		return nil, err
	}
	return market.NewStaticGate(intermediaries, disallowed), nil
}

// Pauses builds the pause view described by the configuration.
func (c *Config) Pauses() common.PauseSet {
	return common.NewPauseSet(c.PausedModules)
}

// ParseAddress decodes a 20-byte hex identity, with or without a 0x prefix.
func ParseAddress(value string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, err
	}
	if len(decoded) != len(addr) {
		return addr, fmt.Errorf("address must be %d bytes, got %d", len(addr), len(decoded))
	}
	copy(addr[:], decoded)
	return addr, nil
}

func parseAddressList(values []string) ([][20]byte, error) {
	parsed := make([][20]byte, 0, len(values))
	for _, value := range values {
		addr, err := ParseAddress(value)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, addr)
	}
	return parsed, nil
}

const defaultVaultAddress = "0x00000000000000000000000000000000000e5c01"

const defaultConfigTemplate = `# marketd configuration.
ListenAddress = ":8651"
DataDir = "./marketdata"

# Identity allowed to change the fee rate and destination.
AdminAddress = ""

# Fee rate in basis points, capped at 750 (7.5%%). 500 = 5%%.
FeeRateBps = 500
FeeDestination = ""

# Identity holding escrowed funds and assets.
VaultAddress = "%s"

# Approved intermediary identities allowed to act for an origin identity.
Intermediaries = []

# Identities rejected by gated operations and skipped as recipients.
Disallowed = []

# Modules to pause administratively, e.g. ["market"].
PausedModules = []
`

func createDefault(path string) (*Config, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	content := fmt.Sprintf(defaultConfigTemplate, defaultVaultAddress)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, err
	}
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg, nil
}
