package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nftmarket/native/fees"
	"nftmarket/native/market"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8651", cfg.ListenAddress)
	require.Equal(t, "./marketdata", cfg.DataDir)
	require.Equal(t, uint32(fees.DefaultRateBps), cfg.FeeRateBps)
	require.Equal(t, defaultVaultAddress, cfg.VaultAddress)

	_, err = os.Stat(path)
	require.NoError(t, err, "default file must be written")

	// Loading the generated file round-trips the defaults.
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ListenAddress, reloaded.ListenAddress)
	require.Equal(t, cfg.FeeRateBps, reloaded.FeeRateBps)
	require.Equal(t, cfg.VaultAddress, reloaded.VaultAddress)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesFile(t *testing.T) {
	path := writeConfig(t, `
ListenAddress = ":9000"
DataDir = "/tmp/marketdata"
AdminAddress = "0xadadadadadadadadadadadadadadadadadadadad"
FeeRateBps = 250
FeeDestination = "0xfefefefefefefefefefefefefefefefefefefefe"
Intermediaries = ["0x1111111111111111111111111111111111111111"]
Disallowed = ["0x2222222222222222222222222222222222222222"]
PausedModules = ["Market"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.ListenAddress)
	require.Equal(t, uint32(250), cfg.FeeRateBps)

	policy, err := cfg.FeePolicy()
	require.NoError(t, err)
	require.Equal(t, uint32(250), policy.RateBps)
	require.Equal(t, byte(0xfe), policy.Destination[0])

	gate, err := cfg.Gate()
	require.NoError(t, err)
	intermediary, err := ParseAddress("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	banned, err := ParseAddress("0x2222222222222222222222222222222222222222")
	require.NoError(t, err)
	require.Equal(t, market.ClassIntermediary, gate.Classify(intermediary))
	require.Equal(t, market.ClassDisallowed, gate.Classify(banned))

	pauses := cfg.Pauses()
	require.True(t, pauses.IsPaused("market"), "pause names are case-insensitive")
}

func TestLoadRejectsExcessiveFeeRate(t *testing.T) {
	path := writeConfig(t, "FeeRateBps = 751\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMalformedAddress(t *testing.T) {
	path := writeConfig(t, `AdminAddress = "0x1234"`)
	_, err := Load(path)
	require.Error(t, err)

	path = writeConfig(t, `Disallowed = ["not-hex"]`)
	_, err = Load(path)
	require.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	withPrefix, err := ParseAddress("0x00000000000000000000000000000000000e5c01")
	require.NoError(t, err)
	bare, err := ParseAddress("00000000000000000000000000000000000e5c01")
	require.NoError(t, err)
	require.Equal(t, withPrefix, bare)

	_, err = ParseAddress("0xzz00000000000000000000000000000000000000")
	require.Error(t, err)
	_, err = ParseAddress("")
	require.Error(t, err)
}
