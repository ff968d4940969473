package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProgramID = "CuRF5bMpCoatpfGTKy7H99JoAseKEUCrENzFv9yHTnG4"

func validTestConfig() *Config {
	return &Config{
		LogLevel:  1,
		LogFormat: "console",
		ProgramID: testProgramID,
	}
}

func TestValidateConfigFillsDefaults(t *testing.T) {
	cfg := validTestConfig()
	require.NoError(t, validateConfig(cfg))

	assert.Equal(t, "https://api.devnet.solana.com", cfg.RPCURL)
	assert.Equal(t, "processed", cfg.Commitment)
	assert.Equal(t, 10, cfg.RequestTimeoutSeconds)
	assert.Equal(t, 3, cfg.ConnectRetries)
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = 9 }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"bad commitment", func(c *Config) { c.Commitment = "instant" }},
		{"missing program id", func(c *Config) { c.ProgramID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	base := t.TempDir()

	cfg := validTestConfig()
	cfg.RPCURL = "http://127.0.0.1:8899"
	cfg.Commitment = "confirmed"
	cfg.RecordKeypairPath = "keys/record.json"
	require.NoError(t, Save(cfg, base))

	loaded, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, *cfg, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := LoadDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.devnet.solana.com", cfg.RPCURL)
	assert.Equal(t, "processed", cfg.Commitment)
	assert.NotEmpty(t, cfg.ProgramID)
}
