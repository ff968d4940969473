package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configSubdir   = "config"
	configFileName = "board_config.json"
)

//go:embed default_config.json
var defaultConfigJSON []byte

// Config carries every setting the board client needs. It is built once
// and injected at construction; nothing reads it as ambient state.
type Config struct {
	// Log Config
	LogLevel   int    `json:"log_level"`   // e.g., 0 = debug, 1 = info, etc.
	LogFormat  string `json:"log_format"`  // "json" or "console"
	LogSampler bool   `json:"log_sampler"` // if true, samples logs (e.g., 1 in 5)

	// Cluster Config
	RPCURL     string `json:"rpc_url"`    // Solana cluster endpoint (default: devnet)
	Commitment string `json:"commitment"` // "processed", "confirmed" or "finalized"

	// Program Config
	ProgramID string `json:"program_id"` // Base58 address of the board program

	// Key material. The record keypair identifies the single shared
	// backing record and co-signs its own creation. It is provisioned
	// out of band, never derived at runtime.
	RecordKeypairPath string `json:"record_keypair_path"`
	WalletKeypairPath string `json:"wallet_keypair_path"`

	// Connection Config
	RequestTimeoutSeconds int `json:"request_timeout_seconds"` // Per-call timeout (default: 10)
	ConnectRetries        int `json:"connect_retries"`         // Attempts while establishing the connection (default: 3)
}

func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between 0 and 5")
	}

	// Validate log format
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	// Set defaults for the cluster connection
	if cfg.RPCURL == "" {
		cfg.RPCURL = "https://api.devnet.solana.com"
	}
	if cfg.Commitment == "" {
		cfg.Commitment = "processed"
	}
	if cfg.Commitment != "processed" && cfg.Commitment != "confirmed" && cfg.Commitment != "finalized" {
		return fmt.Errorf("commitment must be 'processed', 'confirmed' or 'finalized'")
	}

	if cfg.ProgramID == "" {
		return fmt.Errorf("program_id is required")
	}

	// Set defaults for connection behavior
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = 10
	}
	if cfg.ConnectRetries == 0 {
		cfg.ConnectRetries = 3
	}

	return nil
}

// Save writes the given config to <basePath>/config/board_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Join(basePath, configSubdir)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, configFileName)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Load reads and returns the config from <basePath>/config/board_config.json.
func Load(basePath string) (Config, error) {
	configFile := filepath.Join(basePath, configSubdir, configFileName)
	data, err := os.ReadFile(filepath.Clean(configFile))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads the default configuration from embedded JSON
func LoadDefaultConfig() (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid default config: %w", err)
	}
	return &cfg, nil
}
