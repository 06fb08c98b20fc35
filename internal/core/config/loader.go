package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	defaultContractAddress = "0x08A8fDBddc160A7d5b957256b903dCAb1aE512C5"
	defaultBatchSize       = 1000
	defaultConcurrency     = 4
	defaultProviderTimeout = 30 * time.Second
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied and no providers.
func Default() *AppConfig {
	var cfg AppConfig
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills unset fields.
func (cfg *AppConfig) ApplyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Scanner.ContractAddress == "" {
		cfg.Scanner.ContractAddress = defaultContractAddress
	}
	if cfg.Scanner.BatchSize == 0 {
		cfg.Scanner.BatchSize = defaultBatchSize
	}
	if cfg.Scanner.Concurrency == 0 {
		cfg.Scanner.Concurrency = defaultConcurrency
	}

	for i := range cfg.Providers {
		if cfg.Providers[i].Timeout == 0 {
			cfg.Providers[i].Timeout = defaultProviderTimeout
		}
		if cfg.Providers[i].Name == "" {
			cfg.Providers[i].Name = fmt.Sprintf("provider-%d", i)
		}
	}

	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = 500 * time.Millisecond
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = 10 * time.Second
	}
	if cfg.Retry.BackoffMultiple == 0 {
		cfg.Retry.BackoffMultiple = 2.0
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
