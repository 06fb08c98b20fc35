package config

import (
	"time"

	redisclient "github.com/vietddude/ethscan/internal/infra/redis"
	"github.com/vietddude/ethscan/internal/infra/rpc/routing"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig        `yaml:"server"`
	Scanner   ScannerConfig       `yaml:"scanner"`
	Providers []ProviderConfig    `yaml:"providers"`
	Retry     routing.RetryConfig `yaml:"retry"`
	Redis     redisclient.Config  `yaml:"redis"`
	Logging   LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ScannerConfig holds balance scanner contract settings.
type ScannerConfig struct {
	ContractAddress string `yaml:"contract_address"`
	BatchSize       int    `yaml:"batch_size"`
	Concurrency     int    `yaml:"concurrency"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ProviderConfig holds settings for an RPC provider.
type ProviderConfig struct {
	Name    string            `yaml:"name"`
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}
