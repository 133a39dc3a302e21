// Package config provides configuration management for the bloodline CLI.
package config

// Output formats accepted by the output key.
const (
	OutputAuto     = "auto" // TTY=text, non-TTY=markdown
	OutputText     = "text"
	OutputMarkdown = "markdown"
	OutputJSON     = "json"
	OutputYAML     = "yaml"
)

// Default configuration values.
const (
	DefaultOutput     = OutputAuto
	DefaultStateFile  = ".bloodline/history.db"
	DefaultLogLevel   = "warn"
	DefaultServerAddr = "127.0.0.1:8765"
)

// Config holds all CLI configuration options.
type Config struct {
	OutputFormat string       `koanf:"output"`
	Normalize    bool         `koanf:"normalize"`
	StatePath    string       `koanf:"state_path"`
	Save         bool         `koanf:"save"`
	Verbose      bool         `koanf:"verbose"`
	LogLevel     string       `koanf:"log_level"`
	Concurrency  int          `koanf:"concurrency"`
	Server       ServerConfig `koanf:"server"`
}

// ServerConfig holds configuration for the HTTP API.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		OutputFormat: DefaultOutput,
		Normalize:    true,
		StatePath:    DefaultStateFile,
		LogLevel:     DefaultLogLevel,
		Concurrency:  defaultConcurrency(),
		Server:       ServerConfig{Addr: DefaultServerAddr},
	}
}
