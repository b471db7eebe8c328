// Package config provides configuration management for the thanosql CLI.
//
// Configuration is resolved from four layers. Precedence, highest to
// lowest: command-line flags, THANOSQL_* environment variables, a
// thanosql.yaml config file, built-in defaults.
package config

// Config holds all CLI configuration options.
type Config struct {
	EngineURL  string `koanf:"engine_url"`
	APIToken   string `koanf:"api_token"`
	APIVersion string `koanf:"api_version"`
	Verbose    bool   `koanf:"verbose"`
	Output     string `koanf:"output"`
}

// Default configuration values.
const (
	DefaultAPIVersion = "v1"
	DefaultOutput     = "table"
)
