// =============================================================================
// whalewatch - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. The configuration is built once at process start and passed
// explicitly to every component; nothing in this package holds mutable state.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Built-in defaults
//   2. Main config file (config.yaml)
//   3. A .env file in the working directory, if present
//   4. WHALEWATCH_* environment variables
//   5. Command-line flags (applied by the cmd package)
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config path used when --config is not given.
const DefaultConfigFile = "config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for transaction export files.
	// Default: "./data"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory holding the accumulated output file.
	// It is created if it does not exist.
	// Default: "./data/output"
	OutputDir string `yaml:"output_dir"`

	// OutputFilename is the name of the accumulated output file.
	// Default: "processed_transactions.csv"
	OutputFilename string `yaml:"output_filename"`

	// InputExtension is the exact, case-sensitive suffix of input files.
	// Default: ".tsv"
	InputExtension string `yaml:"input_extension"`

	// SummaryLog writes a processing summary next to the output file after
	// each run.
	// Default: false
	SummaryLog bool `yaml:"summary_log"`

	// =========================================================================
	// LOOKUP SETTINGS
	// =========================================================================

	// Simulation selects the deterministic mock instead of the live node.
	// Default: true
	Simulation *bool `yaml:"simulation"`

	// RPC holds the connection settings for the live node.
	RPC RPCConfig `yaml:"rpc"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFile is an optional log file, rotated by size.
	LogFile string `yaml:"log_file"`

	// LogMaxSizeMB is the size at which LogFile is rotated.
	// Default: 100
	LogMaxSizeMB int `yaml:"log_max_size_mb"`

	// LogMaxBackups is the number of rotated log files kept.
	// Default: 3
	LogMaxBackups int `yaml:"log_max_backups"`

	// OtelEndpoint is the OTLP/HTTP trace collector. Tracing is disabled
	// when empty.
	OtelEndpoint string `yaml:"otel_endpoint"`
}

// RPCConfig holds the node connection settings. Only used in live mode.
type RPCConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// SimulationMode reports whether the lookup annotator should use the mock.
func (c Config) SimulationMode() bool {
	return c.Simulation == nil || *c.Simulation
}

// OutputPath is the full path of the accumulated output file.
func (c Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputFilename)
}

// RPCURL is the base URL of the node, without credentials.
func (c Config) RPCURL() string {
	return fmt.Sprintf("http://%s:%d/", c.RPC.Host, c.RPC.Port)
}

// Masked returns a copy safe to print.
func (c Config) Masked() Config {
	masked := c
	if masked.RPC.Password != "" {
		masked.RPC.Password = "********"
	}
	return masked
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load builds the configuration from the config file at configPath and the
// given environment.
//
// PARAMETERS:
//   - configPath: The path to the YAML configuration file.
//   - explicit:   Whether the path was given by the user. A missing file is
//                 only an error when it was.
//   - env:        Environment overrides.
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string, explicit bool, env EnvSource) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if env != nil {
		if err := applyEnv(&cfg, env); err != nil {
			return Config{}, err
		}
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./data"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir(cfg.InputDir)
	}
	if cfg.OutputFilename == "" {
		cfg.OutputFilename = "processed_transactions.csv"
	}
	if cfg.InputExtension == "" {
		cfg.InputExtension = ".tsv"
	}
	if cfg.Simulation == nil {
		enabled := true
		cfg.Simulation = &enabled
	}
	if cfg.RPC.Host == "" {
		cfg.RPC.Host = "127.0.0.1"
	}
	if cfg.RPC.Port == 0 {
		cfg.RPC.Port = 8332
	}
	if cfg.RPC.Timeout == 0 {
		cfg.RPC.Timeout = 10 * time.Second
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogMaxSizeMB == 0 {
		cfg.LogMaxSizeMB = 100
	}
	if cfg.LogMaxBackups == 0 {
		cfg.LogMaxBackups = 3
	}
}

// DefaultOutputDir is the output directory used when none is configured.
func DefaultOutputDir(inputDir string) string {
	return filepath.Join(inputDir, "output")
}

// Validate checks the configuration for values no component can work with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.InputExtension) == "" {
		return errors.New("input_extension must not be empty")
	}
	if c.OutputFilename != filepath.Base(c.OutputFilename) || c.OutputFilename == "." {
		return fmt.Errorf("output_filename must be a bare file name, got %q", c.OutputFilename)
	}
	if c.RPC.Port < 1 || c.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port out of range: %d", c.RPC.Port)
	}
	if c.RPC.Timeout < 0 {
		return fmt.Errorf("rpc.timeout must not be negative: %s", c.RPC.Timeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// EnsureOutputDir creates the output directory if it doesn't exist.
func (c Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.OutputDir, err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// applyEnv overlays WHALEWATCH_* variables onto cfg.
func applyEnv(cfg *Config, env EnvSource) error {
	setString(env, "WHALEWATCH_INPUT_DIR", &cfg.InputDir)
	setString(env, "WHALEWATCH_OUTPUT_DIR", &cfg.OutputDir)
	setString(env, "WHALEWATCH_OUTPUT_FILENAME", &cfg.OutputFilename)
	setString(env, "WHALEWATCH_INPUT_EXTENSION", &cfg.InputExtension)
	setString(env, "WHALEWATCH_RPC_HOST", &cfg.RPC.Host)
	setString(env, "WHALEWATCH_RPC_USER", &cfg.RPC.User)
	setString(env, "WHALEWATCH_RPC_PASSWORD", &cfg.RPC.Password)
	setString(env, "WHALEWATCH_LOG_LEVEL", &cfg.LogLevel)
	setString(env, "WHALEWATCH_LOG_FILE", &cfg.LogFile)
	setString(env, "OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.OtelEndpoint)

	if raw, ok := lookupTrimmed(env, "WHALEWATCH_SIMULATION"); ok {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid WHALEWATCH_SIMULATION: %w", err)
		}
		cfg.Simulation = &enabled
	}
	if raw, ok := lookupTrimmed(env, "WHALEWATCH_RPC_PORT"); ok {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid WHALEWATCH_RPC_PORT: %w", err)
		}
		cfg.RPC.Port = port
	}
	if raw, ok := lookupTrimmed(env, "WHALEWATCH_RPC_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid WHALEWATCH_RPC_TIMEOUT: %w", err)
		}
		cfg.RPC.Timeout = timeout
	}
	if raw, ok := lookupTrimmed(env, "WHALEWATCH_SUMMARY_LOG"); ok {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid WHALEWATCH_SUMMARY_LOG: %w", err)
		}
		cfg.SummaryLog = enabled
	}
	return nil
}

func setString(env EnvSource, key string, dst *string) {
	if raw, ok := lookupTrimmed(env, key); ok {
		*dst = raw
	}
}

func lookupTrimmed(env EnvSource, key string) (string, bool) {
	raw, ok := env.Lookup(key)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
