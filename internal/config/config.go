package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"debtguardian/internal/coordinator"
	"debtguardian/internal/slice"
)

// Config represents the complete DebtGuardian configuration (v1 schema)
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Stages      StagesConfig      `json:"stages" mapstructure:"stages"`
	Gate        GateConfig        `json:"gate" mapstructure:"gate"`
	Runner      RunnerConfig      `json:"runner" mapstructure:"runner"`
	SliceLimits SliceLimitsConfig `json:"sliceLimits" mapstructure:"sliceLimits"`
	Storage     StorageConfig     `json:"storage" mapstructure:"storage"`
	Logging     LoggingConfig     `json:"logging" mapstructure:"logging"`
}

// StagesConfig enables detector stages per slice granularity
type StagesConfig struct {
	Class  StageConfig `json:"class" mapstructure:"class"`
	Method StageConfig `json:"method" mapstructure:"method"`
}

// StageConfig configures one detector stage
type StageConfig struct {
	Enabled       bool    `json:"enabled" mapstructure:"enabled"`
	MinConfidence float64 `json:"minConfidence" mapstructure:"minConfidence"`
}

// GateConfig configures the metrics pre-filter applied before detection
type GateConfig struct {
	Enabled        bool `json:"enabled" mapstructure:"enabled"`
	MinMethodLines int  `json:"minMethodLines" mapstructure:"minMethodLines"`
	MaxClassLines  int  `json:"maxClassLines" mapstructure:"maxClassLines"`
}

// RunnerConfig configures concurrency, timeouts and retries
type RunnerConfig struct {
	Concurrency     int `json:"concurrency" mapstructure:"concurrency"`
	CallTimeoutMs   int `json:"callTimeoutMs" mapstructure:"callTimeoutMs"`
	RunTimeoutMs    int `json:"runTimeoutMs" mapstructure:"runTimeoutMs"`
	RetryLimit      int `json:"retryLimit" mapstructure:"retryLimit"`
	RetryBackoffMs  int `json:"retryBackoffMs" mapstructure:"retryBackoffMs"`
}

// SliceLimitsConfig bounds slicing input
type SliceLimitsConfig struct {
	MaxFileSizeBytes int `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
}

// StorageConfig contains run persistence configuration
type StorageConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Stages: StagesConfig{
			Class:  StageConfig{Enabled: true, MinConfidence: 0.5},
			Method: StageConfig{Enabled: true, MinConfidence: 0.5},
		},
		Gate: GateConfig{
			Enabled:        true,
			MinMethodLines: 3,
			MaxClassLines:  2000,
		},
		Runner: RunnerConfig{
			Concurrency:    4,
			CallTimeoutMs:  60000,
			RunTimeoutMs:   1800000,
			RetryLimit:     3,
			RetryBackoffMs: 500,
		},
		SliceLimits: SliceLimitsConfig{
			MaxFileSizeBytes: 1000000,
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    ".debtguardian/runs.db",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .debtguardian/config.json
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("repoRoot", ".")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".debtguardian"))

	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .debtguardian/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".debtguardian")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Stages.Class.MinConfidence < 0 || c.Stages.Class.MinConfidence > 1 {
		return &ConfigError{Field: "stages.class.minConfidence", Message: "must be within [0,1]"}
	}
	if c.Stages.Method.MinConfidence < 0 || c.Stages.Method.MinConfidence > 1 {
		return &ConfigError{Field: "stages.method.minConfidence", Message: "must be within [0,1]"}
	}
	if c.Runner.RetryLimit < 1 {
		return &ConfigError{Field: "runner.retryLimit", Message: "must be at least 1"}
	}
	if c.Runner.Concurrency < 1 {
		return &ConfigError{Field: "runner.concurrency", Message: "must be at least 1"}
	}
	return nil
}

// Coordinator converts the user configuration into the coordinator's
// policy struct.
func (c *Config) Coordinator() coordinator.Config {
	return coordinator.Config{
		ClassStage:  c.Stages.Class.Enabled,
		MethodStage: c.Stages.Method.Enabled,
		MinConfidence: map[slice.Kind]float64{
			slice.KindClass:  c.Stages.Class.MinConfidence,
			slice.KindMethod: c.Stages.Method.MinConfidence,
		},
		Gate: coordinator.GateConfig{
			Enabled:        c.Gate.Enabled,
			MinMethodLines: c.Gate.MinMethodLines,
			MaxClassLines:  c.Gate.MaxClassLines,
		},
		Concurrency:  c.Runner.Concurrency,
		CallTimeout:  time.Duration(c.Runner.CallTimeoutMs) * time.Millisecond,
		RunTimeout:   time.Duration(c.Runner.RunTimeoutMs) * time.Millisecond,
		RetryLimit:   c.Runner.RetryLimit,
		RetryBackoff: time.Duration(c.Runner.RetryBackoffMs) * time.Millisecond,
	}
}

// StoragePath resolves the run database path against the repository root
// when it is relative.
func (c *Config) StoragePath() string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(c.RepoRoot, c.Storage.Path)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
