// Package config provides configuration loading and validation for gdbsearch.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrEmptyPrompt      = errors.New("debugger prompt must not be empty")
	ErrInvalidTimeout   = errors.New("timeout must be positive")
	ErrInvalidBarLength = errors.New("report bar length must be positive")
	ErrInvalidMaxPasses = errors.New("max passes must not be negative")
)

// Default configuration values.
const (
	defaultPrompt      = "(gdb) "
	defaultEntry       = "main"
	defaultProbe       = "private_mem"
	defaultExpression  = "n > p"
	defaultReportDir   = "gdbsearch-report"
	defaultBarLength   = 25
	defaultReadTimeout = time.Second
	defaultRunTimeout  = 8 * time.Second
)

// Config holds all configuration for a gdbsearch run.
type Config struct {
	GDB    GDBConfig    `mapstructure:"gdb"`
	Search SearchConfig `mapstructure:"search"`
	Report ReportConfig `mapstructure:"report"`
}

// GDBConfig holds debugger transport configuration.
type GDBConfig struct {
	// Prompt is the idle prompt token that terminates a reply.
	Prompt string `mapstructure:"prompt"`
	// Entry is the function the initial breakpoint is set on.
	Entry       string        `mapstructure:"entry"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// RunTimeout bounds the wait for the run command, which is slower
	// than any stepping command.
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

// SearchConfig holds search engine configuration.
type SearchConfig struct {
	Probe      string `mapstructure:"probe"`
	Expression string `mapstructure:"expression"`
	// MaxPasses bounds the number of inspection passes, guarding
	// against divergence with always-true predicates. 0 = unlimited.
	MaxPasses int `mapstructure:"max_passes"`
}

// ReportConfig holds report output configuration.
type ReportConfig struct {
	Dir       string `mapstructure:"dir"`
	BarLength int    `mapstructure:"bar_length"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("gdbsearch")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
	}

	viperCfg.SetEnvPrefix("GDBSEARCH")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Debugger defaults.
	viperCfg.SetDefault("gdb.prompt", defaultPrompt)
	viperCfg.SetDefault("gdb.entry", defaultEntry)
	viperCfg.SetDefault("gdb.read_timeout", defaultReadTimeout.String())
	viperCfg.SetDefault("gdb.run_timeout", defaultRunTimeout.String())

	// Search defaults.
	viperCfg.SetDefault("search.probe", defaultProbe)
	viperCfg.SetDefault("search.expression", defaultExpression)
	viperCfg.SetDefault("search.max_passes", 0)

	// Report defaults.
	viperCfg.SetDefault("report.dir", defaultReportDir)
	viperCfg.SetDefault("report.bar_length", defaultBarLength)
}

// validate validates the configuration.
func validate(config *Config) error {
	if config.GDB.Prompt == "" {
		return ErrEmptyPrompt
	}

	if config.GDB.ReadTimeout <= 0 {
		return fmt.Errorf("%w: gdb.read_timeout %v", ErrInvalidTimeout, config.GDB.ReadTimeout)
	}

	if config.GDB.RunTimeout <= 0 {
		return fmt.Errorf("%w: gdb.run_timeout %v", ErrInvalidTimeout, config.GDB.RunTimeout)
	}

	if config.Search.MaxPasses < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxPasses, config.Search.MaxPasses)
	}

	if config.Report.BarLength <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBarLength, config.Report.BarLength)
	}

	return nil
}
