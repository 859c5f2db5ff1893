// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	apperrors "tradelens/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Analysis    AnalysisConfig `mapstructure:"analysis"`
	Coach       CoachConfig    `mapstructure:"coach"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	Credentials Credentials    `mapstructure:"-"` // Loaded separately
}

// AnalysisConfig holds tuning for the bias rules and hour flags.
type AnalysisConfig struct {
	LossAversionTrigger float64 `mapstructure:"loss_aversion_trigger"`
	LossAversionHigh    float64 `mapstructure:"loss_aversion_high"`
	LossAversionMedium  float64 `mapstructure:"loss_aversion_medium"`
	OvertradingHigh     float64 `mapstructure:"overtrading_high"`
	OvertradingMedium   float64 `mapstructure:"overtrading_medium"`
	RecencySplit        float64 `mapstructure:"recency_split"`
	RecencyHighDrop     float64 `mapstructure:"recency_high_drop"`
	DrawdownHigh        float64 `mapstructure:"drawdown_high"`
	DrawdownMedium      float64 `mapstructure:"drawdown_medium"`
	ConcentrationMin    float64 `mapstructure:"concentration_min"`
	StrategyMinWinRate  float64 `mapstructure:"strategy_min_win_rate"`
	StrongestHoursTopN  int     `mapstructure:"strongest_hours_top_n"`
	EarlyBandStart      int     `mapstructure:"early_band_start"`
	EarlyBandEnd        int     `mapstructure:"early_band_end"`
}

// CoachConfig holds coaching-report generation settings.
type CoachConfig struct {
	Model   string `mapstructure:"model"`
	Enabled bool   `mapstructure:"enabled"` // allow model-backed coaching when a key exists
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// OpenAICredentials holds OpenAI API credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradelens"
	}
	return filepath.Join(home, ".config", "tradelens")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setAnalysisDefaults(v)
	v.SetDefault("coach.model", "gpt-4o-mini")
	v.SetDefault("coach.enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := createTemplateConfig(configDir); err != nil {
			return err
		}
	}
	return v.Unmarshal(target)
}

func setAnalysisDefaults(v *viper.Viper) {
	v.SetDefault("analysis.loss_aversion_trigger", 1.5)
	v.SetDefault("analysis.loss_aversion_high", 1.75)
	v.SetDefault("analysis.loss_aversion_medium", 1.2)
	v.SetDefault("analysis.overtrading_high", 30.0)
	v.SetDefault("analysis.overtrading_medium", 15.0)
	v.SetDefault("analysis.recency_split", 0.8)
	v.SetDefault("analysis.recency_high_drop", 0.4)
	v.SetDefault("analysis.drawdown_high", 20.0)
	v.SetDefault("analysis.drawdown_medium", 10.0)
	v.SetDefault("analysis.concentration_min", 25.0)
	v.SetDefault("analysis.strategy_min_win_rate", 40.0)
	v.SetDefault("analysis.strongest_hours_top_n", 3)
	v.SetDefault("analysis.early_band_start", 9)
	v.SetDefault("analysis.early_band_end", 10)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}
	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("TRADELENS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.RecencySplit <= 0 || a.RecencySplit >= 1 {
		return fmt.Errorf("%w: recency_split must be in (0,1), got %v",
			apperrors.ErrConfigInvalid, a.RecencySplit)
	}
	if a.StrongestHoursTopN < 0 {
		return fmt.Errorf("%w: strongest_hours_top_n must be >= 0",
			apperrors.ErrConfigInvalid)
	}
	if a.EarlyBandStart < 0 || a.EarlyBandEnd > 23 || a.EarlyBandStart > a.EarlyBandEnd {
		return fmt.Errorf("%w: early band must satisfy 0 <= start <= end <= 23",
			apperrors.ErrConfigInvalid)
	}
	if a.LossAversionTrigger <= 0 {
		return fmt.Errorf("%w: loss_aversion_trigger must be positive", apperrors.ErrConfigInvalid)
	}
	if a.LossAversionHigh <= a.LossAversionMedium {
		return fmt.Errorf("%w: loss aversion bands out of order", apperrors.ErrConfigInvalid)
	}
	if a.OvertradingHigh <= a.OvertradingMedium {
		return fmt.Errorf("%w: overtrading bands out of order", apperrors.ErrConfigInvalid)
	}
	if a.DrawdownHigh <= a.DrawdownMedium {
		return fmt.Errorf("%w: drawdown bands out of order", apperrors.ErrConfigInvalid)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", apperrors.ErrConfigInvalid, c.Logging.Level)
	}
	return nil
}
