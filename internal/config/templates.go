package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# TradeLens Configuration

[analysis]
# Loss-aversion fires when avg loss exceeds avg win by this factor
loss_aversion_trigger = 1.5
# Loss-to-win ratio severity bands
loss_aversion_high = 1.75
loss_aversion_medium = 1.2
# Trades-per-asset severity bands
overtrading_high = 30.0
overtrading_medium = 15.0
# Chronological split fraction for the recency comparison
recency_split = 0.8
# Tail drop relative to head magnitude that escalates recency to high
recency_high_drop = 0.4
# Max drawdown severity bands (percent of equity)
drawdown_high = 20.0
drawdown_medium = 10.0
# Dominant-asset share that fires the concentration rule (percent)
concentration_min = 25.0
# Win rate below this fires the strategy-effectiveness rule (percent)
strategy_min_win_rate = 40.0
# How many positive-expectancy hours are reported as strongest
strongest_hours_top_n = 3
# Early-session band, inclusive hours of day
early_band_start = 9
early_band_end = 10

[coach]
# Model used when an OpenAI key is configured
model = "gpt-4o-mini"
# Allow model-backed coaching; the heuristic fallback always remains available
enabled = true

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log to console
console = true
# Log to rotating file
file = true
`

const credentialsTemplate = `# TradeLens API Credentials
# Keep this file private (chmod 600)

[openai]
api_key = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}
	return nil
}
