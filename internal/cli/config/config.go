package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"imgcore"
)

// Config represents the imgcore configuration
type Config struct {
	ASCII   ASCIIConfig `mapstructure:"ascii"`
	Workers int         `mapstructure:"workers"`
	Log     LogConfig   `mapstructure:"log"`
}

// ASCIIConfig holds the character-art defaults
type ASCIIConfig struct {
	Charset         string  `mapstructure:"charset"`
	BackgroundColor string  `mapstructure:"background_color"`
	CellWidth       int     `mapstructure:"cell_width"`
	CellHeight      int     `mapstructure:"cell_height"`
	Gamma           float64 `mapstructure:"gamma"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// RenderParams converts the ASCII section into renderer parameters.
func (c ASCIIConfig) RenderParams() imgcore.RenderParams {
	return imgcore.RenderParams{
		CellWidth:  c.CellWidth,
		CellHeight: c.CellHeight,
		Gamma:      c.Gamma,
		Background: imgcore.ParseHexColor(c.BackgroundColor),
	}
}

// Load loads the configuration from imgcore.yaml. An explicit path must
// exist; otherwise the working directory and $HOME/.config/imgcore are
// searched and a missing file means defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("ascii.charset", imgcore.DefaultRampID)
	v.SetDefault("ascii.background_color", "#000000")
	v.SetDefault("ascii.cell_width", imgcore.DefaultCellWidth)
	v.SetDefault("ascii.cell_height", imgcore.DefaultCellHeight)
	v.SetDefault("ascii.gamma", imgcore.DefaultGamma)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("imgcore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "imgcore"))
		}
	}

	// Enable environment variable support
	v.SetEnvPrefix("IMGCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if err := cfg.ASCII.RenderParams().Validate(); err != nil {
		return fmt.Errorf("ascii: %w", err)
	}

	bg := strings.TrimPrefix(cfg.ASCII.BackgroundColor, "#")
	if len(bg) != 6 || strings.Trim(strings.ToLower(bg), "0123456789abcdef") != "" {
		return fmt.Errorf("ascii.background_color must be #rrggbb, got: %s", cfg.ASCII.BackgroundColor)
	}

	if _, ok := imgcore.LookupRamp(cfg.ASCII.Charset); !ok {
		return fmt.Errorf("ascii.charset: unknown character set %q", cfg.ASCII.Charset)
	}

	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got: %d", cfg.Workers)
	}

	return nil
}
