package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// Run selection, filled in from command line arguments before
	// Validate is called. Never read from the environment.
	Account string `validate:"required"`
	Limit   int    `validate:"min=0"`
	Output  string
	Verbose bool

	// Extraction Configuration
	Quality     string `mapstructure:"REELER_QUALITY" validate:"required"`
	Concurrency int    `mapstructure:"REELER_CONCURRENCY" validate:"min=1,max=8"`
	CookiesPath string `mapstructure:"REELER_COOKIES"`
	YTDLPPath   string `mapstructure:"REELER_YTDLP_PATH"`
	MaxFilesize string `mapstructure:"REELER_MAX_FILESIZE"`
	ExtraArgs   string `mapstructure:"REELER_EXTRA_ARGS"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag != "" {
			viper.BindEnv(tag)
		}

		// Handle nested structs
		if field.Type.Kind() == reflect.Struct && tag == "" {
			nestedTyp := fieldVal.Type()
			for j := 0; j < fieldVal.NumField(); j++ {
				nestedField := nestedTyp.Field(j)
				nestedTag := nestedField.Tag.Get("mapstructure")
				if nestedTag != "" {
					viper.BindEnv(nestedTag)
				}
			}
		}
	}
	slog.Debug("Environment variables bound", "config", c)
}

// LoadConfig reads the REELER_* environment variables and applies defaults.
// The result is not validated yet; callers merge in the command line values
// and then call Validate.
func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("REELER_QUALITY", "best")
	viper.SetDefault("REELER_CONCURRENCY", 1)

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	slog.Debug("Loaded configuration", "config", cfg)

	return &cfg, nil
}

// Validate checks the fully merged configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if c.MaxFilesize != "" {
		if _, err := humanize.ParseBytes(c.MaxFilesize); err != nil {
			return fmt.Errorf("parse max filesize %q: %w", c.MaxFilesize, err)
		}
	}

	return nil
}
