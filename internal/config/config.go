package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ods/mywellness2tcx/internal/distance"
	"github.com/ods/mywellness2tcx/internal/tcx"
)

const (
	AppName   = "mywellness2tcx"
	EnvPrefix = "MW2TCX"
)

type Config struct {
	DBPath             string  `mapstructure:"db_path"`
	APIAddr            string  `mapstructure:"api_addr"`
	Record             bool    `mapstructure:"record"`
	Strategy           string  `mapstructure:"strategy"`
	Tolerance          float64 `mapstructure:"tolerance"`
	Sport              string  `mapstructure:"sport"`
	Namespace          string  `mapstructure:"namespace"`
	ExtensionNamespace string  `mapstructure:"extension_namespace"`
	LogLevel           string  `mapstructure:"log_level"`
}

// Load reads defaults, an optional mywellness2tcx.yaml from the working
// directory or $HOME/.config/mywellness2tcx, and MW2TCX_* environment
// variables, in increasing order of precedence.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName(AppName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", AppName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_path", AppName+".db")
	v.SetDefault("api_addr", ":8222")
	v.SetDefault("record", false)
	v.SetDefault("strategy", string(distance.StrategyIntegrate))
	v.SetDefault("tolerance", distance.DefaultTolerance)
	v.SetDefault("sport", tcx.DefaultSport)
	v.SetDefault("namespace", tcx.DefaultNamespace)
	v.SetDefault("extension_namespace", tcx.DefaultExtensionNamespace)
	v.SetDefault("log_level", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := distance.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if c.Tolerance <= 0 || c.Tolerance >= 1 {
		return fmt.Errorf("tolerance must be between 0 and 1, got %v", c.Tolerance)
	}
	if c.Namespace == "" || c.ExtensionNamespace == "" {
		return fmt.Errorf("namespaces must not be empty")
	}
	return nil
}

// Namespaces returns the TCX namespaces to emit.
func (c Config) Namespaces() tcx.Namespaces {
	return tcx.Namespaces{
		Core:      c.Namespace,
		Extension: c.ExtensionNamespace,
	}
}
