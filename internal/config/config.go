package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var Solvers = []string{"backtracking", "gini"}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Config holds the runtime configuration of courseplan.
// Values are populated from .courseplan.yaml, COURSEPLAN_* env vars, and CLI flags
type Config struct {
	Catalog  string        `mapstructure:"catalog"`
	Store    string        `mapstructure:"store"`
	Solver   string        `mapstructure:"solver"`
	MaxSteps int           `mapstructure:"max_steps"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Watch    bool          `mapstructure:"watch"`
	Server   ServerConfig  `mapstructure:"server"`
	Log      LogConfig     `mapstructure:"log"`
}

// Init points viper at the config file (or .courseplan.yaml in the working or home directory) and the environment.
// A missing config file is not an error
func Init(file string) error {
	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName(".courseplan")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("COURSEPLAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && file == "" {
			return nil
		}
		return fmt.Errorf("cannot read config: %w", err)
	}
	return nil
}

// Load reads configuration from viper, applying built-in defaults for any values not set by config file,
// environment, or flags
func Load() (Config, error) {
	viper.SetDefault("catalog", "catalog.json")
	viper.SetDefault("store", "courseplan.db")
	viper.SetDefault("solver", "backtracking")
	viper.SetDefault("max_steps", 0)
	viper.SetDefault("timeout", 10*time.Second)
	viper.SetDefault("watch", false)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", false)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("cannot decode config: %w", err)
	}

	if !slices.Contains(Solvers, config.Solver) {
		return Config{}, fmt.Errorf("unknown solver %q, expected one of %v", config.Solver, Solvers)
	} else if config.MaxSteps < 0 {
		return Config{}, fmt.Errorf("max_steps must be non-negative: %d", config.MaxSteps)
	} else if config.Timeout < 0 {
		return Config{}, fmt.Errorf("timeout must be non-negative: %v", config.Timeout)
	}
	return config, nil
}
