package main

import (
	"fmt"
	"strings"

	cliparser "github.com/capnajax/cli-parser"
	"github.com/spf13/viper"
)

// EnvPrefix scopes the environment variables read as engine configuration.
const EnvPrefix = "CLIPARSE"

// engineConfig controls how the registry is built, independently of the
// option schema. List values given through the environment are comma
// separated.
type engineConfig struct {
	Schema   string   `mapstructure:"schema"`
	Truthy   []string `mapstructure:"truthy"`
	Falsey   []string `mapstructure:"falsey"`
	Engine   string   `mapstructure:"engine"`
	LogLevel string   `mapstructure:"log_level"`
}

// loadEngineConfig reads flags, CLIPARSE_* variables, the optional config
// file and defaults, in that order of precedence.
func loadEngineConfig(v *viper.Viper, cfgFile string) (engineConfig, error) {
	v.SetDefault("schema", "")
	v.SetDefault("truthy", cliparser.DefaultTruthy)
	v.SetDefault("falsey", cliparser.DefaultFalsey)
	v.SetDefault("engine", "expr")
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return engineConfig{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var cfg engineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return engineConfig{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c engineConfig) registryOptions() []cliparser.Option {
	return []cliparser.Option{
		cliparser.WithTruthy(c.Truthy...),
		cliparser.WithFalsey(c.Falsey...),
	}
}
