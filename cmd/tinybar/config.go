package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinybar/tinybar/internal/model"
	"github.com/tinybar/tinybar/internal/sched"
)

// blockConfig is one block section from the config file. Blocks render
// in file order.
type blockConfig struct {
	Name      string `mapstructure:"name"`
	Instance  string `mapstructure:"instance"`
	Command   string `mapstructure:"command"`
	Interval  int64  `mapstructure:"interval"`
	Signal    int64  `mapstructure:"signal"`
	Color     string `mapstructure:"color"`
	Separator *bool  `mapstructure:"separator"` // nil = bar default (true)
}

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Verbose        bool          `mapstructure:"verbose"`
	CommandTimeout time.Duration `mapstructure:"command-timeout"`
	Blocks         []blockConfig `mapstructure:"blocks"`
	ConfigPath     string        `mapstructure:"-"` // not from config file
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("TINYBAR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("verbose", false)
	v.SetDefault("command-timeout", model.DefaultCommandTimeout)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "tinybar", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if err := validateBlocks(cfg.Blocks); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateBlocks(blocks []blockConfig) error {
	for i, b := range blocks {
		if b.Name == "" {
			return fmt.Errorf("block %d: name is required", i)
		}
		if b.Interval < 0 {
			return fmt.Errorf("block %d (%s): interval must not be negative", i, b.Name)
		}
		if b.Signal != 0 && b.Signal != sched.SigRefresh1 && b.Signal != sched.SigRefresh2 {
			return fmt.Errorf("block %d (%s): signal must be SIGUSR1 (%d) or SIGUSR2 (%d)",
				i, b.Name, sched.SigRefresh1, sched.SigRefresh2)
		}
	}
	return nil
}

// modelBlocks converts the config sections into status line templates,
// preserving file order.
func (c appConfig) modelBlocks() []model.Block {
	blocks := make([]model.Block, len(c.Blocks))
	for i, b := range c.Blocks {
		separator := true
		if b.Separator != nil {
			separator = *b.Separator
		}
		blocks[i] = model.Block{
			Name:      b.Name,
			Instance:  b.Instance,
			Command:   b.Command,
			Interval:  b.Interval,
			Signal:    b.Signal,
			Color:     b.Color,
			Separator: separator,
		}
	}
	return blocks
}
