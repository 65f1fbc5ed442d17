package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// BptreeidxConfig is the CLI's YAML configuration, loaded with viper the
// same way the rest of the stack's tools load theirs: one flat config file,
// mapstructure-tagged, no environment overlay.
type BptreeidxConfig struct {
	Index struct {
		Dir          string `mapstructure:"dir"`
		PageSize     int    `mapstructure:"page_size"`
		PoolCapacity int    `mapstructure:"pool_capacity"`
	} `mapstructure:"index"`
}

// LoadConfig reads and unmarshals a YAML config file at path.
func LoadConfig(path string) (*BptreeidxConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg BptreeidxConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Index.PageSize == 0 {
		cfg.Index.PageSize = 8192
	}
	return &cfg, nil
}
