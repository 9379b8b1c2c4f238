// This file defines the configuration structure for the application.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port         int `mapstructure:"port"`
	ScanInterval int `mapstructure:"scan_interval"` // minutes, 0 disables the scheduled sync
	Database     struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Library struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"library"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")

	// Environment variable overrides, e.g. BOOKSHELF_LIBRARY_PATH
	// overrides the `library.path` key.
	viper.SetEnvPrefix("BOOKSHELF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("port", 8080)
	viper.SetDefault("scan_interval", 60)
	viper.SetDefault("database.path", "./bookshelf.db")
	viper.SetDefault("library.path", "./books")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults and environment overrides
		} else {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
