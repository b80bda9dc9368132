package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// StorageConfig selects and parameterizes one storage backend. Only the
// fields the chosen backend needs have to be set.
type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	Path       string `mapstructure:"path"`
	DSN        string `mapstructure:"dsn"`
	Project    string `mapstructure:"project"`
	Collection string `mapstructure:"collection"`
}

// AppConfig is the web service configuration file shape.
type AppConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Profile         string        `mapstructure:"profile"`
	Credentials     string        `mapstructure:"credentials"`
	Storage         StorageConfig `mapstructure:"storage"`
}

// LoadApp reads the web service configuration from the specified file path.
func LoadApp(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("addr", ":8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("profile", DefaultProfile)
	v.SetDefault("storage.backend", "memory")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app config: %w", err)
	}
	return &cfg, nil
}
