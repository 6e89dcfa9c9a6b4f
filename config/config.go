package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Driver string
		URL    string
	}
	Server struct {
		Port int
	}
	Navigation struct {
		// OrderPolicy is "strict" or "resort", see navigation.OrderPolicy.
		OrderPolicy string
	}
	Log struct {
		Level string
		Dir   string
	}
}

// LoadConfig reads config.yaml from the working directory or ./config.
// Environment variables prefixed KBNAV_ override file values.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".", "./config")
}

// LoadConfigFrom is LoadConfig with explicit search paths. A missing file
// leaves the defaults in place.
func LoadConfigFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("kbnav")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Default values
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "kbnav.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("navigation.orderpolicy", "strict")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
