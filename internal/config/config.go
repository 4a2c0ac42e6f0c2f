package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	JWT      JWTConfig      `mapstructure:"jwt"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI            string        `mapstructure:"uri"`
	Name           string        `mapstructure:"name"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// ArchiveConfig configures the optional S3-compatible store for raw plan
// document blobs. Archiving is disabled when the bucket name is empty.
type ArchiveConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether document archiving is configured.
func (c ArchiveConfig) Enabled() bool {
	return c.BucketName != ""
}

// JWTConfig defines the bearer-token validation settings. Token issuance is
// handled by an external auth service; this app only verifies signatures.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variable handling, e.g. database.uri -> DATABASE_URI
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "orktrack")
	viper.SetDefault("database.connect_timeout", "10s")
	viper.SetDefault("archive.use_ssl", true)

	err = viper.ReadInConfig()
	// A missing config file is fine; env vars and defaults may cover everything.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
