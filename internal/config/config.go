package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config represents the complete application configuration. Values come
// from an optional TOML file and environment variables; the environment
// wins so deployments can override the file per instance.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Storage  StorageConfig  `toml:"storage"`
	Auth     AuthConfig     `toml:"auth"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port string `toml:"port"`
}

// DatabaseConfig contains PostgreSQL settings
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StorageConfig contains MinIO object storage settings
type StorageConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
}

// AuthConfig contains token and identity provider settings
type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	TokenTTLSeconds int    `toml:"token_ttl_seconds"`
	JWKSURL         string `toml:"jwks_url"`
}

// Load reads configuration from the TOML file at path (skipped when
// path is empty or the file is absent) and applies environment
// overrides on top.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Port: "8080"},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		Auth:   AuthConfig{TokenTTLSeconds: 3600},
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database url is required (set DATABASE_URL)")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required (set JWT_SECRET)")
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")
	setString(&c.Storage.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Storage.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Storage.SecretKey, "MINIO_SECRET_KEY")
	setBool(&c.Storage.UseSSL, "MINIO_USE_SSL")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setInt(&c.Auth.TokenTTLSeconds, "TOKEN_TTL_SECONDS")
	setString(&c.Auth.JWKSURL, "JWKS_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
