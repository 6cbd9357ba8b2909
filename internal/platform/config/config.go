package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg holds the configuration loaded at startup.
var Cfg *Config

// Config mirrors the layout of config.yaml.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
	Backup    BackupConfig    `mapstructure:"backup"`
	Contact   ContactConfig   `mapstructure:"contact"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig selects the relational store and the optional Redis instance.
type DatabaseConfig struct {
	Driver string      `mapstructure:"driver"`
	DSN    string      `mapstructure:"dsn"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig is optional: an empty Address disables every Redis-backed feature.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	// Secret signs session tokens. A random key is generated when empty,
	// which invalidates all sessions on restart.
	Secret         string        `mapstructure:"secret"`
	TokenTTL       time.Duration `mapstructure:"tokenTTL"`
	BootstrapOwner OwnerConfig   `mapstructure:"bootstrapOwner"`
}

// OwnerConfig is the account created when the user table is empty.
type OwnerConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type RateLimitConfig struct {
	Login string `mapstructure:"login"`
}

type BackupConfig struct {
	Dir      string        `mapstructure:"dir"`
	Interval time.Duration `mapstructure:"interval"`
}

// ContactConfig drives date formatting and the messaging link heuristic.
type ContactConfig struct {
	CountryPrefix string `mapstructure:"countryPrefix"`
	Region        string `mapstructure:"region"`
	Timezone      string `mapstructure:"timezone"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "sales.db")
	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("auth.tokenTTL", 12*time.Hour)

	v.SetDefault("rateLimit.login", "10-M")

	v.SetDefault("backup.dir", "")
	v.SetDefault("backup.interval", 30*time.Minute)

	v.SetDefault("contact.countryPrefix", "549")
	v.SetDefault("contact.region", "AR")
	v.SetDefault("contact.timezone", "America/Argentina/Buenos_Aires")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig reads config.yaml from ./config or the working directory.
// A missing file is not an error: defaults and environment variables
// (DATABASE_DSN, AUTH_SECRET, ...) are enough to run the service.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c ContactConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
