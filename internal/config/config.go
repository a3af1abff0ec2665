package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PostgresConfig struct {
	URL string `yaml:"url"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // memory | file | redis | postgres
	Dir     string `yaml:"dir"`     // file backend only
	// EncryptionKey enables AES-GCM encryption of persisted snapshots when
	// set. Must be 16, 24 or 32 bytes.
	EncryptionKey string         `yaml:"encryption_key"`
	Redis         RedisConfig    `yaml:"redis"`
	Postgres      PostgresConfig `yaml:"postgres"`
}

type TelegramOTPConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type BackendConfig struct {
	Provider        string            `yaml:"provider"` // simulated | openai | gemini
	OpenAIKey       string            `yaml:"openai_key"`
	GeminiKey       string            `yaml:"gemini_key"`
	GeminiURL       string            `yaml:"gemini_url"`
	Model           string            `yaml:"model"`
	ConcurrentLimit int               `yaml:"concurrent_limit"` // max concurrent reply calls
	OTPChannel      string            `yaml:"otp_channel"`      // simulated | telegram
	Telegram        TelegramOTPConfig `yaml:"telegram"`
}

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
	Backend BackendConfig `yaml:"backend"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "./data"
	}
	if cfg.Backend.Provider == "" {
		cfg.Backend.Provider = "simulated"
	}
	if cfg.Backend.OTPChannel == "" {
		cfg.Backend.OTPChannel = "simulated"
	}
	if cfg.Backend.Model == "" {
		cfg.Backend.Model = "gpt-4o-mini"
	}
	if cfg.Backend.ConcurrentLimit <= 0 {
		cfg.Backend.ConcurrentLimit = 16
	}

	// Minimal validation
	switch cfg.Storage.Backend {
	case "memory", "file":
	case "redis":
		if cfg.Storage.Redis.URL == "" {
			return nil, errors.New("storage.redis.url is required")
		}
	case "postgres":
		if cfg.Storage.Postgres.URL == "" {
			return nil, errors.New("storage.postgres.url is required")
		}
	default:
		return nil, fmt.Errorf("unknown storage.backend %q", cfg.Storage.Backend)
	}
	if cfg.Auth.JWTSecret == "" {
		if !dev {
			return nil, errors.New("auth.jwt_secret is required")
		}
		cfg.Auth.JWTSecret = "dev-secret-do-not-use"
	}
	if cfg.Backend.Provider == "openai" && cfg.Backend.OpenAIKey == "" {
		return nil, errors.New("backend.openai_key is required for the openai provider")
	}
	if cfg.Backend.Provider == "gemini" && cfg.Backend.GeminiKey == "" {
		return nil, errors.New("backend.gemini_key is required for the gemini provider")
	}
	if cfg.Backend.OTPChannel == "telegram" && cfg.Backend.Telegram.Token == "" {
		return nil, errors.New("backend.telegram.token is required for the telegram otp channel")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
