package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// SMTPConfig carries the outbound mail settings.
type SMTPConfig struct {
	Host        string `env:"HOST" envDefault:"localhost"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	FromName    string `env:"FROM_NAME" envDefault:"Account Service"`
	FromAddress string `env:"FROM_ADDRESS" envDefault:"no-reply@localhost"`
}

// Config is the service configuration, loaded from the environment.
// It also satisfies the library Config interface so the same struct
// drives token minting, extraction, and cookie handling.
type Config struct {
	IsDev bool `env:"DEV" envDefault:"false"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8572"`

	// AppDomain doubles as the token issuer and the login link host.
	AppDomain string `env:"APP_DOMAIN" envDefault:"http://localhost:8572"`
	AppPath   string `env:"APP_PATH" envDefault:"/"`

	CookieName string `env:"AUTH_COOKIE_NAME" envDefault:"atk"`
	HeaderName string `env:"AUTH_HEADER_NAME" envDefault:"X-Auth-Token"`
	ContextKey string `env:"AUTH_CONTEXT_KEY" envDefault:"auth"`

	LoginTokenTTL   time.Duration `env:"LOGIN_TOKEN_TTL" envDefault:"10m"`
	SessionTokenTTL time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"2160h"`
	LoginCooldown   time.Duration `env:"LOGIN_COOLDOWN" envDefault:"10m"`

	DBPath string `env:"DB_PATH" envDefault:"file:tokengated.db?cache=shared"`

	// RedisAddr switches the token registration store from sqlite to
	// Redis when set.
	RedisAddr string `env:"REDIS_ADDR"`

	PrivateKeyPath string `env:"RSA_PRIVATE_KEY_PATH"`
	PublicKeyPath  string `env:"RSA_PUBLIC_KEY_PATH"`

	SMTP SMTPConfig `envPrefix:"SMTP_"`
}

// LoadConfig reads .env when present, then parses the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

func (c *Config) GetIssuer() string { return c.AppDomain }

func (c *Config) GetAppPath() string {
	if c.IsDev {
		return "/"
	}
	return c.AppPath
}

func (c *Config) GetCookieName() string             { return c.CookieName }
func (c *Config) GetHeaderName() string             { return c.HeaderName }
func (c *Config) GetContextKey() string             { return c.ContextKey }
func (c *Config) GetLoginTokenTTL() time.Duration   { return c.LoginTokenTTL }
func (c *Config) GetSessionTokenTTL() time.Duration { return c.SessionTokenTTL }
func (c *Config) GetLoginCooldown() time.Duration   { return c.LoginCooldown }
