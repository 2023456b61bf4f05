package main

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabaseURL  string `env:"DATABASE_URL"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"stock.db"`
	SessionKey   string `env:"SESSION_KEY"`
	OIDCIssuer   string `env:"OIDC_ISSUER"`
	OIDCClientID string `env:"OIDC_CLIENT_ID"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sessionKey decodes SESSION_KEY, falling back to a random key when it is
// missing or unusable. A random key means sessions do not survive restarts.
func (c *Config) sessionKey() []byte {
	if c.SessionKey != "" {
		key, err := base64.StdEncoding.DecodeString(c.SessionKey)
		if err == nil && len(key) >= 32 {
			return key
		}
		slog.Warn("SESSION_KEY is not valid base64 or shorter than 32 bytes, generating a random key")
	} else {
		slog.Warn("SESSION_KEY not set, generating a random key; sessions will be invalid after a restart")
	}
	key := make([]byte, 32)
	rand.Read(key)
	return key
}
