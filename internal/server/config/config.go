// Package config handles configuration for the server component,
// including defaults, environment variables, JSON overlay, and
// command-line flags (applied in that order).
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds runtime settings for the Llave server.
//
// Fields:
//   - Addr: bind address for the HTTP endpoint.
//   - DBHost/DBPort/DBName/DBUser/DBPassword/DBSSL: PostgreSQL connection
//     settings. DBName is validated by the store initializer before any
//     CREATE DATABASE runs.
//   - ConnectTimeout: bound on the initial connect/ping during bootstrap.
//   - QueryTimeout: bound on each bootstrap/health statement.
//   - SecretKey: HMAC secret for signing session tokens (HS256). Do not use
//     the test default in prod; rotating it invalidates every issued token.
//   - TokenValidity: session token lifetime (also the cookie Max-Age).
//   - TOTPIssuer: issuer embedded into otpauth:// provisioning URIs.
//   - CookieSecure/CookieSameSite/CookieDomain: session cookie attributes.
type Config struct {
	Addr           string        `env:"ADDR"`
	DBHost         string        `env:"DB_HOST"`
	DBPort         int           `env:"DB_PORT"`
	DBName         string        `env:"DB_NAME"`
	DBUser         string        `env:"DB_USER"`
	DBPassword     string        `env:"DB_PASSWORD"`
	DBSSL          bool          `env:"DB_SSL"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT"`
	QueryTimeout   time.Duration `env:"DB_QUERY_TIMEOUT"`
	SecretKey      string        `env:"JWT_SECRET"`
	TokenValidity  time.Duration `env:"TOKEN_TTL"`
	TOTPIssuer     string        `env:"TOTP_ISSUER"`
	CookieSecure   bool          `env:"COOKIE_SECURE"`
	CookieSameSite string        `env:"COOKIE_SAME_SITE"`
	CookieDomain   string        `env:"COOKIE_DOMAIN"`
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DBHost = "localhost"
	c.DBPort = 5432
	c.DBName = "llave_auth"
	c.DBUser = "postgres"
	c.DBPassword = "postgres"
	c.DBSSL = false
	c.ConnectTimeout = 10 * time.Second
	c.QueryTimeout = 30 * time.Second
	c.SecretKey = "dev-secret-change-in-production"
	c.TokenValidity = 7 * 24 * time.Hour
	c.TOTPIssuer = "Llave Authentication"
	c.CookieSecure = false
	c.CookieSameSite = "lax"
	c.CookieDomain = ""
}

func (c *Config) sslMode() string {
	if c.DBSSL {
		return "require"
	}
	return "disable"
}

func (c *Config) dsnFor(database string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword),
		c.DBHost, c.DBPort, database, c.sslMode())
}

// DSN returns the pgx connection string for the application database.
func (c *Config) DSN() string {
	return c.dsnFor(c.DBName)
}

// AdminDSN returns the connection string for the administrative "postgres"
// database, used when the application database may not exist yet.
func (c *Config) AdminDSN() string {
	return c.dsnFor("postgres")
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from environment variables, an optional JSON file and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
