package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/llave/internal/flagx"
	"github.com/dmitrijs2005/llave/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "10s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	Addr           string         `json:"addr"`
	DBHost         string         `json:"db_host"`
	DBPort         int            `json:"db_port"`
	DBName         string         `json:"db_name"`
	DBUser         string         `json:"db_user"`
	DBPassword     string         `json:"db_password"`
	DBSSL          *bool          `json:"db_ssl"`
	ConnectTimeout timex.Duration `json:"connect_timeout"`
	QueryTimeout   timex.Duration `json:"query_timeout"`
	SecretKey      string         `json:"secret_key"`
	TokenValidity  timex.Duration `json:"token_validity"`
	TOTPIssuer     string         `json:"totp_issuer"`
	CookieSecure   *bool          `json:"cookie_secure"`
	CookieSameSite string         `json:"cookie_same_site"`
	CookieDomain   string         `json:"cookie_domain"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. Fields absent from the file keep
// their current values. If the file cannot be read or contains invalid
// JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.DBHost != "" {
		config.DBHost = c.DBHost
	}
	if c.DBPort != 0 {
		config.DBPort = c.DBPort
	}
	if c.DBName != "" {
		config.DBName = c.DBName
	}
	if c.DBUser != "" {
		config.DBUser = c.DBUser
	}
	if c.DBPassword != "" {
		config.DBPassword = c.DBPassword
	}
	if c.DBSSL != nil {
		config.DBSSL = *c.DBSSL
	}
	if c.ConnectTimeout.Duration != 0 {
		config.ConnectTimeout = c.ConnectTimeout.Duration
	}
	if c.QueryTimeout.Duration != 0 {
		config.QueryTimeout = c.QueryTimeout.Duration
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidity.Duration != 0 {
		config.TokenValidity = c.TokenValidity.Duration
	}
	if c.TOTPIssuer != "" {
		config.TOTPIssuer = c.TOTPIssuer
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.CookieSameSite != "" {
		config.CookieSameSite = c.CookieSameSite
	}
	if c.CookieDomain != "" {
		config.CookieDomain = c.CookieDomain
	}
}
