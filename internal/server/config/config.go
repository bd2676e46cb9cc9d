// Package config handles configuration for the auth server, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the auth server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx), or "memory" to run without a
//     database. Memory mode loses all state on restart; use it for
//     development only.
//   - SecretKey: HMAC secret for signing access tokens. Do not use the test
//     default in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token
//     lifetimes.
//   - EmailCodeValidityDuration: verification code lifetime.
//   - AdminEmails: addresses that register with the admin role.
//   - SMTPHost / SMTPPort / SMTPUser / SMTPPassword / SMTPFrom: outgoing
//     mail settings.
//   - DevBypassEmail: skip mail delivery and return codes in API responses.
type Config struct {
	EndpointAddr                 string
	DatabaseDSN                  string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	EmailCodeValidityDuration    time.Duration
	AdminEmails                  []string
	SMTPHost                     string
	SMTPPort                     int
	SMTPUser                     string
	SMTPPassword                 string
	SMTPFrom                     string
	DevBypassEmail               bool
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.DatabaseDSN = "memory"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.RefreshTokenValidityDuration = 336 * time.Hour
	c.EmailCodeValidityDuration = 10 * time.Minute
	c.AdminEmails = nil
	c.SMTPHost = "localhost"
	c.SMTPPort = 587
	c.SMTPFrom = "noreply@localhost"
	c.DevBypassEmail = true
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
