package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/lulemo/habitlock/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN, or "memory"
//	-s string   token HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-e int      email code validity, minutes
//	-m string   comma-separated admin email allow-list
//	-x bool     dev bypass: skip mail delivery, return codes in responses
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers in minutes and then converted to
// time.Duration values. SMTP settings have no flags; set them in the JSON
// config file.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-e", "-m", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")
	emailCodeValidityDuration := fs.Int("e", int(config.EmailCodeValidityDuration.Minutes()), "email_code_validity_duration (in minutes)")

	adminEmails := fs.String("m", strings.Join(config.AdminEmails, ","), "comma-separated admin emails")
	fs.BoolVar(&config.DevBypassEmail, "x", config.DevBypassEmail, "dev bypass email delivery")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.EmailCodeValidityDuration = time.Duration(*emailCodeValidityDuration) * time.Minute

	if *adminEmails == "" {
		config.AdminEmails = nil
	} else {
		config.AdminEmails = strings.Split(*adminEmails, ",")
	}
}
