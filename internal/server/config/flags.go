package config

import (
	"flag"

	"github.com/dmitrijs2005/gophaccounts/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-g string     gRPC health bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN, or "memory"
//	-s string     JWT HMAC secret key
//	-t duration   access token validity (e.g., "15m")
//	-b int        bcrypt cost
//	-o bool       allow biometric key overwrite (use -o=false to forbid)
//	-l string     log level
//	-f string     log format ("json" or "text")
//
// Arguments the set does not define (such as -c) are filtered out first.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity")
	fs.IntVar(&config.PasswordHashCost, "b", config.PasswordHashCost, "bcrypt cost")
	fs.BoolVar(&config.AllowBiometricOverwrite, "o", config.AllowBiometricOverwrite, "allow biometric key overwrite")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")

	return fs.Parse(flagx.Filter(fs, args))
}
