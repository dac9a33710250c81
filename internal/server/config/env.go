package config

import "github.com/caarlos0/env/v11"

// ApplyEnv overlays values from environment variables named in the `env`
// struct tags. Variables that are unset leave the field untouched.
func ApplyEnv(cfg *Config) error {
	return env.Parse(cfg)
}
