package main

import (
	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

type options struct {
	DatabaseDSN      string `env:"DATABASE_URL"`
	PasswordHashCost int    `env:"BCRYPT_COST"`
}

// NewRootCmd creates the root command. Flags default to the server's
// environment variables.
func NewRootCmd() *cobra.Command {
	opts := &options{PasswordHashCost: bcrypt.DefaultCost}

	cmd := &cobra.Command{
		Use:          "accountctl",
		Short:        "Administer the gophaccounts account store",
		SilenceUsage: true,
	}

	// env errors surface when a subcommand runs
	envErr := env.Parse(opts)

	cmd.PersistentFlags().StringVar(&opts.DatabaseDSN, "dsn", opts.DatabaseDSN, `database DSN, or "memory" (env DATABASE_URL)`)
	cmd.PersistentFlags().IntVar(&opts.PasswordHashCost, "bcrypt-cost", opts.PasswordHashCost, "bcrypt cost for new passwords (env BCRYPT_COST)")

	cmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return envErr
	}

	cmd.AddCommand(NewMigrateCmd(opts))
	cmd.AddCommand(NewCreateCmd(opts))

	return cmd
}
