package main

import (
	"errors"

	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server"
	"github.com/spf13/cobra"
)

var errMissingDSN = errors.New("database DSN is required (--dsn or DATABASE_URL)")

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.DatabaseDSN == "" {
				return errMissingDSN
			}

			cmd.Println("Running migrations...")
			db, _, err := server.OpenStore(cmd.Context(), opts.DatabaseDSN, logging.Discard())
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			cmd.Println("Migrations completed successfully")
			return nil
		},
	}
}
