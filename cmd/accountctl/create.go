package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server"
	"github.com/dmitrijs2005/gophaccounts/internal/server/auth"
	"github.com/dmitrijs2005/gophaccounts/internal/server/config"
	"github.com/dmitrijs2005/gophaccounts/internal/server/services"
	"github.com/dmitrijs2005/gophaccounts/internal/server/validation"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errPasswordMismatch = errors.New("passwords do not match")

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// NewCreateCmd creates the create subcommand.
func NewCreateCmd(opts *options) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Long:  `Create an account with the given email. The password is read twice from the terminal without echo.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.DatabaseDSN == "" {
				return errMissingDSN
			}

			email, err := validation.Email(email)
			if err != nil {
				return err
			}

			password, err := promptPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := logging.Discard()

			db, m, err := server.OpenStore(ctx, opts.DatabaseDSN, logger)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			svc := services.NewAccountService(db, m, auth.NewBcryptHasher(opts.PasswordHashCost), nil, &config.Config{}, logger)

			account, err := svc.Register(ctx, email, password)
			if err != nil {
				return err
			}

			cmd.Println(account.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func promptPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "Enter password: ")
	first, err := readPassword()
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword()
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errPasswordMismatch
	}

	password := string(first)
	if err := validation.Password(password); err != nil {
		return "", err
	}

	return password, nil
}
