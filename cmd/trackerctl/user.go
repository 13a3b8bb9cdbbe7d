package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type userCreated struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserCreateCmd(a))
	return cmd
}

func newUserCreateCmd(a *app) *cobra.Command {
	var (
		email         string
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a user directly in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				if password != "" {
					return errors.New("--password and --password-stdin are mutually exclusive")
				}
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password from stdin: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			ctx, cancel := a.context(cmd)
			defer cancel()

			accounts, closeFn, err := a.deps.openAccounts(ctx, a.DatabaseURL, a.CredentialScheme)
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := accounts.Register(ctx, email, password)
			if err != nil {
				return err
			}

			return a.writeOut(cmd, fmt.Sprintf("created user %d (%s)", user.ID, user.Email), userCreated{
				ID:    user.ID,
				Email: user.Email,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (visible in process listings; prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from the first line of stdin")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
