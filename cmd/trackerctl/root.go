package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexarq/taskmanager/internal/auth"
	"github.com/nexarq/taskmanager/internal/config"
	"github.com/nexarq/taskmanager/internal/repository"
	"github.com/nexarq/taskmanager/internal/service"
)

// app carries persistent flag values shared by subcommands.
type app struct {
	DatabaseURL      string
	CredentialScheme string
	Format           string
	Timeout          time.Duration

	deps deps
}

// deps are the side-effecting operations, replaceable in tests.
type deps struct {
	migrate      func(ctx context.Context, databaseURL string, direction repository.MigrationDirection) error
	openAccounts func(ctx context.Context, databaseURL, scheme string) (*service.AccountService, func(), error)
}

func defaultDeps() deps {
	return deps{
		migrate:      repository.Migrate,
		openAccounts: openAccounts,
	}
}

func openAccounts(ctx context.Context, databaseURL, schemeName string) (*service.AccountService, func(), error) {
	scheme, err := auth.SchemeFor(schemeName)
	if err != nil {
		return nil, nil, err
	}

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewAccountService(repo, auth.NewVerifier(repo, scheme), nil, logger, nil)
	return svc, repo.Close, nil
}

func newRootCmd(d deps) *cobra.Command {
	a := &app{deps: d}

	cmd := &cobra.Command{
		Use:          "trackerctl",
		Short:        "Operator commands for the task tracker",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Apply pending schema migrations
  trackerctl migrate up

  # Create a user without going through the API
  trackerctl user create --email ops@example.com --password-stdin < secret.txt
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			if a.DatabaseURL == "" {
				return errors.New("database URL is required (--database-url or DATABASE_URL)")
			}
			switch a.Format {
			case "plain", "json":
			default:
				return fmt.Errorf("unknown format %q", a.Format)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.DatabaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	cmd.PersistentFlags().StringVar(&a.CredentialScheme, "credential-scheme", envOr("CREDENTIAL_SCHEME", config.CredentialSchemeArgon2), "Credential scheme: argon2 or plaintext")
	cmd.PersistentFlags().StringVar(&a.Format, "format", "plain", "Output format: plain or json")
	cmd.PersistentFlags().DurationVar(&a.Timeout, "timeout", 30*time.Second, "Overall command timeout")

	cmd.AddCommand(newMigrateCmd(a))
	cmd.AddCommand(newUserCmd(a))

	return cmd
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.Timeout)
}

// writeOut prints v as JSON, or plain when the format is plain.
func (a *app) writeOut(cmd *cobra.Command, plain string, v any) error {
	if a.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), plain)
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
