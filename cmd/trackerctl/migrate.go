package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexarq/taskmanager/internal/repository"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	for _, direction := range []repository.MigrationDirection{
		repository.MigrateUp,
		repository.MigrateDown,
		repository.MigrateStatus,
	} {
		cmd.AddCommand(newMigrateDirectionCmd(a, direction))
	}

	return cmd
}

func newMigrateDirectionCmd(a *app, direction repository.MigrationDirection) *cobra.Command {
	short := map[repository.MigrationDirection]string{
		repository.MigrateUp:     "Apply all pending migrations",
		repository.MigrateDown:   "Roll back the most recent migration",
		repository.MigrateStatus: "Print the applied state of each migration",
	}[direction]

	return &cobra.Command{
		Use:   string(direction),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			if err := a.deps.migrate(ctx, a.DatabaseURL, direction); err != nil {
				return err
			}
			return a.writeOut(cmd, fmt.Sprintf("migrate %s: ok", direction), map[string]string{
				"direction": string(direction),
				"result":    "ok",
			})
		},
	}
}
