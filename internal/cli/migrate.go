package cli

import (
	"context"
	"fmt"

	"skill-swap/internal/config"
	"skill-swap/internal/database/migration"
	dbpostgres "skill-swap/internal/database/postgres"
	"skill-swap/migrations"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Apply every V<n>__name.sql migration not yet recorded in schema_migrations.

Uses the embedded migrations unless --dir points at a directory on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.LoadConfig()
			if err != nil {
				return err
			}
			return runMigrate(cmd.Context(), opts, cfg, dir, cmd)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (defaults to the embedded set)")
	return cmd
}

func runMigrate(ctx context.Context, opts *RootOptions, cfg config.Config, dir string, cmd *cobra.Command) error {
	if !cfg.Database.Enabled() {
		return errDatabaseRequired
	}

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	r := migration.Runner{Dir: dir, Logger: opts.Logger}
	if dir == "" {
		r.FS = migrations.FS
	}
	applied, err := r.Run(ctx, db.SQLDB())
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	}
	for _, m := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "applied V%d %s\n", m.Version, m.Name)
	}
	return nil
}
