package cli

import (
	"errors"
	"fmt"
	"strings"

	dbpostgres "skill-swap/internal/database/postgres"
	"skill-swap/internal/database/seeder"

	"github.com/spf13/cobra"
)

var errDatabaseRequired = errors.New("DB_HOST is not set; this command needs Postgres")

func NewSeedCommand(opts *RootOptions) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the skill catalogue and demo users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := selectSeeders(seeder.Defaults(), only)
			if err != nil {
				return err
			}

			cfg, err := opts.LoadConfig()
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled() {
				return errDatabaseRequired
			}

			db, err := dbpostgres.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer func() { _ = db.Close() }()

			if err := (seeder.Runner{Seeders: selected, Logger: opts.Logger}).Run(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d seeder(s)\n", len(selected))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "run only the named seeders (skills, demo_users)")
	return cmd
}

func selectSeeders(all []seeder.Seeder, only []string) ([]seeder.Seeder, error) {
	if len(only) == 0 {
		return all, nil
	}

	byName := make(map[string]seeder.Seeder, len(all))
	names := make([]string, 0, len(all))
	for _, s := range all {
		byName[s.Name()] = s
		names = append(names, s.Name())
	}

	out := make([]seeder.Seeder, 0, len(only))
	for _, n := range only {
		s, ok := byName[strings.TrimSpace(n)]
		if !ok {
			return nil, fmt.Errorf("unknown seeder %q (known: %s)", n, strings.Join(names, ", "))
		}
		out = append(out, s)
	}
	return out, nil
}
