package cli

import (
	"fmt"
	"strings"
	"time"

	"skill-swap/internal/database/seeder"
	"skill-swap/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var (
		userID string
		email  string
		demo   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for a user",
		Long: `Mint a bearer access token signed with JWT_ACCESS_SECRET.

Pick the user with --user <uuid> or one of the demo users with --demo <email prefix>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, mail, err := resolveTokenUser(userID, email, demo)
			if err != nil {
				return err
			}

			cfg, err := opts.LoadConfig()
			if err != nil {
				return err
			}
			expires := cfg.JWT.AccessExpiresIn
			if ttl > 0 {
				expires = ttl
			}

			svc := jwt.NewHMACService(cfg.JWT.AccessSecret, "", expires, 0, jwt.WithIssuer(cfg.App.AppName))
			tok, err := svc.GenerateAccessToken(id, mail)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&demo, "demo", "", "demo user, matched on the email local part (ana, ben, chen, dara)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_ACCESS_EXPIRES_IN)")
	cmd.MarkFlagsMutuallyExclusive("user", "demo")
	return cmd
}

func resolveTokenUser(userID, email, demo string) (uuid.UUID, string, error) {
	if demo != "" {
		for _, du := range seeder.DemoUsers {
			local, _, _ := strings.Cut(du.User.Email, "@")
			if strings.EqualFold(local, strings.TrimSpace(demo)) {
				return du.User.ID, du.User.Email, nil
			}
		}
		return uuid.Nil, "", fmt.Errorf("unknown demo user %q", demo)
	}

	if userID == "" {
		return uuid.Nil, "", fmt.Errorf("one of --user or --demo is required")
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid --user: %w", err)
	}
	return id, email, nil
}
