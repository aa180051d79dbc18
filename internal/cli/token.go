package cli

import (
	"fmt"
	"time"

	"storefront/internal/auth"
	"storefront/internal/middleware"

	"github.com/spf13/cobra"
)

// 開発用：/admin を叩くためのトークンを発行
func newTokenCommand(deps Deps) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin access token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			iss, err := auth.NewIssuer(cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			raw, exp, err := iss.Issue(subject, role, deps.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			cmd.PrintErrf("expires at %s\n", exp.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "catalogctl", "token subject")
	cmd.Flags().StringVar(&role, "role", middleware.RoleAdmin, "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "token lifetime")
	return cmd
}
