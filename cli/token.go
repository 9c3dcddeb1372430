package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/pastelaria-api/utils"
)

func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		username string
		role     string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token",
		Long:  "Print a bearer token signed with JWT_SECRET, for scripts and kitchen displays.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			if username == "" {
				username = cfg.AdminUsername
			}
			if ttl <= 0 {
				ttl = cfg.TokenTTL
			}

			token, err := utils.GenerateToken([]byte(cfg.JWTSecret), username, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "token subject (default ADMIN_USERNAME)")
	cmd.Flags().StringVar(&role, "role", "admin", "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "lifetime (default TOKEN_TTL)")
	return cmd
}
