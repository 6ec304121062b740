package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTokenCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the jobs API",
		Long: `Issue a signed bearer token for /api/extension/jobs. The token is signed with
JWT_SECRET and expires after JWT_EXPIRATION_HOURS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rawUserID := v.GetString("user-id")
			if rawUserID == "" {
				return fmt.Errorf("--user-id or DEFAULT_USER_ID is required")
			}
			userID, err := uuid.Parse(rawUserID)
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}

			jwtConfig, err := config.NewJWTConfig()
			if err != nil {
				return fmt.Errorf("failed to load JWT config: %w", err)
			}

			token, err := server.NewJWTService(jwtConfig).GenerateToken(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().String("user-id", "", "user the token acts for (env DEFAULT_USER_ID)")
	_ = v.BindPFlag("user-id", cmd.Flags().Lookup("user-id"))
	return cmd
}
