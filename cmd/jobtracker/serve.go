package main

import (
	"fmt"

	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the HTTP server used by the browser extension.

Requires DATABASE_URL, JWT_SECRET, DEFAULT_USER_ID and either
EXTENSION_API_KEY or EXTENSION_API_KEY_HASH.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			databaseURL := v.GetString("database-url")
			if databaseURL == "" {
				return fmt.Errorf("DATABASE_URL environment variable is required")
			}

			srv, err := server.New(server.Config{
				Port:        v.GetInt("port"),
				DatabaseURL: databaseURL,
				Migrate:     v.GetBool("migrate"),
			})
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			return srv.Start()
		},
	}

	cmd.Flags().Int("port", 8080, "Port to listen on (env PORT)")
	cmd.Flags().Bool("migrate", false, "Apply the database schema before serving")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("migrate", cmd.Flags().Lookup("migrate"))
	_ = v.BindEnv("port", "JOBTRACKER_PORT", "PORT")
	return cmd
}

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			databaseURL := v.GetString("database-url")
			if databaseURL == "" {
				return fmt.Errorf("DATABASE_URL environment variable is required")
			}

			database, err := db.Connect(cmd.Context(), databaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			if err := database.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
			return nil
		},
	}
}
