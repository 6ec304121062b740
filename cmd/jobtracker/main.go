// Package main provides the jobtracker command: the extension API server
// plus CLI tools for scraping job pages and LinkedIn profiles.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonathan/job-tracker/internal/observability"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultServerURL = "http://localhost:8080"

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "jobtracker",
		Short: "Job tracker API server and page extraction tools",
		Long: `jobtracker serves the API used by the browser extension and extracts job
postings and LinkedIn profiles from the command line.

Examples:
  # Run the API server, applying the schema first
  jobtracker serve --migrate

  # Extract jobs from several postings and save them
  jobtracker scrape job -u https://boards.greenhouse.io/acme/jobs/1 -u https://jobs.lever.co/acme/2 --save

  # Scrape every mutual connection of a profile and sync them
  jobtracker scrape profile -u https://www.linkedin.com/in/jane-doe --all-connections --sync`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.jobtracker.yaml)")
	flags.BoolP("verbose", "v", false, "log progress to stderr")
	flags.String("server", defaultServerURL, "API server base URL")
	flags.String("api-key", "", "extension API key (env EXTENSION_API_KEY)")
	flags.String("token", "", "bearer token for the jobs API (env JOBTRACKER_TOKEN)")

	for _, name := range []string{"config", "verbose", "server", "api-key", "token"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(
		newServeCmd(v),
		newMigrateCmd(v),
		newScrapeCmd(v),
		newMatchCmd(),
		newMergeCmd(v),
		newTokenCmd(v),
		newHashKeyCmd(),
		newValidateCmd(),
	)
	return rootCmd
}

func initConfig(v *viper.Viper) error {
	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".jobtracker")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("JOBTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api-key", "JOBTRACKER_API_KEY", "EXTENSION_API_KEY")
	_ = v.BindEnv("database-url", "JOBTRACKER_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("user-id", "JOBTRACKER_USER_ID", "DEFAULT_USER_ID")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// verbosePrinter returns a stderr printer when verbose, or nil.
func verbosePrinter(cmd *cobra.Command, v *viper.Viper) *observability.Printer {
	if !v.GetBool("verbose") {
		return nil
	}
	return observability.NewPrinter(cmd.ErrOrStderr())
}

// logInfo prints progress to stderr when verbose.
func logInfo(cmd *cobra.Command, v *viper.Viper, format string, args ...any) {
	if v.GetBool("verbose") {
		fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
	}
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
