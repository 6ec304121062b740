package main

import (
	"fmt"

	"github.com/jonathan/job-tracker/internal/names"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <name> <name>",
		Short: "Report whether two names refer to the same person",
		Example: `  jobtracker match "Dr. Jane Smith, PhD" "jane smith"
  jobtracker match "Robert J. Lee" "Robert Lee"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := struct {
				A           string `json:"a"`
				B           string `json:"b"`
				NormalizedA string `json:"normalized_a"`
				NormalizedB string `json:"normalized_b"`
				Match       bool   `json:"match"`
			}{
				A:           args[0],
				B:           args[1],
				NormalizedA: names.Normalize(args[0]),
				NormalizedB: names.Normalize(args[1]),
				Match:       names.NamesMatch(args[0], args[1]),
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newMergeCmd(v *viper.Viper) *cobra.Command {
	var existing, incoming []string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge incoming connection names into an existing list",
		Long: `Merge reconciles a batch of scraped connection names with a stored list the
same way the sync-connections endpoint does, without touching the database.
Repeat --existing and --incoming once per name; names may contain commas.`,
		Example: `  jobtracker merge --existing "Bob Lee, PhD" --incoming "bob lee" --incoming "Raj Patel"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(incoming) == 0 {
				return fmt.Errorf("at least one --incoming name is required")
			}
			result := names.Merge(existing, incoming)
			if printer := verbosePrinter(cmd, v); printer != nil {
				printer.PrintMerge(result)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringArrayVar(&existing, "existing", nil, "stored connection name (repeatable)")
	cmd.Flags().StringArrayVar(&incoming, "incoming", nil, "scraped connection name (repeatable)")
	return cmd
}
