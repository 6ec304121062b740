package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/job-tracker/internal/schemas"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var schemaPath, jsonPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a JSON record against a schema",
		Long:  "Validates a job or profile record JSON file against a JSON Schema.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(jsonPath); os.IsNotExist(err) {
				return fmt.Errorf("JSON file not found: %s", jsonPath)
			}

			validator, err := schemas.Load(schemaPath)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(jsonPath)
			if err != nil {
				return fmt.Errorf("failed to read JSON file: %w", err)
			}

			if err := validator.ValidateBytes(data); err != nil {
				var validationErr *schemas.ValidationError
				if errors.As(err, &validationErr) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Validation failed")
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", schemas.JobRecordSchema, "Path to JSON Schema file")
	cmd.Flags().StringVarP(&jsonPath, "json", "j", "", "Path to JSON file to validate (required)")
	if err := cmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}
	return cmd
}
