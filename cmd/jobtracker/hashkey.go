package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/jonathan/job-tracker/internal/config"
	"github.com/spf13/cobra"
)

func newHashKeyCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "hash-key",
		Short: "Hash an extension API key for EXTENSION_API_KEY_HASH",
		Long: `Hash an extension API key with bcrypt so the server can be configured with
EXTENSION_API_KEY_HASH instead of the plaintext key. Without --key the key is
read from the first line of stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if key == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read key from stdin: %w", err)
				}
				key = strings.TrimSpace(line)
			}

			hashConfig, err := config.NewKeyHashConfig()
			if err != nil {
				return err
			}
			hash, err := hashConfig.HashKey(key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "API key to hash (default: read stdin)")
	return cmd
}
