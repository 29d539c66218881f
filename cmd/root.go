// Package cmd defines and implements the CLI commands for the urlcanon executable.
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urlcanon",
		Short: "Canonicalize URLs for archival deduplication.",
		Long: `urlcanon reduces URLs to a canonical form so that two links differing
only in tracking metadata (utm_*, fbclid, gclid, ...) compare equal. It knows
platform-specific rules for Twitter/X and YouTube and applies a generic
tracking-parameter denylist everywhere else.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (serve only)")

	cmd.AddCommand(
		newNormalizeCmd(),
		newMatchCmd(),
		newPlatformCmd(),
		newServeCmd(),
	)

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// forEachURL applies fn to each URL given as an argument, or, with no
// arguments, to each non-empty line read from stdin.
func forEachURL(cmd *cobra.Command, args []string, fn func(raw string)) error {
	if len(args) > 0 {
		for _, raw := range args {
			fn(raw)
		}
		return nil
	}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fn(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}
