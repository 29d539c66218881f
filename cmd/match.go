package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archivemark/urlcanon/pkg/urlcanon"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <url1> <url2>",
		Short: "Check whether two URLs reference the same content",
		Long: `Compares the canonical forms of two URLs. Exits 0 when they match
and 1 when they do not.`,
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c1, c2 := urlcanon.Normalize(args[0]), urlcanon.Normalize(args[1])
			if c1 == c2 {
				fmt.Fprintf(cmd.OutOrStdout(), "match: %s\n", c1)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "no match:\n  %s\n  %s\n", c1, c2)
			return errors.New("urls do not match")
		},
	}
	return cmd
}
