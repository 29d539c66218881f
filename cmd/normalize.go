package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archivemark/urlcanon/pkg/urlcanon"
)

func newNormalizeCmd() *cobra.Command {
	var showPlatform bool

	cmd := &cobra.Command{
		Use:   "normalize [url...]",
		Short: "Print the canonical form of each URL",
		Long: `Prints the canonical form of each URL argument, one per line.
With no arguments, URLs are read from stdin, one per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachURL(cmd, args, func(raw string) {
				if showPlatform {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n",
						urlcanon.Normalize(raw), urlcanon.PlatformOf(raw))
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), urlcanon.Normalize(raw))
			})
		},
	}

	cmd.Flags().BoolVar(&showPlatform, "platform", false, "append the platform label to each line")

	return cmd
}
