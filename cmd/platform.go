package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archivemark/urlcanon/pkg/urlcanon"
)

func newPlatformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platform [url...]",
		Short: "Print the platform label of each URL",
		Long: `Prints the platform label (twitter, youtube or generic) of each URL
argument, one per line. With no arguments, URLs are read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachURL(cmd, args, func(raw string) {
				fmt.Fprintln(cmd.OutOrStdout(), urlcanon.PlatformOf(raw))
			})
		},
	}
}
