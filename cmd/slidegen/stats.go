package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show today's usage against the daily limit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			deps, cleanup, err := openDeps()
			if err != nil {
				fatalError(err)
			}
			defer cleanup()

			stats, err := deps.client.UserStats(context.Background(), deps.id.UserID)
			if err != nil {
				fatalError(err)
			}

			if asJSON {
				printJSON(stats)
				return
			}
			fmt.Print(deps.out.Stats(stats))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
