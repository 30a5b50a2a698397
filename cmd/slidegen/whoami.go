package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func whoamiCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the local client and user identifiers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			deps, cleanup, err := openDeps()
			if err != nil {
				fatalError(err)
			}
			defer cleanup()

			if asJSON {
				printJSON(deps.id)
				return
			}
			fmt.Print(deps.out.Identity(deps.id))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
