package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nroh/slidegen/internal/collection"
)

func listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your presentations",
		Long: `List presentations for the local user. When the backend is unreachable
the last cached snapshot is shown instead.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			deps, cleanup, err := openDeps()
			if err != nil {
				fatalError(err)
			}
			defer cleanup()

			coll := collection.New(deps.client, deps.store, deps.id.UserID)
			if err := coll.Load(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v (showing cached list)\n", err)
			}

			items := coll.Items()
			if asJSON {
				printJSON(items)
				return
			}
			fmt.Print(deps.out.List(items))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
