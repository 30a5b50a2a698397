package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nroh/slidegen/internal/collection"
)

func deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a presentation",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := args[0]
			if !yes && !confirm(fmt.Sprintf("Delete presentation %s?", truncateStr(id, 12))) {
				fmt.Println("Aborted")
				return
			}

			deps, cleanup, err := openDeps()
			if err != nil {
				fatalError(err)
			}
			defer cleanup()

			ctx := context.Background()
			coll := collection.New(deps.client, deps.store, deps.id.UserID)
			coll.Load(ctx)

			if err := coll.Delete(ctx, id); err != nil {
				fatalError(err)
			}
			fmt.Printf("Deleted %s\n", id)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
