package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func downloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a finished presentation",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := args[0]

			deps, cleanup, err := openDeps()
			if err != nil {
				fatalError(err)
			}
			defer cleanup()

			path := output
			if path == "" {
				path = fmt.Sprintf("presentation_%s.pptx", id)
			}
			if err := saveDownload(context.Background(), deps, id, path); err != nil {
				fatalError(err)
			}
			fmt.Printf("Saved %s\n", path)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default presentation_<id>.pptx)")
	return cmd
}
