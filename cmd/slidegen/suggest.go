package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nroh/slidegen/internal/api"
	"github.com/nroh/slidegen/internal/domain"
	"github.com/nroh/slidegen/internal/suggest"
)

func suggestCmd() *cobra.Command {
	var industry string
	var audience string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "suggest <topic>",
		Short: "Fetch AI topic suggestions",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t := strings.TrimSpace(args[0])
			if len(t) < suggest.MinTopicLength {
				fatalError(fmt.Errorf("topic must be at least %d characters", suggest.MinTopicLength))
			}

			deps, cleanup, err := openDeps()
			if err != nil {
				fatalError(err)
			}
			defer cleanup()

			topics, err := suggest.Once(context.Background(), deps.client, api.SuggestionRequest{
				Topic:      t,
				Industry:   industry,
				Audience:   audience,
				SlideCount: domain.DefaultSlideCount,
			}, suggest.DefaultRetries)
			if err != nil {
				fatalError(err)
			}

			if asJSON {
				printJSON(topics)
				return
			}
			fmt.Print(deps.out.Suggestions(topics))
		},
	}

	cmd.Flags().StringVar(&industry, "industry", "", "Industry context")
	cmd.Flags().StringVar(&audience, "audience", "", "Target audience")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
