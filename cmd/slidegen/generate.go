package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nroh/slidegen/internal/api"
	"github.com/nroh/slidegen/internal/collection"
	"github.com/nroh/slidegen/internal/domain"
	"github.com/nroh/slidegen/internal/poller"
	"github.com/nroh/slidegen/internal/topic"
)

func generateCmd() *cobra.Command {
	var slides int
	var industry string
	var audience string
	var output string
	var noDownload bool
	var noWait bool

	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate a presentation and wait for it to finish",
		Long: `Submit a topic for generation, poll until the job reaches a terminal
state and download the resulting .pptx file.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t := strings.TrimSpace(args[0])
			if err := topic.Validate(t); err != nil {
				fatalError(err)
			}
			if !validSlideCount(slides) {
				fatalError(fmt.Errorf("slide count must be one of %v", domain.SlideCountChoices))
			}

			deps, cleanup, err := openDeps()
			if err != nil {
				fatalError(err)
			}
			defer cleanup()

			ctx := context.Background()
			resp, err := deps.client.Generate(ctx, api.GenerateRequest{
				SelectedTopic: t,
				UserID:        deps.id.UserID,
				ClientID:      deps.id.ClientID,
				Preferences: domain.Preferences{
					SlideCount: slides,
					Industry:   industry,
					Audience:   audience,
				},
			})
			if err != nil {
				fatalError(err)
			}

			fmt.Printf("Queued: %s\n", resp.PresentationID)
			if noWait {
				fmt.Printf("Check progress with 'slidegen list' or download later with 'slidegen download %s'\n",
					resp.PresentationID)
				return
			}

			final, err := waitForJob(deps, resp.PresentationID)
			if err != nil {
				fatalError(err)
			}

			if len(final.SlidesPreview) > 0 {
				fmt.Print(deps.out.Preview(final.SlidesPreview))
			}

			coll := collection.New(deps.client, deps.store, deps.id.UserID)
			coll.Load(ctx)
			coll.OnComplete(final)

			if noDownload {
				return
			}
			path := output
			if path == "" {
				path = fmt.Sprintf("presentation_%s.pptx", final.ID)
			}
			if err := saveDownload(ctx, deps, final.ID, path); err != nil {
				fatalError(err)
			}
			fmt.Printf("Saved %s\n", path)
		},
	}

	cmd.Flags().IntVarP(&slides, "slides", "s", domain.DefaultSlideCount, "Slide count (5, 10, 15, 20 or 25)")
	cmd.Flags().StringVar(&industry, "industry", "", "Industry context for content style")
	cmd.Flags().StringVar(&audience, "audience", "", "Target audience for content style")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default presentation_<id>.pptx)")
	cmd.Flags().BoolVar(&noDownload, "no-download", false, "Skip downloading the finished file")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Return immediately after queueing")
	return cmd
}

// waitForJob polls the job to a terminal state, printing each transition.
func waitForJob(deps *appDeps, id string) (*domain.Presentation, error) {
	watcher := poller.New(deps.client)
	defer watcher.Stop()

	done := make(chan error, 1)
	var final *domain.Presentation
	updates := watcher.Watch(id, poller.Callbacks{
		OnComplete: func(job *domain.Presentation) {
			final = job
			done <- nil
		},
		OnError: func(err error) {
			done <- err
		},
	})

	for update := range updates {
		fmt.Println(deps.out.StatusLine(&update))
	}
	if err := <-done; err != nil {
		return nil, err
	}
	return final, nil
}

// saveDownload streams the file to path, removing partial output on failure.
func saveDownload(ctx context.Context, deps *appDeps, id, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := deps.client.Download(ctx, id, f); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func validSlideCount(n int) bool {
	for _, choice := range domain.SlideCountChoices {
		if n == choice {
			return true
		}
	}
	return false
}
