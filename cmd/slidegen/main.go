// Package main provides the slidegen CLI entrypoint.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nroh/slidegen/internal/api"
	"github.com/nroh/slidegen/internal/collection"
	"github.com/nroh/slidegen/internal/config"
	"github.com/nroh/slidegen/internal/domain"
	"github.com/nroh/slidegen/internal/logging"
	"github.com/nroh/slidegen/internal/poller"
	"github.com/nroh/slidegen/internal/render"
	"github.com/nroh/slidegen/internal/storage"
	"github.com/nroh/slidegen/internal/suggest"
	"github.com/nroh/slidegen/internal/tui"
)

var (
	version = "0.1.0"
	pretty  = true
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "slidegen",
		Short: "AI presentation generator client",
		Long: `slidegen: generate PowerPoint presentations from a topic.

Usage modes:
  slidegen                   Start the interactive shell
  slidegen <command>         Run a single command (see below)

Use 'slidegen generate "<topic>"' to generate without the shell.
Use 'slidegen help' for the full command list.`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env := config.Get()
			logging.SetDebug(env.Debug)
			if env.NoColor || !term.IsTerminal(int(os.Stdout.Fd())) {
				pretty = false
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			runShell()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "Pretty print output")

	rootCmd.AddCommand(
		generateCmd(),
		listCmd(),
		deleteCmd(),
		suggestCmd(),
		statsCmd(),
		downloadCmd(),
		whoamiCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runShell wires the full dependency set and hands control to the TUI.
func runShell() {
	deps, cleanup, err := openDeps()
	if err != nil {
		fatalError(err)
	}
	defer cleanup()

	debouncer := suggest.New(deps.client)
	defer debouncer.Close()

	watcher := poller.New(deps.client)
	defer watcher.Stop()

	coll := collection.New(deps.client, deps.store, deps.id.UserID)

	err = tui.Run(tui.Deps{
		Identity:   deps.id,
		API:        deps.client,
		Collection: coll,
		Debouncer:  debouncer,
		Poller:     watcher,
	})
	if err != nil {
		fatalError(err)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the slidegen version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("slidegen %s\n", version)
		},
	}
}

// newClient builds the API client from the environment.
func newClient() *api.Client {
	env := config.Get()
	return api.New(env.APIBaseURL, api.WithHTTPClient(&http.Client{
		Timeout: env.HTTPTimeout,
	}))
}

// openStore opens the local database, creating the data directory first.
func openStore() (*storage.Store, error) {
	paths := config.GetPaths()
	if err := config.EnsureDir(paths.Home); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return storage.Open(paths.DBFile)
}

// appDeps is the per-command dependency bundle.
type appDeps struct {
	store  *storage.Store
	id     domain.Identity
	client *api.Client
	out    *render.Renderer
}
