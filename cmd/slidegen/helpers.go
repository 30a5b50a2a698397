package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nroh/slidegen/internal/identity"
	"github.com/nroh/slidegen/internal/render"
)

// openDeps opens the store, resolves the local identity and builds the API
// client. The returned cleanup closes the store.
func openDeps() (*appDeps, func(), error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	id, err := identity.NewStore(store).Load(context.Background())
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	deps := &appDeps{
		store:  store,
		id:     id,
		client: newClient(),
		out:    render.New(pretty),
	}
	return deps, func() { store.Close() }, nil
}

// fatalError prints the error and exits.
func fatalError(err error) {
	fmt.Fprintln(os.Stderr, render.New(pretty).Error(err))
	os.Exit(1)
}

// confirm asks a y/N question on stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// printJSON pretty-prints any value as JSON.
func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatalError(err)
	}
	fmt.Println(string(data))
}

// truncateStr truncates string to n characters with ellipsis.
func truncateStr(s string, n int) string {
	if n < 4 {
		n = 4
	}
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
