package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nroh/slidegen/internal/api"
	"github.com/nroh/slidegen/internal/collection"
	"github.com/nroh/slidegen/internal/domain"
	"github.com/nroh/slidegen/internal/poller"
	"github.com/nroh/slidegen/internal/suggest"
)

// loadList refreshes the collection from the backend.
func loadList(coll *collection.Collection) tea.Cmd {
	return func() tea.Msg {
		err := coll.Load(context.Background())
		return listLoadedMsg{err: err}
	}
}

// fetchStats grabs a usage snapshot.
func fetchStats(client *api.Client, userID string) tea.Cmd {
	return func() tea.Msg {
		stats, err := client.UserStats(context.Background(), userID)
		if err != nil {
			// Stats are decorative; a failed refresh is not banner-worthy.
			return statsMsg(nil)
		}
		return statsMsg(stats)
	}
}

func statsTick() tea.Cmd {
	return tea.Tick(statsInterval, func(t time.Time) tea.Msg {
		return statsTickMsg(t)
	})
}

// generate submits the generation request.
func generate(client *api.Client, req api.GenerateRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.Generate(context.Background(), req)
		return generateMsg{resp: resp, err: err}
	}
}

// deletePresentation removes an entry through the collection, backend first.
func deletePresentation(coll *collection.Collection, id string) tea.Cmd {
	return func() tea.Msg {
		err := coll.Delete(context.Background(), id)
		return deleteMsg{id: id, err: err}
	}
}

// download streams the generated file into the working directory.
func download(client *api.Client, id string) tea.Cmd {
	return func() tea.Msg {
		path := fmt.Sprintf("presentation_%s.pptx", id)
		f, err := os.Create(path)
		if err != nil {
			return downloadMsg{err: err}
		}
		defer f.Close()

		if _, err := client.Download(context.Background(), id, f); err != nil {
			os.Remove(path)
			return downloadMsg{err: err}
		}
		return downloadMsg{path: path}
	}
}

// listenSuggestions re-arms after every delivered result.
func listenSuggestions(ch <-chan suggest.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return suggestMsg(r)
	}
}

// listenEvents pumps poller callbacks into the update loop.
func listenEvents(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// watchJob starts the poller for a job and bridges its update stream and
// terminal callbacks onto the shell's event channel.
func (m *Model) watchJob(jobID string) {
	events := m.events
	coll := m.deps.Collection

	updates := m.deps.Poller.Watch(jobID, poller.Callbacks{
		OnComplete: func(job *domain.Presentation) {
			coll.OnComplete(job)
			events <- pollCompleteMsg{job: job}
		},
		OnError: func(err error) {
			events <- pollErrorMsg{err: err}
		},
	})

	go func() {
		for update := range updates {
			events <- pollUpdateMsg(update)
		}
	}()
}
