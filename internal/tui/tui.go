// Package tui provides the interactive slidegen shell using Bubble Tea.
//
// The shell composes the topic form, suggestion bubbles, the live generation
// status panel, the presentation list and the usage sidebar. Every failure
// lands in a single dismissible error banner; the shell stays interactive
// after any error.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nroh/slidegen/internal/api"
	"github.com/nroh/slidegen/internal/collection"
	"github.com/nroh/slidegen/internal/domain"
	"github.com/nroh/slidegen/internal/poller"
	"github.com/nroh/slidegen/internal/suggest"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Foreground(lipgloss.Color("196")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)
)

// statsInterval is how often the usage sidebar refreshes.
const statsInterval = 30 * time.Second

// focus identifies which form field receives keystrokes.
type focus int

const (
	focusTopic focus = iota
	focusIndustry
	focusAudience
)

// Deps are the wired components the shell drives.
type Deps struct {
	Identity   domain.Identity
	API        *api.Client
	Collection *collection.Collection
	Debouncer  *suggest.Debouncer
	Poller     *poller.Poller
}

// Model is the main shell model.
type Model struct {
	deps Deps

	// Form state
	topicInput    textinput.Model
	industryInput textinput.Model
	audienceInput textinput.Model
	focused       focus
	slideCount    int
	selectedTopic string

	// Suggestion state
	suggestions  []string
	suggestIdx   int // highlighted suggestion, -1 when none
	suggestTopic string

	// Generation state
	generating bool
	jobID      string
	current    *domain.Presentation

	// List state
	items   []domain.Summary
	listIdx int

	// Sidebar
	stats *domain.Stats

	// Shell state
	banner   string
	notice   string
	spinner  spinner.Model
	width    int
	height   int
	ready    bool
	quitting bool

	// events carries poller callbacks and other async notifications into
	// the update loop.
	events chan tea.Msg
}

// Messages
type (
	statsMsg        *domain.Stats
	statsTickMsg    time.Time
	listLoadedMsg   struct{ err error }
	suggestMsg      suggest.Result
	generateMsg     struct {
		resp *api.GenerateResponse
		err  error
	}
	pollUpdateMsg   domain.Presentation
	pollCompleteMsg struct{ job *domain.Presentation }
	pollErrorMsg    struct{ err error }
	deleteMsg       struct {
		id  string
		err error
	}
	downloadMsg struct {
		path string
		err  error
	}
)

// New creates the shell model around its wired dependencies.
func New(deps Deps) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Type a topic to see AI suggestions..."
	ti.CharLimit = 100
	ti.Width = 60
	ti.Focus()

	ind := textinput.New()
	ind.Placeholder = "Industry (optional)"
	ind.CharLimit = 50
	ind.Width = 30

	aud := textinput.New()
	aud.Placeholder = "Audience (optional)"
	aud.CharLimit = 50
	aud.Width = 30

	return Model{
		deps:          deps,
		topicInput:    ti,
		industryInput: ind,
		audienceInput: aud,
		slideCount:    domain.DefaultSlideCount,
		suggestIdx:    -1,
		events:        make(chan tea.Msg, 16),
	}
}

// Run starts the interactive shell and blocks until it exits.
func Run(deps Deps) error {
	p := tea.NewProgram(New(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init starts the background loops.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadList(m.deps.Collection),
		fetchStats(m.deps.API, m.deps.Identity.UserID),
		statsTick(),
		listenSuggestions(m.deps.Debouncer.Results()),
		listenEvents(m.events),
	)
}
