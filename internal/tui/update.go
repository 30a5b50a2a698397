package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nroh/slidegen/internal/api"
	"github.com/nroh/slidegen/internal/domain"
	"github.com/nroh/slidegen/internal/topic"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			m.deps.Poller.Stop()
			m.deps.Debouncer.Close()
			return m, tea.Quit

		case "esc":
			m.banner = ""
			m.notice = ""
			return m, nil

		case "tab":
			m.setFocus((m.focused + 1) % 3)
			return m, nil

		case "shift+tab":
			m.setFocus((m.focused + 2) % 3)
			return m, nil

		case "up":
			if len(m.suggestions) > 0 && m.suggestIdx > -1 {
				m.suggestIdx--
			}
			return m, nil

		case "down":
			if len(m.suggestions) > 0 && m.suggestIdx < len(m.suggestions)-1 {
				m.suggestIdx++
			}
			return m, nil

		case "enter":
			if m.suggestIdx >= 0 && m.suggestIdx < len(m.suggestions) {
				// Pick the highlighted suggestion.
				m.selectedTopic = m.suggestions[m.suggestIdx]
				m.topicInput.SetValue(m.selectedTopic)
				m.topicInput.CursorEnd()
				m.suggestIdx = -1
				m.banner = ""
				return m, nil
			}
			return m.submitGenerate()

		case "ctrl+r":
			m.deps.Debouncer.Refresh()
			return m, nil

		case "ctrl+l":
			cmds = append(cmds, loadList(m.deps.Collection))
			return m, tea.Batch(cmds...)

		case "ctrl+n":
			if m.listIdx < len(m.items)-1 {
				m.listIdx++
			}
			return m, nil

		case "ctrl+p":
			if m.listIdx > 0 {
				m.listIdx--
			}
			return m, nil

		case "ctrl+d":
			if m.listIdx >= 0 && m.listIdx < len(m.items) {
				return m, deletePresentation(m.deps.Collection, m.items[m.listIdx].ID)
			}
			return m, nil

		case "ctrl+o":
			if m.listIdx >= 0 && m.listIdx < len(m.items) {
				item := m.items[m.listIdx]
				if item.Status == domain.StatusCompleted {
					return m, download(m.deps.API, item.ID)
				}
				m.banner = "Presentation is not completed yet"
			}
			return m, nil

		case "ctrl+x":
			if m.jobID != "" {
				m.deps.Poller.Stop()
				m.jobID = ""
				m.current = nil
				m.generating = false
			}
			return m, nil

		case "ctrl+up":
			m.bumpSlideCount(1)
			return m, nil

		case "ctrl+down":
			m.bumpSlideCount(-1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case listLoadedMsg:
		if msg.err != nil {
			// Last-known state stays on screen; only the banner changes.
			m.banner = msg.err.Error()
		}
		m.items = m.deps.Collection.Items()
		m.clampListIdx()

	case statsMsg:
		if msg != nil {
			m.stats = msg
		}

	case statsTickMsg:
		cmds = append(cmds, fetchStats(m.deps.API, m.deps.Identity.UserID), statsTick())

	case suggestMsg:
		if msg.Err != nil {
			m.banner = "Failed to load suggestions: " + msg.Err.Error()
		} else {
			m.suggestions = msg.Suggestions
			m.suggestTopic = msg.Topic
			m.suggestIdx = -1
		}
		cmds = append(cmds, listenSuggestions(m.deps.Debouncer.Results()))

	case generateMsg:
		if msg.err != nil {
			m.generating = false
			m.banner = msg.err.Error()
		} else {
			m.jobID = msg.resp.PresentationID
			m.current = nil
			m.watchJob(m.jobID)
		}

	case pollUpdateMsg:
		update := domain.Presentation(msg)
		m.current = &update
		cmds = append(cmds, listenEvents(m.events))

	case pollCompleteMsg:
		m.generating = false
		m.current = msg.job
		m.items = m.deps.Collection.Items()
		m.clampListIdx()
		m.notice = "Presentation ready! ctrl+o downloads it."
		m.listIdx = 0
		cmds = append(cmds,
			listenEvents(m.events),
			fetchStats(m.deps.API, m.deps.Identity.UserID),
		)

	case pollErrorMsg:
		m.generating = false
		m.jobID = ""
		m.banner = msg.err.Error()
		cmds = append(cmds, listenEvents(m.events))

	case deleteMsg:
		if msg.err != nil {
			m.banner = msg.err.Error()
		} else {
			m.items = m.deps.Collection.Items()
			m.clampListIdx()
			m.notice = "Presentation deleted"
		}

	case downloadMsg:
		if msg.err != nil {
			m.banner = "Failed to download presentation"
		} else {
			m.notice = "Saved " + msg.path
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Route remaining input to the form fields and feed the debouncer.
	before := m.topicInput.Value()
	var cmd tea.Cmd
	m.topicInput, cmd = m.topicInput.Update(msg)
	cmds = append(cmds, cmd)
	m.industryInput, cmd = m.industryInput.Update(msg)
	cmds = append(cmds, cmd)
	m.audienceInput, cmd = m.audienceInput.Update(msg)
	cmds = append(cmds, cmd)

	if after := m.topicInput.Value(); after != before {
		// Typing over a picked suggestion clears the selection.
		if m.selectedTopic != "" && m.selectedTopic != after {
			m.selectedTopic = ""
		}
		m.deps.Debouncer.SetInput(after)
	}
	m.deps.Debouncer.SetContext(m.industryInput.Value(), m.audienceInput.Value())

	return m, tea.Batch(cmds...)
}

// submitGenerate validates locally and fires the generate request. Nothing
// touches the network when validation fails.
func (m Model) submitGenerate() (tea.Model, tea.Cmd) {
	if m.generating {
		return m, nil
	}

	value := m.topicInput.Value()
	if err := topic.Validate(value); err != nil {
		m.banner = err.Error()
		return m, nil
	}
	if m.selectedTopic == "" || m.selectedTopic != value {
		m.banner = topic.ErrNotSuggested.Error()
		return m, nil
	}

	m.generating = true
	m.banner = ""
	m.notice = ""
	req := api.GenerateRequest{
		SelectedTopic: value,
		UserID:        m.deps.Identity.UserID,
		ClientID:      m.deps.Identity.ClientID,
		Preferences: domain.Preferences{
			SlideCount: m.slideCount,
			Industry:   m.industryInput.Value(),
			Audience:   m.audienceInput.Value(),
		},
	}
	return m, generate(m.deps.API, req)
}

func (m *Model) setFocus(f focus) {
	m.focused = f
	m.topicInput.Blur()
	m.industryInput.Blur()
	m.audienceInput.Blur()
	switch f {
	case focusTopic:
		m.topicInput.Focus()
	case focusIndustry:
		m.industryInput.Focus()
	case focusAudience:
		m.audienceInput.Focus()
	}
}

func (m *Model) bumpSlideCount(dir int) {
	for i, n := range domain.SlideCountChoices {
		if n == m.slideCount {
			next := i + dir
			if next >= 0 && next < len(domain.SlideCountChoices) {
				m.slideCount = domain.SlideCountChoices[next]
			}
			return
		}
	}
	m.slideCount = domain.DefaultSlideCount
}

func (m *Model) clampListIdx() {
	if m.listIdx >= len(m.items) {
		m.listIdx = len(m.items) - 1
	}
	if m.listIdx < 0 {
		m.listIdx = 0
	}
}
