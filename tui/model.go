// Package tui renders a chat.Orchestrator in the terminal. It only reads state
// through a subscription and only writes through orchestrator methods.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ibreez3/pixel-ai/chat"
)

type stateMsg chat.State

type subscriptionClosedMsg struct{}

type submittedMsg struct{ accepted bool }

type Model struct {
	orch    *chat.Orchestrator
	states  <-chan chat.State
	cancel  func()
	input   textinput.Model
	spinner spinner.Model
	state   chat.State
	width   int
}

func New(orch *chat.Orchestrator) Model {
	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.CharLimit = 4000
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Points

	states, cancel := orch.Subscribe()
	return Model{
		orch:    orch,
		states:  states,
		cancel:  cancel,
		input:   ti,
		spinner: s,
		state:   orch.Snapshot(),
		width:   80,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForState(m.states))
}

func waitForState(ch <-chan chat.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{}
		}
		return stateMsg(s)
	}
}

// submit runs off the update loop; Orchestrator.Submit blocks for the whole
// request and state changes arrive through the subscription meanwhile.
func submit(orch *chat.Orchestrator, text string) tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{accepted: orch.Submit(context.Background(), text)}
	}
}

func (m Model) canSubmit() bool {
	return !m.state.Busy && m.state.KeyStatus.Configured
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = chat.State(msg)
		return m, waitForState(m.states)

	case subscriptionClosedMsg, submittedMsg:
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancel()
			return m, tea.Quit
		case tea.KeyEnter:
			text := m.input.Value()
			if strings.TrimSpace(text) == "" || !m.canSubmit() {
				return m, nil
			}
			m.input.Reset()
			return m, submit(m.orch, text)
		case tea.KeyTab:
			// m.state lags behind the subscription, so ask the session.
			cat := m.orch.Catalog()
			next := cat.Fast.ID
			if m.orch.Snapshot().Model == cat.Fast.ID {
				next = cat.Balanced.ID
			}
			_ = m.orch.SetModel(next)
			return m, nil
		case tea.KeyCtrlT:
			m.orch.ToggleTheme()
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.orch.SetInput(after)
	}
	return m, cmd
}

func (m Model) View() string {
	st := stylesFor(m.state.Theme)
	var b strings.Builder

	b.WriteString(st.header.Render("PIXEL AI"))
	b.WriteString("\n")
	b.WriteString(st.model.Render("MODEL: " + m.modelName()))
	b.WriteString("\n")
	status := st.statusBad
	if m.state.KeyStatus.Configured {
		status = st.statusOK
	}
	b.WriteString(status.Render(m.state.KeyStatus.Message))
	b.WriteString("\n\n")

	bubbleWidth := max(m.width*4/5, 20)
	if len(m.state.Messages) == 0 {
		b.WriteString(st.welcome.Render("WELCOME TO PIXEL AI"))
		b.WriteString("\n")
	}
	for _, msg := range m.state.Messages {
		if msg.Role == chat.RoleUser {
			bubble := st.user.Width(bubbleWidth).Render(msg.Content)
			b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Right, bubble))
		} else {
			b.WriteString(st.assistant.Width(bubbleWidth).Render(msg.Content))
		}
		b.WriteString("\n")
	}

	switch m.state.Phase {
	case chat.PhaseSubmitting:
		b.WriteString(m.spinner.View() + " thinking\n")
	case chat.PhaseRetrying:
		b.WriteString(m.spinner.View() + " retrying with " + m.modelName() + "\n")
	}
	if m.state.Error != "" {
		b.WriteString(st.errBox.Render(m.state.Error))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.canSubmit() {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(st.hint.Render("(input disabled)"))
	}
	b.WriteString("\n")
	b.WriteString(st.hint.Render("enter send • tab model • ctrl+t theme • esc quit"))
	return b.String()
}

func (m Model) modelName() string {
	if info, ok := m.orch.Catalog().Lookup(m.state.Model); ok {
		return fmt.Sprintf("%s (%s)", info.Name, info.Description)
	}
	return m.state.Model
}
