// Package tui is the interactive chat interface built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driving"
)

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// answerMsg carries the outcome of one query back into the update loop.
type answerMsg struct {
	answer  string
	sources []domain.Source
	err     error
}

// turn is one rendered exchange in the transcript.
type turn struct {
	query   string
	answer  string
	sources []domain.Source
	err     error
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	service   driving.RAGService
	sessionID string
	input     textinput.Model
	viewport  viewport.Model
	turns     []turn
	waiting   bool
	ready     bool
}

// New creates a chat model bound to a fresh session.
func New(service driving.RAGService) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your courses and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:   service,
		sessionID: service.CreateSession(),
		input:     ti,
		viewport:  vp,
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, spacer, input frame, status
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-4)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.turns = append(m.turns, turn{query: q})
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, m.ask(q)
		}

	case answerMsg:
		m.waiting = false
		last := &m.turns[len(m.turns)-1]
		last.answer = msg.answer
		last.sources = msg.sources
		last.err = msg.err
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// ask runs the query off the update loop and delivers the outcome as a
// message.
func (m Model) ask(query string) tea.Cmd {
	service, sessionID := m.service, m.sessionID
	return func() tea.Msg {
		answer, sources, err := service.Query(context.Background(), query, sessionID)
		return answerMsg{answer: answer, sources: sources, err: err}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Coursechat")
	transcript := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render("Enter to send, Esc to quit")
	if m.waiting {
		status = statusStyle.Render("Thinking...")
	}
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return "Ask a question to get started."
	}
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(userStyle.Render("You: ") + t.query)
		switch {
		case t.err != nil:
			b.WriteString("\n" + errorStyle.Render("Error: "+t.err.Error()))
		case t.answer == "":
			b.WriteString("\n" + botStyle.Render("Bot: ") + "...")
		default:
			b.WriteString("\n" + botStyle.Render("Bot: ") + t.answer)
			for _, src := range t.sources {
				line := "  " + src.DisplayText
				if src.URL != "" {
					line += fmt.Sprintf(" (%s)", src.URL)
				}
				b.WriteString("\n" + sourceStyle.Render(line))
			}
		}
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
