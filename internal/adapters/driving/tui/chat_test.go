package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driving"
)

type fakeRAG struct {
	answer      string
	sources     []domain.Source
	err         error
	lastQuery   string
	lastSession string
}

var _ driving.RAGService = (*fakeRAG)(nil)

func (f *fakeRAG) AddCourseDocument(_ context.Context, _ string) (*domain.Course, int) {
	return nil, 0
}

func (f *fakeRAG) AddCourseFolder(_ context.Context, _ string, _ bool) (int, int) {
	return 0, 0
}

func (f *fakeRAG) Query(_ context.Context, text, sessionID string) (string, []domain.Source, error) {
	f.lastQuery = text
	f.lastSession = sessionID
	return f.answer, f.sources, f.err
}

func (f *fakeRAG) CreateSession() string { return "tui-session" }

func (f *fakeRAG) CourseAnalytics(_ context.Context) (domain.CourseAnalytics, error) {
	return domain.CourseAnalytics{}, nil
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func TestNew_StartsSession(t *testing.T) {
	m := New(&fakeRAG{})

	assert.Equal(t, "tui-session", m.sessionID)
}

func TestView_NotReadyBeforeFirstResize(t *testing.T) {
	m := New(&fakeRAG{})

	assert.Equal(t, "Loading...", m.View())
}

func TestUpdate_WindowSizeMakesReady(t *testing.T) {
	m := sized(New(&fakeRAG{}))

	view := m.View()
	assert.Contains(t, view, "Coursechat")
	assert.Contains(t, view, "Enter to send")
}

func TestUpdate_EnterSubmitsQuery(t *testing.T) {
	service := &fakeRAG{answer: "the answer", sources: []domain.Source{{DisplayText: "Test Course - Lesson 1"}}}
	m := sized(New(service))
	m.input.SetValue("what is retrieval?")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	assert.True(t, m.waiting)
	assert.Contains(t, m.View(), "Thinking...")
	require.NotNil(t, cmd)

	// Run the command and feed its message back in.
	msg := cmd()
	answer, ok := msg.(answerMsg)
	require.True(t, ok)
	assert.Equal(t, "the answer", answer.answer)
	assert.Equal(t, "what is retrieval?", service.lastQuery)
	assert.Equal(t, "tui-session", service.lastSession)

	updated, _ = m.Update(msg)
	m = updated.(Model)

	assert.False(t, m.waiting)
	transcript := m.renderTranscript()
	assert.Contains(t, transcript, "what is retrieval?")
	assert.Contains(t, transcript, "the answer")
	assert.Contains(t, transcript, "Test Course - Lesson 1")
}

func TestUpdate_EnterIgnoresEmptyInput(t *testing.T) {
	m := sized(New(&fakeRAG{}))
	m.input.SetValue("   ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	assert.False(t, m.waiting)
	assert.Nil(t, cmd)
}

func TestUpdate_QueryErrorShownInTranscript(t *testing.T) {
	service := &fakeRAG{err: errors.New("backend down")}
	m := sized(New(service))
	m.input.SetValue("q")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.NotNil(t, cmd)

	updated, _ = m.Update(cmd())
	m = updated.(Model)

	assert.Contains(t, m.renderTranscript(), "backend down")
}

func TestUpdate_QuitKeys(t *testing.T) {
	m := sized(New(&fakeRAG{}))

	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc} {
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd, "key %v should quit", key)
		assert.Equal(t, tea.Quit(), cmd())
	}
}
