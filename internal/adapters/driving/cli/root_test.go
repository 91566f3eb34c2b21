package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driving"
)

// fakeRAG is a scriptable driving.RAGService for command tests.
type fakeRAG struct {
	course       *domain.Course
	docChunks    int
	folderCourse int
	folderChunks int
	folderClear  bool
	answer       string
	sources      []domain.Source
	queryErr     error
	lastQuery    string
	lastSession  string
	analytics    domain.CourseAnalytics
}

var _ driving.RAGService = (*fakeRAG)(nil)

func (f *fakeRAG) AddCourseDocument(_ context.Context, _ string) (*domain.Course, int) {
	return f.course, f.docChunks
}

func (f *fakeRAG) AddCourseFolder(_ context.Context, _ string, clearExisting bool) (int, int) {
	f.folderClear = clearExisting
	return f.folderCourse, f.folderChunks
}

func (f *fakeRAG) Query(_ context.Context, text, sessionID string) (string, []domain.Source, error) {
	f.lastQuery = text
	f.lastSession = sessionID
	if f.queryErr != nil {
		return "", nil, f.queryErr
	}
	return f.answer, f.sources, nil
}

func (f *fakeRAG) CreateSession() string { return "session-1" }

func (f *fakeRAG) CourseAnalytics(_ context.Context) (domain.CourseAnalytics, error) {
	return f.analytics, nil
}

// execute runs the root command with args against an injected fake
// service and returns the captured output.
func execute(t *testing.T, fake *fakeRAG, args ...string) (string, error) {
	t.Helper()

	oldService := ragService
	ragService = fake
	t.Cleanup(func() { ragService = oldService })

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return buf.String(), err
}
