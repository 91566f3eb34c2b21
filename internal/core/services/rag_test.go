package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driven"
)

// fakeParser derives a course from the file name so folder tests can
// script distinct courses with plain temp files.
type fakeParser struct {
	failPaths map[string]bool
	parsed    []string
}

var _ driven.TranscriptParser = (*fakeParser)(nil)

func (p *fakeParser) ParseFile(path string) (*domain.Course, []domain.CourseChunk, error) {
	if p.failPaths[filepath.Base(path)] {
		return nil, nil, domain.ErrMalformedTranscript
	}
	p.parsed = append(p.parsed, filepath.Base(path))

	title := "Course " + filepath.Base(path)
	course := &domain.Course{Title: title, Lessons: []domain.Lesson{{Number: 0, Title: "Intro"}}}
	chunks := []domain.CourseChunk{
		{Content: "chunk one", CourseTitle: title, ChunkIndex: 0},
		{Content: "chunk two", CourseTitle: title, ChunkIndex: 1},
	}
	return course, chunks, nil
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}
}

func TestRAGService_AddCourseDocument(t *testing.T) {
	store := &fakeVectorStore{}
	rag := NewRAGService(&fakeParser{}, store, &scriptedLLM{}, 0)

	course, chunks := rag.AddCourseDocument(context.Background(), "/tmp/intro.txt")

	require.NotNil(t, course)
	assert.Equal(t, "Course intro.txt", course.Title)
	assert.Equal(t, 2, chunks)
	require.Len(t, store.added, 1)
	assert.Len(t, store.chunks, 2)
}

func TestRAGService_AddCourseDocument_ParseFailure(t *testing.T) {
	parser := &fakeParser{failPaths: map[string]bool{"bad.txt": true}}
	store := &fakeVectorStore{}
	rag := NewRAGService(parser, store, &scriptedLLM{}, 0)

	course, chunks := rag.AddCourseDocument(context.Background(), "/tmp/bad.txt")

	assert.Nil(t, course)
	assert.Zero(t, chunks)
	assert.Empty(t, store.added)
}

func TestRAGService_AddCourseFolder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.pdf", "notes.md")

	parser := &fakeParser{}
	store := &fakeVectorStore{}
	rag := NewRAGService(parser, store, &scriptedLLM{}, 0)

	courses, chunks := rag.AddCourseFolder(context.Background(), dir, false)

	assert.Equal(t, 2, courses)
	assert.Equal(t, 4, chunks)
	// notes.md is not a transcript extension.
	assert.NotContains(t, parser.parsed, "notes.md")
}

func TestRAGService_AddCourseFolder_SkipsExisting(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt")

	store := &fakeVectorStore{titles: []string{"Course a.txt"}}
	rag := NewRAGService(&fakeParser{}, store, &scriptedLLM{}, 0)

	courses, chunks := rag.AddCourseFolder(context.Background(), dir, false)

	assert.Zero(t, courses)
	assert.Zero(t, chunks)
	assert.Empty(t, store.added)
}

func TestRAGService_AddCourseFolder_ContinuesPastBadFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "bad.txt", "good.txt")

	parser := &fakeParser{failPaths: map[string]bool{"bad.txt": true}}
	rag := NewRAGService(parser, &fakeVectorStore{}, &scriptedLLM{}, 0)

	courses, _ := rag.AddCourseFolder(context.Background(), dir, false)

	assert.Equal(t, 1, courses)
}

func TestRAGService_AddCourseFolder_Clear(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt")

	store := &fakeVectorStore{titles: []string{"Course a.txt"}}
	rag := NewRAGService(&fakeParser{}, store, &scriptedLLM{}, 0)

	courses, _ := rag.AddCourseFolder(context.Background(), dir, true)

	assert.True(t, store.cleared)
	// After clearing, the previously known course is re-added.
	assert.Equal(t, 1, courses)
}

func TestRAGService_AddCourseFolder_MissingFolder(t *testing.T) {
	rag := NewRAGService(&fakeParser{}, &fakeVectorStore{}, &scriptedLLM{}, 0)

	courses, chunks := rag.AddCourseFolder(context.Background(), "/no/such/folder", false)

	assert.Zero(t, courses)
	assert.Zero(t, chunks)
}

func TestRAGService_Query(t *testing.T) {
	llm := &scriptedLLM{completions: []*driven.Completion{{Text: "the answer"}}}
	rag := NewRAGService(&fakeParser{}, &fakeVectorStore{}, llm, 0)

	sessionID := rag.CreateSession()
	answer, sources, err := rag.Query(context.Background(), "a question", sessionID)

	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	assert.Empty(t, sources)

	// The exchange is recorded and carried into the next query's system
	// instruction.
	llm.completions = append(llm.completions, &driven.Completion{Text: "again"})
	_, _, err = rag.Query(context.Background(), "follow up", sessionID)
	require.NoError(t, err)
	assert.Contains(t, llm.calls[1].system, "User: a question")
	assert.Contains(t, llm.calls[1].system, "Assistant: the answer")
}

func TestRAGService_Query_EmptySessionID(t *testing.T) {
	llm := &scriptedLLM{completions: []*driven.Completion{{Text: "ok"}}}
	rag := NewRAGService(&fakeParser{}, &fakeVectorStore{}, llm, 0)

	answer, _, err := rag.Query(context.Background(), "q", "")

	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
}

func TestRAGService_Query_ErrorSkipsSessionAppend(t *testing.T) {
	llm := &scriptedLLM{}
	rag := NewRAGService(&fakeParser{}, &fakeVectorStore{}, llm, 0)

	sessionID := rag.CreateSession()
	_, _, err := rag.Query(context.Background(), "q", sessionID)
	require.Error(t, err)

	assert.Equal(t, "", rag.sessions.History(sessionID))
}

func TestRAGService_Query_SourcesFromToolRound(t *testing.T) {
	llm := &scriptedLLM{completions: []*driven.Completion{
		{ToolCalls: []driven.ToolCall{{
			ID:        "call_1",
			Name:      "search_course_content",
			Arguments: map[string]any{"query": "retrieval"},
		}}},
		{Text: "grounded"},
	}}
	store := &fakeVectorStore{
		results: domain.SearchResults{
			Documents: []string{"doc"},
			Metadata:  []domain.ChunkMetadata{{CourseTitle: "Test Course", LessonNumber: intPtr(1)}},
			Distances: []float64{0.1},
		},
	}
	rag := NewRAGService(&fakeParser{}, store, llm, 0)

	answer, sources, err := rag.Query(context.Background(), "q", "")

	require.NoError(t, err)
	assert.Equal(t, "grounded", answer)
	require.Len(t, sources, 1)
	assert.Equal(t, "Test Course - Lesson 1", sources[0].DisplayText)

	// Provenance is consumed per query.
	assert.Nil(t, rag.registry.LastSources())
}

func TestRAGService_CourseAnalytics(t *testing.T) {
	store := &fakeVectorStore{titles: []string{"A", "B"}}
	rag := NewRAGService(&fakeParser{}, store, &scriptedLLM{}, 0)

	analytics, err := rag.CourseAnalytics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, analytics.TotalCourses)
	assert.Equal(t, []string{"A", "B"}, analytics.CourseTitles)
}
