package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
)

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "1.2.3"
	defer func() { version = originalVersion }()

	out, err := execute(t, &fakeRAG{}, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "coursechat version 1.2.3")
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	fake := &fakeRAG{
		answer: "Lesson 2 covers retrieval.",
		sources: []domain.Source{
			{DisplayText: "Test Course - Lesson 2", URL: "https://example.com/2"},
			{DisplayText: "Test Course - Lesson 3"},
		},
	}

	out, err := execute(t, fake, "ask", "what does lesson 2 cover?")

	require.NoError(t, err)
	assert.Contains(t, out, "Lesson 2 covers retrieval.")
	assert.Contains(t, out, "Test Course - Lesson 2 (https://example.com/2)")
	assert.Contains(t, out, "Test Course - Lesson 3")
	assert.Contains(t, out, "Session: session-1")
	assert.Equal(t, "what does lesson 2 cover?", fake.lastQuery)
	assert.Equal(t, "session-1", fake.lastSession)
}

func TestAskCmd_ContinuesSession(t *testing.T) {
	fake := &fakeRAG{answer: "ok"}

	_, err := execute(t, fake, "ask", "follow up", "--session", "existing-session")
	defer func() { askSessionID = "" }()

	require.NoError(t, err)
	assert.Equal(t, "existing-session", fake.lastSession)
}

func TestAskCmd_QueryError(t *testing.T) {
	fake := &fakeRAG{queryErr: errors.New("backend down")}

	_, err := execute(t, fake, "ask", "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
}

func TestAskCmd_NoService(t *testing.T) {
	oldService := ragService
	ragService = nil
	defer func() { ragService = oldService }()

	rootCmd.SetArgs([]string{"ask", "q"})
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestIngestCmd_Folder(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRAG{folderCourse: 2, folderChunks: 9}

	out, err := execute(t, fake, "ingest", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "Added 2 courses (9 chunks)")
	assert.False(t, fake.folderClear)
}

func TestIngestCmd_FolderWithClear(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRAG{}

	_, err := execute(t, fake, "ingest", dir, "--clear")
	defer func() { ingestClear = false }()

	require.NoError(t, err)
	assert.True(t, fake.folderClear)
}

func TestIngestCmd_SingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
	fake := &fakeRAG{course: &domain.Course{Title: "Test Course"}, docChunks: 4}

	out, err := execute(t, fake, "ingest", path)

	require.NoError(t, err)
	assert.Contains(t, out, `Added course "Test Course" (4 chunks)`)
}

func TestIngestCmd_FileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	_, err := execute(t, &fakeRAG{}, "ingest", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not process")
}

func TestIngestCmd_MissingPath(t *testing.T) {
	_, err := execute(t, &fakeRAG{}, "ingest", filepath.Join(t.TempDir(), "nope"))

	require.Error(t, err)
}

func TestIngestCmd_NoArgNoConfiguredFolder(t *testing.T) {
	oldDir := docsDir
	docsDir = ""
	defer func() { docsDir = oldDir }()

	_, err := execute(t, &fakeRAG{}, "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no docs folder configured")
}

func TestCoursesCmd_ListsCourses(t *testing.T) {
	fake := &fakeRAG{analytics: domain.CourseAnalytics{
		TotalCourses: 2,
		CourseTitles: []string{"Introduction to AI", "Advanced Databases"},
	}}

	out, err := execute(t, fake, "courses")

	require.NoError(t, err)
	assert.Contains(t, out, "Total courses: 2")
	assert.Contains(t, out, "Introduction to AI")
	assert.Contains(t, out, "Advanced Databases")
}

func TestWatchCmd_Use(t *testing.T) {
	assert.Equal(t, "watch [folder]", watchCmd.Use)
}

func TestChatCmd_Use(t *testing.T) {
	assert.Equal(t, "chat", chatCmd.Use)
}

func TestIsTranscript(t *testing.T) {
	assert.True(t, isTranscript("course.txt"))
	assert.True(t, isTranscript("Course.PDF"))
	assert.True(t, isTranscript("notes.docx"))
	assert.False(t, isTranscript("readme.md"))
	assert.False(t, isTranscript("archive.zip"))
}
