package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestChunkFilter_Zero(t *testing.T) {
	f := NewChunkFilter("", nil)

	assert.True(t, f.IsZero())
	assert.True(t, f.Matches(ChunkMetadata{}))
	assert.True(t, f.Matches(ChunkMetadata{CourseTitle: "Any Course", LessonNumber: intPtr(3)}))
}

func TestChunkFilter_CourseOnly(t *testing.T) {
	f := NewChunkFilter("Building RAG Systems", nil)

	assert.False(t, f.IsZero())

	title, ok := f.CourseTitle()
	assert.True(t, ok)
	assert.Equal(t, "Building RAG Systems", title)

	_, ok = f.LessonNumber()
	assert.False(t, ok)

	assert.True(t, f.Matches(ChunkMetadata{CourseTitle: "Building RAG Systems"}))
	assert.True(t, f.Matches(ChunkMetadata{CourseTitle: "Building RAG Systems", LessonNumber: intPtr(5)}))
	assert.False(t, f.Matches(ChunkMetadata{CourseTitle: "Other Course"}))
}

func TestChunkFilter_LessonOnly(t *testing.T) {
	f := NewChunkFilter("", intPtr(2))

	assert.False(t, f.IsZero())
	assert.True(t, f.Matches(ChunkMetadata{CourseTitle: "Any", LessonNumber: intPtr(2)}))
	assert.False(t, f.Matches(ChunkMetadata{CourseTitle: "Any", LessonNumber: intPtr(3)}))
	assert.False(t, f.Matches(ChunkMetadata{CourseTitle: "Any"}))
}

func TestChunkFilter_CourseAndLesson(t *testing.T) {
	f := NewChunkFilter("Building RAG Systems", intPtr(2))

	assert.True(t, f.Matches(ChunkMetadata{CourseTitle: "Building RAG Systems", LessonNumber: intPtr(2)}))
	assert.False(t, f.Matches(ChunkMetadata{CourseTitle: "Building RAG Systems", LessonNumber: intPtr(1)}))
	assert.False(t, f.Matches(ChunkMetadata{CourseTitle: "Other", LessonNumber: intPtr(2)}))
}

func TestSearchResults_EmptyWithError(t *testing.T) {
	r := EmptyResults("Search error: boom")

	assert.True(t, r.IsEmpty())
	assert.Equal(t, "Search error: boom", r.Err)
	assert.Empty(t, r.Documents)
	assert.Empty(t, r.Metadata)
	assert.Empty(t, r.Distances)
}

func TestSearchResults_EmptyWithoutError(t *testing.T) {
	r := SearchResults{}

	assert.True(t, r.IsEmpty())
	assert.Empty(t, r.Err)
}

func TestCourse_Lesson(t *testing.T) {
	course := Course{
		Title: "Building RAG Systems",
		Lessons: []Lesson{
			{Number: 0, Title: "Introduction", Link: "https://example.com/0"},
			{Number: 1, Title: "Retrieval"},
		},
	}

	lesson, ok := course.Lesson(0)
	assert.True(t, ok)
	assert.Equal(t, "Introduction", lesson.Title)
	assert.Equal(t, "https://example.com/0", lesson.Link)

	_, ok = course.Lesson(7)
	assert.False(t, ok)
}
