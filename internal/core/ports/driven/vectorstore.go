package driven

import (
	"context"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
)

// VectorStore is a two-collection semantic index over the course corpus.
//
// The catalog collection holds one record per course, keyed by title,
// with the instructor, link and lesson list as structured metadata. The
// content collection holds one record per transcript chunk. Both are
// embedded with the same EmbeddingService fixed at construction.
type VectorStore interface {
	// AddCourseMetadata stores or overwrites the catalog record for a
	// course, keyed by title.
	AddCourseMetadata(ctx context.Context, course *domain.Course) error

	// AddCourseContent embeds and stores one content record per chunk.
	// An empty slice is a no-op and never an error.
	AddCourseContent(ctx context.Context, chunks []domain.CourseChunk) error

	// Search runs a nearest-neighbour content query. A course name hint
	// in opts is first resolved against the catalog; resolution failure
	// and backend failures are reported on the result's Err field, not
	// as returned errors, so callers can surface them as text.
	Search(ctx context.Context, query string, opts domain.SearchOptions) domain.SearchResults

	// ResolveCourseName resolves a possibly partial or misspelled course
	// name to the canonical title of the semantically closest course.
	// Returns domain.ErrNotFound when the catalog is empty.
	ResolveCourseName(ctx context.Context, name string) (string, error)

	// CourseMetadata returns the full catalog record for an exact title.
	CourseMetadata(ctx context.Context, title string) (*domain.Course, error)

	// GetCourseLink returns the course link for an exact title.
	GetCourseLink(ctx context.Context, title string) (string, error)

	// GetLessonLink returns the link of one lesson of a course. A course
	// or lesson without a link yields "" and no error.
	GetLessonLink(ctx context.Context, title string, lessonNumber int) (string, error)

	// CourseCount returns the number of catalog records.
	CourseCount(ctx context.Context) (int, error)

	// ExistingCourseTitles lists all catalog titles.
	ExistingCourseTitles(ctx context.Context) ([]string, error)

	// AllCoursesMetadata returns every catalog record.
	AllCoursesMetadata(ctx context.Context) ([]domain.Course, error)

	// Clear empties both collections.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
