package driving

import (
	"context"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
)

// RAGService answers natural-language questions about the ingested
// course corpus and manages ingestion of transcripts.
type RAGService interface {
	// AddCourseDocument ingests one transcript file. Parse failures and
	// missing files are reported as (nil, 0), never as a panic, so
	// folder ingestion can continue past bad files.
	AddCourseDocument(ctx context.Context, path string) (*domain.Course, int)

	// AddCourseFolder ingests every transcript in a folder, skipping
	// courses whose titles already exist in the catalog. With
	// clearExisting set, both collections are emptied first.
	// Returns (courses added, chunks added).
	AddCourseFolder(ctx context.Context, path string, clearExisting bool) (int, int)

	// Query answers one question. An empty sessionID starts a fresh
	// session. Sources carry the provenance of the chunks the answer
	// drew on; they are empty when no retrieval happened.
	Query(ctx context.Context, text, sessionID string) (string, []domain.Source, error)

	// CreateSession starts a new conversation session and returns its
	// opaque identifier.
	CreateSession() string

	// CourseAnalytics summarises the ingested catalog.
	CourseAnalytics(ctx context.Context) (domain.CourseAnalytics, error)
}
