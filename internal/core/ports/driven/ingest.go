package driven

import "github.com/custodia-labs/coursechat-cli/internal/core/domain"

// TranscriptParser turns a raw course transcript file into a structured
// course plus its ordered content chunks.
type TranscriptParser interface {
	// ParseFile reads and parses one transcript. It fails
	// distinguishably for a missing file (os errors) versus a missing
	// course header (domain.ErrMalformedTranscript).
	ParseFile(path string) (*domain.Course, []domain.CourseChunk, error)
}
