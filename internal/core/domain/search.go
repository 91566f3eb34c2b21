package domain

// ChunkMetadata describes where a retrieved chunk came from.
type ChunkMetadata struct {
	// CourseTitle is the owning course. Empty when unknown.
	CourseTitle string

	// LessonNumber is the lesson the chunk came from, nil when absent.
	LessonNumber *int

	// ChunkIndex is the chunk's position within its course.
	ChunkIndex int
}

// SearchResults is the outcome of a content search. Documents, Metadata
// and Distances are parallel slices ordered by ascending distance.
// A result carrying Err is always otherwise empty; emptiness without an
// error is a valid state of its own (nothing matched).
type SearchResults struct {
	Documents []string
	Metadata  []ChunkMetadata
	Distances []float64

	// Err holds a retrieval error as plain text. Errors travel through
	// the result rather than panicking the dialogue, so the model can
	// surface them in its answer.
	Err string
}

// EmptyResults returns an empty result set carrying an error message.
func EmptyResults(errMsg string) SearchResults {
	return SearchResults{Err: errMsg}
}

// IsEmpty reports whether the result set contains no documents.
func (r SearchResults) IsEmpty() bool {
	return len(r.Documents) == 0
}

// SearchOptions narrows a content search.
type SearchOptions struct {
	// CourseName is a possibly partial or misspelled course name hint.
	// It is resolved to a canonical title before filtering.
	CourseName string

	// LessonNumber restricts results to one lesson when non-nil.
	LessonNumber *int

	// Limit caps the number of results. Zero means the store default.
	Limit int
}

// ChunkFilter is an exact-match metadata predicate over stored chunks.
// The zero filter matches everything. With both fields set the filter is
// the logical AND of the two predicates:
//
//	NewChunkFilter("", nil)  matches every chunk
//	NewChunkFilter("X", &2)  matches course_title="X" AND lesson_number=2
type ChunkFilter struct {
	courseTitle  string
	hasCourse    bool
	lessonNumber int
	hasLesson    bool
}

// NewChunkFilter builds a filter from a resolved course title and an
// optional lesson number. An empty title contributes no predicate.
func NewChunkFilter(courseTitle string, lessonNumber *int) ChunkFilter {
	f := ChunkFilter{}
	if courseTitle != "" {
		f.courseTitle = courseTitle
		f.hasCourse = true
	}
	if lessonNumber != nil {
		f.lessonNumber = *lessonNumber
		f.hasLesson = true
	}
	return f
}

// IsZero reports whether the filter matches everything.
func (f ChunkFilter) IsZero() bool {
	return !f.hasCourse && !f.hasLesson
}

// CourseTitle returns the course predicate, if any.
func (f ChunkFilter) CourseTitle() (string, bool) {
	return f.courseTitle, f.hasCourse
}

// LessonNumber returns the lesson predicate, if any.
func (f ChunkFilter) LessonNumber() (int, bool) {
	return f.lessonNumber, f.hasLesson
}

// Matches reports whether the chunk metadata satisfies every predicate.
func (f ChunkFilter) Matches(m ChunkMetadata) bool {
	if f.hasCourse && m.CourseTitle != f.courseTitle {
		return false
	}
	if f.hasLesson {
		if m.LessonNumber == nil || *m.LessonNumber != f.lessonNumber {
			return false
		}
	}
	return true
}

// Source is the provenance of one retrieved chunk: a display label and
// an optional URL.
type Source struct {
	// DisplayText is the label, e.g. "Course Title - Lesson 2".
	DisplayText string

	// URL is the lesson or course link. Empty when no link is known.
	URL string
}
