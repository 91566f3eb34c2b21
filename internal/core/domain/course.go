package domain

// Lesson is a single lesson within a course.
// Lesson numbers are unique within a course but not necessarily contiguous.
type Lesson struct {
	// Number is the lesson number within the course.
	Number int

	// Title is the lesson title.
	Title string

	// Link is the lesson URL. Empty when the transcript carries none.
	Link string
}

// Course represents one ingested course transcript.
// The title is the primary key: re-ingesting a title overwrites the
// existing catalog record rather than duplicating it.
type Course struct {
	// Title uniquely identifies the course.
	Title string

	// Link is the course URL.
	Link string

	// Instructor is the course instructor name.
	Instructor string

	// Lessons are the course lessons in transcript order.
	Lessons []Lesson
}

// Lesson returns the lesson with the given number, if present.
func (c *Course) Lesson(number int) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.Number == number {
			return l, true
		}
	}
	return Lesson{}, false
}

// CourseChunk is a searchable unit of transcript text. Chunks reference
// their owning course by title; they do not own the course.
type CourseChunk struct {
	// Content is the chunk text.
	Content string

	// CourseTitle references the owning course.
	CourseTitle string

	// LessonNumber is the lesson the chunk came from.
	// Nil when the chunk precedes any lesson marker.
	LessonNumber *int

	// ChunkIndex is monotonically increasing and unique within a course.
	ChunkIndex int
}

// CourseAnalytics summarises the ingested catalog.
type CourseAnalytics struct {
	TotalCourses int
	CourseTitles []string
}
