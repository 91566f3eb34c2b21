// Package ingest parses raw course transcript files into structured
// courses and content chunks.
//
// A transcript starts with a header block:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
// followed by lesson sections introduced by "Lesson N: <title>" lines,
// each optionally followed by a "Lesson Link: <url>" line. Lesson text
// is chunked sentence-by-sentence with a character budget and overlap.
package ingest

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursechat-cli/internal/logger"
)

// Ensure Parser implements the interface.
var _ driven.TranscriptParser = (*Parser)(nil)

// Default chunking parameters, in characters.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// Header prefixes of the transcript format.
const (
	prefixTitle      = "Course Title:"
	prefixLink       = "Course Link:"
	prefixInstructor = "Course Instructor:"
	prefixLessonLink = "Lesson Link:"
)

var lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// Parser splits transcripts into courses and overlapping text chunks.
type Parser struct {
	chunkSize    int
	chunkOverlap int
}

// NewParser creates a parser. Non-positive parameters fall back to the
// defaults.
func NewParser(chunkSize, chunkOverlap int) *Parser {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Parser{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// ParseFile reads and parses one transcript file.
func (p *Parser) ParseFile(path string) (*domain.Course, []domain.CourseChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read transcript: %w", err)
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	course, rest, err := parseHeader(lines)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	chunks := p.parseLessons(course, rest)
	logger.Debug("Parsed %q: %d lessons, %d chunks", course.Title, len(course.Lessons), len(chunks))
	return course, chunks, nil
}

// parseHeader consumes the course header block and returns the
// remaining lines. A transcript without a title line is malformed.
func parseHeader(lines []string) (*domain.Course, []string, error) {
	course := &domain.Course{}
	i := 0
	for i < len(lines) && i < 5 {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "":
		case strings.HasPrefix(line, prefixTitle):
			course.Title = strings.TrimSpace(strings.TrimPrefix(line, prefixTitle))
		case strings.HasPrefix(line, prefixLink):
			course.Link = strings.TrimSpace(strings.TrimPrefix(line, prefixLink))
		case strings.HasPrefix(line, prefixInstructor):
			course.Instructor = strings.TrimSpace(strings.TrimPrefix(line, prefixInstructor))
		default:
			// Header block ended.
			if course.Title == "" {
				return nil, nil, domain.ErrMalformedTranscript
			}
			return course, lines[i:], nil
		}
		i++
	}
	if course.Title == "" {
		return nil, nil, domain.ErrMalformedTranscript
	}
	return course, lines[i:], nil
}

// parseLessons walks the lesson sections, fills in course.Lessons and
// produces the content chunks with monotonic indices.
func (p *Parser) parseLessons(course *domain.Course, lines []string) []domain.CourseChunk {
	var chunks []domain.CourseChunk
	chunkIndex := 0

	var currentLesson *int
	var buffer []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(buffer, " "))
		buffer = nil
		if text == "" {
			return
		}
		for _, piece := range p.chunkText(text) {
			content := contextPrefix(course.Title, currentLesson) + piece
			chunks = append(chunks, domain.CourseChunk{
				Content:      content,
				CourseTitle:  course.Title,
				LessonNumber: currentLesson,
				ChunkIndex:   chunkIndex,
			})
			chunkIndex++
		}
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if m := lessonMarker.FindStringSubmatch(line); m != nil {
			flush()

			number, _ := strconv.Atoi(m[1])
			lesson := domain.Lesson{Number: number, Title: strings.TrimSpace(m[2])}
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if strings.HasPrefix(next, prefixLessonLink) {
					lesson.Link = strings.TrimSpace(strings.TrimPrefix(next, prefixLessonLink))
					i++
				}
			}
			course.Lessons = append(course.Lessons, lesson)

			n := number
			currentLesson = &n
			continue
		}

		if line != "" {
			buffer = append(buffer, line)
		}
	}
	flush()

	return chunks
}

// contextPrefix anchors each chunk to its course and lesson so that
// retrieval carries its origin even in isolation.
func contextPrefix(courseTitle string, lesson *int) string {
	if lesson != nil {
		return fmt.Sprintf("Course %s Lesson %d content: ", courseTitle, *lesson)
	}
	return fmt.Sprintf("Course %s content: ", courseTitle)
}

// chunkText splits text into sentence-aligned chunks of at most
// chunkSize characters, overlapping consecutive chunks by roughly
// chunkOverlap characters of trailing sentences.
func (p *Parser) chunkText(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))

		// Carry trailing sentences into the next chunk as overlap.
		var carry []string
		carryLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			if carryLen+len(current[i]) > p.chunkOverlap {
				break
			}
			carryLen += len(current[i]) + 1
			carry = append([]string{current[i]}, carry...)
		}
		current = carry
		currentLen = carryLen
	}

	for _, sentence := range sentences {
		if currentLen > 0 && currentLen+len(sentence) > p.chunkSize {
			flush()
		}
		current = append(current, sentence)
		currentLen += len(sentence) + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// splitSentences splits text on sentence terminators.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// Terminator inside an abbreviation or number keeps the
			// sentence going; only a following space ends it.
			if i+1 < len(runes) && runes[i+1] != ' ' {
				continue
			}
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
