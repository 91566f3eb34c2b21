// Package memory provides an in-memory implementation of the vector
// store. It keeps both collections as plain slices and scores queries
// with brute-force cosine similarity, which is plenty for a corpus of
// course transcripts and keeps tests hermetic.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursechat-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultMaxResults caps content queries when the caller sets no limit.
const DefaultMaxResults = 5

type catalogRecord struct {
	course domain.Course
	vector []float32
}

type contentRecord struct {
	chunk  domain.CourseChunk
	vector []float32
}

// Store is an in-memory two-collection vector index.
type Store struct {
	mu         sync.RWMutex
	embedder   driven.EmbeddingService
	maxResults int

	catalog map[string]catalogRecord
	order   []string // catalog insertion order, for stable listings
	content []contentRecord
}

// NewStore creates an empty store over the given embedder.
func NewStore(embedder driven.EmbeddingService, maxResults int) *Store {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Store{
		embedder:   embedder,
		maxResults: maxResults,
		catalog:    make(map[string]catalogRecord),
	}
}

// AddCourseMetadata stores or overwrites the catalog record for a
// course, keyed by title.
func (s *Store) AddCourseMetadata(ctx context.Context, course *domain.Course) error {
	vector, err := s.embedder.Embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.catalog[course.Title]; !exists {
		s.order = append(s.order, course.Title)
	}
	s.catalog[course.Title] = catalogRecord{course: *course, vector: vector}
	return nil
}

// AddCourseContent embeds and stores one record per chunk. Chunks with
// the same (course, index) key replace earlier ones. An empty slice is
// a no-op.
func (s *Store) AddCourseContent(ctx context.Context, chunks []domain.CourseChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	incoming := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		incoming[chunkKey(c.CourseTitle, c.ChunkIndex)] = true
	}
	kept := s.content[:0]
	for _, rec := range s.content {
		if !incoming[chunkKey(rec.chunk.CourseTitle, rec.chunk.ChunkIndex)] {
			kept = append(kept, rec)
		}
	}
	s.content = kept

	for i, c := range chunks {
		s.content = append(s.content, contentRecord{chunk: c, vector: vectors[i]})
	}
	return nil
}

func chunkKey(title string, index int) string {
	return fmt.Sprintf("%s_%d", title, index)
}

// Search runs a nearest-neighbour content query. Failures land on the
// result's Err field so callers can show them as text.
func (s *Store) Search(ctx context.Context, query string, opts domain.SearchOptions) domain.SearchResults {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	resolvedTitle := ""
	if opts.CourseName != "" {
		title, err := s.ResolveCourseName(ctx, opts.CourseName)
		if err != nil {
			return domain.EmptyResults(fmt.Sprintf("No course found matching '%s'.", opts.CourseName))
		}
		resolvedTitle = title
	}
	filter := domain.NewChunkFilter(resolvedTitle, opts.LessonNumber)

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return domain.EmptyResults(fmt.Sprintf("Search error: %v", err))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		rec  contentRecord
		dist float64
	}
	matches := make([]scored, 0, len(s.content))
	for _, rec := range s.content {
		meta := domain.ChunkMetadata{
			CourseTitle:  rec.chunk.CourseTitle,
			LessonNumber: rec.chunk.LessonNumber,
			ChunkIndex:   rec.chunk.ChunkIndex,
		}
		if !filter.Matches(meta) {
			continue
		}
		matches = append(matches, scored{rec: rec, dist: cosineDistance(queryVector, rec.vector)})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })
	if len(matches) > limit {
		matches = matches[:limit]
	}

	logger.Debug("Memory search: %d match(es) for %q", len(matches), query)

	results := domain.SearchResults{}
	for _, m := range matches {
		results.Documents = append(results.Documents, m.rec.chunk.Content)
		results.Metadata = append(results.Metadata, domain.ChunkMetadata{
			CourseTitle:  m.rec.chunk.CourseTitle,
			LessonNumber: m.rec.chunk.LessonNumber,
			ChunkIndex:   m.rec.chunk.ChunkIndex,
		})
		results.Distances = append(results.Distances, m.dist)
	}
	return results
}

// ResolveCourseName finds the semantically closest catalog title. The
// single nearest candidate is accepted unconditionally; there is no
// distance threshold.
func (s *Store) ResolveCourseName(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	empty := len(s.catalog) == 0
	s.mu.RUnlock()
	if empty {
		return "", domain.ErrNotFound
	}

	nameVector, err := s.embedder.Embed(ctx, name)
	if err != nil {
		return "", fmt.Errorf("embed course name: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	best := ""
	bestDist := math.Inf(1)
	for _, title := range s.order {
		rec, ok := s.catalog[title]
		if !ok {
			continue
		}
		if d := cosineDistance(nameVector, rec.vector); d < bestDist {
			bestDist = d
			best = title
		}
	}
	if best == "" {
		return "", domain.ErrNotFound
	}
	return best, nil
}

// CourseMetadata returns the catalog record for an exact title.
func (s *Store) CourseMetadata(_ context.Context, title string) (*domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.catalog[title]
	if !ok {
		return nil, domain.ErrNotFound
	}
	course := rec.course
	return &course, nil
}

// GetCourseLink returns the course link for an exact title.
func (s *Store) GetCourseLink(_ context.Context, title string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.catalog[title]
	if !ok {
		return "", domain.ErrNotFound
	}
	return rec.course.Link, nil
}

// GetLessonLink returns the link of one lesson. An unknown course or
// lesson, or a lesson without a link, yields "" and no error.
func (s *Store) GetLessonLink(_ context.Context, title string, lessonNumber int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.catalog[title]
	if !ok {
		return "", nil
	}
	lesson, ok := rec.course.Lesson(lessonNumber)
	if !ok {
		return "", nil
	}
	return lesson.Link, nil
}

// CourseCount returns the number of catalog records.
func (s *Store) CourseCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.catalog), nil
}

// ExistingCourseTitles lists catalog titles in insertion order.
func (s *Store) ExistingCourseTitles(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	titles := make([]string, len(s.order))
	copy(titles, s.order)
	return titles, nil
}

// AllCoursesMetadata returns every catalog record in insertion order.
func (s *Store) AllCoursesMetadata(_ context.Context) ([]domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	courses := make([]domain.Course, 0, len(s.order))
	for _, title := range s.order {
		if rec, ok := s.catalog[title]; ok {
			courses = append(courses, rec.course)
		}
	}
	return courses, nil
}

// Clear empties both collections.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = make(map[string]catalogRecord)
	s.order = nil
	s.content = nil
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// cosineDistance is 1 minus the cosine similarity, so closer vectors
// yield smaller values and results sort ascending.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
