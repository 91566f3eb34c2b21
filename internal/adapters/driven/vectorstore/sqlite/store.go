// Package sqlite provides a durable vector store backed by SQLite.
// Embeddings are stored as little-endian float32 blobs and scored in
// Go; the corpus is small enough that a full scan per query beats the
// operational cost of an ANN index.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/coursechat-cli/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursechat-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultMaxResults caps content queries when the caller sets no limit.
const DefaultMaxResults = 5

// Store is a SQLite-backed two-collection vector index.
type Store struct {
	db         *sql.DB
	path       string
	embedder   driven.EmbeddingService
	maxResults int
}

// NewStore opens (or creates) the store under dataDir. If dataDir is
// empty, defaults to ~/.coursechat/data.
func NewStore(dataDir string, embedder driven.EmbeddingService, maxResults int) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".coursechat", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	dbPath := filepath.Join(dataDir, "courses.db")

	// WAL mode for better concurrency between ingestion and queries.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath, embedder: embedder, maxResults: maxResults}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// migrate applies embedded SQL files in lexical order, recording each
// applied version in schema_migrations.
func (s *Store) migrate(migrationFS fs.FS) error {
	if _, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`,
	); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	files, err := fs.Glob(migrationFS, "*.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		var applied int
		err := s.db.QueryRow(
			`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, file,
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("checking migration %s: %w", file, err)
		}
		if applied > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", file, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", file, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %s: %w", file, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO schema_migrations (version) VALUES (?)`, file,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", file, err)
		}
		logger.Debug("Applied migration %s", file)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// lessonRecord is the JSON shape lessons are persisted in.
type lessonRecord struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// AddCourseMetadata stores or overwrites the catalog record for a
// course, keyed by title.
func (s *Store) AddCourseMetadata(ctx context.Context, course *domain.Course) error {
	vector, err := s.embedder.Embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}

	lessons := make([]lessonRecord, len(course.Lessons))
	for i, l := range course.Lessons {
		lessons[i] = lessonRecord{Number: l.Number, Title: l.Title, Link: l.Link}
	}
	lessonsJSON, err := json.Marshal(lessons)
	if err != nil {
		return fmt.Errorf("marshal lessons: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO course_catalog (title, instructor, link, lessons, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (title) DO UPDATE SET
			instructor = excluded.instructor,
			link       = excluded.link,
			lessons    = excluded.lessons,
			embedding  = excluded.embedding`,
		course.Title, course.Instructor, course.Link, string(lessonsJSON), encodeVector(vector),
	)
	if err != nil {
		return fmt.Errorf("upsert catalog record: %w", err)
	}
	return nil
}

// AddCourseContent embeds and stores one record per chunk. An empty
// slice is a no-op.
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin content insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO course_content (course_title, chunk_index, lesson_number, content, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (course_title, chunk_index) DO UPDATE SET
			lesson_number = excluded.lesson_number,
			content       = excluded.content,
			embedding     = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("prepare content insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		var lesson any
		if c.LessonNumber != nil {
			lesson = *c.LessonNumber
		}
		if _, err := stmt.ExecContext(ctx, c.CourseTitle, c.ChunkIndex, lesson, c.Content, encodeVector(vectors[i])); err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.ChunkIndex, err)
		}
	}
	return tx.Commit()
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

	where, args := filterClause(filter)
	rows, err := s.db.QueryContext(ctx,
		`SELECT course_title, chunk_index, lesson_number, content, embedding FROM course_content`+where,
		args...,
	)
	if err != nil {
		return domain.EmptyResults(fmt.Sprintf("Search error: %v", err))
	}
	defer rows.Close()

	type scored struct {
		content string
		meta    domain.ChunkMetadata
		dist    float64
	}
	var matches []scored

	for rows.Next() {
		var (
			title   string
			index   int
			lesson  sql.NullInt64
			content string
			blob    []byte
		)
		if err := rows.Scan(&title, &index, &lesson, &content, &blob); err != nil {
			return domain.EmptyResults(fmt.Sprintf("Search error: %v", err))
		}
		meta := domain.ChunkMetadata{CourseTitle: title, ChunkIndex: index}
		if lesson.Valid {
			n := int(lesson.Int64)
			meta.LessonNumber = &n
		}
		matches = append(matches, scored{
			content: content,
			meta:    meta,
			dist:    cosineDistance(queryVector, decodeVector(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return domain.EmptyResults(fmt.Sprintf("Search error: %v", err))
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })
	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := domain.SearchResults{}
	for _, m := range matches {
		results.Documents = append(results.Documents, m.content)
		results.Metadata = append(results.Metadata, m.meta)
		results.Distances = append(results.Distances, m.dist)
	}
	return results
}

// filterClause renders a ChunkFilter as a WHERE clause.
func filterClause(f domain.ChunkFilter) (string, []any) {
	var conds []string
	var args []any
	if title, ok := f.CourseTitle(); ok {
		conds = append(conds, "course_title = ?")
		args = append(args, title)
	}
	if lesson, ok := f.LessonNumber(); ok {
		conds = append(conds, "lesson_number = ?")
		args = append(args, lesson)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ResolveCourseName finds the semantically closest catalog title.
func (s *Store) ResolveCourseName(ctx context.Context, name string) (string, error) {
	count, err := s.CourseCount(ctx)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "", domain.ErrNotFound
	}

	nameVector, err := s.embedder.Embed(ctx, name)
	if err != nil {
		return "", fmt.Errorf("embed course name: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT title, embedding FROM course_catalog`)
	if err != nil {
		return "", fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	best := ""
	bestDist := math.Inf(1)
	for rows.Next() {
		var title string
		var blob []byte
		if err := rows.Scan(&title, &blob); err != nil {
			return "", fmt.Errorf("scan catalog row: %w", err)
		}
		if d := cosineDistance(nameVector, decodeVector(blob)); d < bestDist {
			bestDist = d
			best = title
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if best == "" {
		return "", domain.ErrNotFound
	}
	return best, nil
}

// CourseMetadata returns the catalog record for an exact title.
func (s *Store) CourseMetadata(ctx context.Context, title string) (*domain.Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT title, instructor, link, lessons FROM course_catalog WHERE title = ?`, title)
	return scanCourse(row)
}

func scanCourse(row *sql.Row) (*domain.Course, error) {
	var course domain.Course
	var lessonsJSON string
	if err := row.Scan(&course.Title, &course.Instructor, &course.Link, &lessonsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan catalog record: %w", err)
	}
	lessons, err := unmarshalLessons(lessonsJSON)
	if err != nil {
		return nil, err
	}
	course.Lessons = lessons
	return &course, nil
}

func unmarshalLessons(lessonsJSON string) ([]domain.Lesson, error) {
	var records []lessonRecord
	if err := json.Unmarshal([]byte(lessonsJSON), &records); err != nil {
		return nil, fmt.Errorf("unmarshal lessons: %w", err)
	}
	lessons := make([]domain.Lesson, len(records))
	for i, r := range records {
		lessons[i] = domain.Lesson{Number: r.Number, Title: r.Title, Link: r.Link}
	}
	return lessons, nil
}

// GetCourseLink returns the course link for an exact title.
func (s *Store) GetCourseLink(ctx context.Context, title string) (string, error) {
	var link string
	err := s.db.QueryRowContext(ctx,
		`SELECT link FROM course_catalog WHERE title = ?`, title).Scan(&link)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query course link: %w", err)
	}
	return link, nil
}

// GetLessonLink returns the link of one lesson. An unknown course or
// lesson, or a lesson without a link, yields "" and no error.
func (s *Store) GetLessonLink(ctx context.Context, title string, lessonNumber int) (string, error) {
	course, err := s.CourseMetadata(ctx, title)
	if err != nil {
		if err == domain.ErrNotFound {
			return "", nil
		}
		return "", err
	}
	lesson, ok := course.Lesson(lessonNumber)
	if !ok {
		return "", nil
	}
	return lesson.Link, nil
}

// CourseCount returns the number of catalog records.
func (s *Store) CourseCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM course_catalog`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return count, nil
}

// ExistingCourseTitles lists all catalog titles.
func (s *Store) ExistingCourseTitles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title FROM course_catalog ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// AllCoursesMetadata returns every catalog record.
func (s *Store) AllCoursesMetadata(ctx context.Context) ([]domain.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, instructor, link, lessons FROM course_catalog ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var course domain.Course
		var lessonsJSON string
		if err := rows.Scan(&course.Title, &course.Instructor, &course.Link, &lessonsJSON); err != nil {
			return nil, err
		}
		lessons, err := unmarshalLessons(lessonsJSON)
		if err != nil {
			return nil, err
		}
		course.Lessons = lessons
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// Clear empties both collections.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM course_content`); err != nil {
		return fmt.Errorf("clear content: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM course_catalog`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// encodeVector serialises a vector as little-endian float32 bytes.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector is the inverse of encodeVector.
func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

// cosineDistance is 1 minus the cosine similarity.
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
