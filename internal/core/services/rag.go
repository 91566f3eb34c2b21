package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/coursechat-cli/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// transcriptExtensions are the file types considered during folder
// ingestion.
var transcriptExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".docx": true,
}

// RAGService is the composition root of the question-answering core:
// it owns the tool registry, the orchestrator and the session store,
// and wires ingestion into the vector store.
type RAGService struct {
	parser       driven.TranscriptParser
	store        driven.VectorStore
	orchestrator *Orchestrator
	sessions     *SessionStore
	registry     *ToolRegistry
}

// NewRAGService assembles the core services. The registry is populated
// with the content search tool and the outline tool.
func NewRAGService(
	parser driven.TranscriptParser,
	store driven.VectorStore,
	llm driven.LLMService,
	maxHistory int,
) *RAGService {
	registry := NewToolRegistry()
	registry.Register(NewCourseSearchTool(store))
	registry.Register(NewCourseOutlineTool(store))

	return &RAGService{
		parser:       parser,
		store:        store,
		orchestrator: NewOrchestrator(llm),
		sessions:     NewSessionStore(maxHistory),
		registry:     registry,
	}
}

// AddCourseDocument ingests one transcript file. Parse failures are
// logged and reported as (nil, 0).
func (r *RAGService) AddCourseDocument(ctx context.Context, path string) (*domain.Course, int) {
	course, chunks, err := r.parser.ParseFile(path)
	if err != nil {
		logger.Warn("Ingest %s failed: %v", path, err)
		return nil, 0
	}

	if err := r.store.AddCourseMetadata(ctx, course); err != nil {
		logger.Warn("Store catalog record for %q failed: %v", course.Title, err)
		return nil, 0
	}
	if err := r.store.AddCourseContent(ctx, chunks); err != nil {
		logger.Warn("Store content for %q failed: %v", course.Title, err)
		return nil, 0
	}

	logger.Info("Ingested %q: %d chunks", course.Title, len(chunks))
	return course, len(chunks)
}

// AddCourseFolder ingests every transcript in a folder. Courses whose
// titles already exist in the catalog are skipped so nothing is
// re-embedded. A missing folder yields (0, 0).
func (r *RAGService) AddCourseFolder(ctx context.Context, path string, clearExisting bool) (int, int) {
	if clearExisting {
		logger.Info("Clearing existing course data")
		if err := r.store.Clear(ctx); err != nil {
			logger.Warn("Clear failed: %v", err)
			return 0, 0
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		logger.Warn("Read folder %s failed: %v", path, err)
		return 0, 0
	}

	existing := make(map[string]bool)
	if titles, err := r.store.ExistingCourseTitles(ctx); err == nil {
		for _, t := range titles {
			existing[t] = true
		}
	}

	coursesAdded, chunksAdded := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !transcriptExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		filePath := filepath.Join(path, entry.Name())

		course, chunks, err := r.parser.ParseFile(filePath)
		if err != nil {
			logger.Warn("Skipping %s: %v", filePath, err)
			continue
		}
		if existing[course.Title] {
			logger.Debug("Course %q already ingested, skipping", course.Title)
			continue
		}

		if err := r.store.AddCourseMetadata(ctx, course); err != nil {
			logger.Warn("Store catalog record for %q failed: %v", course.Title, err)
			continue
		}
		if err := r.store.AddCourseContent(ctx, chunks); err != nil {
			logger.Warn("Store content for %q failed: %v", course.Title, err)
			continue
		}

		existing[course.Title] = true
		coursesAdded++
		chunksAdded += len(chunks)
		logger.Info("Ingested %q: %d chunks", course.Title, len(chunks))
	}

	return coursesAdded, chunksAdded
}

// Query answers one question through the bounded dialogue. An empty
// sessionID starts a fresh session. The exchange is appended to the
// session after a successful answer.
func (r *RAGService) Query(ctx context.Context, text, sessionID string) (string, []domain.Source, error) {
	if sessionID == "" {
		sessionID = r.sessions.Create()
	}
	history := r.sessions.History(sessionID)

	answer, sources, err := r.orchestrator.GenerateResponse(ctx, text, history, r.registry)
	if err != nil {
		return "", nil, err
	}

	// Provenance is consumed per query; stale sources must not leak
	// into the next one.
	r.registry.ResetSources()

	r.sessions.Append(sessionID, text, answer)
	return answer, sources, nil
}

// CreateSession starts a new conversation session.
func (r *RAGService) CreateSession() string {
	return r.sessions.Create()
}

// CourseAnalytics summarises the ingested catalog.
func (r *RAGService) CourseAnalytics(ctx context.Context) (domain.CourseAnalytics, error) {
	count, err := r.store.CourseCount(ctx)
	if err != nil {
		return domain.CourseAnalytics{}, err
	}
	titles, err := r.store.ExistingCourseTitles(ctx)
	if err != nil {
		return domain.CourseAnalytics{}, err
	}
	return domain.CourseAnalytics{TotalCourses: count, CourseTitles: titles}, nil
}
