package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursechat-cli/internal/logger"
)

// Tool is a named, schema-described unit the model may invoke
// mid-dialogue. Execute returns the textual result for the model plus
// the provenance of any retrieval it performed. Failures are folded
// into the returned text, never raised, so the dialogue stays alive.
type Tool interface {
	Definition() driven.ToolDefinition
	Execute(ctx context.Context, args map[string]any) (string, []domain.Source)
}

// ToolRegistry holds the invocable tools in registration order and
// records the provenance of the most recent invocation.
type ToolRegistry struct {
	order       []string
	tools       map[string]Tool
	lastSources []domain.Source
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds a tool under its definition name. Registering the same
// name twice replaces the tool but keeps its original position.
func (r *ToolRegistry) Register(t Tool) {
	name := t.Definition().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Definitions returns the schema descriptors in registration order,
// suitable for passing verbatim to the LLM backend.
func (r *ToolRegistry) Definitions() []driven.ToolDefinition {
	defs := make([]driven.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Invoke dispatches to the named tool. An unregistered name yields the
// literal string "Tool '<name>' not found" rather than an error, so the
// dialogue can continue gracefully. Each successful invocation replaces
// the registry's last-sources record with the tool's provenance.
func (r *ToolRegistry) Invoke(ctx context.Context, name string, args map[string]any) (string, []domain.Source) {
	tool, ok := r.tools[name]
	if !ok {
		logger.Warn("Tool %q not registered", name)
		return fmt.Sprintf("Tool '%s' not found", name), nil
	}
	text, sources := tool.Execute(ctx, args)
	r.lastSources = sources
	return text, sources
}

// LastSources returns the provenance of the most recent invocation.
func (r *ToolRegistry) LastSources() []domain.Source {
	return r.lastSources
}

// ResetSources clears the last-sources record. The facade calls this
// after reading the sources for a completed query.
func (r *ToolRegistry) ResetSources() {
	r.lastSources = nil
}

// Ensure the built-in tools implement the interface.
var (
	_ Tool = (*CourseSearchTool)(nil)
	_ Tool = (*CourseOutlineTool)(nil)
)

// CourseSearchTool searches course transcript content with optional
// course and lesson narrowing.
type CourseSearchTool struct {
	store driven.VectorStore
}

// NewCourseSearchTool creates the content search tool.
func NewCourseSearchTool(store driven.VectorStore) *CourseSearchTool {
	return &CourseSearchTool{store: store}
}

// Definition returns the tool's schema descriptor.
func (t *CourseSearchTool) Definition() driven.ToolDefinition {
	return driven.ToolDefinition{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to search for in the course content",
				},
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": map[string]any{
					"type":        "integer",
					"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Execute runs the search and formats the results with provenance.
func (t *CourseSearchTool) Execute(ctx context.Context, args map[string]any) (string, []domain.Source) {
	query, _ := args["query"].(string)
	courseName, _ := args["course_name"].(string)
	lessonNumber := intArg(args, "lesson_number")

	results := t.store.Search(ctx, query, domain.SearchOptions{
		CourseName:   courseName,
		LessonNumber: lessonNumber,
	})

	if results.Err != "" {
		return results.Err, nil
	}
	if results.IsEmpty() {
		return emptyMessage(courseName, lessonNumber), nil
	}
	return t.format(ctx, results)
}

// emptyMessage names whichever filters were supplied, e.g.
// "No relevant content found in course 'X' in lesson 2."
func emptyMessage(courseName string, lessonNumber *int) string {
	var b strings.Builder
	b.WriteString("No relevant content found")
	if courseName != "" {
		fmt.Fprintf(&b, " in course '%s'", courseName)
	}
	if lessonNumber != nil {
		fmt.Fprintf(&b, " in lesson %d", *lessonNumber)
	}
	b.WriteString(".")
	return b.String()
}

// format renders each result as a labelled block and produces one
// provenance record per result, resolving lesson links via the catalog.
func (t *CourseSearchTool) format(ctx context.Context, results domain.SearchResults) (string, []domain.Source) {
	blocks := make([]string, 0, len(results.Documents))
	sources := make([]domain.Source, 0, len(results.Documents))

	for i, doc := range results.Documents {
		meta := results.Metadata[i]
		title := meta.CourseTitle
		if title == "" {
			title = "unknown"
		}

		label := title
		url := ""
		if meta.LessonNumber != nil {
			label = fmt.Sprintf("%s - Lesson %d", title, *meta.LessonNumber)
			if meta.CourseTitle != "" {
				// Absent link stays empty, never an error.
				link, err := t.store.GetLessonLink(ctx, meta.CourseTitle, *meta.LessonNumber)
				if err == nil {
					url = link
				}
			}
		}

		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", label, doc))
		sources = append(sources, domain.Source{DisplayText: label, URL: url})
	}

	return strings.Join(blocks, "\n\n"), sources
}

// CourseOutlineTool returns a course's title, link, instructor and
// ordered lesson list straight from the catalog, without semantic
// search over content.
type CourseOutlineTool struct {
	store driven.VectorStore
}

// NewCourseOutlineTool creates the outline tool.
func NewCourseOutlineTool(store driven.VectorStore) *CourseOutlineTool {
	return &CourseOutlineTool{store: store}
}

// Definition returns the tool's schema descriptor.
func (t *CourseOutlineTool) Definition() driven.ToolDefinition {
	return driven.ToolDefinition{
		Name:        "get_course_outline",
		Description: "Get a course outline: title, course link, instructor and the complete numbered lesson list",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work)",
				},
			},
			"required": []string{"course_name"},
		},
	}
}

// Execute resolves the course name and renders the outline.
func (t *CourseOutlineTool) Execute(ctx context.Context, args map[string]any) (string, []domain.Source) {
	courseName, _ := args["course_name"].(string)

	title, err := t.store.ResolveCourseName(ctx, courseName)
	if err != nil {
		return fmt.Sprintf("No course found matching '%s'.", courseName), nil
	}
	course, err := t.store.CourseMetadata(ctx, title)
	if err != nil {
		return fmt.Sprintf("No course found matching '%s'.", courseName), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course Title: %s\n", course.Title)
	if course.Link != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", course.Link)
	}
	if course.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", course.Instructor)
	}
	fmt.Fprintf(&b, "\nLessons (%d):\n", len(course.Lessons))
	for _, lesson := range course.Lessons {
		fmt.Fprintf(&b, "  Lesson %d: %s\n", lesson.Number, lesson.Title)
	}

	sources := []domain.Source{{DisplayText: course.Title, URL: course.Link}}
	return strings.TrimRight(b.String(), "\n"), sources
}

// intArg extracts an optional integer argument. JSON numbers decode as
// float64, so both forms are accepted.
func intArg(args map[string]any, key string) *int {
	switch v := args[key].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	default:
		return nil
	}
}
