package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursechat-cli/internal/logger"
)

// Orchestrator drives one bounded exchange with the LLM backend. When
// the first response requests tools, the requested calls are executed
// in order through the registry, the conversation is reassembled with
// the tool results, and the model is called exactly once more, this
// time without tool definitions. There is no recursive tool use.
type Orchestrator struct {
	llm driven.LLMService
}

// NewOrchestrator creates an orchestrator over the given backend.
func NewOrchestrator(llm driven.LLMService) *Orchestrator {
	return &Orchestrator{llm: llm}
}

// GenerateResponse answers one query. history, when non-empty, is
// appended to the system instruction as a "Previous conversation:"
// block. Backend failures propagate unmodified; tool failures travel
// as text inside the dialogue. The returned sources are the provenance
// of the tool round, nil when no tool ran.
func (o *Orchestrator) GenerateResponse(
	ctx context.Context, query, history string, registry *ToolRegistry,
) (string, []domain.Source, error) {
	if o.llm == nil {
		return "", nil, domain.ErrLLMUnavailable
	}

	system := systemPrompt
	if history != "" {
		system = fmt.Sprintf("%s\n\nPrevious conversation:\n%s", systemPrompt, history)
	}

	messages := []driven.Message{{Role: "user", Content: query}}

	var tools []driven.ToolDefinition
	if registry != nil {
		tools = registry.Definitions()
	}

	logger.Section("Dialogue")
	logger.Debug("Query: %q, tools: %d, history: %t", query, len(tools), history != "")

	completion, err := o.llm.Complete(ctx, system, messages, tools)
	if err != nil {
		return "", nil, fmt.Errorf("llm complete: %w", err)
	}

	if !completion.ToolUse() || registry == nil {
		return completion.Text, nil, nil
	}

	logger.Debug("Model requested %d tool call(s)", len(completion.ToolCalls))

	// Execute sequentially in request order; later calls may depend on
	// earlier retrieval state.
	results := make([]driven.ToolResult, 0, len(completion.ToolCalls))
	var sources []domain.Source
	for _, call := range completion.ToolCalls {
		text, toolSources := registry.Invoke(ctx, call.Name, call.Arguments)
		logger.Debug("Tool %q -> %d chars, %d sources", call.Name, len(text), len(toolSources))
		results = append(results, driven.ToolResult{CallID: call.ID, Content: text})
		if toolSources != nil {
			sources = toolSources
		}
	}

	messages = append(messages,
		driven.Message{Role: "assistant", ToolCalls: completion.ToolCalls},
		driven.Message{Role: "user", ToolResults: results},
	)

	final, err := o.llm.Complete(ctx, system, messages, nil)
	if err != nil {
		return "", nil, fmt.Errorf("llm complete after tools: %w", err)
	}

	return final.Text, sources, nil
}
