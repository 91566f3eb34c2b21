package driven

import "context"

// LLMService is a tool-capable chat completion backend.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI-compatible inference servers
type LLMService interface {
	// Complete sends one request to the model. When tools is non-empty
	// the model may answer with tool invocation requests instead of
	// final text; the two cases are distinguished on the returned
	// Completion. Transport and API failures are returned as errors.
	Complete(ctx context.Context, system string, messages []Message, tools []ToolDefinition) (*Completion, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// Message is one turn in the conversation sent to the model.
// Exactly one of Content, ToolCalls or ToolResults is populated:
// plain text for ordinary turns, ToolCalls for an assistant turn that
// requested tools, ToolResults for the user turn answering it.
type Message struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the plain message text.
	Content string

	// ToolCalls carries an assistant turn's tool invocation requests,
	// echoed back verbatim when resubmitting after tool execution.
	ToolCalls []ToolCall

	// ToolResults carries one result per executed tool call.
	ToolResults []ToolResult
}

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	// ID is the backend-assigned call identifier.
	ID string

	// Name is the registered tool name.
	Name string

	// Arguments are the keyword arguments supplied by the model.
	Arguments map[string]any
}

// ToolResult is the outcome of one executed tool call, tagged with the
// identifier of the call it answers.
type ToolResult struct {
	CallID  string
	Content string
}

// ToolDefinition is a schema descriptor for one invocable tool,
// passed verbatim to the backend.
type ToolDefinition struct {
	Name        string
	Description string

	// InputSchema is a JSON-schema object describing the arguments.
	InputSchema map[string]any
}

// Completion is the outcome of one model call. It is a two-case
// variant: either the model produced final text, or it requested tool
// invocations. ToolUse distinguishes the cases.
type Completion struct {
	// Text is the final answer text. Empty when tools were requested.
	Text string

	// ToolCalls are the requested invocations, in request order.
	ToolCalls []ToolCall
}

// ToolUse reports whether the model requested tool invocations.
func (c *Completion) ToolUse() bool {
	return len(c.ToolCalls) > 0
}
