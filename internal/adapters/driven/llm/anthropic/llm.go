// Package anthropic provides the LLM service adapter using the
// Anthropic Messages API, including its tool-use protocol.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/coursechat-cli/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 800

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"

	// stopReasonToolUse marks a response that requests tool execution.
	stopReasonToolUse = "tool_use"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the LLM model to use.
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxTokens caps the generated answer length (default: 800).
	MaxTokens int
}

// LLMService provides chat completion with tool use via the Anthropic
// Messages API.
type LLMService struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model       string         `json:"model"`
	Messages    []apiMessage   `json:"messages"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
	System      string         `json:"system,omitempty"`
	Tools       []apiTool      `json:"tools,omitempty"`
	ToolChoice  *apiToolChoice `json:"tool_choice,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type apiTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type apiToolChoice struct {
	Type string `json:"type"`
}

// contentBlock is one element of a structured message content array,
// in either direction.
type contentBlock struct {
	Type string `json:"type"`

	// type == "text"
	Text string `json:"text,omitempty"`

	// type == "tool_use"
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// type == "tool_result"
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Complete sends one request to the model. Answers are deterministic
// (temperature 0). Transport and API failures are returned as errors
// and are for the caller to handle; they are not retried here.
func (s *LLMService) Complete(
	ctx context.Context,
	system string,
	messages []driven.Message,
	tools []driven.ToolDefinition,
) (*driven.Completion, error) {
	reqBody := messagesRequest{
		Model:     s.model,
		Messages:  encodeMessages(messages),
		MaxTokens: s.maxTokens,
		System:    system,
	}
	if len(tools) > 0 {
		reqBody.Tools = encodeTools(tools)
		reqBody.ToolChoice = &apiToolChoice{Type: "auto"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/v1/messages",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if msgResp.Error != nil {
		return nil, fmt.Errorf("anthropic error: %s", msgResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(body))
	}

	return decodeCompletion(msgResp), nil
}

// encodeMessages converts port messages into API messages. Plain turns
// use string content; tool requests and tool results use structured
// content block arrays.
func encodeMessages(messages []driven.Message) []apiMessage {
	encoded := make([]apiMessage, len(messages))
	for i, msg := range messages {
		switch {
		case len(msg.ToolCalls) > 0:
			blocks := make([]contentBlock, len(msg.ToolCalls))
			for j, call := range msg.ToolCalls {
				blocks[j] = contentBlock{
					Type:  "tool_use",
					ID:    call.ID,
					Name:  call.Name,
					Input: call.Arguments,
				}
			}
			encoded[i] = apiMessage{Role: msg.Role, Content: blocks}
		case len(msg.ToolResults) > 0:
			blocks := make([]contentBlock, len(msg.ToolResults))
			for j, result := range msg.ToolResults {
				blocks[j] = contentBlock{
					Type:      "tool_result",
					ToolUseID: result.CallID,
					Content:   result.Content,
				}
			}
			encoded[i] = apiMessage{Role: msg.Role, Content: blocks}
		default:
			encoded[i] = apiMessage{Role: msg.Role, Content: msg.Content}
		}
	}
	return encoded
}

func encodeTools(tools []driven.ToolDefinition) []apiTool {
	encoded := make([]apiTool, len(tools))
	for i, t := range tools {
		encoded[i] = apiTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		}
	}
	return encoded
}

// decodeCompletion maps the response onto the two-case completion
// variant: tool requests when the model stopped for tool use, otherwise
// the concatenated text blocks.
func decodeCompletion(resp messagesResponse) *driven.Completion {
	if resp.StopReason == stopReasonToolUse {
		var calls []driven.ToolCall
		for _, block := range resp.Content {
			if block.Type == "tool_use" {
				calls = append(calls, driven.ToolCall{
					ID:        block.ID,
					Name:      block.Name,
					Arguments: block.Input,
				})
			}
		}
		return &driven.Completion{ToolCalls: calls}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &driven.Completion{Text: text.String()}
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
