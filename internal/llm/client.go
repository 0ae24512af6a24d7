// Package llm defines the provider-agnostic model client consumed by the
// search agents. Concrete vendor clients live in the providers
// subpackage; callers never branch on vendor identity, only on the
// tool-calling capability flag.
package llm

import "context"

// Usage reports token consumption for a single model call.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Request is a normalized generation request.
type Request struct {
	// Prompt is the user message.
	Prompt string

	// System is an optional system prompt.
	System string

	// Model overrides the client's default model when non-empty.
	Model string

	// MaxTokens caps the completion length.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64
}

// ToolCall is a structured call the model chose to make.
type ToolCall struct {
	// Name is the tool that was invoked.
	Name string

	// Arguments is the raw JSON argument object.
	Arguments []byte
}

// Response is a normalized model response.
type Response struct {
	// Content is the assistant text, possibly empty when the model only
	// produced tool calls.
	Content string

	// Model is the concrete model that served the request.
	Model string

	// ToolCalls lists structured calls, empty for plain generation.
	ToolCalls []ToolCall

	Usage Usage
}

// HasToolCall reports whether the response contains any structured call.
func (r *Response) HasToolCall() bool { return len(r.ToolCalls) > 0 }

// Client is the capability set every model backend provides. Backends
// that cannot do structured tool calls return false from SupportsTools
// and may reject GenerateWithTools.
type Client interface {
	// Name returns the canonical provider identifier, e.g. "anthropic".
	Name() string

	// Generate produces a plain text completion.
	Generate(ctx context.Context, req Request) (*Response, error)

	// GenerateWithTools produces a completion that may include structured
	// tool calls. toolChoice names a tool to force, or "" for auto.
	GenerateWithTools(ctx context.Context, req Request, tools []ToolDefinition, toolChoice string) (*Response, error)

	// SupportsTools reports whether GenerateWithTools is usable.
	SupportsTools() bool
}
