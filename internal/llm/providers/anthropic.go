// Package providers implements concrete model backends behind the llm
// client interface: Anthropic's messages API, the OpenAI-compatible chat
// API (which also serves Kimi and DeepSeek), and a deterministic mock
// for tests and offline runs.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/AutumnsGrove/grove-domain-tool/internal/llm"
	"github.com/AutumnsGrove/grove-domain-tool/internal/llm/llmerrors"
)

const (
	// ProviderAnthropic is the canonical Anthropic identifier.
	ProviderAnthropic = "anthropic"

	anthropicDefaultEndpoint = "https://api.anthropic.com/v1"
	anthropicVersion         = "2023-06-01"
)

// AnthropicClient talks to Anthropic's messages API. It supports
// structured tool calls.
type AnthropicClient struct {
	cfg  Config
	http *http.Client
}

// NewAnthropicClient builds a client; the endpoint defaults to
// Anthropic's production API when unset.
func NewAnthropicClient(cfg Config, httpClient *http.Client) *AnthropicClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = anthropicDefaultEndpoint
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "claude-sonnet-4-20250514"
	}
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	return &AnthropicClient{cfg: cfg, http: httpClient}
}

// Name returns the provider identifier.
func (c *AnthropicClient) Name() string { return ProviderAnthropic }

// SupportsTools reports structured tool-call support.
func (c *AnthropicClient) SupportsTools() bool { return true }

// Generate produces a plain completion.
func (c *AnthropicClient) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return c.call(ctx, req, nil, "")
}

// GenerateWithTools produces a completion constrained by tool schemas.
func (c *AnthropicClient) GenerateWithTools(
	ctx context.Context, req llm.Request, tools []llm.ToolDefinition, toolChoice string,
) (*llm.Response, error) {
	return c.call(ctx, req, tools, toolChoice)
}

func (c *AnthropicClient) call(
	ctx context.Context, req llm.Request, tools []llm.ToolDefinition, toolChoice string,
) (*llm.Response, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.DefaultModel
	}

	body := map[string]any{
		"model":       model,
		"messages":    []map[string]any{{"role": "user", "content": req.Prompt}},
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
	}
	if req.System != "" {
		body["system"] = req.System
	}
	if len(tools) > 0 {
		rendered := make([]map[string]any, 0, len(tools))
		for _, t := range tools {
			rendered = append(rendered, t.ToAnthropic())
		}
		body["tools"] = rendered
		if toolChoice != "" {
			body["tool_choice"] = map[string]any{"type": "tool", "name": toolChoice}
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.cfg.Endpoint+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &llmerrors.ProviderError{
			Provider: ProviderAnthropic,
			Message:  err.Error(),
			Type:     llmerrors.ErrorTypeProvider,
		}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseAnthropicError(httpResp, raw)
	}

	var resp struct {
		Content []struct {
			Type  string          `json:"type"`
			Text  string          `json:"text"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		} `json:"content"`
		Model string `json:"model"`
		Usage struct {
			InputTokens  int64 `json:"input_tokens"`
			OutputTokens int64 `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	out := &llm.Response{
		Model: resp.Model,
		Usage: llm.Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens},
	}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Content += block.Text
		case "tool_use":
			out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
				Name:      block.Name,
				Arguments: []byte(block.Input),
			})
		}
	}
	return out, nil
}

func parseAnthropicError(httpResp *http.Response, body []byte) error {
	var errResp struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	message := string(body)
	code := ""
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
		code = errResp.Error.Type
	}

	err := llmerrors.FromStatus(ProviderAnthropic, httpResp.StatusCode, code, message)
	if rle, ok := err.(*llmerrors.RateLimitError); ok {
		if after, convErr := strconv.Atoi(httpResp.Header.Get("retry-after")); convErr == nil {
			rle.RetryAfter = after
		}
	}
	return err
}
