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

// Canonical identifiers for the OpenAI-compatible backends.
const (
	ProviderOpenAI   = "openai"
	ProviderKimi     = "kimi"
	ProviderDeepSeek = "deepseek"
)

var openAICompatibleDefaults = map[string]struct {
	endpoint string
	model    string
}{
	ProviderOpenAI:   {"https://api.openai.com/v1", "gpt-4o"},
	ProviderKimi:     {"https://api.moonshot.ai/v1", "kimi-k2-0528"},
	ProviderDeepSeek: {"https://api.deepseek.com/v1", "deepseek-chat"},
}

// OpenAIClient talks to the OpenAI chat-completions API. Kimi and
// DeepSeek expose the same wire format, so one client serves all three;
// only the endpoint, default model, and reported name differ.
type OpenAIClient struct {
	name string
	cfg  Config
	http *http.Client
}

// NewOpenAIClient builds a chat-completions client for the named
// OpenAI-compatible provider.
func NewOpenAIClient(name string, cfg Config, httpClient *http.Client) *OpenAIClient {
	if defaults, ok := openAICompatibleDefaults[name]; ok {
		if cfg.Endpoint == "" {
			cfg.Endpoint = defaults.endpoint
		}
		if cfg.DefaultModel == "" {
			cfg.DefaultModel = defaults.model
		}
	}
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	return &OpenAIClient{name: name, cfg: cfg, http: httpClient}
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string { return c.name }

// SupportsTools reports structured tool-call support.
func (c *OpenAIClient) SupportsTools() bool { return true }

// Generate produces a plain completion.
func (c *OpenAIClient) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return c.call(ctx, req, nil, "")
}

// GenerateWithTools produces a completion constrained by tool schemas.
func (c *OpenAIClient) GenerateWithTools(
	ctx context.Context, req llm.Request, tools []llm.ToolDefinition, toolChoice string,
) (*llm.Response, error) {
	return c.call(ctx, req, tools, toolChoice)
}

func (c *OpenAIClient) call(
	ctx context.Context, req llm.Request, tools []llm.ToolDefinition, toolChoice string,
) (*llm.Response, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.DefaultModel
	}

	messages := []map[string]any{}
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]any{"role": "user", "content": req.Prompt})

	body := map[string]any{
		"model":       model,
		"messages":    messages,
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
	}
	if len(tools) > 0 {
		rendered := make([]map[string]any, 0, len(tools))
		for _, t := range tools {
			rendered = append(rendered, t.ToOpenAI())
		}
		body["tools"] = rendered
		if toolChoice != "" {
			body["tool_choice"] = map[string]any{
				"type":     "function",
				"function": map[string]any{"name": toolChoice},
			}
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.cfg.Endpoint+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &llmerrors.ProviderError{
			Provider: c.name,
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
		return nil, parseOpenAIError(c.name, httpResp, raw)
	}

	var resp struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content   string `json:"content"`
				ToolCalls []struct {
					Function struct {
						Name      string `json:"name"`
						Arguments string `json:"arguments"`
					} `json:"function"`
				} `json:"tool_calls"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int64 `json:"prompt_tokens"`
			CompletionTokens int64 `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	out := &llm.Response{
		Model: resp.Model,
		Usage: llm.Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens},
	}
	if len(resp.Choices) > 0 {
		msg := resp.Choices[0].Message
		out.Content = msg.Content
		for _, tc := range msg.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
				Name:      tc.Function.Name,
				Arguments: []byte(tc.Function.Arguments),
			})
		}
	}
	return out, nil
}

func parseOpenAIError(provider string, httpResp *http.Response, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	message := string(body)
	code := ""
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
		code = errResp.Error.Code
	}

	err := llmerrors.FromStatus(provider, httpResp.StatusCode, code, message)
	if rle, ok := err.(*llmerrors.RateLimitError); ok {
		if after, convErr := strconv.Atoi(httpResp.Header.Get("retry-after")); convErr == nil {
			rle.RetryAfter = after
		}
	}
	return err
}
