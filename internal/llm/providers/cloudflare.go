package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/AutumnsGrove/grove-domain-tool/internal/llm"
	"github.com/AutumnsGrove/grove-domain-tool/internal/llm/llmerrors"
)

// ProviderCloudflare identifies the Cloudflare Workers AI backend.
const ProviderCloudflare = "cloudflare"

const (
	cloudflareDefaultEndpoint = "https://api.cloudflare.com/client/v4/accounts"
	cloudflareDefaultModel    = "@cf/meta/llama-4-scout-17b-16e-instruct"
)

// CloudflareClient talks to the Workers AI run endpoint. The API takes
// OpenAI-style messages and tool schemas but wraps the result in
// Cloudflare's standard success/errors envelope, and routes per account
// rather than per organization key.
type CloudflareClient struct {
	cfg  Config
	http *http.Client
}

// NewCloudflareClient builds a Workers AI client.
func NewCloudflareClient(cfg Config, httpClient *http.Client) *CloudflareClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = cloudflareDefaultEndpoint
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = cloudflareDefaultModel
	}
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	return &CloudflareClient{cfg: cfg, http: httpClient}
}

// Name returns the provider identifier.
func (c *CloudflareClient) Name() string { return ProviderCloudflare }

// SupportsTools reports structured tool-call support.
func (c *CloudflareClient) SupportsTools() bool { return true }

// Generate produces a plain completion.
func (c *CloudflareClient) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return c.call(ctx, req, nil)
}

// GenerateWithTools produces a completion constrained by tool schemas.
// Workers AI has no tool_choice knob; the choice argument is accepted
// for interface parity and ignored.
func (c *CloudflareClient) GenerateWithTools(
	ctx context.Context, req llm.Request, tools []llm.ToolDefinition, _ string,
) (*llm.Response, error) {
	return c.call(ctx, req, tools)
}

func (c *CloudflareClient) call(
	ctx context.Context, req llm.Request, tools []llm.ToolDefinition,
) (*llm.Response, error) {
	if c.cfg.AccountID == "" {
		return nil, &llmerrors.AuthenticationError{
			ProviderError: llmerrors.ProviderError{
				Provider: ProviderCloudflare,
				Message:  "missing account ID",
				Type:     llmerrors.ErrorTypeAuth,
			},
		}
	}

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
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/ai/run/%s",
		strings.TrimSuffix(c.cfg.Endpoint, "/"), c.cfg.AccountID, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &llmerrors.ProviderError{
			Provider: ProviderCloudflare,
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
		return nil, parseCloudflareError(httpResp, raw)
	}

	var resp struct {
		Success bool `json:"success"`
		Errors  []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
		Result struct {
			Response  string `json:"response"`
			ToolCalls []struct {
				Name      string          `json:"name"`
				Arguments json.RawMessage `json:"arguments"`
			} `json:"tool_calls"`
			Usage struct {
				PromptTokens     int64 `json:"prompt_tokens"`
				CompletionTokens int64 `json:"completion_tokens"`
			} `json:"usage"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !resp.Success {
		message := "request was not successful"
		code := ""
		if len(resp.Errors) > 0 {
			message = resp.Errors[0].Message
			code = strconv.Itoa(resp.Errors[0].Code)
		}
		return nil, &llmerrors.ProviderError{
			Provider: ProviderCloudflare,
			Message:  message,
			Code:     code,
			Type:     llmerrors.ErrorTypeProvider,
		}
	}

	out := &llm.Response{
		Model:   model,
		Content: resp.Result.Response,
		Usage: llm.Usage{
			InputTokens:  resp.Result.Usage.PromptTokens,
			OutputTokens: resp.Result.Usage.CompletionTokens,
		},
	}
	for _, tc := range resp.Result.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
			Name:      tc.Name,
			Arguments: normalizeToolArguments(tc.Arguments),
		})
	}
	return out, nil
}

// normalizeToolArguments unwraps arguments that arrive as a JSON string
// holding JSON, which some Workers AI models emit instead of an object.
func normalizeToolArguments(raw json.RawMessage) []byte {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []byte(s)
	}
	return raw
}

func parseCloudflareError(httpResp *http.Response, body []byte) error {
	var errResp struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	message := string(body)
	code := ""
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Errors) > 0 {
		message = errResp.Errors[0].Message
		code = strconv.Itoa(errResp.Errors[0].Code)
	}

	err := llmerrors.FromStatus(ProviderCloudflare, httpResp.StatusCode, code, message)
	if rle, ok := err.(*llmerrors.RateLimitError); ok {
		if after, convErr := strconv.Atoi(httpResp.Header.Get("retry-after")); convErr == nil {
			rle.RetryAfter = after
		}
	}
	return err
}
