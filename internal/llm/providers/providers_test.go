package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutumnsGrove/grove-domain-tool/internal/llm"
	"github.com/AutumnsGrove/grove-domain-tool/internal/llm/llmerrors"
)

func TestAnthropicGenerate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Write([]byte(`{
			"content": [{"type": "text", "text": "hello there"}],
			"model": "claude-sonnet-4-20250514",
			"usage": {"input_tokens": 12, "output_tokens": 7}
		}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(Config{Endpoint: srv.URL, APIKey: "test-key"}, nil)
	resp, err := c.Generate(context.Background(), llm.Request{
		Prompt:      "say hello",
		System:      "be brief",
		MaxTokens:   256,
		Temperature: 0.8,
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", resp.Content)
	assert.False(t, resp.HasToolCall())
	assert.Equal(t, int64(12), resp.Usage.InputTokens)
	assert.Equal(t, int64(7), resp.Usage.OutputTokens)

	assert.Equal(t, "be brief", captured["system"])
	assert.Equal(t, float64(256), captured["max_tokens"])
	assert.Equal(t, "claude-sonnet-4-20250514", captured["model"])
}

func TestAnthropicGenerateWithTools(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Write([]byte(`{
			"content": [{"type": "tool_use", "name": "generate_domain_candidates", "input": {"domains": ["acme.com"]}}],
			"usage": {"input_tokens": 30, "output_tokens": 15}
		}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(Config{Endpoint: srv.URL, APIKey: "test-key"}, nil)
	resp, err := c.GenerateWithTools(context.Background(), llm.Request{Prompt: "go"},
		[]llm.ToolDefinition{llm.CandidateTool}, llm.CandidateTool.Name)
	require.NoError(t, err)

	require.True(t, resp.HasToolCall())
	assert.Equal(t, "generate_domain_candidates", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"domains": ["acme.com"]}`, string(resp.ToolCalls[0].Arguments))

	choice, ok := captured["tool_choice"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "tool", choice["type"])
	assert.Equal(t, "generate_domain_candidates", choice["name"])
}

func TestAnthropicAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"type": "authentication_error", "message": "invalid x-api-key"}}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(Config{Endpoint: srv.URL, APIKey: "bad-key"}, nil)
	_, err := c.Generate(context.Background(), llm.Request{Prompt: "hi"})
	require.Error(t, err)

	var authErr *llmerrors.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ProviderAnthropic, authErr.Provider)
	assert.Equal(t, "invalid x-api-key", authErr.Message)
	assert.True(t, llmerrors.IsProviderError(err))
}

func TestAnthropicRateLimitRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("retry-after", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"type": "rate_limit_error", "message": "slow down"}}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(Config{Endpoint: srv.URL}, nil)
	_, err := c.Generate(context.Background(), llm.Request{Prompt: "hi"})

	var rle *llmerrors.RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 30, rle.RetryAfter)
}

func TestOpenAIGenerate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Write([]byte(`{
			"model": "gpt-4o",
			"choices": [{"message": {"content": "hello"}}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 4}
		}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(ProviderOpenAI, Config{Endpoint: srv.URL, APIKey: "test-key"}, nil)
	resp, err := c.Generate(context.Background(), llm.Request{Prompt: "say hello", System: "be brief"})
	require.NoError(t, err)

	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, int64(9), resp.Usage.InputTokens)

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "gpt-4o", captured["model"])
}

func TestOpenAIToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"choices": [{"message": {"tool_calls": [
				{"function": {"name": "evaluate_domains", "arguments": "{\"evaluations\": []}"}}
			]}}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 2}
		}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(ProviderOpenAI, Config{Endpoint: srv.URL}, nil)
	resp, err := c.GenerateWithTools(context.Background(), llm.Request{Prompt: "score"},
		[]llm.ToolDefinition{llm.EvaluationTool}, llm.EvaluationTool.Name)
	require.NoError(t, err)

	require.True(t, resp.HasToolCall())
	assert.Equal(t, "evaluate_domains", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"evaluations": []}`, string(resp.ToolCalls[0].Arguments))
}

func TestOpenAICompatibleDefaults(t *testing.T) {
	kimi := NewOpenAIClient(ProviderKimi, Config{}, nil)
	assert.Equal(t, ProviderKimi, kimi.Name())
	assert.Equal(t, "https://api.moonshot.ai/v1", kimi.cfg.Endpoint)
	assert.Equal(t, "kimi-k2-0528", kimi.cfg.DefaultModel)

	deepseek := NewOpenAIClient(ProviderDeepSeek, Config{DefaultModel: "deepseek-reasoner"}, nil)
	assert.Equal(t, "https://api.deepseek.com/v1", deepseek.cfg.Endpoint)
	assert.Equal(t, "deepseek-reasoner", deepseek.cfg.DefaultModel)
}

func TestCloudflareGenerate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acct-123/ai/run/@cf/meta/llama-4-scout-17b-16e-instruct", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Write([]byte(`{
			"success": true,
			"errors": [],
			"result": {
				"response": "hello",
				"usage": {"prompt_tokens": 11, "completion_tokens": 6}
			}
		}`))
	}))
	defer srv.Close()

	c := NewCloudflareClient(Config{Endpoint: srv.URL, APIKey: "test-key", AccountID: "acct-123"}, nil)
	resp, err := c.Generate(context.Background(), llm.Request{Prompt: "say hello", System: "be brief"})
	require.NoError(t, err)

	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, int64(11), resp.Usage.InputTokens)
	assert.Equal(t, int64(6), resp.Usage.OutputTokens)

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
}

func TestCloudflareToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"success": true,
			"errors": [],
			"result": {
				"response": "",
				"tool_calls": [
					{"name": "generate_domain_candidates", "arguments": {"domains": ["acme.com"]}},
					{"name": "evaluate_domains", "arguments": "{\"evaluations\": []}"}
				]
			}
		}`))
	}))
	defer srv.Close()

	c := NewCloudflareClient(Config{Endpoint: srv.URL, AccountID: "acct-123"}, nil)
	resp, err := c.GenerateWithTools(context.Background(), llm.Request{Prompt: "go"},
		[]llm.ToolDefinition{llm.CandidateTool}, llm.CandidateTool.Name)
	require.NoError(t, err)

	require.True(t, resp.HasToolCall())
	assert.Equal(t, "generate_domain_candidates", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"domains": ["acme.com"]}`, string(resp.ToolCalls[0].Arguments))

	// String-wrapped arguments get unwrapped to plain JSON.
	assert.JSONEq(t, `{"evaluations": []}`, string(resp.ToolCalls[1].Arguments))
}

func TestCloudflareErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"success": false,
			"errors": [{"code": 7009, "message": "model not found"}],
			"result": null
		}`))
	}))
	defer srv.Close()

	c := NewCloudflareClient(Config{Endpoint: srv.URL, AccountID: "acct-123"}, nil)
	_, err := c.Generate(context.Background(), llm.Request{Prompt: "hi"})
	require.Error(t, err)

	var pe *llmerrors.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ProviderCloudflare, pe.Provider)
	assert.Equal(t, "model not found", pe.Message)
	assert.Equal(t, "7009", pe.Code)
}

func TestCloudflareAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success": false, "errors": [{"code": 10000, "message": "Authentication error"}]}`))
	}))
	defer srv.Close()

	c := NewCloudflareClient(Config{Endpoint: srv.URL, APIKey: "bad", AccountID: "acct-123"}, nil)
	_, err := c.Generate(context.Background(), llm.Request{Prompt: "hi"})
	require.Error(t, err)

	var authErr *llmerrors.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Authentication error", authErr.Message)
}

func TestCloudflareMissingAccountID(t *testing.T) {
	c := NewCloudflareClient(Config{APIKey: "test-key"}, nil)
	_, err := c.Generate(context.Background(), llm.Request{Prompt: "hi"})
	require.Error(t, err)

	var authErr *llmerrors.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Message, "account ID")
}

func TestNewRoutesProviders(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
	}{
		{ProviderAnthropic, "anthropic"},
		{ProviderOpenAI, "openai"},
		{ProviderKimi, "kimi"},
		{ProviderDeepSeek, "deepseek"},
		{ProviderCloudflare, "cloudflare"},
		{ProviderMock, "mock"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			client, err := New(tt.provider, Config{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, client.Name())
		})
	}

	_, err := New("gemini", Config{})
	require.Error(t, err)
}

func TestMockClientCandidates(t *testing.T) {
	c := NewMockClient()

	prompt := "## Client Information\n\n**Business/Project Name**: Sunrise Bakery\n"
	resp, err := c.Generate(context.Background(), llm.Request{Prompt: prompt})
	require.NoError(t, err)

	var payload struct {
		Domains []string `json:"domains"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Content), &payload))
	require.NotEmpty(t, payload.Domains)
	assert.Contains(t, payload.Domains, "sunrisebakery.com")
	assert.Contains(t, payload.Domains, "getsunrisebakery.com")

	// Deterministic across calls.
	again, err := c.Generate(context.Background(), llm.Request{Prompt: prompt})
	require.NoError(t, err)
	assert.Equal(t, resp.Content, again.Content)
	assert.Equal(t, 2, c.Calls())
}

func TestMockClientEvaluations(t *testing.T) {
	c := NewMockClient()

	prompt := "**Domains to evaluate**:\n- acme.com\n- sunrisebakeryartisan.io\n"
	resp, err := c.GenerateWithTools(context.Background(), llm.Request{Prompt: prompt},
		[]llm.ToolDefinition{llm.EvaluationTool}, llm.EvaluationTool.Name)
	require.NoError(t, err)
	require.True(t, resp.HasToolCall())

	var payload struct {
		Evaluations []struct {
			Domain        string  `json:"domain"`
			Score         float64 `json:"score"`
			WorthChecking bool    `json:"worth_checking"`
		} `json:"evaluations"`
	}
	require.NoError(t, json.Unmarshal(resp.ToolCalls[0].Arguments, &payload))
	require.Len(t, payload.Evaluations, 2)

	short, long := payload.Evaluations[0], payload.Evaluations[1]
	assert.Equal(t, "acme.com", short.Domain)
	assert.Greater(t, short.Score, long.Score)
}

func TestMockClientFailureInjection(t *testing.T) {
	c := NewMockClient()
	c.FailWith = llmerrors.FromStatus(ProviderMock, http.StatusTooManyRequests, "", "scripted")

	_, err := c.Generate(context.Background(), llm.Request{Prompt: "x"})
	require.Error(t, err)

	var rle *llmerrors.RateLimitError
	assert.ErrorAs(t, err, &rle)
}

func TestMockClientWithoutToolSupport(t *testing.T) {
	c := NewMockClient()
	c.SupportsToolCalls = false

	assert.False(t, c.SupportsTools())
	_, err := c.GenerateWithTools(context.Background(), llm.Request{Prompt: "x"},
		[]llm.ToolDefinition{llm.CandidateTool}, "")
	require.ErrorIs(t, err, llmerrors.ErrToolsUnsupported)
}
