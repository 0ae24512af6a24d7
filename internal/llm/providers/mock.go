package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/AutumnsGrove/grove-domain-tool/internal/llm"
	"github.com/AutumnsGrove/grove-domain-tool/internal/llm/llmerrors"
)

// ProviderMock is the identifier for the deterministic offline backend.
const ProviderMock = "mock"

var mockTLDs = []string{"com", "co", "io", "dev", "app", "me", "net", "org"}

var (
	mockPrefixes = []string{"get", "try", "use", "my", "the", "go"}
	mockSuffixes = []string{"hq", "app", "labs", "studio", "works", "hub"}
)

// MockClient is a deterministic model backend for tests, development,
// and offline demo runs. It fabricates plausible candidate and
// evaluation payloads from the prompt without any network calls, and
// can be scripted to fail or to return fixed content.
type MockClient struct {
	mu sync.Mutex

	// FixedResponse, when non-empty, is returned verbatim as content.
	FixedResponse string

	// FailWith, when non-nil, is returned as the error of every call.
	FailWith error

	// SupportsToolCalls toggles the structured-call capability so tests
	// can exercise both interpreter paths.
	SupportsToolCalls bool

	// TokensPerCall is the fabricated usage reported per call.
	TokensPerCall int64

	calls int
}

// NewMockClient returns a tool-capable mock with plausible defaults.
func NewMockClient() *MockClient {
	return &MockClient{SupportsToolCalls: true, TokensPerCall: 100}
}

// Name returns the provider identifier.
func (c *MockClient) Name() string { return ProviderMock }

// SupportsTools reports the configured capability.
func (c *MockClient) SupportsTools() bool { return c.SupportsToolCalls }

// Calls returns how many generate calls the mock has served.
func (c *MockClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Generate fabricates a free-text JSON response for the prompt.
func (c *MockClient) Generate(_ context.Context, req llm.Request) (*llm.Response, error) {
	content, err := c.respond(req)
	if err != nil {
		return nil, err
	}
	return &llm.Response{
		Content: content,
		Model:   "mock-model-v1",
		Usage:   c.usage(),
	}, nil
}

// GenerateWithTools fabricates a structured tool call matching the
// first requested tool.
func (c *MockClient) GenerateWithTools(
	_ context.Context, req llm.Request, tools []llm.ToolDefinition, _ string,
) (*llm.Response, error) {
	content, err := c.respond(req)
	if err != nil {
		return nil, err
	}
	if !c.SupportsToolCalls {
		return nil, llmerrors.ErrToolsUnsupported
	}

	resp := &llm.Response{Model: "mock-model-v1", Usage: c.usage()}
	if len(tools) > 0 {
		resp.ToolCalls = []llm.ToolCall{{Name: tools[0].Name, Arguments: []byte(content)}}
	} else {
		resp.Content = content
	}
	return resp, nil
}

func (c *MockClient) usage() llm.Usage {
	return llm.Usage{InputTokens: c.TokensPerCall, OutputTokens: c.TokensPerCall}
}

func (c *MockClient) respond(req llm.Request) (string, error) {
	c.mu.Lock()
	c.calls++
	fail := c.FailWith
	fixed := c.FixedResponse
	c.mu.Unlock()

	if fail != nil {
		return "", fail
	}
	if fixed != "" {
		return fixed, nil
	}

	if domains := domainsFromEvalPrompt(req.Prompt); len(domains) > 0 {
		return mockEvaluationsJSON(domains), nil
	}
	return mockCandidatesJSON(req.Prompt), nil
}

// domainsFromEvalPrompt pulls the bulleted domain list out of an
// evaluation prompt; a generation prompt has none.
func domainsFromEvalPrompt(prompt string) []string {
	var domains []string
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if name, ok := strings.CutPrefix(line, "- "); ok && strings.Contains(name, ".") {
			domains = append(domains, strings.ToLower(name))
		}
	}
	return domains
}

// mockCandidatesJSON derives name variations from the business name
// embedded in the prompt, the same way a model would: direct names per
// TLD plus prefix and suffix variations.
func mockCandidatesJSON(prompt string) string {
	base := businessNameFromPrompt(prompt)

	var domains []string
	for _, tld := range mockTLDs {
		domains = append(domains, base+"."+tld)
	}
	for i, prefix := range mockPrefixes {
		domains = append(domains, prefix+base+"."+mockTLDs[i%len(mockTLDs)])
	}
	for i, suffix := range mockSuffixes {
		domains = append(domains, base+suffix+"."+mockTLDs[(i+3)%len(mockTLDs)])
	}

	payload, _ := json.Marshal(map[string]any{"domains": domains})
	return string(payload)
}

func businessNameFromPrompt(prompt string) string {
	base := "acme"
	for _, line := range strings.Split(prompt, "\n") {
		if _, after, ok := strings.Cut(line, "Business/Project Name**:"); ok {
			cleaned := strings.ToLower(strings.TrimSpace(after))
			cleaned = strings.Map(func(r rune) rune {
				if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
					return r
				}
				return -1
			}, cleaned)
			if cleaned != "" {
				base = cleaned
			}
			break
		}
	}
	return base
}

func mockEvaluationsJSON(domains []string) string {
	type eval struct {
		Domain        string   `json:"domain"`
		Score         float64  `json:"score"`
		WorthChecking bool     `json:"worth_checking"`
		Pronounceable bool     `json:"pronounceable"`
		Memorable     bool     `json:"memorable"`
		BrandFit      bool     `json:"brand_fit"`
		EmailFriendly bool     `json:"email_friendly"`
		Flags         []string `json:"flags"`
		Notes         string   `json:"notes"`
	}

	evals := make([]eval, 0, len(domains))
	for _, d := range domains {
		name, _, _ := strings.Cut(d, ".")
		score := 0.9 - float64(len(name))*0.03
		if score < 0.2 {
			score = 0.2
		}
		evals = append(evals, eval{
			Domain:        d,
			Score:         score,
			WorthChecking: score > 0.4,
			Pronounceable: true,
			Memorable:     len(name) <= 10,
			BrandFit:      score > 0.5,
			EmailFriendly: !strings.ContainsAny(name, "-0123456789"),
			Flags:         []string{},
			Notes:         fmt.Sprintf("mock eval: length=%d", len(name)),
		})
	}

	payload, _ := json.Marshal(map[string]any{"evaluations": evals})
	return string(payload)
}
