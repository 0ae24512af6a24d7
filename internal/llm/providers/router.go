package providers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/AutumnsGrove/grove-domain-tool/internal/llm"
)

// Config holds the settings for one model backend.
type Config struct {
	// Endpoint overrides the provider's production API base URL.
	Endpoint string `json:"endpoint"`

	// APIKey is the credential. Sensitive, never serialized.
	APIKey string `json:"-"`

	// DefaultModel is used when a request does not name a model.
	DefaultModel string `json:"default_model"`

	// AccountID scopes account-routed APIs; only Cloudflare uses it.
	AccountID string `json:"account_id,omitempty"`
}

const defaultHTTPTimeout = 60 * time.Second

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// New builds the client for the named provider. Kimi and DeepSeek route
// through the OpenAI-compatible client.
func New(name string, cfg Config) (llm.Client, error) {
	switch name {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, nil), nil
	case ProviderOpenAI, ProviderKimi, ProviderDeepSeek:
		return NewOpenAIClient(name, cfg, nil), nil
	case ProviderCloudflare:
		return NewCloudflareClient(cfg, nil), nil
	case ProviderMock:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
