// Package rdap checks domain registration status against public RDAP
// (Registration Data Access Protocol) endpoints. RDAP is the IETF
// replacement for WHOIS; the IANA bootstrap registry maps each TLD to
// its authoritative server and no API keys are needed.
package rdap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
)

const (
	// BootstrapURL is IANA's registry of TLD to RDAP server mappings.
	BootstrapURL = "https://data.iana.org/rdap/dns.json"

	// DefaultDelay paces lookups so free registry endpoints are not
	// hammered.
	DefaultDelay = 10 * time.Second

	userAgent      = "grove-domain-tool/1.0 (bulk availability check)"
	requestTimeout = 10 * time.Second
)

// Checker resolves domain availability through per-TLD RDAP servers.
// The bootstrap mapping is fetched once and cached for the Checker's
// lifetime. Lookups are serial and paced; registries rate limit
// aggressively and concurrency buys nothing but 429s.
type Checker struct {
	httpClient   *http.Client
	bootstrapURL string
	limiter      *rate.Limiter
	logger       zerolog.Logger

	mu      sync.Mutex
	servers map[string]string
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(ch *Checker) { ch.httpClient = c }
}

// WithBootstrapURL overrides the IANA bootstrap endpoint.
func WithBootstrapURL(u string) Option {
	return func(ch *Checker) { ch.bootstrapURL = u }
}

// WithDelay sets the minimum interval between lookups. Zero or
// negative disables pacing.
func WithDelay(d time.Duration) Option {
	return func(ch *Checker) {
		if d <= 0 {
			ch.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		ch.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewChecker returns a Checker paced at DefaultDelay.
func NewChecker(logger zerolog.Logger, opts ...Option) *Checker {
	c := &Checker{
		httpClient:   &http.Client{Timeout: requestTimeout},
		bootstrapURL: BootstrapURL,
		limiter:      rate.NewLimiter(rate.Every(DefaultDelay), 1),
		logger:       logger.With().Str("component", "rdap").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// serverFor returns the RDAP base URL for the domain's TLD, fetching
// and caching the bootstrap mapping on first use.
func (c *Checker) serverFor(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.servers == nil {
		servers, err := c.fetchBootstrap(ctx)
		if err != nil {
			return "", err
		}
		c.servers = servers
	}

	tld := domain.TLDOf(name)
	server, ok := c.servers[tld]
	if !ok {
		return "", fmt.Errorf("no RDAP server found for TLD .%s", tld)
	}
	return server, nil
}

func (c *Checker) fetchBootstrap(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.bootstrapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build bootstrap request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch RDAP bootstrap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch RDAP bootstrap: status %d", resp.StatusCode)
	}

	// Each service entry pairs a list of TLDs with a list of server
	// URLs; the first server wins.
	var payload struct {
		Services [][2][]string `json:"services"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode RDAP bootstrap: %w", err)
	}

	servers := make(map[string]string)
	for _, svc := range payload.Services {
		tlds, urls := svc[0], svc[1]
		if len(urls) == 0 {
			continue
		}
		server := strings.TrimRight(urls[0], "/")
		for _, tld := range tlds {
			servers[strings.ToLower(tld)] = server
		}
	}

	c.logger.Debug().Int("tlds", len(servers)).Msg("loaded RDAP bootstrap")
	return servers, nil
}

// Check looks up one domain. Lookup failures never return an error;
// they surface as a StatusUnknown record so a batch is never aborted
// by one bad TLD.
func (c *Checker) Check(ctx context.Context, name string) domain.AvailabilityRecord {
	name = strings.ToLower(strings.TrimSpace(name))

	server, err := c.serverFor(ctx, name)
	if err != nil {
		return domain.AvailabilityRecord{
			Domain: name,
			Status: domain.StatusUnknown,
			Err:    err.Error(),
		}
	}

	reqURL := server + "/domain/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.AvailabilityRecord{
			Domain: name,
			Status: domain.StatusUnknown,
			Err:    err.Error(),
		}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rdap+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.AvailabilityRecord{
			Domain: name,
			Status: domain.StatusUnknown,
			Err:    "connection error: " + err.Error(),
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Not in the registry means open for registration.
		return domain.AvailabilityRecord{Domain: name, Status: domain.StatusAvailable}
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.AvailabilityRecord{
			Domain: name,
			Status: domain.StatusUnknown,
			Err:    "rate limited - try again later",
		}
	case resp.StatusCode != http.StatusOK:
		return domain.AvailabilityRecord{
			Domain: name,
			Status: domain.StatusUnknown,
			Err:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	var payload rdapDomain
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.AvailabilityRecord{
			Domain: name,
			Status: domain.StatusUnknown,
			Err:    "decode response: " + err.Error(),
		}
	}

	record := domain.AvailabilityRecord{Domain: name, Status: domain.StatusRegistered}
	record.Registrar = payload.registrarName()
	for _, ev := range payload.Events {
		date := ev.EventDate
		if len(date) > 10 {
			date = date[:10]
		}
		switch ev.EventAction {
		case "expiration":
			record.Expiration = date
		case "registration":
			record.Creation = date
		}
	}
	return record
}

// CheckAll looks up each domain serially, waiting out the configured
// delay before every lookup. The limiter's initial token covers the
// first call of a fresh Checker, so the delay also holds across
// batches. A context cancellation marks the remaining domains unknown
// rather than dropping them.
func (c *Checker) CheckAll(ctx context.Context, names []string) []domain.AvailabilityRecord {
	records := make([]domain.AvailabilityRecord, 0, len(names))
	for i, name := range names {
		if err := c.limiter.Wait(ctx); err != nil {
			for _, rest := range names[i:] {
				records = append(records, domain.AvailabilityRecord{
					Domain: strings.ToLower(rest),
					Status: domain.StatusUnknown,
					Err:    err.Error(),
				})
			}
			return records
		}

		c.logger.Debug().Str("domain", name).Int("index", i+1).
			Int("total", len(names)).Msg("checking availability")
		records = append(records, c.Check(ctx, name))
	}
	return records
}

type rdapDomain struct {
	Entities []rdapEntity `json:"entities"`
	Events   []rdapEvent  `json:"events"`
}

type rdapEntity struct {
	Handle     string          `json:"handle"`
	Roles      []string        `json:"roles"`
	VCardArray json.RawMessage `json:"vcardArray"`
}

type rdapEvent struct {
	EventAction string `json:"eventAction"`
	EventDate   string `json:"eventDate"`
}

// registrarName digs the sponsoring registrar's display name out of
// the first registrar-role entity, falling back to its handle. The
// vCard array is loosely typed JSON, so every level is checked.
func (d *rdapDomain) registrarName() string {
	for _, entity := range d.Entities {
		if !hasRole(entity.Roles, "registrar") {
			continue
		}
		if name := vcardFullName(entity.VCardArray); name != "" {
			return name
		}
		return entity.Handle
	}
	return ""
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func vcardFullName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var vcard []any
	if err := json.Unmarshal(raw, &vcard); err != nil || len(vcard) < 2 {
		return ""
	}
	items, ok := vcard[1].([]any)
	if !ok {
		return ""
	}
	for _, item := range items {
		fields, ok := item.([]any)
		if !ok || len(fields) < 4 {
			continue
		}
		if kind, ok := fields[0].(string); !ok || kind != "fn" {
			continue
		}
		if name, ok := fields[3].(string); ok {
			return name
		}
	}
	return ""
}
