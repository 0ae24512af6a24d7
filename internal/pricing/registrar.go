package pricing

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/rs/zerolog"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
)

const registrarTimeout = 15 * time.Second

// RegistrarClient prices domains against a registrar's XML-RPC API.
// Credentials are prepended as the first two parameters of every call,
// which is the auth convention of the Loopia-style RPCSERV endpoints.
type RegistrarClient struct {
	username   string
	password   string
	rpc        *xmlrpc.Client
	thresholds domain.PriceThresholds
	logger     zerolog.Logger
}

// NewRegistrarClient connects to the registrar endpoint.
func NewRegistrarClient(
	endpoint, username, password string,
	thresholds domain.PriceThresholds,
	logger zerolog.Logger,
) (*RegistrarClient, error) {
	httpClient := &http.Client{Timeout: registrarTimeout}
	rpc, err := xmlrpc.NewClient(endpoint, httpClient.Transport)
	if err != nil {
		return nil, err
	}
	return &RegistrarClient{
		username:   username,
		password:   password,
		rpc:        rpc,
		thresholds: thresholds,
		logger:     logger.With().Str("component", "pricing").Logger(),
	}, nil
}

// call invokes an XML-RPC method with authentication prepended.
func (c *RegistrarClient) call(method string, params ...any) (any, error) {
	all := append([]any{c.username, c.password}, params...)

	var reply any
	if err := c.rpc.Call(method, all, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// BatchPrice quotes each domain via getDomainPrice. A domain whose
// lookup fails is skipped and logged; the caller sees it as unpriced.
func (c *RegistrarClient) BatchPrice(ctx context.Context, domains []string) (map[string]domain.PriceQuote, error) {
	quotes := make(map[string]domain.PriceQuote, len(domains))
	for _, d := range domains {
		if err := ctx.Err(); err != nil {
			return quotes, err
		}

		reply, err := c.call("getDomainPrice", strings.ToLower(d))
		if err != nil {
			c.logger.Warn().Err(err).Str("domain", d).Msg("price lookup failed")
			continue
		}

		quote, ok := c.parseQuote(d, reply)
		if !ok {
			c.logger.Warn().Str("domain", d).Msg("unparseable price response")
			continue
		}
		quotes[d] = quote
	}
	return quotes, nil
}

// parseQuote reads {"price": <decimal>, "currency": <code>} out of the
// loosely typed RPC reply.
func (c *RegistrarClient) parseQuote(name string, reply any) (domain.PriceQuote, bool) {
	m, ok := reply.(map[string]any)
	if !ok {
		return domain.PriceQuote{}, false
	}

	var cents int
	switch price := m["price"].(type) {
	case float64:
		cents = int(math.Round(price * 100))
	case int64:
		cents = int(price) * 100
	case int:
		cents = price * 100
	default:
		return domain.PriceQuote{}, false
	}

	currency, _ := m["currency"].(string)
	if currency == "" {
		currency = "USD"
	}

	return domain.PriceQuote{
		Domain:     strings.ToLower(name),
		PriceCents: cents,
		Currency:   currency,
		Category:   c.thresholds.CategoryFor(cents),
	}, true
}
