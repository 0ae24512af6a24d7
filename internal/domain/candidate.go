// Package domain provides the core types for domain-name search jobs:
// candidates, evaluations, availability records, price quotes, and the
// search state aggregate that the orchestrator owns. Types are designed
// so that a search can be serialized between rounds and resumed later.
package domain

import (
	"errors"
	"strings"
)

// ErrInvalidDomain indicates a string that does not satisfy domain syntax rules.
var ErrInvalidDomain = errors.New("invalid domain name")

const maxLabelLength = 63

// Candidate is a proposed domain name produced in a specific search round.
// Identity is case-insensitive on the full domain string.
type Candidate struct {
	// Domain is the full lowercase domain, e.g. "sunrisebakery.com".
	Domain string `json:"domain" validate:"required"`

	// Round is the 1-indexed round the candidate was generated in.
	Round int `json:"round" validate:"min=1"`
}

// NewCandidate validates the domain syntax and returns a normalized
// (lowercased) candidate. Returns ErrInvalidDomain for anything that
// would never be a registrable name.
func NewCandidate(domain string, round int) (Candidate, error) {
	normalized := strings.ToLower(strings.TrimSpace(domain))
	if !IsValidDomain(normalized) {
		return Candidate{}, ErrInvalidDomain
	}
	return Candidate{Domain: normalized, Round: round}, nil
}

// Key returns the case-insensitive identity of the candidate.
func (c Candidate) Key() string { return strings.ToLower(c.Domain) }

// Name returns the domain without its top-level label.
func (c Candidate) Name() string {
	if i := strings.LastIndex(c.Domain, "."); i >= 0 {
		return c.Domain[:i]
	}
	return c.Domain
}

// TLD returns the top-level label, e.g. "com".
func (c Candidate) TLD() string { return TLDOf(c.Domain) }

func (c Candidate) String() string { return c.Domain }

// TLDOf extracts the final dot-separated segment of a domain, lowercased.
// Returns "" when the string has no separator.
func TLDOf(domain string) string {
	i := strings.LastIndex(domain, ".")
	if i < 0 || i == len(domain)-1 {
		return ""
	}
	return strings.ToLower(domain[i+1:])
}

// IsValidDomain reports whether s satisfies the candidate syntax rules:
// a label and a top-level label separated by a dot, label length 1-63,
// alphanumeric with interior hyphens only, and an alphabetic TLD of at
// least two characters.
func IsValidDomain(s string) bool {
	s = strings.ToLower(s)
	if len(s) < 4 || !strings.Contains(s, ".") {
		return false
	}

	parts := strings.Split(s, ".")
	tld := parts[len(parts)-1]
	if len(tld) < 2 || !isAlpha(tld) {
		return false
	}

	label := parts[0]
	if len(label) < 1 || len(label) > maxLabelLength {
		return false
	}
	return isValidLabel(label)
}

func isValidLabel(label string) bool {
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-':
			// Hyphens must be interior.
			if i == 0 || i == len(label)-1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return len(s) > 0
}
