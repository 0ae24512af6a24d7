package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMinGoodScore is the minimum evaluation score for an available
// domain to count as a good result.
const DefaultMinGoodScore = 0.4

// SearchStatus is the lifecycle state of a search job.
type SearchStatus string

const (
	// StatusPending means the job exists but no round has started.
	StatusPending SearchStatus = "pending"

	// StatusRunning means the orchestrator is executing rounds.
	StatusRunning SearchStatus = "running"

	// StatusComplete means the good-result target was met.
	StatusComplete SearchStatus = "complete"

	// StatusNeedsFollowup means the round budget ran out before the
	// target was met; the caller should surface refinement questions.
	StatusNeedsFollowup SearchStatus = "needs_followup"

	// StatusFailed means an unrecoverable error halted the search.
	// Partial results gathered before the failure are preserved.
	StatusFailed SearchStatus = "failed"
)

// IsTerminal reports whether no further rounds may run from this status.
// needs_followup is resumable and therefore not terminal.
func (s SearchStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal
// lifecycle transition.
func (s SearchStatus) CanTransition(next SearchStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusRunning || next == StatusFailed
	case StatusRunning:
		return next == StatusComplete || next == StatusNeedsFollowup || next == StatusFailed
	case StatusNeedsFollowup:
		return next == StatusRunning || next == StatusFailed
	default:
		return false
	}
}

// SearchResult merges one candidate with its evaluation, availability
// record, and optional price quote.
type SearchResult struct {
	Domain     string             `json:"domain"`
	TLD        string             `json:"tld"`
	Status     AvailabilityStatus `json:"status"`
	Score      float64            `json:"score"`
	PriceCents int                `json:"price_cents,omitempty"`
	Category   PriceCategory      `json:"price_category"`
	Evaluation *Evaluation        `json:"evaluation,omitempty"`
	Round      int                `json:"round"`
}

// IsGood reports whether the result is available with a score at or
// above the minimum.
func (r SearchResult) IsGood(minScore float64) bool {
	return r.Status == StatusAvailable && r.Score >= minScore
}

// RoundSummary reports what a single round accomplished. It exists for
// observability only; control decisions never read it.
type RoundSummary struct {
	Round               int           `json:"round"`
	CandidatesGenerated int           `json:"candidates_generated"`
	CandidatesEvaluated int           `json:"candidates_evaluated"`
	DomainsChecked      int           `json:"domains_checked"`
	DomainsAvailable    int           `json:"domains_available"`
	NewGoodResults      int           `json:"new_good_results"`
	Duration            time.Duration `json:"duration"`
}

// SearchState is the top-level aggregate for one search job. The
// orchestrator owns it exclusively for the lifetime of a search; rounds
// run to completion before the state is touched again, so nothing here
// needs synchronization.
type SearchState struct {
	JobID    string       `json:"job_id"`
	ClientID string       `json:"client_id"`
	Status   SearchStatus `json:"status"`

	// Round is the number of the last completed round, 0 before any.
	Round int `json:"round"`

	// Intake must be attached before the first round runs.
	Intake *Intake `json:"intake,omitempty"`

	Results          []SearchResult `json:"results"`
	CheckedDomains   []string       `json:"checked_domains"`
	AvailableDomains []string       `json:"available_domains"`

	Usage UsageStats `json:"usage"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Error holds the human-readable failure text for StatusFailed.
	Error string `json:"error,omitempty"`
}

// NewSearchState creates a pending search for the given intake.
func NewSearchState(clientID string, intake Intake) *SearchState {
	now := time.Now().UTC()
	return &SearchState{
		JobID:     uuid.New().String(),
		ClientID:  clientID,
		Status:    StatusPending,
		Intake:    &intake,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo moves the search to the next status, rejecting illegal
// lifecycle transitions.
func (s *SearchState) TransitionTo(next SearchStatus) error {
	if !s.Status.CanTransition(next) {
		return fmt.Errorf("illegal search transition %s -> %s", s.Status, next)
	}
	s.Status = next
	s.Touch()
	return nil
}

// Touch updates the modification timestamp.
func (s *SearchState) Touch() { s.UpdatedAt = time.Now().UTC() }

// HasChecked reports whether domain was already checked in any round,
// comparing case-insensitively.
func (s *SearchState) HasChecked(domain string) bool {
	key := strings.ToLower(domain)
	for _, d := range s.CheckedDomains {
		if strings.ToLower(d) == key {
			return true
		}
	}
	return false
}

// GoodResults returns every result that is available with a score at or
// above minScore, in insertion order.
func (s *SearchState) GoodResults(minScore float64) []SearchResult {
	var good []SearchResult
	for _, r := range s.Results {
		if r.IsGood(minScore) {
			good = append(good, r)
		}
	}
	return good
}

// GoodCount returns the number of good results found so far.
func (s *SearchState) GoodCount(minScore float64) int {
	return len(s.GoodResults(minScore))
}
