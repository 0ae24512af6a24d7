// Command grove-domains runs a domain search directly, without a
// Temporal cluster. Useful for local runs and demos; pass -mock to
// skip all model and pricing credentials.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AutumnsGrove/grove-domain-tool/internal/configuration"
	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
	"github.com/AutumnsGrove/grove-domain-tool/internal/worker"
)

func main() {
	var (
		name     = flag.String("name", "", "business or project name (required)")
		idea     = flag.String("idea", "", "domain the client already has in mind")
		tlds     = flag.String("tlds", "com,any", "comma-separated TLD preferences")
		vibe     = flag.String("vibe", "professional", "brand vibe: professional, creative, minimal, bold, personal")
		keywords = flag.String("keywords", "", "free-text keywords or themes")
		rounds   = flag.Int("rounds", 0, "max rounds (0 = configured default)")
		limit    = flag.Int("limit", 25, "max results to display")
		mock     = flag.Bool("mock", false, "use the deterministic mock model backend")
		asJSON   = flag.Bool("json", false, "emit the final state as JSON")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: grove-domains -name \"Sunrise Bakery\" [-tlds com,io] [-vibe creative] [-mock]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := configuration.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load configuration")
	}
	if *mock {
		cfg.Models.GeneratorProvider = "mock"
		cfg.Models.EvaluatorProvider = "mock"
		cfg.Pricing.Endpoint = ""
	}

	orchestrator, err := worker.BuildOrchestrator(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build search engine")
	}

	intake, err := domain.NewIntake(*name, splitList(*tlds), domain.Vibe(*vibe))
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid intake")
	}
	intake.DomainIdea = *idea
	intake.Keywords = *keywords

	state, err := orchestrator.StartSearch("cli", intake)
	if err != nil {
		logger.Fatal().Err(err).Msg("start search")
	}

	state = orchestrator.Run(context.Background(), state, *rounds)

	if *asJSON {
		out, _ := json.MarshalIndent(state, "", "  ")
		fmt.Println(string(out))
		return
	}

	printResults(orchestrator.RankedResults(state, *limit), state)

	if state.Status == domain.StatusNeedsFollowup {
		followup, err := orchestrator.GenerateFollowup(context.Background(), state)
		if err != nil {
			logger.Warn().Err(err).Msg("follow-up generation failed")
			return
		}
		fmt.Println("\nNot enough good options yet. A few questions to refine the search:")
		for i, q := range followup.Questions {
			fmt.Printf("  %d. %s\n", i+1, q.Prompt)
			for _, opt := range q.Options {
				fmt.Printf("     - %s\n", opt.Label)
			}
		}
	}
}

func printResults(results []domain.SearchResult, state *domain.SearchState) {
	fmt.Printf("\nSearch %s: %s after %d round(s), %d checked, %d available\n\n",
		state.JobID[:8], state.Status, state.Round,
		len(state.CheckedDomains), len(state.AvailableDomains))

	if len(results) == 0 {
		fmt.Println("No available domains found.")
		return
	}

	fmt.Printf("%-30s %6s %12s %10s\n", "DOMAIN", "SCORE", "CATEGORY", "PRICE")
	fmt.Println(strings.Repeat("-", 62))
	for _, r := range results {
		price := "-"
		if r.PriceCents > 0 {
			price = fmt.Sprintf("$%.2f", float64(r.PriceCents)/100)
		}
		fmt.Printf("%-30s %6.2f %12s %10s\n", r.Domain, r.Score, r.Category, price)
	}

	fmt.Printf("\nTokens used: %d (est. $%.4f)\n",
		state.Usage.TotalTokens(), state.Usage.EstimatedCostUSD())
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
