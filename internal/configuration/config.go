// Package configuration loads all tunable settings for the search
// engine. Priority: environment variables over YAML file over
// defaults. No component reads the environment directly; everything is
// threaded down from here.
package configuration

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
)

// Search controls the round loop.
type Search struct {
	MaxRounds          int     `yaml:"max_rounds"           env:"MAX_ROUNDS"           env-default:"6"`
	CandidatesPerRound int     `yaml:"candidates_per_round" env:"CANDIDATES_PER_ROUND" env-default:"50"`
	TargetGoodResults  int     `yaml:"target_good_results"  env:"TARGET_RESULTS"       env-default:"25"`
	MinGoodScore       float64 `yaml:"min_good_score"       env:"MIN_GOOD_SCORE"       env-default:"0.4"`
}

// RateLimit paces external calls.
type RateLimit struct {
	RDAPDelay       time.Duration `yaml:"rdap_delay"        env:"RDAP_DELAY"        env-default:"10s"`
	ChunkSize       int           `yaml:"chunk_size"        env:"CHUNK_SIZE"        env-default:"10"`
	MaxConcurrentAI int           `yaml:"max_concurrent_ai" env:"MAX_CONCURRENT_AI" env-default:"12"`
}

// Models selects providers for the two model roles. The generator
// wants a capable model, the evaluator a fast cheap one.
type Models struct {
	GeneratorProvider string `yaml:"generator_provider" env:"GENERATOR_PROVIDER" env-default:"anthropic"`
	GeneratorModel    string `yaml:"generator_model"    env:"GENERATOR_MODEL"`
	GeneratorAPIKey   string `yaml:"generator_api_key"  env:"GENERATOR_API_KEY"`
	EvaluatorProvider string `yaml:"evaluator_provider" env:"EVALUATOR_PROVIDER" env-default:"anthropic"`
	EvaluatorModel    string `yaml:"evaluator_model"    env:"EVALUATOR_MODEL"`
	EvaluatorAPIKey   string `yaml:"evaluator_api_key"  env:"EVALUATOR_API_KEY"`

	// CloudflareAccountID is required when either role routes through
	// Cloudflare Workers AI.
	CloudflareAccountID string `yaml:"cloudflare_account_id" env:"CLOUDFLARE_ACCOUNT_ID"`
}

// Pricing configures the price oracle and category thresholds.
type Pricing struct {
	Endpoint            string `yaml:"endpoint"              env:"PRICING_ENDPOINT"`
	Username            string `yaml:"username"              env:"PRICING_USERNAME"`
	Password            string `yaml:"password"              env:"PRICING_PASSWORD"`
	BundledMaxCents     int    `yaml:"bundled_max_cents"     env:"BUNDLED_MAX"     env-default:"3000"`
	RecommendedMaxCents int    `yaml:"recommended_max_cents" env:"RECOMMENDED_MAX" env-default:"5000"`
	PremiumAboveCents   int    `yaml:"premium_above_cents"   env:"PREMIUM_ABOVE"   env-default:"5000"`
}

// Temporal holds worker connection settings.
type Temporal struct {
	HostPort  string `yaml:"host_port"  env:"TEMPORAL_HOST_PORT" env-default:"localhost:7233"`
	Namespace string `yaml:"namespace"  env:"TEMPORAL_NAMESPACE" env-default:"default"`
	TaskQueue string `yaml:"task_queue" env:"TEMPORAL_TASK_QUEUE" env-default:"domain-search"`
}

// Config is the root configuration.
type Config struct {
	Search    Search    `yaml:"search"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Models    Models    `yaml:"models"`
	Pricing   Pricing   `yaml:"pricing"`
	Temporal  Temporal  `yaml:"temporal"`
	LogLevel  string    `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

// Thresholds converts the pricing section into category boundaries.
func (p Pricing) Thresholds() domain.PriceThresholds {
	return domain.PriceThresholds{
		BundledMaxCents:     p.BundledMaxCents,
		RecommendedMaxCents: p.RecommendedMaxCents,
		PremiumAboveCents:   p.PremiumAboveCents,
	}
}

// Validate rejects settings that would make the loop degenerate.
func (c *Config) Validate() error {
	if c.Search.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be at least 1, got %d", c.Search.MaxRounds)
	}
	if c.Search.CandidatesPerRound < 1 {
		return fmt.Errorf("candidates_per_round must be at least 1, got %d", c.Search.CandidatesPerRound)
	}
	if c.Search.MinGoodScore < 0 || c.Search.MinGoodScore > 1 {
		return fmt.Errorf("min_good_score must be in [0,1], got %v", c.Search.MinGoodScore)
	}
	if c.RateLimit.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be at least 1, got %d", c.RateLimit.ChunkSize)
	}
	if c.RateLimit.MaxConcurrentAI < 1 {
		return fmt.Errorf("max_concurrent_ai must be at least 1, got %d", c.RateLimit.MaxConcurrentAI)
	}
	return nil
}

// Load reads configuration from a YAML file and the environment.
// The file path comes from CONFIG_PATH (fallback "./config.yaml"); a
// missing fallback file is fine, a missing explicit file is an error.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in defaults without touching the
// environment, for tests and embedded use.
func Default() *Config {
	return &Config{
		Search: Search{
			MaxRounds:          6,
			CandidatesPerRound: 50,
			TargetGoodResults:  25,
			MinGoodScore:       domain.DefaultMinGoodScore,
		},
		RateLimit: RateLimit{
			RDAPDelay:       10 * time.Second,
			ChunkSize:       10,
			MaxConcurrentAI: 12,
		},
		Models: Models{
			GeneratorProvider: "anthropic",
			EvaluatorProvider: "anthropic",
		},
		Pricing: Pricing{
			BundledMaxCents:     3000,
			RecommendedMaxCents: 5000,
			PremiumAboveCents:   5000,
		},
		Temporal: Temporal{
			HostPort:  "localhost:7233",
			Namespace: "default",
			TaskQueue: "domain-search",
		},
		LogLevel: "info",
	}
}
