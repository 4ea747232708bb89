package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ppiankov/infofact/internal/agent"
	"github.com/ppiankov/infofact/internal/authority"
	"github.com/ppiankov/infofact/internal/cache"
	"github.com/ppiankov/infofact/internal/dispatch"
	"github.com/ppiankov/infofact/internal/factcheck"
	"github.com/ppiankov/infofact/internal/fetch"
	"github.com/ppiankov/infofact/internal/llm"
	"github.com/ppiankov/infofact/internal/model"
	"github.com/ppiankov/infofact/internal/score"
	"github.com/ppiankov/infofact/internal/worker"
)

// Fact-check key variables, checked in order
var factCheckKeyEnvs = []string{"FACTCHECK_API_KEY", "GOOGLE_FACTCHECK_API_KEY"}

// resolveCredentials fills API keys from the environment. Both keys are
// required: the agents cannot be constructed without them.
func resolveCredentials(cfg *model.Config) error {
	if cfg.LLM.APIKey == "" {
		if env := llm.APIKeyEnv(cfg.LLM.Provider); env != "" {
			cfg.LLM.APIKey = os.Getenv(env)
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("%s environment variable not set", env)
			}
		}
	}
	if cfg.LLM.Provider == "ollama" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	if cfg.FactCheck.APIKey == "" {
		for _, env := range factCheckKeyEnvs {
			if v := os.Getenv(env); v != "" {
				cfg.FactCheck.APIKey = v
				break
			}
		}
		if cfg.FactCheck.APIKey == "" {
			return fmt.Errorf("%s environment variable not set", strings.Join(factCheckKeyEnvs, " or "))
		}
	}
	return nil
}

// buildDeps constructs the collaborators shared by all agents
func buildDeps(cfg *model.Config) (agent.Deps, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return agent.Deps{}, fmt.Errorf("LLM provider: %w", err)
	}

	limiter := worker.NewLimiter(cfg.FactCheck.RequestsPerSecond, cfg.FactCheck.Burst)
	fc, err := factcheck.NewClient(factCheckConfig(cfg), cache.New(cfg.Cache), limiter)
	if err != nil {
		return agent.Deps{}, fmt.Errorf("fact-check client: %w", err)
	}

	return agent.Deps{
		LLM:            provider,
		FactCheck:      fc,
		Scorer:         score.NewScorer(cfg.Scoring),
		Authority:      authority.NewClassifier(cfg.Authority),
		Models:         cfg.Agents.Models,
		Structured:     cfg.LLM.StructuredOutput,
		VerifyOverview: cfg.Agents.VerifyOverview,
	}, nil
}

// factCheckConfig fills unset fact-check proxy fields from the http section
func factCheckConfig(cfg *model.Config) model.FactCheckConfig {
	fc := cfg.FactCheck
	if fc.HTTPProxy == "" {
		fc.HTTPProxy = cfg.HTTP.HTTPProxy
	}
	if fc.HTTPSProxy == "" {
		fc.HTTPSProxy = cfg.HTTP.HTTPSProxy
	}
	if fc.NoProxy == "" {
		fc.NoProxy = cfg.HTTP.NoProxy
	}
	return fc
}

// buildManager resolves credentials and constructs every registered agent
func buildManager(cfg *model.Config, opts ...dispatch.Option) (*dispatch.Manager, error) {
	if err := resolveCredentials(cfg); err != nil {
		return nil, err
	}
	deps, err := buildDeps(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Dispatch.Parallel {
		opts = append(opts, dispatch.WithParallel(cfg.Dispatch.Workers))
	}
	return dispatch.New(agent.Default(), deps, opts...)
}

// newFetcher builds the article fetcher from HTTP settings
func newFetcher(cfg *model.Config) *fetch.Fetcher {
	return fetch.NewFetcher(
		cfg.HTTP.Timeout,
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.RespectRobots,
		cfg.HTTP.HTTPProxy,
		cfg.HTTP.HTTPSProxy,
		cfg.HTTP.NoProxy,
	).UseReadability(cfg.HTTP.Readability)
}

// newLogger returns a prefixed stderr logger, or a silent one
func newLogger(prefix string, enabled bool) *log.Logger {
	if !enabled {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, prefix, log.LstdFlags)
}
