package services

import (
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/config"
	"alfredoptarigan/candidate-scorer/internal/logger"
)

// NewCacheStore builds the generation cache named by cfg.Backend. A disabled
// cache still gets an in-memory store so one process reuses its own answers.
func NewCacheStore(cfg config.CacheConfig) (CacheStore, error) {
	if !cfg.Enabled {
		return NewMemoryCacheStore(nil), nil
	}

	switch cfg.Backend {
	case "", "file":
		return NewFileCacheStore(cfg.Path), nil
	case "redis":
		return NewRedisCacheStoreFromURL(cfg.RedisURL, cfg.RedisKey)
	case "memory":
		return NewMemoryCacheStore(nil), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NewVerifiers builds the GitHub, LinkedIn and portfolio verifiers from cfg.
func NewVerifiers(cfg config.VerificationConfig, log *zap.Logger) (github, linkedin, portfolio ProfileVerifier) {
	fetcher := FetcherConfig{
		Timeout:       cfg.Timeout,
		UserAgent:     cfg.UserAgent,
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
	}
	return NewGitHubVerifier(fetcher, cfg.GithubAPIURL, cfg.GithubToken, log),
		NewLinkedInVerifier(fetcher, log),
		NewPortfolioVerifier(fetcher, log)
}

// NewPipeline wires the scoring stages around one text generator and cache store.
func NewPipeline(
	generator TextGenerator,
	store CacheStore,
	temperature float32,
	verification config.VerificationConfig,
	log *zap.Logger,
) ScoringService {
	log = logger.OrNop(log)
	llm := NewLLMClient(generator, store, temperature, log)
	prompts := NewPromptBuilder()
	github, linkedin, portfolio := NewVerifiers(verification, log)

	return NewScoringService(
		NewDocumentParser(),
		NewExtractionService(llm, prompts, log),
		NewVerificationService(github, linkedin, portfolio, log),
		NewEvaluationService(llm, prompts, log),
		NewBiasService(llm, prompts, log),
		log,
	)
}
