package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/logger"
)

// TextGenerator is the external generation capability.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
}

type LLMClient interface {
	Generate(ctx context.Context, prompt string, useCache bool) (string, error)
}

type llmClient struct {
	generator   TextGenerator
	store       CacheStore
	temperature float32
	log         *zap.Logger
}

func NewLLMClient(generator TextGenerator, store CacheStore, temperature float32, log *zap.Logger) LLMClient {
	if store == nil {
		store = NewMemoryCacheStore(nil)
	}
	return &llmClient{
		generator:   generator,
		store:       store,
		temperature: temperature,
		log:         logger.OrNop(log),
	}
}

// Generate implements LLMClient. The prompt is the cache key verbatim.
// Fresh responses are always written back, whatever useCache says.
func (l *llmClient) Generate(ctx context.Context, prompt string, useCache bool) (string, error) {
	var snapshot map[string]string
	if useCache {
		snapshot = l.load(ctx)
		if cached, ok := snapshot[prompt]; ok {
			cacheEvents.WithLabelValues("hit").Inc()
			l.log.Debug("llm cache hit", zap.String("prompt", logger.TruncateForLog(prompt, 80)))
			return cached, nil
		}
		cacheEvents.WithLabelValues("miss").Inc()
	}

	response, err := l.generator.GenerateText(ctx, prompt, l.temperature)
	if err != nil {
		if snapshot == nil {
			snapshot = l.load(ctx)
		}
		if cached, ok := snapshot[prompt]; ok {
			l.log.Warn("generation failed, serving cached response", zap.Error(err))
			return cached, nil
		}
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	l.persist(ctx, prompt, response)
	return response, nil
}

// persist reloads the store before writing so entries added by other
// writers since our read survive. Concurrent writers still race.
func (l *llmClient) persist(ctx context.Context, prompt, response string) {
	entries := l.load(ctx)
	entries[prompt] = response
	if err := l.store.Save(ctx, entries); err != nil {
		cacheEvents.WithLabelValues("io_error").Inc()
		l.log.Warn("failed to write llm cache", zap.Error(err))
		return
	}
	cacheEvents.WithLabelValues("write").Inc()
}

func (l *llmClient) load(ctx context.Context) map[string]string {
	entries, err := l.store.Load(ctx)
	if err != nil {
		cacheEvents.WithLabelValues("io_error").Inc()
		l.log.Warn("llm cache unreadable, treating as empty", zap.Error(err))
		return map[string]string{}
	}
	if entries == nil {
		entries = map[string]string{}
	}
	return entries
}
