package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/config"
	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/repositories"
	"alfredoptarigan/candidate-scorer/internal/services"
)

const pageSize = 50

// Rebuilds the qdrant candidate index from the candidates stored in postgres.
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Qdrant.URL == "" {
		log.Fatal("QDRANT_URL is not set, nothing to index")
	}

	ctx := context.Background()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	candidateRepo := repositories.NewCandidateRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)

	geminiService, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		EmbedModel:  cfg.Gemini.EmbedModel,
		MaxAttempts: cfg.Gemini.MaxAttempts,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize gemini", zap.Error(err))
	}

	qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		log.Fatal("failed to initialize qdrant", zap.Error(err))
	}
	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Fatal("failed to initialize collection", zap.Error(err))
	}

	index := services.NewCandidateIndex(qdrantService, geminiService, services.NewTextChunker(), log)

	successCount, skipCount, failCount := 0, 0, 0
	for skip := 0; ; skip += pageSize {
		candidates, err := candidateRepo.List(skip, pageSize)
		if err != nil {
			log.Fatal("failed to list candidates", zap.Error(err))
		}
		if len(candidates) == 0 {
			break
		}

		ids := make([]uuid.UUID, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.ID)
		}
		latest, err := evalRepo.LatestByCandidates(ids)
		if err != nil {
			log.Fatal("failed to load evaluations", zap.Error(err))
		}

		for _, c := range candidates {
			if strings.TrimSpace(c.ResumeText) == "" {
				skipCount++
				continue
			}

			var total float64
			if eval, ok := latest[c.ID]; ok && eval.TotalScore != nil {
				total = *eval.TotalScore
			}

			if err := index.IndexCandidate(ctx, c.ID.String(), c.Name, total, c.ResumeText); err != nil {
				log.Error("failed to index candidate", zap.String("candidate_id", c.ID.String()), zap.Error(err))
				failCount++
				continue
			}
			successCount++
		}
	}

	log.Info("indexing finished",
		zap.Int("indexed", successCount),
		zap.Int("skipped", skipCount),
		zap.Int("failed", failCount),
	)

	if failCount > 0 {
		os.Exit(1)
	}
}
