package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/models"
)

type ExtractionService interface {
	ExtractIdentity(ctx context.Context, resumeText string, useCache bool) (models.IdentityFacts, error)
	ExtractURLs(ctx context.Context, resumeText string, useCache bool) (models.URLExtraction, error)
}

type extractionService struct {
	llm     LLMClient
	prompts *PromptBuilder
	log     *zap.Logger
}

func NewExtractionService(llm LLMClient, prompts *PromptBuilder, log *zap.Logger) ExtractionService {
	if prompts == nil {
		prompts = NewPromptBuilder()
	}
	return &extractionService{llm: llm, prompts: prompts, log: logger.OrNop(log)}
}

// ExtractIdentity implements ExtractionService.
func (e *extractionService) ExtractIdentity(ctx context.Context, resumeText string, useCache bool) (models.IdentityFacts, error) {
	response, err := e.llm.Generate(ctx, e.prompts.BuildNameExtractionPrompt(resumeText), useCache)
	if err != nil {
		return models.IdentityFacts{}, err
	}

	data, err := parseJSONObject(response)
	if err != nil {
		return models.IdentityFacts{}, err
	}

	full, first, last, confidence := assembleIdentity(data)
	facts := models.IdentityFacts{
		FullName:   full,
		FirstName:  first,
		LastName:   last,
		Confidence: confidence,
		Notes:      coerceString(data["extraction_notes"]),
	}

	e.log.Info("candidate name extracted",
		zap.Stringp("full_name", facts.FullName),
		zap.Float64("confidence", facts.Confidence),
	)
	return facts, nil
}

// ExtractURLs implements ExtractionService. The reported count is recomputed
// from validated URLs.
func (e *extractionService) ExtractURLs(ctx context.Context, resumeText string, useCache bool) (models.URLExtraction, error) {
	response, err := e.llm.Generate(ctx, e.prompts.BuildURLExtractionPrompt(resumeText), useCache)
	if err != nil {
		return models.URLExtraction{}, err
	}

	data, err := parseJSONObject(response)
	if err != nil {
		return models.URLExtraction{}, err
	}

	urls, count := cleanProfileURLs(data)
	confidence := floatOr(data["confidence_score"], 0)
	if confidence < 0 || confidence > 100 {
		confidence = 0
	}

	e.log.Info("profile urls extracted", zap.Int("count", count))
	return models.URLExtraction{
		ProfileURLs:    urls,
		ExtractedCount: count,
		Confidence:     confidence,
		Notes:          coerceString(data["extraction_notes"]),
	}, nil
}

func identityFallback(cause error) models.IdentityFacts {
	return models.IdentityFacts{Notes: fmt.Sprintf("Name extraction failed: %v", cause)}
}

func urlFallback(cause error) models.URLExtraction {
	return models.URLExtraction{
		ProfileURLs: models.ProfileURLs{Other: map[string]string{}},
		Notes:       fmt.Sprintf("URL extraction failed: %v", cause),
	}
}
