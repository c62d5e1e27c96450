package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/models"
)

const (
	noEvidence          = "No evidence provided"
	scoreWithoutDetails = "Score provided without detailed evidence"
	noExplanation       = "No explanation available"
)

type EvaluationService interface {
	Evaluate(ctx context.Context, resumeText, jobDescription string, verification *models.VerificationResult, useCache bool) (*models.EvaluationResult, error)
}

type evaluationService struct {
	llm     LLMClient
	prompts *PromptBuilder
	log     *zap.Logger
}

func NewEvaluationService(llm LLMClient, prompts *PromptBuilder, log *zap.Logger) EvaluationService {
	if prompts == nil {
		prompts = NewPromptBuilder()
	}
	return &evaluationService{llm: llm, prompts: prompts, log: logger.OrNop(log)}
}

// Evaluate implements EvaluationService. Any failure wraps ErrEvaluation.
func (e *evaluationService) Evaluate(ctx context.Context, resumeText, jobDescription string, verification *models.VerificationResult, useCache bool) (*models.EvaluationResult, error) {
	prompt := e.prompts.BuildEvaluationPrompt(resumeText, jobDescription, verificationContext(verification))

	response, err := e.llm.Generate(ctx, prompt, useCache)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}

	data, err := parseJSONObject(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}

	result := coerceEvaluation(data)
	e.log.Info("candidate evaluated",
		zap.Float64("total_score", result.TotalScore),
		zap.Int("categories", len(result.Categories)),
	)
	return result, nil
}

// coerceEvaluation fills defaults for every missing field. total_score is
// taken as reported, never recomputed from the categories.
func coerceEvaluation(data map[string]any) *models.EvaluationResult {
	result := &models.EvaluationResult{
		TotalScore:      floatOr(data["total_score"], 0),
		Categories:      map[string]models.CategoryScore{},
		Explanation:     stringOr(data["explanation"], noExplanation),
		Recommendations: coerceStringList(data["recommendations"]),
		Strengths:       coerceStringList(data["strengths"]),
		Weaknesses:      coerceStringList(data["weaknesses"]),
	}

	scores, _ := data["detailed_scores"].(map[string]any)
	for name, raw := range scores {
		result.Categories[name] = coerceCategory(raw)
	}
	return result
}

func coerceCategory(raw any) models.CategoryScore {
	if obj, ok := raw.(map[string]any); ok {
		cat := models.CategoryScore{
			Score:     floatOr(obj["score"], 0),
			Evidence:  stringOr(obj["evidence"], noEvidence),
			Breakdown: map[string]float64{},
		}
		if breakdown, ok := obj["breakdown"].(map[string]any); ok {
			for sub, v := range breakdown {
				cat.Breakdown[sub] = floatOr(v, 0)
			}
		}
		return cat
	}

	if score, ok := coerceFloat(raw); ok {
		return models.CategoryScore{Score: score, Evidence: scoreWithoutDetails, Breakdown: map[string]float64{}}
	}
	return models.CategoryScore{Evidence: noEvidence, Breakdown: map[string]float64{}}
}
