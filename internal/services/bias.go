package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/models"
)

const neutralFairnessScore = 50.0

type BiasService interface {
	Audit(ctx context.Context, jobDescription string, evaluation *models.EvaluationResult, useCache bool) (models.BiasAudit, error)
}

type biasService struct {
	llm     LLMClient
	prompts *PromptBuilder
	log     *zap.Logger
}

func NewBiasService(llm LLMClient, prompts *PromptBuilder, log *zap.Logger) BiasService {
	if prompts == nil {
		prompts = NewPromptBuilder()
	}
	return &biasService{llm: llm, prompts: prompts, log: logger.OrNop(log)}
}

// Audit implements BiasService.
func (b *biasService) Audit(ctx context.Context, jobDescription string, evaluation *models.EvaluationResult, useCache bool) (models.BiasAudit, error) {
	prompt := b.prompts.BuildBiasAnalysisPrompt(jobDescription, mustIndentJSON(evaluation))

	response, err := b.llm.Generate(ctx, prompt, useCache)
	if err != nil {
		return models.BiasAudit{}, err
	}

	data, err := parseJSONObject(response)
	if err != nil {
		return models.BiasAudit{}, err
	}

	audit := models.BiasAudit{
		Detected:      coerceBool(data["bias_detected"]),
		Types:         dedupe(coerceStringList(data["bias_types"])),
		Explanation:   coerceString(data["bias_explanation"]),
		Suggestions:   coerceStringList(data["suggestions"]),
		FairnessScore: floatOr(data["fairness_score"], neutralFairnessScore),
	}
	b.log.Info("bias audit completed", zap.Bool("detected", audit.Detected), zap.Float64("fairness", audit.FairnessScore))
	return audit, nil
}

func neutralBiasAudit(cause error) models.BiasAudit {
	return models.BiasAudit{
		Types:         []string{},
		Explanation:   fmt.Sprintf("Bias analysis failed: %v", cause),
		Suggestions:   []string{},
		FairnessScore: neutralFairnessScore,
	}
}

// dedupe keeps the first occurrence of each value.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
