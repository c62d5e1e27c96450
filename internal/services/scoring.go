package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/models"
)

const noVerificationPerformed = "No profile verification performed"

// ScoringService runs the whole evaluation pipeline for one resume.
type ScoringService interface {
	Score(ctx context.Context, req models.ScoreRequest) (*models.ScoreResult, error)
}

type scoringService struct {
	parser       DocumentParser
	extraction   ExtractionService
	verification VerificationService
	evaluation   EvaluationService
	bias         BiasService
	log          *zap.Logger
}

func NewScoringService(
	parser DocumentParser,
	extraction ExtractionService,
	verification VerificationService,
	evaluation EvaluationService,
	bias BiasService,
	log *zap.Logger,
) ScoringService {
	return &scoringService{
		parser:       parser,
		extraction:   extraction,
		verification: verification,
		evaluation:   evaluation,
		bias:         bias,
		log:          logger.OrNop(log),
	}
}

// Score implements ScoringService. Stages run in order; only text extraction
// and evaluation may fail the request, and then the error matches
// ErrFatalInput and no result is returned. Caller cancellation is ignored so
// an abandoned request still completes.
func (s *scoringService) Score(ctx context.Context, req models.ScoreRequest) (result *models.ScoreResult, err error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	log := s.log.With(zap.String("filename", req.Document.Filename))
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "fatal"
		}
		pipelineDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	var stages []models.StageReport

	text := runStage(ctx, log, StageExtractText, func(ctx context.Context) (string, error) {
		if strings.TrimSpace(req.JobDescription) == "" {
			return "", errors.New("job description is required")
		}
		return s.parser.ExtractText(req.Document)
	}, nil)
	stages = append(stages, text.Report(StageExtractText))
	if text.Outcome == models.OutcomeFatal {
		return nil, text.Cause
	}
	resumeText := text.Value

	identity := runStage(ctx, log, StageExtractIdentity, func(ctx context.Context) (models.IdentityFacts, error) {
		return s.extraction.ExtractIdentity(ctx, resumeText, req.UseCache)
	}, identityFallback)
	stages = append(stages, identity.Report(StageExtractIdentity))

	urls := runStage(ctx, log, StageExtractURLs, func(ctx context.Context) (models.URLExtraction, error) {
		return s.extraction.ExtractURLs(ctx, resumeText, req.UseCache)
	}, urlFallback)
	stages = append(stages, urls.Report(StageExtractURLs))

	merged := MergeProfileURLs(urls.Value.ProfileURLs, req.Manual)
	stages = append(stages, models.StageReport{Stage: StageMerge, Outcome: models.OutcomeOK})
	log.Info("profile urls merged", zap.Int("present", len(merged.Named())))

	verification := skipped[*models.VerificationResult](nil)
	verificationSummary := noVerificationPerformed
	if merged.HasAny() {
		verification = runStage(ctx, log, StageVerify, func(ctx context.Context) (*models.VerificationResult, error) {
			return s.verification.Verify(ctx, merged)
		}, nil)
		switch verification.Outcome {
		case models.OutcomeOK:
			verificationSummary = verification.Value.Summary
		case models.OutcomeDegraded:
			verificationSummary = fmt.Sprintf("Profile verification failed: %v", stageCause(verification.Cause))
		}
	}
	stages = append(stages, verification.Report(StageVerify))

	evaluation := runStage(ctx, log, StageEvaluate, func(ctx context.Context) (*models.EvaluationResult, error) {
		return s.evaluation.Evaluate(ctx, resumeText, req.JobDescription, verification.Value, req.UseCache)
	}, nil)
	stages = append(stages, evaluation.Report(StageEvaluate))
	if evaluation.Outcome == models.OutcomeFatal {
		return nil, evaluation.Cause
	}
	eval := evaluation.Value

	bias := runStage(ctx, log, StageAuditBias, func(ctx context.Context) (models.BiasAudit, error) {
		return s.bias.Audit(ctx, req.JobDescription, eval, req.UseCache)
	}, neutralBiasAudit)
	stages = append(stages, bias.Report(StageAuditBias))

	visualization := ShapeVisualization(eval)
	stages = append(stages, models.StageReport{Stage: StageShape, Outcome: models.OutcomeOK})

	result = &models.ScoreResult{
		CandidateName:       identity.Value.FullName,
		TotalScore:          eval.TotalScore,
		Categories:          eval.Categories,
		Explanation:         eval.Explanation,
		Recommendations:     eval.Recommendations,
		Strengths:           eval.Strengths,
		Weaknesses:          eval.Weaknesses,
		Verification:        verification.Value,
		VerificationSummary: verificationSummary,
		BiasAudit:           bias.Value,
		Visualization:       visualization,
		Insights:            BuildInsights(eval),
		Identity:            identity.Value,
		ExtractedURLs:       urls.Value,
		MergedURLs:          merged,
		Stages:              stages,
		ResumeText:          resumeText,
	}

	log.Info("candidate scored",
		zap.Float64("total_score", result.TotalScore),
		zap.Float64("fairness_score", result.BiasAudit.FairnessScore),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

// stageCause strips the StageError wrapper for human-readable notes.
func stageCause(err error) error {
	var se *StageError
	if errors.As(err, &se) {
		return se.Err
	}
	return err
}
