package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/models"
)

const (
	StageExtractText     = "extract_text"
	StageExtractIdentity = "extract_identity"
	StageExtractURLs     = "extract_urls"
	StageMerge           = "merge_urls"
	StageVerify          = "verify_profiles"
	StageEvaluate        = "evaluate"
	StageAuditBias       = "audit_bias"
	StageShape           = "shape_visualization"
)

// stagePolicy says whether a failing stage aborts the request.
var stagePolicy = map[string]bool{
	StageExtractText:     true,
	StageExtractIdentity: false,
	StageExtractURLs:     false,
	StageMerge:           false,
	StageVerify:          false,
	StageEvaluate:        true,
	StageAuditBias:       false,
	StageShape:           false,
}

type StageResult[T any] struct {
	Value   T
	Outcome models.StageOutcome
	Cause   error
}

func (r StageResult[T]) Report(stage string) models.StageReport {
	rep := models.StageReport{Stage: stage, Outcome: r.Outcome}
	if r.Cause != nil {
		rep.Cause = r.Cause.Error()
	}
	return rep
}

// runStage executes fn, converting panics into errors. A failing fatal stage
// yields OutcomeFatal; a failing non-fatal stage yields fallback(cause).
func runStage[T any](
	ctx context.Context,
	log *zap.Logger,
	stage string,
	fn func(ctx context.Context) (T, error),
	fallback func(cause error) T,
) (res StageResult[T]) {
	start := time.Now()
	defer func() {
		stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
		stageOutcomes.WithLabelValues(stage, string(res.Outcome)).Inc()
	}()

	value, err := safeCall(ctx, fn)
	if err == nil {
		log.Debug("stage completed", zap.String("stage", stage), zap.Duration("took", time.Since(start)))
		return StageResult[T]{Value: value, Outcome: models.OutcomeOK}
	}

	if stagePolicy[stage] {
		log.Error("fatal stage failure", zap.String("stage", stage), zap.Error(err))
		return StageResult[T]{Outcome: models.OutcomeFatal, Cause: &StageError{Stage: stage, Fatal: true, Err: err}}
	}

	log.Warn("stage degraded", zap.String("stage", stage), zap.Error(err))
	var fb T
	if fallback != nil {
		fb = fallback(err)
	}
	return StageResult[T]{Value: fb, Outcome: models.OutcomeDegraded, Cause: &StageError{Stage: stage, Err: err}}
}

func safeCall[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

func skipped[T any](value T) StageResult[T] {
	return StageResult[T]{Value: value, Outcome: models.OutcomeSkipped}
}
