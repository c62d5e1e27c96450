package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/models"
	"alfredoptarigan/candidate-scorer/internal/repositories"
)

// EvaluatorService owns the persisted lifecycle of an evaluation: submission,
// scoring, result storage, indexing and status events.
type EvaluatorService interface {
	// Submit stores the resume and creates a candidate with a queued evaluation.
	Submit(ctx context.Context, req models.ScoreRequest) (*models.Evaluation, error)
	// EvaluateCandidate runs a queued evaluation end to end.
	EvaluateCandidate(ctx context.Context, evalID uuid.UUID) error
	// ScoreNow scores in the caller's goroutine and stores only a successful run.
	ScoreNow(ctx context.Context, req models.ScoreRequest) (*models.ScoreResult, *models.Evaluation, error)
}

type evaluatorService struct {
	evalRepo      repositories.EvaluationRepository
	candidateRepo repositories.CandidateRepository
	storage       StorageService
	scoring       ScoringService
	index         CandidateIndex
	events        EventPublisher
	log           *zap.Logger
}

func NewEvaluatorService(
	evalRepo repositories.EvaluationRepository,
	candidateRepo repositories.CandidateRepository,
	storage StorageService,
	scoring ScoringService,
	index CandidateIndex,
	events EventPublisher,
	log *zap.Logger,
) EvaluatorService {
	if events == nil {
		events = NewNopPublisher()
	}
	return &evaluatorService{
		evalRepo:      evalRepo,
		candidateRepo: candidateRepo,
		storage:       storage,
		scoring:       scoring,
		index:         index,
		events:        events,
		log:           logger.OrNop(log),
	}
}

// EvaluateCandidate implements EvaluatorService. Failures are recorded on the
// evaluation before being returned.
func (e *evaluatorService) EvaluateCandidate(ctx context.Context, evalID uuid.UUID) error {
	log := e.log.With(zap.String("evaluation_id", evalID.String()))

	if err := e.evalRepo.UpdateStatus(evalID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	evaluation, err := e.evalRepo.FindByID(evalID)
	if err != nil {
		return e.fail(ctx, evalID, uuid.Nil, fmt.Errorf("failed to get evaluation: %w", err), nil)
	}
	e.publish(ctx, evaluation.ID, evaluation.CandidateID, models.StatusProcessing, nil, nil)

	candidate, err := e.candidateRepo.FindByID(evaluation.CandidateID)
	if err != nil {
		return e.fail(ctx, evalID, evaluation.CandidateID, fmt.Errorf("failed to get candidate: %w", err), nil)
	}

	content, err := e.storage.LoadFile(ctx, candidate.DocumentKey)
	if err != nil {
		return e.fail(ctx, evalID, candidate.ID, fmt.Errorf("failed to load resume: %w", err), nil)
	}

	log.Info("scoring candidate", zap.String("candidate_id", candidate.ID.String()), zap.String("filename", candidate.Filename))
	result, err := e.scoring.Score(ctx, models.ScoreRequest{
		Document: models.RawDocument{
			Filename: candidate.Filename,
			Type:     models.DocumentType(candidate.DocumentType),
			Content:  content,
		},
		JobDescription: candidate.JobDescription,
		Manual:         evaluation.ManualURLs,
		UseCache:       evaluation.UseCache,
	})
	if err != nil {
		return e.fail(ctx, evalID, candidate.ID, err, fatalStages(err))
	}

	if err := e.complete(ctx, evalID, candidate.ID, result); err != nil {
		return err
	}

	log.Info("evaluation completed", zap.Float64("total_score", result.TotalScore))
	return nil
}

// Submit implements EvaluatorService.
func (e *evaluatorService) Submit(ctx context.Context, req models.ScoreRequest) (*models.Evaluation, error) {
	key, err := e.storage.SaveFile(ctx, req.Document.Filename, req.Document.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store resume: %w", err)
	}

	candidate := &models.Candidate{
		ID:             uuid.New(),
		Filename:       req.Document.Filename,
		DocumentType:   string(req.Document.Type),
		DocumentKey:    key,
		JobDescription: req.JobDescription,
		ProfileURLs:    req.Manual,
	}
	if err := e.candidateRepo.Create(candidate); err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}

	evaluation := &models.Evaluation{
		ID:          uuid.New(),
		CandidateID: candidate.ID,
		Status:      models.StatusQueued,
		UseCache:    req.UseCache,
		ManualURLs:  req.Manual,
	}
	if err := e.evalRepo.Create(evaluation); err != nil {
		return nil, fmt.Errorf("failed to create evaluation: %w", err)
	}

	e.publish(ctx, evaluation.ID, candidate.ID, models.StatusQueued, nil, nil)
	return evaluation, nil
}

// ScoreNow implements EvaluatorService. Nothing is stored unless the pipeline
// succeeds; fatal errors are returned unchanged so callers can match ErrFatalInput.
func (e *evaluatorService) ScoreNow(ctx context.Context, req models.ScoreRequest) (*models.ScoreResult, *models.Evaluation, error) {
	result, err := e.scoring.Score(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	evaluation, err := e.Submit(ctx, req)
	if err != nil {
		return result, nil, err
	}

	if err := e.complete(ctx, evaluation.ID, evaluation.CandidateID, result); err != nil {
		return result, evaluation, err
	}
	evaluation.Status = models.StatusCompleted
	return result, evaluation, nil
}

// complete persists a successful run. Profile and index updates are best effort.
func (e *evaluatorService) complete(ctx context.Context, evalID, candidateID uuid.UUID, result *models.ScoreResult) error {
	if err := e.evalRepo.UpdateResult(evalID, result); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	profile := repositories.CandidateProfile{
		Name:        result.CandidateName,
		ProfileURLs: result.MergedURLs,
		ResumeText:  result.ResumeText,
	}
	if err := e.candidateRepo.UpdateProfile(candidateID, profile); err != nil {
		e.log.Warn("failed to update candidate profile", zap.String("candidate_id", candidateID.String()), zap.Error(err))
	}

	if e.index != nil {
		if err := e.index.IndexCandidate(ctx, candidateID.String(), result.CandidateName, result.TotalScore, result.ResumeText); err != nil {
			e.log.Warn("failed to index candidate", zap.String("candidate_id", candidateID.String()), zap.Error(err))
		}
	}

	total := result.TotalScore
	e.publish(ctx, evalID, candidateID, models.StatusCompleted, &total, nil)
	return nil
}

func fatalStages(err error) []models.StageReport {
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		return nil
	}
	return []models.StageReport{{Stage: stageErr.Stage, Outcome: models.OutcomeFatal, Cause: stageErr.Err.Error()}}
}

func (e *evaluatorService) fail(ctx context.Context, evalID, candidateID uuid.UUID, cause error, stages []models.StageReport) error {
	msg := cause.Error()
	if err := e.evalRepo.UpdateError(evalID, msg, stages); err != nil {
		e.log.Error("failed to record evaluation error", zap.String("evaluation_id", evalID.String()), zap.Error(err))
	}
	e.publish(ctx, evalID, candidateID, models.StatusFailed, nil, &msg)
	return cause
}

func (e *evaluatorService) publish(ctx context.Context, evalID, candidateID uuid.UUID, status models.EvaluationStatus, total *float64, errMsg *string) {
	err := e.events.PublishStatus(ctx, StatusEvent{
		EvaluationID: evalID,
		CandidateID:  candidateID,
		Status:       status,
		TotalScore:   total,
		Error:        errMsg,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		e.log.Warn("failed to publish status", zap.String("evaluation_id", evalID.String()), zap.Error(err))
	}
}
