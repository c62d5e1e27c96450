package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/candidate-scorer/internal/models"
)

type EvaluationRepository interface {
	Create(eval *models.Evaluation) error
	FindByID(id uuid.UUID) (*models.Evaluation, error)
	UpdateStatus(id uuid.UUID, status models.EvaluationStatus) error
	UpdateResult(id uuid.UUID, result *models.ScoreResult) error
	UpdateError(id uuid.UUID, errorMsg string, stages []models.StageReport) error
	FindPendingJobs(limit int) ([]models.Evaluation, error)
	LatestByCandidates(ids []uuid.UUID) (map[uuid.UUID]models.Evaluation, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(eval *models.Evaluation) error {
	if err := r.db.Create(eval).Error; err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}
	return nil
}

func (r *evaluationRepository) FindByID(id uuid.UUID) (*models.Evaluation, error) {
	var eval models.Evaluation
	if err := r.db.Where("id = ?", id).First(&eval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &eval, nil
}

func (r *evaluationRepository) UpdateStatus(id uuid.UUID, status models.EvaluationStatus) error {
	result := r.db.Model(&models.Evaluation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
	}

	return nil
}

// UpdateResult stores a finished scoring run and marks the evaluation completed.
// Struct updates go through the jsonb serializers, map updates would not.
func (r *evaluationRepository) UpdateResult(id uuid.UUID, res *models.ScoreResult) error {
	total := res.TotalScore
	explanation := res.Explanation
	summary := res.VerificationSummary
	bias := res.BiasAudit
	visualization := res.Visualization
	insights := res.Insights

	result := r.db.Model(&models.Evaluation{ID: id}).
		Select(
			"status", "total_score", "categories", "explanation", "recommendations",
			"strengths", "weaknesses", "verification", "verification_summary",
			"bias_audit", "visualization", "insights", "stages", "error_message", "updated_at",
		).
		Updates(&models.Evaluation{
			Status:              models.StatusCompleted,
			TotalScore:          &total,
			Categories:          res.Categories,
			Explanation:         &explanation,
			Recommendations:     res.Recommendations,
			Strengths:           res.Strengths,
			Weaknesses:          res.Weaknesses,
			Verification:        res.Verification,
			VerificationSummary: &summary,
			BiasAudit:           &bias,
			Visualization:       &visualization,
			Insights:            &insights,
			Stages:              res.Stages,
			UpdatedAt:           time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update result: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *evaluationRepository) UpdateError(id uuid.UUID, errorMsg string, stages []models.StageReport) error {
	result := r.db.Model(&models.Evaluation{ID: id}).
		Select("status", "error_message", "stages", "updated_at").
		Updates(&models.Evaluation{
			Status:       models.StatusFailed,
			ErrorMessage: &errorMsg,
			Stages:       stages,
			UpdatedAt:    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *evaluationRepository) FindPendingJobs(limit int) ([]models.Evaluation, error) {
	var evals []models.Evaluation
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&evals).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return evals, nil
}

// LatestByCandidates returns the most recent evaluation of each candidate that has one.
func (r *evaluationRepository) LatestByCandidates(ids []uuid.UUID) (map[uuid.UUID]models.Evaluation, error) {
	latest := make(map[uuid.UUID]models.Evaluation, len(ids))
	if len(ids) == 0 {
		return latest, nil
	}

	var evals []models.Evaluation
	err := r.db.
		Where("candidate_id IN ?", ids).
		Order("created_at DESC").
		Find(&evals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find evaluations: %w", err)
	}

	for _, e := range evals {
		if _, seen := latest[e.CandidateID]; !seen {
			latest[e.CandidateID] = e
		}
	}
	return latest, nil
}
