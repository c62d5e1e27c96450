package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/candidate-scorer/internal/models"
)

type CandidateRepository interface {
	Create(candidate *models.Candidate) error
	FindByID(id uuid.UUID) (*models.Candidate, error)
	List(skip, limit int) ([]models.Candidate, error)
	Count() (int64, error)
	UpdateProfile(id uuid.UUID, profile CandidateProfile) error
}

// CandidateProfile is what a scoring run learns about a candidate.
type CandidateProfile struct {
	Name        *string
	ProfileURLs models.ProfileURLs
	ResumeText  string
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

// Create implements CandidateRepository.
func (r *candidateRepository) Create(candidate *models.Candidate) error {
	if err := r.db.Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}

	return nil
}

// FindByID implements CandidateRepository.
func (r *candidateRepository) FindByID(id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.Where("id = ?", id).First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}

	return &candidate, nil
}

// List implements CandidateRepository. Newest first.
func (r *candidateRepository) List(skip, limit int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	return candidates, nil
}

// Count implements CandidateRepository.
func (r *candidateRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.Candidate{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}

	return total, nil
}

// UpdateProfile implements CandidateRepository.
func (r *candidateRepository) UpdateProfile(id uuid.UUID, profile CandidateProfile) error {
	result := r.db.Model(&models.Candidate{ID: id}).
		Select("name", "profile_urls", "resume_text", "updated_at").
		Updates(&models.Candidate{
			Name:        profile.Name,
			ProfileURLs: profile.ProfileURLs,
			ResumeText:  profile.ResumeText,
			UpdatedAt:   time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update candidate: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}

	return nil
}
