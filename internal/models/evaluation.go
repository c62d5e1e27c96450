package models

import (
	"time"

	"github.com/google/uuid"
)

type EvaluationStatus string

const (
	StatusQueued     EvaluationStatus = "queued"
	StatusProcessing EvaluationStatus = "processing"
	StatusCompleted  EvaluationStatus = "completed"
	StatusFailed     EvaluationStatus = "failed"
)

type Evaluation struct {
	ID                  uuid.UUID                `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID         uuid.UUID                `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Status              EvaluationStatus         `gorm:"not null;default:'queued'" json:"status"`
	UseCache            bool                     `gorm:"not null;default:true" json:"use_cache"`
	ManualURLs          ProfileURLs              `gorm:"type:jsonb;serializer:json" json:"manual_urls"`
	TotalScore          *float64                 `gorm:"type:decimal(5,2)" json:"total_score,omitempty"`
	Categories          map[string]CategoryScore `gorm:"type:jsonb;serializer:json" json:"detailed_scores,omitempty"`
	Explanation         *string                  `gorm:"type:text" json:"explanation,omitempty"`
	Recommendations     []string                 `gorm:"type:jsonb;serializer:json" json:"recommendations,omitempty"`
	Strengths           []string                 `gorm:"type:jsonb;serializer:json" json:"strengths,omitempty"`
	Weaknesses          []string                 `gorm:"type:jsonb;serializer:json" json:"weaknesses,omitempty"`
	Verification        *VerificationResult      `gorm:"type:jsonb;serializer:json" json:"verification_result,omitempty"`
	VerificationSummary *string                  `gorm:"type:text" json:"verification_summary,omitempty"`
	BiasAudit           *BiasAudit               `gorm:"type:jsonb;serializer:json" json:"bias_analysis,omitempty"`
	Visualization       *VisualizationBundle     `gorm:"type:jsonb;serializer:json" json:"visualization_data,omitempty"`
	Insights            *Insights                `gorm:"type:jsonb;serializer:json" json:"insights,omitempty"`
	Stages              []StageReport            `gorm:"type:jsonb;serializer:json" json:"stages,omitempty"`
	ErrorMessage        *string                  `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt           time.Time                `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time                `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Candidate Candidate `gorm:"foreignKey:CandidateID" json:"-"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
