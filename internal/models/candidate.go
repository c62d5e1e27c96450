package models

import (
	"time"

	"github.com/google/uuid"
)

type Candidate struct {
	ID             uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name           *string     `gorm:"type:text" json:"name,omitempty"`
	Filename       string      `gorm:"type:text" json:"filename"`
	DocumentType   string      `gorm:"type:text" json:"document_type"`
	DocumentKey    string      `gorm:"type:text" json:"document_key"`
	ResumeText     string      `gorm:"type:text" json:"-"`
	JobDescription string      `gorm:"type:text" json:"job_description"`
	ProfileURLs    ProfileURLs `gorm:"type:jsonb;serializer:json" json:"profile_urls"`
	CreatedAt      time.Time   `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (c *Candidate) TableName() string {
	return "candidates"
}
