package models

import "time"

type EvaluateResponse struct {
	ID          string `json:"id"`
	CandidateID string `json:"candidate_id"`
	Status      string `json:"status"`
}

type ResultResponse struct {
	ID           string      `json:"id"`
	CandidateID  string      `json:"candidate_id"`
	Status       string      `json:"status"`
	Result       *Evaluation `json:"result,omitempty"`
	ErrorMessage *string     `json:"error_message,omitempty"`
}

type CandidateSummary struct {
	ID         string    `json:"id"`
	Name       *string   `json:"name"`
	Filename   string    `json:"filename"`
	TotalScore *float64  `json:"total_score"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type CandidateListResponse struct {
	Candidates []CandidateSummary `json:"candidates"`
	Skip       int                `json:"skip"`
	Limit      int                `json:"limit"`
	Total      int64              `json:"total"`
}

type SimilarCandidate struct {
	CandidateID string  `json:"candidate_id"`
	Name        *string `json:"name,omitempty"`
	Score       float32 `json:"similarity"`
	TotalScore  float64 `json:"total_score"`
	Snippet     string  `json:"snippet"`
}
