package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

type DocumentType string

const (
	DocumentPDF  DocumentType = "pdf"
	DocumentDOCX DocumentType = "docx"
	DocumentTXT  DocumentType = "txt"
)

var allowedDocumentTypes = map[DocumentType]struct{}{
	DocumentPDF:  {},
	DocumentDOCX: {},
	DocumentTXT:  {},
}

// ParseDocumentType accepts a bare type ("pdf") or a filename ("cv.PDF").
func ParseDocumentType(s string) (DocumentType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(s); ext != "" {
		s = ext
	}
	t := DocumentType(strings.TrimPrefix(s, "."))
	if _, ok := allowedDocumentTypes[t]; !ok {
		return "", fmt.Errorf("unsupported document type %q", s)
	}
	return t, nil
}

// RawDocument is the uploaded resume. Content must not be mutated after creation.
type RawDocument struct {
	Filename string
	Type     DocumentType
	Content  []byte
}

type IdentityFacts struct {
	FullName   *string `json:"full_name"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Confidence float64 `json:"confidence_score"`
	Notes      string  `json:"extraction_notes"`
}

type ProfileURLs struct {
	GitHub    *string           `json:"github_url"`
	LinkedIn  *string           `json:"linkedin_url"`
	Portfolio *string           `json:"portfolio_url"`
	Other     map[string]string `json:"other_urls,omitempty"`
}

// Keys in verification order.
const (
	PlatformGitHub    = "github"
	PlatformLinkedIn  = "linkedin"
	PlatformPortfolio = "portfolio"
)

// Named returns the present named URLs in github, linkedin, portfolio order.
func (p ProfileURLs) Named() []NamedURL {
	var out []NamedURL
	for _, n := range []struct {
		key string
		v   *string
	}{
		{PlatformGitHub, p.GitHub},
		{PlatformLinkedIn, p.LinkedIn},
		{PlatformPortfolio, p.Portfolio},
	} {
		if n.v != nil && strings.TrimSpace(*n.v) != "" {
			out = append(out, NamedURL{Key: n.key, URL: *n.v})
		}
	}
	return out
}

func (p ProfileURLs) HasAny() bool {
	return len(p.Named()) > 0
}

type NamedURL struct {
	Key string
	URL string
}

type URLExtraction struct {
	ProfileURLs
	ExtractedCount int     `json:"extracted_count"`
	Confidence     float64 `json:"confidence_score"`
	Notes          string  `json:"extraction_notes"`
}

type VerificationResult struct {
	Platforms         map[string]map[string]any `json:"platforms"`
	VerificationScore float64                   `json:"verification_score"`
	Summary           string                    `json:"summary"`
}

type CategoryScore struct {
	Score     float64            `json:"score"`
	Evidence  string             `json:"evidence"`
	Breakdown map[string]float64 `json:"breakdown"`
}

type EvaluationResult struct {
	TotalScore      float64                  `json:"total_score"`
	Categories      map[string]CategoryScore `json:"detailed_scores"`
	Explanation     string                   `json:"explanation"`
	Recommendations []string                 `json:"recommendations"`
	Strengths       []string                 `json:"strengths"`
	Weaknesses      []string                 `json:"weaknesses"`
}

type BiasAudit struct {
	Detected      bool     `json:"bias_detected"`
	Types         []string `json:"bias_types"`
	Explanation   string   `json:"bias_explanation"`
	Suggestions   []string `json:"suggestions"`
	FairnessScore float64  `json:"fairness_score"`
}

type RadarPoint struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type BarPoint struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Score       float64 `json:"score"`
}

type VisualizationBundle struct {
	Radar          []RadarPoint       `json:"radar_chart"`
	Bar            []BarPoint         `json:"bar_chart"`
	ScoreBreakdown map[string]float64 `json:"score_breakdown"`
}

type Insights struct {
	PerformanceSummary    string   `json:"performance_summary"`
	RankingTier           string   `json:"ranking_tier"`
	ImprovementPriorities []string `json:"improvement_priorities"`
	CompetitiveAdvantages []string `json:"competitive_advantages"`
}

type StageOutcome string

const (
	OutcomeOK       StageOutcome = "ok"
	OutcomeDegraded StageOutcome = "degraded"
	OutcomeSkipped  StageOutcome = "skipped"
	OutcomeFatal    StageOutcome = "fatal"
)

type StageReport struct {
	Stage   string       `json:"stage"`
	Outcome StageOutcome `json:"outcome"`
	Cause   string       `json:"cause,omitempty"`
}

// ScoreRequest is the pipeline input. Manual URLs are caller-supplied and override extraction.
type ScoreRequest struct {
	Document       RawDocument
	JobDescription string
	Manual         ProfileURLs
	UseCache       bool
}

type ScoreResult struct {
	CandidateName       *string                  `json:"candidate_name"`
	TotalScore          float64                  `json:"total_score"`
	Categories          map[string]CategoryScore `json:"detailed_scores"`
	Explanation         string                   `json:"explanation"`
	Recommendations     []string                 `json:"recommendations"`
	Strengths           []string                 `json:"strengths"`
	Weaknesses          []string                 `json:"weaknesses"`
	Verification        *VerificationResult      `json:"verification_result"`
	VerificationSummary string                   `json:"verification_summary"`
	BiasAudit           BiasAudit                `json:"bias_analysis"`
	Visualization       VisualizationBundle      `json:"visualization_data"`
	Insights            Insights                 `json:"insights"`
	Identity            IdentityFacts            `json:"extracted_name"`
	ExtractedURLs       URLExtraction            `json:"extracted_urls"`
	MergedURLs          ProfileURLs              `json:"merged_urls"`
	Stages              []StageReport            `json:"stages"`
	ResumeText          string                   `json:"-"`
}
