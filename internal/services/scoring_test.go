package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/candidate-scorer/internal/models"
)

const (
	namePromptMarker   = "Extract the candidate's name"
	urlPromptMarker    = "Extract social and professional profile URLs"
	evalPromptMarker   = "candidate evaluation specialist"
	biasPromptMarker   = "for potential bias"
	sampleEvalResponse = `Here is the evaluation:
{
  "total_score": 82,
  "detailed_scores": {
    "technical_skills": {"score": 90, "evidence": "Go and Kubernetes", "breakdown": {"programming_languages": 92}},
    "experience": {"score": 80, "evidence": "8 years"},
    "education": 70
  },
  "explanation": "Strong backend engineer",
  "recommendations": ["Add metrics"],
  "strengths": ["Distributed systems"],
  "weaknesses": ["Frontend"]
}`
)

type pipelineFixture struct {
	gen       *scriptedGenerator
	github    *fakeVerifier
	linkedin  *fakeVerifier
	portfolio *fakeVerifier
	store     CacheStore
}

func newPipelineFixture() *pipelineFixture {
	return &pipelineFixture{
		gen:       &scriptedGenerator{},
		github:    &fakeVerifier{findings: map[string]any{"activity_summary": "Has 12 public repositories"}},
		linkedin:  &fakeVerifier{findings: map[string]any{"accessible": true}},
		portfolio: &fakeVerifier{findings: map[string]any{"accessible": true, "content_summary": "Basic website with limited professional content"}},
		store:     NewMemoryCacheStore(nil),
	}
}

func (f *pipelineFixture) service() ScoringService {
	llm := NewLLMClient(f.gen, f.store, 0.3, nil)
	prompts := NewPromptBuilder()
	return NewScoringService(
		NewDocumentParser(),
		NewExtractionService(llm, prompts, nil),
		NewVerificationService(f.github, f.linkedin, f.portfolio, nil),
		NewEvaluationService(llm, prompts, nil),
		NewBiasService(llm, prompts, nil),
		nil,
	)
}

func janeRequest(manual models.ProfileURLs) models.ScoreRequest {
	return models.ScoreRequest{
		Document: models.RawDocument{
			Filename: "jane.txt",
			Type:     models.DocumentTXT,
			Content:  []byte("Jane Smith, Senior Engineer... github.com/janesmith"),
		},
		JobDescription: "Senior Go engineer",
		Manual:         manual,
		UseCache:       true,
	}
}

func (f *pipelineFixture) happyPath() {
	f.gen.
		on(namePromptMarker, `{"full_name": "Jane Smith", "confidence_score": 95}`).
		on(urlPromptMarker, `{"github_url": "github.com/janesmith", "linkedin_url": "https://linkedin.com/in/auto", "other_urls": {}, "extracted_count": 5, "confidence_score": 90}`).
		on(evalPromptMarker, sampleEvalResponse).
		on(biasPromptMarker, `{"bias_detected": false, "bias_types": [], "bias_explanation": "none", "suggestions": [], "fairness_score": 88}`)
}

func TestScoreEndToEnd(t *testing.T) {
	f := newPipelineFixture()
	f.happyPath()

	result, err := f.service().Score(context.Background(), janeRequest(models.ProfileURLs{}))
	require.NoError(t, err)

	require.NotNil(t, result.CandidateName)
	assert.Equal(t, "Jane Smith", *result.CandidateName)
	assert.Equal(t, "Jane", *result.Identity.FirstName)
	require.NotNil(t, result.MergedURLs.GitHub)
	assert.Equal(t, "https://github.com/janesmith", *result.MergedURLs.GitHub)
	assert.Equal(t, 2, result.ExtractedURLs.ExtractedCount)

	assert.Equal(t, 82.0, result.TotalScore)
	assert.Equal(t, "Score provided without detailed evidence", result.Categories["education"].Evidence)
	assert.Equal(t, 88.0, result.BiasAudit.FairnessScore)
	require.NotNil(t, result.Verification)
	assert.Equal(t, 100.0, result.Verification.VerificationScore)
	assert.Equal(t, "High Quality", result.Insights.RankingTier)
	assert.Len(t, result.Visualization.Radar, 3)
	assert.Equal(t, "Technical Skills", result.Visualization.Radar[0].Name)

	for _, st := range result.Stages {
		assert.Equal(t, models.OutcomeOK, st.Outcome, st.Stage)
	}
}

func TestScoreManualLinkedInOverrides(t *testing.T) {
	f := newPipelineFixture()
	f.happyPath()

	result, err := f.service().Score(context.Background(), janeRequest(models.ProfileURLs{
		LinkedIn: strPtr("https://linkedin.com/in/override"),
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://linkedin.com/in/override", *result.MergedURLs.LinkedIn)
	assert.Equal(t, "https://linkedin.com/in/auto", *result.ExtractedURLs.LinkedIn)
	assert.Equal(t, []string{"https://linkedin.com/in/override"}, f.linkedin.seen)
}

func TestScoreEvaluationFailureIsFatal(t *testing.T) {
	f := newPipelineFixture()
	f.gen.
		on(namePromptMarker, `{"full_name": "Jane Smith"}`).
		on(urlPromptMarker, `{}`).
		fail(evalPromptMarker, errors.New("model unavailable")).
		on(biasPromptMarker, `{"fairness_score": 90}`)

	result, err := f.service().Score(context.Background(), janeRequest(models.ProfileURLs{}))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrFatalInput)
	assert.ErrorIs(t, err, ErrEvaluation)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageEvaluate, se.Stage)

	// Bias audit never ran.
	assert.Equal(t, 3, f.gen.Calls())
}

func TestScoreBiasFailureIsContained(t *testing.T) {
	f := newPipelineFixture()
	f.gen.
		on(namePromptMarker, `{"full_name": "Jane Smith"}`).
		on(urlPromptMarker, `{}`).
		on(evalPromptMarker, sampleEvalResponse).
		fail(biasPromptMarker, errors.New("quota exceeded"))

	result, err := f.service().Score(context.Background(), janeRequest(models.ProfileURLs{}))
	require.NoError(t, err)

	assert.False(t, result.BiasAudit.Detected)
	assert.Equal(t, 50.0, result.BiasAudit.FairnessScore)
	assert.Contains(t, result.BiasAudit.Explanation, "Bias analysis failed")
	assert.Equal(t, models.OutcomeDegraded, stageOutcome(result, StageAuditBias))
}

func TestScoreDegradedExtractionAndVerification(t *testing.T) {
	f := newPipelineFixture()
	f.github.findings = nil
	f.github.err = errors.New("404")
	f.gen.
		on(namePromptMarker, "no json here").
		fail(urlPromptMarker, errors.New("timeout")).
		on(evalPromptMarker, sampleEvalResponse).
		on(biasPromptMarker, `{"fairness_score": 70}`)

	result, err := f.service().Score(context.Background(), janeRequest(models.ProfileURLs{
		GitHub: strPtr("https://github.com/manual"),
	}))
	require.NoError(t, err)

	assert.Nil(t, result.CandidateName)
	assert.Zero(t, result.Identity.Confidence)
	assert.Contains(t, result.Identity.Notes, "Name extraction failed")
	assert.Contains(t, result.ExtractedURLs.Notes, "URL extraction failed")
	assert.Zero(t, result.ExtractedURLs.ExtractedCount)

	assert.Nil(t, result.Verification)
	assert.Contains(t, result.VerificationSummary, "Profile verification failed:")
	assert.Equal(t, models.OutcomeDegraded, stageOutcome(result, StageVerify))
}

func TestScoreSkipsVerificationWithoutURLs(t *testing.T) {
	f := newPipelineFixture()
	f.gen.
		on(namePromptMarker, `{"full_name": "Jane Smith"}`).
		on(urlPromptMarker, `{"github_url": null}`).
		on(evalPromptMarker, sampleEvalResponse).
		on(biasPromptMarker, `{}`)

	result, err := f.service().Score(context.Background(), janeRequest(models.ProfileURLs{}))
	require.NoError(t, err)

	assert.Nil(t, result.Verification)
	assert.Equal(t, "No profile verification performed", result.VerificationSummary)
	assert.Equal(t, models.OutcomeSkipped, stageOutcome(result, StageVerify))
	assert.Empty(t, f.github.seen)
}

func TestScoreEmptyDocumentIsFatal(t *testing.T) {
	f := newPipelineFixture()
	req := janeRequest(models.ProfileURLs{})
	req.Document.Content = []byte(" \n ")

	result, err := f.service().Score(context.Background(), req)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrFatalInput)
	assert.ErrorIs(t, err, ErrEmptyDocument)
	assert.Zero(t, f.gen.Calls())
}

func TestScoreIgnoresCancellation(t *testing.T) {
	f := newPipelineFixture()
	f.happyPath()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.service().Score(ctx, janeRequest(models.ProfileURLs{}))
	require.NoError(t, err)
	assert.Equal(t, 82.0, result.TotalScore)
}

func TestScoreSecondRunServedFromCache(t *testing.T) {
	f := newPipelineFixture()
	f.happyPath()
	svc := f.service()

	_, err := svc.Score(context.Background(), janeRequest(models.ProfileURLs{}))
	require.NoError(t, err)
	calls := f.gen.Calls()

	_, err = svc.Score(context.Background(), janeRequest(models.ProfileURLs{}))
	require.NoError(t, err)
	assert.Equal(t, calls, f.gen.Calls())
}

func stageOutcome(result *models.ScoreResult, stage string) models.StageOutcome {
	for _, st := range result.Stages {
		if st.Stage == stage {
			return st.Outcome
		}
	}
	return ""
}
