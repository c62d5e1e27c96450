package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/candidate-scorer/internal/models"
)

type fakeVerifier struct {
	findings map[string]any
	err      error
	panics   bool
	seen     []string
}

func (f *fakeVerifier) Verify(ctx context.Context, profileURL string) (map[string]any, error) {
	f.seen = append(f.seen, profileURL)
	if f.panics {
		panic("boom")
	}
	return f.findings, f.err
}

func TestVerifySkipsWithoutURLs(t *testing.T) {
	svc := NewVerificationService(&fakeVerifier{}, &fakeVerifier{}, &fakeVerifier{}, nil)
	result, err := svc.Verify(context.Background(), models.ProfileURLs{GitHub: strPtr("  ")})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestVerifyDispatchesByDomain(t *testing.T) {
	gh := &fakeVerifier{findings: map[string]any{"activity_summary": "Has 3 public repositories"}}
	li := &fakeVerifier{findings: map[string]any{"accessible": true}}
	pf := &fakeVerifier{findings: map[string]any{"accessible": true, "content_summary": "Professional portfolio with sections: about"}}
	svc := NewVerificationService(gh, li, pf, nil)

	// A portfolio key holding a github URL still goes to the github verifier.
	result, err := svc.Verify(context.Background(), models.ProfileURLs{
		LinkedIn:  strPtr("https://linkedin.com/in/jane"),
		Portfolio: strPtr("https://GitHub.com/jane"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://GitHub.com/jane"}, gh.seen)
	assert.Equal(t, []string{"https://linkedin.com/in/jane"}, li.seen)
	assert.Empty(t, pf.seen)
	assert.Equal(t, 100.0, result.VerificationScore)
	assert.Equal(t, "GitHub: Has 3 public repositories. LinkedIn: Profile accessible and appears professional", result.Summary)
}

func TestVerifyIsolatesFailures(t *testing.T) {
	gh := &fakeVerifier{panics: true}
	li := &fakeVerifier{findings: map[string]any{}}
	pf := &fakeVerifier{findings: map[string]any{"accessible": true, "content_summary": "Basic website with limited professional content"}}
	svc := NewVerificationService(gh, li, pf, nil)

	result, err := svc.Verify(context.Background(), models.ProfileURLs{
		GitHub:    strPtr("https://github.com/jane"),
		LinkedIn:  strPtr("https://linkedin.com/in/jane"),
		Portfolio: strPtr("https://jane.dev"),
	})
	require.NoError(t, err)

	assert.InDelta(t, 100.0/3, result.VerificationScore, 1e-9)
	assert.Contains(t, result.Platforms, models.PlatformPortfolio)
	assert.NotContains(t, result.Platforms, models.PlatformGitHub)
	assert.Equal(t, "Portfolio: Basic website with limited professional content", result.Summary)
}

func TestVerifyAllFailed(t *testing.T) {
	gh := &fakeVerifier{err: errors.New("rate limited")}
	svc := NewVerificationService(gh, nil, nil, nil)

	result, err := svc.Verify(context.Background(), models.ProfileURLs{
		GitHub:   strPtr("https://github.com/jane"),
		LinkedIn: strPtr("https://linkedin.com/in/jane"),
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestVerificationContext(t *testing.T) {
	assert.Equal(t, "No verification data available", verificationContext(nil))
	ctx := verificationContext(&models.VerificationResult{VerificationScore: 50, Summary: "s"})
	assert.Contains(t, ctx, `"verification_score": 50`)
}
