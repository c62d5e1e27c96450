package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/models"
)

// ProfileVerifier inspects one public profile. Empty findings count as a failure.
type ProfileVerifier interface {
	Verify(ctx context.Context, profileURL string) (map[string]any, error)
}

type VerificationService interface {
	Verify(ctx context.Context, urls models.ProfileURLs) (*models.VerificationResult, error)
}

type verificationService struct {
	github    ProfileVerifier
	linkedin  ProfileVerifier
	portfolio ProfileVerifier
	log       *zap.Logger
}

func NewVerificationService(github, linkedin, portfolio ProfileVerifier, log *zap.Logger) VerificationService {
	return &verificationService{
		github:    github,
		linkedin:  linkedin,
		portfolio: portfolio,
		log:       logger.OrNop(log),
	}
}

// Verify implements VerificationService. It returns nil when there is nothing
// to verify and ErrVerificationFailed when every attempt failed.
func (v *verificationService) Verify(ctx context.Context, urls models.ProfileURLs) (*models.VerificationResult, error) {
	named := urls.Named()
	if len(named) == 0 {
		return nil, nil
	}

	result := &models.VerificationResult{Platforms: map[string]map[string]any{}}
	var attempted, succeeded int
	var errs []error

	for _, n := range named {
		attempted++
		platform, verifier := v.dispatch(n.URL)

		findings, err := v.verifyOne(ctx, verifier, n.URL)
		switch {
		case err != nil:
			verifierCalls.WithLabelValues(platform, "error").Inc()
			v.log.Warn("profile verification failed", zap.String("key", n.Key), zap.String("url", n.URL), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", n.Key, err))
		case len(findings) == 0:
			verifierCalls.WithLabelValues(platform, "empty").Inc()
			errs = append(errs, fmt.Errorf("%s: no findings", n.Key))
		default:
			verifierCalls.WithLabelValues(platform, "ok").Inc()
			result.Platforms[platform] = findings
			succeeded++
		}
	}

	if succeeded == 0 {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, errors.Join(errs...))
	}

	result.VerificationScore = float64(succeeded) / float64(attempted) * 100
	result.Summary = summarizeVerification(result.Platforms)

	v.log.Info("profiles verified",
		zap.Int("attempted", attempted),
		zap.Int("succeeded", succeeded),
		zap.Float64("score", result.VerificationScore),
	)
	return result, nil
}

func (v *verificationService) dispatch(profileURL string) (string, ProfileVerifier) {
	lower := strings.ToLower(profileURL)
	switch {
	case strings.Contains(lower, "github.com"):
		return models.PlatformGitHub, v.github
	case strings.Contains(lower, "linkedin.com"):
		return models.PlatformLinkedIn, v.linkedin
	default:
		return models.PlatformPortfolio, v.portfolio
	}
}

func (v *verificationService) verifyOne(ctx context.Context, verifier ProfileVerifier, profileURL string) (findings map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("verifier panic: %v", r)
		}
	}()
	if verifier == nil {
		return nil, errors.New("no verifier configured")
	}
	return verifier.Verify(ctx, profileURL)
}

func summarizeVerification(platforms map[string]map[string]any) string {
	var parts []string

	if gh, ok := platforms[models.PlatformGitHub]; ok {
		if s := coerceString(gh["activity_summary"]); s != "" {
			parts = append(parts, "GitHub: "+s)
		}
	}
	if li, ok := platforms[models.PlatformLinkedIn]; ok && coerceBool(li["accessible"]) {
		parts = append(parts, "LinkedIn: Profile accessible and appears professional")
	}
	if pf, ok := platforms[models.PlatformPortfolio]; ok && coerceBool(pf["accessible"]) {
		if s := coerceString(pf["content_summary"]); s != "" {
			parts = append(parts, "Portfolio: "+s)
		}
	}

	if len(parts) == 0 {
		return "Limited verification data available from provided profiles"
	}
	return strings.Join(parts, ". ")
}

// verificationContext is the text the evaluation prompt receives.
func verificationContext(result *models.VerificationResult) string {
	if result == nil {
		return noVerificationData
	}
	return mustIndentJSON(result)
}
