package services

import (
	"net/url"
	"regexp"
	"strings"

	"alfredoptarigan/candidate-scorer/internal/models"
)

type URLPlatform int

const (
	PlatformGeneric URLPlatform = iota
	PlatformGitHubProfile
	PlatformLinkedInProfile
)

var (
	githubProfilePattern   = regexp.MustCompile(`(?i)^https?://(?:www\.)?github\.com/[\w\-._]+/?`)
	linkedinProfilePattern = regexp.MustCompile(`(?i)^https?://(?:www\.)?linkedin\.com/in/[\w\-._]+/?`)
	absoluteURLPattern     = regexp.MustCompile(`(?i)^https?://[\w\-._~:/?#\[\]@!$&'()*+,;=%]+$`)
	schemePattern          = regexp.MustCompile(`(?i)^https?://`)
)

// ValidateURL trims raw, adds https:// when no scheme is present and checks
// the platform shape. It returns nil for anything that fails. Idempotent.
func ValidateURL(raw string, platform URLPlatform) *string {
	if isNullish(raw) {
		return nil
	}

	u := strings.TrimSpace(raw)
	if !schemePattern.MatchString(u) {
		u = "https://" + u
	}

	switch platform {
	case PlatformGitHubProfile:
		if !githubProfilePattern.MatchString(u) {
			return nil
		}
	case PlatformLinkedInProfile:
		if !linkedinProfilePattern.MatchString(u) {
			return nil
		}
	}

	if !absoluteURLPattern.MatchString(u) {
		return nil
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return nil
	}
	return &u
}

// cleanProfileURLs validates every URL in the parsed extraction object and
// returns the survivors with their count.
func cleanProfileURLs(data map[string]any) (models.ProfileURLs, int) {
	set := models.ProfileURLs{
		GitHub:    ValidateURL(coerceString(data["github_url"]), PlatformGitHubProfile),
		LinkedIn:  ValidateURL(coerceString(data["linkedin_url"]), PlatformLinkedInProfile),
		Portfolio: ValidateURL(coerceString(data["portfolio_url"]), PlatformGeneric),
		Other:     map[string]string{},
	}

	if others, ok := data["other_urls"].(map[string]any); ok {
		for platform, v := range others {
			if u := ValidateURL(coerceString(v), PlatformGeneric); u != nil {
				set.Other[platform] = *u
			}
		}
	}

	return set, len(set.Named()) + len(set.Other)
}
