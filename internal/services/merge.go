package services

import (
	"strings"

	"alfredoptarigan/candidate-scorer/internal/models"
)

// MergeProfileURLs overlays caller-supplied URLs on extracted ones. A manual
// value that is non-blank after trimming wins and is kept as given. Other
// URLs are not merged.
func MergeProfileURLs(extracted, manual models.ProfileURLs) models.ProfileURLs {
	return models.ProfileURLs{
		GitHub:    pick(manual.GitHub, extracted.GitHub),
		LinkedIn:  pick(manual.LinkedIn, extracted.LinkedIn),
		Portfolio: pick(manual.Portfolio, extracted.Portfolio),
	}
}

func pick(manual, extracted *string) *string {
	if manual != nil && strings.TrimSpace(*manual) != "" {
		return manual
	}
	return extracted
}
