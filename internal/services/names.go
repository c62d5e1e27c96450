package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minNameLength = 2
	maxNameLength = 100
)

// isNullish matches placeholder values models return instead of null.
func isNullish(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "none", "n/a":
		return true
	}
	return false
}

// CleanName normalizes a person name, or returns nil when nothing usable is left.
// CleanName(*CleanName(x)) == *CleanName(x).
func CleanName(raw string) *string {
	if isNullish(raw) {
		return nil
	}

	var b strings.Builder
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsSpace(r) || r == '-' || r == '\'' || r == '.' {
			b.WriteRune(r)
		}
	}
	name := strings.Join(strings.Fields(b.String()), " ")

	n := utf8.RuneCountInString(name)
	if n < minNameLength || n > maxNameLength || !strings.ContainsFunc(name, unicode.IsLetter) {
		return nil
	}

	if n > 4 && (name == strings.ToUpper(name) || name == strings.ToLower(name)) {
		name = titleCase(name)
	}
	return &name
}

// titleCase upper-cases a letter that follows a non-letter and lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

// assembleIdentity cleans the parsed name object into IdentityFacts.
func assembleIdentity(data map[string]any) (full, first, last *string, confidence float64) {
	full = CleanName(coerceString(data["full_name"]))
	first = CleanName(coerceString(data["first_name"]))
	last = CleanName(coerceString(data["last_name"]))

	switch {
	case full == nil && first != nil && last != nil:
		joined := *first + " " + *last
		full = &joined
	case full != nil && (first == nil || last == nil):
		parts := strings.Fields(*full)
		if len(parts) >= 2 {
			f, l := parts[0], strings.Join(parts[1:], " ")
			first, last = &f, &l
		} else if len(parts) == 1 {
			f := parts[0]
			first = &f
		}
	}

	confidence, ok := data["confidence_score"].(float64)
	if !ok || confidence < 0 || confidence > 100 {
		confidence = 0
	}
	if full == nil {
		confidence = 0
	}
	return full, first, last, confidence
}
