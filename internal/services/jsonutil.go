package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"alfredoptarigan/candidate-scorer/internal/logger"
)

// extractJSON returns the span from the first '{' to the last '}'.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// parseJSONObject decodes the object embedded in a model response.
func parseJSONObject(text string) (map[string]any, error) {
	span, ok := extractJSON(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response %q", ErrParse, logger.TruncateForLog(text, 120))
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: response object is null", ErrParse)
	}
	return out, nil
}

// coerceFloat reports whether v held a usable number.
func coerceFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func floatOr(v any, def float64) float64 {
	if f, ok := coerceFloat(v); ok {
		return f
	}
	return def
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	default:
		return false
	}
}

// coerceString returns "" for nil and non-string values.
func coerceString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func stringOr(v any, def string) string {
	if s := coerceString(v); strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

// coerceStringList keeps the string members of a JSON array.
func coerceStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func mustIndentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
