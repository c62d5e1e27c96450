package services

import (
	"sort"
	"strings"
	"unicode"

	"alfredoptarigan/candidate-scorer/internal/models"
)

// ShapeVisualization projects category scores into chart series. Canonical
// categories come first in their configured order, then any extra categories
// sorted by key. Subcategories are sorted by key.
func ShapeVisualization(eval *models.EvaluationResult) models.VisualizationBundle {
	bundle := models.VisualizationBundle{
		Radar:          []models.RadarPoint{},
		Bar:            []models.BarPoint{},
		ScoreBreakdown: map[string]float64{},
	}
	if eval == nil {
		return bundle
	}

	for _, key := range orderedCategories(eval.Categories) {
		cat := eval.Categories[key]
		name := DisplayName(key)

		bundle.Radar = append(bundle.Radar, models.RadarPoint{Name: name, Score: cat.Score})
		bundle.ScoreBreakdown[name] = cat.Score

		subs := make([]string, 0, len(cat.Breakdown))
		for sub := range cat.Breakdown {
			subs = append(subs, sub)
		}
		sort.Strings(subs)
		for _, sub := range subs {
			bundle.Bar = append(bundle.Bar, models.BarPoint{
				Category:    name,
				Subcategory: DisplayName(sub),
				Score:       cat.Breakdown[sub],
			})
		}
	}
	return bundle
}

func orderedCategories(categories map[string]models.CategoryScore) []string {
	keys := make([]string, 0, len(categories))
	canonical := make(map[string]struct{}, len(EvaluationCategories))
	for _, category := range EvaluationCategories {
		canonical[category.Key] = struct{}{}
		if _, ok := categories[category.Key]; ok {
			keys = append(keys, category.Key)
		}
	}

	var extra []string
	for key := range categories {
		if _, ok := canonical[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// DisplayName turns "projects_achievements" into "Projects Achievements".
func DisplayName(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
