package services

import (
	"sort"

	"alfredoptarigan/candidate-scorer/internal/models"
)

type rankingTier struct {
	min     float64
	tier    string
	summary string
}

var rankingTiers = []rankingTier{
	{85, "Top Tier", "Exceptional candidate with strong qualifications"},
	{70, "High Quality", "Strong candidate with good qualifications"},
	{55, "Mid Level", "Adequate candidate with some qualifications"},
}

const insightCategoryCount = 3

// BuildInsights ranks the candidate and names the weakest and strongest categories.
func BuildInsights(eval *models.EvaluationResult) models.Insights {
	insights := models.Insights{ImprovementPriorities: []string{}, CompetitiveAdvantages: []string{}}
	if eval == nil {
		return insights
	}

	insights.RankingTier = "Developing"
	insights.PerformanceSummary = "Candidate may need additional development"
	for _, t := range rankingTiers {
		if eval.TotalScore >= t.min {
			insights.RankingTier = t.tier
			insights.PerformanceSummary = t.summary
			break
		}
	}

	keys := orderedCategories(eval.Categories)
	ascending := append([]string(nil), keys...)
	sort.SliceStable(ascending, func(i, j int) bool {
		return eval.Categories[ascending[i]].Score < eval.Categories[ascending[j]].Score
	})
	descending := append([]string(nil), keys...)
	sort.SliceStable(descending, func(i, j int) bool {
		return eval.Categories[descending[i]].Score > eval.Categories[descending[j]].Score
	})

	for i := 0; i < len(ascending) && i < insightCategoryCount; i++ {
		insights.ImprovementPriorities = append(insights.ImprovementPriorities, DisplayName(ascending[i]))
	}
	for i := 0; i < len(descending) && i < insightCategoryCount; i++ {
		insights.CompetitiveAdvantages = append(insights.CompetitiveAdvantages, DisplayName(descending[i]))
	}
	return insights
}
