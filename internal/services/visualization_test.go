package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/candidate-scorer/internal/models"
)

func sampleEvaluation() *models.EvaluationResult {
	return &models.EvaluationResult{
		TotalScore: 78,
		Categories: map[string]models.CategoryScore{
			"soft_skills":      {Score: 70, Breakdown: map[string]float64{"leadership": 60, "communication": 80}},
			"technical_skills": {Score: 90, Breakdown: map[string]float64{"programming_languages": 95, "databases": 85}},
			"open-source":      {Score: 40, Breakdown: map[string]float64{}},
			"experience":       {Score: 75},
			"aardvark":         {Score: 10},
		},
	}
}

func TestShapeVisualizationOrder(t *testing.T) {
	bundle := ShapeVisualization(sampleEvaluation())

	names := make([]string, 0, len(bundle.Radar))
	for _, p := range bundle.Radar {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Technical Skills", "Experience", "Soft Skills", "Aardvark", "Open Source"}, names)

	assert.Equal(t, []models.BarPoint{
		{Category: "Technical Skills", Subcategory: "Databases", Score: 85},
		{Category: "Technical Skills", Subcategory: "Programming Languages", Score: 95},
		{Category: "Soft Skills", Subcategory: "Communication", Score: 80},
		{Category: "Soft Skills", Subcategory: "Leadership", Score: 60},
	}, bundle.Bar)

	assert.Equal(t, 40.0, bundle.ScoreBreakdown["Open Source"])
	assert.Len(t, bundle.ScoreBreakdown, 5)
}

func TestShapeVisualizationDeterministic(t *testing.T) {
	eval := sampleEvaluation()
	first, err := json.Marshal(ShapeVisualization(eval))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(ShapeVisualization(eval))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestShapeVisualizationEmpty(t *testing.T) {
	bundle := ShapeVisualization(&models.EvaluationResult{})
	assert.Empty(t, bundle.Radar)
	assert.NotNil(t, bundle.Bar)
	assert.NotNil(t, bundle.ScoreBreakdown)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Projects Achievements", DisplayName("projects_achievements"))
	assert.Equal(t, "Cloud Devops", DisplayName("cloud-devops"))
	assert.Equal(t, "Ai", DisplayName("AI"))
}

func TestBuildInsights(t *testing.T) {
	insights := BuildInsights(sampleEvaluation())
	assert.Equal(t, "High Quality", insights.RankingTier)
	assert.Equal(t, []string{"Aardvark", "Open Source", "Soft Skills"}, insights.ImprovementPriorities)
	assert.Equal(t, []string{"Technical Skills", "Experience", "Soft Skills"}, insights.CompetitiveAdvantages)

	low := BuildInsights(&models.EvaluationResult{TotalScore: 12})
	assert.Equal(t, "Developing", low.RankingTier)
	assert.Empty(t, low.ImprovementPriorities)
}
