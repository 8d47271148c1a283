package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/ai-interviewer/internal/models"
)

func TestParseAssessment_AlignsWithTranscript(t *testing.T) {
	pairs := []models.QAPair{
		{Question: "Tell me about yourself?", Response: "I build billing systems."},
		{Question: "Hardest bug?", Response: "A race in our ledger."},
	}

	a, err := parseAssessment("```json\n"+validAssessmentJSON+"\n```", pairs)
	require.NoError(t, err)

	assert.Equal(t, 78.0, a.OverallScore)
	require.Len(t, a.QuestionsAnalysis, 2)
	assert.Equal(t, "Tell me about yourself?", a.QuestionsAnalysis[0].Question)
	assert.Equal(t, "I build billing systems.", a.QuestionsAnalysis[0].Response)
	assert.Equal(t, models.DepthAdvanced, a.QuestionsAnalysis[0].ResponseDepth)
	assert.Equal(t, "A race in our ledger.", a.QuestionsAnalysis[1].Response)
	assert.Equal(t, models.DepthNovice, a.QuestionsAnalysis[1].ResponseDepth)
	assert.NotNil(t, a.QuestionsAnalysis[1].Strengths)
}

func TestParseAssessment_TruncatesExtraAnalyses(t *testing.T) {
	a, err := parseAssessment(validAssessmentJSON, nil)
	require.NoError(t, err)
	assert.Empty(t, a.QuestionsAnalysis)
	assert.NotNil(t, a.QuestionsAnalysis)
}

func TestParseAssessment_ClampsScores(t *testing.T) {
	raw := `{
		"overall_score": 140,
		"summary": "ok",
		"questions_analysis": [{"score": -3, "response_depth": "EXPERT"}],
		"skill_assessment": {"communication": 12, "technical_knowledge": -1, "problem_solving": 5, "cultural_fit": 10},
		"coaching_scores": {"clarity_of_motivation": 0, "specificity_of_learning": 9, "career_goal_alignment": 3}
	}`

	a, err := parseAssessment(raw, []models.QAPair{{Question: "q", Response: "r"}})
	require.NoError(t, err)

	assert.Equal(t, 100.0, a.OverallScore)
	assert.Equal(t, 0.0, a.QuestionsAnalysis[0].Score)
	assert.Equal(t, models.DepthNovice, a.QuestionsAnalysis[0].ResponseDepth)
	assert.Equal(t, 10.0, a.SkillAssessment.Communication)
	assert.Equal(t, 0.0, a.SkillAssessment.TechnicalKnowledge)
	assert.Equal(t, 1.0, a.CoachingScores.ClarityOfMotivation)
	assert.Equal(t, 5.0, a.CoachingScores.SpecificityOfLearning)
	assert.NotNil(t, a.Recommendations)
}

func TestParseAssessment_RejectsBadShapes(t *testing.T) {
	tests := map[string]string{
		"not json":              "Sorry, here is your assessment: great job",
		"missing overall score": `{"summary": "x", "skill_assessment": {}, "coaching_scores": {}}`,
		"missing summary":       `{"overall_score": 50, "skill_assessment": {}, "coaching_scores": {}}`,
		"blank summary":         `{"overall_score": 50, "summary": " ", "skill_assessment": {}, "coaching_scores": {}}`,
		"missing skills":        `{"overall_score": 50, "summary": "x", "coaching_scores": {}}`,
		"missing coaching":      `{"overall_score": 50, "summary": "x", "skill_assessment": {}}`,
		"wrong types":           `{"overall_score": "high", "summary": "x", "skill_assessment": {}, "coaching_scores": {}}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseAssessment(raw, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errAssessmentParse))
		})
	}
}

func TestFallbackAssessment(t *testing.T) {
	a := FallbackAssessment()
	assert.Equal(t, 0.0, a.OverallScore)
	assert.Equal(t, "Assessment generation failed", a.Summary)
	assert.NotNil(t, a.QuestionsAnalysis)
	assert.Empty(t, a.QuestionsAnalysis)
	assert.NotNil(t, a.Recommendations)
	assert.Empty(t, a.Recommendations)
}
