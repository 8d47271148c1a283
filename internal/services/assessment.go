package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"alfredoptarigan/ai-interviewer/internal/models"
)

const AssessmentFailedSummary = "Assessment generation failed"

// FallbackAssessment is returned when the model's assessment cannot be parsed.
func FallbackAssessment() *models.Assessment {
	return &models.Assessment{
		OverallScore:      0,
		Summary:           AssessmentFailedSummary,
		QuestionsAnalysis: []models.QuestionAnalysis{},
		Recommendations:   []string{},
		ClosureMessage:    "Thank you for completing the interview. We could not generate your detailed assessment this time.",
	}
}

// rawAssessment mirrors models.Assessment with pointers, so missing required
// fields can be told apart from zero values.
type rawAssessment struct {
	OverallScore      *float64 `json:"overall_score"`
	Summary           *string  `json:"summary"`
	QuestionsAnalysis []struct {
		Question      string   `json:"question"`
		Response      string   `json:"response"`
		Feedback      string   `json:"feedback"`
		Strengths     []string `json:"strengths"`
		Improvements  []string `json:"improvements"`
		Score         float64  `json:"score"`
		ResponseDepth string   `json:"response_depth"`
	} `json:"questions_analysis"`
	SkillAssessment *models.SkillAssessment `json:"skill_assessment"`
	CoachingScores  *models.CoachingScores  `json:"coaching_scores"`
	Recommendations []string                `json:"recommendations"`
	ClosureMessage  string                  `json:"closure_message"`
}

// parseAssessment validates the model output against the Assessment shape,
// clamps every score into range and aligns questions_analysis with the
// literal answers in history.
func parseAssessment(response string, pairs []models.QAPair) (*models.Assessment, error) {
	var raw rawAssessment
	if err := json.Unmarshal([]byte(extractJSON(response)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errAssessmentParse, err)
	}

	if raw.OverallScore == nil {
		return nil, fmt.Errorf("%w: overall_score missing", errAssessmentParse)
	}
	if raw.Summary == nil || strings.TrimSpace(*raw.Summary) == "" {
		return nil, fmt.Errorf("%w: summary missing", errAssessmentParse)
	}
	if raw.SkillAssessment == nil {
		return nil, fmt.Errorf("%w: skill_assessment missing", errAssessmentParse)
	}
	if raw.CoachingScores == nil {
		return nil, fmt.Errorf("%w: coaching_scores missing", errAssessmentParse)
	}

	a := &models.Assessment{
		OverallScore: clamp(*raw.OverallScore, 0, 100),
		Summary:      strings.TrimSpace(*raw.Summary),
		SkillAssessment: models.SkillAssessment{
			Communication:      clamp(raw.SkillAssessment.Communication, 0, 10),
			TechnicalKnowledge: clamp(raw.SkillAssessment.TechnicalKnowledge, 0, 10),
			ProblemSolving:     clamp(raw.SkillAssessment.ProblemSolving, 0, 10),
			CulturalFit:        clamp(raw.SkillAssessment.CulturalFit, 0, 10),
		},
		CoachingScores: models.CoachingScores{
			ClarityOfMotivation:   clamp(raw.CoachingScores.ClarityOfMotivation, 1, 5),
			SpecificityOfLearning: clamp(raw.CoachingScores.SpecificityOfLearning, 1, 5),
			CareerGoalAlignment:   clamp(raw.CoachingScores.CareerGoalAlignment, 1, 5),
		},
		Recommendations: nonNilStrings(raw.Recommendations),
		ClosureMessage:  strings.TrimSpace(raw.ClosureMessage),
	}

	a.QuestionsAnalysis = make([]models.QuestionAnalysis, 0, len(pairs))
	for i, pair := range pairs {
		if i < len(raw.QuestionsAnalysis) {
			q := raw.QuestionsAnalysis[i]
			a.QuestionsAnalysis = append(a.QuestionsAnalysis, models.QuestionAnalysis{
				// The literal transcript wins over whatever the model echoed back.
				Question:      pair.Question,
				Response:      pair.Response,
				Feedback:      strings.TrimSpace(q.Feedback),
				Strengths:     nonNilStrings(q.Strengths),
				Improvements:  nonNilStrings(q.Improvements),
				Score:         clamp(q.Score, 0, 10),
				ResponseDepth: normalizeDepth(q.ResponseDepth),
			})
			continue
		}
		a.QuestionsAnalysis = append(a.QuestionsAnalysis, models.QuestionAnalysis{
			Question:      pair.Question,
			Response:      pair.Response,
			Feedback:      "This answer was not assessed.",
			Strengths:     []string{},
			Improvements:  []string{},
			Score:         0,
			ResponseDepth: models.DepthNovice,
		})
	}

	return a, nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")
	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return strings.TrimSpace(text)
}

func normalizeDepth(s string) models.ResponseDepth {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "advanced":
		return models.DepthAdvanced
	case "intermediate":
		return models.DepthIntermediate
	default:
		return models.DepthNovice
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNilStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
