package models

type ResponseDepth string

const (
	DepthNovice       ResponseDepth = "Novice"
	DepthIntermediate ResponseDepth = "Intermediate"
	DepthAdvanced     ResponseDepth = "Advanced"
)

// Assessment is the final feedback attached to a completed session.
type Assessment struct {
	OverallScore      float64            `json:"overall_score"`
	Summary           string             `json:"summary"`
	QuestionsAnalysis []QuestionAnalysis `json:"questions_analysis"`
	SkillAssessment   SkillAssessment    `json:"skill_assessment"`
	CoachingScores    CoachingScores     `json:"coaching_scores"`
	Recommendations   []string           `json:"recommendations"`
	ClosureMessage    string             `json:"closure_message"`
}

type QuestionAnalysis struct {
	Question      string        `json:"question"`
	Response      string        `json:"response"`
	Feedback      string        `json:"feedback"`
	Strengths     []string      `json:"strengths"`
	Improvements  []string      `json:"improvements"`
	Score         float64       `json:"score"`
	ResponseDepth ResponseDepth `json:"response_depth"`
}

// SkillAssessment scores are 0-10.
type SkillAssessment struct {
	Communication      float64 `json:"communication"`
	TechnicalKnowledge float64 `json:"technical_knowledge"`
	ProblemSolving     float64 `json:"problem_solving"`
	CulturalFit        float64 `json:"cultural_fit"`
}

// CoachingScores are 1-5.
type CoachingScores struct {
	ClarityOfMotivation   float64 `json:"clarity_of_motivation"`
	SpecificityOfLearning float64 `json:"specificity_of_learning"`
	CareerGoalAlignment   float64 `json:"career_goal_alignment"`
}
