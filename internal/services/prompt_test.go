package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/ai-interviewer/internal/models"
)

func TestMainPrompt_TypeGuidance(t *testing.T) {
	pb := NewPromptBuilder()

	tests := []struct {
		interviewType models.InterviewType
		domain        string
		want          string
	}{
		{models.InterviewHR, "", "behavioral questions"},
		{models.InterviewDomainSpecific, "machine learning", "domain knowledge"},
		{models.InterviewGeneral, "", "a mix of behavioral questions"},
	}

	for _, tt := range tests {
		t.Run(string(tt.interviewType), func(t *testing.T) {
			system := pb.MainPrompt(tt.interviewType, tt.domain).System
			assert.Contains(t, system, tt.want)
			assert.Contains(t, system, "one topic at a time")
			assert.Contains(t, system, "self-awareness")
			assert.Contains(t, system, "career-alignment")
			if tt.domain != "" {
				assert.Contains(t, system, tt.domain)
			}
		})
	}
}

func TestIntroPrompt(t *testing.T) {
	system := NewPromptBuilder().IntroPrompt(models.InterviewGeneral, "", "Initech").System
	assert.Contains(t, system, "Initech")
	assert.Contains(t, system, "introduce themselves")
}

func TestFeedbackPrompt_FiveParts(t *testing.T) {
	system := NewPromptBuilder().FeedbackPrompt().System
	for _, part := range []string{"Acknowledge", "Strengths", "Improvement", "Improved phrasing", "Next step", "STAR"} {
		assert.Contains(t, system, part)
	}
}

func TestFinalAssessmentPrompt(t *testing.T) {
	tmpl := NewPromptBuilder().FinalAssessmentPrompt()
	assert.True(t, tmpl.JSON)
	assert.Contains(t, tmpl.System, "Never invent")
	assert.Contains(t, tmpl.System, "fewer than 3 meaningful answers")
	assert.Contains(t, tmpl.System, `"coaching_scores"`)
}

func TestFill(t *testing.T) {
	tmpl := PromptTemplate{System: "base", Temperature: 0.3}
	history := []models.Message{models.NewAIQuestion("q")}

	p := tmpl.Fill([]string{"chunk one", "chunk two"}, history, "input")
	assert.True(t, strings.HasPrefix(p.System, "base"))
	assert.Contains(t, p.System, "--- Context 2 ---\nchunk two")
	assert.Equal(t, history, p.History)
	assert.Equal(t, "input", p.Input)
	assert.Equal(t, float32(0.3), p.Temperature)

	assert.Equal(t, "base", tmpl.Fill(nil, nil, "").System)
}

func TestBuildAssessmentInput(t *testing.T) {
	pairs := []models.QAPair{
		{Question: "Why us?", Response: "Because your payments platform is growing fast."},
		{Question: "Strengths?", Response: "Go."},
	}

	input := NewPromptBuilder().BuildAssessmentInput(pairs, "SRE", "Acme")
	assert.Contains(t, input, "ROLE: SRE at Acme")
	assert.Contains(t, input, "ANSWERS GIVEN: 2 (meaningful: 1)")
	assert.Contains(t, input, "Q1: Why us?")
	assert.Contains(t, input, "A2: Go.")

	empty := NewPromptBuilder().BuildAssessmentInput(nil, "SRE", "Acme")
	assert.Contains(t, empty, "the candidate gave no answers")
}

func TestSynthesizeSkillsContext(t *testing.T) {
	text := NewPromptBuilder().SynthesizeSkillsContext("Backend Engineer", "Acme", models.InterviewDomainSpecific, "payments", []string{"Go", "SQL"})
	assert.Contains(t, text, "Backend Engineer at Acme")
	assert.Contains(t, text, "payments")
	assert.Contains(t, text, "- Go:")
	assert.Contains(t, text, "- SQL:")
}
