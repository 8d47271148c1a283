package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/ai-interviewer/internal/models"
)

// PromptTemplate is the instruction text for one prompt role. History and
// user input are supplied when the template is filled.
type PromptTemplate struct {
	System      string
	Temperature float32
	JSON        bool
}

// Fill appends retrieved context to the system text and returns a ready Prompt.
func (t PromptTemplate) Fill(contextChunks []string, history []models.Message, input string) Prompt {
	system := t.System
	if len(contextChunks) > 0 {
		system = fmt.Sprintf("%s\n\nRELEVANT JOB CONTEXT:\n%s", system, FormatRAGContext(contextChunks))
	}
	return Prompt{
		System:      system,
		History:     history,
		Input:       input,
		Temperature: t.Temperature,
		JSON:        t.JSON,
	}
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// IntroPrompt asks the interviewer persona to introduce itself and invite the
// candidate to do the same.
func (pb *PromptBuilder) IntroPrompt(interviewType models.InterviewType, domain, companyName string) PromptTemplate {
	return PromptTemplate{
		Temperature: 0.7,
		System: fmt.Sprintf(`You are a friendly, professional interviewer at %s conducting a %s.

Start the interview:
1. Greet the candidate warmly and introduce yourself by a first name and your role at %s.
2. Briefly explain how the interview will run: one topic at a time, with short feedback after each answer.
3. Ask the candidate to introduce themselves: their background, what they are working on now and why this role interests them.

Keep it under 120 words. Ask exactly one question. Do not answer on behalf of the candidate.`,
			companyName, describeInterview(interviewType, domain), companyName),
	}
}

// MainPrompt drives the question flow after the introduction.
func (pb *PromptBuilder) MainPrompt(interviewType models.InterviewType, domain string) PromptTemplate {
	return PromptTemplate{
		Temperature: 0.7,
		System: fmt.Sprintf(`You are an experienced interviewer conducting a %s.

%s

RULES:
- Cover one topic at a time and ask exactly one question per turn.
- Ask 1-2 follow-up questions on a topic before moving to the next one.
- If the last answer was shallow or vague, ask a self-awareness question (what they learned, what they would do differently, how they measure their own growth).
- If the last answer was strong and specific, ask a career-alignment question (how this experience prepares them for this role and where they want to grow next).
- Ground questions in the job context when it is provided. Never repeat a question already asked in this conversation.
- Do not give feedback here, only the next question. Keep it under 80 words.`,
			describeInterview(interviewType, domain), typeGuidance(interviewType, domain)),
	}
}

// FeedbackPrompt coaches the candidate on the answer they just gave.
func (pb *PromptBuilder) FeedbackPrompt() PromptTemplate {
	return PromptTemplate{
		Temperature: 0.5,
		System: `You are an interview coach giving feedback on the candidate's most recent answer. Quote or reference what the candidate actually said.

Structure your feedback in exactly five parts:
1. Acknowledge: one sentence recognising the answer.
2. Strengths: what worked well, with specifics from the answer.
3. Improvement: the single most valuable thing to improve. When the question is behavioral, recommend the STAR framing (Situation, Task, Action, Result).
4. Improved phrasing: model a short, improved version of part of their answer.
5. Next step: invite the candidate to revise their answer or continue to the next question.

Be encouraging and concrete. Keep it under 200 words.`,
	}
}

// FinalAssessmentPrompt asks for the structured assessment as a single JSON object.
func (pb *PromptBuilder) FinalAssessmentPrompt() PromptTemplate {
	return PromptTemplate{
		Temperature: 0.2,
		JSON:        true,
		System: `You are a senior hiring manager writing the final assessment of a mock interview.

Use ONLY the literal question/answer pairs in the transcript you are given. Never invent answers, projects or facts the candidate did not state. If fewer than 3 meaningful answers exist, lower all scores accordingly and explain why in the summary.

Return a single JSON object, no markdown, with exactly this shape:
{
  "overall_score": <0-100>,
  "summary": "<3-5 sentences>",
  "questions_analysis": [
    {
      "question": "<question as asked>",
      "response": "<candidate answer as given>",
      "feedback": "<2-3 sentences>",
      "strengths": ["<strength>"],
      "improvements": ["<improvement>"],
      "score": <0-10>,
      "response_depth": "<Novice|Intermediate|Advanced>"
    }
  ],
  "skill_assessment": {
    "communication": <0-10>,
    "technical_knowledge": <0-10>,
    "problem_solving": <0-10>,
    "cultural_fit": <0-10>
  },
  "coaching_scores": {
    "clarity_of_motivation": <1-5>,
    "specificity_of_learning": <1-5>,
    "career_goal_alignment": <1-5>
  },
  "recommendations": ["<actionable recommendation>"],
  "closure_message": "<short, warm closing message to the candidate>"
}

questions_analysis must contain exactly one entry per answer in the transcript, in order.`,
	}
}

// QueryRewritePrompt turns a follow-up into a standalone retrieval query.
func (pb *PromptBuilder) QueryRewritePrompt() PromptTemplate {
	return PromptTemplate{
		Temperature: 0,
		System: `Given the interview conversation and the latest input, rewrite the latest input as a standalone search query about the job requirements or the candidate's experience. Resolve pronouns and vague references using the conversation. Return only the query, no explanation.`,
	}
}

// BuildAssessmentInput renders the literal Q/A transcript for the final assessment.
func (pb *PromptBuilder) BuildAssessmentInput(pairs []models.QAPair, jobRole, companyName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ROLE: %s at %s\n", jobRole, companyName)
	fmt.Fprintf(&b, "ANSWERS GIVEN: %d (meaningful: %d)\n\nTRANSCRIPT:\n", len(pairs), countMeaningful(pairs))
	if len(pairs) == 0 {
		b.WriteString("(the candidate gave no answers)\n")
	}
	for i, p := range pairs {
		fmt.Fprintf(&b, "\nQ%d: %s\nA%d: %s\n", i+1, strings.TrimSpace(p.Question), i+1, strings.TrimSpace(p.Response))
	}
	b.WriteString("\nProduce the final assessment JSON now.")
	return b.String()
}

// SynthesizeSkillsContext builds the indexable job context for skills-based setups.
func (pb *PromptBuilder) SynthesizeSkillsContext(jobRole, companyName string, interviewType models.InterviewType, domain string, skills []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Position: %s at %s.\n", jobRole, companyName)
	fmt.Fprintf(&b, "Interview format: %s.\n\n", describeInterview(interviewType, domain))
	b.WriteString("The candidate should be assessed on the following skills:\n")
	for _, s := range skills {
		fmt.Fprintf(&b, "- %s: practical experience, depth of understanding and examples of applying %s in real projects.\n", s, s)
	}
	fmt.Fprintf(&b, "\nA strong %s candidate explains trade-offs, gives concrete examples with measurable results and connects these skills to the needs of %s.", jobRole, companyName)
	return b.String()
}

// Helper to clean and format context from RAG results
func FormatRAGContext(chunks []string) string {
	if len(chunks) == 0 {
		return "No relevant context found."
	}

	var parts []string
	for i, chunk := range chunks {
		parts = append(parts, fmt.Sprintf("--- Context %d ---\n%s", i+1, strings.TrimSpace(chunk)))
	}

	return strings.Join(parts, "\n\n")
}

func describeInterview(interviewType models.InterviewType, domain string) string {
	switch interviewType {
	case models.InterviewHR:
		return "HR interview"
	case models.InterviewDomainSpecific:
		return fmt.Sprintf("domain-specific interview focused on %s", domain)
	default:
		return "general interview"
	}
}

func typeGuidance(interviewType models.InterviewType, domain string) string {
	switch interviewType {
	case models.InterviewHR:
		return `FOCUS (HR): behavioral questions. Explore teamwork, conflict resolution, motivation, values, handling failure and feedback. Prefer "Tell me about a time when..." questions.`
	case models.InterviewDomainSpecific:
		return fmt.Sprintf(`FOCUS (%s): domain knowledge. Probe core concepts, tools and practices of %s, ask the candidate to reason through realistic scenarios and explain trade-offs.`, domain, domain)
	default:
		return `FOCUS (general): a mix of behavioral questions and role-related knowledge questions, alternating between the two.`
	}
}

// An answer of fewer than five words does not count as meaningful.
func countMeaningful(pairs []models.QAPair) int {
	n := 0
	for _, p := range pairs {
		if len(strings.Fields(p.Response)) >= 5 {
			n++
		}
	}
	return n
}
