package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"alfredoptarigan/ai-interviewer/internal/models"
)

// InterviewContext is the per-session data every engine call needs.
type InterviewContext struct {
	Index         *ContextIndex
	CompanyName   string
	JobRole       string
	InterviewType models.InterviewType
	Domain        string
}

func interviewContextFor(session *models.Session, index *ContextIndex) InterviewContext {
	return InterviewContext{
		Index:         index,
		CompanyName:   session.CompanyName,
		JobRole:       session.JobRole,
		InterviewType: session.InterviewType,
		Domain:        session.Domain,
	}
}

// ConversationEngine turns session data into the next question, feedback or
// the final assessment. It never touches the session store; the caller
// commits whatever it returns.
type ConversationEngine interface {
	AskIntro(ctx context.Context, ic InterviewContext, history []models.Message) (models.Message, error)
	AskNext(ctx context.Context, ic InterviewContext, history []models.Message) (models.Message, error)
	GenerateFeedback(ctx context.Context, ic InterviewContext, answer string, history []models.Message) (string, error)
	GenerateFinalAssessment(ctx context.Context, ic InterviewContext, history []models.Message) (*models.Assessment, error)
}

type conversationEngine struct {
	llm        LanguageModel
	retriever  Retriever
	prompts    *PromptBuilder
	retrievalK int
}

func NewConversationEngine(llm LanguageModel, retriever Retriever, retrievalK int) ConversationEngine {
	if retrievalK <= 0 {
		retrievalK = DefaultRetrievalK
	}
	return &conversationEngine{
		llm:        llm,
		retriever:  retriever,
		prompts:    NewPromptBuilder(),
		retrievalK: retrievalK,
	}
}

// AskIntro implements ConversationEngine. Only valid on an empty history.
func (e *conversationEngine) AskIntro(ctx context.Context, ic InterviewContext, history []models.Message) (models.Message, error) {
	if len(history) != 0 {
		return models.Message{}, &InvalidStateError{Op: "intro", Reason: "the introduction has already been given"}
	}

	query := fmt.Sprintf("%s role at %s: responsibilities and required skills", ic.JobRole, ic.CompanyName)
	chunks := e.retriever.Retrieve(ctx, ic.Index, history, query, e.retrievalK)

	prompt := e.prompts.IntroPrompt(ic.InterviewType, ic.Domain, ic.CompanyName).
		Fill(chunks, nil, fmt.Sprintf("Begin the interview for the %s position.", ic.JobRole))

	text, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return models.Message{}, upstream("intro generation", err)
	}
	return models.NewAIQuestion(strings.TrimSpace(text)), nil
}

// AskNext implements ConversationEngine. The question cap is the caller's job.
func (e *conversationEngine) AskNext(ctx context.Context, ic InterviewContext, history []models.Message) (models.Message, error) {
	input := "Ask the next interview question."
	if last := lastHumanAnswer(history); last != "" {
		input = fmt.Sprintf("The candidate's latest answer was:\n%s\n\nAsk the next interview question.", last)
	}

	chunks := e.retriever.Retrieve(ctx, ic.Index, history, retrievalInput(history), e.retrievalK)
	prompt := e.prompts.MainPrompt(ic.InterviewType, ic.Domain).Fill(chunks, history, input)

	text, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return models.Message{}, upstream("question generation", err)
	}
	return models.NewAIQuestion(strings.TrimSpace(text)), nil
}

// GenerateFeedback implements ConversationEngine. history already ends with
// the answer being coached.
func (e *conversationEngine) GenerateFeedback(ctx context.Context, ic InterviewContext, answer string, history []models.Message) (string, error) {
	chunks := e.retriever.Retrieve(ctx, ic.Index, history, answer, e.retrievalK)

	input := fmt.Sprintf("Give feedback on my answer:\n\"%s\"", strings.TrimSpace(answer))
	prompt := e.prompts.FeedbackPrompt().Fill(chunks, history, input)

	text, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return "", upstream("feedback generation", err)
	}
	return strings.TrimSpace(text), nil
}

// GenerateFinalAssessment implements ConversationEngine. A response that does
// not parse into an Assessment yields FallbackAssessment, never an error.
func (e *conversationEngine) GenerateFinalAssessment(ctx context.Context, ic InterviewContext, history []models.Message) (*models.Assessment, error) {
	pairs := models.PairAnswers(history)
	input := e.prompts.BuildAssessmentInput(pairs, ic.JobRole, ic.CompanyName)
	prompt := e.prompts.FinalAssessmentPrompt().Fill(nil, nil, input)

	response, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, upstream("assessment generation", err)
	}

	assessment, err := parseAssessment(response, pairs)
	if err != nil {
		if errors.Is(err, errAssessmentParse) {
			log.Printf("⚠️  Using fallback assessment: %v", err)
			return FallbackAssessment(), nil
		}
		return nil, err
	}
	return assessment, nil
}

func lastHumanAnswer(history []models.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleHuman {
			return history[i].Content
		}
	}
	return ""
}

func retrievalInput(history []models.Message) string {
	if answer := lastHumanAnswer(history); answer != "" {
		return answer
	}
	if len(history) > 0 {
		return history[len(history)-1].Content
	}
	return ""
}
