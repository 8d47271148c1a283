package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

const (
	DefaultMaxQuestions       = 7
	maxQuestionsLimit         = 50
	minJobDescriptionChars    = 50
	defaultMinSkills          = 1
	defaultMaxSkills          = 20
	maxSkillLength            = 80
	maxCompanyOrRoleNameChars = 200
)

// InterviewService is the session lifecycle state machine:
//
//	active/questioning <-> active/feedback -> submitting -> completed
//
// Every operation on one session id runs under that session's lock.
type InterviewService interface {
	Start(ctx context.Context, setup models.StartSessionRequest) (*models.Session, error)
	NextQuestion(ctx context.Context, id string) (*models.Message, error)
	// NextOrSubmit delivers the next question, or finalizes the session once
	// its question cap is reached. The check and the action share one lock.
	NextOrSubmit(ctx context.Context, id string) (*NextTurn, error)
	PostAnswer(ctx context.Context, id, answer string) (string, error)
	ReviseAnswer(ctx context.Context, id string) (string, error)
	Submit(ctx context.Context, id string) (*models.Assessment, error)
	GetStatus(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, status models.SessionStatus, limit int) ([]models.SessionSummary, error)
	// RecoverSubmission finishes a session left in submitting. Sessions in any
	// other status are skipped.
	RecoverSubmission(ctx context.Context, id string) error
}

// NextTurn carries either a new question or, when the cap was reached, the
// final assessment.
type NextTurn struct {
	Question       *models.Message
	Assessment     *models.Assessment
	QuestionNumber int
	MaxQuestions   int
}

func (t *NextTurn) Completed() bool {
	return t.Assessment != nil
}

type InterviewOptions struct {
	MaxQuestions int
	MinSkills    int
	MaxSkills    int
}

type interviewService struct {
	repo    repositories.SessionRepository
	indexer ContextIndexer
	engine  ConversationEngine
	prompts *PromptBuilder
	locks   *sessionLocks
	opts    InterviewOptions
}

func NewInterviewService(
	repo repositories.SessionRepository,
	indexer ContextIndexer,
	engine ConversationEngine,
	opts InterviewOptions,
) InterviewService {
	if opts.MaxQuestions <= 0 {
		opts.MaxQuestions = DefaultMaxQuestions
	}
	if opts.MinSkills <= 0 {
		opts.MinSkills = defaultMinSkills
	}
	if opts.MaxSkills <= 0 {
		opts.MaxSkills = defaultMaxSkills
	}
	return &interviewService{
		repo:    repo,
		indexer: indexer,
		engine:  engine,
		prompts: NewPromptBuilder(),
		locks:   newSessionLocks(),
		opts:    opts,
	}
}

// Start validates the setup, builds the context index and stores a session
// whose history holds only the introduction. Nothing is stored on failure.
func (s *interviewService) Start(ctx context.Context, setup models.StartSessionRequest) (*models.Session, error) {
	session, err := s.newSession(setup)
	if err != nil {
		return nil, err
	}

	contextText := session.JobDescription
	if session.InputType == models.InputSkillsBased {
		contextText = s.prompts.SynthesizeSkillsContext(session.JobRole, session.CompanyName, session.InterviewType, session.Domain, session.Skills)
	}
	session.ContextText = contextText

	log.Printf("🔄 Session %s: building context index", session.ID)
	index, err := s.indexer.Build(ctx, session.ID, contextText)
	if err != nil {
		return nil, err
	}
	session.ContextChunks = index.ChunkCount

	intro, err := s.engine.AskIntro(ctx, interviewContextFor(session, index), nil)
	if err != nil {
		s.discardIndex(ctx, session.ID)
		return nil, err
	}
	session.ChatHistory = []models.Message{intro}

	if err := s.repo.Create(ctx, session); err != nil {
		s.discardIndex(ctx, session.ID)
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	log.Printf("✅ Session %s started (%s, %s at %s)", session.ID, session.InterviewType, session.JobRole, session.CompanyName)
	return session, nil
}

func (s *interviewService) NextQuestion(ctx context.Context, id string) (*models.Message, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.loadActive(ctx, "next question", id)
	if err != nil {
		return nil, err
	}
	return s.askNext(ctx, session)
}

func (s *interviewService) NextOrSubmit(ctx context.Context, id string) (*NextTurn, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.loadActive(ctx, "next question", id)
	if err != nil {
		return nil, err
	}

	if session.CapReached() {
		log.Printf("🏁 Session %s: question cap %d reached", id, session.MaxQuestions)
		assessment, err := s.finalize(ctx, session)
		if err != nil {
			return nil, err
		}
		return &NextTurn{
			Assessment:     assessment,
			QuestionNumber: session.QuestionsAsked(),
			MaxQuestions:   session.MaxQuestions,
		}, nil
	}

	question, err := s.askNext(ctx, session)
	if err != nil {
		return nil, err
	}
	return &NextTurn{
		Question:       question,
		QuestionNumber: session.QuestionsAsked(),
		MaxQuestions:   session.MaxQuestions,
	}, nil
}

// askNext must be called with the session lock held.
func (s *interviewService) askNext(ctx context.Context, session *models.Session) (*models.Message, error) {
	ic := s.interviewContext(session)
	var (
		question models.Message
		err      error
	)
	if len(session.ChatHistory) == 0 {
		question, err = s.engine.AskIntro(ctx, ic, nil)
	} else {
		question, err = s.engine.AskNext(ctx, ic, session.ChatHistory)
	}
	if err != nil {
		return nil, err
	}

	session.ChatHistory = appendMessages(session.ChatHistory, question)
	session.CurrentStep = models.StepQuestioning

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	log.Printf("❓ Session %s: question %d delivered", session.ID, session.QuestionsAsked())
	return &question, nil
}

func (s *interviewService) PostAnswer(ctx context.Context, id, answer string) (string, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.loadActive(ctx, "answer", id)
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", newValidationError("answer", "must not be empty")
	}
	if len(session.ChatHistory) == 0 {
		return "", newInvalidState("answer", session, "no question has been asked yet")
	}
	if session.CurrentStep != models.StepQuestioning {
		return "", newInvalidState("answer", session, "the current question was already answered; request the next question or revise")
	}

	history := appendMessages(session.ChatHistory, models.NewHumanAnswer(answer))
	feedback, err := s.engine.GenerateFeedback(ctx, s.interviewContext(session), answer, history)
	if err != nil {
		return "", err
	}

	session.ChatHistory = append(history, models.NewAIFeedback(feedback))
	session.LastFeedback = &feedback
	session.CurrentStep = models.StepFeedback

	if err := s.save(ctx, session); err != nil {
		return "", err
	}

	log.Printf("💬 Session %s: answer %d coached", id, session.AnswersGiven())
	return feedback, nil
}

// ReviseAnswer drops the most recent interviewer turn and returns the
// question the candidate may now answer again.
func (s *interviewService) ReviseAnswer(ctx context.Context, id string) (string, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.loadActive(ctx, "revise", id)
	if err != nil {
		return "", err
	}

	last, ok := session.LastMessage()
	if !ok {
		return "", newInvalidState("revise", session, "history is empty")
	}
	if last.Role != models.RoleAI {
		return "", newInvalidState("revise", session, "the latest turn is not an interviewer message")
	}
	if len(session.ChatHistory) < 2 {
		return "", newInvalidState("revise", session, "the introduction cannot be revised")
	}

	history := session.ChatHistory[:len(session.ChatHistory)-1]
	question := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].IsQuestion() {
			question = history[i].Content
			break
		}
	}
	if question == "" {
		return "", newInvalidState("revise", session, "no earlier question to return to")
	}

	session.ChatHistory = appendMessages(history)
	if last.Kind == models.KindFeedback {
		session.LastFeedback = nil
	}
	session.CurrentStep = models.StepQuestioning

	if err := s.save(ctx, session); err != nil {
		return "", err
	}

	log.Printf("↩️  Session %s: rolled back %s turn", id, last.Kind)
	return question, nil
}

// Submit moves the session to submitting, generates the assessment and
// completes it. If generation fails the session stays in submitting and
// Submit may be called again.
func (s *interviewService) Submit(ctx context.Context, id string) (*models.Assessment, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, newInvalidState("submit", session, "the session is already completed")
	}

	return s.finalize(ctx, session)
}

func (s *interviewService) RecoverSubmission(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if session.Status != models.StatusSubmitting {
		return nil
	}

	_, err = s.finalize(ctx, session)
	return err
}

func (s *interviewService) finalize(ctx context.Context, session *models.Session) (*models.Assessment, error) {
	if session.Status == models.StatusActive {
		session.Status = models.StatusSubmitting
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
		log.Printf("📝 Session %s: submitting", session.ID)
	}

	assessment, err := s.engine.GenerateFinalAssessment(ctx, s.interviewContext(session), session.ChatHistory)
	if err != nil {
		log.Printf("❌ Session %s: assessment failed, left in submitting: %v", session.ID, err)
		return nil, err
	}

	session.OverallFeedback = assessment
	session.Status = models.StatusCompleted

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	log.Printf("✅ Session %s completed (score %.0f)", session.ID, assessment.OverallScore)
	return assessment, nil
}

func (s *interviewService) GetStatus(ctx context.Context, id string) (*models.Session, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *interviewService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.discardIndex(ctx, id)

	log.Printf("🗑️  Session %s deleted", id)
	return nil
}

func (s *interviewService) List(ctx context.Context, status models.SessionStatus, limit int) ([]models.SessionSummary, error) {
	sessions, err := s.repo.List(ctx, repositories.SessionFilter{Status: status, Limit: limit})
	if err != nil {
		return nil, err
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for i := range sessions {
		summaries = append(summaries, models.SessionSummary{
			SessionID:      sessions[i].ID,
			CompanyName:    sessions[i].CompanyName,
			JobRole:        sessions[i].JobRole,
			InterviewType:  sessions[i].InterviewType,
			Status:         sessions[i].Status,
			QuestionsAsked: sessions[i].QuestionsAsked(),
			UpdatedAt:      sessions[i].UpdatedAt,
		})
	}
	return summaries, nil
}

// loadActive reads the session and rejects anything that is not active.
func (s *interviewService) loadActive(ctx context.Context, op, id string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch session.Status {
	case models.StatusActive:
		return session, nil
	case models.StatusCompleted:
		return nil, newInvalidState(op, session, "the session is completed")
	default:
		return nil, newInvalidState(op, session, "the session is being submitted")
	}
}

func (s *interviewService) save(ctx context.Context, session *models.Session) error {
	if err := s.repo.Update(ctx, session); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) || errors.Is(err, repositories.ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *interviewService) interviewContext(session *models.Session) InterviewContext {
	return interviewContextFor(session, s.indexer.Open(session.ID, session.ContextChunks))
}

func (s *interviewService) discardIndex(ctx context.Context, id string) {
	if err := s.indexer.Discard(context.WithoutCancel(ctx), id); err != nil {
		log.Printf("⚠️  Session %s: %v", id, err)
	}
}

func (s *interviewService) newSession(setup models.StartSessionRequest) (*models.Session, error) {
	company := strings.TrimSpace(setup.CompanyName)
	role := strings.TrimSpace(setup.JobRole)
	if company == "" {
		return nil, newValidationError("company_name", "is required")
	}
	if role == "" {
		return nil, newValidationError("job_role", "is required")
	}
	if utf8.RuneCountInString(company) > maxCompanyOrRoleNameChars {
		return nil, newValidationError("company_name", "must be at most %d characters", maxCompanyOrRoleNameChars)
	}
	if utf8.RuneCountInString(role) > maxCompanyOrRoleNameChars {
		return nil, newValidationError("job_role", "must be at most %d characters", maxCompanyOrRoleNameChars)
	}

	interviewType, err := parseInterviewType(setup.InterviewType)
	if err != nil {
		return nil, err
	}

	domain := strings.TrimSpace(setup.Domain)
	if interviewType == models.InterviewDomainSpecific && domain == "" {
		return nil, newValidationError("domain", "is required for domain-specific interviews")
	}
	if interviewType != models.InterviewDomainSpecific && domain != "" {
		return nil, newValidationError("domain", "is only allowed for domain-specific interviews")
	}

	inputType, err := parseInputType(setup.InputType)
	if err != nil {
		return nil, err
	}

	jobDescription := strings.TrimSpace(setup.JobDescription)
	var skills []string
	switch inputType {
	case models.InputSkillsBased:
		if jobDescription != "" {
			return nil, newValidationError("job_description", "must be empty for skills-based interviews")
		}
		skills, err = s.cleanSkills(setup.Skills)
		if err != nil {
			return nil, err
		}
	case models.InputJobDescription:
		if len(setup.Skills) > 0 {
			return nil, newValidationError("skills", "must be empty for job-description interviews")
		}
		if utf8.RuneCountInString(jobDescription) < minJobDescriptionChars {
			return nil, newValidationError("job_description", "must be at least %d characters", minJobDescriptionChars)
		}
	}

	maxQuestions := setup.MaxQuestions
	if maxQuestions == 0 {
		maxQuestions = s.opts.MaxQuestions
	}
	if maxQuestions < 1 || maxQuestions > maxQuestionsLimit {
		return nil, newValidationError("max_questions", "must be between 1 and %d", maxQuestionsLimit)
	}

	return &models.Session{
		ID:             uuid.NewString(),
		CompanyName:    company,
		JobRole:        role,
		InterviewType:  interviewType,
		Domain:         domain,
		InputType:      inputType,
		Skills:         skills,
		JobDescription: jobDescription,
		Status:         models.StatusActive,
		CurrentStep:    models.StepQuestioning,
		ChatHistory:    []models.Message{},
		MaxQuestions:   maxQuestions,
	}, nil
}

func (s *interviewService) cleanSkills(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	skills := make([]string, 0, len(raw))
	for i, skill := range raw {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			return nil, newValidationError("skills", "skill %d is empty", i+1)
		}
		if utf8.RuneCountInString(skill) > maxSkillLength {
			return nil, newValidationError("skills", "skill %d is longer than %d characters", i+1, maxSkillLength)
		}
		key := strings.ToLower(skill)
		if seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, skill)
	}

	if len(skills) < s.opts.MinSkills {
		return nil, newValidationError("skills", "at least %d skill(s) required", s.opts.MinSkills)
	}
	if len(skills) > s.opts.MaxSkills {
		return nil, newValidationError("skills", "at most %d skills allowed", s.opts.MaxSkills)
	}
	return skills, nil
}

func parseInterviewType(raw string) (models.InterviewType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "general":
		return models.InterviewGeneral, nil
	case "hr":
		return models.InterviewHR, nil
	case "domain-specific", "domain_specific", "domain":
		return models.InterviewDomainSpecific, nil
	case "":
		return "", newValidationError("interview_type", "is required")
	default:
		return "", newValidationError("interview_type", "unknown value %q", raw)
	}
}

func parseInputType(raw string) (models.InputType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "skills-based", "skills_based", "skills":
		return models.InputSkillsBased, nil
	case "job-description", "job_description", "jd":
		return models.InputJobDescription, nil
	case "":
		return "", newValidationError("input_type", "is required")
	default:
		return "", newValidationError("input_type", "unknown value %q", raw)
	}
}

// appendMessages copies before appending so a failed save never aliases the
// slice read from the store.
func appendMessages(history []models.Message, msgs ...models.Message) []models.Message {
	out := make([]models.Message, 0, len(history)+len(msgs))
	out = append(out, history...)
	return append(out, msgs...)
}
