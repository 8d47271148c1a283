package models

import (
	"time"
)

type InterviewType string

const (
	InterviewGeneral        InterviewType = "general"
	InterviewHR             InterviewType = "HR"
	InterviewDomainSpecific InterviewType = "domain-specific"
)

type InputType string

const (
	InputSkillsBased    InputType = "skills-based"
	InputJobDescription InputType = "job-description"
)

type SessionStatus string

const (
	StatusActive     SessionStatus = "active"
	StatusSubmitting SessionStatus = "submitting"
	StatusCompleted  SessionStatus = "completed"
)

type SessionStep string

const (
	StepQuestioning SessionStep = "questioning"
	StepFeedback    SessionStep = "feedback"
)

// Session is one candidate's interview attempt. ChatHistory and
// OverallFeedback are stored as JSON columns so a whole session is written in
// a single versioned row update.
type Session struct {
	ID              string        `gorm:"type:varchar(36);primaryKey" json:"session_id"`
	CompanyName     string        `gorm:"type:text;not null" json:"company_name"`
	JobRole         string        `gorm:"type:text;not null" json:"job_role"`
	InterviewType   InterviewType `gorm:"type:varchar(32);not null" json:"interview_type"`
	Domain          string        `gorm:"type:text" json:"domain,omitempty"`
	InputType       InputType     `gorm:"type:varchar(32);not null" json:"input_type"`
	Skills          []string      `gorm:"type:text;serializer:json" json:"skills,omitempty"`
	JobDescription  string        `gorm:"type:text" json:"job_description,omitempty"`
	ContextText     string        `gorm:"type:text" json:"-"`
	ContextChunks   int           `gorm:"not null;default:0" json:"context_chunks"`
	Status          SessionStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CurrentStep     SessionStep   `gorm:"type:varchar(16);not null" json:"current_step"`
	ChatHistory     []Message     `gorm:"type:text;serializer:json" json:"chat_history"`
	LastFeedback    *string       `gorm:"type:text" json:"last_feedback,omitempty"`
	OverallFeedback *Assessment   `gorm:"type:text;serializer:json" json:"overall_feedback,omitempty"`
	MaxQuestions    int           `gorm:"not null;default:7" json:"max_questions"`
	Version         int           `gorm:"not null;default:0" json:"-"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `gorm:"index" json:"updated_at"`
}

func (Session) TableName() string {
	return "interview_sessions"
}

// QuestionsAsked counts interviewer questions delivered so far, the intro included.
func (s *Session) QuestionsAsked() int {
	n := 0
	for _, m := range s.ChatHistory {
		if m.IsQuestion() {
			n++
		}
	}
	return n
}

// AnswersGiven counts human-authored turns.
func (s *Session) AnswersGiven() int {
	n := 0
	for _, m := range s.ChatHistory {
		if m.Role == RoleHuman {
			n++
		}
	}
	return n
}

func (s *Session) LastMessage() (Message, bool) {
	if len(s.ChatHistory) == 0 {
		return Message{}, false
	}
	return s.ChatHistory[len(s.ChatHistory)-1], true
}

// CapReached reports whether the per-session question cap has been hit.
func (s *Session) CapReached() bool {
	return s.MaxQuestions > 0 && s.QuestionsAsked() >= s.MaxQuestions
}

func (s *Session) IsTerminal() bool {
	return s.Status == StatusCompleted
}
