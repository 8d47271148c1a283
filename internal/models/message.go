package models

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	RoleAI    MessageRole = "ai"
	RoleHuman MessageRole = "human"
)

// MessageKind separates the two kinds of interviewer turns. Human turns are
// always answers.
type MessageKind string

const (
	KindQuestion MessageKind = "question"
	KindFeedback MessageKind = "feedback"
	KindAnswer   MessageKind = "answer"
)

type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Kind      MessageKind `json:"kind"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewAIQuestion(content string) Message {
	return newMessage(RoleAI, KindQuestion, content)
}

func NewAIFeedback(content string) Message {
	return newMessage(RoleAI, KindFeedback, content)
}

func NewHumanAnswer(content string) Message {
	return newMessage(RoleHuman, KindAnswer, content)
}

func newMessage(role MessageRole, kind MessageKind, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Kind:      kind,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func (m Message) IsQuestion() bool {
	return m.Role == RoleAI && m.Kind == KindQuestion
}

// QAPair is one answered question, recovered from history order.
type QAPair struct {
	Question string
	Response string
}

// PairAnswers pairs every human turn with the closest interviewer question
// before it. An answer given again after a revision pairs with the same question.
func PairAnswers(history []Message) []QAPair {
	var pairs []QAPair
	lastQuestion := ""
	for _, m := range history {
		switch {
		case m.IsQuestion():
			lastQuestion = m.Content
		case m.Role == RoleHuman:
			pairs = append(pairs, QAPair{Question: lastQuestion, Response: m.Content})
		}
	}
	return pairs
}
