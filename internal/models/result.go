package models

import "time"

type UploadResponse struct {
	Filename       string `json:"filename"`
	OriginalName   string `json:"original_name"`
	PageCount      int    `json:"page_count"`
	JobDescription string `json:"job_description"`
}

type StartSessionRequest struct {
	CompanyName    string   `json:"company_name"`
	JobRole        string   `json:"job_role"`
	InterviewType  string   `json:"interview_type"`
	Domain         string   `json:"domain"`
	InputType      string   `json:"input_type"`
	Skills         []string `json:"skills"`
	JobDescription string   `json:"job_description"`
	MaxQuestions   int      `json:"max_questions"`
}

type StartSessionResponse struct {
	SessionID    string  `json:"session_id"`
	Status       string  `json:"status"`
	CurrentStep  string  `json:"current_step"`
	Message      Message `json:"message"`
	MaxQuestions int     `json:"max_questions"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type AnswerResponse struct {
	SessionID   string `json:"session_id"`
	Feedback    string `json:"feedback"`
	Transcript  string `json:"transcript,omitempty"`
	CurrentStep string `json:"current_step"`
}

type QuestionResponse struct {
	SessionID      string      `json:"session_id"`
	Message        *Message    `json:"message,omitempty"`
	QuestionNumber int         `json:"question_number"`
	MaxQuestions   int         `json:"max_questions"`
	Completed      bool        `json:"completed"`
	Assessment     *Assessment `json:"assessment,omitempty"`
}

type ReviseResponse struct {
	SessionID   string `json:"session_id"`
	Question    string `json:"question"`
	CurrentStep string `json:"current_step"`
}

type SubmitResponse struct {
	SessionID  string      `json:"session_id"`
	Status     string      `json:"status"`
	Assessment *Assessment `json:"assessment"`
}

type SessionSummary struct {
	SessionID      string        `json:"session_id"`
	CompanyName    string        `json:"company_name"`
	JobRole        string        `json:"job_role"`
	InterviewType  InterviewType `json:"interview_type"`
	Status         SessionStatus `json:"status"`
	QuestionsAsked int           `json:"questions_asked"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type SynthesizeRequest struct {
	Text string `json:"text"`
}

type TranscribeResponse struct {
	Transcript string `json:"transcript"`
}
