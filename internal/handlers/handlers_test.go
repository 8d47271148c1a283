package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type interviewServiceMock struct {
	StartFunc        func(ctx context.Context, setup models.StartSessionRequest) (*models.Session, error)
	NextQuestionFunc func(ctx context.Context, id string) (*models.Message, error)
	NextOrSubmitFunc func(ctx context.Context, id string) (*services.NextTurn, error)
	PostAnswerFunc   func(ctx context.Context, id, answer string) (string, error)
	ReviseAnswerFunc func(ctx context.Context, id string) (string, error)
	SubmitFunc       func(ctx context.Context, id string) (*models.Assessment, error)
	GetStatusFunc    func(ctx context.Context, id string) (*models.Session, error)
	DeleteFunc       func(ctx context.Context, id string) error
	ListFunc         func(ctx context.Context, status models.SessionStatus, limit int) ([]models.SessionSummary, error)
}

func (m *interviewServiceMock) Start(ctx context.Context, setup models.StartSessionRequest) (*models.Session, error) {
	return m.StartFunc(ctx, setup)
}

func (m *interviewServiceMock) NextQuestion(ctx context.Context, id string) (*models.Message, error) {
	return m.NextQuestionFunc(ctx, id)
}

func (m *interviewServiceMock) NextOrSubmit(ctx context.Context, id string) (*services.NextTurn, error) {
	return m.NextOrSubmitFunc(ctx, id)
}

func (m *interviewServiceMock) PostAnswer(ctx context.Context, id, answer string) (string, error) {
	return m.PostAnswerFunc(ctx, id, answer)
}

func (m *interviewServiceMock) ReviseAnswer(ctx context.Context, id string) (string, error) {
	return m.ReviseAnswerFunc(ctx, id)
}

func (m *interviewServiceMock) Submit(ctx context.Context, id string) (*models.Assessment, error) {
	return m.SubmitFunc(ctx, id)
}

func (m *interviewServiceMock) GetStatus(ctx context.Context, id string) (*models.Session, error) {
	return m.GetStatusFunc(ctx, id)
}

func (m *interviewServiceMock) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func (m *interviewServiceMock) List(ctx context.Context, status models.SessionStatus, limit int) ([]models.SessionSummary, error) {
	return m.ListFunc(ctx, status, limit)
}

func (m *interviewServiceMock) RecoverSubmission(ctx context.Context, id string) error {
	return nil
}

type transcriberMock struct {
	TranscribeFunc func(ctx context.Context, audio []byte, mimeType string) (string, error)
}

func (m *transcriberMock) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return m.TranscribeFunc(ctx, audio, mimeType)
}

func newTestApp(svc services.InterviewService, transcriber services.Transcriber) *httptestApp {
	app := NewApp(
		AppConfig{Name: "test", BodyLimit: 4 << 20},
		NewSessionHandler(svc),
		NewSpeechHandler(transcriber, nil, svc),
		NewUploadHandler(services.NewStorageService("", 0), services.NewDocumentParser()),
	)
	return &httptestApp{do: func(req *http.Request) (*http.Response, error) { return app.Test(req, -1) }}
}

type httptestApp struct {
	do func(req *http.Request) (*http.Response, error)
}

func (a *httptestApp) request(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return a.send(t, req)
}

func (a *httptestApp) send(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := a.do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func activeSession(questions, maxQuestions int) *models.Session {
	s := &models.Session{ID: "s1", Status: models.StatusActive, CurrentStep: models.StepQuestioning, MaxQuestions: maxQuestions}
	for i := 0; i < questions; i++ {
		s.ChatHistory = append(s.ChatHistory, models.NewAIQuestion("q"), models.NewHumanAnswer("a"))
	}
	return s
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &services.ValidationError{Field: "skills", Message: "empty"}, http.StatusBadRequest},
		{"not found", services.ErrSessionNotFound, http.StatusNotFound},
		{"wrapped not found", errors.Join(errors.New("ctx"), services.ErrSessionNotFound), http.StatusNotFound},
		{"invalid state", &services.InvalidStateError{Op: "answer", Reason: "completed"}, http.StatusConflict},
		{"version conflict", services.ErrConcurrentUpdate, http.StatusConflict},
		{"empty context", services.ErrEmptyContext, http.StatusUnprocessableEntity},
		{"upstream", &services.UpstreamError{Op: "generate", Err: errors.New("503")}, http.StatusBadGateway},
		{"upstream timeout", &services.UpstreamError{Op: "generate", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestHandleStart(t *testing.T) {
	var got models.StartSessionRequest
	svc := &interviewServiceMock{StartFunc: func(ctx context.Context, setup models.StartSessionRequest) (*models.Session, error) {
		got = setup
		s := activeSession(0, 7)
		s.ChatHistory = []models.Message{models.NewAIQuestion("Welcome to Acme!")}
		return s, nil
	}}
	app := newTestApp(svc, nil)

	status, body := app.request(t, http.MethodPost, "/api/v1/sessions", map[string]any{
		"company_name":   "Acme",
		"job_role":       "SRE",
		"interview_type": "HR",
		"input_type":     "skills-based",
		"skills":         []string{"Go"},
	})

	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "s1", body["session_id"])
	assert.Equal(t, "Welcome to Acme!", body["message"].(map[string]any)["content"])
	assert.Equal(t, []string{"Go"}, got.Skills)
}

func TestHandleStart_ValidationError(t *testing.T) {
	svc := &interviewServiceMock{StartFunc: func(ctx context.Context, setup models.StartSessionRequest) (*models.Session, error) {
		return nil, &services.ValidationError{Field: "domain", Message: "is required for domain-specific interviews"}
	}}
	app := newTestApp(svc, nil)

	status, body := app.request(t, http.MethodPost, "/api/v1/sessions", map[string]any{"company_name": "Acme"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "domain")
	assert.Equal(t, float64(http.StatusBadRequest), body["code"])
}

func TestHandleNext(t *testing.T) {
	t.Run("below cap asks next question", func(t *testing.T) {
		svc := &interviewServiceMock{NextOrSubmitFunc: func(ctx context.Context, id string) (*services.NextTurn, error) {
			m := models.NewAIQuestion("What about SQL?")
			return &services.NextTurn{Question: &m, QuestionNumber: 3, MaxQuestions: 7}, nil
		}}
		status, body := newTestApp(svc, nil).request(t, http.MethodPost, "/api/v1/sessions/s1/next", nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, false, body["completed"])
		assert.Equal(t, float64(3), body["question_number"])
		assert.Equal(t, "What about SQL?", body["message"].(map[string]any)["content"])
		assert.Nil(t, body["assessment"])
	})

	t.Run("cap reached returns assessment", func(t *testing.T) {
		svc := &interviewServiceMock{NextOrSubmitFunc: func(ctx context.Context, id string) (*services.NextTurn, error) {
			return &services.NextTurn{Assessment: services.FallbackAssessment(), QuestionNumber: 3, MaxQuestions: 3}, nil
		}}
		status, body := newTestApp(svc, nil).request(t, http.MethodPost, "/api/v1/sessions/s1/next", nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["completed"])
		assert.NotNil(t, body["assessment"])
		assert.Nil(t, body["message"])
	})

	t.Run("unknown session", func(t *testing.T) {
		svc := &interviewServiceMock{NextOrSubmitFunc: func(ctx context.Context, id string) (*services.NextTurn, error) {
			return nil, services.ErrSessionNotFound
		}}
		status, _ := newTestApp(svc, nil).request(t, http.MethodPost, "/api/v1/sessions/zzz/next", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("completed session conflicts", func(t *testing.T) {
		svc := &interviewServiceMock{NextOrSubmitFunc: func(ctx context.Context, id string) (*services.NextTurn, error) {
			return nil, &services.InvalidStateError{Op: "next question", Status: models.StatusCompleted, Reason: "the session is completed"}
		}}
		status, _ := newTestApp(svc, nil).request(t, http.MethodPost, "/api/v1/sessions/s1/next", nil)
		assert.Equal(t, http.StatusConflict, status)
	})
}

func TestHandleAnswerReviseSubmit(t *testing.T) {
	svc := &interviewServiceMock{
		PostAnswerFunc: func(ctx context.Context, id, answer string) (string, error) {
			if id != "s1" {
				return "", services.ErrSessionNotFound
			}
			return "Feedback on: " + answer, nil
		},
		ReviseAnswerFunc: func(ctx context.Context, id string) (string, error) {
			return "", &services.InvalidStateError{Op: "revise", Reason: "nothing to revise"}
		},
		SubmitFunc: func(ctx context.Context, id string) (*models.Assessment, error) {
			return nil, &services.UpstreamError{Op: "assessment generation", Err: context.DeadlineExceeded}
		},
	}
	app := newTestApp(svc, nil)

	status, body := app.request(t, http.MethodPost, "/api/v1/sessions/s1/answer", map[string]string{"answer": "I used Go"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Feedback on: I used Go", body["feedback"])
	assert.Equal(t, "feedback", body["current_step"])

	status, _ = app.request(t, http.MethodPost, "/api/v1/sessions/s1/revise", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = app.request(t, http.MethodPost, "/api/v1/sessions/s1/submit", nil)
	assert.Equal(t, http.StatusGatewayTimeout, status)
}

func TestHandleList(t *testing.T) {
	var gotStatus models.SessionStatus
	var gotLimit int
	svc := &interviewServiceMock{ListFunc: func(ctx context.Context, status models.SessionStatus, limit int) ([]models.SessionSummary, error) {
		gotStatus, gotLimit = status, limit
		return []models.SessionSummary{{SessionID: "s1"}}, nil
	}}
	app := newTestApp(svc, nil)

	status, body := app.request(t, http.MethodGet, "/api/v1/sessions?status=completed&limit=5", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["sessions"], 1)
	assert.Equal(t, models.StatusCompleted, gotStatus)
	assert.Equal(t, 5, gotLimit)

	status, _ = app.request(t, http.MethodGet, "/api/v1/sessions?status=paused", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleAnswerAudio(t *testing.T) {
	var gotMime string
	transcriber := &transcriberMock{TranscribeFunc: func(ctx context.Context, audio []byte, mimeType string) (string, error) {
		gotMime = mimeType
		return "I migrated billing to Kubernetes", nil
	}}
	svc := &interviewServiceMock{PostAnswerFunc: func(ctx context.Context, id, answer string) (string, error) {
		return "Nice: " + answer, nil
	}}
	app := newTestApp(svc, transcriber)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="audio"; filename="answer.webm"`}
	header["Content-Type"] = []string{"audio/webm;codecs=opus"}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-audio"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/s1/answer/audio", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	status, out := app.send(t, req)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "I migrated billing to Kubernetes", out["transcript"])
	assert.Equal(t, "Nice: I migrated billing to Kubernetes", out["feedback"])
	assert.Equal(t, "audio/webm", gotMime)
}

func audioRequest(t *testing.T, path string, size int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", "answer.webm")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0x1a}, size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestTranscribe_AudioLimitIndependentOfUploadLimit(t *testing.T) {
	var gotBytes int
	transcriber := &transcriberMock{TranscribeFunc: func(ctx context.Context, audio []byte, mimeType string) (string, error) {
		gotBytes = len(audio)
		return "a long answer", nil
	}}
	// the app is built with a 4MB body limit
	app := newTestApp(&interviewServiceMock{}, transcriber)

	status, out := app.send(t, audioRequest(t, "/api/v1/speech/transcribe", 6<<20))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a long answer", out["transcript"])
	assert.Equal(t, 6<<20, gotBytes)

	status, out = app.send(t, audioRequest(t, "/api/v1/speech/transcribe", maxAudioBytes+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.Equal(t, "audio file too large", out["error"])
}

func TestSpeechNotConfigured(t *testing.T) {
	app := newTestApp(&interviewServiceMock{}, nil)

	status, _ := app.request(t, http.MethodPost, "/api/v1/speech/synthesize", map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestUploadJobDescription(t *testing.T) {
	dir := t.TempDir()
	app := NewApp(
		AppConfig{Name: "test", BodyLimit: 4 << 20},
		NewSessionHandler(&interviewServiceMock{}),
		nil,
		NewUploadHandler(services.NewStorageService(dir, 1<<20), services.NewDocumentParser()),
	)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "jd.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Platform Engineer\n\n  Run Kubernetes clusters at scale.  "))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/job-descriptions", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out models.UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Platform Engineer\nRun Kubernetes clusters at scale.", out.JobDescription)
	assert.True(t, strings.HasPrefix(out.Filename, "jd_"))
}

func TestHealth(t *testing.T) {
	status, body := newTestApp(&interviewServiceMock{}, nil).request(t, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}
