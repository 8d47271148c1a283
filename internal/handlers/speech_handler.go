package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

const maxAudioBytes = 25 << 20

// SpeechHandler exposes transcription and synthesis. Either service may be
// nil, in which case its routes answer 503.
type SpeechHandler struct {
	transcriber services.Transcriber
	synthesizer services.Synthesizer
	interviews  services.InterviewService
}

func NewSpeechHandler(transcriber services.Transcriber, synthesizer services.Synthesizer, interviews services.InterviewService) *SpeechHandler {
	return &SpeechHandler{
		transcriber: transcriber,
		synthesizer: synthesizer,
		interviews:  interviews,
	}
}

func (h *SpeechHandler) HandleTranscribe(c *fiber.Ctx) error {
	transcript, err := h.transcribeUpload(c)
	if err != nil {
		return err
	}
	return c.JSON(models.TranscribeResponse{Transcript: transcript})
}

// HandleAnswerAudio transcribes a recorded answer and posts it as the
// candidate's turn.
func (h *SpeechHandler) HandleAnswerAudio(c *fiber.Ctx) error {
	transcript, err := h.transcribeUpload(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	feedback, err := h.interviews.PostAnswer(c.UserContext(), id, transcript)
	if err != nil {
		return err
	}

	return c.JSON(models.AnswerResponse{
		SessionID:   id,
		Feedback:    feedback,
		Transcript:  transcript,
		CurrentStep: string(models.StepFeedback),
	})
}

func (h *SpeechHandler) HandleSynthesize(c *fiber.Ctx) error {
	if h.synthesizer == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "speech synthesis is not configured")
	}

	var req models.SynthesizeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	audio, err := h.synthesizer.Synthesize(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	defer audio.Close()

	data, err := io.ReadAll(audio)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(data)
}

func (h *SpeechHandler) transcribeUpload(c *fiber.Ctx) (string, error) {
	if h.transcriber == nil {
		return "", fiber.NewError(fiber.StatusServiceUnavailable, "speech transcription is not configured")
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "multipart field 'audio' is required")
	}
	if file.Size > maxAudioBytes {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, "audio file too large")
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	audio, err := io.ReadAll(io.LimitReader(src, maxAudioBytes))
	if err != nil {
		return "", err
	}

	mimeType := file.Header.Get(fiber.HeaderContentType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "audio/webm"
	}
	// browsers append codec parameters that the model rejects
	mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])

	transcript, err := h.transcriber.Transcribe(c.UserContext(), audio, mimeType)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(transcript) == "" {
		return "", fiber.NewError(fiber.StatusUnprocessableEntity, "no speech detected")
	}
	return transcript, nil
}
