package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type SessionHandler struct {
	interviews services.InterviewService
}

func NewSessionHandler(interviews services.InterviewService) *SessionHandler {
	return &SessionHandler{interviews: interviews}
}

func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("/", h.HandleStart)
	router.Get("/", h.HandleList)
	router.Get("/:id", h.HandleStatus)
	router.Delete("/:id", h.HandleDelete)
	router.Post("/:id/next", h.HandleNext)
	router.Post("/:id/answer", h.HandleAnswer)
	router.Post("/:id/revise", h.HandleRevise)
	router.Post("/:id/submit", h.HandleSubmit)
}

func (h *SessionHandler) HandleStart(c *fiber.Ctx) error {
	var req models.StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.interviews.Start(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.StartSessionResponse{
		SessionID:    session.ID,
		Status:       string(session.Status),
		CurrentStep:  string(session.CurrentStep),
		Message:      session.ChatHistory[0],
		MaxQuestions: session.MaxQuestions,
	})
}

func (h *SessionHandler) HandleList(c *fiber.Ctx) error {
	status := models.SessionStatus(strings.ToLower(c.Query("status")))
	switch status {
	case "", models.StatusActive, models.StatusSubmitting, models.StatusCompleted:
	default:
		return fiber.NewError(fiber.StatusBadRequest, "unknown status filter")
	}

	summaries, err := h.interviews.List(c.UserContext(), status, c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"sessions": summaries})
}

func (h *SessionHandler) HandleStatus(c *fiber.Ctx) error {
	session, err := h.interviews.GetStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(session)
}

func (h *SessionHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.interviews.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleNext delivers the next question, or finalizes the interview once the
// session's question cap has been reached.
func (h *SessionHandler) HandleNext(c *fiber.Ctx) error {
	id := c.Params("id")
	turn, err := h.interviews.NextOrSubmit(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(models.QuestionResponse{
		SessionID:      id,
		Message:        turn.Question,
		QuestionNumber: turn.QuestionNumber,
		MaxQuestions:   turn.MaxQuestions,
		Completed:      turn.Completed(),
		Assessment:     turn.Assessment,
	})
}

func (h *SessionHandler) HandleAnswer(c *fiber.Ctx) error {
	var req models.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	id := c.Params("id")
	feedback, err := h.interviews.PostAnswer(c.UserContext(), id, req.Answer)
	if err != nil {
		return err
	}

	return c.JSON(models.AnswerResponse{
		SessionID:   id,
		Feedback:    feedback,
		CurrentStep: string(models.StepFeedback),
	})
}

func (h *SessionHandler) HandleRevise(c *fiber.Ctx) error {
	id := c.Params("id")
	question, err := h.interviews.ReviseAnswer(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(models.ReviseResponse{
		SessionID:   id,
		Question:    question,
		CurrentStep: string(models.StepQuestioning),
	})
}

func (h *SessionHandler) HandleSubmit(c *fiber.Ctx) error {
	id := c.Params("id")
	assessment, err := h.interviews.Submit(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(models.SubmitResponse{
		SessionID:  id,
		Status:     string(models.StatusCompleted),
		Assessment: assessment,
	})
}
