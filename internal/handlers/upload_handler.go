package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

// UploadHandler turns an uploaded job description document into text the
// client passes back as job_description when starting a session.
type UploadHandler struct {
	storageService services.StorageService
	parser         services.DocumentParser
}

func NewUploadHandler(storageService services.StorageService, parser services.DocumentParser) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		parser:         parser,
	}
}

func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field 'file' is required")
	}

	stored, err := h.storageService.SaveUpload(file, "jd")
	if err != nil {
		return err
	}
	defer func() {
		if err := h.storageService.Remove(stored.Filename); err != nil {
			log.Printf("⚠️  %v", err)
		}
	}()

	content, err := h.parser.ExtractText(stored.Path, stored.Ext)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		Filename:       stored.Filename,
		OriginalName:   stored.OriginalName,
		PageCount:      content.PageCount,
		JobDescription: content.Text,
	})
}
