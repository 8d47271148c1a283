package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// multipartOverhead leaves room for boundaries and part headers around an
// uploaded file.
const multipartOverhead = 1 << 20

type AppConfig struct {
	Name         string
	BodyLimit    int
	WriteTimeout time.Duration
	RequestLog   bool
}

// NewApp builds the fiber app with middleware and every route mounted.
// Upload and speech handlers are optional.
func NewApp(cfg AppConfig, sessions *SessionHandler, speech *SpeechHandler, upload *UploadHandler) *fiber.App {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 2 * time.Minute
	}
	// the audio size check in the speech handler must be reachable
	if speech != nil && cfg.BodyLimit < maxAudioBytes+multipartOverhead {
		cfg.BodyLimit = maxAudioBytes + multipartOverhead
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	if cfg.RequestLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	sessions.Register(api.Group("/sessions"))

	if speech != nil {
		api.Post("/sessions/:id/answer/audio", speech.HandleAnswerAudio)
		api.Post("/speech/transcribe", speech.HandleTranscribe)
		api.Post("/speech/synthesize", speech.HandleSynthesize)
	}
	if upload != nil {
		api.Post("/job-descriptions", upload.HandleUpload)
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": cfg.Name,
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/sessions",
				"GET /api/v1/sessions",
				"GET /api/v1/sessions/:id",
				"POST /api/v1/sessions/:id/next",
				"POST /api/v1/sessions/:id/answer",
				"POST /api/v1/sessions/:id/answer/audio",
				"POST /api/v1/sessions/:id/revise",
				"POST /api/v1/sessions/:id/submit",
				"DELETE /api/v1/sessions/:id",
				"POST /api/v1/job-descriptions",
				"POST /api/v1/speech/transcribe",
				"POST /api/v1/speech/synthesize",
			},
		})
	})

	return app
}
