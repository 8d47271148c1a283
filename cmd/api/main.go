package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/handlers"
	"alfredoptarigan/ai-interviewer/internal/repositories"
	"alfredoptarigan/ai-interviewer/internal/services"
)

func main() {
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	sessionRepo := repositories.NewSessionRepository(db)
	log.Println("✅ Repositories initialized successfully")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	providers, err := services.NewProviders(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize providers: %v", err)
	}
	defer providers.Close()
	log.Println("✅ Model and vector store providers initialized")

	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	retry := services.RetryPolicyFrom(cfg)
	indexer := services.NewContextIndexer(providers.Models, providers.Store, cfg.Interview.ChunkSize, cfg.Interview.ChunkOverlap, retry)
	retriever := services.NewRetriever(providers.Models, providers.Models, providers.Store, retry)
	engine := services.NewConversationEngine(providers.Models, retriever, cfg.Interview.RetrievalK)
	interviews := services.NewInterviewService(sessionRepo, indexer, engine, services.InterviewOptions{
		MaxQuestions: cfg.Interview.MaxQuestions,
		MinSkills:    cfg.Interview.MinSkills,
		MaxSkills:    cfg.Interview.MaxSkills,
	})
	log.Println("✅ Interview service initialized")

	worker := services.NewWorker(
		sessionRepo,
		interviews,
		cfg.Worker.Concurrency,
		cfg.Worker.SubmitRecoveryAfter,
		cfg.Worker.PollInterval,
	)
	worker.Start(ctx)

	app := handlers.NewApp(
		handlers.AppConfig{
			Name:         "AI Interviewer API",
			// raised to fit recorded answers when speech routes are mounted
			BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
			WriteTimeout: 2 * cfg.LLM.Timeout,
			RequestLog:   true,
		},
		handlers.NewSessionHandler(interviews),
		handlers.NewSpeechHandler(providers.Transcriber, providers.Synthesizer, interviews),
		handlers.NewUploadHandler(storageService, services.NewDocumentParser()),
	)
	log.Println("✅ Handlers initialized")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
		worker.Stop()
		stop()
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
