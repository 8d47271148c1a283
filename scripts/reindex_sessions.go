package main

import (
	"context"
	"flag"
	"log"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
	"alfredoptarigan/ai-interviewer/internal/services"
)

// Rebuilds the context index of every active session from its stored
// context text. Run after the vector collection was wiped or migrated.
func main() {
	limit := flag.Int("limit", 1000, "maximum number of sessions to reindex")
	dryRun := flag.Bool("dry-run", false, "list sessions without touching the index")
	flag.Parse()

	log.Println("🚀 Starting session reindex...")

	cfg := config.Load()
	if cfg.Database.Driver == "memory" {
		log.Fatalf("❌ Nothing to reindex with DB_DRIVER=memory")
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	sessionRepo := repositories.NewSessionRepository(db)

	ctx := context.Background()
	providers, err := services.NewProviders(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize providers: %v", err)
	}
	defer providers.Close()

	indexer := services.NewContextIndexer(providers.Models, providers.Store, cfg.Interview.ChunkSize, cfg.Interview.ChunkOverlap, services.RetryPolicyFrom(cfg))
	prompts := services.NewPromptBuilder()

	sessions, err := sessionRepo.List(ctx, repositories.SessionFilter{Status: models.StatusActive, Limit: *limit})
	if err != nil {
		log.Fatalf("❌ Failed to list sessions: %v", err)
	}
	log.Printf("📋 Found %d active sessions", len(sessions))

	successCount := 0
	failCount := 0

	for i := range sessions {
		session := &sessions[i]
		text := session.ContextText
		if text == "" {
			if session.InputType == models.InputSkillsBased {
				text = prompts.SynthesizeSkillsContext(session.JobRole, session.CompanyName, session.InterviewType, session.Domain, session.Skills)
			} else {
				text = session.JobDescription
			}
		}

		if *dryRun {
			log.Printf("   %s (%s at %s): %d chars", session.ID, session.JobRole, session.CompanyName, len(text))
			continue
		}

		if err := indexer.Discard(ctx, session.ID); err != nil {
			log.Printf("⚠️  %s: %v", session.ID, err)
		}

		index, err := indexer.Build(ctx, session.ID, text)
		if err != nil {
			log.Printf("❌ %s: %v", session.ID, err)
			failCount++
			continue
		}

		session.ContextText = text
		session.ContextChunks = index.ChunkCount
		if err := sessionRepo.Update(ctx, session); err != nil {
			log.Printf("❌ %s: failed to store chunk count: %v", session.ID, err)
			failCount++
			continue
		}

		log.Printf("✅ %s: %d chunks", session.ID, index.ChunkCount)
		successCount++
	}

	log.Printf("\n📊 Reindex complete: %d succeeded, %d failed", successCount, failCount)
}
