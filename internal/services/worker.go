package services

import (
	"context"
	"log"
	"sync"
	"time"

	"alfredoptarigan/ai-interviewer/internal/repositories"
)

// Worker finishes sessions that were left in submitting, either because the
// assessment call failed or because the process stopped mid-submit.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(sessionID string)
}

type worker struct {
	sessionRepo  repositories.SessionRepository
	interviews   InterviewService
	jobQueue     chan string
	concurrency  int
	staleAfter   time.Duration
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewWorker(
	sessionRepo repositories.SessionRepository,
	interviews InterviewService,
	concurrency int,
	staleAfter time.Duration,
	pollInterval time.Duration,
) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &worker{
		sessionRepo:  sessionRepo,
		interviews:   interviews,
		jobQueue:     make(chan string, 100),
		concurrency:  concurrency,
		staleAfter:   staleAfter,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		inFlight:     make(map[string]bool),
	}
}

func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting submit recovery worker with %d goroutines\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollStaleSubmissions(ctx)

	log.Println("✅ Worker started successfully")
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Worker stopped")
	})
}

// EnqueueJob schedules a session for recovery. Ids already queued or running
// are ignored, and a full queue drops the id until the next poll.
func (w *worker) EnqueueJob(sessionID string) {
	w.mu.Lock()
	if w.inFlight[sessionID] {
		w.mu.Unlock()
		return
	}
	w.inFlight[sessionID] = true
	w.mu.Unlock()

	select {
	case w.jobQueue <- sessionID:
		log.Printf("📥 Session %s enqueued for submit recovery\n", sessionID)
	case <-w.stopChan:
		w.release(sessionID)
		log.Printf("⚠️  Worker stopped, cannot enqueue session %s\n", sessionID)
	default:
		w.release(sessionID)
		log.Printf("⚠️  Recovery queue full, session %s deferred to next poll\n", sessionID)
	}
}

func (w *worker) release(sessionID string) {
	w.mu.Lock()
	delete(w.inFlight, sessionID)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			return
		case sessionID := <-w.jobQueue:
			log.Printf("👷 Worker #%d recovering session %s\n", workerID, sessionID)
			if err := w.interviews.RecoverSubmission(ctx, sessionID); err != nil {
				log.Printf("❌ Worker #%d failed to recover session %s: %v\n", workerID, sessionID, err)
			} else {
				log.Printf("✅ Worker #%d finished session %s\n", workerID, sessionID)
			}
			w.release(sessionID)
		}
	}
}

func (w *worker) pollStaleSubmissions(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Submit recovery poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce(ctx)
		}
	}
}

func (w *worker) pollOnce(ctx context.Context) {
	stale, err := w.sessionRepo.FindStaleSubmitting(ctx, time.Now().Add(-w.staleAfter), 10)
	if err != nil {
		log.Printf("⚠️  Failed to fetch stale submissions: %v\n", err)
		return
	}
	if len(stale) > 0 {
		log.Printf("📋 Found %d sessions stuck in submitting\n", len(stale))
	}
	for _, session := range stale {
		w.EnqueueJob(session.ID)
	}
}
