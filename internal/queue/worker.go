// Package queue implements IngestionQueueWorker (C9): the optional,
// orthogonal outer pool that re-dispatches documents left queued by a prior
// crash or backpressure event. Nothing in the core ingestion pipeline
// requires it — a single synchronous Ingest call works without it.
package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"docingest/internal/domain"
	"docingest/internal/port"
)

// Config controls the poll loop.
type Config struct {
	PollInterval time.Duration
	Concurrency  int
}

// Ingester is the subset of IngestionFacade the worker depends on.
type Ingester interface {
	Ingest(ctx context.Context, fileBytes []byte, fileName string, ref domain.KnowledgeRef, creator string) (*domain.IngestionReport, error)
}

// Worker polls a QueueSource and dispatches claimed documents through an
// Ingester, bounded by a buffered-channel semaphore.
type Worker struct {
	source   port.QueueSource
	ingester Ingester
	cfg      Config
	wg       sync.WaitGroup
}

// New builds a Worker.
func New(source port.QueueSource, ingester Ingester, cfg Config) *Worker {
	return &Worker{source: source, ingester: ingester, cfg: cfg}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight ingestions have finished; in-flight work runs under a detached
// context so shutdown never aborts it mid-ingestion.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("queue.Worker: started (poll=%s, concurrency=%d)", w.cfg.PollInterval, w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("queue.Worker: shutting down, waiting for in-flight ingestions...")
			w.wg.Wait()
			log.Printf("queue.Worker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			docs, err := w.source.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("queue.Worker: ClaimQueued error: %v", err)
				continue
			}

			for i := range docs {
				doc := docs[i]

				sem <- struct{}{}
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }()

					ingestCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
					defer cancel()

					log.Printf("queue.Worker: dispatching document %s", doc.ID)
					if _, err := w.ingester.Ingest(ingestCtx, doc.FileBytes, doc.FileName, doc.Knowledge, doc.Creator); err != nil {
						log.Printf("queue.Worker: document %s failed: %v", doc.ID, err)
					}
				}()
			}
		}
	}
}
