package port

import (
	"context"

	"docingest/internal/domain"
)

// QueuedDocument is a document left queued by a prior crash or backpressure
// event, ready for re-dispatch by IngestionQueueWorker.
type QueuedDocument struct {
	ID        string
	FileName  string
	FileBytes []byte
	Knowledge domain.KnowledgeRef
	Creator   string
}

// QueueSource is the relational-store side IngestionQueueWorker polls.
type QueueSource interface {
	ClaimQueued(ctx context.Context, available int) ([]QueuedDocument, error)
}
