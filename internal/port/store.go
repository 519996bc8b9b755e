package port

import (
	"context"

	"docingest/internal/mapper"
)

// MetaStore is the relational-store side of DualStorePersister (C7),
// backed in production by Postgres.
type MetaStore interface {
	InsertBatch(ctx context.Context, rows []mapper.MetaRow) error
	DeleteByIDs(ctx context.Context, elementIDs []string) error
}

// ContentStore is the document-store side of DualStorePersister (C7),
// backed in production by MongoDB.
type ContentStore interface {
	InsertBatch(ctx context.Context, rows []mapper.ContentRow) error
}
