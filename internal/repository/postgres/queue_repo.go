package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"docingest/internal/domain"
	"docingest/internal/port"
)

type queueSource struct {
	db *sqlx.DB
}

// NewQueueSource creates a new PostgreSQL-backed port.QueueSource, reading
// documents left queued by a prior crash or backpressure event from the
// ingestion_queue table.
func NewQueueSource(db *sqlx.DB) port.QueueSource {
	return &queueSource{db: db}
}

type queuedRow struct {
	ID            string `db:"id"`
	FileName      string `db:"file_name"`
	FileBytes     []byte `db:"file_bytes"`
	KBID          string `db:"kb_id"`
	KBName        string `db:"kb_name"`
	ParentKBID    string `db:"parent_kb_id"`
	ParentKBName  string `db:"parent_kb_name"`
	KnowledgeType string `db:"knowledge_type"`
	Role          string `db:"role"`
	Creator       string `db:"creator"`
}

func (r *queueSource) ClaimQueued(ctx context.Context, available int) ([]port.QueuedDocument, error) {
	if available <= 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("queueSource.ClaimQueued: begin: %w", err)
	}
	defer tx.Rollback()

	var rows []queuedRow
	err = tx.SelectContext(ctx, &rows,
		`SELECT id, file_name, file_bytes, kb_id, kb_name, parent_kb_id,
			parent_kb_name, knowledge_type, role, creator
		 FROM ingestion_queue
		 WHERE claimed_at IS NULL
		 ORDER BY created_at
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED`, available)
	if err != nil {
		return nil, fmt.Errorf("queueSource.ClaimQueued: select: %w", err)
	}
	if len(rows) == 0 {
		return nil, tx.Commit()
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	query, args, err := sqlx.In("UPDATE ingestion_queue SET claimed_at = now() WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("queueSource.ClaimQueued: build claim query: %w", err)
	}
	query = tx.Rebind(query)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("queueSource.ClaimQueued: claim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("queueSource.ClaimQueued: commit: %w", err)
	}

	docs := make([]port.QueuedDocument, len(rows))
	for i, row := range rows {
		docs[i] = port.QueuedDocument{
			ID:        row.ID,
			FileName:  row.FileName,
			FileBytes: row.FileBytes,
			Knowledge: domain.KnowledgeRef{
				KBID:          row.KBID,
				KBName:        row.KBName,
				ParentKBID:    row.ParentKBID,
				ParentKBName:  row.ParentKBName,
				KnowledgeType: row.KnowledgeType,
				Role:          row.Role,
			},
			Creator: row.Creator,
		}
	}
	return docs, nil
}
