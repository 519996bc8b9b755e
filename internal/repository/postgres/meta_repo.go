package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"docingest/internal/mapper"
	"docingest/internal/port"
)

type metaStore struct {
	db *sqlx.DB
}

// NewMetaStore creates a new PostgreSQL-backed port.MetaStore (C11).
func NewMetaStore(db *sqlx.DB) port.MetaStore {
	return &metaStore{db: db}
}

func (r *metaStore) InsertBatch(ctx context.Context, rows []mapper.MetaRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("metaStore.InsertBatch: begin: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO element_meta_info (
		element_id, page_index, element_type, bbox, text_level,
		image_file_name, image_file_suffix, image_file_type,
		kb_id, kb_name, parent_kb_id, parent_kb_name, knowledge_type, role,
		creator, updater, create_time, update_time, status, deleted
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8,
		$9, $10, $11, $12, $13, $14,
		$15, $16, $17, $18, $19, $20
	)`

	for _, row := range rows {
		var bbox interface{}
		if row.BBox != nil {
			bbox = []float64{row.BBox[0], row.BBox[1], row.BBox[2], row.BBox[3]}
		}
		_, err := tx.ExecContext(ctx, query,
			row.ElementID, row.PageIndex, row.ElementType, bbox, row.TextLevel,
			row.ImageFileName, row.ImageFileSuffix, row.ImageFileType,
			row.KnowledgeRef.KBID, row.KnowledgeRef.KBName, row.KnowledgeRef.ParentKBID,
			row.KnowledgeRef.ParentKBName, row.KnowledgeRef.KnowledgeType, row.KnowledgeRef.Role,
			row.Audit.Creator, row.Audit.Updater, row.Audit.CreateTime, row.Audit.UpdateTime,
			row.Audit.Status, row.Audit.Deleted)
		if err != nil {
			return fmt.Errorf("metaStore.InsertBatch: insert %s: %w", row.ElementID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("metaStore.InsertBatch: commit: %w", err)
	}
	return nil
}

func (r *metaStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In("DELETE FROM element_meta_info WHERE element_id IN (?)", ids)
	if err != nil {
		return fmt.Errorf("metaStore.DeleteByIDs: build query: %w", err)
	}
	query = r.db.Rebind(query)

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("metaStore.DeleteByIDs: %w", err)
	}
	return nil
}
