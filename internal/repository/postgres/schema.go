package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var requiredTables = []string{"element_meta_info", "ingestion_queue"}

const createElementMetaInfo = `CREATE TABLE IF NOT EXISTS element_meta_info (
	element_id        TEXT PRIMARY KEY,
	page_index         INTEGER NOT NULL,
	element_type       TEXT NOT NULL,
	bbox               DOUBLE PRECISION[],
	text_level         INTEGER,
	image_file_name    TEXT NOT NULL DEFAULT '',
	image_file_suffix  TEXT NOT NULL DEFAULT '',
	image_file_type    TEXT NOT NULL DEFAULT '',
	kb_id              TEXT NOT NULL DEFAULT '',
	kb_name            TEXT NOT NULL DEFAULT '',
	parent_kb_id       TEXT NOT NULL DEFAULT '',
	parent_kb_name     TEXT NOT NULL DEFAULT '',
	knowledge_type     TEXT NOT NULL DEFAULT '',
	role               TEXT NOT NULL DEFAULT '',
	creator            TEXT NOT NULL DEFAULT '',
	updater            TEXT NOT NULL DEFAULT '',
	create_time        TIMESTAMPTZ NOT NULL DEFAULT now(),
	update_time        TIMESTAMPTZ NOT NULL DEFAULT now(),
	status             INTEGER NOT NULL DEFAULT 0,
	deleted            INTEGER NOT NULL DEFAULT 0
)`

const createIngestionQueue = `CREATE TABLE IF NOT EXISTS ingestion_queue (
	id             TEXT PRIMARY KEY,
	file_name      TEXT NOT NULL,
	file_bytes     BYTEA NOT NULL,
	kb_id          TEXT NOT NULL DEFAULT '',
	kb_name        TEXT NOT NULL DEFAULT '',
	parent_kb_id   TEXT NOT NULL DEFAULT '',
	parent_kb_name TEXT NOT NULL DEFAULT '',
	knowledge_type TEXT NOT NULL DEFAULT '',
	role           TEXT NOT NULL DEFAULT '',
	creator        TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	claimed_at     TIMESTAMPTZ
)`

var createStatements = map[string]string{
	"element_meta_info": createElementMetaInfo,
	"ingestion_queue":    createIngestionQueue,
}

// EnsureSchema verifies that every table docingest depends on exists.
// When autoCreate is false, a missing table fails startup with a message
// describing the manual migration required (run `cmd/migrate up`); when
// true, missing tables are created directly.
func EnsureSchema(ctx context.Context, db *sqlx.DB, autoCreate bool) error {
	for _, table := range requiredTables {
		var regclass *string
		if err := db.GetContext(ctx, &regclass, "SELECT to_regclass($1)", table); err != nil {
			return fmt.Errorf("postgres.EnsureSchema: checking table %q: %w", table, err)
		}
		if regclass != nil {
			continue
		}

		if !autoCreate {
			return fmt.Errorf(
				"postgres.EnsureSchema: table %q does not exist; run `cmd/migrate up` against db/migrations before starting docingest (autoCreateTables is disabled)",
				table,
			)
		}

		if _, err := db.ExecContext(ctx, createStatements[table]); err != nil {
			return fmt.Errorf("postgres.EnsureSchema: creating table %q: %w", table, err)
		}
	}
	return nil
}
