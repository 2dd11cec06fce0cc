package sqlite

import (
	"context"
	"database/sql"
)

// Documents are stored whole as JSON. The scalar columns exist for
// filtering, ordering and the per-type number constraint.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    doc_type TEXT NOT NULL,
    doc_number TEXT NOT NULL,
    status TEXT NOT NULL,
    client_id TEXT NOT NULL,
    due_at INTEGER NOT NULL,
    payload TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    CONSTRAINT documents_doc_number_key UNIQUE (doc_type, doc_number)
);

CREATE INDEX IF NOT EXISTS idx_documents_type_status ON documents(doc_type, status);
CREATE INDEX IF NOT EXISTS idx_documents_client_id ON documents(client_id);
`

func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
