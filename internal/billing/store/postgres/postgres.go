// Package postgres provides PostgreSQL backed persistence for billing documents.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/billing/internal/billing"
	"github.com/odyssey-erp/billing/internal/platform/db"
)

const numberConstraint = "billing_documents_number_key"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS billing_documents (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		doc_type TEXT NOT NULL,
		doc_number TEXT NOT NULL,
		status TEXT NOT NULL,
		client_id TEXT NOT NULL,
		due_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT ` + numberConstraint + ` UNIQUE (doc_type, doc_number)
	)`,
	`CREATE INDEX IF NOT EXISTS billing_documents_type_status_idx ON billing_documents (doc_type, status)`,
}

// dbtx is implemented by both the pool and a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores documents in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	queries
}

var _ billing.Repository = (*Repository)(nil)

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, queries: queries{db: pool}}
}

// Migrate creates the documents table when missing.
func (r *Repository) Migrate(ctx context.Context) error {
	return db.Migrate(ctx, r.pool, schema...)
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, billing.Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{queries{db: tx}})
	})
}

type txRepo struct {
	queries
}

func (t *txRepo) WithTx(ctx context.Context, fn func(context.Context, billing.Repository) error) error {
	return fn(ctx, t)
}

type queries struct {
	db dbtx
}

// ============================================================================
// WRITES
// ============================================================================

func (q queries) Insert(ctx context.Context, doc billing.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	_, err = q.db.Exec(ctx, `
		INSERT INTO billing_documents (id, doc_type, doc_number, status, client_id, due_at, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		doc.ID, string(doc.Type), doc.Number, string(doc.Status), doc.ClientID,
		doc.DueDate, payload, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err, numberConstraint) {
			return fmt.Errorf("insert document %s: %w", doc.Number, billing.ErrDuplicateNumber)
		}
		return fmt.Errorf("insert document %s: %w", doc.ID, err)
	}
	return nil
}

func (q queries) Replace(ctx context.Context, doc billing.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	tag, err := q.db.Exec(ctx, `
		UPDATE billing_documents
		SET doc_number = $3, status = $4, client_id = $5, due_at = $6, payload = $7, updated_at = $8
		WHERE id = $1 AND doc_type = $2`,
		doc.ID, string(doc.Type), doc.Number, string(doc.Status), doc.ClientID,
		doc.DueDate, payload, doc.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err, numberConstraint) {
			return fmt.Errorf("replace document %s: %w", doc.Number, billing.ErrDuplicateNumber)
		}
		return fmt.Errorf("replace document %s: %w", doc.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrNotFound
	}
	return nil
}

func (q queries) Delete(ctx context.Context, docType billing.DocumentType, id string) error {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM billing_documents WHERE id = $1 AND ($2::text = '' OR doc_type = $2)`,
		id, string(docType),
	)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrNotFound
	}
	return nil
}

// ============================================================================
// READS
// ============================================================================

func (q queries) Get(ctx context.Context, docType billing.DocumentType, id string) (billing.Document, error) {
	var payload []byte
	err := q.db.QueryRow(ctx,
		`SELECT payload FROM billing_documents WHERE id = $1 AND ($2::text = '' OR doc_type = $2)`,
		id, string(docType),
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return billing.Document{}, billing.ErrNotFound
	}
	if err != nil {
		return billing.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return decode(payload)
}

func (q queries) List(ctx context.Context, filter billing.ListFilter) ([]billing.Document, error) {
	var (
		where []string
		args  []any
	)
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where = append(where, fmt.Sprintf("doc_type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if !filter.DueBefore.IsZero() {
		args = append(args, filter.DueBefore)
		where = append(where, fmt.Sprintf("due_at < $%d", len(args)))
	}

	sql := "SELECT payload FROM billing_documents"
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY CASE doc_type WHEN 'Invoice' THEN 0 ELSE 1 END, seq"

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	payloads, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]billing.Document, 0, len(payloads))
	for _, payload := range payloads {
		doc, err := decode(payload)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (q queries) Count(ctx context.Context, docType billing.DocumentType) (int, error) {
	var count int
	err := q.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM billing_documents WHERE doc_type = $1`, string(docType),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

func decode(payload []byte) (billing.Document, error) {
	var doc billing.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return billing.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
