// Package sqlite provides a SQLite-backed billing.Repository.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/odyssey-erp/billing/internal/billing"
)

var _ billing.Repository = (*Store)(nil)

// Store implements billing.Repository on a single SQLite connection, which
// serialises transactions.
type Store struct {
	db *sql.DB
	queries
}

// New opens the database at dbPath, creating parent directories, and runs
// migrations.
func New(ctx context.Context, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, queries: queries{q: db}}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn in a database transaction, committing when fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx billing.Repository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &txStore{queries{q: tx}}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txStore struct {
	queries
}

func (t *txStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx billing.Repository) error) error {
	return fn(ctx, t)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q querier
}

func (s queries) Insert(ctx context.Context, doc billing.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO documents (id, doc_type, doc_number, status, client_id, due_at, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, string(doc.Type), doc.Number, string(doc.Status), doc.ClientID,
		doc.DueDate.UnixNano(), string(payload), doc.CreatedAt.UnixNano(), doc.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if isNumberConflict(err) {
			return fmt.Errorf("insert document %s: %w", doc.Number, billing.ErrDuplicateNumber)
		}
		return fmt.Errorf("insert document %s: %w", doc.ID, err)
	}
	return nil
}

func (s queries) Get(ctx context.Context, docType billing.DocumentType, id string) (billing.Document, error) {
	query := "SELECT payload FROM documents WHERE id = ?"
	args := []any{id}
	if docType != "" {
		query += " AND doc_type = ?"
		args = append(args, string(docType))
	}

	var payload string
	err := s.q.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.Document{}, billing.ErrNotFound
	}
	if err != nil {
		return billing.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return decode(payload)
}

func (s queries) Replace(ctx context.Context, doc billing.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE documents
		SET doc_number = ?, status = ?, client_id = ?, due_at = ?, payload = ?, updated_at = ?
		WHERE id = ? AND doc_type = ?`,
		doc.Number, string(doc.Status), doc.ClientID, doc.DueDate.UnixNano(), string(payload),
		doc.UpdatedAt.UnixNano(), doc.ID, string(doc.Type),
	)
	if err != nil {
		if isNumberConflict(err) {
			return fmt.Errorf("replace document %s: %w", doc.Number, billing.ErrDuplicateNumber)
		}
		return fmt.Errorf("replace document %s: %w", doc.ID, err)
	}
	return expectOne(res)
}

func (s queries) Delete(ctx context.Context, docType billing.DocumentType, id string) error {
	query := "DELETE FROM documents WHERE id = ?"
	args := []any{id}
	if docType != "" {
		query += " AND doc_type = ?"
		args = append(args, string(docType))
	}
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return expectOne(res)
}

func (s queries) List(ctx context.Context, filter billing.ListFilter) ([]billing.Document, error) {
	var (
		where []string
		args  []any
	)
	if filter.Type != "" {
		where = append(where, "doc_type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if !filter.DueBefore.IsZero() {
		where = append(where, "due_at < ?")
		args = append(args, filter.DueBefore.UnixNano())
	}

	query := "SELECT payload FROM documents"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY CASE doc_type WHEN 'Invoice' THEN 0 ELSE 1 END, seq"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]billing.Document, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, err := decode(payload)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (s queries) Count(ctx context.Context, docType billing.DocumentType) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE doc_type = ?", string(docType)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

func decode(payload string) (billing.Document, error) {
	var doc billing.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return billing.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return billing.ErrNotFound
	}
	return nil
}

func isNumberConflict(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return false
	}
	return strings.Contains(sqliteErr.Error(), "documents.doc_number")
}
