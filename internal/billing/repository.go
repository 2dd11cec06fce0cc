package billing

import "context"

// Repository is the authoritative owner of both document collections.
// Implementations preserve insertion order per type and return copies, never
// shared references. Mutations on an unknown id return ErrNotFound.
type Repository interface {
	// WithTx runs fn against a repository scoped to one transaction.
	// Implementations serialise writers for the duration of fn.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error
	Insert(ctx context.Context, doc Document) error
	Get(ctx context.Context, docType DocumentType, id string) (Document, error)
	Replace(ctx context.Context, doc Document) error
	Delete(ctx context.Context, docType DocumentType, id string) error
	List(ctx context.Context, filter ListFilter) ([]Document, error)
	Count(ctx context.Context, docType DocumentType) (int, error)
}
