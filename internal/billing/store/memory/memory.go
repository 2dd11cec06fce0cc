// Package memory is the in-process document store.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/odyssey-erp/billing/internal/billing"
)

// Store keeps both collections in ordered slices guarded by one mutex.
type Store struct {
	mu    sync.Mutex
	state state
}

// New returns an empty store.
func New() *Store {
	return &Store{state: newState()}
}

var _ billing.Repository = (*Store)(nil)

// WithTx holds the store lock for the whole of fn and restores the previous
// contents when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx billing.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.state.clone()
	if err := fn(ctx, &tx{state: &s.state}); err != nil {
		s.state = backup
		return err
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, doc billing.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.insert(doc)
}

func (s *Store) Get(ctx context.Context, docType billing.DocumentType, id string) (billing.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.get(docType, id)
}

func (s *Store) Replace(ctx context.Context, doc billing.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.replace(doc)
}

func (s *Store) Delete(ctx context.Context, docType billing.DocumentType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.delete(docType, id)
}

func (s *Store) List(ctx context.Context, filter billing.ListFilter) ([]billing.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.list(filter), nil
}

func (s *Store) Count(ctx context.Context, docType billing.DocumentType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.docs[docType]), nil
}

// tx operates on the locked state.
type tx struct {
	state *state
}

func (t *tx) WithTx(ctx context.Context, fn func(ctx context.Context, tx billing.Repository) error) error {
	return fn(ctx, t)
}

func (t *tx) Insert(ctx context.Context, doc billing.Document) error {
	return t.state.insert(doc)
}

func (t *tx) Get(ctx context.Context, docType billing.DocumentType, id string) (billing.Document, error) {
	return t.state.get(docType, id)
}

func (t *tx) Replace(ctx context.Context, doc billing.Document) error {
	return t.state.replace(doc)
}

func (t *tx) Delete(ctx context.Context, docType billing.DocumentType, id string) error {
	return t.state.delete(docType, id)
}

func (t *tx) List(ctx context.Context, filter billing.ListFilter) ([]billing.Document, error) {
	return t.state.list(filter), nil
}

func (t *tx) Count(ctx context.Context, docType billing.DocumentType) (int, error) {
	return len(t.state.docs[docType]), nil
}

var documentTypes = []billing.DocumentType{billing.TypeInvoice, billing.TypeQuotation}

type state struct {
	docs map[billing.DocumentType][]billing.Document
}

func newState() state {
	return state{docs: make(map[billing.DocumentType][]billing.Document, len(documentTypes))}
}

func (st state) clone() state {
	out := newState()
	for docType, docs := range st.docs {
		out.docs[docType] = append([]billing.Document(nil), docs...)
	}
	return out
}

func (st *state) insert(doc billing.Document) error {
	if !doc.Type.Valid() {
		return fmt.Errorf("insert document %s: unknown type %q", doc.ID, doc.Type)
	}
	for _, docType := range documentTypes {
		for _, existing := range st.docs[docType] {
			if existing.ID == doc.ID {
				return fmt.Errorf("insert document %s: duplicate id", doc.ID)
			}
			if existing.Number == doc.Number && existing.Type == doc.Type {
				return fmt.Errorf("insert document %s: %w", doc.Number, billing.ErrDuplicateNumber)
			}
		}
	}
	st.docs[doc.Type] = append(st.docs[doc.Type], doc.Clone())
	return nil
}

// locate finds id in the collection of docType, or in both when docType is empty.
func (st *state) locate(docType billing.DocumentType, id string) (billing.DocumentType, int, bool) {
	for _, candidate := range documentTypes {
		if docType != "" && candidate != docType {
			continue
		}
		for i, doc := range st.docs[candidate] {
			if doc.ID == id {
				return candidate, i, true
			}
		}
	}
	return "", 0, false
}

func (st *state) get(docType billing.DocumentType, id string) (billing.Document, error) {
	found, pos, ok := st.locate(docType, id)
	if !ok {
		return billing.Document{}, billing.ErrNotFound
	}
	return st.docs[found][pos].Clone(), nil
}

func (st *state) replace(doc billing.Document) error {
	found, pos, ok := st.locate(doc.Type, doc.ID)
	if !ok {
		return billing.ErrNotFound
	}
	st.docs[found][pos] = doc.Clone()
	return nil
}

func (st *state) delete(docType billing.DocumentType, id string) error {
	found, pos, ok := st.locate(docType, id)
	if !ok {
		return billing.ErrNotFound
	}
	docs := st.docs[found]
	st.docs[found] = append(docs[:pos:pos], docs[pos+1:]...)
	return nil
}

func (st *state) list(filter billing.ListFilter) []billing.Document {
	out := make([]billing.Document, 0)
	for _, docType := range documentTypes {
		for _, doc := range st.docs[docType] {
			if filter.Matches(doc) {
				out = append(out, doc.Clone())
			}
		}
	}
	return out
}
