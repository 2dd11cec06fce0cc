package billing

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("billing: document not found")
	// ErrDuplicateNumber indicates a document number collision in the store.
	ErrDuplicateNumber = errors.New("billing: duplicate document number")
	// ErrWrongDocumentType indicates an operation was invoked on the other document type.
	ErrWrongDocumentType = errors.New("billing: wrong document type")
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("billing: invalid status")
	// ErrProductNotFound indicates a line item referenced an unknown product.
	ErrProductNotFound = errors.New("billing: product not found")
)
