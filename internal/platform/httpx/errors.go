package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors understood by RespondError. Packages map their own
// sentinels onto these with Classify.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

// RespondError maps errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// Classified pairs a domain error with the HTTP sentinel it maps to, keeping
// the domain message.
type Classified struct {
	Err  error
	Kind error
}

func (c Classified) Error() string { return c.Err.Error() }

// Unwrap exposes both the domain error and its HTTP kind to errors.Is.
func (c Classified) Unwrap() []error { return []error{c.Err, c.Kind} }

// Classify wraps err with kind when err matches any of the targets.
func Classify(err, kind error, targets ...error) error {
	for _, target := range targets {
		if errors.Is(err, target) {
			return Classified{Err: err, Kind: kind}
		}
	}
	return err
}
