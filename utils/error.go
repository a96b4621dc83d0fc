package utils

import (
	"errors"
	"fmt"
	"strings"
)

var ErrorRecordNotFound = errors.New("record not found")

// Validation errors. Recorders must reject the operation before any
// ledger mutation when one of these applies.
var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidRoute    = errors.New("origin and destination must differ")
	ErrUnknownDrink    = errors.New("drink has no recipe")
	ErrAuditSaved      = errors.New("audit session already saved")
)

// PersistenceError reports sheet writes that failed after the in-memory
// state was already committed. The operation is still considered recorded;
// callers retry the flush, never the mutation.
type PersistenceError struct {
	Tables []string
	Errs   []error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure on tables [%s]: %v",
		strings.Join(e.Tables, ", "), errors.Join(e.Errs...))
}

func (e *PersistenceError) Unwrap() []error { return e.Errs }

func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
