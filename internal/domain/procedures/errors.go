package procedures

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound              = errors.New("procedure not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDuplicateID           = errors.New("duplicate procedure id")
	ErrDuplicateTrackingCode = errors.New("duplicate tracking code")
)

// ValidationError lista los campos o documentos requeridos que faltan o son
// inválidos. Cuando se devuelve, no se persistió ningún registro parcial.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) add(field string) {
	e.Fields = append(e.Fields, field)
}

func (e *ValidationError) ok() bool {
	return len(e.Fields) == 0
}
