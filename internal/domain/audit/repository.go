package audit

import (
	"context"
	"time"
)

// Filter son los criterios de la pantalla de bitácora. Los campos vacíos no
// filtran.
type Filter struct {
	Search       string
	ActionType   ActionType
	ResourceType string
	From         time.Time
	To           time.Time
}

// Repository persiste entradas de bitácora. Append es la única escritura; no
// existe update ni delete.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, f Filter) ([]Entry, error)
}
