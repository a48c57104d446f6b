package procedures

import "context"

// Mutator transforma un trámite almacenado. Debe ser pura: recibe una copia y
// devuelve el valor nuevo; el repositorio la aplica de forma atómica respecto
// al registro (ningún lector observa un registro a medio escribir).
type Mutator func(Procedure) Procedure

// Repository almacena y recupera trámites. Insert falla con ErrDuplicateID o
// ErrDuplicateTrackingCode si alguna llave ya existe. Update aplica el mutator,
// refresca UpdatedAt y devuelve el valor nuevo; ErrNotFound si el id no existe
// (sin efectos en ese caso). Solo Update e Insert tocan UpdatedAt.
type Repository interface {
	Insert(ctx context.Context, p Procedure) error
	FindAll(ctx context.Context) ([]Procedure, error)
	FindByOwner(ctx context.Context, ownerID string) ([]Procedure, error)
	FindByID(ctx context.Context, id string) (Procedure, error)
	FindByTrackingCode(ctx context.Context, code string) (Procedure, error)
	Update(ctx context.Context, id string, fn Mutator) (Procedure, error)
}
