package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"disercomi-tramites/internal/domain/procedures"
)

type proceduresRepo struct {
	mu     sync.RWMutex
	byID   map[string]procedures.Procedure
	byCode map[string]string // trackingCode -> id
	now    func() time.Time
}

func NewProceduresRepo() procedures.Repository {
	return &proceduresRepo{
		byID:   make(map[string]procedures.Procedure),
		byCode: make(map[string]string),
		now:    time.Now,
	}
}

func (r *proceduresRepo) Insert(ctx context.Context, p procedures.Procedure) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.TrackingCode) == "" {
		return procedures.ErrInvalidInput
	}
	if _, exists := r.byID[p.ID]; exists {
		return procedures.ErrDuplicateID
	}
	if _, exists := r.byCode[p.TrackingCode]; exists {
		return procedures.ErrDuplicateTrackingCode
	}

	r.byID[p.ID] = clone(p)
	r.byCode[p.TrackingCode] = p.ID
	return nil
}

func (r *proceduresRepo) FindAll(ctx context.Context) ([]procedures.Procedure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]procedures.Procedure, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, clone(p))
	}
	sortStable(out)
	return out, nil
}

func (r *proceduresRepo) FindByOwner(ctx context.Context, ownerID string) ([]procedures.Procedure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]procedures.Procedure, 0)
	for _, p := range r.byID {
		if p.OwnerID == ownerID {
			out = append(out, clone(p))
		}
	}
	sortStable(out)
	return out, nil
}

func (r *proceduresRepo) FindByID(ctx context.Context, id string) (procedures.Procedure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return procedures.Procedure{}, procedures.ErrNotFound
	}
	return clone(p), nil
}

func (r *proceduresRepo) FindByTrackingCode(ctx context.Context, code string) (procedures.Procedure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return procedures.Procedure{}, procedures.ErrNotFound
	}
	return clone(r.byID[id]), nil
}

// Update aplica el mutator bajo el write lock: el read-modify-write de un
// registro es atómico y dos appends concurrentes de comentarios sobreviven
// ambos. Las llaves y CreatedAt no son reasignables; UpdatedAt se refresca
// aquí y solo aquí.
func (r *proceduresRepo) Update(ctx context.Context, id string, fn procedures.Mutator) (procedures.Procedure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return procedures.Procedure{}, procedures.ErrNotFound
	}

	next := fn(clone(current))
	next.ID = current.ID
	next.TrackingCode = current.TrackingCode
	next.OwnerID = current.OwnerID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = r.now()

	r.byID[id] = clone(next)
	return next, nil
}

// clone copia el registro con sus slices para que nadie comparta backing
// arrays con el mapa interno.
func clone(p procedures.Procedure) procedures.Procedure {
	out := p
	out.Steps = append([]procedures.StepStatus(nil), p.Steps...)
	out.Documents = append([]procedures.Document(nil), p.Documents...)
	out.Comments = append([]procedures.Comment(nil), p.Comments...)
	return out
}

// Orden estable por created_at asc (consistencia entre llamadas sin mutación).
func sortStable(out []procedures.Procedure) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
