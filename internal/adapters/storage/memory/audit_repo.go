package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"disercomi-tramites/internal/domain/audit"
)

type auditRepo struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

func NewAuditRepo() audit.Repository {
	return &auditRepo{entries: make([]audit.Entry, 0)}
}

func (r *auditRepo) Append(ctx context.Context, e audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, e)
	return nil
}

func (r *auditRepo) List(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]audit.Entry, 0)
	for _, e := range r.entries {
		if !matches(e, f) {
			continue
		}
		out = append(out, e)
	}

	// Más recientes primero, como la pantalla de bitácora.
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	return out, nil
}

func matches(e audit.Entry, f audit.Filter) bool {
	if f.ActionType != "" && e.ActionType != f.ActionType {
		return false
	}
	if f.ResourceType != "" && e.ResourceType != f.ResourceType {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		s = strings.ToLower(s)
		if !strings.Contains(strings.ToLower(e.Description), s) &&
			!strings.Contains(strings.ToLower(e.ActorName), s) &&
			!strings.Contains(strings.ToLower(e.ResourceID), s) {
			return false
		}
	}
	return true
}
