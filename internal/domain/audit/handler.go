package audit

import (
	"encoding/json"
	"net/http"
	"time"

	"disercomi-tramites/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes expone la bitácora administrativa. Solo lectura: las
// entradas se escriben únicamente a través del Recorder.
func RegisterRoutes(r chi.Router, repo Repository) {
	r.Get("/bitacora", listHandler(repo))
}

type entryResponse struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	ActorName    string         `json:"actor_name"`
	ActorRole    string         `json:"actor_role"`
	ActionType   string         `json:"action_type"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Description  string         `json:"description"`
	Changes      map[string]any `json:"changes,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	DeviceInfo   string         `json:"device_info,omitempty"`
}

// listHandler godoc
// @Summary Lista la bitácora del sistema (solo administración)
// @Tags bitacora
// @Produce json
// @Success 200 {array} entryResponse
// @Router /bitacora [get]
func listHandler(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		if claims.Role != "admin" {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
			return
		}

		f, err := filterFromQuery(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		entries, err := repo.List(r.Context(), f)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}

		out := make([]entryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, entryResponse{
				ID:           e.ID,
				Timestamp:    e.Timestamp,
				ActorName:    e.ActorName,
				ActorRole:    e.ActorRole,
				ActionType:   string(e.ActionType),
				ResourceType: e.ResourceType,
				ResourceID:   e.ResourceID,
				Description:  e.Description,
				Changes:      e.Changes,
				IPAddress:    e.IPAddress,
				DeviceInfo:   e.DeviceInfo,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func filterFromQuery(r *http.Request) (Filter, error) {
	q := r.URL.Query()

	f := Filter{
		Search:       q.Get("search"),
		ActionType:   ActionType(q.Get("action_type")),
		ResourceType: q.Get("resource_type"),
	}

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Filter{}, err
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Filter{}, err
		}
		f.To = t
	}

	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
