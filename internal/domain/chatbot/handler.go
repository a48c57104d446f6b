package chatbot

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes expone el grafo de diálogo en modo solo lectura, para que la
// UI lo consuma nodo por nodo.
func RegisterRoutes(r chi.Router) {
	r.Route("/chatbot", func(cr chi.Router) {
		cr.Get("/nodes/{nodeID}", getNodeHandler())
	})
}

func getNodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "nodeID")
		if id == "start" {
			id = StartNodeID
		}

		n, ok := Lookup(id)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "node not found"})
			return
		}
		writeJSON(w, http.StatusOK, n)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
