package validations

import (
	"encoding/json"
	"net/http"

	"disercomi-tramites/internal/ports/registry"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes expone las validaciones contra registros estatales que usa
// el asistente del formulario. Solo lectura; los resultados no se almacenan.
func RegisterRoutes(r chi.Router, validator registry.Validator) {
	r.Route("/validations", func(vr chi.Router) {
		vr.Get("/dpi/{dpi}", validateDPIHandler(validator))
		vr.Get("/nit/{nit}", validateNITHandler(validator))
	})
}

type dpiResponse struct {
	IsValid bool   `json:"is_valid"`
	Name    string `json:"name,omitempty"`
	Status  string `json:"status"`
}

type nitResponse struct {
	IsValid     bool   `json:"is_valid"`
	CompanyName string `json:"company_name,omitempty"`
	Status      string `json:"status"`
}

func validateDPIHandler(validator registry.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := validator.ValidateDPI(r.Context(), chi.URLParam(r, "dpi"))
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "validation service unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, dpiResponse{IsValid: res.IsValid, Name: res.Name, Status: res.Status})
	}
}

func validateNITHandler(validator registry.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := validator.ValidateNIT(r.Context(), chi.URLParam(r, "nit"))
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "validation service unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, nitResponse{IsValid: res.IsValid, CompanyName: res.CompanyName, Status: res.Status})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
