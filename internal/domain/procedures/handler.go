package procedures

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"disercomi-tramites/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/procedures", func(pr chi.Router) {
		pr.Post("/", createProcedureHandler(svc))
		pr.Get("/", listProceduresHandler(svc))

		// Consulta pública por código de rastreo (sin sesión).
		pr.Get("/tracking/{code}", trackingHandler(svc))

		pr.Get("/{procedureID}", getProcedureHandler(svc))
		pr.Put("/{procedureID}/status", updateStatusHandler(svc))
		pr.Put("/{procedureID}/steps/{step}", advanceStepHandler(svc))
		pr.Post("/{procedureID}/comments", addCommentHandler(svc))
		pr.Post("/{procedureID}/documents", addDocumentHandler(svc))
		pr.Post("/{procedureID}/sign", markFlagHandler(svc, flagSigned))
		pr.Post("/{procedureID}/pay", markFlagHandler(svc, flagPaid))
	})

	r.Get("/stats", statsHandler(svc))
}

type documentRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

type createProcedureRequest struct {
	Type              string            `json:"type"`
	CompanyName       string            `json:"company_name"`
	CompanyNit        string            `json:"company_nit"`
	Address           string            `json:"address"`
	Sector            string            `json:"sector"`
	LegalRepName      string            `json:"legal_rep_name"`
	LegalRepDpi       string            `json:"legal_rep_dpi"`
	RegistroMercantil string            `json:"registro_mercantil"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	Documents         []documentRequest `json:"documents"`
}

type stepResponse struct {
	Step       string     `json:"step"`
	Status     string     `json:"status"`
	Date       *time.Time `json:"date,omitempty"`
	AssignedTo string     `json:"assigned_to,omitempty"`
}

type documentResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	MimeType   string    `json:"mime_type,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type commentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id,omitempty"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	Type       string    `json:"type,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// procedureResponse es el registro completo (dueño o administración).
type procedureResponse struct {
	ID                string             `json:"id"`
	TrackingCode      string             `json:"tracking_code"`
	OwnerID           string             `json:"owner_id"`
	Type              string             `json:"type"`
	Status            string             `json:"status"`
	CompanyName       string             `json:"company_name"`
	CompanyNit        string             `json:"company_nit"`
	Address           string             `json:"address"`
	Sector            string             `json:"sector"`
	LegalRepName      string             `json:"legal_rep_name"`
	LegalRepDpi       string             `json:"legal_rep_dpi"`
	RegistroMercantil string             `json:"registro_mercantil"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	IsPaid            bool               `json:"is_paid"`
	IsSigned          bool               `json:"is_signed"`
	Steps             []stepResponse     `json:"steps"`
	Documents         []documentResponse `json:"documents"`
	Comments          []commentResponse  `json:"comments"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// summaryResponse es la proyección de listados.
type summaryResponse struct {
	ID           string    `json:"id"`
	TrackingCode string    `json:"tracking_code"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	CompanyName  string    `json:"company_name"`
	CompanyNit   string    `json:"company_nit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// trackingResponse es la proyección pública: sin campos internos, con los
// comentarios visibles y el avance de etapas.
type trackingResponse struct {
	ID           string            `json:"id"`
	TrackingCode string            `json:"tracking_code"`
	Type         string            `json:"type"`
	Status       string            `json:"status"`
	CompanyName  string            `json:"company_name"`
	CompanyNit   string            `json:"company_nit"`
	Steps        []stepResponse    `json:"steps"`
	Comments     []commentResponse `json:"comments"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// createProcedureHandler godoc
// @Summary Presenta un nuevo trámite
// @Tags procedures
// @Accept json
// @Produce json
// @Success 201 {object} procedureResponse
// @Failure 400 {object} map[string]any
// @Router /procedures [post]
func createProcedureHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req createProcedureRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		docs := make([]DocumentInput, 0, len(req.Documents))
		for _, d := range req.Documents {
			docs = append(docs, DocumentInput{
				Category: DocumentCategory(d.Category),
				Name:     d.Name,
				URL:      d.URL,
				MimeType: d.MimeType,
			})
		}

		p, err := svc.Create(r.Context(), actor, CreateInput{
			Type:                     req.Type,
			CompanyName:              req.CompanyName,
			CompanyTaxID:             req.CompanyNit,
			Address:                  req.Address,
			Sector:                   req.Sector,
			LegalRepName:             req.LegalRepName,
			LegalRepID:               req.LegalRepDpi,
			CommercialRegistryNumber: req.RegistroMercantil,
			ContactEmail:             req.Email,
			ContactPhone:             req.Phone,
			Documents:                docs,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toProcedureResponse(p))
	}
}

// listProceduresHandler godoc
// @Summary Lista trámites (admin: todos; usuario: propios)
// @Tags procedures
// @Produce json
// @Success 200 {array} summaryResponse
// @Router /procedures [get]
func listProceduresHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var (
			items []Procedure
			err   error
		)
		if actor.Role == RoleAdmin {
			items, err = svc.ListAll(r.Context(), actor)
		} else {
			items, err = svc.ListForOwner(r.Context(), actor)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]summaryResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toSummaryResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getProcedureHandler godoc
// @Summary Registro completo de un trámite
// @Tags procedures
// @Produce json
// @Success 200 {object} procedureResponse
// @Failure 404 {object} map[string]any
// @Router /procedures/{procedureID} [get]
func getProcedureHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		p, err := svc.GetByID(r.Context(), actor, chi.URLParam(r, "procedureID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProcedureResponse(p))
	}
}

// trackingHandler godoc
// @Summary Consulta pública por código de rastreo
// @Tags tracking
// @Produce json
// @Success 200 {object} trackingResponse
// @Failure 404 {object} map[string]any
// @Router /procedures/tracking/{code} [get]
func trackingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByTrackingCode(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			// Resultado esperado y frecuente (código mal tecleado), no una
			// falla del sistema.
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "no se encontró ningún trámite con ese código")
				return
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTrackingResponse(p))
	}
}

type updateStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.UpdateStatus(r.Context(), actor, chi.URLParam(r, "procedureID"), Status(req.Status), req.Comment)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProcedureResponse(p))
	}
}

type advanceStepRequest struct {
	Status string `json:"status"`
}

func advanceStepHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req advanceStepRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.AdvanceStep(r.Context(), actor,
			chi.URLParam(r, "procedureID"),
			StepKey(chi.URLParam(r, "step")),
			StepState(req.Status),
		)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProcedureResponse(p))
	}
}

type addCommentRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

func addCommentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req addCommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.AddComment(r.Context(), actor, chi.URLParam(r, "procedureID"), req.Text, req.Type)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProcedureResponse(p))
	}
}

func addDocumentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req documentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.AddDocument(r.Context(), actor, chi.URLParam(r, "procedureID"), DocumentInput{
			Name:     req.Name,
			URL:      req.URL,
			MimeType: req.MimeType,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProcedureResponse(p))
	}
}

func markFlagHandler(svc *Service, kind flagKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		id := chi.URLParam(r, "procedureID")

		var (
			p   Procedure
			err error
		)
		if kind == flagSigned {
			p, err = svc.MarkSigned(r.Context(), actor, id)
		} else {
			p, err = svc.MarkPaid(r.Context(), actor, id)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProcedureResponse(p))
	}
}

type statsResponse struct {
	TotalProcedures       int            `json:"total_procedures"`
	ProceduresByStatus    map[string]int `json:"procedures_by_status"`
	ProceduresByType      map[string]int `json:"procedures_by_type"`
	ProceduresByMonth     []monthCount   `json:"procedures_by_month"`
	AverageProcessingDays float64        `json:"average_processing_days"`
	CompletionRate        float64        `json:"completion_rate"`
}

type monthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		stats, err := svc.Stats(r.Context(), actor)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		byStatus := make(map[string]int, len(stats.ProceduresByStatus))
		for k, v := range stats.ProceduresByStatus {
			byStatus[string(k)] = v
		}
		months := make([]monthCount, 0, len(stats.ProceduresByMonth))
		for _, m := range stats.ProceduresByMonth {
			months = append(months, monthCount{Month: m.Month, Count: m.Count})
		}

		writeJSON(w, http.StatusOK, statsResponse{
			TotalProcedures:       stats.TotalProcedures,
			ProceduresByStatus:    byStatus,
			ProceduresByType:      stats.ProceduresByType,
			ProceduresByMonth:     months,
			AverageProcessingDays: stats.AverageProcessingDays,
			CompletionRate:        stats.CompletionRate,
		})
	}
}

func actorFrom(r *http.Request) (Actor, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || claims.UserID == "" {
		return Actor{}, false
	}
	return Actor{ID: claims.UserID, Name: claims.Name, Role: claims.Role}, true
}

func toProcedureResponse(p Procedure) procedureResponse {
	return procedureResponse{
		ID:                p.ID,
		TrackingCode:      p.TrackingCode,
		OwnerID:           p.OwnerID,
		Type:              p.Type,
		Status:            string(p.Status),
		CompanyName:       p.CompanyName,
		CompanyNit:        p.CompanyTaxID,
		Address:           p.Address,
		Sector:            p.Sector,
		LegalRepName:      p.LegalRepName,
		LegalRepDpi:       p.LegalRepID,
		RegistroMercantil: p.CommercialRegistryNumber,
		Email:             p.ContactEmail,
		Phone:             p.ContactPhone,
		IsPaid:            p.IsPaid,
		IsSigned:          p.IsSigned,
		Steps:             toStepResponses(p.Steps),
		Documents:         toDocumentResponses(p.Documents),
		Comments:          toCommentResponses(p.Comments, true),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toSummaryResponse(p Procedure) summaryResponse {
	return summaryResponse{
		ID:           p.ID,
		TrackingCode: p.TrackingCode,
		Type:         p.Type,
		Status:       string(p.Status),
		CompanyName:  p.CompanyName,
		CompanyNit:   p.CompanyTaxID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toTrackingResponse(p Procedure) trackingResponse {
	return trackingResponse{
		ID:           p.ID,
		TrackingCode: p.TrackingCode,
		Type:         p.Type,
		Status:       string(p.Status),
		CompanyName:  p.CompanyName,
		CompanyNit:   p.CompanyTaxID,
		Steps:        toStepResponses(p.Steps),
		Comments:     toCommentResponses(p.Comments, false),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toStepResponses(steps []StepStatus) []stepResponse {
	out := make([]stepResponse, 0, len(steps))
	for _, s := range steps {
		out = append(out, stepResponse{
			Step:       string(s.Step),
			Status:     string(s.Status),
			Date:       s.Date,
			AssignedTo: s.AssignedTo,
		})
	}
	return out
}

func toDocumentResponses(docs []Document) []documentResponse {
	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResponse{
			ID:         d.ID,
			Name:       d.Name,
			URL:        d.URL,
			MimeType:   d.MimeType,
			UploadedAt: d.UploadedAt,
		})
	}
	return out
}

// withAuthor=false produce la vista pública (sin author_id interno).
func toCommentResponses(comments []Comment, withAuthor bool) []commentResponse {
	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		cr := commentResponse{
			ID:         c.ID,
			AuthorName: c.AuthorName,
			Text:       c.Text,
			Type:       c.Type,
			CreatedAt:  c.CreatedAt,
		}
		if withAuthor {
			cr.AuthorID = c.AuthorID
		}
		out = append(out, cr)
	}
	return out
}

func writeServiceError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "procedure not found")
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateID), errors.Is(err, ErrDuplicateTrackingCode):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
