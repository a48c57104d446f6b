package procedures

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"disercomi-tramites/internal/domain/audit"

	"github.com/google/uuid"
)

// AuditRecorder es el punto de enganche con la bitácora. La dependencia es
// unidireccional: el servicio emite entradas, nunca al revés.
type AuditRecorder interface {
	Record(e audit.Entry)
}

// Patrones del formulario original: forma básica de correo y teléfono, no
// validación exhaustiva.
var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[\d\s-]{8,}$`)
)

// cuántas veces se reintenta la generación del código si el repositorio
// reporta colisión (en la práctica no debería ocurrir)
const trackingRetries = 3

type Service struct {
	repo     Repository
	bitacora AuditRecorder
	now      func() time.Time
	genCode  func() string
}

func NewService(repo Repository, bitacora AuditRecorder) *Service {
	return &Service{
		repo:     repo,
		bitacora: bitacora,
		now:      time.Now,
		genCode:  GenerateTrackingCode,
	}
}

// DocumentInput es un adjunto ya subido al almacenamiento externo.
type DocumentInput struct {
	Category DocumentCategory
	Name     string
	URL      string
	MimeType string
}

type CreateInput struct {
	Type                     string
	CompanyName              string
	CompanyTaxID             string
	Address                  string
	Sector                   string
	LegalRepName             string
	LegalRepID               string
	CommercialRegistryNumber string
	ContactEmail             string
	ContactPhone             string
	Documents                []DocumentInput
}

// Create valida la solicitud completa, asigna id y código de rastreo, marca
// la etapa de ingreso como completada (la presentación misma es el ingreso) y
// persiste. Si la validación falla no se persiste ningún registro parcial.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (Procedure, error) {
	if err := requireActor(actor); err != nil {
		return Procedure{}, err
	}

	if verr := validateCreate(in); verr != nil {
		return Procedure{}, verr
	}

	now := s.now()

	steps := NewSteps()
	steps[0].Status = StepCompleted
	steps[0].Date = &now

	docs := make([]Document, 0, len(in.Documents))
	for _, d := range in.Documents {
		docs = append(docs, Document{
			ID:         uuid.NewString(),
			Name:       strings.TrimSpace(d.Name),
			URL:        d.URL,
			MimeType:   d.MimeType,
			UploadedAt: now,
		})
	}

	p := Procedure{
		ID:                       uuid.NewString(),
		OwnerID:                  actor.ID,
		Type:                     strings.TrimSpace(in.Type),
		Status:                   StatusReceived,
		Steps:                    steps,
		CompanyName:              strings.TrimSpace(in.CompanyName),
		CompanyTaxID:             strings.TrimSpace(in.CompanyTaxID),
		Address:                  strings.TrimSpace(in.Address),
		Sector:                   strings.TrimSpace(in.Sector),
		LegalRepName:             strings.TrimSpace(in.LegalRepName),
		LegalRepID:               strings.TrimSpace(in.LegalRepID),
		CommercialRegistryNumber: strings.TrimSpace(in.CommercialRegistryNumber),
		ContactEmail:             strings.TrimSpace(in.ContactEmail),
		ContactPhone:             strings.TrimSpace(in.ContactPhone),
		Documents:                docs,
		Comments:                 []Comment{},
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	var err error
	for i := 0; i < trackingRetries; i++ {
		p.TrackingCode = s.genCode()
		err = s.repo.Insert(ctx, p)
		if err != ErrDuplicateTrackingCode {
			break
		}
	}
	if err != nil {
		return Procedure{}, err
	}

	s.bitacora.Record(audit.Entry{
		ActorName:    actor.Name,
		ActorRole:    actor.Role,
		ActionType:   audit.ActionCreate,
		ResourceType: audit.ResourceTramite,
		ResourceID:   p.ID,
		Description:  fmt.Sprintf("Nuevo trámite creado: %s", p.Type),
		Changes: map[string]any{
			"companyName": p.CompanyName,
			"type":        p.Type,
		},
	})

	return p, nil
}

func validateCreate(in CreateInput) *ValidationError {
	verr := &ValidationError{}

	required := []struct {
		field string
		value string
	}{
		{"type", in.Type},
		{"companyName", in.CompanyName},
		{"companyTaxId", in.CompanyTaxID},
		{"legalRepName", in.LegalRepName},
		{"legalRepId", in.LegalRepID},
		{"commercialRegistryNumber", in.CommercialRegistryNumber},
		{"address", in.Address},
		{"sector", in.Sector},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			verr.add(f.field)
		}
	}

	if strings.TrimSpace(in.Sector) != "" && !ValidSector(strings.TrimSpace(in.Sector)) {
		verr.add("sector")
	}

	if !emailRe.MatchString(strings.TrimSpace(in.ContactEmail)) {
		verr.add("contactEmail")
	}
	if !phoneRe.MatchString(strings.TrimSpace(in.ContactPhone)) {
		verr.add("contactPhone")
	}

	have := map[DocumentCategory]bool{}
	for _, d := range in.Documents {
		have[d.Category] = true
	}
	for _, cat := range RequiredDocuments {
		if !have[cat] {
			verr.add("documents." + string(cat))
		}
	}

	if verr.ok() {
		return nil
	}
	return verr
}

// ListForOwner devuelve los trámites del propio actor.
func (s *Service) ListForOwner(ctx context.Context, actor Actor) ([]Procedure, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.repo.FindByOwner(ctx, actor.ID)
}

// ListAll devuelve todos los trámites (solo administración).
func (s *Service) ListAll(ctx context.Context, actor Actor) ([]Procedure, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.canManage() {
		return nil, ErrForbidden
	}
	return s.repo.FindAll(ctx)
}

func (s *Service) GetByID(ctx context.Context, actor Actor, id string) (Procedure, error) {
	if err := requireActor(actor); err != nil {
		return Procedure{}, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Procedure{}, err
	}
	if !actor.canAccess(p) {
		return Procedure{}, ErrForbidden
	}
	return p, nil
}

// GetByTrackingCode es la única consulta pública: funciona sin identidad,
// porque el código de rastreo es el identificador que se comparte.
func (s *Service) GetByTrackingCode(ctx context.Context, code string) (Procedure, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Procedure{}, ErrNotFound
	}
	return s.repo.FindByTrackingCode(ctx, code)
}

// UpdateStatus aplica el nuevo estado general. No hay grafo de transiciones:
// cualquier estado es alcanzable desde cualquier otro (la administración tiene
// control total; las rutas prácticas las restringe la UI).
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, id string, newStatus Status, comment string) (Procedure, error) {
	if err := requireActor(actor); err != nil {
		return Procedure{}, err
	}
	if !actor.canManage() {
		return Procedure{}, ErrForbidden
	}
	if !ValidStatus(newStatus) {
		return Procedure{}, ErrInvalidInput
	}

	var oldStatus Status
	now := s.now()

	p, err := s.repo.Update(ctx, id, func(p Procedure) Procedure {
		oldStatus = p.Status
		p.Status = newStatus
		if strings.TrimSpace(comment) != "" {
			p.Comments = append(p.Comments, Comment{
				ID:         uuid.NewString(),
				AuthorID:   actor.ID,
				AuthorName: actor.Name,
				Text:       strings.TrimSpace(comment),
				Type:       "info",
				CreatedAt:  now,
			})
		}
		return p
	})
	if err != nil {
		return Procedure{}, err
	}

	s.bitacora.Record(audit.Entry{
		ActorName:    actor.Name,
		ActorRole:    actor.Role,
		ActionType:   audit.ActionStateChange,
		ResourceType: audit.ResourceTramite,
		ResourceID:   id,
		Description:  fmt.Sprintf("Estado actualizado de %s a %s", oldStatus, newStatus),
		Changes: map[string]any{
			"oldStatus": string(oldStatus),
			"newStatus": string(newStatus),
		},
	})

	return p, nil
}

// AdvanceStep fija el sub-estado de una etapa y sella su fecha. No encadena
// etapas ni exige orden: el avance fuera de orden está permitido por el modelo.
func (s *Service) AdvanceStep(ctx context.Context, actor Actor, id string, step StepKey, state StepState) (Procedure, error) {
	if err := requireActor(actor); err != nil {
		return Procedure{}, err
	}
	if !actor.canManage() {
		return Procedure{}, ErrForbidden
	}
	if !ValidStepKey(step) || !ValidStepState(state) {
		return Procedure{}, ErrInvalidInput
	}

	now := s.now()

	p, err := s.repo.Update(ctx, id, func(p Procedure) Procedure {
		for i := range p.Steps {
			if p.Steps[i].Step == step {
				p.Steps[i].Status = state
				t := now
				p.Steps[i].Date = &t
				break
			}
		}
		return p
	})
	if err != nil {
		return Procedure{}, err
	}

	s.bitacora.Record(audit.Entry{
		ActorName:    actor.Name,
		ActorRole:    actor.Role,
		ActionType:   audit.ActionUpdate,
		ResourceType: audit.ResourceTramite,
		ResourceID:   id,
		Description:  fmt.Sprintf("Etapa %s marcada como %s", step, state),
		Changes: map[string]any{
			"step":   string(step),
			"status": string(state),
		},
	})

	return p, nil
}

// MarkSigned marca la firma electrónica del expediente. Idempotente: si ya
// estaba firmado devuelve el estado actual sin error y sin nueva entrada en
// bitácora.
func (s *Service) MarkSigned(ctx context.Context, actor Actor, id string) (Procedure, error) {
	return s.markFlag(ctx, actor, id, flagSigned)
}

// MarkPaid marca el pago del trámite, con el mismo contrato idempotente que
// MarkSigned; son banderas independientes.
func (s *Service) MarkPaid(ctx context.Context, actor Actor, id string) (Procedure, error) {
	return s.markFlag(ctx, actor, id, flagPaid)
}

type flagKind int

const (
	flagSigned flagKind = iota
	flagPaid
)

func (s *Service) markFlag(ctx context.Context, actor Actor, id string, kind flagKind) (Procedure, error) {
	if err := requireActor(actor); err != nil {
		return Procedure{}, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Procedure{}, err
	}
	if !actor.canAccess(current) {
		return Procedure{}, ErrForbidden
	}

	changed := false
	p, err := s.repo.Update(ctx, id, func(p Procedure) Procedure {
		switch kind {
		case flagSigned:
			if !p.IsSigned {
				p.IsSigned = true
				changed = true
			}
		case flagPaid:
			if !p.IsPaid {
				p.IsPaid = true
				changed = true
			}
		}
		return p
	})
	if err != nil {
		return Procedure{}, err
	}

	if changed {
		desc := "Pago procesado exitosamente"
		resource := audit.ResourceTramite
		if kind == flagSigned {
			desc = "Documento firmado digitalmente"
			resource = audit.ResourceDocumento
		}
		s.bitacora.Record(audit.Entry{
			ActorName:    actor.Name,
			ActorRole:    actor.Role,
			ActionType:   audit.ActionUpdate,
			ResourceType: resource,
			ResourceID:   id,
			Description:  desc,
		})
	}

	return p, nil
}

// AddComment agrega una nota a la bitácora visible del trámite (append-only).
func (s *Service) AddComment(ctx context.Context, actor Actor, id, text, ctype string) (Procedure, error) {
	if err := requireActor(actor); err != nil {
		return Procedure{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Procedure{}, ErrInvalidInput
	}
	if ctype == "" {
		ctype = "info"
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Procedure{}, err
	}
	if !actor.canAccess(current) {
		return Procedure{}, ErrForbidden
	}

	now := s.now()

	p, err := s.repo.Update(ctx, id, func(p Procedure) Procedure {
		p.Comments = append(p.Comments, Comment{
			ID:         uuid.NewString(),
			AuthorID:   actor.ID,
			AuthorName: actor.Name,
			Text:       text,
			Type:       ctype,
			CreatedAt:  now,
		})
		return p
	})
	if err != nil {
		return Procedure{}, err
	}

	s.bitacora.Record(audit.Entry{
		ActorName:    actor.Name,
		ActorRole:    actor.Role,
		ActionType:   audit.ActionUpdate,
		ResourceType: audit.ResourceTramite,
		ResourceID:   id,
		Description:  "Comentario agregado al expediente",
	})

	return p, nil
}

// AddDocument agrega una referencia a un archivo ya subido (append-only, como
// los comentarios).
func (s *Service) AddDocument(ctx context.Context, actor Actor, id string, in DocumentInput) (Procedure, error) {
	if err := requireActor(actor); err != nil {
		return Procedure{}, err
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.URL) == "" {
		return Procedure{}, ErrInvalidInput
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Procedure{}, err
	}
	if !actor.canAccess(current) {
		return Procedure{}, ErrForbidden
	}

	now := s.now()
	doc := Document{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(in.Name),
		URL:        in.URL,
		MimeType:   in.MimeType,
		UploadedAt: now,
	}

	p, err := s.repo.Update(ctx, id, func(p Procedure) Procedure {
		p.Documents = append(p.Documents, doc)
		return p
	})
	if err != nil {
		return Procedure{}, err
	}

	s.bitacora.Record(audit.Entry{
		ActorName:    actor.Name,
		ActorRole:    actor.Role,
		ActionType:   audit.ActionUpdate,
		ResourceType: audit.ResourceDocumento,
		ResourceID:   id,
		Description:  fmt.Sprintf("Documento adjuntado: %s", doc.Name),
	})

	return p, nil
}
