package procedures

import (
	"context"
	"testing"
	"time"

	"disercomi-tramites/internal/domain/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo es un repositorio en memoria mínimo para ejercitar el servicio sin
// depender de los adaptadores reales.
type fakeRepo struct {
	byID   map[string]Procedure
	byCode map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:   map[string]Procedure{},
		byCode: map[string]string{},
	}
}

func (r *fakeRepo) Insert(_ context.Context, p Procedure) error {
	if _, ok := r.byID[p.ID]; ok {
		return ErrDuplicateID
	}
	if _, ok := r.byCode[p.TrackingCode]; ok {
		return ErrDuplicateTrackingCode
	}
	r.byID[p.ID] = p
	r.byCode[p.TrackingCode] = p.ID
	return nil
}

func (r *fakeRepo) FindAll(_ context.Context) ([]Procedure, error) {
	out := make([]Procedure, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) FindByOwner(_ context.Context, ownerID string) ([]Procedure, error) {
	out := make([]Procedure, 0)
	for _, p := range r.byID {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (Procedure, error) {
	p, ok := r.byID[id]
	if !ok {
		return Procedure{}, ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) FindByTrackingCode(_ context.Context, code string) (Procedure, error) {
	id, ok := r.byCode[code]
	if !ok {
		return Procedure{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *fakeRepo) Update(_ context.Context, id string, fn Mutator) (Procedure, error) {
	current, ok := r.byID[id]
	if !ok {
		return Procedure{}, ErrNotFound
	}
	next := fn(current)
	next.ID = current.ID
	next.TrackingCode = current.TrackingCode
	next.OwnerID = current.OwnerID
	next.CreatedAt = current.CreatedAt
	r.byID[id] = next
	return next, nil
}

// fakeRecorder captura las entradas de bitácora de forma síncrona.
type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(e audit.Entry) {
	f.entries = append(f.entries, e)
}

var (
	userActor  = Actor{ID: "user-1", Name: "María López", Role: RoleUser}
	adminActor = Actor{ID: "admin-1", Name: "Carlos Ruiz", Role: RoleAdmin}
)

func newTestService(repo Repository, rec AuditRecorder) *Service {
	s := NewService(repo, rec)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	return s
}

func validInput() CreateInput {
	docs := make([]DocumentInput, 0, len(RequiredDocuments))
	for _, cat := range RequiredDocuments {
		docs = append(docs, DocumentInput{
			Category: cat,
			Name:     string(cat) + ".pdf",
			URL:      "https://storage.example.com/" + string(cat) + ".pdf",
			MimeType: "application/pdf",
		})
	}
	return CreateInput{
		Type:                     TypeCalificacion29_89,
		CompanyName:              "Exportadora Maya S.A.",
		CompanyTaxID:             "548796-K",
		Address:                  "Zona 4, Ciudad de Guatemala",
		Sector:                   string(SectorMaquila),
		LegalRepName:             "Juan Pérez",
		LegalRepID:               "1234567890101",
		CommercialRegistryNumber: "RM-2020-4587",
		ContactEmail:             "gerencia@exportadoramaya.gt",
		ContactPhone:             "+502 2334-5678",
		Documents:                docs,
	}
}

func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	rec := &fakeRecorder{}
	svc := newTestService(repo, rec)

	p, err := svc.Create(context.Background(), userActor, validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, userActor.ID, p.OwnerID)
	assert.Equal(t, StatusReceived, p.Status)
	assert.Len(t, p.Documents, len(RequiredDocuments))

	// La etapa de ingreso queda completada con fecha; el resto en pending.
	require.Len(t, p.Steps, len(StepOrder))
	assert.Equal(t, StepIngreso, p.Steps[0].Step)
	assert.Equal(t, StepCompleted, p.Steps[0].Status)
	require.NotNil(t, p.Steps[0].Date)
	for _, s := range p.Steps[1:] {
		assert.Equal(t, StepPending, s.Status, "etapa %s", s.Step)
		assert.Nil(t, s.Date, "etapa %s", s.Step)
	}

	assert.Regexp(t, `^DIS-[0-9A-Z]+-[0-9A-Z]{3}$`, p.TrackingCode)

	// Persistido y recuperable por código.
	got, err := repo.FindByTrackingCode(context.Background(), p.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, audit.ActionCreate, rec.entries[0].ActionType)
	assert.Equal(t, audit.ResourceTramite, rec.entries[0].ResourceType)
	assert.Equal(t, p.ID, rec.entries[0].ResourceID)
}

func TestService_Create_ValidationFails(t *testing.T) {
	repo := newFakeRepo()
	rec := &fakeRecorder{}
	svc := newTestService(repo, rec)

	in := validInput()
	in.LegalRepID = ""
	// Sin el DPI del representante tampoco en los documentos.
	docs := in.Documents[:0]
	for _, d := range in.Documents {
		if d.Category != DocLegalRepID {
			docs = append(docs, d)
		}
	}
	in.Documents = docs

	_, err := svc.Create(context.Background(), userActor, in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "legalRepId")
	assert.Contains(t, verr.Fields, "documents.legalRepId")

	// No se persistió nada parcial ni se emitió bitácora.
	all, _ := repo.FindAll(context.Background())
	assert.Empty(t, all)
	assert.Empty(t, rec.entries)
}

func TestService_Create_InvalidContactAndSector(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeRecorder{})

	in := validInput()
	in.ContactEmail = "no-es-correo"
	in.ContactPhone = "123"
	in.Sector = "mineria"

	_, err := svc.Create(context.Background(), userActor, in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "contactEmail")
	assert.Contains(t, verr.Fields, "contactPhone")
	assert.Contains(t, verr.Fields, "sector")
}

func TestService_Create_RequiresActor(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeRecorder{})

	_, err := svc.Create(context.Background(), Actor{}, validInput())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestService_Create_RetriesOnTrackingCollision(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRecorder{})

	// Generador determinista: produce el mismo código dos veces y luego uno
	// nuevo, simulando una colisión real.
	codes := []string{"DIS-AAA-111", "DIS-AAA-111", "DIS-BBB-222"}
	i := 0
	svc.genCode = func() string {
		c := codes[i%len(codes)]
		i++
		return c
	}

	first, err := svc.Create(context.Background(), userActor, validInput())
	require.NoError(t, err)
	assert.Equal(t, "DIS-AAA-111", first.TrackingCode)

	second, err := svc.Create(context.Background(), userActor, validInput())
	require.NoError(t, err)
	assert.Equal(t, "DIS-BBB-222", second.TrackingCode)
}

func TestService_Create_UniqueTrackingCodes(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRecorder{})

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		p, err := svc.Create(context.Background(), userActor, validInput())
		require.NoError(t, err)
		require.False(t, seen[p.TrackingCode], "código repetido: %s", p.TrackingCode)
		seen[p.TrackingCode] = true
	}
}

func TestService_UpdateStatus(t *testing.T) {
	repo := newFakeRepo()
	rec := &fakeRecorder{}
	svc := newTestService(repo, rec)

	p, err := svc.Create(context.Background(), userActor, validInput())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), adminActor, p.ID, StatusApproved, "Cumple todos los requisitos")
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, updated.Status)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "Cumple todos los requisitos", updated.Comments[0].Text)
	assert.Equal(t, adminActor.Name, updated.Comments[0].AuthorName)

	// Create + StateChange.
	require.Len(t, rec.entries, 2)
	last := rec.entries[1]
	assert.Equal(t, audit.ActionStateChange, last.ActionType)
	assert.Equal(t, "received", last.Changes["oldStatus"])
	assert.Equal(t, "approved", last.Changes["newStatus"])
}

func TestService_UpdateStatus_AllowsAnyTransition(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRecorder{})

	p, err := svc.Create(context.Background(), userActor, validInput())
	require.NoError(t, err)

	// Sin grafo de transiciones: cualquier estado es alcanzable desde
	// cualquier otro, incluso regresar de un estado terminal.
	for _, next := range []Status{StatusApproved, StatusReceived, StatusRejected, StatusInReview} {
		updated, err := svc.UpdateStatus(context.Background(), adminActor, p.ID, next, "")
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}
}

func TestService_UpdateStatus_Forbidden(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRecorder{})

	p, err := svc.Create(context.Background(), userActor, validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), userActor, p.ID, StatusApproved, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateStatus(context.Background(), adminActor, p.ID, Status("archived"), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_AdvanceStep_OutOfOrder(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRecorder{})

	p, err := svc.Create(context.Background(), userActor, validInput())
	require.NoError(t, err)

	// Marcar cierre con todo lo intermedio pendiente está permitido.
	updated, err := svc.AdvanceStep(context.Background(), adminActor, p.ID, StepCierre, StepCompleted)
	require.NoError(t, err)

	var cierre, analisis StepStatus
	for _, s := range updated.Steps {
		switch s.Step {
		case StepCierre:
			cierre = s
		case StepAnalisis:
			analisis = s
		}
	}
	assert.Equal(t, StepCompleted, cierre.Status)
	require.NotNil(t, cierre.Date)
	assert.Equal(t, StepPending, analisis.Status)

	_, err = svc.AdvanceStep(context.Background(), adminActor, p.ID, StepKey("auditoria"), StepCompleted)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_MarkSigned_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	rec := &fakeRecorder{}
	svc := newTestService(repo, rec)

	p, err := svc.Create(context.Background(), userActor, validInput())
	require.NoError(t, err)

	first, err := svc.MarkSigned(context.Background(), userActor, p.ID)
	require.NoError(t, err)
	assert.True(t, first.IsSigned)

	second, err := svc.MarkSigned(context.Background(), userActor, p.ID)
	require.NoError(t, err)
	assert.True(t, second.IsSigned)

	// Create + una sola entrada de firma: la segunda llamada no audita.
	require.Len(t, rec.entries, 2)
	assert.Equal(t, "Documento firmado digitalmente", rec.entries[1].Description)
	assert.Equal(t, audit.ResourceDocumento, rec.entries[1].ResourceType)
}

func TestService_MarkPaid_IndependentOfSigned(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRecorder{})

	p, err := svc.Create(context.Background(), userActor, validInput())
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), userActor, p.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.False(t, paid.IsSigned)
}

func TestService_AddComment(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRecorder{})

	p, err := svc.Create(context.Background(), userActor, validInput())
	require.NoError(t, err)

	updated, err := svc.AddComment(context.Background(), userActor, p.ID, "Adjunto corregido", "followup")
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "followup", updated.Comments[0].Type)

	_, err = svc.AddComment(context.Background(), userActor, p.ID, "   ", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Un usuario ajeno al expediente no puede comentar.
	stranger := Actor{ID: "user-2", Name: "Otro", Role: RoleUser}
	_, err = svc.AddComment(context.Background(), stranger, p.ID, "hola", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_GetByTrackingCode_Public(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRecorder{})

	p, err := svc.Create(context.Background(), userActor, validInput())
	require.NoError(t, err)

	// Sin actor: el código de rastreo es la credencial.
	got, err := svc.GetByTrackingCode(context.Background(), p.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.GetByTrackingCode(context.Background(), "NONEXISTENT-CODE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListAndAccess(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRecorder{})

	mine, err := svc.Create(context.Background(), userActor, validInput())
	require.NoError(t, err)

	other := Actor{ID: "user-2", Name: "Otra Empresa", Role: RoleUser}
	_, err = svc.Create(context.Background(), other, validInput())
	require.NoError(t, err)

	own, err := svc.ListForOwner(context.Background(), userActor)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	all, err := svc.ListAll(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListAll(context.Background(), userActor)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetByID(context.Background(), other, mine.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.GetByID(context.Background(), adminActor, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)
}
