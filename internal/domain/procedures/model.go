package procedures

import "time"

// Status define los estados generales visibles de un trámite.
// @Enum received, in_review, approved, rejected
type Status string

const (
	StatusReceived Status = "received"
	StatusInReview Status = "in_review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusReceived, StatusInReview, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// StepKey identifica las 8 etapas internas fijas de procesamiento.
type StepKey string

const (
	StepIngreso      StepKey = "ingreso"      // recepción de la solicitud
	StepAsignacion   StepKey = "asignacion"   // asignación de número de expediente
	StepAnalisis     StepKey = "analisis"     // análisis legal y técnico
	StepRevision     StepKey = "revision"     // revisión del proyecto de resolución
	StepFirma        StepKey = "firma"        // firma electrónica avanzada
	StepElaboracion  StepKey = "elaboracion"  // elaboración y aprobación de resolución
	StepNotificacion StepKey = "notificacion" // notificación de la resolución
	StepCierre       StepKey = "cierre"       // cierre del expediente
)

// StepOrder es el orden canónico de las etapas. Todo trámite tiene exactamente
// una entrada por etapa, en este orden.
var StepOrder = []StepKey{
	StepIngreso,
	StepAsignacion,
	StepAnalisis,
	StepRevision,
	StepFirma,
	StepElaboracion,
	StepNotificacion,
	StepCierre,
}

func ValidStepKey(k StepKey) bool {
	for _, s := range StepOrder {
		if s == k {
			return true
		}
	}
	return false
}

// StepState define el sub-estado de una etapa.
// @Enum pending, in_progress, completed
type StepState string

const (
	StepPending    StepState = "pending"
	StepInProgress StepState = "in_progress"
	StepCompleted  StepState = "completed"
)

func ValidStepState(s StepState) bool {
	switch s {
	case StepPending, StepInProgress, StepCompleted:
		return true
	default:
		return false
	}
}

// StepStatus es el registro de avance de una etapa individual.
type StepStatus struct {
	Step       StepKey
	Status     StepState
	Date       *time.Time
	AssignedTo string
}

// Document es una referencia opaca a un archivo almacenado fuera del servicio.
type Document struct {
	ID         string
	Name       string
	URL        string
	MimeType   string
	UploadedAt time.Time
}

// Comment es una nota visible en la bitácora del trámite. Solo se agregan,
// nunca se editan ni se borran.
type Comment struct {
	ID         string
	AuthorID   string
	AuthorName string
	Text       string
	Type       string // info, request, followup (solo para el ícono en UI)
	CreatedAt  time.Time
}

// Procedure representa un trámite presentado ante DISERCOMI.
type Procedure struct {
	ID           string
	TrackingCode string
	OwnerID      string

	Type   string
	Status Status
	Steps  []StepStatus

	CompanyName              string
	CompanyTaxID             string
	Address                  string
	Sector                   string
	LegalRepName             string
	LegalRepID               string
	CommercialRegistryNumber string
	ContactEmail             string
	ContactPhone             string

	Documents []Document
	Comments  []Comment

	IsPaid   bool
	IsSigned bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentCategory identifica los cupos de documentos requeridos al crear
// una calificación bajo el Decreto 29-89.
type DocumentCategory string

const (
	DocBusinessLicense     DocumentCategory = "businessLicense"     // patente de comercio
	DocTaxRegistry         DocumentCategory = "taxRegistry"         // RTU actualizado
	DocLegalRepID          DocumentCategory = "legalRepId"          // DPI del representante legal
	DocFinancialStatements DocumentCategory = "financialStatements" // estados financieros
	DocInvestmentPlan      DocumentCategory = "investmentPlan"      // plan de inversión
)

// RequiredDocuments son las cinco categorías obligatorias del trámite insignia.
var RequiredDocuments = []DocumentCategory{
	DocBusinessLicense,
	DocTaxRegistry,
	DocLegalRepID,
	DocFinancialStatements,
	DocInvestmentPlan,
}

// Sector define los sectores productivos admitidos en el formulario.
type SectorKey string

const (
	SectorIndustria   SectorKey = "industria"
	SectorMaquila     SectorKey = "maquila"
	SectorManufactura SectorKey = "manufactura"
	SectorServicios   SectorKey = "servicios"
)

var Sectors = []SectorKey{SectorIndustria, SectorMaquila, SectorManufactura, SectorServicios}

func ValidSector(s string) bool {
	for _, k := range Sectors {
		if string(k) == s {
			return true
		}
	}
	return false
}

// Tipos de trámite del catálogo observado (texto tal como lo muestra el portal).
const (
	TypeCalificacion29_89 = "Calificación para el Decreto 29-89"
	TypeProrrogaInicio    = "Prórroga de inicio de operaciones"
	TypeCambioRazonSocial = "Cambio de razón social"
	TypeRegistroDireccion = "Registro de dirección fiscal"
)

// NewSteps crea las 8 etapas en orden canónico, todas en pending.
func NewSteps() []StepStatus {
	out := make([]StepStatus, 0, len(StepOrder))
	for _, k := range StepOrder {
		out = append(out, StepStatus{Step: k, Status: StepPending})
	}
	return out
}
