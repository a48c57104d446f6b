package audit

import "time"

// ActionType clasifica la acción registrada en la bitácora.
type ActionType string

const (
	ActionLogin       ActionType = "Login"
	ActionLogout      ActionType = "Logout"
	ActionView        ActionType = "View"
	ActionCreate      ActionType = "Create"
	ActionUpdate      ActionType = "Update"
	ActionDelete      ActionType = "Delete"
	ActionStateChange ActionType = "StateChange"
	ActionDownload    ActionType = "Download"
	ActionError       ActionType = "Error"
	ActionOther       ActionType = "Other"
)

// Tipos de recurso usados por el portal (etiquetas tal como las muestra la
// pantalla de bitácora).
const (
	ResourceTramite   = "Trámite"
	ResourceDocumento = "Documento"
	ResourceUsuario   = "Usuario"
	ResourceSistema   = "Sistema"
)

// Entry es un registro inmutable de la bitácora: se crea una vez y nunca se
// actualiza ni se borra.
type Entry struct {
	ID           string
	Timestamp    time.Time
	ActorName    string
	ActorRole    string
	ActionType   ActionType
	ResourceType string
	ResourceID   string
	Description  string
	Changes      map[string]any
	IPAddress    string
	DeviceInfo   string
}
