package procedures

import "strings"

// Roles que atribuye el proveedor de identidad.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Actor es la identidad atribuida a una operación. Viene del token verificado
// (o de los headers de dev); este módulo no valida credenciales, solo aplica
// capacidades sobre la identidad recibida.
type Actor struct {
	ID   string
	Name string
	Role string
}

func (a Actor) known() bool {
	return strings.TrimSpace(a.ID) != ""
}

func (a Actor) isAdmin() bool {
	return a.Role == RoleAdmin
}

// canManage: operaciones de gestión del expediente (cambios de estado,
// avance de etapas, listados globales, bitácora, estadísticas).
func (a Actor) canManage() bool {
	return a.known() && a.isAdmin()
}

// canAccess: lectura y acciones del propio trámite. El dueño siempre puede;
// un administrador también.
func (a Actor) canAccess(p Procedure) bool {
	if !a.known() {
		return false
	}
	return a.isAdmin() || p.OwnerID == a.ID
}

// requireActor devuelve ErrUnauthorized si no hay identidad.
func requireActor(a Actor) error {
	if !a.known() {
		return ErrUnauthorized
	}
	return nil
}
