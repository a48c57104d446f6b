package auth

// Claims es la identidad extraída del token por el proveedor externo. El rol
// viene tal cual lo atribuye el gateway; este servicio no administra usuarios.
type Claims struct {
	UserID string
	Name   string
	Email  string
	Role   string // user | admin
}
