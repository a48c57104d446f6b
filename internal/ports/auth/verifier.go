package auth

import "context"

// AuthVerifier verifica el token de sesión del portal contra el proveedor de
// identidad y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
