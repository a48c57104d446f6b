package registry

import "context"

// DPIResult es la respuesta de la validación de un DPI contra RENAP.
type DPIResult struct {
	IsValid bool
	Name    string
	Status  string // vigente | no encontrado
}

// NITResult es la respuesta de la validación de un NIT contra SAT.
type NITResult struct {
	IsValid     bool
	CompanyName string
	Status      string // activo | no encontrado
}

// Validator consulta los registros estatales a través del gateway de
// interoperabilidad. Es un colaborador externo: este servicio solo consume
// los resultados, nunca los almacena.
type Validator interface {
	ValidateDPI(ctx context.Context, dpi string) (DPIResult, error)
	ValidateNIT(ctx context.Context, nit string) (NITResult, error)
}
