package static

import (
	"context"

	"disercomi-tramites/internal/ports/registry"
)

// Validator es la implementación de desarrollo: responde con los mismos datos
// fijos que usaba el portal en modo demo, sin salir a la red.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (Validator) ValidateDPI(ctx context.Context, dpi string) (registry.DPIResult, error) {
	if dpi == "1234567890101" {
		return registry.DPIResult{IsValid: true, Name: "Juan Pérez", Status: "vigente"}, nil
	}
	return registry.DPIResult{IsValid: false, Status: "no encontrado"}, nil
}

func (Validator) ValidateNIT(ctx context.Context, nit string) (registry.NITResult, error) {
	if nit == "548796-K" {
		return registry.NITResult{IsValid: true, CompanyName: "Exportadora Maya S.A.", Status: "activo"}, nil
	}
	return registry.NITResult{IsValid: false, Status: "no encontrado"}, nil
}
