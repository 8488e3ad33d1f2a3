package paciente

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Paciente) error
	GetByID(ctx context.Context, id uuid.UUID) (*Paciente, error)
	GetByNumeroDocumento(ctx context.Context, numero string) (*Paciente, error)
	Update(ctx context.Context, p *Paciente) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit, offset int) ([]*Paciente, int, error)

	// Direcciones
	AddDireccion(ctx context.Context, d *Direccion) error
	ListDirecciones(ctx context.Context, pacienteID uuid.UUID) ([]*Direccion, error)
	RemoveDireccion(ctx context.Context, id uuid.UUID) error

	// Telefonos
	AddTelefono(ctx context.Context, t *Telefono) error
	ListTelefonos(ctx context.Context, pacienteID uuid.UUID) ([]*Telefono, error)
	GetTelefonoPrincipal(ctx context.Context, pacienteID uuid.UUID) (*Telefono, error)
	ClearPrincipal(ctx context.Context, pacienteID uuid.UUID) error
	RemoveTelefono(ctx context.Context, id uuid.UUID) error
}
