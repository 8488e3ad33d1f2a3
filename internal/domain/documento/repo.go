package documento

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateJustificativo(ctx context.Context, d *Justificativo) error
	GetJustificativo(ctx context.Context, id uuid.UUID) (*Justificativo, error)
	DeleteJustificativo(ctx context.Context, id uuid.UUID) error

	CreateReferencia(ctx context.Context, d *Referencia) error
	GetReferencia(ctx context.Context, id uuid.UUID) (*Referencia, error)
	DeleteReferencia(ctx context.Context, id uuid.UUID) error

	CreateReposo(ctx context.Context, d *Reposo) error
	GetReposo(ctx context.Context, id uuid.UUID) (*Reposo, error)
	DeleteReposo(ctx context.Context, id uuid.UUID) error

	CreateRecipe(ctx context.Context, d *Recipe) error
	GetRecipe(ctx context.Context, id uuid.UUID) (*Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error

	ListByHistorial(ctx context.Context, historialID uuid.UUID) (*Documentos, error)
}
