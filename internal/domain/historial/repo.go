package historial

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, h *HistorialMedico) error
	GetByID(ctx context.Context, id uuid.UUID) (*HistorialMedico, error)
	Touch(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns container rows joined with patient display fields,
	// newest consultation first. A nil medicoID lists every clinician's
	// records.
	List(ctx context.Context, medicoID *uuid.UUID, limit, offset int) ([]*Resumen, int, error)

	// Search matches a case-insensitive substring against the patient's
	// nombre, apellido and numero_documento.
	Search(ctx context.Context, query string, medicoID *uuid.UUID, limit, offset int) ([]*Resumen, int, error)

	CreateGeneral(ctx context.Context, g *HistoriaGeneral) error
	GetGeneral(ctx context.Context, historialID uuid.UUID) (*HistoriaGeneral, error)
	UpdateGeneral(ctx context.Context, g *HistoriaGeneral) error

	CreateNutricion(ctx context.Context, n *HistoriaNutricion) error
	GetNutricion(ctx context.Context, historialID uuid.UUID) (*HistoriaNutricion, error)
	UpdateNutricion(ctx context.Context, n *HistoriaNutricion) error
}
