package documento

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies one of the four exportable document types.
type Kind string

const (
	KindJustificativo Kind = "justificativo"
	KindReferencia    Kind = "referencia"
	KindReposo        Kind = "reposo"
	KindRecipe        Kind = "recipe"
)

// ParseKind validates a kind taken from the URL.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindJustificativo, KindReferencia, KindReposo, KindRecipe:
		return Kind(s), true
	}
	return "", false
}

// ReferidoAMaxLen is the hard cap on the referral target. Longer values
// are truncated, never rejected.
const ReferidoAMaxLen = 40

// Justificativo certifies attendance for a time window on the
// consultation day. Hours are "HH:MM" strings, empty when not recorded.
type Justificativo struct {
	ID             uuid.UUID `db:"id" json:"id"`
	HistorialID    uuid.UUID `db:"historial_id" json:"historial_id"`
	MotivoConsulta string    `db:"motivo_consulta" json:"motivo_consulta"`
	HoraEntrada    string    `db:"hora_entrada" json:"hora_entrada"`
	HoraSalida     string    `db:"hora_salida" json:"hora_salida"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Referencia refers the patient to another service.
type Referencia struct {
	ID               uuid.UUID `db:"id" json:"id"`
	HistorialID      uuid.UUID `db:"historial_id" json:"historial_id"`
	ReferidoA        string    `db:"referido_a" json:"referido_a"`
	MotivoReferencia string    `db:"motivo_referencia" json:"motivo_referencia"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Reposo prescribes rest. The three dates are independent; no ordering
// is enforced between them.
type Reposo struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	HistorialID  uuid.UUID  `db:"historial_id" json:"historial_id"`
	Consulta     string     `db:"consulta" json:"consulta"`
	Diagnostico  string     `db:"diagnostico" json:"diagnostico"`
	DuracionDias *int       `db:"duracion_dias" json:"duracion_dias,omitempty"`
	FechaInicio  *time.Time `db:"fecha_inicio" json:"fecha_inicio,omitempty"`
	FechaFin     *time.Time `db:"fecha_fin" json:"fecha_fin,omitempty"`
	DebeVolver   *time.Time `db:"debe_volver" json:"debe_volver,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Recipe holds free-text prescription indications.
type Recipe struct {
	ID          uuid.UUID `db:"id" json:"id"`
	HistorialID uuid.UUID `db:"historial_id" json:"historial_id"`
	TextoRecipe string    `db:"texto_recipe" json:"texto_recipe"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Documentos groups every document attached to one historial.
type Documentos struct {
	Justificativos []*Justificativo `json:"justificativos"`
	Referencias    []*Referencia    `json:"referencias"`
	Reposos        []*Reposo        `json:"reposos"`
	Recipes        []*Recipe        `json:"recipes"`
}
