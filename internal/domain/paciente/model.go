package paciente

import (
	"time"

	"github.com/google/uuid"
)

// Genero values accepted for a patient record.
const (
	GeneroMasculino = "M"
	GeneroFemenino  = "F"
)

// Field length constraints carried over from the registry's schema.
const (
	DocumentoLen    = 8
	TelefonoLen     = 11
	NombreMaxLen    = 30
	ApellidoMaxLen  = 20
	CodigoPostalLen = 4
)

// Paciente maps to the paciente table.
type Paciente struct {
	ID              uuid.UUID `db:"id" json:"id"`
	NumeroDocumento string    `db:"numero_documento" json:"numero_documento"`
	Nombre          string    `db:"nombre" json:"nombre"`
	Apellido        string    `db:"apellido" json:"apellido"`
	FechaNacimiento time.Time `db:"fecha_nacimiento" json:"fecha_nacimiento"`
	Genero          string    `db:"genero" json:"genero"`
	Email           *string   `db:"email" json:"email,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// NombreCompleto returns the patient's display name.
func (p *Paciente) NombreCompleto() string {
	return p.Nombre + " " + p.Apellido
}

// Direccion maps to the direccion table.
type Direccion struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PacienteID   uuid.UUID `db:"paciente_id" json:"paciente_id"`
	Direccion    string    `db:"direccion" json:"direccion"`
	CodigoPostal *string   `db:"codigo_postal" json:"codigo_postal,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Telefono maps to the telefono table. At most one telefono per patient may
// be flagged principal; the service clears the previous principal on write.
type Telefono struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PacienteID  uuid.UUID `db:"paciente_id" json:"paciente_id"`
	Tipo        *string   `db:"tipo" json:"tipo,omitempty"`
	Numero      string    `db:"numero" json:"numero"`
	EsPrincipal bool      `db:"es_principal" json:"es_principal"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
