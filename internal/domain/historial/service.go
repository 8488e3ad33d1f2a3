package historial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/histomed/histomed/internal/domain/paciente"
	"github.com/histomed/histomed/internal/platform/auth"
	"github.com/histomed/histomed/internal/platform/db"
	"github.com/histomed/histomed/internal/platform/pdf"
	"github.com/histomed/histomed/pkg/validate"
)

// ErrPermissionDenied is returned when the acting user may not touch the
// requested historial.
var ErrPermissionDenied = errors.New("permission denied")

// AggregateWriteError reports that a multi-record write failed and every
// record of the attempt was rolled back.
type AggregateWriteError struct {
	Op  string
	Err error
}

func (e *AggregateWriteError) Error() string {
	return fmt.Sprintf("historial %s failed, rolled back: %v", e.Op, e.Err)
}

func (e *AggregateWriteError) Unwrap() error { return e.Err }

// PatientRegistry is the slice of the patient service the historial
// aggregate needs.
type PatientRegistry interface {
	GetPaciente(ctx context.Context, id uuid.UUID) (*paciente.Paciente, error)
	CreatePaciente(ctx context.Context, p *paciente.Paciente, telefono *paciente.Telefono) error
}

type Service struct {
	repo      Repository
	pacientes PatientRegistry
	tx        db.TxRunner

	globalListing bool

	renderer  pdf.Renderer
	clinica   string
	subtitulo string
}

func NewService(repo Repository, pacientes PatientRegistry, tx db.TxRunner, globalListing bool) *Service {
	return &Service{repo: repo, pacientes: pacientes, tx: tx, globalListing: globalListing}
}

// SetRenderer attaches the PDF renderer and clinic branding used by the
// nutrition export.
func (s *Service) SetRenderer(r pdf.Renderer, clinica, subtitulo string) {
	s.renderer = r
	s.clinica = clinica
	s.subtitulo = subtitulo
}

// CreateInput is the aggregate creation payload. Exactly one of
// PacienteID and Paciente must be set.
type CreateInput struct {
	PacienteID *uuid.UUID
	Paciente   *paciente.Paciente
	Telefono   *paciente.Telefono
	Fecha      *time.Time
	General    HistoriaGeneral
	Nutricion  *HistoriaNutricion
}

func validateGeneral(g *HistoriaGeneral) *validate.Errors {
	var errs validate.Errors
	if g.Peso != nil && *g.Peso <= 0 {
		errs.Add("peso", "debe ser mayor que cero")
	}
	if g.Talla != nil && *g.Talla <= 0 {
		errs.Add("talla", "debe ser mayor que cero")
	}
	if len([]rune(g.TA)) > 50 {
		errs.Add("ta", "supera el maximo de 50 caracteres")
	}
	switch g.Afiliacion {
	case "", AfiliacionEstudiante, AfiliacionDocente, AfiliacionEmpleado, AfiliacionOtro:
	default:
		errs.Add("afiliacion", "valor no reconocido: %s", g.Afiliacion)
	}
	return &errs
}

func validateNutricion(n *HistoriaNutricion) *validate.Errors {
	var errs validate.Errors
	for _, f := range n.frecuencias() {
		if !f.Valor.Valid() {
			errs.Add(f.Campo, "frecuencia no reconocida: %s", f.Valor)
		}
	}
	if n.NComidasDia != nil && *n.NComidasDia < 0 {
		errs.Add("n_comidas_dia", "no puede ser negativo")
	}
	if n.NMeriendasDia != nil && *n.NMeriendasDia < 0 {
		errs.Add("n_meriendas_dia", "no puede ser negativo")
	}
	if n.HidricosVasosDia != nil && *n.HidricosVasosDia < 0 {
		errs.Add("hidricos_vasos_dia", "no puede ser negativo")
	}
	return &errs
}

// CreateHistorial creates the clinical session aggregate in one
// transaction: the patient is resolved or registered, then the container,
// the general form and optionally the nutrition form are inserted. Any
// failure leaves no partial aggregate behind.
func (s *Service) CreateHistorial(ctx context.Context, actor auth.Actor, in CreateInput) (*HistorialMedico, error) {
	var errs validate.Errors
	switch {
	case in.PacienteID == nil && in.Paciente == nil:
		errs.Add("paciente", "indique un paciente existente o los datos del nuevo paciente")
	case in.PacienteID != nil && in.Paciente != nil:
		errs.Add("paciente", "paciente_id y paciente son mutuamente excluyentes")
	case in.Paciente != nil && in.Telefono == nil:
		errs.Add("telefono", "es requerido")
	}
	errs.Fields = append(errs.Fields, validateGeneral(&in.General).Fields...)
	if in.Nutricion != nil {
		errs.Fields = append(errs.Fields, validateNutricion(in.Nutricion).Fields...)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	h := &HistorialMedico{
		MedicoNombre: actor.Name,
		Fecha:        time.Now().UTC(),
	}
	if actor.ID != uuid.Nil {
		id := actor.ID
		h.MedicoID = &id
	}
	if in.Fecha != nil {
		h.Fecha = *in.Fecha
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if in.PacienteID != nil {
			p, err := s.pacientes.GetPaciente(ctx, *in.PacienteID)
			if err != nil {
				if errors.Is(err, paciente.ErrNotFound) {
					return validate.Field("paciente_id", "el paciente no existe")
				}
				return err
			}
			h.PacienteID = p.ID
		} else {
			if err := s.pacientes.CreatePaciente(ctx, in.Paciente, in.Telefono); err != nil {
				return err
			}
			h.PacienteID = in.Paciente.ID
		}
		if err := s.repo.Create(ctx, h); err != nil {
			return err
		}
		in.General.HistorialID = h.ID
		if err := s.repo.CreateGeneral(ctx, &in.General); err != nil {
			return err
		}
		if in.Nutricion != nil {
			in.Nutricion.HistorialID = h.ID
			if err := s.repo.CreateNutricion(ctx, in.Nutricion); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var verrs *validate.Errors
		if errors.As(err, &verrs) {
			return nil, err
		}
		return nil, &AggregateWriteError{Op: "create", Err: err}
	}
	return h, nil
}

func (s *Service) GetHistorial(ctx context.Context, id uuid.UUID) (*HistorialMedico, error) {
	return s.repo.GetByID(ctx, id)
}

// Detalle is the full consultation view.
type Detalle struct {
	Historial *HistorialMedico   `json:"historial"`
	General   *HistoriaGeneral   `json:"general,omitempty"`
	Nutricion *HistoriaNutricion `json:"nutricion,omitempty"`
}

func (s *Service) GetDetalle(ctx context.Context, id uuid.UUID) (*Detalle, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &Detalle{Historial: h}
	if g, err := s.repo.GetGeneral(ctx, id); err == nil {
		d.General = g
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if n, err := s.repo.GetNutricion(ctx, id); err == nil {
		d.Nutricion = n
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return d, nil
}

// UpdateGeneral rewrites the general form of an existing historial. Only
// the clinician of record or an admin may edit.
func (s *Service) UpdateGeneral(ctx context.Context, actor auth.Actor, historialID uuid.UUID, g *HistoriaGeneral) error {
	h, err := s.repo.GetByID(ctx, historialID)
	if err != nil {
		return err
	}
	if !auth.CanManage(h.MedicoID, actor) {
		return ErrPermissionDenied
	}
	if err := validateGeneral(g).Err(); err != nil {
		return err
	}
	g.HistorialID = historialID
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateGeneral(ctx, g); err != nil {
			return err
		}
		return s.repo.Touch(ctx, historialID)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &AggregateWriteError{Op: "update", Err: err}
	}
	return nil
}

// UpsertNutricion creates the nutrition form on first write and rewrites
// it afterwards. A historial never holds two nutrition rows. Admins do
// not get an override here: only the clinician of record may write.
func (s *Service) UpsertNutricion(ctx context.Context, actor auth.Actor, historialID uuid.UUID, n *HistoriaNutricion) error {
	h, err := s.repo.GetByID(ctx, historialID)
	if err != nil {
		return err
	}
	if !auth.IsClinicianOfRecord(h.MedicoID, actor) {
		return ErrPermissionDenied
	}
	if err := validateNutricion(n).Err(); err != nil {
		return err
	}
	n.HistorialID = historialID
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetNutricion(ctx, historialID)
		switch {
		case errors.Is(err, ErrNotFound):
			if err := s.repo.CreateNutricion(ctx, n); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			n.ID = existing.ID
			if err := s.repo.UpdateNutricion(ctx, n); err != nil {
				return err
			}
		}
		return s.repo.Touch(ctx, historialID)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &AggregateWriteError{Op: "upsert nutricion", Err: err}
	}
	return nil
}

// DeleteHistorial removes the container; sub-records and documents go
// with it via the schema's cascades.
func (s *Service) DeleteHistorial(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanManage(h.MedicoID, actor) {
		return ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}

// scope resolves the listing filter. "all" is honored only when global
// listing is enabled; everything else collapses to the actor's own
// records.
func (s *Service) scope(actor auth.Actor, filter string) *uuid.UUID {
	if filter == "all" && s.globalListing {
		return nil
	}
	id := actor.ID
	return &id
}

func (s *Service) List(ctx context.Context, actor auth.Actor, filter string, limit, offset int) ([]*Resumen, int, error) {
	return s.repo.List(ctx, s.scope(actor, filter), limit, offset)
}

func (s *Service) Search(ctx context.Context, actor auth.Actor, query, filter string, limit, offset int) ([]*Resumen, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, validate.Field("q", "es requerido")
	}
	return s.repo.Search(ctx, query, s.scope(actor, filter), limit, offset)
}

// RenderNutricionPDF renders the nutrition history as a full-page
// printable document.
func (s *Service) RenderNutricionPDF(ctx context.Context, actor auth.Actor, historialID uuid.UUID) ([]byte, string, error) {
	h, err := s.repo.GetByID(ctx, historialID)
	if err != nil {
		return nil, "", err
	}
	if !auth.CanManage(h.MedicoID, actor) {
		return nil, "", ErrPermissionDenied
	}
	n, err := s.repo.GetNutricion(ctx, historialID)
	if err != nil {
		return nil, "", err
	}
	p, err := s.pacientes.GetPaciente(ctx, h.PacienteID)
	if err != nil {
		return nil, "", err
	}

	doc := &pdf.Document{
		Clinica:   s.clinica,
		Subtitulo: s.subtitulo,
		Titulo:    "Historia de Nutricion",
		Meta: []pdf.KV{
			{Label: "Paciente", Value: p.NombreCompleto()},
			{Label: "Cedula", Value: p.NumeroDocumento},
			{Label: "Fecha", Value: h.Fecha.Format("02/01/2006")},
			{Label: "Medico", Value: h.MedicoNombre},
		},
		Sections: nutricionSections(n),
		Firma:    h.MedicoNombre,
	}
	out, err := s.renderer.Render(doc)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("%s_%s.pdf", p.NumeroDocumento, h.Fecha.Format("2006-01-02"))
	return out, filename, nil
}
