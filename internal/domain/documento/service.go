package documento

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/histomed/histomed/internal/domain/historial"
	"github.com/histomed/histomed/internal/domain/paciente"
	"github.com/histomed/histomed/internal/platform/auth"
	"github.com/histomed/histomed/internal/platform/pdf"
	"github.com/histomed/histomed/pkg/validate"
)

// ErrPermissionDenied is returned when the acting user may not touch the
// parent historial.
var ErrPermissionDenied = errors.New("permission denied")

// HistorialResolver resolves the parent consultation a document hangs
// off. Documents never carry patient or clinician identity themselves.
type HistorialResolver interface {
	GetHistorial(ctx context.Context, id uuid.UUID) (*historial.HistorialMedico, error)
}

// PatientResolver supplies patient display fields for rendering.
type PatientResolver interface {
	GetPaciente(ctx context.Context, id uuid.UUID) (*paciente.Paciente, error)
}

type Service struct {
	repo        Repository
	historiales HistorialResolver
	pacientes   PatientResolver

	renderer  pdf.Renderer
	clinica   string
	subtitulo string
}

func NewService(repo Repository, historiales HistorialResolver, pacientes PatientResolver) *Service {
	return &Service{repo: repo, historiales: historiales, pacientes: pacientes}
}

// SetRenderer attaches the PDF renderer and clinic branding.
func (s *Service) SetRenderer(r pdf.Renderer, clinica, subtitulo string) {
	s.renderer = r
	s.clinica = clinica
	s.subtitulo = subtitulo
}

// authorize loads the parent and checks that the actor may manage it.
func (s *Service) authorize(ctx context.Context, actor auth.Actor, historialID uuid.UUID) (*historial.HistorialMedico, error) {
	h, err := s.historiales.GetHistorial(ctx, historialID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManage(h.MedicoID, actor) {
		return nil, ErrPermissionDenied
	}
	return h, nil
}

func validHora(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

func (s *Service) CreateJustificativo(ctx context.Context, actor auth.Actor, historialID uuid.UUID, d *Justificativo) error {
	var errs validate.Errors
	if len([]rune(d.MotivoConsulta)) > 255 {
		errs.Add("motivo_consulta", "supera el maximo de 255 caracteres")
	}
	if d.HoraEntrada != "" && !validHora(d.HoraEntrada) {
		errs.Add("hora_entrada", "debe tener formato HH:MM")
	}
	if d.HoraSalida != "" && !validHora(d.HoraSalida) {
		errs.Add("hora_salida", "debe tener formato HH:MM")
	}
	if err := errs.Err(); err != nil {
		return err
	}
	if _, err := s.authorize(ctx, actor, historialID); err != nil {
		return err
	}
	d.HistorialID = historialID
	return s.repo.CreateJustificativo(ctx, d)
}

func (s *Service) CreateReferencia(ctx context.Context, actor auth.Actor, historialID uuid.UUID, d *Referencia) error {
	// Overlong referral targets are truncated, not rejected.
	d.ReferidoA = validate.Truncate(strings.TrimSpace(d.ReferidoA), ReferidoAMaxLen)
	if _, err := s.authorize(ctx, actor, historialID); err != nil {
		return err
	}
	d.HistorialID = historialID
	return s.repo.CreateReferencia(ctx, d)
}

func (s *Service) CreateReposo(ctx context.Context, actor auth.Actor, historialID uuid.UUID, d *Reposo) error {
	var errs validate.Errors
	if len([]rune(d.Consulta)) > 255 {
		errs.Add("consulta", "supera el maximo de 255 caracteres")
	}
	if len([]rune(d.Diagnostico)) > 255 {
		errs.Add("diagnostico", "supera el maximo de 255 caracteres")
	}
	if d.DuracionDias != nil && *d.DuracionDias < 0 {
		errs.Add("duracion_dias", "no puede ser negativo")
	}
	if err := errs.Err(); err != nil {
		return err
	}
	if _, err := s.authorize(ctx, actor, historialID); err != nil {
		return err
	}
	d.HistorialID = historialID
	return s.repo.CreateReposo(ctx, d)
}

func (s *Service) CreateRecipe(ctx context.Context, actor auth.Actor, historialID uuid.UUID, d *Recipe) error {
	if strings.TrimSpace(d.TextoRecipe) == "" {
		return validate.Field("texto_recipe", "es requerido")
	}
	if _, err := s.authorize(ctx, actor, historialID); err != nil {
		return err
	}
	d.HistorialID = historialID
	return s.repo.CreateRecipe(ctx, d)
}

// resolve loads a document of the given kind and returns its parent id.
func (s *Service) resolve(ctx context.Context, kind Kind, id uuid.UUID) (interface{}, uuid.UUID, error) {
	switch kind {
	case KindJustificativo:
		d, err := s.repo.GetJustificativo(ctx, id)
		if err != nil {
			return nil, uuid.Nil, err
		}
		return d, d.HistorialID, nil
	case KindReferencia:
		d, err := s.repo.GetReferencia(ctx, id)
		if err != nil {
			return nil, uuid.Nil, err
		}
		return d, d.HistorialID, nil
	case KindReposo:
		d, err := s.repo.GetReposo(ctx, id)
		if err != nil {
			return nil, uuid.Nil, err
		}
		return d, d.HistorialID, nil
	case KindRecipe:
		d, err := s.repo.GetRecipe(ctx, id)
		if err != nil {
			return nil, uuid.Nil, err
		}
		return d, d.HistorialID, nil
	}
	return nil, uuid.Nil, fmt.Errorf("unknown document kind %q", kind)
}

// Delete removes a document permanently. Deleting twice reports not
// found on the second call.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, kind Kind, id uuid.UUID) error {
	_, historialID, err := s.resolve(ctx, kind, id)
	if err != nil {
		return err
	}
	if _, err := s.authorize(ctx, actor, historialID); err != nil {
		return err
	}
	switch kind {
	case KindJustificativo:
		return s.repo.DeleteJustificativo(ctx, id)
	case KindReferencia:
		return s.repo.DeleteReferencia(ctx, id)
	case KindReposo:
		return s.repo.DeleteReposo(ctx, id)
	case KindRecipe:
		return s.repo.DeleteRecipe(ctx, id)
	}
	return fmt.Errorf("unknown document kind %q", kind)
}

func (s *Service) ListByHistorial(ctx context.Context, historialID uuid.UUID) (*Documentos, error) {
	if _, err := s.historiales.GetHistorial(ctx, historialID); err != nil {
		return nil, err
	}
	return s.repo.ListByHistorial(ctx, historialID)
}

// DocumentosDeHistorial adapts ListByHistorial for the historial detail
// view.
func (s *Service) DocumentosDeHistorial(ctx context.Context, historialID uuid.UUID) (interface{}, error) {
	return s.repo.ListByHistorial(ctx, historialID)
}

const fechaCorta = "02/01/2006"

// RenderPDF renders a document for printing. The patient, clinician and
// date come from the parent historial at render time.
func (s *Service) RenderPDF(ctx context.Context, actor auth.Actor, kind Kind, id uuid.UUID) ([]byte, string, error) {
	raw, historialID, err := s.resolve(ctx, kind, id)
	if err != nil {
		return nil, "", err
	}
	h, err := s.authorize(ctx, actor, historialID)
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
		Meta: []pdf.KV{
			{Label: "Paciente", Value: p.NombreCompleto()},
			{Label: "Cedula", Value: p.NumeroDocumento},
			{Label: "Fecha", Value: h.Fecha.Format(fechaCorta)},
			{Label: "Medico", Value: h.MedicoNombre},
		},
		Firma: h.MedicoNombre,
	}

	switch d := raw.(type) {
	case *Justificativo:
		doc.Titulo = "Justificativo Medico"
		horario := ""
		if d.HoraEntrada != "" || d.HoraSalida != "" {
			horario = fmt.Sprintf("de %s a %s", d.HoraEntrada, d.HoraSalida)
		}
		var rows []pdf.KV
		if d.MotivoConsulta != "" {
			rows = append(rows, pdf.KV{Label: "Motivo de consulta", Value: d.MotivoConsulta})
		}
		if horario != "" {
			rows = append(rows, pdf.KV{Label: "Horario", Value: horario})
		}
		doc.Sections = []pdf.Section{{Rows: rows,
			Text: fmt.Sprintf("Se hace constar que el/la paciente asistio a consulta el dia %s.", h.Fecha.Format(fechaCorta))}}
	case *Referencia:
		doc.Titulo = "Referencia"
		doc.Sections = []pdf.Section{{
			Rows: []pdf.KV{{Label: "Referido a", Value: d.ReferidoA}},
			Text: d.MotivoReferencia,
		}}
	case *Reposo:
		doc.Titulo = "Reposo Medico"
		var rows []pdf.KV
		if d.Consulta != "" {
			rows = append(rows, pdf.KV{Label: "Consulta", Value: d.Consulta})
		}
		if d.Diagnostico != "" {
			rows = append(rows, pdf.KV{Label: "Diagnostico", Value: d.Diagnostico})
		}
		if d.DuracionDias != nil {
			rows = append(rows, pdf.KV{Label: "Duracion", Value: fmt.Sprintf("%d dias", *d.DuracionDias)})
		}
		if d.FechaInicio != nil {
			rows = append(rows, pdf.KV{Label: "Del", Value: d.FechaInicio.Format(fechaCorta)})
		}
		if d.FechaFin != nil {
			rows = append(rows, pdf.KV{Label: "Al", Value: d.FechaFin.Format(fechaCorta)})
		}
		if d.DebeVolver != nil {
			rows = append(rows, pdf.KV{Label: "Debe volver", Value: d.DebeVolver.Format(fechaCorta)})
		}
		doc.Sections = []pdf.Section{{Rows: rows}}
	case *Recipe:
		doc.Titulo = "Recipe"
		doc.Compact = true
		doc.Sections = []pdf.Section{{Title: "Indicaciones", Text: d.TextoRecipe}}
	}

	out, err := s.renderer.Render(doc)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("%s_%s.pdf", p.NumeroDocumento, h.Fecha.Format("2006-01-02"))
	return out, filename, nil
}
