package paciente

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/histomed/histomed/pkg/validate"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NormalizeDocumento validates and normalizes a documento number. Non-digit
// input is rejected; input longer than eight digits keeps only the first
// eight.
func NormalizeDocumento(numero string) (string, error) {
	numero = strings.TrimSpace(numero)
	if numero == "" {
		return "", validate.Field("numero_documento", "es requerido")
	}
	if !validate.IsDigits(numero) {
		return "", validate.Field("numero_documento", "debe contener solo digitos")
	}
	if len(numero) > DocumentoLen {
		numero = numero[:DocumentoLen]
	}
	return numero, nil
}

// NormalizeTelefono validates a phone number and truncates it to eleven
// digits when longer.
func NormalizeTelefono(numero string) (string, error) {
	numero = strings.TrimSpace(numero)
	if numero == "" {
		return "", validate.Field("telefono", "es requerido")
	}
	if !validate.IsDigits(numero) {
		return "", validate.Field("telefono", "debe contener solo digitos")
	}
	if len(numero) > TelefonoLen {
		numero = numero[:TelefonoLen]
	}
	return numero, nil
}

func (s *Service) validatePaciente(p *Paciente) error {
	var errs validate.Errors
	numero, err := NormalizeDocumento(p.NumeroDocumento)
	if err != nil {
		errs.Merge(err)
	} else {
		p.NumeroDocumento = numero
	}
	p.Nombre = strings.TrimSpace(p.Nombre)
	if p.Nombre == "" {
		errs.Add("nombre", "es requerido")
	} else if len([]rune(p.Nombre)) > NombreMaxLen {
		errs.Add("nombre", "supera el maximo de 30 caracteres")
	}
	p.Apellido = strings.TrimSpace(p.Apellido)
	if p.Apellido == "" {
		errs.Add("apellido", "es requerido")
	} else if len([]rune(p.Apellido)) > ApellidoMaxLen {
		errs.Add("apellido", "supera el maximo de 20 caracteres")
	}
	if p.FechaNacimiento.IsZero() {
		errs.Add("fecha_nacimiento", "es requerida")
	}
	if p.Genero != GeneroMasculino && p.Genero != GeneroFemenino {
		errs.Add("genero", "debe ser M o F")
	}
	return errs.Err()
}

// CreatePaciente registers a patient, optionally with a principal phone
// number. Validation failures are reported before any write.
func (s *Service) CreatePaciente(ctx context.Context, p *Paciente, telefono *Telefono) error {
	if err := s.validatePaciente(p); err != nil {
		return err
	}
	if telefono != nil {
		numero, err := NormalizeTelefono(telefono.Numero)
		if err != nil {
			return err
		}
		telefono.Numero = numero
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	if telefono != nil {
		telefono.PacienteID = p.ID
		telefono.EsPrincipal = true
		if err := s.repo.AddTelefono(ctx, telefono); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) GetPaciente(ctx context.Context, id uuid.UUID) (*Paciente, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByNumeroDocumento(ctx context.Context, numero string) (*Paciente, error) {
	return s.repo.GetByNumeroDocumento(ctx, numero)
}

func (s *Service) UpdatePaciente(ctx context.Context, p *Paciente) error {
	if err := s.validatePaciente(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeletePaciente(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) SearchPacientes(ctx context.Context, query string, limit, offset int) ([]*Paciente, int, error) {
	return s.repo.Search(ctx, strings.TrimSpace(query), limit, offset)
}

// AddTelefono attaches a phone number. Marking it principal demotes the
// previous principal so at most one remains.
func (s *Service) AddTelefono(ctx context.Context, t *Telefono) error {
	numero, err := NormalizeTelefono(t.Numero)
	if err != nil {
		return err
	}
	t.Numero = numero
	if _, err := s.repo.GetByID(ctx, t.PacienteID); err != nil {
		return err
	}
	if t.EsPrincipal {
		if err := s.repo.ClearPrincipal(ctx, t.PacienteID); err != nil {
			return err
		}
	}
	return s.repo.AddTelefono(ctx, t)
}

func (s *Service) ListTelefonos(ctx context.Context, pacienteID uuid.UUID) ([]*Telefono, error) {
	return s.repo.ListTelefonos(ctx, pacienteID)
}

func (s *Service) RemoveTelefono(ctx context.Context, id uuid.UUID) error {
	return s.repo.RemoveTelefono(ctx, id)
}

func (s *Service) AddDireccion(ctx context.Context, d *Direccion) error {
	d.Direccion = strings.TrimSpace(d.Direccion)
	if d.Direccion == "" {
		return validate.Field("direccion", "es requerida")
	}
	if d.CodigoPostal != nil {
		cp := strings.TrimSpace(*d.CodigoPostal)
		if cp != "" && (!validate.IsDigits(cp) || len(cp) > CodigoPostalLen) {
			return validate.Field("codigo_postal", "debe tener hasta 4 digitos")
		}
		d.CodigoPostal = &cp
	}
	if _, err := s.repo.GetByID(ctx, d.PacienteID); err != nil {
		return err
	}
	return s.repo.AddDireccion(ctx, d)
}

func (s *Service) ListDirecciones(ctx context.Context, pacienteID uuid.UUID) ([]*Direccion, error) {
	return s.repo.ListDirecciones(ctx, pacienteID)
}

func (s *Service) RemoveDireccion(ctx context.Context, id uuid.UUID) error {
	return s.repo.RemoveDireccion(ctx, id)
}
