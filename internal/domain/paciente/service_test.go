package paciente

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/histomed/histomed/pkg/validate"
)

type mockRepo struct {
	pacientes  map[uuid.UUID]*Paciente
	telefonos  map[uuid.UUID]*Telefono
	direccions map[uuid.UUID]*Direccion
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		pacientes:  make(map[uuid.UUID]*Paciente),
		telefonos:  make(map[uuid.UUID]*Telefono),
		direccions: make(map[uuid.UUID]*Direccion),
	}
}

func (m *mockRepo) Create(ctx context.Context, p *Paciente) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.pacientes[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Paciente, error) {
	p, ok := m.pacientes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByNumeroDocumento(ctx context.Context, numero string) (*Paciente, error) {
	for _, p := range m.pacientes {
		if p.NumeroDocumento == numero {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(ctx context.Context, p *Paciente) error {
	if _, ok := m.pacientes[p.ID]; !ok {
		return ErrNotFound
	}
	m.pacientes[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.pacientes[id]; !ok {
		return ErrNotFound
	}
	delete(m.pacientes, id)
	return nil
}

func (m *mockRepo) Search(ctx context.Context, query string, limit, offset int) ([]*Paciente, int, error) {
	var out []*Paciente
	for _, p := range m.pacientes {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockRepo) AddDireccion(ctx context.Context, d *Direccion) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.direccions[d.ID] = d
	return nil
}

func (m *mockRepo) ListDirecciones(ctx context.Context, pacienteID uuid.UUID) ([]*Direccion, error) {
	var out []*Direccion
	for _, d := range m.direccions {
		if d.PacienteID == pacienteID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockRepo) RemoveDireccion(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.direccions[id]; !ok {
		return ErrNotFound
	}
	delete(m.direccions, id)
	return nil
}

func (m *mockRepo) AddTelefono(ctx context.Context, t *Telefono) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.telefonos[t.ID] = t
	return nil
}

func (m *mockRepo) ListTelefonos(ctx context.Context, pacienteID uuid.UUID) ([]*Telefono, error) {
	var out []*Telefono
	for _, t := range m.telefonos {
		if t.PacienteID == pacienteID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockRepo) GetTelefonoPrincipal(ctx context.Context, pacienteID uuid.UUID) (*Telefono, error) {
	for _, t := range m.telefonos {
		if t.PacienteID == pacienteID && t.EsPrincipal {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) ClearPrincipal(ctx context.Context, pacienteID uuid.UUID) error {
	for _, t := range m.telefonos {
		if t.PacienteID == pacienteID {
			t.EsPrincipal = false
		}
	}
	return nil
}

func (m *mockRepo) RemoveTelefono(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.telefonos[id]; !ok {
		return ErrNotFound
	}
	delete(m.telefonos, id)
	return nil
}

func validTestPaciente() *Paciente {
	return &Paciente{
		NumeroDocumento: "12345678",
		Nombre:          "Maria",
		Apellido:        "Perez",
		FechaNacimiento: time.Date(1995, 3, 12, 0, 0, 0, 0, time.UTC),
		Genero:          GeneroFemenino,
	}
}

func TestCreatePaciente(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := validTestPaciente()
	if err := svc.CreatePaciente(context.Background(), p, nil); err != nil {
		t.Fatalf("CreatePaciente: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if len(repo.pacientes) != 1 {
		t.Errorf("expected 1 paciente, got %d", len(repo.pacientes))
	}
}

func TestCreatePacienteCapsDocumentoAtEightDigits(t *testing.T) {
	svc := NewService(newMockRepo())

	p := validTestPaciente()
	p.NumeroDocumento = "123456789"
	if err := svc.CreatePaciente(context.Background(), p, nil); err != nil {
		t.Fatalf("CreatePaciente: %v", err)
	}
	if p.NumeroDocumento != "12345678" {
		t.Errorf("expected documento capped to 12345678, got %q", p.NumeroDocumento)
	}
}

func TestCreatePacienteRejectsNonNumericDocumento(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := validTestPaciente()
	p.NumeroDocumento = "12A45678"
	err := svc.CreatePaciente(context.Background(), p, nil)
	var verrs *validate.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.pacientes) != 0 {
		t.Error("invalid paciente must not be persisted")
	}
}

func TestCreatePacienteCollectsAllFieldErrors(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.CreatePaciente(context.Background(), &Paciente{Genero: "X"}, nil)
	var verrs *validate.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verrs.Fields) < 4 {
		t.Errorf("expected errors for every missing field, got %v", verrs.Fields)
	}
}

func TestCreatePacienteWithTelefonoTruncatesToElevenDigits(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	tel := &Telefono{Numero: "0412123456789"}
	if err := svc.CreatePaciente(context.Background(), validTestPaciente(), tel); err != nil {
		t.Fatalf("CreatePaciente: %v", err)
	}
	if tel.Numero != "04121234567" {
		t.Errorf("expected telefono truncated to 11 digits, got %q", tel.Numero)
	}
	if !tel.EsPrincipal {
		t.Error("intake telefono must be principal")
	}
}

func TestAddTelefonoDemotesPreviousPrincipal(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := validTestPaciente()
	first := &Telefono{Numero: "04121111111"}
	if err := svc.CreatePaciente(context.Background(), p, first); err != nil {
		t.Fatalf("CreatePaciente: %v", err)
	}

	second := &Telefono{PacienteID: p.ID, Numero: "04142222222", EsPrincipal: true}
	if err := svc.AddTelefono(context.Background(), second); err != nil {
		t.Fatalf("AddTelefono: %v", err)
	}

	principal := 0
	for _, tel := range repo.telefonos {
		if tel.EsPrincipal {
			principal++
		}
	}
	if principal != 1 {
		t.Errorf("expected exactly one principal telefono, got %d", principal)
	}
	got, err := repo.GetTelefonoPrincipal(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetTelefonoPrincipal: %v", err)
	}
	if got.Numero != "04142222222" {
		t.Errorf("expected new principal, got %q", got.Numero)
	}
}

func TestAddTelefonoUnknownPaciente(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.AddTelefono(context.Background(), &Telefono{PacienteID: uuid.New(), Numero: "04121234567"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePacienteNotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	p := validTestPaciente()
	p.ID = uuid.New()
	if err := svc.UpdatePaciente(context.Background(), p); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
