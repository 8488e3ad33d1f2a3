package historial

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/histomed/histomed/internal/domain/paciente"
	"github.com/histomed/histomed/internal/platform/auth"
	"github.com/histomed/histomed/pkg/validate"
)

type mockRepo struct {
	historiales map[uuid.UUID]*HistorialMedico
	generales   map[uuid.UUID]*HistoriaGeneral   // keyed by historial id
	nutriciones map[uuid.UUID]*HistoriaNutricion // keyed by historial id

	failCreateGeneral   bool
	failCreateNutricion bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		historiales: make(map[uuid.UUID]*HistorialMedico),
		generales:   make(map[uuid.UUID]*HistoriaGeneral),
		nutriciones: make(map[uuid.UUID]*HistoriaNutricion),
	}
}

func (m *mockRepo) Create(ctx context.Context, h *HistorialMedico) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	cp := *h
	m.historiales[h.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*HistorialMedico, error) {
	h, ok := m.historiales[id]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

func (m *mockRepo) Touch(ctx context.Context, id uuid.UUID) error {
	h, ok := m.historiales[id]
	if !ok {
		return ErrNotFound
	}
	h.UpdatedAt = time.Now()
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.historiales[id]; !ok {
		return ErrNotFound
	}
	delete(m.historiales, id)
	delete(m.generales, id)
	delete(m.nutriciones, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context, medicoID *uuid.UUID, limit, offset int) ([]*Resumen, int, error) {
	var out []*Resumen
	for _, h := range m.historiales {
		if medicoID != nil && (h.MedicoID == nil || *h.MedicoID != *medicoID) {
			continue
		}
		out = append(out, &Resumen{ID: h.ID, Fecha: h.Fecha, MedicoID: h.MedicoID, PacienteID: h.PacienteID})
	}
	return out, len(out), nil
}

func (m *mockRepo) Search(ctx context.Context, query string, medicoID *uuid.UUID, limit, offset int) ([]*Resumen, int, error) {
	return m.List(ctx, medicoID, limit, offset)
}

func (m *mockRepo) CreateGeneral(ctx context.Context, g *HistoriaGeneral) error {
	if m.failCreateGeneral {
		return errors.New("general insert failed")
	}
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	cp := *g
	m.generales[g.HistorialID] = &cp
	return nil
}

func (m *mockRepo) GetGeneral(ctx context.Context, historialID uuid.UUID) (*HistoriaGeneral, error) {
	g, ok := m.generales[historialID]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

func (m *mockRepo) UpdateGeneral(ctx context.Context, g *HistoriaGeneral) error {
	if _, ok := m.generales[g.HistorialID]; !ok {
		return ErrNotFound
	}
	cp := *g
	m.generales[g.HistorialID] = &cp
	return nil
}

func (m *mockRepo) CreateNutricion(ctx context.Context, n *HistoriaNutricion) error {
	if m.failCreateNutricion {
		return errors.New("nutricion insert failed")
	}
	if _, ok := m.nutriciones[n.HistorialID]; ok {
		return errors.New("duplicate nutricion row")
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	cp := *n
	m.nutriciones[n.HistorialID] = &cp
	return nil
}

func (m *mockRepo) GetNutricion(ctx context.Context, historialID uuid.UUID) (*HistoriaNutricion, error) {
	n, ok := m.nutriciones[historialID]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

func (m *mockRepo) UpdateNutricion(ctx context.Context, n *HistoriaNutricion) error {
	if _, ok := m.nutriciones[n.HistorialID]; !ok {
		return ErrNotFound
	}
	cp := *n
	m.nutriciones[n.HistorialID] = &cp
	return nil
}

type mockRegistry struct {
	pacientes map[uuid.UUID]*paciente.Paciente
	telefonos []*paciente.Telefono
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{pacientes: make(map[uuid.UUID]*paciente.Paciente)}
}

func (m *mockRegistry) GetPaciente(ctx context.Context, id uuid.UUID) (*paciente.Paciente, error) {
	p, ok := m.pacientes[id]
	if !ok {
		return nil, paciente.ErrNotFound
	}
	return p, nil
}

func (m *mockRegistry) CreatePaciente(ctx context.Context, p *paciente.Paciente, tel *paciente.Telefono) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.pacientes[p.ID] = p
	if tel != nil {
		tel.PacienteID = p.ID
		tel.EsPrincipal = true
		m.telefonos = append(m.telefonos, tel)
	}
	return nil
}

// snapshotTx restores the mock stores when the transaction function
// fails, mirroring a database rollback.
type snapshotTx struct {
	repo     *mockRepo
	registry *mockRegistry

	rolledBack bool
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (t *snapshotTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	historiales := copyMap(t.repo.historiales)
	generales := copyMap(t.repo.generales)
	nutriciones := copyMap(t.repo.nutriciones)
	var pacientes map[uuid.UUID]*paciente.Paciente
	if t.registry != nil {
		pacientes = copyMap(t.registry.pacientes)
	}
	if err := fn(ctx); err != nil {
		t.rolledBack = true
		t.repo.historiales = historiales
		t.repo.generales = generales
		t.repo.nutriciones = nutriciones
		if t.registry != nil {
			t.registry.pacientes = pacientes
		}
		return err
	}
	return nil
}

type fixture struct {
	repo     *mockRepo
	registry *mockRegistry
	tx       *snapshotTx
	svc      *Service
}

func newFixture(globalListing bool) *fixture {
	repo := newMockRepo()
	registry := newMockRegistry()
	tx := &snapshotTx{repo: repo, registry: registry}
	return &fixture{
		repo:     repo,
		registry: registry,
		tx:       tx,
		svc:      NewService(repo, registry, tx, globalListing),
	}
}

func (f *fixture) addPaciente() *paciente.Paciente {
	p := &paciente.Paciente{
		ID:              uuid.New(),
		NumeroDocumento: "12345678",
		Nombre:          "Maria",
		Apellido:        "Perez",
		Genero:          "F",
		FechaNacimiento: time.Date(1999, 5, 2, 0, 0, 0, 0, time.UTC),
	}
	f.registry.pacientes[p.ID] = p
	return p
}

func medicoActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Name: "Dra. Gomez", Role: auth.RoleMedico}
}

func adminActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Name: "Admin", Role: auth.RoleAdmin}
}

func TestCreateHistorialWithExistingPaciente(t *testing.T) {
	f := newFixture(false)
	p := f.addPaciente()
	actor := medicoActor()

	h, err := f.svc.CreateHistorial(context.Background(), actor, CreateInput{
		PacienteID: &p.ID,
		General:    HistoriaGeneral{MotivoConsulta: "cefalea"},
		Nutricion:  &HistoriaNutricion{FrecArroz: FrecDiario},
	})
	if err != nil {
		t.Fatalf("CreateHistorial: %v", err)
	}
	if h.PacienteID != p.ID {
		t.Errorf("expected paciente %s, got %s", p.ID, h.PacienteID)
	}
	if h.MedicoID == nil || *h.MedicoID != actor.ID {
		t.Error("historial must be stamped with the acting clinician")
	}
	if _, ok := f.repo.generales[h.ID]; !ok {
		t.Error("general sub-record missing")
	}
	if _, ok := f.repo.nutriciones[h.ID]; !ok {
		t.Error("nutricion sub-record missing")
	}
}

func TestCreateHistorialWithInlinePaciente(t *testing.T) {
	f := newFixture(false)

	h, err := f.svc.CreateHistorial(context.Background(), medicoActor(), CreateInput{
		Paciente: &paciente.Paciente{
			NumeroDocumento: "87654321",
			Nombre:          "Jose",
			Apellido:        "Lopez",
			Genero:          "M",
			FechaNacimiento: time.Date(2001, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		Telefono: &paciente.Telefono{Numero: "04121234567"},
		General:  HistoriaGeneral{},
	})
	if err != nil {
		t.Fatalf("CreateHistorial: %v", err)
	}
	if len(f.registry.pacientes) != 1 {
		t.Fatalf("expected patient registered, got %d", len(f.registry.pacientes))
	}
	if _, ok := f.registry.pacientes[h.PacienteID]; !ok {
		t.Error("historial not linked to the new patient")
	}
	if len(f.registry.telefonos) != 1 || !f.registry.telefonos[0].EsPrincipal {
		t.Error("intake phone must be stored as principal")
	}
}

func TestCreateHistorialPacienteModeExclusive(t *testing.T) {
	f := newFixture(false)
	p := f.addPaciente()

	for name, in := range map[string]CreateInput{
		"neither": {General: HistoriaGeneral{}},
		"both": {
			PacienteID: &p.ID,
			Paciente:   &paciente.Paciente{NumeroDocumento: "11111111"},
			Telefono:   &paciente.Telefono{Numero: "04120000000"},
		},
	} {
		_, err := f.svc.CreateHistorial(context.Background(), medicoActor(), in)
		var verrs *validate.Errors
		if !errors.As(err, &verrs) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
	if len(f.repo.historiales) != 0 {
		t.Error("no historial may be written on validation failure")
	}
}

func TestCreateHistorialUnknownPaciente(t *testing.T) {
	f := newFixture(false)
	id := uuid.New()

	_, err := f.svc.CreateHistorial(context.Background(), medicoActor(), CreateInput{
		PacienteID: &id,
		General:    HistoriaGeneral{},
	})
	var verrs *validate.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.repo.historiales) != 0 {
		t.Error("nothing may persist when the patient does not exist")
	}
}

func TestCreateHistorialRollsBackWholeAggregate(t *testing.T) {
	f := newFixture(false)
	f.repo.failCreateNutricion = true

	_, err := f.svc.CreateHistorial(context.Background(), medicoActor(), CreateInput{
		Paciente: &paciente.Paciente{
			NumeroDocumento: "22223333",
			Nombre:          "Ana",
			Apellido:        "Marin",
			Genero:          "F",
			FechaNacimiento: time.Date(2000, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		Telefono:  &paciente.Telefono{Numero: "04140000000"},
		General:   HistoriaGeneral{},
		Nutricion: &HistoriaNutricion{},
	})
	var agg *AggregateWriteError
	if !errors.As(err, &agg) {
		t.Fatalf("expected AggregateWriteError, got %v", err)
	}
	if !f.tx.rolledBack {
		t.Error("transaction must roll back")
	}
	if len(f.repo.historiales) != 0 || len(f.repo.generales) != 0 {
		t.Error("partial aggregate left behind after rollback")
	}
	if len(f.registry.pacientes) != 0 {
		t.Error("inline patient must roll back with the aggregate")
	}
}

func TestCreateHistorialRejectsBadFrecuencia(t *testing.T) {
	f := newFixture(false)
	p := f.addPaciente()

	_, err := f.svc.CreateHistorial(context.Background(), medicoActor(), CreateInput{
		PacienteID: &p.ID,
		General:    HistoriaGeneral{},
		Nutricion:  &HistoriaNutricion{FrecArroz: "X"},
	})
	var verrs *validate.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func createOwned(t *testing.T, f *fixture, actor auth.Actor) *HistorialMedico {
	t.Helper()
	p := f.addPaciente()
	h, err := f.svc.CreateHistorial(context.Background(), actor, CreateInput{
		PacienteID: &p.ID,
		General:    HistoriaGeneral{MotivoConsulta: "control"},
	})
	if err != nil {
		t.Fatalf("CreateHistorial: %v", err)
	}
	return h
}

func TestUpdateGeneralAuthorization(t *testing.T) {
	f := newFixture(false)
	owner := medicoActor()
	h := createOwned(t, f, owner)

	update := &HistoriaGeneral{MotivoConsulta: "seguimiento"}
	if err := f.svc.UpdateGeneral(context.Background(), medicoActor(), h.ID, update); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("another medico must be denied, got %v", err)
	}
	if err := f.svc.UpdateGeneral(context.Background(), adminActor(), h.ID, update); err != nil {
		t.Errorf("admin override on general update: %v", err)
	}
	if err := f.svc.UpdateGeneral(context.Background(), owner, h.ID, update); err != nil {
		t.Errorf("owner update: %v", err)
	}
	if got := f.repo.generales[h.ID].MotivoConsulta; got != "seguimiento" {
		t.Errorf("update not applied, got %q", got)
	}
}

func TestUpsertNutricionCreateThenUpdate(t *testing.T) {
	f := newFixture(false)
	owner := medicoActor()
	h := createOwned(t, f, owner)

	if err := f.svc.UpsertNutricion(context.Background(), owner, h.ID, &HistoriaNutricion{Apetito: "normal"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := f.svc.UpsertNutricion(context.Background(), owner, h.ID, &HistoriaNutricion{Apetito: "aumentado"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if len(f.repo.nutriciones) != 1 {
		t.Fatalf("expected one nutricion row, got %d", len(f.repo.nutriciones))
	}
	if got := f.repo.nutriciones[h.ID].Apetito; got != "aumentado" {
		t.Errorf("second upsert must overwrite, got %q", got)
	}
}

func TestUpsertNutricionStrictClinicianOfRecord(t *testing.T) {
	f := newFixture(false)
	h := createOwned(t, f, medicoActor())

	if err := f.svc.UpsertNutricion(context.Background(), medicoActor(), h.ID, &HistoriaNutricion{}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("another medico must be denied, got %v", err)
	}
	// No admin override on this path.
	if err := f.svc.UpsertNutricion(context.Background(), adminActor(), h.ID, &HistoriaNutricion{}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("admin must be denied on nutricion upsert, got %v", err)
	}
}

func TestDeleteHistorialCascades(t *testing.T) {
	f := newFixture(false)
	owner := medicoActor()
	h := createOwned(t, f, owner)
	if err := f.svc.UpsertNutricion(context.Background(), owner, h.ID, &HistoriaNutricion{}); err != nil {
		t.Fatalf("UpsertNutricion: %v", err)
	}

	if err := f.svc.DeleteHistorial(context.Background(), medicoActor(), h.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("another medico must be denied, got %v", err)
	}
	if err := f.svc.DeleteHistorial(context.Background(), owner, h.ID); err != nil {
		t.Fatalf("DeleteHistorial: %v", err)
	}
	if len(f.repo.historiales)+len(f.repo.generales)+len(f.repo.nutriciones) != 0 {
		t.Error("delete must cascade to sub-records")
	}
	if err := f.svc.DeleteHistorial(context.Background(), owner, h.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete must report not found, got %v", err)
	}
}

func TestListGlobalFilterGatedByConfig(t *testing.T) {
	disabled := newFixture(false)
	owner := medicoActor()
	createOwned(t, disabled, owner)
	createOwned(t, disabled, medicoActor())

	items, _, err := disabled.svc.List(context.Background(), owner, "all", 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("with global listing disabled, filter=all must collapse to mine; got %d rows", len(items))
	}

	enabled := newFixture(true)
	owner = medicoActor()
	createOwned(t, enabled, owner)
	createOwned(t, enabled, medicoActor())

	items, _, err = enabled.svc.List(context.Background(), owner, "all", 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("with global listing enabled, filter=all must span clinicians; got %d rows", len(items))
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	f := newFixture(false)
	_, _, err := f.svc.Search(context.Background(), medicoActor(), "  ", "", 10, 0)
	var verrs *validate.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
