package documento

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/histomed/histomed/internal/domain/historial"
	"github.com/histomed/histomed/internal/domain/paciente"
	"github.com/histomed/histomed/internal/platform/auth"
	"github.com/histomed/histomed/internal/platform/pdf"
	"github.com/histomed/histomed/pkg/validate"
)

type mockRepo struct {
	justificativos map[uuid.UUID]*Justificativo
	referencias    map[uuid.UUID]*Referencia
	reposos        map[uuid.UUID]*Reposo
	recipes        map[uuid.UUID]*Recipe
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		justificativos: make(map[uuid.UUID]*Justificativo),
		referencias:    make(map[uuid.UUID]*Referencia),
		reposos:        make(map[uuid.UUID]*Reposo),
		recipes:        make(map[uuid.UUID]*Recipe),
	}
}

func (m *mockRepo) CreateJustificativo(ctx context.Context, d *Justificativo) error {
	d.ID = uuid.New()
	m.justificativos[d.ID] = d
	return nil
}

func (m *mockRepo) GetJustificativo(ctx context.Context, id uuid.UUID) (*Justificativo, error) {
	d, ok := m.justificativos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) DeleteJustificativo(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.justificativos[id]; !ok {
		return ErrNotFound
	}
	delete(m.justificativos, id)
	return nil
}

func (m *mockRepo) CreateReferencia(ctx context.Context, d *Referencia) error {
	d.ID = uuid.New()
	m.referencias[d.ID] = d
	return nil
}

func (m *mockRepo) GetReferencia(ctx context.Context, id uuid.UUID) (*Referencia, error) {
	d, ok := m.referencias[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) DeleteReferencia(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.referencias[id]; !ok {
		return ErrNotFound
	}
	delete(m.referencias, id)
	return nil
}

func (m *mockRepo) CreateReposo(ctx context.Context, d *Reposo) error {
	d.ID = uuid.New()
	m.reposos[d.ID] = d
	return nil
}

func (m *mockRepo) GetReposo(ctx context.Context, id uuid.UUID) (*Reposo, error) {
	d, ok := m.reposos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) DeleteReposo(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.reposos[id]; !ok {
		return ErrNotFound
	}
	delete(m.reposos, id)
	return nil
}

func (m *mockRepo) CreateRecipe(ctx context.Context, d *Recipe) error {
	d.ID = uuid.New()
	m.recipes[d.ID] = d
	return nil
}

func (m *mockRepo) GetRecipe(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	d, ok := m.recipes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.recipes[id]; !ok {
		return ErrNotFound
	}
	delete(m.recipes, id)
	return nil
}

func (m *mockRepo) ListByHistorial(ctx context.Context, historialID uuid.UUID) (*Documentos, error) {
	out := &Documentos{}
	for _, d := range m.justificativos {
		if d.HistorialID == historialID {
			out.Justificativos = append(out.Justificativos, d)
		}
	}
	for _, d := range m.referencias {
		if d.HistorialID == historialID {
			out.Referencias = append(out.Referencias, d)
		}
	}
	for _, d := range m.reposos {
		if d.HistorialID == historialID {
			out.Reposos = append(out.Reposos, d)
		}
	}
	for _, d := range m.recipes {
		if d.HistorialID == historialID {
			out.Recipes = append(out.Recipes, d)
		}
	}
	return out, nil
}

type mockResolver struct {
	historiales map[uuid.UUID]*historial.HistorialMedico
	pacientes   map[uuid.UUID]*paciente.Paciente
}

func (m *mockResolver) GetHistorial(ctx context.Context, id uuid.UUID) (*historial.HistorialMedico, error) {
	h, ok := m.historiales[id]
	if !ok {
		return nil, historial.ErrNotFound
	}
	return h, nil
}

func (m *mockResolver) GetPaciente(ctx context.Context, id uuid.UUID) (*paciente.Paciente, error) {
	p, ok := m.pacientes[id]
	if !ok {
		return nil, paciente.ErrNotFound
	}
	return p, nil
}

// captureRenderer records the last document instead of producing a PDF.
type captureRenderer struct {
	last *pdf.Document
}

func (r *captureRenderer) Render(doc *pdf.Document) ([]byte, error) {
	r.last = doc
	return []byte("%PDF-1.4"), nil
}

type fixture struct {
	repo     *mockRepo
	resolver *mockResolver
	renderer *captureRenderer
	svc      *Service

	owner     auth.Actor
	historial *historial.HistorialMedico
}

func newFixture() *fixture {
	owner := auth.Actor{ID: uuid.New(), Name: "Dr. Rivas", Role: auth.RoleMedico}
	medicoID := owner.ID
	p := &paciente.Paciente{
		ID:              uuid.New(),
		NumeroDocumento: "12345678",
		Nombre:          "Luisa",
		Apellido:        "Rondon",
	}
	h := &historial.HistorialMedico{
		ID:           uuid.New(),
		PacienteID:   p.ID,
		MedicoID:     &medicoID,
		MedicoNombre: owner.Name,
		Fecha:        time.Date(2024, 5, 7, 10, 30, 0, 0, time.UTC),
	}
	resolver := &mockResolver{
		historiales: map[uuid.UUID]*historial.HistorialMedico{h.ID: h},
		pacientes:   map[uuid.UUID]*paciente.Paciente{p.ID: p},
	}
	repo := newMockRepo()
	renderer := &captureRenderer{}
	svc := NewService(repo, resolver, resolver)
	svc.SetRenderer(renderer, "Servicio Medico Universitario", "Departamento de Salud")
	return &fixture{repo: repo, resolver: resolver, renderer: renderer, svc: svc, owner: owner, historial: h}
}

func otherMedico() auth.Actor {
	return auth.Actor{ID: uuid.New(), Name: "Dra. Soto", Role: auth.RoleMedico}
}

func TestCreateReferenciaTruncatesReferidoA(t *testing.T) {
	f := newFixture()
	long := strings.Repeat("Cardiologia ", 5) // 60 chars

	d := &Referencia{ReferidoA: long, MotivoReferencia: "evaluacion"}
	if err := f.svc.CreateReferencia(context.Background(), f.owner, f.historial.ID, d); err != nil {
		t.Fatalf("CreateReferencia: %v", err)
	}
	if got := len([]rune(d.ReferidoA)); got != ReferidoAMaxLen {
		t.Errorf("expected referido_a truncated to %d runes, got %d", ReferidoAMaxLen, got)
	}
	if len(f.repo.referencias) != 1 {
		t.Error("referencia must persist despite truncation")
	}
}

func TestCreateJustificativoValidatesHoras(t *testing.T) {
	f := newFixture()

	err := f.svc.CreateJustificativo(context.Background(), f.owner, f.historial.ID,
		&Justificativo{HoraEntrada: "25:99"})
	var verrs *validate.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Salida before entrada is allowed: there is no ordering rule.
	err = f.svc.CreateJustificativo(context.Background(), f.owner, f.historial.ID,
		&Justificativo{HoraEntrada: "14:00", HoraSalida: "08:30"})
	if err != nil {
		t.Fatalf("CreateJustificativo: %v", err)
	}
}

func TestCreateDocumentAuthorization(t *testing.T) {
	f := newFixture()

	err := f.svc.CreateRecipe(context.Background(), otherMedico(), f.historial.ID, &Recipe{TextoRecipe: "ibuprofeno"})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("another medico must be denied, got %v", err)
	}

	admin := auth.Actor{ID: uuid.New(), Name: "Admin", Role: auth.RoleAdmin}
	if err := f.svc.CreateRecipe(context.Background(), admin, f.historial.ID, &Recipe{TextoRecipe: "reposo"}); err != nil {
		t.Errorf("admin override on document create: %v", err)
	}
}

func TestCreateDocumentUnknownHistorial(t *testing.T) {
	f := newFixture()
	err := f.svc.CreateRecipe(context.Background(), f.owner, uuid.New(), &Recipe{TextoRecipe: "x"})
	if !errors.Is(err, historial.ErrNotFound) {
		t.Fatalf("expected historial.ErrNotFound, got %v", err)
	}
}

func TestDeleteDocumentTwice(t *testing.T) {
	f := newFixture()
	d := &Reposo{Consulta: "medicina general"}
	if err := f.svc.CreateReposo(context.Background(), f.owner, f.historial.ID, d); err != nil {
		t.Fatalf("CreateReposo: %v", err)
	}

	if err := f.svc.Delete(context.Background(), f.owner, KindReposo, d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.svc.Delete(context.Background(), f.owner, KindReposo, d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete must report not found, got %v", err)
	}
}

func TestRenderPDFAssemblesContextFromParent(t *testing.T) {
	f := newFixture()
	d := &Justificativo{MotivoConsulta: "odontologia", HoraEntrada: "08:00", HoraSalida: "10:00"}
	if err := f.svc.CreateJustificativo(context.Background(), f.owner, f.historial.ID, d); err != nil {
		t.Fatalf("CreateJustificativo: %v", err)
	}

	out, filename, err := f.svc.RenderPDF(context.Background(), f.owner, KindJustificativo, d.ID)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected pdf bytes")
	}
	if filename != "12345678_2024-05-07.pdf" {
		t.Errorf("unexpected filename %q", filename)
	}

	doc := f.renderer.last
	if doc == nil {
		t.Fatal("renderer was not invoked")
	}
	if doc.Compact {
		t.Error("justificativo must render full page")
	}
	meta := map[string]string{}
	for _, kv := range doc.Meta {
		meta[kv.Label] = kv.Value
	}
	if meta["Paciente"] != "Luisa Rondon" || meta["Cedula"] != "12345678" || meta["Medico"] != "Dr. Rivas" {
		t.Errorf("identity fields must resolve through the parent historial, got %v", meta)
	}
}

func TestRenderRecipeIsCompact(t *testing.T) {
	f := newFixture()
	d := &Recipe{TextoRecipe: "acetaminofen 500mg cada 8h"}
	if err := f.svc.CreateRecipe(context.Background(), f.owner, f.historial.ID, d); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	if _, _, err := f.svc.RenderPDF(context.Background(), f.owner, KindRecipe, d.ID); err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !f.renderer.last.Compact {
		t.Error("recipe must render on the compact half sheet")
	}
}

func TestRenderPDFPermission(t *testing.T) {
	f := newFixture()
	d := &Recipe{TextoRecipe: "hierro oral"}
	if err := f.svc.CreateRecipe(context.Background(), f.owner, f.historial.ID, d); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	if _, _, err := f.svc.RenderPDF(context.Background(), otherMedico(), KindRecipe, d.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("another medico must be denied, got %v", err)
	}
}
