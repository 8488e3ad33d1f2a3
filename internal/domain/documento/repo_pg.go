package documento

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/histomed/histomed/internal/platform/db"
)

// ErrNotFound is returned when no document matches the given id.
var ErrNotFound = errors.New("documento not found")

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) delete(ctx context.Context, table string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// -- Justificativo --

func (r *repoPG) CreateJustificativo(ctx context.Context, d *Justificativo) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO documento_justificativo (id, historial_id, motivo_consulta, hora_entrada, hora_salida)
		VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.HistorialID, d.MotivoConsulta, d.HoraEntrada, d.HoraSalida,
	)
	return err
}

func (r *repoPG) GetJustificativo(ctx context.Context, id uuid.UUID) (*Justificativo, error) {
	var d Justificativo
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, historial_id, motivo_consulta, hora_entrada, hora_salida, created_at
		FROM documento_justificativo WHERE id = $1`, id,
	).Scan(&d.ID, &d.HistorialID, &d.MotivoConsulta, &d.HoraEntrada, &d.HoraSalida, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) DeleteJustificativo(ctx context.Context, id uuid.UUID) error {
	return r.delete(ctx, "documento_justificativo", id)
}

// -- Referencia --

func (r *repoPG) CreateReferencia(ctx context.Context, d *Referencia) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO documento_referencia (id, historial_id, referido_a, motivo_referencia)
		VALUES ($1,$2,$3,$4)`,
		d.ID, d.HistorialID, d.ReferidoA, d.MotivoReferencia,
	)
	return err
}

func (r *repoPG) GetReferencia(ctx context.Context, id uuid.UUID) (*Referencia, error) {
	var d Referencia
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, historial_id, referido_a, motivo_referencia, created_at
		FROM documento_referencia WHERE id = $1`, id,
	).Scan(&d.ID, &d.HistorialID, &d.ReferidoA, &d.MotivoReferencia, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) DeleteReferencia(ctx context.Context, id uuid.UUID) error {
	return r.delete(ctx, "documento_referencia", id)
}

// -- Reposo --

func (r *repoPG) CreateReposo(ctx context.Context, d *Reposo) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO documento_reposo (id, historial_id, consulta, diagnostico, duracion_dias, fecha_inicio, fecha_fin, debe_volver)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.HistorialID, d.Consulta, d.Diagnostico, d.DuracionDias, d.FechaInicio, d.FechaFin, d.DebeVolver,
	)
	return err
}

func (r *repoPG) GetReposo(ctx context.Context, id uuid.UUID) (*Reposo, error) {
	var d Reposo
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, historial_id, consulta, diagnostico, duracion_dias, fecha_inicio, fecha_fin, debe_volver, created_at
		FROM documento_reposo WHERE id = $1`, id,
	).Scan(&d.ID, &d.HistorialID, &d.Consulta, &d.Diagnostico, &d.DuracionDias, &d.FechaInicio, &d.FechaFin, &d.DebeVolver, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) DeleteReposo(ctx context.Context, id uuid.UUID) error {
	return r.delete(ctx, "documento_reposo", id)
}

// -- Recipe --

func (r *repoPG) CreateRecipe(ctx context.Context, d *Recipe) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO documento_recipe (id, historial_id, texto_recipe)
		VALUES ($1,$2,$3)`,
		d.ID, d.HistorialID, d.TextoRecipe,
	)
	return err
}

func (r *repoPG) GetRecipe(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	var d Recipe
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, historial_id, texto_recipe, created_at
		FROM documento_recipe WHERE id = $1`, id,
	).Scan(&d.ID, &d.HistorialID, &d.TextoRecipe, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return r.delete(ctx, "documento_recipe", id)
}

// -- Listing --

func (r *repoPG) ListByHistorial(ctx context.Context, historialID uuid.UUID) (*Documentos, error) {
	out := &Documentos{
		Justificativos: []*Justificativo{},
		Referencias:    []*Referencia{},
		Reposos:        []*Reposo{},
		Recipes:        []*Recipe{},
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, historial_id, motivo_consulta, hora_entrada, hora_salida, created_at
		FROM documento_justificativo WHERE historial_id = $1 ORDER BY created_at`, historialID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var d Justificativo
		if err := rows.Scan(&d.ID, &d.HistorialID, &d.MotivoConsulta, &d.HoraEntrada, &d.HoraSalida, &d.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		out.Justificativos = append(out.Justificativos, &d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.conn(ctx).Query(ctx, `
		SELECT id, historial_id, referido_a, motivo_referencia, created_at
		FROM documento_referencia WHERE historial_id = $1 ORDER BY created_at`, historialID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var d Referencia
		if err := rows.Scan(&d.ID, &d.HistorialID, &d.ReferidoA, &d.MotivoReferencia, &d.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		out.Referencias = append(out.Referencias, &d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.conn(ctx).Query(ctx, `
		SELECT id, historial_id, consulta, diagnostico, duracion_dias, fecha_inicio, fecha_fin, debe_volver, created_at
		FROM documento_reposo WHERE historial_id = $1 ORDER BY created_at`, historialID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var d Reposo
		if err := rows.Scan(&d.ID, &d.HistorialID, &d.Consulta, &d.Diagnostico, &d.DuracionDias, &d.FechaInicio, &d.FechaFin, &d.DebeVolver, &d.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		out.Reposos = append(out.Reposos, &d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.conn(ctx).Query(ctx, `
		SELECT id, historial_id, texto_recipe, created_at
		FROM documento_recipe WHERE historial_id = $1 ORDER BY created_at`, historialID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var d Recipe
		if err := rows.Scan(&d.ID, &d.HistorialID, &d.TextoRecipe, &d.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		out.Recipes = append(out.Recipes, &d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
