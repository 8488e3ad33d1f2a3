package paciente

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/histomed/histomed/internal/platform/db"
)

// ErrNotFound is returned when no patient matches the given key.
var ErrNotFound = errors.New("paciente not found")

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

const pacienteCols = `id, numero_documento, nombre, apellido, fecha_nacimiento, genero, email, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Paciente) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO paciente (id, numero_documento, nombre, apellido, fecha_nacimiento, genero, email)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.NumeroDocumento, p.Nombre, p.Apellido, p.FechaNacimiento, p.Genero, p.Email,
	)
	return err
}

func scanPaciente(row pgx.Row) (*Paciente, error) {
	var p Paciente
	err := row.Scan(
		&p.ID, &p.NumeroDocumento, &p.Nombre, &p.Apellido,
		&p.FechaNacimiento, &p.Genero, &p.Email, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Paciente, error) {
	return scanPaciente(r.conn(ctx).QueryRow(ctx, `SELECT `+pacienteCols+` FROM paciente WHERE id = $1`, id))
}

func (r *repoPG) GetByNumeroDocumento(ctx context.Context, numero string) (*Paciente, error) {
	return scanPaciente(r.conn(ctx).QueryRow(ctx, `SELECT `+pacienteCols+` FROM paciente WHERE numero_documento = $1`, numero))
}

func (r *repoPG) Update(ctx context.Context, p *Paciente) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE paciente SET
			numero_documento=$2, nombre=$3, apellido=$4, fecha_nacimiento=$5,
			genero=$6, email=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.NumeroDocumento, p.Nombre, p.Apellido, p.FechaNacimiento, p.Genero, p.Email,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM paciente WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, query string, limit, offset int) ([]*Paciente, int, error) {
	pattern := "%" + query + "%"
	var total int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM paciente
		WHERE nombre ILIKE $1 OR apellido ILIKE $1 OR numero_documento ILIKE $1`,
		pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+pacienteCols+` FROM paciente
		WHERE nombre ILIKE $1 OR apellido ILIKE $1 OR numero_documento ILIKE $1
		ORDER BY apellido, nombre
		LIMIT $2 OFFSET $3`,
		pattern, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Paciente
	for rows.Next() {
		var p Paciente
		if err := rows.Scan(
			&p.ID, &p.NumeroDocumento, &p.Nombre, &p.Apellido,
			&p.FechaNacimiento, &p.Genero, &p.Email, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, &p)
	}
	return out, total, rows.Err()
}

func (r *repoPG) AddDireccion(ctx context.Context, d *Direccion) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO direccion (id, paciente_id, direccion, codigo_postal)
		VALUES ($1,$2,$3,$4)`,
		d.ID, d.PacienteID, d.Direccion, d.CodigoPostal,
	)
	return err
}

func (r *repoPG) ListDirecciones(ctx context.Context, pacienteID uuid.UUID) ([]*Direccion, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, paciente_id, direccion, codigo_postal, created_at
		FROM direccion WHERE paciente_id = $1 ORDER BY created_at`,
		pacienteID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Direccion
	for rows.Next() {
		var d Direccion
		if err := rows.Scan(&d.ID, &d.PacienteID, &d.Direccion, &d.CodigoPostal, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *repoPG) RemoveDireccion(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM direccion WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("direccion %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *repoPG) AddTelefono(ctx context.Context, t *Telefono) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO telefono (id, paciente_id, tipo, numero, es_principal)
		VALUES ($1,$2,$3,$4,$5)`,
		t.ID, t.PacienteID, t.Tipo, t.Numero, t.EsPrincipal,
	)
	return err
}

func (r *repoPG) ListTelefonos(ctx context.Context, pacienteID uuid.UUID) ([]*Telefono, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, paciente_id, tipo, numero, es_principal, created_at
		FROM telefono WHERE paciente_id = $1 ORDER BY es_principal DESC, created_at`,
		pacienteID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Telefono
	for rows.Next() {
		var t Telefono
		if err := rows.Scan(&t.ID, &t.PacienteID, &t.Tipo, &t.Numero, &t.EsPrincipal, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *repoPG) GetTelefonoPrincipal(ctx context.Context, pacienteID uuid.UUID) (*Telefono, error) {
	var t Telefono
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, paciente_id, tipo, numero, es_principal, created_at
		FROM telefono WHERE paciente_id = $1 AND es_principal`,
		pacienteID,
	).Scan(&t.ID, &t.PacienteID, &t.Tipo, &t.Numero, &t.EsPrincipal, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repoPG) ClearPrincipal(ctx context.Context, pacienteID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE telefono SET es_principal = FALSE WHERE paciente_id = $1 AND es_principal`,
		pacienteID,
	)
	return err
}

func (r *repoPG) RemoveTelefono(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM telefono WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("telefono %s: %w", id, ErrNotFound)
	}
	return nil
}
