package historial

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/histomed/histomed/internal/platform/db"
)

// ErrNotFound is returned when no historial or sub-record matches.
var ErrNotFound = errors.New("historial not found")

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

// -- Container --

func (r *repoPG) Create(ctx context.Context, h *HistorialMedico) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO historial_medico (id, paciente_id, medico_id, medico_nombre, fecha)
		VALUES ($1,$2,$3,$4,$5)`,
		h.ID, h.PacienteID, h.MedicoID, h.MedicoNombre, h.Fecha,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*HistorialMedico, error) {
	var h HistorialMedico
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, paciente_id, medico_id, medico_nombre, fecha, created_at, updated_at
		FROM historial_medico WHERE id = $1`, id,
	).Scan(&h.ID, &h.PacienteID, &h.MedicoID, &h.MedicoNombre, &h.Fecha, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *repoPG) Touch(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE historial_medico SET updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM historial_medico WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const resumenCols = `h.id, h.fecha, h.medico_id, h.medico_nombre,
	p.id, p.nombre, p.apellido, p.numero_documento`

func scanResumenes(rows pgx.Rows) ([]*Resumen, error) {
	defer rows.Close()
	var out []*Resumen
	for rows.Next() {
		var r Resumen
		if err := rows.Scan(
			&r.ID, &r.Fecha, &r.MedicoID, &r.MedicoNombre,
			&r.PacienteID, &r.PacienteNombre, &r.PacienteApellido, &r.NumeroDocumento,
		); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (r *repoPG) List(ctx context.Context, medicoID *uuid.UUID, limit, offset int) ([]*Resumen, int, error) {
	where := ""
	args := []interface{}{}
	if medicoID != nil {
		where = `WHERE h.medico_id = $1`
		args = append(args, *medicoID)
	}

	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM historial_medico h `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(`
		SELECT `+resumenCols+`
		FROM historial_medico h
		JOIN paciente p ON p.id = h.paciente_id
		%s
		ORDER BY h.fecha DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	items, err := scanResumenes(rows)
	return items, total, err
}

func (r *repoPG) Search(ctx context.Context, query string, medicoID *uuid.UUID, limit, offset int) ([]*Resumen, int, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	where := `WHERE (p.nombre ILIKE $1 OR p.apellido ILIKE $1 OR p.numero_documento ILIKE $1)`
	args := []interface{}{pattern}
	if medicoID != nil {
		where += ` AND h.medico_id = $2`
		args = append(args, *medicoID)
	}

	var total int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(DISTINCT h.id)
		FROM historial_medico h
		JOIN paciente p ON p.id = h.paciente_id `+where,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(`
		SELECT DISTINCT `+resumenCols+`
		FROM historial_medico h
		JOIN paciente p ON p.id = h.paciente_id
		%s
		ORDER BY h.fecha DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	items, err := scanResumenes(rows)
	return items, total, err
}

// -- Historia general --

const generalCols = `id, historial_id, peso, talla, ta, afiliacion,
	motivo_consulta, enfermedad_actual,
	ant_personal_diabetes, ant_personal_hipertension, ant_personal_cardiopatia,
	ant_personal_hepatitis, ant_personal_asma, ant_personal_cirugias, ant_personal_alergias,
	ant_familiar_diabetes, ant_familiar_hipertension, ant_familiar_cardiopatia, ant_familiar_cancer,
	antecedentes_otros, examen_fisico, diagnostico, plan`

func (r *repoPG) CreateGeneral(ctx context.Context, g *HistoriaGeneral) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO historia_general (`+generalCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`,
		g.ID, g.HistorialID, g.Peso, g.Talla, g.TA, g.Afiliacion,
		g.MotivoConsulta, g.EnfermedadActual,
		g.AntPersonalDiabetes, g.AntPersonalHipertension, g.AntPersonalCardiopatia,
		g.AntPersonalHepatitis, g.AntPersonalAsma, g.AntPersonalCirugias, g.AntPersonalAlergias,
		g.AntFamiliarDiabetes, g.AntFamiliarHipertension, g.AntFamiliarCardiopatia, g.AntFamiliarCancer,
		g.AntecedentesOtros, g.ExamenFisico, g.Diagnostico, g.Plan,
	)
	return err
}

func (r *repoPG) GetGeneral(ctx context.Context, historialID uuid.UUID) (*HistoriaGeneral, error) {
	var g HistoriaGeneral
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+generalCols+` FROM historia_general WHERE historial_id = $1`, historialID,
	).Scan(
		&g.ID, &g.HistorialID, &g.Peso, &g.Talla, &g.TA, &g.Afiliacion,
		&g.MotivoConsulta, &g.EnfermedadActual,
		&g.AntPersonalDiabetes, &g.AntPersonalHipertension, &g.AntPersonalCardiopatia,
		&g.AntPersonalHepatitis, &g.AntPersonalAsma, &g.AntPersonalCirugias, &g.AntPersonalAlergias,
		&g.AntFamiliarDiabetes, &g.AntFamiliarHipertension, &g.AntFamiliarCardiopatia, &g.AntFamiliarCancer,
		&g.AntecedentesOtros, &g.ExamenFisico, &g.Diagnostico, &g.Plan,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repoPG) UpdateGeneral(ctx context.Context, g *HistoriaGeneral) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE historia_general SET
			peso=$2, talla=$3, ta=$4, afiliacion=$5,
			motivo_consulta=$6, enfermedad_actual=$7,
			ant_personal_diabetes=$8, ant_personal_hipertension=$9, ant_personal_cardiopatia=$10,
			ant_personal_hepatitis=$11, ant_personal_asma=$12, ant_personal_cirugias=$13, ant_personal_alergias=$14,
			ant_familiar_diabetes=$15, ant_familiar_hipertension=$16, ant_familiar_cardiopatia=$17, ant_familiar_cancer=$18,
			antecedentes_otros=$19, examen_fisico=$20, diagnostico=$21, plan=$22
		WHERE historial_id = $1`,
		g.HistorialID, g.Peso, g.Talla, g.TA, g.Afiliacion,
		g.MotivoConsulta, g.EnfermedadActual,
		g.AntPersonalDiabetes, g.AntPersonalHipertension, g.AntPersonalCardiopatia,
		g.AntPersonalHepatitis, g.AntPersonalAsma, g.AntPersonalCirugias, g.AntPersonalAlergias,
		g.AntFamiliarDiabetes, g.AntFamiliarHipertension, g.AntFamiliarCardiopatia, g.AntFamiliarCancer,
		g.AntecedentesOtros, g.ExamenFisico, g.Diagnostico, g.Plan,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// -- Historia nutricion --

// nutricionCols lists the nutrition form columns. nutricionArgs and
// nutricionPtrs must keep the same order.
var nutricionCols = []string{
	"medicamentos", "cafeicos", "sueno", "cigarros", "apetito", "oh", "act_fisica",
	"n_comidas_dia", "n_meriendas_dia", "hidricos_vasos_dia",
	"alergias_alimentarias", "intolerancias_alimentarias",
	"funcional_masticacion", "funcional_disfagia", "funcional_nauseas",
	"funcional_vomitos", "funcional_pirosis", "funcional_rge",
	"micciones", "periodos_menstruales", "evacuaciones",
	"frec_leche_comp", "frec_leche_des", "frec_yogurt_nat", "frec_yogurt_des",
	"frec_vegetales_crudos", "frec_vegetales_cocidos", "frec_vegetales_licuados",
	"frec_frutas_enteras", "frec_frutas_licuadas",
	"frec_arepa", "frec_pan_blanco", "frec_pan_integral", "frec_pasta", "frec_arroz",
	"frec_tuberculos", "frec_platano", "frec_granos", "frec_casabe",
	"frec_pollo_c_piel", "frec_pollo_s_piel", "frec_pescado", "frec_res", "frec_cerdo",
	"frec_huevos", "frec_embutidos", "frec_pavo", "frec_visceras", "frec_otros_proteinas",
	"frec_aceite", "frec_mayonesa", "frec_mantequilla", "frec_margarina",
	"frec_frutos_secos", "frec_frituras", "frec_otros_grasas",
	"frec_galletas", "frec_dulces", "frec_salados", "frec_azucar", "frec_refrescos",
	"frec_jugos_envasados", "frec_malta", "frec_te_frio", "frec_sal", "frec_enlatados",
	"frec_cubitos", "frec_otros_adicional",
	"recordatorio_24h_d", "recordatorio_24h_m1", "recordatorio_24h_a",
	"recordatorio_24h_m2", "recordatorio_24h_c",
	"datos_laboratorio",
	"antropo_peso_usual", "antropo_peso_graso", "antropo_peso_max", "antropo_peso_magro",
	"antropo_peso_min", "antropo_porc_grasa", "antropo_porc_grasa_rcom", "antropo_peso_rcom",
	"tabla_antropometrica",
	"dx_nutricional", "req_rct", "req_kcal_kg", "req_cho", "req_prot", "req_grasa",
	"observaciones", "evolucion",
}

func nutricionArgs(n *HistoriaNutricion) []interface{} {
	return []interface{}{
		n.Medicamentos, n.Cafeicos, n.Sueno, n.Cigarros, n.Apetito, n.OH, n.ActFisica,
		n.NComidasDia, n.NMeriendasDia, n.HidricosVasosDia,
		n.AlergiasAlimentarias, n.IntoleranciasAlimentarias,
		n.FuncionalMasticacion, n.FuncionalDisfagia, n.FuncionalNauseas,
		n.FuncionalVomitos, n.FuncionalPirosis, n.FuncionalRGE,
		n.Micciones, n.PeriodosMenstruales, n.Evacuaciones,
		n.FrecLecheComp, n.FrecLecheDes, n.FrecYogurtNat, n.FrecYogurtDes,
		n.FrecVegetalesCrudos, n.FrecVegetalesCocidos, n.FrecVegetalesLicuados,
		n.FrecFrutasEnteras, n.FrecFrutasLicuadas,
		n.FrecArepa, n.FrecPanBlanco, n.FrecPanIntegral, n.FrecPasta, n.FrecArroz,
		n.FrecTuberculos, n.FrecPlatano, n.FrecGranos, n.FrecCasabe,
		n.FrecPolloCPiel, n.FrecPolloSPiel, n.FrecPescado, n.FrecRes, n.FrecCerdo,
		n.FrecHuevos, n.FrecEmbutidos, n.FrecPavo, n.FrecVisceras, n.FrecOtrosProteinas,
		n.FrecAceite, n.FrecMayonesa, n.FrecMantequilla, n.FrecMargarina,
		n.FrecFrutosSecos, n.FrecFrituras, n.FrecOtrosGrasas,
		n.FrecGalletas, n.FrecDulces, n.FrecSalados, n.FrecAzucar, n.FrecRefrescos,
		n.FrecJugosEnvasados, n.FrecMalta, n.FrecTeFrio, n.FrecSal, n.FrecEnlatados,
		n.FrecCubitos, n.FrecOtrosAdicional,
		n.Recordatorio24hD, n.Recordatorio24hM1, n.Recordatorio24hA,
		n.Recordatorio24hM2, n.Recordatorio24hC,
		n.DatosLaboratorio,
		n.AntropoPesoUsual, n.AntropoPesoGraso, n.AntropoPesoMax, n.AntropoPesoMagro,
		n.AntropoPesoMin, n.AntropoPorcGrasa, n.AntropoPorcGrasaRcom, n.AntropoPesoRcom,
		n.TablaAntropometrica,
		n.DxNutricional, n.ReqRCT, n.ReqKcalKg, n.ReqCHO, n.ReqProt, n.ReqGrasa,
		n.Observaciones, n.Evolucion,
	}
}

func nutricionPtrs(n *HistoriaNutricion) []interface{} {
	return []interface{}{
		&n.Medicamentos, &n.Cafeicos, &n.Sueno, &n.Cigarros, &n.Apetito, &n.OH, &n.ActFisica,
		&n.NComidasDia, &n.NMeriendasDia, &n.HidricosVasosDia,
		&n.AlergiasAlimentarias, &n.IntoleranciasAlimentarias,
		&n.FuncionalMasticacion, &n.FuncionalDisfagia, &n.FuncionalNauseas,
		&n.FuncionalVomitos, &n.FuncionalPirosis, &n.FuncionalRGE,
		&n.Micciones, &n.PeriodosMenstruales, &n.Evacuaciones,
		&n.FrecLecheComp, &n.FrecLecheDes, &n.FrecYogurtNat, &n.FrecYogurtDes,
		&n.FrecVegetalesCrudos, &n.FrecVegetalesCocidos, &n.FrecVegetalesLicuados,
		&n.FrecFrutasEnteras, &n.FrecFrutasLicuadas,
		&n.FrecArepa, &n.FrecPanBlanco, &n.FrecPanIntegral, &n.FrecPasta, &n.FrecArroz,
		&n.FrecTuberculos, &n.FrecPlatano, &n.FrecGranos, &n.FrecCasabe,
		&n.FrecPolloCPiel, &n.FrecPolloSPiel, &n.FrecPescado, &n.FrecRes, &n.FrecCerdo,
		&n.FrecHuevos, &n.FrecEmbutidos, &n.FrecPavo, &n.FrecVisceras, &n.FrecOtrosProteinas,
		&n.FrecAceite, &n.FrecMayonesa, &n.FrecMantequilla, &n.FrecMargarina,
		&n.FrecFrutosSecos, &n.FrecFrituras, &n.FrecOtrosGrasas,
		&n.FrecGalletas, &n.FrecDulces, &n.FrecSalados, &n.FrecAzucar, &n.FrecRefrescos,
		&n.FrecJugosEnvasados, &n.FrecMalta, &n.FrecTeFrio, &n.FrecSal, &n.FrecEnlatados,
		&n.FrecCubitos, &n.FrecOtrosAdicional,
		&n.Recordatorio24hD, &n.Recordatorio24hM1, &n.Recordatorio24hA,
		&n.Recordatorio24hM2, &n.Recordatorio24hC,
		&n.DatosLaboratorio,
		&n.AntropoPesoUsual, &n.AntropoPesoGraso, &n.AntropoPesoMax, &n.AntropoPesoMagro,
		&n.AntropoPesoMin, &n.AntropoPorcGrasa, &n.AntropoPorcGrasaRcom, &n.AntropoPesoRcom,
		&n.TablaAntropometrica,
		&n.DxNutricional, &n.ReqRCT, &n.ReqKcalKg, &n.ReqCHO, &n.ReqProt, &n.ReqGrasa,
		&n.Observaciones, &n.Evolucion,
	}
}

func (r *repoPG) CreateNutricion(ctx context.Context, n *HistoriaNutricion) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	cols := append([]string{"id", "historial_id"}, nutricionCols...)
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	args := append([]interface{}{n.ID, n.HistorialID}, nutricionArgs(n)...)
	_, err := r.conn(ctx).Exec(ctx, fmt.Sprintf(
		`INSERT INTO historia_nutricion (%s) VALUES (%s)`,
		strings.Join(cols, ", "), strings.Join(ph, ",")),
		args...,
	)
	return err
}

func (r *repoPG) GetNutricion(ctx context.Context, historialID uuid.UUID) (*HistoriaNutricion, error) {
	var n HistoriaNutricion
	dest := append([]interface{}{&n.ID, &n.HistorialID}, nutricionPtrs(&n)...)
	err := r.conn(ctx).QueryRow(ctx, fmt.Sprintf(
		`SELECT id, historial_id, %s FROM historia_nutricion WHERE historial_id = $1`,
		strings.Join(nutricionCols, ", ")),
		historialID,
	).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repoPG) UpdateNutricion(ctx context.Context, n *HistoriaNutricion) error {
	sets := make([]string, len(nutricionCols))
	for i, col := range nutricionCols {
		sets[i] = fmt.Sprintf("%s=$%d", col, i+2)
	}
	args := append([]interface{}{n.HistorialID}, nutricionArgs(n)...)
	tag, err := r.conn(ctx).Exec(ctx, fmt.Sprintf(
		`UPDATE historia_nutricion SET %s WHERE historial_id = $1`,
		strings.Join(sets, ", ")),
		args...,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
