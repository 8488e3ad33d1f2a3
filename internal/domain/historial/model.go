package historial

import (
	"time"

	"github.com/google/uuid"
)

// HistorialMedico is the clinical session container. Form data lives in the
// sub-records; the container only carries patient, clinician and date.
type HistorialMedico struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PacienteID   uuid.UUID  `db:"paciente_id" json:"paciente_id"`
	MedicoID     *uuid.UUID `db:"medico_id" json:"medico_id,omitempty"`
	MedicoNombre string     `db:"medico_nombre" json:"medico_nombre"`
	Fecha        time.Time  `db:"fecha" json:"fecha"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Afiliacion values for the general history form.
const (
	AfiliacionEstudiante = "estudiante"
	AfiliacionDocente    = "docente"
	AfiliacionEmpleado   = "empleado"
	AfiliacionOtro       = "otro"
)

// HistoriaGeneral is the general-medicine form, at most one per historial.
type HistoriaGeneral struct {
	ID          uuid.UUID `db:"id" json:"id"`
	HistorialID uuid.UUID `db:"historial_id" json:"historial_id"`

	Peso       *float64 `db:"peso" json:"peso,omitempty"`
	Talla      *float64 `db:"talla" json:"talla,omitempty"`
	TA         string   `db:"ta" json:"ta"`
	Afiliacion string   `db:"afiliacion" json:"afiliacion"`

	MotivoConsulta   string `db:"motivo_consulta" json:"motivo_consulta"`
	EnfermedadActual string `db:"enfermedad_actual" json:"enfermedad_actual"`

	AntPersonalDiabetes     bool   `db:"ant_personal_diabetes" json:"ant_personal_diabetes"`
	AntPersonalHipertension bool   `db:"ant_personal_hipertension" json:"ant_personal_hipertension"`
	AntPersonalCardiopatia  bool   `db:"ant_personal_cardiopatia" json:"ant_personal_cardiopatia"`
	AntPersonalHepatitis    bool   `db:"ant_personal_hepatitis" json:"ant_personal_hepatitis"`
	AntPersonalAsma         bool   `db:"ant_personal_asma" json:"ant_personal_asma"`
	AntPersonalCirugias     bool   `db:"ant_personal_cirugias" json:"ant_personal_cirugias"`
	AntPersonalAlergias     bool   `db:"ant_personal_alergias" json:"ant_personal_alergias"`
	AntFamiliarDiabetes     bool   `db:"ant_familiar_diabetes" json:"ant_familiar_diabetes"`
	AntFamiliarHipertension bool   `db:"ant_familiar_hipertension" json:"ant_familiar_hipertension"`
	AntFamiliarCardiopatia  bool   `db:"ant_familiar_cardiopatia" json:"ant_familiar_cardiopatia"`
	AntFamiliarCancer       bool   `db:"ant_familiar_cancer" json:"ant_familiar_cancer"`
	AntecedentesOtros       string `db:"antecedentes_otros" json:"antecedentes_otros"`

	ExamenFisico string `db:"examen_fisico" json:"examen_fisico"`
	Diagnostico  string `db:"diagnostico" json:"diagnostico"`
	Plan         string `db:"plan" json:"plan"`
}

// Frecuencia is a food-frequency code. Empty means not recorded.
type Frecuencia string

const (
	FrecDiario    Frecuencia = "D"
	FrecSemanal   Frecuencia = "S"
	FrecMensual   Frecuencia = "M"
	FrecOcasional Frecuencia = "O"
	FrecNunca     Frecuencia = "N"
)

// Valid reports whether f is one of the accepted codes or unset.
func (f Frecuencia) Valid() bool {
	switch f {
	case "", FrecDiario, FrecSemanal, FrecMensual, FrecOcasional, FrecNunca:
		return true
	}
	return false
}

// HistoriaNutricion is the nutrition form, at most one per historial.
// The field catalog follows the paper form page by page.
type HistoriaNutricion struct {
	ID          uuid.UUID `db:"id" json:"id"`
	HistorialID uuid.UUID `db:"historial_id" json:"historial_id"`

	// Habitos psicobiologicos
	Medicamentos string `db:"medicamentos" json:"medicamentos"`
	Cafeicos     string `db:"cafeicos" json:"cafeicos"`
	Sueno        string `db:"sueno" json:"sueno"`
	Cigarros     string `db:"cigarros" json:"cigarros"`
	Apetito      string `db:"apetito" json:"apetito"`
	OH           string `db:"oh" json:"oh"`
	ActFisica    string `db:"act_fisica" json:"act_fisica"`

	// Habitos alimentarios
	NComidasDia               *int   `db:"n_comidas_dia" json:"n_comidas_dia,omitempty"`
	NMeriendasDia             *int   `db:"n_meriendas_dia" json:"n_meriendas_dia,omitempty"`
	HidricosVasosDia          *int   `db:"hidricos_vasos_dia" json:"hidricos_vasos_dia,omitempty"`
	AlergiasAlimentarias      string `db:"alergias_alimentarias" json:"alergias_alimentarias"`
	IntoleranciasAlimentarias string `db:"intolerancias_alimentarias" json:"intolerancias_alimentarias"`

	// Examen funcional
	FuncionalMasticacion bool `db:"funcional_masticacion" json:"funcional_masticacion"`
	FuncionalDisfagia    bool `db:"funcional_disfagia" json:"funcional_disfagia"`
	FuncionalNauseas     bool `db:"funcional_nauseas" json:"funcional_nauseas"`
	FuncionalVomitos     bool `db:"funcional_vomitos" json:"funcional_vomitos"`
	FuncionalPirosis     bool `db:"funcional_pirosis" json:"funcional_pirosis"`
	FuncionalRGE         bool `db:"funcional_rge" json:"funcional_rge"`

	Micciones           string `db:"micciones" json:"micciones"`
	PeriodosMenstruales string `db:"periodos_menstruales" json:"periodos_menstruales"`
	Evacuaciones        string `db:"evacuaciones" json:"evacuaciones"`

	// Frecuencia de consumo
	FrecLecheComp         Frecuencia `db:"frec_leche_comp" json:"frec_leche_comp"`
	FrecLecheDes          Frecuencia `db:"frec_leche_des" json:"frec_leche_des"`
	FrecYogurtNat         Frecuencia `db:"frec_yogurt_nat" json:"frec_yogurt_nat"`
	FrecYogurtDes         Frecuencia `db:"frec_yogurt_des" json:"frec_yogurt_des"`
	FrecVegetalesCrudos   Frecuencia `db:"frec_vegetales_crudos" json:"frec_vegetales_crudos"`
	FrecVegetalesCocidos  Frecuencia `db:"frec_vegetales_cocidos" json:"frec_vegetales_cocidos"`
	FrecVegetalesLicuados Frecuencia `db:"frec_vegetales_licuados" json:"frec_vegetales_licuados"`
	FrecFrutasEnteras     Frecuencia `db:"frec_frutas_enteras" json:"frec_frutas_enteras"`
	FrecFrutasLicuadas    Frecuencia `db:"frec_frutas_licuadas" json:"frec_frutas_licuadas"`
	FrecArepa             Frecuencia `db:"frec_arepa" json:"frec_arepa"`
	FrecPanBlanco         Frecuencia `db:"frec_pan_blanco" json:"frec_pan_blanco"`
	FrecPanIntegral       Frecuencia `db:"frec_pan_integral" json:"frec_pan_integral"`
	FrecPasta             Frecuencia `db:"frec_pasta" json:"frec_pasta"`
	FrecArroz             Frecuencia `db:"frec_arroz" json:"frec_arroz"`
	FrecTuberculos        Frecuencia `db:"frec_tuberculos" json:"frec_tuberculos"`
	FrecPlatano           Frecuencia `db:"frec_platano" json:"frec_platano"`
	FrecGranos            Frecuencia `db:"frec_granos" json:"frec_granos"`
	FrecCasabe            Frecuencia `db:"frec_casabe" json:"frec_casabe"`
	FrecPolloCPiel        Frecuencia `db:"frec_pollo_c_piel" json:"frec_pollo_c_piel"`
	FrecPolloSPiel        Frecuencia `db:"frec_pollo_s_piel" json:"frec_pollo_s_piel"`
	FrecPescado           Frecuencia `db:"frec_pescado" json:"frec_pescado"`
	FrecRes               Frecuencia `db:"frec_res" json:"frec_res"`
	FrecCerdo             Frecuencia `db:"frec_cerdo" json:"frec_cerdo"`
	FrecHuevos            Frecuencia `db:"frec_huevos" json:"frec_huevos"`
	FrecEmbutidos         Frecuencia `db:"frec_embutidos" json:"frec_embutidos"`
	FrecPavo              Frecuencia `db:"frec_pavo" json:"frec_pavo"`
	FrecVisceras          Frecuencia `db:"frec_visceras" json:"frec_visceras"`
	FrecOtrosProteinas    string     `db:"frec_otros_proteinas" json:"frec_otros_proteinas"`
	FrecAceite            Frecuencia `db:"frec_aceite" json:"frec_aceite"`
	FrecMayonesa          Frecuencia `db:"frec_mayonesa" json:"frec_mayonesa"`
	FrecMantequilla       Frecuencia `db:"frec_mantequilla" json:"frec_mantequilla"`
	FrecMargarina         Frecuencia `db:"frec_margarina" json:"frec_margarina"`
	FrecFrutosSecos       Frecuencia `db:"frec_frutos_secos" json:"frec_frutos_secos"`
	FrecFrituras          Frecuencia `db:"frec_frituras" json:"frec_frituras"`
	FrecOtrosGrasas       string     `db:"frec_otros_grasas" json:"frec_otros_grasas"`
	FrecGalletas          Frecuencia `db:"frec_galletas" json:"frec_galletas"`
	FrecDulces            Frecuencia `db:"frec_dulces" json:"frec_dulces"`
	FrecSalados           Frecuencia `db:"frec_salados" json:"frec_salados"`
	FrecAzucar            Frecuencia `db:"frec_azucar" json:"frec_azucar"`
	FrecRefrescos         Frecuencia `db:"frec_refrescos" json:"frec_refrescos"`
	FrecJugosEnvasados    Frecuencia `db:"frec_jugos_envasados" json:"frec_jugos_envasados"`
	FrecMalta             Frecuencia `db:"frec_malta" json:"frec_malta"`
	FrecTeFrio            Frecuencia `db:"frec_te_frio" json:"frec_te_frio"`
	FrecSal               Frecuencia `db:"frec_sal" json:"frec_sal"`
	FrecEnlatados         Frecuencia `db:"frec_enlatados" json:"frec_enlatados"`
	FrecCubitos           Frecuencia `db:"frec_cubitos" json:"frec_cubitos"`
	FrecOtrosAdicional    string     `db:"frec_otros_adicional" json:"frec_otros_adicional"`

	// Recordatorio 24h
	Recordatorio24hD  string `db:"recordatorio_24h_d" json:"recordatorio_24h_d"`
	Recordatorio24hM1 string `db:"recordatorio_24h_m1" json:"recordatorio_24h_m1"`
	Recordatorio24hA  string `db:"recordatorio_24h_a" json:"recordatorio_24h_a"`
	Recordatorio24hM2 string `db:"recordatorio_24h_m2" json:"recordatorio_24h_m2"`
	Recordatorio24hC  string `db:"recordatorio_24h_c" json:"recordatorio_24h_c"`

	DatosLaboratorio string `db:"datos_laboratorio" json:"datos_laboratorio"`

	// Datos antropometricos
	AntropoPesoUsual     *float64 `db:"antropo_peso_usual" json:"antropo_peso_usual,omitempty"`
	AntropoPesoGraso     *float64 `db:"antropo_peso_graso" json:"antropo_peso_graso,omitempty"`
	AntropoPesoMax       *float64 `db:"antropo_peso_max" json:"antropo_peso_max,omitempty"`
	AntropoPesoMagro     *float64 `db:"antropo_peso_magro" json:"antropo_peso_magro,omitempty"`
	AntropoPesoMin       *float64 `db:"antropo_peso_min" json:"antropo_peso_min,omitempty"`
	AntropoPorcGrasa     *float64 `db:"antropo_porc_grasa" json:"antropo_porc_grasa,omitempty"`
	AntropoPorcGrasaRcom *float64 `db:"antropo_porc_grasa_rcom" json:"antropo_porc_grasa_rcom,omitempty"`
	AntropoPesoRcom      *float64 `db:"antropo_peso_rcom" json:"antropo_peso_rcom,omitempty"`

	TablaAntropometrica string `db:"tabla_antropometrica" json:"tabla_antropometrica"`

	// Diagnostico y requerimiento
	DxNutricional string   `db:"dx_nutricional" json:"dx_nutricional"`
	ReqRCT        *float64 `db:"req_rct" json:"req_rct,omitempty"`
	ReqKcalKg     *float64 `db:"req_kcal_kg" json:"req_kcal_kg,omitempty"`
	ReqCHO        *float64 `db:"req_cho" json:"req_cho,omitempty"`
	ReqProt       *float64 `db:"req_prot" json:"req_prot,omitempty"`
	ReqGrasa      *float64 `db:"req_grasa" json:"req_grasa,omitempty"`

	Observaciones string `db:"observaciones" json:"observaciones"`
	Evolucion     string `db:"evolucion" json:"evolucion"`
}

// frecuencias enumerates every coded frequency field for validation and
// rendering. Order matches the paper form.
func (n *HistoriaNutricion) frecuencias() []struct {
	Campo string
	Valor Frecuencia
} {
	return []struct {
		Campo string
		Valor Frecuencia
	}{
		{"frec_leche_comp", n.FrecLecheComp},
		{"frec_leche_des", n.FrecLecheDes},
		{"frec_yogurt_nat", n.FrecYogurtNat},
		{"frec_yogurt_des", n.FrecYogurtDes},
		{"frec_vegetales_crudos", n.FrecVegetalesCrudos},
		{"frec_vegetales_cocidos", n.FrecVegetalesCocidos},
		{"frec_vegetales_licuados", n.FrecVegetalesLicuados},
		{"frec_frutas_enteras", n.FrecFrutasEnteras},
		{"frec_frutas_licuadas", n.FrecFrutasLicuadas},
		{"frec_arepa", n.FrecArepa},
		{"frec_pan_blanco", n.FrecPanBlanco},
		{"frec_pan_integral", n.FrecPanIntegral},
		{"frec_pasta", n.FrecPasta},
		{"frec_arroz", n.FrecArroz},
		{"frec_tuberculos", n.FrecTuberculos},
		{"frec_platano", n.FrecPlatano},
		{"frec_granos", n.FrecGranos},
		{"frec_casabe", n.FrecCasabe},
		{"frec_pollo_c_piel", n.FrecPolloCPiel},
		{"frec_pollo_s_piel", n.FrecPolloSPiel},
		{"frec_pescado", n.FrecPescado},
		{"frec_res", n.FrecRes},
		{"frec_cerdo", n.FrecCerdo},
		{"frec_huevos", n.FrecHuevos},
		{"frec_embutidos", n.FrecEmbutidos},
		{"frec_pavo", n.FrecPavo},
		{"frec_visceras", n.FrecVisceras},
		{"frec_aceite", n.FrecAceite},
		{"frec_mayonesa", n.FrecMayonesa},
		{"frec_mantequilla", n.FrecMantequilla},
		{"frec_margarina", n.FrecMargarina},
		{"frec_frutos_secos", n.FrecFrutosSecos},
		{"frec_frituras", n.FrecFrituras},
		{"frec_galletas", n.FrecGalletas},
		{"frec_dulces", n.FrecDulces},
		{"frec_salados", n.FrecSalados},
		{"frec_azucar", n.FrecAzucar},
		{"frec_refrescos", n.FrecRefrescos},
		{"frec_jugos_envasados", n.FrecJugosEnvasados},
		{"frec_malta", n.FrecMalta},
		{"frec_te_frio", n.FrecTeFrio},
		{"frec_sal", n.FrecSal},
		{"frec_enlatados", n.FrecEnlatados},
		{"frec_cubitos", n.FrecCubitos},
	}
}

// Resumen is a listing row: the container joined with patient display
// fields.
type Resumen struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Fecha           time.Time  `db:"fecha" json:"fecha"`
	MedicoID        *uuid.UUID `db:"medico_id" json:"medico_id,omitempty"`
	MedicoNombre    string     `db:"medico_nombre" json:"medico_nombre"`
	PacienteID      uuid.UUID  `db:"paciente_id" json:"paciente_id"`
	PacienteNombre  string     `db:"paciente_nombre" json:"paciente_nombre"`
	PacienteApellido string    `db:"paciente_apellido" json:"paciente_apellido"`
	NumeroDocumento string     `db:"numero_documento" json:"numero_documento"`
}
