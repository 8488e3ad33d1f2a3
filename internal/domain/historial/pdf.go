package historial

import (
	"fmt"
	"strings"

	"github.com/histomed/histomed/internal/platform/pdf"
)

var frecuenciaNombres = map[Frecuencia]string{
	FrecDiario:    "Diario",
	FrecSemanal:   "Semanal",
	FrecMensual:   "Mensual",
	FrecOcasional: "Ocasional",
	FrecNunca:     "Nunca",
}

func frecuenciaNombre(f Frecuencia) string {
	if nombre, ok := frecuenciaNombres[f]; ok {
		return nombre
	}
	return string(f)
}

func floatVal(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}

func intVal(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func siNo(b bool) string {
	if b {
		return "Si"
	}
	return "No"
}

func appendRow(rows []pdf.KV, label, value string) []pdf.KV {
	if strings.TrimSpace(value) == "" {
		return rows
	}
	return append(rows, pdf.KV{Label: label, Value: value})
}

// nutricionSections lays the nutrition form out page by page for
// printing. Empty fields are omitted except the functional exam, which
// always prints its checkboxes.
func nutricionSections(n *HistoriaNutricion) []pdf.Section {
	var sections []pdf.Section

	var habitos []pdf.KV
	habitos = appendRow(habitos, "Medicamentos", n.Medicamentos)
	habitos = appendRow(habitos, "Cafeicos", n.Cafeicos)
	habitos = appendRow(habitos, "Sueno", n.Sueno)
	habitos = appendRow(habitos, "Cigarros", n.Cigarros)
	habitos = appendRow(habitos, "Apetito", n.Apetito)
	habitos = appendRow(habitos, "Alcohol (OH)", n.OH)
	habitos = appendRow(habitos, "Actividad fisica", n.ActFisica)
	if len(habitos) > 0 {
		sections = append(sections, pdf.Section{Title: "Habitos psicobiologicos", Rows: habitos})
	}

	var alim []pdf.KV
	alim = appendRow(alim, "Comidas/dia", intVal(n.NComidasDia))
	alim = appendRow(alim, "Meriendas/dia", intVal(n.NMeriendasDia))
	alim = appendRow(alim, "Hidricos (vasos/dia)", intVal(n.HidricosVasosDia))
	alim = appendRow(alim, "Alergias alimentarias", n.AlergiasAlimentarias)
	alim = appendRow(alim, "Intolerancias", n.IntoleranciasAlimentarias)
	if len(alim) > 0 {
		sections = append(sections, pdf.Section{Title: "Habitos alimentarios", Rows: alim})
	}

	sections = append(sections, pdf.Section{
		Title: "Examen funcional",
		Rows: []pdf.KV{
			{Label: "Masticacion", Value: siNo(n.FuncionalMasticacion)},
			{Label: "Disfagia", Value: siNo(n.FuncionalDisfagia)},
			{Label: "Nauseas", Value: siNo(n.FuncionalNauseas)},
			{Label: "Vomitos", Value: siNo(n.FuncionalVomitos)},
			{Label: "Pirosis", Value: siNo(n.FuncionalPirosis)},
			{Label: "RGE", Value: siNo(n.FuncionalRGE)},
		},
	})

	var otros []pdf.KV
	otros = appendRow(otros, "Micciones", n.Micciones)
	otros = appendRow(otros, "Periodos menstruales", n.PeriodosMenstruales)
	otros = appendRow(otros, "Evacuaciones", n.Evacuaciones)
	if len(otros) > 0 {
		sections = append(sections, pdf.Section{Title: "Otros", Rows: otros})
	}

	var frec []pdf.KV
	for _, f := range n.frecuencias() {
		if f.Valor == "" {
			continue
		}
		label := strings.ReplaceAll(strings.TrimPrefix(f.Campo, "frec_"), "_", " ")
		frec = append(frec, pdf.KV{Label: label, Value: frecuenciaNombre(f.Valor)})
	}
	frec = appendRow(frec, "otros (proteinas)", n.FrecOtrosProteinas)
	frec = appendRow(frec, "otros (grasas)", n.FrecOtrosGrasas)
	frec = appendRow(frec, "otros (adicional)", n.FrecOtrosAdicional)
	if len(frec) > 0 {
		sections = append(sections, pdf.Section{Title: "Frecuencia de consumo", Rows: frec})
	}

	var rec []pdf.KV
	rec = appendRow(rec, "Desayuno", n.Recordatorio24hD)
	rec = appendRow(rec, "Merienda", n.Recordatorio24hM1)
	rec = appendRow(rec, "Almuerzo", n.Recordatorio24hA)
	rec = appendRow(rec, "Merienda", n.Recordatorio24hM2)
	rec = appendRow(rec, "Cena", n.Recordatorio24hC)
	if len(rec) > 0 {
		sections = append(sections, pdf.Section{Title: "Recordatorio 24h", Rows: rec})
	}

	if n.DatosLaboratorio != "" {
		sections = append(sections, pdf.Section{Title: "Datos de laboratorio", Text: n.DatosLaboratorio})
	}

	var antropo []pdf.KV
	antropo = appendRow(antropo, "Peso usual (kg)", floatVal(n.AntropoPesoUsual))
	antropo = appendRow(antropo, "Peso graso (kg)", floatVal(n.AntropoPesoGraso))
	antropo = appendRow(antropo, "Peso max (kg)", floatVal(n.AntropoPesoMax))
	antropo = appendRow(antropo, "Peso magro (kg)", floatVal(n.AntropoPesoMagro))
	antropo = appendRow(antropo, "Peso min (kg)", floatVal(n.AntropoPesoMin))
	antropo = appendRow(antropo, "% grasa", floatVal(n.AntropoPorcGrasa))
	antropo = appendRow(antropo, "% grasa recomendado", floatVal(n.AntropoPorcGrasaRcom))
	antropo = appendRow(antropo, "Peso recomendado (kg)", floatVal(n.AntropoPesoRcom))
	if len(antropo) > 0 {
		sections = append(sections, pdf.Section{Title: "Datos antropometricos", Rows: antropo})
	}
	if n.TablaAntropometrica != "" {
		sections = append(sections, pdf.Section{Title: "Evolucion antropometrica", Text: n.TablaAntropometrica})
	}

	var dx []pdf.KV
	dx = appendRow(dx, "Dx nutricional", n.DxNutricional)
	dx = appendRow(dx, "RCT (kcal)", floatVal(n.ReqRCT))
	dx = appendRow(dx, "kcal/kg", floatVal(n.ReqKcalKg))
	dx = appendRow(dx, "CHO (g)", floatVal(n.ReqCHO))
	dx = appendRow(dx, "Proteinas (g)", floatVal(n.ReqProt))
	dx = appendRow(dx, "Grasas (g)", floatVal(n.ReqGrasa))
	if len(dx) > 0 {
		sections = append(sections, pdf.Section{Title: "Diagnostico y requerimiento", Rows: dx})
	}

	if n.Observaciones != "" {
		sections = append(sections, pdf.Section{Title: "Observaciones", Text: n.Observaciones})
	}
	if n.Evolucion != "" {
		sections = append(sections, pdf.Section{Title: "Evolucion", Text: n.Evolucion})
	}
	return sections
}
