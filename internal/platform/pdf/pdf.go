// Package pdf renders clinic documents for printing. Layout is
// deliberately plain: a branded header, a metadata block and a sequence
// of labeled sections.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// KV is one labeled value in a metadata block or section.
type KV struct {
	Label string
	Value string
}

// Section is a titled block of a document. Rows and Text may both be
// set; rows render first.
type Section struct {
	Title string
	Rows  []KV
	Text  string
}

// Document is a renderable clinic document.
type Document struct {
	Clinica   string
	Subtitulo string
	Titulo    string
	// Compact selects the half-sheet (A5) layout used for recipes.
	Compact  bool
	Meta     []KV
	Sections []Section
	Firma    string
}

// Renderer turns a Document into PDF bytes.
type Renderer interface {
	Render(doc *Document) ([]byte, error)
}

// FPDFRenderer renders documents with the fpdf library.
type FPDFRenderer struct{}

func NewRenderer() *FPDFRenderer {
	return &FPDFRenderer{}
}

func (r *FPDFRenderer) Render(doc *Document) ([]byte, error) {
	size := "A4"
	if doc.Compact {
		size = "A5"
	}
	pdf := fpdf.New("P", "mm", size, "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	w, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := w - left - right

	// Header
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(usable, 7, doc.Clinica, "", 1, "C", false, 0, "")
	if doc.Subtitulo != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(usable, 5, doc.Subtitulo, "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(usable, 7, doc.Titulo, "B", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Metadata block
	pdf.SetFont("Helvetica", "", 10)
	for _, kv := range doc.Meta {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 6, kv.Label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(usable-45, 6, kv.Value, "", "L", false)
	}
	if len(doc.Meta) > 0 {
		pdf.Ln(3)
	}

	for _, sec := range doc.Sections {
		if sec.Title != "" {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(usable, 7, sec.Title, "", 1, "L", false, 0, "")
		}
		pdf.SetFont("Helvetica", "", 10)
		for _, kv := range sec.Rows {
			pdf.CellFormat(60, 5.5, kv.Label, "", 0, "L", false, 0, "")
			pdf.MultiCell(usable-60, 5.5, kv.Value, "", "L", false)
		}
		if sec.Text != "" {
			pdf.MultiCell(usable, 5.5, sec.Text, "", "L", false)
		}
		pdf.Ln(2)
	}

	if doc.Firma != "" {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(usable, 5, "____________________________", "", 1, "C", false, 0, "")
		pdf.CellFormat(usable, 5, doc.Firma, "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
