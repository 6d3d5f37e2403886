package infra

// pdf.go: weekly sales report rendered with go-pdf/fpdf.
// One section per week (newest first) with a row per agent, followed by the
// week total and the agents' profit.

import (
	"bytes"
	"fmt"
	"time"

	"github.com/menuvercel/mitienda-host/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GenerateReporteSemanalPDF renders the grouped weekly sales report as an A4 PDF.
func GenerateReporteSemanalPDF(semanas []dto.SemanaResponse, generadoEn time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	// Core fonts are cp1252; agent names may carry accents.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr("Reporte semanal de ventas"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Generado: "+generadoEn.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if len(semanas) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(contentW, 6, tr("Sin ventas registradas"), "", 1, "C", false, 0, "")
	}

	colNombre := contentW * 0.50
	colTotal := contentW * 0.25
	colGanancia := contentW * 0.25

	for _, sem := range semanas {
		// ── Week header ──────────────────────────────────────────────────────
		pdf.SetFont("Helvetica", "B", 11)
		titulo := fmt.Sprintf("Semana %s al %s", fechaCorta(sem.FechaInicio), fechaCorta(sem.FechaFin))
		pdf.CellFormat(contentW, 7, tr(titulo), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(colNombre, 6, "Vendedor", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colTotal, 6, "Total", "1", 0, "R", true, 0, "")
		pdf.CellFormat(colGanancia, 6, "Ganancia", "1", 1, "R", true, 0, "")

		// ── Agent rows ───────────────────────────────────────────────────────
		pdf.SetFont("Helvetica", "", 9)
		for _, v := range sem.Ventas {
			pdf.CellFormat(colNombre, 6, tr(v.VendedorNombre), "1", 0, "L", false, 0, "")
			pdf.CellFormat(colTotal, 6, "$"+v.Total.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(colGanancia, 6, "$"+v.Ganancia.StringFixed(2), "1", 1, "R", false, 0, "")
		}

		// ── Week totals ──────────────────────────────────────────────────────
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(colNombre, 6, "Total semana", "1", 0, "L", false, 0, "")
		pdf.CellFormat(colTotal, 6, "$"+sem.Total.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colGanancia, 6, "$"+sem.Ganancia.StringFixed(2), "1", 1, "R", false, 0, "")
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

// fechaCorta turns YYYY-MM-DD into DD/MM/YYYY; unparseable input is returned as is.
func fechaCorta(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}
