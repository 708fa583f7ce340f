package infra

// pdf.go renders the monthly commission report with go-pdf/fpdf: an A4 page with
// the agent and period header, one row per ACTIVA policy (client, effective date,
// premium, monthly and annual commission) and a bold totals row.
// The file is written to storagePath/comisiones_{agente}_{anio}_{mes}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"crmseguros/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GenerateComisionPDF writes the report and returns the file path.
func GenerateComisionPDF(rep *dto.ComisionReporteResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	agente := "todos"
	if rep.AgenteID != nil {
		agente = *rep.AgenteID
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("comisiones_%s_%04d_%02d.pdf", agente, rep.Anio, rep.Mes))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr("Reporte de comisiones"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	nombre := rep.AgenteNombre
	if nombre == "" {
		nombre = "Todos los agentes"
	}
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Agente: %s", nombre)), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Periodo: %02d/%04d", rep.Mes, rep.Anio), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Generado: "+time.Now().Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Table ────────────────────────────────────────────────────────────────
	cols := []float64{contentW * 0.32, contentW * 0.16, contentW * 0.16, contentW * 0.18, contentW * 0.18}
	pdf.SetFont("Helvetica", "B", 8)
	for i, h := range []string{"Cliente", "Fecha", "Prima", "Comision mensual", "Comision anual"} {
		align := "R"
		if i < 2 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 6, tr(h), "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, p := range rep.Polizas {
		cliente := p.ClienteNombre
		if r := []rune(cliente); len(r) > 34 {
			cliente = string(r[:33]) + "..."
		}
		pdf.CellFormat(cols[0], 5, tr(cliente), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 5, p.FechaEfectiva.Format("02/01/2006"), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[2], 5, "$"+p.PrimaTotal.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 5, "$"+p.ComisionMensual.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[4], 5, "$"+p.ComisionAnual.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if len(rep.Polizas) == 0 {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 6, tr("Sin pólizas activas en el periodo"), "", 1, "C", false, 0, "")
	}

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(cols[0]+cols[1], 6, "TOTAL", "T", 0, "L", false, 0, "")
	pdf.CellFormat(cols[2], 6, "$"+rep.PrimaTotal.StringFixed(2), "T", 0, "R", false, 0, "")
	pdf.CellFormat(cols[3], 6, "$"+rep.ComisionMensual.StringFixed(2), "T", 0, "R", false, 0, "")
	pdf.CellFormat(cols[4], 6, "$"+rep.ComisionAnual.StringFixed(2), "T", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
