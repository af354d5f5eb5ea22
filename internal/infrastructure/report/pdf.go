// Package report renders printable artifacts.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"rebanho/internal/domain/reports"
)

// PDFWorklist renders the pregnancy-diagnosis worklist the vet takes to
// the field: one row per recipient, with the due date up top.
type PDFWorklist struct {
	outputDir string
}

func NewPDFWorklist(outputDir string) *PDFWorklist {
	return &PDFWorklist{outputDir: outputDir}
}

func (g *PDFWorklist) Generate(_ context.Context, in reports.WorklistInput) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Diagnostico de Gestacao", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Diagnostico de Gestacao", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Documento: %s", in.DocumentNumber), "", 1, "L", false, 0, "")
	if in.RecipientBatch != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Lote de receptoras: %s", in.RecipientBatch), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Chegada: %s", in.ArrivalDate.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Data do DG: %s", in.DiagnosisDate.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{35, 20, 40, 35, 60}
	headers := []string{"Brinco", "Sexo", "Raca", "Categoria", "Resultado"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range in.Items {
		pdf.CellFormat(widths[0], 8, item.EarringTag, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, item.Sex, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 8, item.Breed, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 8, item.AgeBracket, "1", 0, "L", false, 0, "")
		// Blank cell for the vet's pen.
		pdf.CellFormat(widths[4], 8, "", "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total de receptoras: %d", len(in.Items)), "", 1, "L", false, 0, "")

	name := fmt.Sprintf("dg_%s_%s.pdf",
		sanitizeFileName(in.DocumentNumber),
		in.DiagnosisDate.Format("2006-01-02"))
	path := filepath.Join(g.outputDir, name)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write worklist pdf: %w", err)
	}
	return path, nil
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

var _ reports.WorklistGenerator = (*PDFWorklist)(nil)
