package app

import (
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// writeDecisionPDF renders extracted decision text to a minimal A4 PDF.
// The cp1254 translator covers Turkish characters with the core fonts.
func writeDecisionPDF(title, text, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1254")
	pdf.AddPage()

	if strings.TrimSpace(title) != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 8, tr(title), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			pdf.Ln(5)
			continue
		}
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
	return pdf.OutputFileAndClose(outPath)
}
