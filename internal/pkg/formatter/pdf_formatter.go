package formatter

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"

	"github.com/offlinellm/client-go/internal/entity"
	"github.com/offlinellm/client-go/internal/pkg/think"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// Relative paths where the TTF font may live: next to the binary
	// (container layout) or in the source tree (`go run` from repo root).
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}
	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}
	return ""
}

func (mf *PDFFormatter) Format(transcript entity.Transcript) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Prefer the UTF-8 capable DejaVuSans font when bundled.
	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 20)
	pdf.Cell(0, 10, transcript.Title)
	pdf.Ln(14)

	_, lineHeight := pdf.GetFontSize()
	for _, msg := range transcript.Messages {
		visible := think.Split(msg.Text).Visible
		if visible == "" {
			continue
		}

		pdf.SetFont(fontName, "B", 12)
		pdf.Cell(0, lineHeight*1.5, originLabel(msg.Origin))
		pdf.Ln(lineHeight * 1.5)

		pdf.SetFont(fontName, "", 12)
		pdf.MultiCell(0, lineHeight*1.5, visible, "", "", false)
		pdf.Ln(lineHeight)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
