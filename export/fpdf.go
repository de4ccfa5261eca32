package export

import (
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/nomis52/goplan/layout"
)

const fontFamily = "Helvetica"

// pdfDocument wraps an fpdf document together with the cp1252 translator
// the core fonts need. The same instance measures and draws, so the layout
// engine wraps with exactly the glyph widths that end up on the page.
type pdfDocument struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newPDFDocument(pageWidth, pageHeight float64) *pdfDocument {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetFont(fontFamily, "", 12)
	return &pdfDocument{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// StringWidth implements layout.Measurer using the core font metrics.
func (d *pdfDocument) StringWidth(text string, fontSize float64) float64 {
	d.pdf.SetFont(fontFamily, "", fontSize)
	return d.pdf.GetStringWidth(d.tr(text))
}

func (d *pdfDocument) setMetadata(title string, date time.Time) {
	d.pdf.SetTitle(title, true)
	d.pdf.SetCreator("goplan", false)
	d.pdf.SetCreationDate(date)
	d.pdf.SetModificationDate(date)
}

// draw renders every page of doc.
func (d *pdfDocument) draw(doc layout.Document) error {
	for _, page := range doc.Pages {
		d.pdf.AddPage()
		for _, l := range page.Lines {
			d.pdf.SetFont(fontFamily, "", l.Size)
			d.pdf.Text(l.X, l.Y, d.tr(l.Text))
		}
	}
	return d.pdf.Error()
}
