package documents

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin   = 12.0
	bottomMargin = 15.0
	lineHeight   = 5.0
	cellPad      = 1.5
)

// PDFExporter lays a Document out on A4 portrait pages.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter { return &PDFExporter{} }

type pdfWriter struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	width float64
}

var glyphs = strings.NewReplacer("≤", "<=", "≥", ">=", "–", "-", "—", "-")

func (e *PDFExporter) Export(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.AliasNbPages("")
	pdf.SetTitle(doc.Title, true)

	cp := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	w := &pdfWriter{
		pdf:   pdf,
		tr:    func(s string) string { return cp(glyphs.Replace(s)) },
		width: pageW - 2*pageMargin,
	}

	if doc.Header != nil {
		h := *doc.Header
		pdf.SetHeaderFunc(func() {
			w.header(h)
			pdf.Ln(3)
		})
	}
	if doc.Footer != nil {
		f := *doc.Footer
		pdf.SetFooterFunc(func() { w.footer(f) })
	}

	pdf.AddPage()
	for _, b := range doc.Blocks {
		w.block(b)
		if pdf.Err() {
			break
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export %s: %w", doc.Title, err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) block(b Block) {
	switch b := b.(type) {
	case Heading:
		w.heading(b.Text)
	case Fields:
		w.fields(b)
	case Table:
		w.table(b)
	case Paragraph:
		style := ""
		if b.Bold {
			style = "B"
		}
		w.pdf.SetFont("Helvetica", style, 9)
		w.pdf.MultiCell(w.width, lineHeight, w.tr(b.Text), "", "L", false)
		w.pdf.Ln(1)
	case Signatures:
		w.signatures(b.Boxes)
	case Banner:
		w.header(b.Header)
		w.pdf.Ln(3)
	case Divider:
		w.pdf.Ln(4)
		w.pdf.SetDashPattern([]float64{2, 1}, 0)
		y := w.pdf.GetY()
		w.pdf.Line(pageMargin, y, pageMargin+w.width, y)
		w.pdf.SetDashPattern([]float64{}, 0)
		w.pdf.Ln(6)
	case PageBreak:
		w.pdf.AddPage()
	}
}

func (w *pdfWriter) header(h Header) {
	pdf := w.pdf
	x, y := pdf.GetXY()
	leftW := w.width * 0.65
	rightW := w.width - leftW

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(leftW, 7, w.tr(h.Company), "", 2, "C", false, 0, "")
	if h.Address != "" {
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(leftW, 4, w.tr(h.Address), "", 2, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(leftW, 7, w.tr(h.Title), "", 2, "C", false, 0, "")
	leftBottom := pdf.GetY()

	meta := h.Meta
	if h.PageNumbers {
		meta = append(append([]Field(nil), meta...), Field{Label: "Page No:", Value: fmt.Sprintf("%d of {nb}", pdf.PageNo())})
	}
	pdf.SetXY(x+leftW, y)
	pdf.SetFont("Helvetica", "", 8)
	for _, m := range meta {
		pdf.SetX(x + leftW)
		pdf.CellFormat(rightW, 4.5, w.tr(m.Label+" "+m.Value), "B", 2, "L", false, 0, "")
	}
	bottom := max(leftBottom, pdf.GetY()) + 1
	pdf.Rect(x, y, w.width, bottom-y, "D")
	pdf.Line(x+leftW, y, x+leftW, bottom)
	pdf.SetXY(x, bottom)
}

func (w *pdfWriter) footer(f Footer) {
	pdf := w.pdf
	pdf.SetY(-12)
	y := pdf.GetY()
	pdf.Line(pageMargin, y, pageMargin+w.width, y)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(w.width/2, 5, w.tr(f.Left), "", 0, "L", false, 0, "")
	pdf.CellFormat(w.width/2, 5, w.tr(f.Right), "", 0, "R", false, 0, "")
}

func (w *pdfWriter) heading(text string) {
	w.ensure(12)
	w.pdf.Ln(2)
	w.pdf.SetFont("Helvetica", "B", 10)
	w.pdf.SetFillColor(225, 225, 225)
	w.pdf.CellFormat(w.width, 6.5, w.tr(text), "1", 1, "L", true, 0, "")
}

// ensure starts a new page unless h millimetres still fit above the bottom margin.
func (w *pdfWriter) ensure(h float64) bool {
	_, pageH := w.pdf.GetPageSize()
	if w.pdf.GetY()+h > pageH-bottomMargin {
		w.pdf.AddPage()
		return true
	}
	return false
}

func (w *pdfWriter) lines(text string, width float64) []string {
	if text == "" {
		return []string{""}
	}
	// widths are looked up per cp1252 byte, so wrap after translating
	split := w.pdf.SplitLines([]byte(w.tr(text)), width-2*cellPad)
	if len(split) == 0 {
		return []string{""}
	}
	out := make([]string, len(split))
	for i, line := range split {
		out[i] = string(line)
	}
	return out
}

// row draws one line of bordered cells, each wrapped to its width. fill
// marks cells drawn shaded.
func (w *pdfWriter) row(widths []float64, cells []string, styles []string, fill []bool) {
	pdf := w.pdf
	wrapped := make([][]string, len(widths))
	n := 1
	for i := range widths {
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		pdf.SetFont("Helvetica", styles[i], 8)
		wrapped[i] = w.lines(text, widths[i])
		n = max(n, len(wrapped[i]))
	}
	h := float64(n)*(lineHeight-0.8) + 1
	w.ensure(h)

	x, y := pageMargin, pdf.GetY()
	pdf.SetFillColor(240, 240, 240)
	for i, cw := range widths {
		style := "D"
		if fill[i] {
			style = "FD"
		}
		pdf.Rect(x, y, cw, h, style)
		pdf.SetFont("Helvetica", styles[i], 8)
		for j, line := range wrapped[i] {
			pdf.SetXY(x+cellPad, y+0.5+float64(j)*(lineHeight-0.8))
			pdf.CellFormat(cw-2*cellPad, lineHeight-0.8, line, "", 0, "L", false, 0, "")
		}
		x += cw
	}
	pdf.SetXY(pageMargin, y+h)
}

func (w *pdfWriter) fields(f Fields) {
	for _, line := range f.Rows {
		if len(line) == 0 {
			continue
		}
		pair := w.width / float64(len(line))
		widths := make([]float64, 0, 2*len(line))
		cells := make([]string, 0, 2*len(line))
		styles := make([]string, 0, 2*len(line))
		fill := make([]bool, 0, 2*len(line))
		for _, fl := range line {
			widths = append(widths, pair*0.4, pair*0.6)
			cells = append(cells, fl.Label, fl.Value)
			styles = append(styles, "B", "")
			fill = append(fill, true, false)
		}
		w.row(widths, cells, styles, fill)
	}
	w.pdf.Ln(2)
}

func (w *pdfWriter) columnWidths(cols []Column) []float64 {
	widths := make([]float64, len(cols))
	used, free := 0.0, 0
	for i, c := range cols {
		widths[i] = c.Width * w.width
		used += widths[i]
		if c.Width == 0 {
			free++
		}
	}
	if free > 0 {
		share := max(w.width-used, 0) / float64(free)
		for i, c := range cols {
			if c.Width == 0 {
				widths[i] = share
			}
		}
	}
	return widths
}

func (w *pdfWriter) table(t Table) {
	if len(t.Columns) == 0 {
		return
	}
	widths := w.columnWidths(t.Columns)
	titles := make([]string, len(t.Columns))
	bold := make([]string, len(t.Columns))
	plain := make([]string, len(t.Columns))
	shaded := make([]bool, len(t.Columns))
	open := make([]bool, len(t.Columns))
	for i, c := range t.Columns {
		titles[i] = c.Title
		bold[i] = "B"
		shaded[i] = true
	}

	if t.Title != "" {
		w.ensure(18)
		w.pdf.SetFont("Helvetica", "B", 9)
		w.pdf.CellFormat(w.width, 6, w.tr(t.Title), "", 1, "L", false, 0, "")
	}
	w.row(widths, titles, bold, shaded)

	if len(t.Rows) == 0 {
		w.pdf.SetFont("Helvetica", "I", 8)
		w.pdf.CellFormat(w.width, 6, w.tr(t.Empty), "1", 1, "C", false, 0, "")
		w.pdf.Ln(2)
		return
	}
	for _, r := range t.Rows {
		w.rowKeepingHeader(widths, r, plain, open, titles, bold, shaded)
	}
	w.pdf.Ln(2)
}

// rowKeepingHeader repeats the column titles when the row moved to a new page.
func (w *pdfWriter) rowKeepingHeader(widths []float64, cells, styles []string, fill []bool, titles, bold []string, shaded []bool) {
	h := 0.0
	for i := range widths {
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		w.pdf.SetFont("Helvetica", styles[i], 8)
		h = max(h, float64(len(w.lines(text, widths[i])))*(lineHeight-0.8)+1)
	}
	if w.ensure(h) {
		w.row(widths, titles, bold, shaded)
	}
	w.row(widths, cells, styles, fill)
}

func (w *pdfWriter) signatures(boxes []Signature) {
	if len(boxes) == 0 {
		return
	}
	pdf := w.pdf
	w.ensure(34)
	pdf.Ln(4)
	bw := w.width / float64(len(boxes))
	y := pdf.GetY()
	for i, s := range boxes {
		x := pageMargin + float64(i)*bw
		if s.ImagePath != "" {
			if _, err := os.Stat(s.ImagePath); err == nil {
				pdf.ImageOptions(s.ImagePath, x+bw/2-15, y, 30, 12, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
			}
		}
		pdf.Line(x+4, y+16, x+bw-4, y+16)
		pdf.SetXY(x, y+17)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(bw, 4, w.tr(s.Role), "", 2, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		if s.Name != "" {
			pdf.CellFormat(bw, 4, w.tr(s.Name), "", 2, "C", false, 0, "")
		}
		if s.Caption != "" {
			pdf.CellFormat(bw, 4, w.tr(s.Caption), "", 2, "C", false, 0, "")
		}
	}
	pdf.SetXY(pageMargin, y+30)
}
