// Package documents turns records into printable documents. Renderers are
// pure functions producing a Document; PDFExporter lays a Document out on A4.
package documents

import "bmr-backend/internal/dates"

// Header is the boxed company banner. Meta lines are printed to the right.
type Header struct {
	Company string
	Address string
	Title   string
	Meta    []Field
	// PageNumbers adds "Page N of M" to Meta when the header repeats per page.
	PageNumbers bool
}

type Footer struct {
	Left  string
	Right string
}

type Document struct {
	Title string
	// Header repeats at the top of every page when set.
	Header *Header
	Footer *Footer
	Blocks []Block
}

// Block is one of the layout elements below.
type Block interface{ block() }

type Heading struct{ Text string }

type Field struct {
	Label string
	Value string
}

// Fields is a grid of label/value pairs, one slice per line.
type Fields struct{ Rows [][]Field }

type Column struct {
	Title string
	// Width is a fraction of the line; zero-width columns share what is left.
	Width float64
}

type Table struct {
	Title   string
	Columns []Column
	Rows    [][]string
	// Empty is printed across the table when there are no rows.
	Empty string
}

type Paragraph struct {
	Text string
	Bold bool
}

type Signature struct {
	Role    string
	Name    string
	Caption string
	// ImagePath is drawn above the role when the file exists.
	ImagePath string
}

type Signatures struct{ Boxes []Signature }

// Banner draws a header inline, for documents holding several slips.
type Banner struct{ Header Header }

type Divider struct{}

type PageBreak struct{}

func (Heading) block()    {}
func (Fields) block()     {}
func (Table) block()      {}
func (Paragraph) block()  {}
func (Signatures) block() {}
func (Banner) block()     {}
func (Divider) block()    {}
func (PageBreak) block()  {}

// DisplayZone is the zone instants are printed in.
var DisplayZone = dates.Zone

const (
	dayLayout   = "02-01-2006"
	clockLayout = "02-01-2006 15:04"
)

func day(d dates.Date) string { return d.DisplayIn(dayLayout, DisplayZone) }

func clock(d dates.Date) string { return d.DisplayIn(clockLayout, DisplayZone) }

func orDash(s string) string {
	if s == "" {
		return "---"
	}
	return s
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
