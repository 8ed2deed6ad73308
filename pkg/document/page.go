// Package document models a paginated inspection document as an immutable
// ordered sequence of fixed-size pages, and paints that sequence to PDF.
// Builders append blocks to pages; nothing mutates a page after it is built,
// so the pruning pass and the bundle merger can treat pages as values.
package document

import "strings"

// Stamp is the result stamp printed inside an observations box.
type Stamp string

const (
	StampNone     Stamp = ""
	StampApproved Stamp = "APROBADO"
	StampRejected Stamp = "RECHAZADO"
	StampNA       Stamp = "N/A"
)

// Header is the block repeated at the top of every page: logo, document
// title, the date/report-number/work-order strip and the client block.
type Header struct {
	Title           string
	ReportDate      string
	ReportNumber    string
	WorkOrderNumber string
	Client          string
	Sector          string
	Location        string
	Scope           string
	ServiceLevel    string
	Frequency       string
	Compact         bool
}

// Field is one label-over-underlined-value cell.
type Field struct {
	Label string
	Value string
	Span  int // relative width; 1 when zero
}

// FieldRow lays fields side by side.
type FieldRow struct {
	Fields []Field
}

// Table is a bordered table with a shaded header row.
type Table struct {
	Columns []string
	Rows    [][]string
	Widths  []float64 // relative; equal split when empty
	Aligns  []string  // "L"/"C"/"R" per column; "L" when empty
}

// Box is a titled, bordered box: a shaded title strip, body lines and an
// optional result stamp.
type Box struct {
	Title string
	Lines []string
	Stamp Stamp
}

// Image references an attachment to place on the page.
type Image struct {
	Path        string
	Caption     string
	MaxHeightMM float64
}

// PhotoGrid lays photos three per row, capped by the builder.
type PhotoGrid struct {
	Paths []string
}

// Text is a free line of text.
type Text struct {
	Value string
	Bold  bool
	Size  float64
}

// Spacer advances the cursor by a vertical gap.
type Spacer struct {
	MM float64
}

// Block is one unit of page content.
type Block interface {
	isBlock()
}

func (Header) isBlock()    {}
func (FieldRow) isBlock()  {}
func (Table) isBlock()     {}
func (Box) isBlock()       {}
func (Image) isBlock()     {}
func (PhotoGrid) isBlock() {}
func (Text) isBlock()      {}
func (Spacer) isBlock()    {}

// Page is one fixed-size page of content.
type Page struct {
	Cover  bool
	Blocks []Block
}

// NonEmpty reports whether a page carries content a reader would see: a
// structural marker (cover flag, table, box, image, header, field row) or
// text that survives stripping whitespace and non-breaking spaces.
func (p Page) NonEmpty() bool {
	if p.Cover {
		return true
	}
	for _, b := range p.Blocks {
		switch blk := b.(type) {
		case Header, FieldRow, Table, Box, Image:
			return true
		case PhotoGrid:
			if len(blk.Paths) > 0 {
				return true
			}
		case Text:
			if visibleText(blk.Value) {
				return true
			}
		}
	}
	return false
}

func visibleText(s string) bool {
	s = strings.ReplaceAll(s, "\u00a0", "")
	return strings.TrimSpace(s) != ""
}
