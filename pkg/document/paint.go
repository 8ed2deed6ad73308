package document

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
)

// Certification documents are monochrome except for the result stamps.
var (
	colorStampApproved = [3]int{22, 133, 62}
	colorStampRejected = [3]int{190, 30, 30}
	colorStampNA       = [3]int{150, 150, 150}
	colorStripFill     = [3]int{209, 213, 219} // gray title strips
	colorHeadFill      = [3]int{236, 238, 241} // table header shading
	colorBorder        = [3]int{40, 40, 40}
	colorRule          = [3]int{120, 120, 120} // underlines for field values
)

const (
	pageMarginLeft   = 10.0
	pageMarginTop    = 10.0
	pageMarginBottom = 14.0
	contentWidth     = 190.0
)

// PaintOptions controls document-wide painting behavior.
type PaintOptions struct {
	// LogoPath is drawn in the header block when the file exists; the
	// company monogram is drawn otherwise.
	LogoPath string
	// PageNumbers adds an "i / n" footer to every page. Page numbers are a
	// property of the final artifact: a merged bundle renumbers every page
	// sequentially regardless of sub-document boundaries.
	PageNumbers bool
}

// Paint draws an ordered page sequence into a single PDF. Each Page maps to
// exactly one A4 page; auto page breaks are disabled so pagination stays a
// property of the page list, not of the painter.
func Paint(pages []Page, opts PaintOptions) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginLeft, pageMarginTop, pageMarginLeft)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")

	if opts.PageNumbers {
		pdf.SetFooterFunc(func() {
			pdf.SetY(-12)
			pdf.SetFont("Arial", "", 9)
			pdf.SetTextColor(0, 0, 0)
			pdf.CellFormat(0, 5, fmt.Sprintf("%d / {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
		})
	}

	p := &painter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), opts: opts}
	for _, page := range pages {
		pdf.AddPage()
		for _, block := range page.Blocks {
			p.drawBlock(block)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output error: %w", err)
	}
	return buf.Bytes(), nil
}

type painter struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	opts PaintOptions
}

func (p *painter) drawBlock(b Block) {
	switch blk := b.(type) {
	case Header:
		p.drawHeader(blk)
	case FieldRow:
		p.drawFieldRow(blk)
	case Table:
		p.drawTable(blk)
	case Box:
		p.drawBox(blk)
	case Image:
		p.drawImage(blk)
	case PhotoGrid:
		p.drawPhotoGrid(blk)
	case Text:
		p.drawText(blk)
	case Spacer:
		p.pdf.Ln(blk.MM)
	}
}

// drawHeader paints the band repeated at the top of every page: logo cell,
// centered document title, the Datos strip and the Cabecera field block.
func (p *painter) drawHeader(h Header) {
	pdf := p.pdf
	y0 := pdf.GetY()
	bandH := 30.0
	logoW := 34.0
	dataW := 62.0
	titleW := contentWidth - logoW - dataW

	pdf.SetDrawColor(colorBorder[0], colorBorder[1], colorBorder[2])
	pdf.Rect(pageMarginLeft, y0, contentWidth, bandH, "D")
	pdf.Line(pageMarginLeft+logoW, y0, pageMarginLeft+logoW, y0+bandH)
	pdf.Line(pageMarginLeft+logoW+titleW, y0, pageMarginLeft+logoW+titleW, y0+bandH)

	if p.opts.LogoPath != "" && fileExists(p.opts.LogoPath) {
		pdf.ImageOptions(p.opts.LogoPath, pageMarginLeft+3, y0+3, logoW-6, bandH-6,
			false, fpdf.ImageOptions{}, 0, "")
	} else {
		pdf.SetFont("Arial", "B", 14)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(pageMarginLeft, y0+bandH/2-4)
		pdf.CellFormat(logoW, 8, "IRON", "", 0, "C", false, 0, "")
	}

	title := h.Title
	if title == "" {
		title = "CERTIFICADO DE INSPECCIÓN"
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(pageMarginLeft+logoW, y0+bandH/2-4)
	pdf.CellFormat(titleW, 8, p.tr(title), "", 0, "C", false, 0, "")

	// Datos strip
	dataX := pageMarginLeft + logoW + titleW
	pdf.SetFillColor(colorStripFill[0], colorStripFill[1], colorStripFill[2])
	pdf.SetXY(dataX, y0)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(dataW, 6, "Datos", "B", 0, "L", true, 0, "")

	dataRows := []struct{ label, value string }{
		{"Fecha", h.ReportDate},
		{"Informe Nº", h.ReportNumber},
		{"OT Nº", h.WorkOrderNumber},
	}
	rowY := y0 + 7.5
	for _, row := range dataRows {
		pdf.SetXY(dataX+2, rowY)
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(20, 5, p.tr(row.label), "", 0, "L", false, 0, "")
		pdf.SetDrawColor(colorRule[0], colorRule[1], colorRule[2])
		pdf.CellFormat(dataW-24, 5, p.tr(nonEmpty(row.value)), "B", 0, "L", false, 0, "")
		rowY += 7
	}

	pdf.SetDrawColor(colorBorder[0], colorBorder[1], colorBorder[2])
	gap := 3.0
	if h.Compact {
		gap = 2.0
	}
	pdf.SetY(y0 + bandH + gap)

	p.drawBox(Box{Title: "Cabecera"})
	p.drawFieldRow(FieldRow{Fields: []Field{
		{Label: "Cliente", Value: h.Client, Span: 4},
		{Label: "Sector", Value: h.Sector, Span: 4},
		{Label: "Lugar", Value: h.Location, Span: 4},
	}})
	p.drawFieldRow(FieldRow{Fields: []Field{
		{Label: "Alcance del servicio", Value: h.Scope, Span: 9},
		{Label: "Nivel", Value: h.ServiceLevel, Span: 3},
	}})
	p.drawFieldRow(FieldRow{Fields: []Field{
		{Label: "Frecuencia", Value: h.Frequency, Span: 4},
		{Label: "", Value: "", Span: 8},
	}})
	pdf.Ln(gap)
}

func (p *painter) drawFieldRow(row FieldRow) {
	pdf := p.pdf
	total := 0
	for _, f := range row.Fields {
		span := f.Span
		if span <= 0 {
			span = 1
		}
		total += span
	}
	if total == 0 {
		return
	}

	x := pageMarginLeft
	yLabel := pdf.GetY()
	for _, f := range row.Fields {
		span := f.Span
		if span <= 0 {
			span = 1
		}
		w := contentWidth * float64(span) / float64(total)
		pdf.SetXY(x, yLabel)
		pdf.SetFont("Arial", "", 7.5)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(w-2, 3.5, p.tr(f.Label), "", 0, "L", false, 0, "")
		if f.Label != "" || f.Value != "" {
			pdf.SetXY(x, yLabel+3.5)
			pdf.SetFont("Arial", "", 9)
			pdf.SetDrawColor(colorRule[0], colorRule[1], colorRule[2])
			pdf.CellFormat(w-2, 4.5, p.tr(nonEmpty(f.Value)), "B", 0, "L", false, 0, "")
		}
		x += w
	}
	pdf.SetDrawColor(colorBorder[0], colorBorder[1], colorBorder[2])
	pdf.SetY(yLabel + 9.5)
}

func (p *painter) drawTable(t Table) {
	pdf := p.pdf
	widths := t.Widths
	if len(widths) != len(t.Columns) {
		widths = make([]float64, len(t.Columns))
		for i := range widths {
			widths[i] = 1
		}
	}
	var totalRel float64
	for _, w := range widths {
		totalRel += w
	}
	if totalRel == 0 {
		return
	}

	align := func(i int) string {
		if i < len(t.Aligns) && t.Aligns[i] != "" {
			return t.Aligns[i]
		}
		return "L"
	}

	pdf.SetFillColor(colorHeadFill[0], colorHeadFill[1], colorHeadFill[2])
	pdf.SetDrawColor(colorBorder[0], colorBorder[1], colorBorder[2])
	pdf.SetFont("Arial", "B", 8.5)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetX(pageMarginLeft)
	for i, col := range t.Columns {
		w := contentWidth * widths[i] / totalRel
		last := 0
		if i == len(t.Columns)-1 {
			last = 1
		}
		pdf.CellFormat(w, 6, p.tr(col), "1", last, align(i), true, 0, "")
	}

	pdf.SetFont("Arial", "", 8.5)
	for _, row := range t.Rows {
		pdf.SetX(pageMarginLeft)
		for i := range t.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			w := contentWidth * widths[i] / totalRel
			last := 0
			if i == len(t.Columns)-1 {
				last = 1
			}
			pdf.CellFormat(w, 5.5, p.tr(nonEmpty(cell)), "1", last, align(i), false, 0, "")
		}
	}
	pdf.Ln(2)
}

func (p *painter) drawBox(b Box) {
	pdf := p.pdf
	pdf.SetFillColor(colorStripFill[0], colorStripFill[1], colorStripFill[2])
	pdf.SetDrawColor(colorBorder[0], colorBorder[1], colorBorder[2])
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetX(pageMarginLeft)
	pdf.CellFormat(contentWidth, 6, p.tr(b.Title), "1", 1, "L", true, 0, "")

	if len(b.Lines) > 0 || b.Stamp != StampNone {
		bodyTop := pdf.GetY()
		pdf.SetFont("Arial", "", 9)
		pdf.SetX(pageMarginLeft)
		for _, line := range b.Lines {
			pdf.SetX(pageMarginLeft + 2)
			pdf.MultiCell(contentWidth-4, 4.5, p.tr(line), "", "L", false)
		}
		if b.Stamp != StampNone {
			pdf.SetX(pageMarginLeft + 2)
			p.drawStamp(b.Stamp)
		}
		bodyH := pdf.GetY() - bodyTop + 1.5
		pdf.Rect(pageMarginLeft, bodyTop, contentWidth, bodyH, "D")
		pdf.SetY(bodyTop + bodyH)
	}
	pdf.Ln(1.5)
}

func (p *painter) drawStamp(s Stamp) {
	pdf := p.pdf
	var c [3]int
	switch s {
	case StampApproved:
		c = colorStampApproved
	case StampRejected:
		c = colorStampRejected
	default:
		c = colorStampNA
	}
	pdf.SetFillColor(c[0], c[1], c[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(32, 6, p.tr(string(s)), "", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func (p *painter) drawImage(img Image) {
	pdf := p.pdf
	if img.Caption != "" {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetX(pageMarginLeft)
		pdf.CellFormat(contentWidth, 5, p.tr(img.Caption), "", 1, "L", false, 0, "")
	}
	maxH := img.MaxHeightMM
	if maxH <= 0 {
		maxH = 70
	}
	if fileExists(img.Path) {
		pdf.ImageOptions(img.Path, pageMarginLeft, pdf.GetY(), 0, maxH,
			false, fpdf.ImageOptions{}, 0, "")
		pdf.SetY(pdf.GetY() + maxH + 2)
		return
	}
	// Attachment reference without a local file: draw a bordered placeholder
	// so the reference stays visible in the document.
	pdf.SetDrawColor(colorRule[0], colorRule[1], colorRule[2])
	pdf.Rect(pageMarginLeft, pdf.GetY(), contentWidth, maxH/2, "D")
	pdf.SetFont("Arial", "I", 8)
	pdf.SetXY(pageMarginLeft, pdf.GetY()+maxH/4-2)
	pdf.CellFormat(contentWidth, 5, p.tr(img.Path), "", 1, "C", false, 0, "")
	pdf.SetDrawColor(colorBorder[0], colorBorder[1], colorBorder[2])
	pdf.SetY(pdf.GetY() + maxH/4 + 2)
}

func (p *painter) drawPhotoGrid(g PhotoGrid) {
	pdf := p.pdf
	cellW := contentWidth / 3
	cellH := 62.0
	for i, path := range g.Paths {
		col := i % 3
		if col == 0 && i > 0 {
			pdf.SetY(pdf.GetY() + cellH + 2)
		}
		x := pageMarginLeft + float64(col)*cellW
		y := pdf.GetY()
		pdf.SetDrawColor(colorRule[0], colorRule[1], colorRule[2])
		pdf.Rect(x+1, y, cellW-2, cellH, "D")
		if fileExists(path) {
			pdf.ImageOptions(path, x+2, y+1, cellW-4, cellH-2,
				false, fpdf.ImageOptions{}, 0, "")
		} else {
			pdf.SetFont("Arial", "I", 7)
			pdf.SetXY(x+1, y+cellH/2-2)
			pdf.CellFormat(cellW-2, 4, fmt.Sprintf("Foto %d", i+1), "", 0, "C", false, 0, "")
		}
	}
	pdf.SetDrawColor(colorBorder[0], colorBorder[1], colorBorder[2])
	pdf.SetY(pdf.GetY() + cellH + 2)
}

func (p *painter) drawText(t Text) {
	pdf := p.pdf
	size := t.Size
	if size <= 0 {
		size = 9
	}
	style := ""
	if t.Bold {
		style = "B"
	}
	pdf.SetFont("Arial", style, size)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetX(pageMarginLeft)
	pdf.MultiCell(contentWidth, size/2+1.5, p.tr(t.Value), "", "L", false)
}

func nonEmpty(s string) string {
	if s == "" {
		return " "
	}
	return s
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
