// Package report turns a hydrated inspection report into an ordered page
// sequence and renders it to PDF. Which pages exist is decided purely by
// content-presence rules: the cover always, one page per applicable UT/PM
// method, one shared page for the combined tests, and one trailing
// attachments page when a seal or photos were recorded.
package report

import (
	"fmt"

	"github.com/ironndt/certify/internal/models"
	"github.com/ironndt/certify/pkg/document"
)

// Options selects the render mode for one document.
type Options struct {
	// CoverOnly renders page 1 only, for previews.
	CoverOnly bool
	LogoPath  string
}

// Render produces the finished PDF for one report. The page list is pruned
// before painting so the artifact never ships a blank page.
func Render(data *models.ReportData, opts Options) ([]byte, error) {
	pages := BuildPages(data, opts)
	pages = document.Prune(pages)
	return document.Paint(pages, document.PaintOptions{
		LogoPath:    opts.LogoPath,
		PageNumbers: true,
	})
}

// BuildPages assembles the ordered page list for a report. Missing optional
// sub-records (no UT row, no PM row) suppress the corresponding page; absence
// is a valid state, not a fault.
func BuildPages(data *models.ReportData, opts Options) []document.Page {
	pages := []document.Page{buildCover(data)}
	if opts.CoverOnly {
		return pages
	}

	if data.ResultFor(models.MethodUT) != models.ResultNA && data.UT != nil {
		pages = append(pages, buildUTPage(data))
	}
	if data.ResultFor(models.MethodPM) != models.ResultNA && data.PM != nil {
		pages = append(pages, buildPMPage(data))
	}
	if tests := appliedTests(data); len(tests) > 0 {
		pages = append(pages, buildTestsPage(data, tests))
	}
	if data.HasSealOrPhotos() {
		pages = append(pages, buildAttachmentsPage(data))
	}
	return pages
}

// PageEstimate predicts the page count before rendering: the cover plus one
// page per applied method. The bundle merger replaces this with the true
// rendered count; the estimate only serves index-only previews.
func PageEstimate(data *models.ReportData) int {
	return 1 + data.AppliedMethodCount()
}

// header threads the shared header block into every page.
func header(data *models.ReportData, compact bool) document.Header {
	return document.Header{
		ReportDate:      data.ReportDate,
		ReportNumber:    data.ReportNumber,
		WorkOrderNumber: data.WorkOrderNumber,
		Client:          data.Client,
		Sector:          data.Sector,
		Location:        data.Location,
		Scope:           data.Scope,
		ServiceLevel:    data.ServiceLevel,
		Frequency:       data.Frequency,
		Compact:         compact,
	}
}

func buildCover(data *models.ReportData) document.Page {
	blocks := []document.Block{
		header(data, true),
		document.Box{Title: "Equipo / Pieza"},
		document.FieldRow{Fields: []document.Field{
			{Label: "Identificador interno", Value: data.PartCode, Span: 6},
			{Label: "P/N", Value: data.PN, Span: 6},
		}},
		document.FieldRow{Fields: []document.Field{
			{Label: "Descripción", Value: data.Description, Span: 8},
			{Label: "Serie", Value: data.Serial, Span: 4},
		}},
		document.Spacer{MM: 2},
		methodsSummaryTable(data),
		paramsSummaryBox(data),
		document.Spacer{MM: 2},
		document.Box{
			Title: "Resultado final",
			Lines: []string{finalResultLine(data.FinalResult)},
			Stamp: finalStamp(data.FinalResult),
		},
		document.Box{
			Title: "Firma inspector",
			Lines: []string{"", "", "Nombre / Firma / Fecha"},
		},
	}
	return document.Page{Cover: true, Blocks: blocks}
}

func methodsSummaryTable(data *models.ReportData) document.Table {
	rows := make([][]string, 0, len(data.Methods))
	for _, m := range data.Methods {
		rows = append(rows, []string{
			models.MethodLabel(m.Method),
			resultLabel(m.Result),
			m.Acceptance,
		})
	}
	return document.Table{
		Columns: []string{"Método", "Resultado", "Norma / Procedimiento"},
		Rows:    rows,
		Widths:  []float64{1.2, 0.9, 1},
		Aligns:  []string{"L", "C", "R"},
	}
}

func paramsSummaryBox(data *models.ReportData) document.Box {
	var lines []string
	if data.ResultFor(models.MethodUT) != models.ResultNA && data.UT != nil {
		lines = append(lines,
			fmt.Sprintf("UT — Equipo: %s · Vence: %s", orDash(data.UT.InstrumentID), orDash(data.UT.InstrumentExp)),
			fmt.Sprintf("UT — Patrón: %s · Vence: %s", orDash(data.UT.StepWedgeID), orDash(data.UT.StepWedgeExp)),
		)
	}
	if data.ResultFor(models.MethodPM) != models.ResultNA && data.PM != nil {
		lines = append(lines, fmt.Sprintf("PM — Método: %s · Campo: %s · Partículas: %s",
			orDash(data.PM.MagnetizationMethod), orDash(data.PM.FieldDirection), orDash(data.PM.ParticleType)))
	}
	for _, t := range data.Tests {
		if !t.Applies {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s — Instr.: %s · Vence: %s",
			models.MethodLabel(t.Type), orDash(t.InstrumentID), orDash(t.InstrumentExp)))
	}
	if len(lines) == 0 {
		lines = []string{models.Placeholder}
	}
	return document.Box{Title: "Parámetros UT / PM / Pruebas", Lines: lines}
}

func buildUTPage(data *models.ReportData) document.Page {
	ut := data.UT
	pointRows := make([][]string, 0, len(ut.Points))
	for _, pt := range ut.Points {
		pointRows = append(pointRows, []string{pt.Label, pt.ActualMM.Display(), pt.MinMM.Display()})
	}

	row := data.MethodRow(models.MethodUT)
	notes := ""
	if row != nil {
		notes = row.Notes
	}

	blocks := []document.Block{
		header(data, false),
		document.Box{Title: "Método: " + models.MethodLabel(models.MethodUT)},
		document.Table{
			Columns: []string{"Punto", "Actual (mm)", "Mínimo (mm)"},
			Rows:    pointRows,
			Aligns:  []string{"L", "C", "C"},
		},
		observationsBox(notes, data.ResultFor(models.MethodUT)),
		document.Table{
			Columns: []string{"Instrumento", "ID", "Expiración"},
			Rows: [][]string{
				{"Patrón escalonado", ut.StepWedgeID, ut.StepWedgeExp},
				{"Equipo de Ultrasonido", ut.InstrumentID, ut.InstrumentExp},
			},
			Aligns: []string{"L", "C", "C"},
		},
	}
	if sketch := utSketch(data); sketch != "" {
		blocks = append(blocks, document.Image{Path: sketch, Caption: "Croquis / Imagen", MaxHeightMM: 80})
	}
	return document.Page{Blocks: blocks}
}

// utSketch prefers the sketch stored with the UT payload, falling back to the
// resolved attachment reference.
func utSketch(data *models.ReportData) string {
	if data.UT != nil && data.UT.SketchPath != "" {
		return data.UT.SketchPath
	}
	return data.Files.UTSketch
}

func buildPMPage(data *models.ReportData) document.Page {
	pm := data.PM
	row := data.MethodRow(models.MethodPM)
	notes := pm.Notes
	if notes == "" && row != nil {
		notes = row.Notes
	}

	aerosol := pm.Aerosol
	if pm.AerosolLot != "" {
		if aerosol != "" {
			aerosol += " · "
		}
		aerosol += "Lote " + pm.AerosolLot
	}

	blocks := []document.Block{
		header(data, false),
		document.Box{Title: "Método: " + models.MethodLabel(models.MethodPM)},
		document.Table{
			Columns: []string{"Parámetro", "Valor"},
			Rows: [][]string{
				{"Método de magnetización", pm.MagnetizationMethod},
				{"Campo", pm.FieldDirection},
				{"Partículas tipo", pm.ParticleType},
				{"Vía", pm.Via},
				{"Equipo", pm.Equipment},
				{"Corriente", pm.Current},
			},
		},
		observationsBox(notes, data.ResultFor(models.MethodPM)),
		document.Table{
			Columns: []string{"Instrumento", "ID / Lote", "Expiración"},
			Rows: [][]string{
				{"Yugo electromecánico", pm.YokeID, pm.YokeExp},
				{"Aerosol", aerosol, pm.AerosolExp},
				{"Luxómetro luz blanca", pm.LuxWhiteID, pm.LuxWhiteExp},
				{"Luxómetro luz UV", pm.LuxUVID, pm.LuxUVExp},
			},
			Aligns: []string{"L", "C", "C"},
		},
	}
	return document.Page{Blocks: blocks}
}

func appliedTests(data *models.ReportData) []models.GenericTest {
	var out []models.GenericTest
	for _, want := range []models.Method{models.MethodHydro, models.MethodFunctional, models.MethodLP} {
		for _, t := range data.Tests {
			if t.Type == want && t.Applies {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// buildTestsPage emits the single shared page for the combined tests, one
// sub-section per applicable test. The result comes from the matching method
// row, defaulting to na when absent.
func buildTestsPage(data *models.ReportData, tests []models.GenericTest) document.Page {
	blocks := []document.Block{header(data, false)}
	for _, t := range tests {
		result := data.ResultFor(t.Type)
		blocks = append(blocks,
			document.Box{Title: "Método: " + models.MethodLabel(t.Type)},
			document.Table{
				Columns: []string{"Campo", "Valor"},
				Rows: [][]string{
					{"Instrumento", t.InstrumentID},
					{"Expiración", t.InstrumentExp},
					{"Parámetros / Resultado", t.Params},
				},
			},
			observationsBox(t.Notes, result),
			document.Spacer{MM: 3},
		)
	}
	return document.Page{Blocks: blocks}
}

func buildAttachmentsPage(data *models.ReportData) document.Page {
	blocks := []document.Block{header(data, false)}
	if data.Seal != nil && (data.Seal.Type != "" || data.Seal.Due != "") {
		blocks = append(blocks,
			document.Box{Title: "Precinto"},
			document.FieldRow{Fields: []document.Field{
				{Label: "Tipo", Value: orDash(data.Seal.Type), Span: 6},
				{Label: "Vencimiento", Value: orDash(data.Seal.Due), Span: 6},
			}},
			document.Spacer{MM: 2},
		)
	}
	if len(data.Files.Photos) > 0 {
		photos := data.Files.Photos
		// Single-page assumption: six photos fit, the rest are dropped.
		if len(photos) > 6 {
			photos = photos[:6]
		}
		blocks = append(blocks,
			document.Box{Title: "Fotografías"},
			document.PhotoGrid{Paths: photos},
		)
	}
	return document.Page{Blocks: blocks}
}

func observationsBox(notes string, result models.Result) document.Box {
	if notes == "" {
		notes = models.Placeholder
	}
	return document.Box{
		Title: "Observaciones",
		Lines: []string{notes},
		Stamp: resultStamp(result),
	}
}

func resultStamp(r models.Result) document.Stamp {
	switch r {
	case models.ResultApproved:
		return document.StampApproved
	case models.ResultRejected:
		return document.StampRejected
	default:
		return document.StampNA
	}
}

func finalStamp(r models.Result) document.Stamp {
	switch r {
	case models.ResultApproved:
		return document.StampApproved
	case models.ResultRejected:
		return document.StampRejected
	default:
		return document.StampNone
	}
}

func resultLabel(r models.Result) string {
	switch r {
	case models.ResultApproved:
		return "APROBADO"
	case models.ResultRejected:
		return "RECHAZADO"
	default:
		return "N/A"
	}
}

func finalResultLine(r models.Result) string {
	switch r {
	case models.ResultApproved:
		return "APROBADO"
	case models.ResultRejected:
		return "RECHAZADO"
	default:
		return models.Placeholder
	}
}

func orDash(s string) string {
	if s == "" {
		return models.Placeholder
	}
	return s
}
