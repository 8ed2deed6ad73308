// Package models defines the data shapes shared by the store, the document
// renderer and the API layer.
package models

// Method identifies one inspection technique.
type Method string

const (
	MethodVisual     Method = "visual"
	MethodPM         Method = "pm"
	MethodUT         Method = "ut"
	MethodHydro      Method = "hydro"
	MethodFunctional Method = "functional"
	MethodLP         Method = "lp"
	MethodGauges     Method = "gauges"
)

// AllMethods lists every method a report carries a result row for, in the
// order they appear on the cover summary table.
var AllMethods = []Method{
	MethodVisual,
	MethodUT,
	MethodPM,
	MethodHydro,
	MethodFunctional,
	MethodLP,
	MethodGauges,
}

// methodLabels maps method codes to the display labels printed on documents.
var methodLabels = map[Method]string{
	MethodVisual:     "Inspección visual",
	MethodUT:         "Ultrasonido (espesores)",
	MethodPM:         "Partículas magnetizables",
	MethodHydro:      "Prueba hidrostática",
	MethodFunctional: "Prueba funcional",
	MethodLP:         "Líquidos penetrantes",
	MethodGauges:     "Control con calibres",
}

// MethodLabel returns the display label for a method, falling back to the
// raw code for unknown methods.
func MethodLabel(m Method) string {
	if label, ok := methodLabels[m]; ok {
		return label
	}
	return string(m)
}

// Result is the outcome of one method or of the whole report.
type Result string

const (
	ResultApproved Result = "approved"
	ResultRejected Result = "rejected"
	ResultNA       Result = "na"
	ResultUnset    Result = ""
)

// MethodResult is one row of the methods-and-results table. A method with
// ResultNA contributes no content page to the rendered document.
type MethodResult struct {
	Method     Method `json:"method"`
	Result     Result `json:"result"`
	Acceptance string `json:"acceptance,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// UTPoint is one measured thickness point.
type UTPoint struct {
	Label    string      `json:"point"`
	MinMM    Measurement `json:"min_mm"`
	ActualMM Measurement `json:"actual_mm"`
}

// NextPointLabel returns the label for a newly added UT point: the previous
// label's character code incremented (A, B, C, ...), or "A" for the first.
func NextPointLabel(points []UTPoint) string {
	if len(points) == 0 {
		return "A"
	}
	last := points[len(points)-1].Label
	if last == "" {
		return "A"
	}
	runes := []rune(last)
	runes[len(runes)-1]++
	return string(runes)
}

// UTMeasurement holds the ultrasonic thickness payload. Present only when
// the UT method applies to the report.
type UTMeasurement struct {
	InstrumentID  string    `json:"instrument_id"`
	InstrumentExp string    `json:"instrument_exp"`
	StepWedgeID   string    `json:"step_wedge_id"`
	StepWedgeExp  string    `json:"step_wedge_exp"`
	Points        []UTPoint `json:"points"`
	SketchPath    string    `json:"sketch_path,omitempty"`
}

// PMParameters holds the magnetic particle payload. Present only when the PM
// method applies to the report.
type PMParameters struct {
	MagnetizationMethod string `json:"magnetization_method"`
	FieldDirection      string `json:"field_direction"`
	ParticleType        string `json:"particle_type"`
	Via                 string `json:"via,omitempty"`
	Equipment           string `json:"equipment,omitempty"`
	Current             string `json:"current,omitempty"`
	YokeID              string `json:"yoke_id,omitempty"`
	YokeExp             string `json:"yoke_exp,omitempty"`
	LuxUVID             string `json:"lux_uv_id,omitempty"`
	LuxUVExp            string `json:"lux_uv_exp,omitempty"`
	LuxWhiteID          string `json:"lux_white_id,omitempty"`
	LuxWhiteExp         string `json:"lux_white_exp,omitempty"`
	Aerosol             string `json:"aerosol,omitempty"`
	AerosolLot          string `json:"aerosol_lot,omitempty"`
	AerosolExp          string `json:"aerosol_exp,omitempty"`
	Notes               string `json:"notes,omitempty"`
}

// GenericTest is one of the combined tests (hydro, functional, lp). A test
// with Applies=false contributes no content.
type GenericTest struct {
	Type          Method `json:"test_type"`
	Applies       bool   `json:"applies"`
	InstrumentID  string `json:"instrument_id,omitempty"`
	InstrumentExp string `json:"instrument_exp,omitempty"`
	Params        string `json:"params,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Seal records the installed seal, if any.
type Seal struct {
	Type string `json:"seal_type"`
	Due  string `json:"due_date"`
}

// Files groups the attachment references resolved for a report. Binary
// storage lives elsewhere; these are paths or URLs only.
type Files struct {
	Photos    []string `json:"photos"`
	UTSketch  string   `json:"ut_sketch,omitempty"`
	Signature string   `json:"signature,omitempty"`
}

// ReportData is a fully hydrated inspection report: everything the document
// renderer needs, with no further fetching.
type ReportData struct {
	ID          string `json:"id"`
	WorkOrderID string `json:"work_order_id"`
	PartID      string `json:"part_id,omitempty"`

	ReportDate      string `json:"report_date"`
	ReportNumber    string `json:"report_number"`
	WorkOrderNumber string `json:"work_order_number"`
	Client          string `json:"client"`
	Sector          string `json:"sector,omitempty"`
	Location        string `json:"location,omitempty"`
	Scope           string `json:"service_scope,omitempty"`
	ServiceLevel    string `json:"service_level,omitempty"`
	Frequency       string `json:"frequency,omitempty"`

	PartCode    string `json:"part_code,omitempty"`
	Description string `json:"description,omitempty"`
	PN          string `json:"pn,omitempty"`
	Serial      string `json:"serial,omitempty"`

	Methods []MethodResult `json:"methods"`
	UT      *UTMeasurement `json:"ut,omitempty"`
	PM      *PMParameters  `json:"pm,omitempty"`
	Tests   []GenericTest  `json:"tests"`
	Seal    *Seal          `json:"seal,omitempty"`
	Files   Files          `json:"files"`

	FinalResult Result `json:"final_result"`
}

// ResultFor returns the recorded result for a method, defaulting to na when
// no row exists.
func (r *ReportData) ResultFor(m Method) Result {
	for _, row := range r.Methods {
		if row.Method == m {
			if row.Result == ResultUnset {
				return ResultNA
			}
			return row.Result
		}
	}
	return ResultNA
}

// MethodRow returns the result row for a method, or nil.
func (r *ReportData) MethodRow(m Method) *MethodResult {
	for i := range r.Methods {
		if r.Methods[i].Method == m {
			return &r.Methods[i]
		}
	}
	return nil
}

// AppliedMethodCount counts methods whose result is not na. Used by the
// pagination planner as a pre-render page estimate.
func (r *ReportData) AppliedMethodCount() int {
	n := 0
	for _, row := range r.Methods {
		if row.Result != ResultNA && row.Result != ResultUnset {
			n++
		}
	}
	return n
}

// HasSealOrPhotos reports whether the trailing attachments page has content.
func (r *ReportData) HasSealOrPhotos() bool {
	if r.Seal != nil && (r.Seal.Type != "" || r.Seal.Due != "") {
		return true
	}
	return len(r.Files.Photos) > 0
}
