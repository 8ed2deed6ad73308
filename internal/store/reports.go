package store

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "github.com/ironndt/certify/internal/errors"
	"github.com/ironndt/certify/internal/models"
)

// ReportData returns one report fully hydrated: the shell row, work-order
// header, part identity, method results, UT/PM payloads, combined tests,
// seal and attachment references. The key matches the row id first and the
// report number second, so links printed on older documents keep resolving.
func (s *Store) ReportData(ctx context.Context, key string) (*models.ReportData, error) {
	data := &models.ReportData{}

	var partID sql.NullString
	var workOrderDate string
	err := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.work_order_id, r.part_id, r.report_number, r.report_date, r.final_result,
		       w.number, w.client, w.sector, w.location, w.service_scope, w.service_level, w.frequency, w.date
		FROM reports r
		JOIN work_orders w ON w.id = r.work_order_id
		WHERE r.id = ? OR r.report_number = ?
		ORDER BY r.id = ? DESC
		LIMIT 1`, key, key, key,
	).Scan(
		&data.ID, &data.WorkOrderID, &partID, &data.ReportNumber, &data.ReportDate, &data.FinalResult,
		&data.WorkOrderNumber, &data.Client, &data.Sector, &data.Location, &data.Scope, &data.ServiceLevel, &data.Frequency,
		&workOrderDate,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("get_report", key)
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", key, err)
	}
	data.PartID = partID.String

	if data.ReportNumber == "" {
		data.ReportNumber = fallbackReportNumber(data.ID)
	}
	if data.ReportDate == "" {
		data.ReportDate = workOrderDate
	}

	if data.PartID != "" {
		err = s.db.QueryRowContext(ctx, `
			SELECT code, description, pn, serial FROM parts WHERE id = ?`, data.PartID,
		).Scan(&data.PartCode, &data.Description, &data.PN, &data.Serial)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("get report part %s: %w", data.PartID, err)
		}
	}

	if err := s.loadMethods(ctx, data); err != nil {
		return nil, err
	}
	if err := s.loadUT(ctx, data); err != nil {
		return nil, err
	}
	if err := s.loadPM(ctx, data); err != nil {
		return nil, err
	}
	if err := s.loadTests(ctx, data); err != nil {
		return nil, err
	}
	if err := s.loadSealAndFiles(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// fallbackReportNumber derives a display number for reports saved before a
// number was assigned.
func fallbackReportNumber(reportID string) string {
	short := reportID
	if len(short) > 8 {
		short = short[:8]
	}
	return "IR-" + short
}

func (s *Store) loadMethods(ctx context.Context, data *models.ReportData) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT method, result, acceptance, notes FROM report_methods WHERE report_id = ?`, data.ID)
	if err != nil {
		return fmt.Errorf("load methods: %w", err)
	}
	defer rows.Close()

	byMethod := make(map[models.Method]models.MethodResult)
	for rows.Next() {
		var m models.MethodResult
		if err := rows.Scan(&m.Method, &m.Result, &m.Acceptance, &m.Notes); err != nil {
			return fmt.Errorf("scan method: %w", err)
		}
		byMethod[m.Method] = m
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Emit every known method in display order, filling na for the missing.
	data.Methods = data.Methods[:0]
	for _, method := range models.AllMethods {
		if m, ok := byMethod[method]; ok {
			data.Methods = append(data.Methods, m)
			continue
		}
		data.Methods = append(data.Methods, models.MethodResult{Method: method, Result: models.ResultNA})
	}
	return nil
}

func (s *Store) loadUT(ctx context.Context, data *models.ReportData) error {
	ut := &models.UTMeasurement{}
	err := s.db.QueryRowContext(ctx, `
		SELECT instrument_id, instrument_exp, step_wedge_id, step_wedge_exp, sketch_path
		FROM report_ut WHERE report_id = ?`, data.ID,
	).Scan(&ut.InstrumentID, &ut.InstrumentExp, &ut.StepWedgeID, &ut.StepWedgeExp, &ut.SketchPath)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load ut: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT label, min_mm, actual_mm FROM report_ut_points
		WHERE report_id = ? ORDER BY position`, data.ID)
	if err != nil {
		return fmt.Errorf("load ut points: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pt models.UTPoint
		var min, actual sql.NullFloat64
		if err := rows.Scan(&pt.Label, &min, &actual); err != nil {
			return fmt.Errorf("scan ut point: %w", err)
		}
		if min.Valid {
			pt.MinMM = models.MeasurementOf(min.Float64)
		}
		if actual.Valid {
			pt.ActualMM = models.MeasurementOf(actual.Float64)
		}
		ut.Points = append(ut.Points, pt)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	data.UT = ut
	return nil
}

func (s *Store) loadPM(ctx context.Context, data *models.ReportData) error {
	pm := &models.PMParameters{}
	err := s.db.QueryRowContext(ctx, `
		SELECT magnetization_method, field_direction, particle_type, via, equipment, current,
		       yoke_id, yoke_exp, lux_uv_id, lux_uv_exp, lux_white_id, lux_white_exp,
		       aerosol, aerosol_lot, aerosol_exp, notes
		FROM report_pm WHERE report_id = ?`, data.ID,
	).Scan(
		&pm.MagnetizationMethod, &pm.FieldDirection, &pm.ParticleType, &pm.Via, &pm.Equipment, &pm.Current,
		&pm.YokeID, &pm.YokeExp, &pm.LuxUVID, &pm.LuxUVExp, &pm.LuxWhiteID, &pm.LuxWhiteExp,
		&pm.Aerosol, &pm.AerosolLot, &pm.AerosolExp, &pm.Notes,
	)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load pm: %w", err)
	}
	data.PM = pm
	return nil
}

func (s *Store) loadTests(ctx context.Context, data *models.ReportData) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT test_type, applies, instrument_id, instrument_exp, params, notes
		FROM report_tests WHERE report_id = ?`, data.ID)
	if err != nil {
		return fmt.Errorf("load tests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t models.GenericTest
		if err := rows.Scan(&t.Type, &t.Applies, &t.InstrumentID, &t.InstrumentExp, &t.Params, &t.Notes); err != nil {
			return fmt.Errorf("scan test: %w", err)
		}
		data.Tests = append(data.Tests, t)
	}
	return rows.Err()
}

func (s *Store) loadSealAndFiles(ctx context.Context, data *models.ReportData) error {
	seal := &models.Seal{}
	err := s.db.QueryRowContext(ctx, `
		SELECT seal_type, due_date FROM report_seals WHERE report_id = ?`, data.ID,
	).Scan(&seal.Type, &seal.Due)
	if err == nil {
		data.Seal = seal
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("load seal: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, path FROM report_files WHERE report_id = ? ORDER BY kind, position`, data.ID)
	if err != nil {
		return fmt.Errorf("load files: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind, path string
		if err := rows.Scan(&kind, &path); err != nil {
			return fmt.Errorf("scan file: %w", err)
		}
		switch kind {
		case "photo":
			data.Files.Photos = append(data.Files.Photos, path)
		case "ut_sketch":
			data.Files.UTSketch = path
		case "signature":
			data.Files.Signature = path
		}
	}
	return rows.Err()
}

// SaveReport replaces a report's content in one transaction. Child rows are
// deleted and rewritten rather than diffed; UT points without a label get the
// next sequential one.
func (s *Store) SaveReport(ctx context.Context, data *models.ReportData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save report: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE reports SET report_number = ?, report_date = ?, final_result = ?, part_id = NULLIF(?, ''),
		                   updated_at = strftime('%s', 'now')
		WHERE id = ?`,
		data.ReportNumber, data.ReportDate, string(data.FinalResult), data.PartID, data.ID,
	)
	if err != nil {
		return fmt.Errorf("save report %s: %w", data.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("save_report", data.ID)
	}

	for _, table := range []string{
		"report_methods", "report_ut", "report_ut_points",
		"report_pm", "report_tests", "report_seals", "report_files",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE report_id = ?", data.ID); err != nil {
			return fmt.Errorf("save report: clear %s: %w", table, err)
		}
	}

	for _, m := range data.Methods {
		result := m.Result
		if result == models.ResultUnset {
			result = models.ResultNA
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO report_methods (report_id, method, result, acceptance, notes)
			VALUES (?, ?, ?, ?, ?)`,
			data.ID, string(m.Method), string(result), m.Acceptance, m.Notes,
		); err != nil {
			return fmt.Errorf("save report: method %s: %w", m.Method, err)
		}
	}

	if ut := data.UT; ut != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO report_ut (report_id, instrument_id, instrument_exp, step_wedge_id, step_wedge_exp, sketch_path)
			VALUES (?, ?, ?, ?, ?, ?)`,
			data.ID, ut.InstrumentID, ut.InstrumentExp, ut.StepWedgeID, ut.StepWedgeExp, ut.SketchPath,
		); err != nil {
			return fmt.Errorf("save report: ut: %w", err)
		}
		for i := range ut.Points {
			if ut.Points[i].Label == "" {
				ut.Points[i].Label = models.NextPointLabel(ut.Points[:i])
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO report_ut_points (report_id, position, label, min_mm, actual_mm)
				VALUES (?, ?, ?, ?, ?)`,
				data.ID, i, ut.Points[i].Label,
				nullableFloat(ut.Points[i].MinMM), nullableFloat(ut.Points[i].ActualMM),
			); err != nil {
				return fmt.Errorf("save report: ut point %d: %w", i, err)
			}
		}
	}

	if pm := data.PM; pm != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO report_pm (report_id, magnetization_method, field_direction, particle_type, via, equipment, current,
			                       yoke_id, yoke_exp, lux_uv_id, lux_uv_exp, lux_white_id, lux_white_exp,
			                       aerosol, aerosol_lot, aerosol_exp, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			data.ID, pm.MagnetizationMethod, pm.FieldDirection, pm.ParticleType, pm.Via, pm.Equipment, pm.Current,
			pm.YokeID, pm.YokeExp, pm.LuxUVID, pm.LuxUVExp, pm.LuxWhiteID, pm.LuxWhiteExp,
			pm.Aerosol, pm.AerosolLot, pm.AerosolExp, pm.Notes,
		); err != nil {
			return fmt.Errorf("save report: pm: %w", err)
		}
	}

	for _, t := range data.Tests {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO report_tests (report_id, test_type, applies, instrument_id, instrument_exp, params, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			data.ID, string(t.Type), t.Applies, t.InstrumentID, t.InstrumentExp, t.Params, t.Notes,
		); err != nil {
			return fmt.Errorf("save report: test %s: %w", t.Type, err)
		}
	}

	if seal := data.Seal; seal != nil && (seal.Type != "" || seal.Due != "") {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO report_seals (report_id, seal_type, due_date) VALUES (?, ?, ?)`,
			data.ID, seal.Type, seal.Due,
		); err != nil {
			return fmt.Errorf("save report: seal: %w", err)
		}
	}

	if err := s.saveFiles(ctx, tx, data); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save report: commit: %w", err)
	}
	return nil
}

func (s *Store) saveFiles(ctx context.Context, tx *sql.Tx, data *models.ReportData) error {
	for i, path := range data.Files.Photos {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO report_files (report_id, kind, position, path) VALUES (?, 'photo', ?, ?)`,
			data.ID, i, path,
		); err != nil {
			return fmt.Errorf("save report: photo %d: %w", i, err)
		}
	}
	if data.Files.UTSketch != "" {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO report_files (report_id, kind, position, path) VALUES (?, 'ut_sketch', 0, ?)`,
			data.ID, data.Files.UTSketch,
		); err != nil {
			return fmt.Errorf("save report: ut sketch: %w", err)
		}
	}
	if data.Files.Signature != "" {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO report_files (report_id, kind, position, path) VALUES (?, 'signature', 0, ?)`,
			data.ID, data.Files.Signature,
		); err != nil {
			return fmt.Errorf("save report: signature: %w", err)
		}
	}
	return nil
}

// ReportsByWorkOrder hydrates every report of one work order in report-date
// order; undated reports sort by creation.
func (s *Store) ReportsByWorkOrder(ctx context.Context, workOrderID string) ([]*models.ReportData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM reports WHERE work_order_id = ?
		ORDER BY report_date, created_at, id`, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("reports by work order: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan report id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reports := make([]*models.ReportData, 0, len(ids))
	for _, id := range ids {
		data, err := s.ReportData(ctx, id)
		if err != nil {
			return nil, err
		}
		reports = append(reports, data)
	}
	return reports, nil
}

func nullableFloat(m models.Measurement) interface{} {
	if !m.IsSet() {
		return nil
	}
	return m.Float()
}
