// Package store persists work orders, inspection reports and certification
// bundles in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ironndt/certify/internal/models"
)

// Store provides CRUD operations backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dsn := dbPath + "?" + url.Values{
		"_pragma": []string{
			"busy_timeout(30000)",
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
			"foreign_keys(ON)",
		},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS work_orders (
		id            TEXT PRIMARY KEY,
		number        TEXT NOT NULL DEFAULT '',
		client        TEXT NOT NULL DEFAULT '',
		sector        TEXT NOT NULL DEFAULT '',
		location      TEXT NOT NULL DEFAULT '',
		service_scope TEXT NOT NULL DEFAULT '',
		service_level TEXT NOT NULL DEFAULT '',
		frequency     TEXT NOT NULL DEFAULT '',
		date          TEXT NOT NULL DEFAULT '',
		created_at    INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS parts (
		id            TEXT PRIMARY KEY,
		work_order_id TEXT NOT NULL REFERENCES work_orders(id),
		code          TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		pn            TEXT NOT NULL DEFAULT '',
		serial        TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS reports (
		id            TEXT PRIMARY KEY,
		work_order_id TEXT NOT NULL REFERENCES work_orders(id),
		part_id       TEXT REFERENCES parts(id),
		report_number TEXT NOT NULL DEFAULT '',
		report_date   TEXT NOT NULL DEFAULT '',
		final_result  TEXT NOT NULL DEFAULT 'na',
		created_at    INTEGER NOT NULL,
		updated_at    INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_work_order ON reports(work_order_id);
	CREATE TABLE IF NOT EXISTS report_methods (
		report_id  TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		method     TEXT NOT NULL,
		result     TEXT NOT NULL DEFAULT 'na',
		acceptance TEXT NOT NULL DEFAULT '',
		notes      TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (report_id, method)
	);
	CREATE TABLE IF NOT EXISTS report_ut (
		report_id      TEXT PRIMARY KEY REFERENCES reports(id) ON DELETE CASCADE,
		instrument_id  TEXT NOT NULL DEFAULT '',
		instrument_exp TEXT NOT NULL DEFAULT '',
		step_wedge_id  TEXT NOT NULL DEFAULT '',
		step_wedge_exp TEXT NOT NULL DEFAULT '',
		sketch_path    TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS report_ut_points (
		report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		position  INTEGER NOT NULL,
		label     TEXT NOT NULL DEFAULT '',
		min_mm    REAL,
		actual_mm REAL,
		PRIMARY KEY (report_id, position)
	);
	CREATE TABLE IF NOT EXISTS report_pm (
		report_id            TEXT PRIMARY KEY REFERENCES reports(id) ON DELETE CASCADE,
		magnetization_method TEXT NOT NULL DEFAULT '',
		field_direction      TEXT NOT NULL DEFAULT '',
		particle_type        TEXT NOT NULL DEFAULT '',
		via                  TEXT NOT NULL DEFAULT '',
		equipment            TEXT NOT NULL DEFAULT '',
		current              TEXT NOT NULL DEFAULT '',
		yoke_id              TEXT NOT NULL DEFAULT '',
		yoke_exp             TEXT NOT NULL DEFAULT '',
		lux_uv_id            TEXT NOT NULL DEFAULT '',
		lux_uv_exp           TEXT NOT NULL DEFAULT '',
		lux_white_id         TEXT NOT NULL DEFAULT '',
		lux_white_exp        TEXT NOT NULL DEFAULT '',
		aerosol              TEXT NOT NULL DEFAULT '',
		aerosol_lot          TEXT NOT NULL DEFAULT '',
		aerosol_exp          TEXT NOT NULL DEFAULT '',
		notes                TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS report_tests (
		report_id      TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		test_type      TEXT NOT NULL,
		applies        INTEGER NOT NULL DEFAULT 0,
		instrument_id  TEXT NOT NULL DEFAULT '',
		instrument_exp TEXT NOT NULL DEFAULT '',
		params         TEXT NOT NULL DEFAULT '',
		notes          TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (report_id, test_type)
	);
	CREATE TABLE IF NOT EXISTS report_seals (
		report_id TEXT PRIMARY KEY REFERENCES reports(id) ON DELETE CASCADE,
		seal_type TEXT NOT NULL DEFAULT '',
		due_date  TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS report_files (
		report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		kind      TEXT NOT NULL,
		position  INTEGER NOT NULL DEFAULT 0,
		path      TEXT NOT NULL,
		PRIMARY KEY (report_id, kind, position)
	);
	CREATE TABLE IF NOT EXISTS certifications (
		id         TEXT PRIMARY KEY,
		code       TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL DEFAULT '',
		customer   TEXT NOT NULL DEFAULT '',
		date       TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'draft',
		notes      TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS certification_items (
		id               TEXT PRIMARY KEY,
		certification_id TEXT NOT NULL REFERENCES certifications(id) ON DELETE CASCADE,
		report_id        TEXT NOT NULL REFERENCES reports(id),
		part_id          TEXT,
		sort_order       INTEGER NOT NULL DEFAULT 0,
		starts_at_page   INTEGER NOT NULL DEFAULT 0,
		pages_count      INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_cert_items_cert ON certification_items(certification_id);
	CREATE TABLE IF NOT EXISTS certification_files (
		id               TEXT PRIMARY KEY,
		certification_id TEXT NOT NULL REFERENCES certifications(id) ON DELETE CASCADE,
		pdf_url          TEXT NOT NULL,
		template_version TEXT NOT NULL DEFAULT '',
		pages_total      INTEGER NOT NULL DEFAULT 0,
		created_at       INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity (used for readiness probes).
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateWorkOrder inserts a work order, assigning an id when missing.
func (s *Store) CreateWorkOrder(ctx context.Context, wo *models.WorkOrder) error {
	if wo.ID == "" {
		wo.ID = uuid.NewString()
	}
	if wo.CreatedAt.IsZero() {
		wo.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_orders (id, number, client, sector, location, service_scope, service_level, frequency, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		wo.ID, wo.Number, wo.Client, wo.Sector, wo.Location, wo.Scope, wo.ServiceLevel, wo.Frequency, wo.Date, wo.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create work order: %w", err)
	}
	return nil
}

// CreatePart inserts a part, assigning an id when missing.
func (s *Store) CreatePart(ctx context.Context, p *models.Part) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO parts (id, work_order_id, code, description, pn, serial)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.WorkOrderID, p.Code, p.Description, p.PN, p.Serial,
	)
	if err != nil {
		return fmt.Errorf("create part: %w", err)
	}
	return nil
}

// CreateReport inserts an empty report shell for a part of a work order.
func (s *Store) CreateReport(ctx context.Context, workOrderID, partID string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, work_order_id, part_id, created_at, updated_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?)`,
		id, workOrderID, partID, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	return id, nil
}
