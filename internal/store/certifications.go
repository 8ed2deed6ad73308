package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ironndt/certify/internal/errors"
	"github.com/ironndt/certify/internal/models"
)

// CreateCertification inserts a certification shell, assigning an id when
// missing.
func (s *Store) CreateCertification(ctx context.Context, cert *models.Certification) error {
	if cert.ID == "" {
		cert.ID = uuid.NewString()
	}
	if cert.Status == "" {
		cert.Status = models.CertificationDraft
	}
	if cert.CreatedAt.IsZero() {
		cert.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certifications (id, code, title, customer, date, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cert.ID, cert.Code, cert.Title, cert.Customer, cert.Date, string(cert.Status), cert.Notes, cert.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create certification: %w", err)
	}
	return nil
}

// Certification returns one certification by id.
func (s *Store) Certification(ctx context.Context, id string) (*models.Certification, error) {
	cert := &models.Certification{ID: id}
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT code, title, customer, date, status, notes, created_at
		FROM certifications WHERE id = ?`, id,
	).Scan(&cert.Code, &cert.Title, &cert.Customer, &cert.Date, &cert.Status, &cert.Notes, &createdAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("get_certification", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get certification %s: %w", id, err)
	}
	cert.CreatedAt = time.Unix(createdAt, 0).UTC()
	return cert, nil
}

// AddCertificationItem appends a report to a bundle. When sortOrder is
// negative the item goes after the current last one.
func (s *Store) AddCertificationItem(ctx context.Context, item *models.CertificationItem, certificationID string) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.SortOrder < 0 {
		var next sql.NullInt64
		err := s.db.QueryRowContext(ctx, `
			SELECT MAX(sort_order) + 1 FROM certification_items WHERE certification_id = ?`,
			certificationID,
		).Scan(&next)
		if err != nil {
			return fmt.Errorf("add certification item: next order: %w", err)
		}
		item.SortOrder = int(next.Int64)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certification_items (id, certification_id, report_id, part_id, sort_order, starts_at_page, pages_count)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?)`,
		item.ID, certificationID, item.ReportID, item.PartID, item.SortOrder, item.StartsAtPage, item.PagesCount,
	)
	if err != nil {
		return fmt.Errorf("add certification item: %w", err)
	}
	return nil
}

// CertificationItems returns a bundle's items ordered by sort_order, with the
// index labels (part code, client, report number) resolved in the same query.
func (s *Store) CertificationItems(ctx context.Context, certificationID string) ([]models.CertificationItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.report_id, i.part_id, i.sort_order, i.starts_at_page, i.pages_count,
		       COALESCE(p.code, ''), COALESCE(w.client, ''), COALESCE(r.report_number, '')
		FROM certification_items i
		JOIN reports r ON r.id = i.report_id
		JOIN work_orders w ON w.id = r.work_order_id
		LEFT JOIN parts p ON p.id = COALESCE(i.part_id, r.part_id)
		WHERE i.certification_id = ?
		ORDER BY i.sort_order, i.id`, certificationID)
	if err != nil {
		return nil, fmt.Errorf("certification items: %w", err)
	}
	defer rows.Close()

	var items []models.CertificationItem
	for rows.Next() {
		var item models.CertificationItem
		var partID sql.NullString
		if err := rows.Scan(
			&item.ID, &item.ReportID, &partID, &item.SortOrder, &item.StartsAtPage, &item.PagesCount,
			&item.PartCode, &item.ClientName, &item.ReportNumber,
		); err != nil {
			return nil, fmt.Errorf("scan certification item: %w", err)
		}
		item.PartID = partID.String
		if item.ReportNumber == "" {
			item.ReportNumber = fallbackReportNumber(item.ReportID)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItemPagination persists the derived page range of one bundle item.
// Rewriting the same values is a no-op by construction.
func (s *Store) UpdateItemPagination(ctx context.Context, itemID string, startsAtPage, pagesCount int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE certification_items SET starts_at_page = ?, pages_count = ? WHERE id = ?`,
		startsAtPage, pagesCount, itemID)
	if err != nil {
		return fmt.Errorf("update item pagination: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("update_item_pagination", itemID)
	}
	return nil
}

// InsertCertificationFile records a stored bundle artifact.
func (s *Store) InsertCertificationFile(ctx context.Context, file *models.CertificationFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certification_files (id, certification_id, pdf_url, template_version, pages_total, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		file.ID, file.CertificationID, file.URL, file.TemplateVersion, file.PagesTotal, file.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert certification file: %w", err)
	}
	return nil
}

// CertificationFiles lists stored artifacts for a bundle, newest first.
func (s *Store) CertificationFiles(ctx context.Context, certificationID string) ([]models.CertificationFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pdf_url, template_version, pages_total, created_at
		FROM certification_files WHERE certification_id = ?
		ORDER BY created_at DESC, id`, certificationID)
	if err != nil {
		return nil, fmt.Errorf("certification files: %w", err)
	}
	defer rows.Close()

	var files []models.CertificationFile
	for rows.Next() {
		file := models.CertificationFile{CertificationID: certificationID}
		var createdAt int64
		if err := rows.Scan(&file.ID, &file.URL, &file.TemplateVersion, &file.PagesTotal, &createdAt); err != nil {
			return nil, fmt.Errorf("scan certification file: %w", err)
		}
		file.CreatedAt = time.Unix(createdAt, 0).UTC()
		files = append(files, file)
	}
	return files, rows.Err()
}
