package models

import "time"

// CertificationStatus tracks the lifecycle of a bundle.
type CertificationStatus string

const (
	CertificationDraft  CertificationStatus = "draft"
	CertificationReady  CertificationStatus = "ready"
	CertificationIssued CertificationStatus = "issued"
)

// Certification is a named bundle of reports compiled into one paginated
// document with a cover and index.
type Certification struct {
	ID        string              `json:"id"`
	Code      string              `json:"code"`
	Title     string              `json:"title"`
	Customer  string              `json:"customer"`
	Date      string              `json:"date"`
	Status    CertificationStatus `json:"status"`
	Notes     string              `json:"notes,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// CertificationItem is one report within a bundle. StartsAtPage and
// PagesCount are derived fields: the bundle merger recomputes and persists
// them on every (re)generation, they are never edited directly.
type CertificationItem struct {
	ID           string `json:"id"`
	ReportID     string `json:"report_id"`
	PartID       string `json:"part_id,omitempty"`
	SortOrder    int    `json:"sort_order"`
	StartsAtPage int    `json:"starts_at_page,omitempty"`
	PagesCount   int    `json:"pages_count,omitempty"`

	// Denormalized labels for the index, resolved at fetch time.
	PartCode     string `json:"part_code,omitempty"`
	ClientName   string `json:"client,omitempty"`
	ReportNumber string `json:"report_number,omitempty"`
}

// CertificationFile records a stored merged artifact.
type CertificationFile struct {
	ID              string    `json:"id"`
	CertificationID string    `json:"certification_id"`
	URL             string    `json:"pdf_url"`
	TemplateVersion string    `json:"template_version"`
	PagesTotal      int       `json:"pages_total"`
	CreatedAt       time.Time `json:"created_at"`
}
