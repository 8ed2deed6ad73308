// Package artifacts stores finished bundle PDFs on the local filesystem and
// records them so past issues remain retrievable.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ironndt/certify/internal/models"
)

// templateVersion stamps stored artifacts so bundles issued before a layout
// change can be told apart.
const templateVersion = "v2"

// Recorder persists artifact records after the file is written.
type Recorder interface {
	InsertCertificationFile(ctx context.Context, file *models.CertificationFile) error
}

// Storage writes bundle PDFs under a directory and records them through the
// recorder. Filenames carry a ULID so repeated issues never collide and sort
// by time.
type Storage struct {
	dir      string
	baseURL  string
	recorder Recorder
}

// NewStorage creates the artifacts directory if needed.
func NewStorage(dir, baseURL string, recorder Recorder) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}
	return &Storage{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), recorder: recorder}, nil
}

// Store writes the PDF and records it. The returned record's URL is what
// clients fetch the artifact from.
func (s *Storage) Store(ctx context.Context, cert *models.Certification, pdf []byte, pagesTotal int) (*models.CertificationFile, error) {
	name := fmt.Sprintf("cert-%s-%s.pdf", sanitize(cert.Code), ulid.Make().String())
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}

	file := &models.CertificationFile{
		CertificationID: cert.ID,
		URL:             s.baseURL + "/" + name,
		TemplateVersion: templateVersion,
		PagesTotal:      pagesTotal,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.recorder.InsertCertificationFile(ctx, file); err != nil {
		// The file exists but is unrecorded; remove it so the directory and
		// the registry stay consistent.
		_ = os.Remove(path)
		return nil, err
	}
	return file, nil
}

// Dir returns the storage directory, for serving files over HTTP.
func (s *Storage) Dir() string {
	return s.dir
}

// sanitize keeps filenames safe: anything outside [A-Za-z0-9._-] becomes a
// dash.
func sanitize(name string) string {
	if name == "" {
		return "bundle"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		default:
			return '-'
		}
	}, name)
}
