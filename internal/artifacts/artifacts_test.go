package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironndt/certify/internal/models"
)

type fakeRecorder struct {
	file *models.CertificationFile
	err  error
}

func (f *fakeRecorder) InsertCertificationFile(_ context.Context, file *models.CertificationFile) error {
	if f.err != nil {
		return f.err
	}
	f.file = file
	return nil
}

func TestStoreWritesFileAndRecord(t *testing.T) {
	dir := t.TempDir()
	rec := &fakeRecorder{}
	s, err := NewStorage(dir, "/artifacts/", rec)
	require.NoError(t, err)

	cert := &models.Certification{ID: "cert-1", Code: "CERT 2026/01"}
	file, err := s.Store(context.Background(), cert, []byte("%PDF-1.4 test"), 7)

	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, "cert-1", file.CertificationID)
	assert.Equal(t, 7, file.PagesTotal)
	assert.Equal(t, "v2", file.TemplateVersion)
	assert.True(t, strings.HasPrefix(file.URL, "/artifacts/cert-CERT-2026-01-"), file.URL)
	assert.Same(t, file, rec.file)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))
}

func TestStoreUniqueNamesAcrossIssues(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(dir, "/artifacts", &fakeRecorder{})
	require.NoError(t, err)

	cert := &models.Certification{ID: "cert-1", Code: "C"}
	first, err := s.Store(context.Background(), cert, []byte("a"), 1)
	require.NoError(t, err)
	second, err := s.Store(context.Background(), cert, []byte("b"), 1)
	require.NoError(t, err)

	assert.NotEqual(t, first.URL, second.URL)
}

func TestStoreRemovesFileWhenRecordFails(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(dir, "/artifacts", &fakeRecorder{err: errors.New("db closed")})
	require.NoError(t, err)

	_, err = s.Store(context.Background(), &models.Certification{ID: "c", Code: "C"}, []byte("x"), 1)

	require.Error(t, err)
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
