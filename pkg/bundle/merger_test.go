package bundle

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ironndt/certify/internal/errors"
	"github.com/ironndt/certify/internal/models"
)

type fakeSource struct {
	cert    *models.Certification
	items   []models.CertificationItem
	reports map[string]*models.ReportData
	byWO    map[string][]*models.ReportData

	// blockFetch, when set, is closed by the test to let fetches proceed.
	blockFetch chan struct{}
}

func (f *fakeSource) Certification(_ context.Context, id string) (*models.Certification, error) {
	if f.blockFetch != nil {
		<-f.blockFetch
	}
	if f.cert == nil || f.cert.ID != id {
		return nil, apperrors.NotFound("get_certification", id)
	}
	return f.cert, nil
}

func (f *fakeSource) CertificationItems(_ context.Context, _ string) ([]models.CertificationItem, error) {
	return f.items, nil
}

func (f *fakeSource) ReportData(_ context.Context, reportID string) (*models.ReportData, error) {
	data, ok := f.reports[reportID]
	if !ok {
		return nil, apperrors.NotFound("get_report", reportID)
	}
	return data, nil
}

func (f *fakeSource) ReportsByWorkOrder(_ context.Context, workOrderID string) ([]*models.ReportData, error) {
	return f.byWO[workOrderID], nil
}

type fakeSink struct {
	mu      sync.Mutex
	updates map[string][2]int
	err     error
}

func (f *fakeSink) UpdateItemPagination(_ context.Context, itemID string, startsAt, count int) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = make(map[string][2]int)
	}
	f.updates[itemID] = [2]int{startsAt, count}
	return nil
}

type fakeArtifacts struct {
	err    error
	stored *models.CertificationFile
}

func (f *fakeArtifacts) Store(_ context.Context, cert *models.Certification, _ []byte, pagesTotal int) (*models.CertificationFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.stored = &models.CertificationFile{
		ID:              "file-1",
		CertificationID: cert.ID,
		URL:             "/artifacts/cert-" + cert.Code + ".pdf",
		PagesTotal:      pagesTotal,
	}
	return f.stored, nil
}

// reportWithPages builds a report fixture that renders to the given page
// count: 1 is cover only, 2 adds UT, 3 adds PM as well.
func reportWithPages(id string, n int) *models.ReportData {
	data := &models.ReportData{
		ID:              id,
		ReportNumber:    "INF-" + id,
		WorkOrderNumber: "OT-1",
		Client:          "ACME",
		FinalResult:     models.ResultApproved,
	}
	if n >= 2 {
		data.Methods = append(data.Methods, models.MethodResult{Method: models.MethodUT, Result: models.ResultApproved})
		data.UT = &models.UTMeasurement{Points: []models.UTPoint{{Label: "A", ActualMM: models.MeasurementOf(12)}}}
	}
	if n >= 3 {
		data.Methods = append(data.Methods, models.MethodResult{Method: models.MethodPM, Result: models.ResultApproved})
		data.PM = &models.PMParameters{MagnetizationMethod: "Yugo"}
	}
	return data
}

func testBundle() (*fakeSource, *fakeSink) {
	source := &fakeSource{
		cert: &models.Certification{ID: "cert-1", Code: "CERT-2026-01", Customer: "ACME"},
		items: []models.CertificationItem{
			{ID: "item-a", ReportID: "a", SortOrder: 0, PartCode: "P-1", ReportNumber: "INF-a"},
			{ID: "item-b", ReportID: "b", SortOrder: 1, PartCode: "P-2", ReportNumber: "INF-b"},
			{ID: "item-c", ReportID: "c", SortOrder: 2, PartCode: "P-3", ReportNumber: "INF-c"},
		},
		reports: map[string]*models.ReportData{
			"a": reportWithPages("a", 2),
			"b": reportWithPages("b", 1),
			"c": reportWithPages("c", 3),
		},
	}
	return source, &fakeSink{}
}

func TestCompileAssignsTruePageCounts(t *testing.T) {
	source, sink := testBundle()
	m := NewMerger(source, sink, nil, "")

	res, err := m.Compile(context.Background(), "cert-1", false)

	require.NoError(t, err)
	require.Len(t, res.Plan.Items, 3)

	// One cover/index page, then bodies of 2, 1 and 3 pages.
	assert.Equal(t, 2, res.Plan.BodyStartPage)
	assert.Equal(t, 2, res.Plan.Items[0].StartsAtPage)
	assert.Equal(t, 2, res.Plan.Items[0].PagesCount)
	assert.Equal(t, 4, res.Plan.Items[1].StartsAtPage)
	assert.Equal(t, 1, res.Plan.Items[1].PagesCount)
	assert.Equal(t, 5, res.Plan.Items[2].StartsAtPage)
	assert.Equal(t, 3, res.Plan.Items[2].PagesCount)
	assert.Equal(t, 7, res.Plan.TotalPages)

	require.NotEmpty(t, res.PDF)
	assert.Equal(t, "%PDF", string(res.PDF[:4]))

	// The painted artifact has exactly the planned number of pages, so the
	// sequential footer runs 1/7 through 7/7.
	painted := bytes.Count(res.PDF, []byte("/Type /Page")) - bytes.Count(res.PDF, []byte("/Type /Pages"))
	assert.Equal(t, res.Plan.TotalPages, painted)
}

func TestCompilePersistsPagination(t *testing.T) {
	source, sink := testBundle()
	m := NewMerger(source, sink, nil, "")

	_, err := m.Compile(context.Background(), "cert-1", false)

	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 2}, sink.updates["item-a"])
	assert.Equal(t, [2]int{4, 1}, sink.updates["item-b"])
	assert.Equal(t, [2]int{5, 3}, sink.updates["item-c"])
}

func TestCompilePaginationFailureStillReturnsDocument(t *testing.T) {
	source, sink := testBundle()
	sink.err = errors.New("disk full")
	m := NewMerger(source, sink, nil, "")

	res, err := m.Compile(context.Background(), "cert-1", false)

	require.NoError(t, err)
	assert.NotEmpty(t, res.PDF)
}

func TestCompileUnknownCertification(t *testing.T) {
	source, sink := testBundle()
	m := NewMerger(source, sink, nil, "")

	_, err := m.Compile(context.Background(), "missing", false)

	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCompileConflictsWhileInFlight(t *testing.T) {
	source, sink := testBundle()
	source.blockFetch = make(chan struct{})
	m := NewMerger(source, sink, nil, "")

	done := make(chan error, 1)
	go func() {
		_, err := m.Compile(context.Background(), "cert-1", false)
		done <- err
	}()

	// Wait for the first compile to take the lock.
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		_, busy := m.inFlight["cert-1"]
		return busy
	}, time.Second, time.Millisecond)

	_, err := m.Compile(context.Background(), "cert-1", false)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	close(source.blockFetch)
	require.NoError(t, <-done)

	// The lock is released once the first compile finishes.
	_, err = m.Compile(context.Background(), "cert-1", false)
	assert.NoError(t, err)
}

func TestCompileStoresArtifactOnRequest(t *testing.T) {
	source, sink := testBundle()
	artifacts := &fakeArtifacts{}
	m := NewMerger(source, sink, artifacts, "")

	res, err := m.Compile(context.Background(), "cert-1", true)

	require.NoError(t, err)
	require.NotNil(t, res.File)
	assert.Equal(t, "/artifacts/cert-CERT-2026-01.pdf", res.File.URL)
	assert.Equal(t, 7, res.File.PagesTotal)
}

func TestCompileArtifactFailureIsNotFatal(t *testing.T) {
	source, sink := testBundle()
	artifacts := &fakeArtifacts{err: errors.New("volume offline")}
	m := NewMerger(source, sink, artifacts, "")

	res, err := m.Compile(context.Background(), "cert-1", true)

	require.NoError(t, err)
	assert.Nil(t, res.File)
	assert.NotEmpty(t, res.PDF)
}

func TestCompileSkipsStorageWhenNotRequested(t *testing.T) {
	source, sink := testBundle()
	artifacts := &fakeArtifacts{}
	m := NewMerger(source, sink, artifacts, "")

	res, err := m.Compile(context.Background(), "cert-1", false)

	require.NoError(t, err)
	assert.Nil(t, res.File)
	assert.Nil(t, artifacts.stored)
}

func TestCompileWorkOrder(t *testing.T) {
	source, sink := testBundle()
	source.byWO = map[string][]*models.ReportData{
		"wo-1": {reportWithPages("a", 2), reportWithPages("b", 1)},
	}
	m := NewMerger(source, sink, nil, "")

	pdf, err := m.CompileWorkOrder(context.Background(), "wo-1")

	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestCompileWorkOrderNoReports(t *testing.T) {
	source, sink := testBundle()
	m := NewMerger(source, sink, nil, "")

	_, err := m.CompileWorkOrder(context.Background(), "wo-empty")

	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
