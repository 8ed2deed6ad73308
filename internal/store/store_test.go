package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ironndt/certify/internal/errors"
	"github.com/ironndt/certify/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "certify.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedReport(t *testing.T, s *Store) (workOrderID, partID, reportID string) {
	t.Helper()
	ctx := context.Background()

	wo := &models.WorkOrder{
		Number:   "OT-2026-007",
		Client:   "ACME Drilling",
		Sector:   "Neuquén",
		Location: "Base Añelo",
		Date:     "2026-03-10",
	}
	require.NoError(t, s.CreateWorkOrder(ctx, wo))

	part := &models.Part{
		WorkOrderID: wo.ID,
		Code:        "BOP-114",
		Description: "Preventor anular",
		PN:          "AX-204",
		Serial:      "S-9911",
	}
	require.NoError(t, s.CreatePart(ctx, part))

	id, err := s.CreateReport(ctx, wo.ID, part.ID)
	require.NoError(t, err)
	return wo.ID, part.ID, id
}

func TestReportDataHydratesHeaderAndPart(t *testing.T) {
	s := openTestStore(t)
	_, _, reportID := seedReport(t, s)

	data, err := s.ReportData(context.Background(), reportID)

	require.NoError(t, err)
	assert.Equal(t, "OT-2026-007", data.WorkOrderNumber)
	assert.Equal(t, "ACME Drilling", data.Client)
	assert.Equal(t, "BOP-114", data.PartCode)
	assert.Equal(t, "AX-204", data.PN)
	// Unset report date falls back to the work-order date.
	assert.Equal(t, "2026-03-10", data.ReportDate)
	// Every known method gets a row, defaulted to na.
	require.Len(t, data.Methods, len(models.AllMethods))
	for _, m := range data.Methods {
		assert.Equal(t, models.ResultNA, m.Result)
	}
	assert.Nil(t, data.UT)
	assert.Nil(t, data.PM)
}

func TestReportDataNumberFallback(t *testing.T) {
	s := openTestStore(t)
	_, _, reportID := seedReport(t, s)

	data, err := s.ReportData(context.Background(), reportID)

	require.NoError(t, err)
	assert.Equal(t, "IR-"+reportID[:8], data.ReportNumber)
}

func TestReportDataLookupByNumber(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, _, reportID := seedReport(t, s)

	data, err := s.ReportData(ctx, reportID)
	require.NoError(t, err)
	data.ReportNumber = "INF-0042"
	require.NoError(t, s.SaveReport(ctx, data))

	got, err := s.ReportData(ctx, "INF-0042")

	require.NoError(t, err)
	assert.Equal(t, reportID, got.ID)
	assert.Equal(t, "INF-0042", got.ReportNumber)
}

func TestReportDataNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ReportData(context.Background(), "nope")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestSaveReportRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, partID, reportID := seedReport(t, s)

	data, err := s.ReportData(ctx, reportID)
	require.NoError(t, err)

	data.ReportNumber = "INF-0042"
	data.ReportDate = "2026-03-12"
	data.PartID = partID
	data.FinalResult = models.ResultApproved
	data.MethodRow(models.MethodUT).Result = models.ResultApproved
	data.MethodRow(models.MethodUT).Notes = "Sin indicaciones"
	data.UT = &models.UTMeasurement{
		InstrumentID: "UT-55",
		Points: []models.UTPoint{
			{Label: "A", MinMM: models.MeasurementOf(10), ActualMM: models.MeasurementOf(12.5)},
			{MinMM: models.MeasurementOf(10)}, // no label, no actual
		},
	}
	data.Tests = []models.GenericTest{
		{Type: models.MethodHydro, Applies: true, Params: "350 bar / 10 min"},
	}
	data.Seal = &models.Seal{Type: "Plomo", Due: "2027-03-12"}
	data.Files.Photos = []string{"/p/1.jpg", "/p/2.jpg"}
	data.Files.UTSketch = "/p/sketch.png"

	require.NoError(t, s.SaveReport(ctx, data))

	got, err := s.ReportData(ctx, reportID)
	require.NoError(t, err)
	assert.Equal(t, "INF-0042", got.ReportNumber)
	assert.Equal(t, models.ResultApproved, got.FinalResult)
	assert.Equal(t, models.ResultApproved, got.ResultFor(models.MethodUT))

	require.NotNil(t, got.UT)
	require.Len(t, got.UT.Points, 2)
	assert.Equal(t, "A", got.UT.Points[0].Label)
	// Missing label is assigned the next in sequence.
	assert.Equal(t, "B", got.UT.Points[1].Label)
	assert.True(t, got.UT.Points[0].ActualMM.IsSet())
	assert.False(t, got.UT.Points[1].ActualMM.IsSet())

	require.Len(t, got.Tests, 1)
	assert.True(t, got.Tests[0].Applies)

	require.NotNil(t, got.Seal)
	assert.Equal(t, "Plomo", got.Seal.Type)
	assert.Equal(t, []string{"/p/1.jpg", "/p/2.jpg"}, got.Files.Photos)
	assert.Equal(t, "/p/sketch.png", got.Files.UTSketch)
}

func TestSaveReportReplacesChildren(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, _, reportID := seedReport(t, s)

	data, err := s.ReportData(ctx, reportID)
	require.NoError(t, err)
	data.UT = &models.UTMeasurement{Points: []models.UTPoint{{Label: "A"}, {Label: "B"}}}
	require.NoError(t, s.SaveReport(ctx, data))

	// Second save drops the UT payload entirely.
	data, err = s.ReportData(ctx, reportID)
	require.NoError(t, err)
	data.UT = nil
	require.NoError(t, s.SaveReport(ctx, data))

	got, err := s.ReportData(ctx, reportID)
	require.NoError(t, err)
	assert.Nil(t, got.UT)
}

func TestSaveReportUnknownID(t *testing.T) {
	s := openTestStore(t)
	err := s.SaveReport(context.Background(), &models.ReportData{ID: "ghost"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestReportsByWorkOrderOrdersByDate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	woID, partID, first := seedReport(t, s)
	second, err := s.CreateReport(ctx, woID, partID)
	require.NoError(t, err)

	// Date the newer report earlier; it should come back first.
	data, err := s.ReportData(ctx, second)
	require.NoError(t, err)
	data.ReportDate = "2026-01-05"
	require.NoError(t, s.SaveReport(ctx, data))

	data, err = s.ReportData(ctx, first)
	require.NoError(t, err)
	data.ReportDate = "2026-02-20"
	require.NoError(t, s.SaveReport(ctx, data))

	reports, err := s.ReportsByWorkOrder(ctx, woID)

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, second, reports[0].ID)
	assert.Equal(t, first, reports[1].ID)
}

func TestCertificationRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cert := &models.Certification{Code: "CERT-2026-01", Customer: "ACME"}
	require.NoError(t, s.CreateCertification(ctx, cert))

	got, err := s.Certification(ctx, cert.ID)
	require.NoError(t, err)
	assert.Equal(t, "CERT-2026-01", got.Code)
	assert.Equal(t, models.CertificationDraft, got.Status)
}

func TestCertificationNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Certification(context.Background(), "nope")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCertificationItemsResolveLabelsAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, partID, reportID := seedReport(t, s)

	cert := &models.Certification{Code: "CERT-2026-01"}
	require.NoError(t, s.CreateCertification(ctx, cert))

	require.NoError(t, s.AddCertificationItem(ctx, &models.CertificationItem{
		ReportID: reportID, PartID: partID, SortOrder: 1,
	}, cert.ID))
	require.NoError(t, s.AddCertificationItem(ctx, &models.CertificationItem{
		ReportID: reportID, SortOrder: 0,
	}, cert.ID))

	items, err := s.CertificationItems(ctx, cert.ID)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].SortOrder)
	assert.Equal(t, 1, items[1].SortOrder)
	assert.Equal(t, "BOP-114", items[1].PartCode)
	assert.Equal(t, "ACME Drilling", items[1].ClientName)
	assert.Equal(t, "IR-"+reportID[:8], items[1].ReportNumber)
	// Item without an explicit part still resolves via the report's part.
	assert.Equal(t, "BOP-114", items[0].PartCode)
}

func TestAddCertificationItemAppendsWhenOrderNegative(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, _, reportID := seedReport(t, s)

	cert := &models.Certification{Code: "C"}
	require.NoError(t, s.CreateCertification(ctx, cert))

	a := &models.CertificationItem{ReportID: reportID, SortOrder: -1}
	b := &models.CertificationItem{ReportID: reportID, SortOrder: -1}
	require.NoError(t, s.AddCertificationItem(ctx, a, cert.ID))
	require.NoError(t, s.AddCertificationItem(ctx, b, cert.ID))

	assert.Equal(t, 0, a.SortOrder)
	assert.Equal(t, 1, b.SortOrder)
}

func TestUpdateItemPagination(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, _, reportID := seedReport(t, s)

	cert := &models.Certification{Code: "C"}
	require.NoError(t, s.CreateCertification(ctx, cert))
	item := &models.CertificationItem{ReportID: reportID}
	require.NoError(t, s.AddCertificationItem(ctx, item, cert.ID))

	require.NoError(t, s.UpdateItemPagination(ctx, item.ID, 4, 2))
	// Idempotent: rewriting the same values succeeds.
	require.NoError(t, s.UpdateItemPagination(ctx, item.ID, 4, 2))

	items, err := s.CertificationItems(ctx, cert.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].StartsAtPage)
	assert.Equal(t, 2, items[0].PagesCount)

	err = s.UpdateItemPagination(ctx, "ghost", 1, 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCertificationFiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cert := &models.Certification{Code: "C"}
	require.NoError(t, s.CreateCertification(ctx, cert))

	file := &models.CertificationFile{
		CertificationID: cert.ID,
		URL:             "/artifacts/cert-C.pdf",
		TemplateVersion: "v2",
		PagesTotal:      7,
	}
	require.NoError(t, s.InsertCertificationFile(ctx, file))

	files, err := s.CertificationFiles(ctx, cert.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "/artifacts/cert-C.pdf", files[0].URL)
	assert.Equal(t, 7, files[0].PagesTotal)
}
