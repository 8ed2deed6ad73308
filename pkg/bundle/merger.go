package bundle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/ironndt/certify/internal/errors"
	"github.com/ironndt/certify/internal/metrics"
	"github.com/ironndt/certify/internal/models"
	"github.com/ironndt/certify/pkg/document"
	"github.com/ironndt/certify/pkg/report"
)

// renderConcurrency bounds parallel per-report rendering inside one compile.
const renderConcurrency = 4

// ReportSource provides the records a compile reads.
type ReportSource interface {
	Certification(ctx context.Context, id string) (*models.Certification, error)
	CertificationItems(ctx context.Context, certificationID string) ([]models.CertificationItem, error)
	ReportData(ctx context.Context, reportID string) (*models.ReportData, error)
	ReportsByWorkOrder(ctx context.Context, workOrderID string) ([]*models.ReportData, error)
}

// PaginationSink persists the derived page ranges after a compile.
type PaginationSink interface {
	UpdateItemPagination(ctx context.Context, itemID string, startsAtPage, pagesCount int) error
}

// ArtifactSink stores a finished bundle PDF and returns its record.
type ArtifactSink interface {
	Store(ctx context.Context, cert *models.Certification, pdf []byte, pagesTotal int) (*models.CertificationFile, error)
}

// Result is the outcome of one bundle compilation.
type Result struct {
	PDF  []byte
	Plan Plan
	// File is set only when artifact storage was requested and succeeded.
	File *models.CertificationFile
}

// Merger compiles certification bundles. One compile per certification runs
// at a time; a second request for the same id fails with a conflict error
// while the first is in flight.
type Merger struct {
	source    ReportSource
	sink      PaginationSink
	artifacts ArtifactSink // nil disables storage
	logoPath  string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewMerger wires a merger. artifacts may be nil when storage is disabled.
func NewMerger(source ReportSource, sink PaginationSink, artifacts ArtifactSink, logoPath string) *Merger {
	return &Merger{
		source:    source,
		sink:      sink,
		artifacts: artifacts,
		logoPath:  logoPath,
		inFlight:  make(map[string]struct{}),
	}
}

// Compile renders every report in the bundle, plans pagination from the true
// page counts, paints cover+index+bodies as one sequentially numbered PDF,
// and persists the derived page ranges. Pagination and artifact persistence
// are best effort: their failure is logged and counted but never voids the
// compiled document.
func (m *Merger) Compile(ctx context.Context, certificationID string, storeArtifact bool) (*Result, error) {
	if !m.acquire(certificationID) {
		return nil, apperrors.Conflict("compile_bundle", certificationID)
	}
	defer m.release(certificationID)

	start := time.Now()
	res, err := m.compile(ctx, certificationID, storeArtifact)
	if err != nil {
		metrics.BundlesCompiled.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.BundlesCompiled.WithLabelValues("ok").Inc()
	metrics.BundleDuration.Observe(time.Since(start).Seconds())
	metrics.PagesEmitted.Add(float64(res.Plan.TotalPages))
	return res, nil
}

func (m *Merger) compile(ctx context.Context, certificationID string, storeArtifact bool) (*Result, error) {
	cert, err := m.source.Certification(ctx, certificationID)
	if err != nil {
		return nil, err
	}
	items, err := m.source.CertificationItems(ctx, certificationID)
	if err != nil {
		return nil, err
	}

	bodies, counts, err := m.renderBodies(ctx, items)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].PagesCount = counts[i]
	}

	// renderBodies kept fetch order, which CertificationItems already sorted
	// by sort_order, so the plan's item order matches bodies'.
	plan := PlanPagination(items)

	pages := make([]document.Page, 0, plan.TotalPages)
	pages = append(pages, indexPages(cert, plan)...)
	for _, body := range bodies {
		pages = append(pages, body...)
	}

	pdf, err := document.Paint(pages, document.PaintOptions{
		LogoPath:    m.logoPath,
		PageNumbers: true,
	})
	if err != nil {
		return nil, apperrors.New(apperrors.ErrorTypeRender, "compile_bundle", certificationID, err)
	}

	m.persistPagination(ctx, certificationID, plan)

	res := &Result{PDF: pdf, Plan: plan}
	if storeArtifact && m.artifacts != nil {
		file, err := m.artifacts.Store(ctx, cert, pdf, plan.TotalPages)
		if err != nil {
			log.Warn().Err(err).Str("certification", certificationID).Msg("Bundle artifact storage failed")
		} else {
			res.File = file
		}
	}
	return res, nil
}

// CompileWorkOrder merges every report of one work order into a single
// numbered PDF, with no cover or index. Pagination is not persisted; the
// work-order document is a transient view.
func (m *Merger) CompileWorkOrder(ctx context.Context, workOrderID string) ([]byte, error) {
	reports, err := m.source.ReportsByWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, apperrors.NotFound("compile_work_order", workOrderID)
	}

	var pages []document.Page
	for _, data := range reports {
		pages = append(pages, document.Prune(report.BuildPages(data, report.Options{LogoPath: m.logoPath}))...)
	}
	pdf, err := document.Paint(pages, document.PaintOptions{
		LogoPath:    m.logoPath,
		PageNumbers: true,
	})
	if err != nil {
		return nil, apperrors.New(apperrors.ErrorTypeRender, "compile_work_order", workOrderID, err)
	}
	metrics.PagesEmitted.Add(float64(len(pages)))
	return pdf, nil
}

// renderBodies renders every item's report concurrently, collecting the page
// lists by item index so output order is deterministic.
func (m *Merger) renderBodies(ctx context.Context, items []models.CertificationItem) ([][]document.Page, []int, error) {
	bodies := make([][]document.Page, len(items))
	counts := make([]int, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(renderConcurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			data, err := m.source.ReportData(gctx, item.ReportID)
			if err != nil {
				return fmt.Errorf("report %s: %w", item.ReportID, err)
			}
			pages := document.Prune(report.BuildPages(data, report.Options{LogoPath: m.logoPath}))
			bodies[i] = pages
			counts[i] = len(pages)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return bodies, counts, nil
}

// persistPagination writes the derived page ranges item by item. A failed
// write is logged and counted; the document already exists and still ships.
func (m *Merger) persistPagination(ctx context.Context, certificationID string, plan Plan) {
	for _, item := range plan.Items {
		if err := m.sink.UpdateItemPagination(ctx, item.ID, item.StartsAtPage, item.PagesCount); err != nil {
			metrics.PaginationWriteFailures.Inc()
			log.Warn().Err(err).
				Str("certification", certificationID).
				Str("item", item.ID).
				Msg("Pagination persistence failed")
		}
	}
}

func (m *Merger) acquire(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inFlight[id]; busy {
		return false
	}
	m.inFlight[id] = struct{}{}
	return true
}

func (m *Merger) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, id)
}

// indexPages lays the item listing out in fixed-capacity pages; the capacity
// matches the planner's rows-per-page constant so the plan's page math holds.
// The first page doubles as the bundle cover: its top band carries the
// certification heading, which is what the planner's row capacity leaves
// room for.
func indexPages(cert *models.Certification, plan Plan) []document.Page {
	pages := make([]document.Page, 0, plan.IndexPages)
	for chunkStart := 0; chunkStart == 0 || chunkStart < len(plan.Items); chunkStart += rowsPerIndexPage {
		end := chunkStart + rowsPerIndexPage
		if end > len(plan.Items) {
			end = len(plan.Items)
		}
		rows := make([][]string, 0, end-chunkStart)
		for _, item := range plan.Items[chunkStart:end] {
			rows = append(rows, []string{item.IndexLabel, fmt.Sprintf("pág. %d", item.StartsAtPage)})
		}

		var blocks []document.Block
		if chunkStart == 0 {
			blocks = append(blocks,
				document.Text{Value: "CERTIFICACIÓN " + cert.Code, Bold: true, Size: 16},
				document.Text{Value: orPlaceholder(cert.Title), Size: 11},
				document.Text{Value: "Cliente: " + orPlaceholder(cert.Customer) + " · Fecha: " + orPlaceholder(cert.Date), Size: 10},
				document.Text{Value: fmt.Sprintf("Informes: %d · Páginas: %d", len(plan.Items), plan.TotalPages), Size: 9},
				document.Spacer{MM: 6},
			)
		}
		blocks = append(blocks,
			document.Box{Title: "Índice"},
			document.Table{
				Columns: []string{"Informe", "Página"},
				Rows:    rows,
				Widths:  []float64{4, 1},
				Aligns:  []string{"L", "R"},
			},
		)
		pages = append(pages, document.Page{Cover: chunkStart == 0, Blocks: blocks})
	}
	return pages
}

func orPlaceholder(s string) string {
	if s == "" {
		return models.Placeholder
	}
	return s
}
