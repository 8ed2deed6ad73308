// Package metrics exposes Prometheus instrumentation for document rendering
// and bundle compilation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsRendered counts finished single-report renders by mode.
	DocumentsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certify_documents_rendered_total",
		Help: "Report documents rendered, by view mode.",
	}, []string{"view"})

	// PagesEmitted counts pages painted into finished PDFs.
	PagesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "certify_pages_emitted_total",
		Help: "Total pages painted into finished PDFs.",
	})

	// BundlesCompiled counts bundle compilations by outcome.
	BundlesCompiled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certify_bundles_compiled_total",
		Help: "Certification bundle compilations, by outcome.",
	}, []string{"outcome"})

	// BundleDuration observes wall time of a full bundle compilation.
	BundleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "certify_bundle_compile_duration_seconds",
		Help:    "Wall time of a full bundle compilation.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	// PaginationWriteFailures counts best-effort pagination persistence
	// failures. The compiled document still ships when these occur.
	PaginationWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "certify_pagination_write_failures_total",
		Help: "Failed starts_at_page/pages_count writes after a compile.",
	})

	// HTTPRequests counts API requests by route group and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "certify_http_requests_total",
		Help: "API requests, by route group and status class.",
	}, []string{"route", "status"})
)
