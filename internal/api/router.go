// Package api exposes the HTTP surface: report documents, work-order merges
// and certification bundles.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ironndt/certify/internal/config"
	"github.com/ironndt/certify/internal/store"
	"github.com/ironndt/certify/pkg/bundle"
)

// Router routes API requests.
type Router struct {
	mux    *http.ServeMux
	cfg    *config.Config
	store  *store.Store
	merger *bundle.Merger
}

// NewRouter creates the router and registers all routes.
func NewRouter(cfg *config.Config, st *store.Store, merger *bundle.Merger) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		cfg:    cfg,
		store:  st,
		merger: merger,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.mux.HandleFunc("/api/reports/", r.handleReports)
	r.mux.HandleFunc("/api/work-orders/", r.handleWorkOrders)
	r.mux.HandleFunc("/api/certifications/", r.handleCertifications)
	r.mux.HandleFunc("/healthz", r.handleHealth)

	if r.cfg.ArtifactsEnabled {
		fs := http.StripPrefix(r.cfg.ArtifactsBaseURL+"/", http.FileServer(http.Dir(r.cfg.ArtifactsDir)))
		r.mux.Handle(r.cfg.ArtifactsBaseURL+"/", fs)
	}
}

// Handler returns the router wrapped with its middleware chain.
func (r *Router) Handler() http.Handler {
	return ErrorHandler(r.mux)
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
		return
	}
	status := "ok"
	code := http.StatusOK
	if err := r.store.Ping(); err != nil {
		log.Error().Err(err).Msg("Health check database ping failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status})
}

// pathParts splits the path after a prefix: "/api/reports/{id}/pdf" with
// prefix "/api/reports/" yields ["{id}", "pdf"].
func pathParts(path, prefix string) []string {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	if _, err := w.Write(pdf); err != nil {
		log.Error().Err(err).Msg("Failed to write PDF response")
	}
}
