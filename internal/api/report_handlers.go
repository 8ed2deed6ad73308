package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/ironndt/certify/internal/errors"
	"github.com/ironndt/certify/internal/metrics"
	"github.com/ironndt/certify/pkg/report"
)

func (r *Router) handleReports(w http.ResponseWriter, req *http.Request) {
	parts := pathParts(req.URL.Path, "/api/reports/")
	switch {
	case len(parts) == 1 && req.Method == http.MethodGet:
		r.getReport(w, req, parts[0])
	case len(parts) == 1 && req.Method == http.MethodPut:
		r.saveReport(w, req, parts[0])
	case len(parts) == 2 && parts[1] == "pdf" && req.Method == http.MethodGet:
		r.reportPDF(w, req, parts[0])
	default:
		writeErrorResponse(w, http.StatusNotFound, "not_found", "Unknown reports endpoint", nil)
	}
}

func (r *Router) getReport(w http.ResponseWriter, req *http.Request, id string) {
	data, err := r.store.ReportData(req.Context(), id)
	if err != nil {
		r.writeError(w, err, "Failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (r *Router) saveReport(w http.ResponseWriter, req *http.Request, id string) {
	data, err := r.store.ReportData(req.Context(), id)
	if err != nil {
		r.writeError(w, err, "Failed to load report")
		return
	}
	resolvedID := data.ID
	if err := json.NewDecoder(req.Body).Decode(data); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "validation", "Invalid report payload", nil)
		return
	}
	// The addressed row wins over whatever id the payload carries.
	data.ID = resolvedID

	if err := r.store.SaveReport(req.Context(), data); err != nil {
		r.writeError(w, err, "Failed to save report")
		return
	}
	saved, err := r.store.ReportData(req.Context(), resolvedID)
	if err != nil {
		r.writeError(w, err, "Failed to reload report")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (r *Router) reportPDF(w http.ResponseWriter, req *http.Request, id string) {
	view := req.URL.Query().Get("view")
	if view == "" {
		view = "full"
	}
	if view != "full" && view != "cover" {
		writeErrorResponse(w, http.StatusBadRequest, "validation", "view must be full or cover", nil)
		return
	}

	data, err := r.store.ReportData(req.Context(), id)
	if err != nil {
		r.writeError(w, err, "Failed to load report")
		return
	}

	pdf, err := report.Render(data, report.Options{
		CoverOnly: view == "cover",
		LogoPath:  r.cfg.LogoPath,
	})
	if err != nil {
		r.writeError(w, apperrors.New(apperrors.ErrorTypeRender, "render_report", id, err), "Failed to render report")
		return
	}
	metrics.DocumentsRendered.WithLabelValues(view).Inc()
	writePDF(w, "report-"+data.ReportNumber+".pdf", pdf)
}

func (r *Router) handleWorkOrders(w http.ResponseWriter, req *http.Request) {
	parts := pathParts(req.URL.Path, "/api/work-orders/")
	switch {
	case len(parts) == 2 && parts[1] == "pdf" && req.Method == http.MethodGet:
		r.workOrderPDF(w, req, parts[0])
	case len(parts) == 2 && parts[1] == "reports" && req.Method == http.MethodGet:
		r.workOrderReports(w, req, parts[0])
	default:
		writeErrorResponse(w, http.StatusNotFound, "not_found", "Unknown work-orders endpoint", nil)
	}
}

func (r *Router) workOrderPDF(w http.ResponseWriter, req *http.Request, id string) {
	pdf, err := r.merger.CompileWorkOrder(req.Context(), id)
	if err != nil {
		r.writeError(w, err, "Failed to compile work order")
		return
	}
	writePDF(w, "work-order-"+id+".pdf", pdf)
}

func (r *Router) workOrderReports(w http.ResponseWriter, req *http.Request, id string) {
	reports, err := r.store.ReportsByWorkOrder(req.Context(), id)
	if err != nil {
		r.writeError(w, err, "Failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// writeError maps a domain error onto the response envelope. Internal causes
// are logged, never leaked.
func (r *Router) writeError(w http.ResponseWriter, err error, genericMsg string) {
	status := apperrors.HTTPStatus(err)
	message := genericMsg
	if status == http.StatusInternalServerError {
		message = sanitizeErrorForClient(err, genericMsg)
	}
	writeErrorResponse(w, status, apperrors.Code(err), message, nil)
}
