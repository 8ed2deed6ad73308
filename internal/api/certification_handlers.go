package api

import (
	"net/http"

	"github.com/ironndt/certify/internal/models"
)

func (r *Router) handleCertifications(w http.ResponseWriter, req *http.Request) {
	parts := pathParts(req.URL.Path, "/api/certifications/")
	switch {
	case len(parts) == 1 && req.Method == http.MethodGet:
		r.getCertification(w, req, parts[0])
	case len(parts) == 2 && parts[1] == "items" && req.Method == http.MethodGet:
		r.certificationItems(w, req, parts[0])
	case len(parts) == 2 && parts[1] == "pdf" && req.Method == http.MethodGet:
		r.certificationPDF(w, req, parts[0])
	default:
		writeErrorResponse(w, http.StatusNotFound, "not_found", "Unknown certifications endpoint", nil)
	}
}

type certificationResponse struct {
	*models.Certification
	Items []models.CertificationItem `json:"items"`
	Files []models.CertificationFile `json:"files,omitempty"`
}

func (r *Router) getCertification(w http.ResponseWriter, req *http.Request, id string) {
	cert, err := r.store.Certification(req.Context(), id)
	if err != nil {
		r.writeError(w, err, "Failed to load certification")
		return
	}
	items, err := r.store.CertificationItems(req.Context(), id)
	if err != nil {
		r.writeError(w, err, "Failed to load certification items")
		return
	}
	files, err := r.store.CertificationFiles(req.Context(), id)
	if err != nil {
		r.writeError(w, err, "Failed to load certification files")
		return
	}
	writeJSON(w, http.StatusOK, certificationResponse{
		Certification: cert,
		Items:         items,
		Files:         files,
	})
}

func (r *Router) certificationItems(w http.ResponseWriter, req *http.Request, id string) {
	// Verify the certification exists so an unknown id is a 404, not an
	// empty list.
	if _, err := r.store.Certification(req.Context(), id); err != nil {
		r.writeError(w, err, "Failed to load certification")
		return
	}
	items, err := r.store.CertificationItems(req.Context(), id)
	if err != nil {
		r.writeError(w, err, "Failed to load certification items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (r *Router) certificationPDF(w http.ResponseWriter, req *http.Request, id string) {
	storeArtifact := req.URL.Query().Get("store") == "1"

	res, err := r.merger.Compile(req.Context(), id, storeArtifact)
	if err != nil {
		r.writeError(w, err, "Failed to compile certification")
		return
	}

	cert, err := r.store.Certification(req.Context(), id)
	if err != nil {
		r.writeError(w, err, "Failed to load certification")
		return
	}

	if res.File != nil {
		w.Header().Set("X-File-Url", res.File.URL)
	}
	writePDF(w, "cert-"+cert.Code+".pdf", res.PDF)
}
