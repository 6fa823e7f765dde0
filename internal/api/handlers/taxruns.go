package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mvdbosch/kapgains/internal/api/request"
	"github.com/mvdbosch/kapgains/internal/api/response"
	"github.com/mvdbosch/kapgains/internal/service"
)

// TaxRunHandler handles tax-run HTTP requests
type TaxRunHandler struct {
	taxRunService *service.TaxRunService
}

// NewTaxRunHandler creates a new TaxRunHandler
func NewTaxRunHandler(taxRunService *service.TaxRunService) *TaxRunHandler {
	return &TaxRunHandler{taxRunService: taxRunService}
}

// Run executes the engine for a tax year and returns the full report.
//
// Endpoint: POST /api/taxruns
func (h *TaxRunHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req request.RunTaxYearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Year < 1900 || req.Year > 9999 {
		response.RespondError(w, http.StatusBadRequest, "invalid tax year", req.Year)
		return
	}

	report, err := h.taxRunService.RunTaxYear(req.Year)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, report)
}

// List returns all past runs, newest first.
//
// Endpoint: GET /api/taxruns
func (h *TaxRunHandler) List(w http.ResponseWriter, r *http.Request) {
	runs, err := h.taxRunService.ListRuns()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, runs)
}

// Get returns one run's metadata.
//
// Endpoint: GET /api/taxruns/{uuid}
func (h *TaxRunHandler) Get(w http.ResponseWriter, r *http.Request) {
	run, err := h.taxRunService.GetRun(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

// Report returns the stored report of a past run: metadata, offsetting
// summary and every realized record.
//
// Endpoint: GET /api/taxruns/{uuid}/report
func (h *TaxRunHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.taxRunService.GetReport(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Delete removes a run and its stored results.
//
// Endpoint: DELETE /api/taxruns/{uuid}
func (h *TaxRunHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.taxRunService.DeleteRun(chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
