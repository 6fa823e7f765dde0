package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/api/request"
	"github.com/mvdbosch/kapgains/internal/api/response"
	"github.com/mvdbosch/kapgains/internal/service"
)

// RateHandler handles exchange-rate HTTP requests
type RateHandler struct {
	fxService *service.FxRateService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(fxService *service.FxRateService) *RateHandler {
	return &RateHandler{fxService: fxService}
}

// ConvertResponse is the outcome of a conversion query.
type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Date      string          `json:"date"`
	AmountEUR decimal.Decimal `json:"amountEur"`
}

// Convert converts an amount of foreign currency to EUR at the ECB rate.
//
// Endpoint: GET /api/rates/convert?amount=100&currency=USD&date=2024-03-01
func (h *RateHandler) Convert(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		response.RespondError(w, http.StatusBadRequest, "currency parameter is required", "")
		return
	}
	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	converted, err := h.fxService.ConvertToEUR(amount, currency, date)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ConvertResponse{
		Amount:    amount,
		Currency:  currency,
		Date:      date.Format("2006-01-02"),
		AmountEUR: converted,
	})
}

// Backfill fetches and stores daily rates for a set of currencies over a
// date range.
//
// Endpoint: POST /api/rates/backfill
func (h *RateHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	var req request.BackfillRatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.Currencies) == 0 {
		response.RespondError(w, http.StatusBadRequest, "currencies are required", "")
		return
	}
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid from date", err.Error())
		return
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid to date", err.Error())
		return
	}
	if to.Before(from) {
		response.RespondError(w, http.StatusBadRequest, "invalid date range", "to precedes from")
		return
	}

	if err := h.fxService.Backfill(r.Context(), req.Currencies, from, to); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Refresh fetches today's rate for every currency already in the store.
// The scheduler runs the same operation daily; this endpoint triggers it on
// demand.
//
// Endpoint: POST /api/rates/refresh
func (h *RateHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.fxService.RefreshLatest(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
