package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/api/response"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// respondServiceError maps known sentinel errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrAssetNotFound),
		errors.Is(err, apperrors.ErrEventNotFound),
		errors.Is(err, apperrors.ErrTaxRunNotFound),
		errors.Is(err, apperrors.ErrExchangeRateNotFound):
		response.RespondError(w, http.StatusNotFound, "resource not found", err.Error())
	case errors.Is(err, apperrors.ErrInsufficientLots),
		errors.Is(err, apperrors.ErrUnresolvableAsset),
		errors.Is(err, apperrors.ErrSeedingFailed),
		errors.Is(err, apperrors.ErrInvalidTaxYear):
		response.RespondError(w, http.StatusUnprocessableEntity, "tax run failed", err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}
