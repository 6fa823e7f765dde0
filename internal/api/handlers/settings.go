package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mvdbosch/kapgains/internal/api/request"
	"github.com/mvdbosch/kapgains/internal/api/response"
	"github.com/mvdbosch/kapgains/internal/service"
)

// SettingsHandler handles settings HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetBroker returns the broker connection state without the token value.
//
// Endpoint: GET /api/settings/broker
func (h *SettingsHandler) GetBroker(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settingsService.GetBrokerConfig()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// SetBroker stores the broker flex-query credentials. The token is sealed
// before it reaches the database.
//
// Endpoint: PUT /api/settings/broker
func (h *SettingsHandler) SetBroker(w http.ResponseWriter, r *http.Request) {
	var req request.SetBrokerConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.FlexQueryID == "" || req.Token == "" {
		response.RespondError(w, http.StatusBadRequest, "flexQueryId and token are required", "")
		return
	}

	var expiresAt *time.Time
	if req.TokenExpiresAt != "" {
		t, err := time.Parse("2006-01-02", req.TokenExpiresAt)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid tokenExpiresAt", err.Error())
			return
		}
		expiresAt = &t
	}

	if err := h.settingsService.SetBrokerConfig(req.FlexQueryID, req.Token, expiresAt); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
