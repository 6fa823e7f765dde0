package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mvdbosch/kapgains/internal/api/request"
	"github.com/mvdbosch/kapgains/internal/api/response"
	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/service"
	"github.com/mvdbosch/kapgains/internal/validation"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List returns the event stream in date order, optionally cut off at the
// end of a year.
//
// Endpoint: GET /api/events?year=2024
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	var events []model.Event
	var err error

	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		year, convErr := strconv.Atoi(yearParam)
		if convErr != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid year", convErr.Error())
			return
		}
		events, err = h.eventService.ListEventsUpTo(year)
	} else {
		events, err = h.eventService.ListEvents()
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// Get returns one event by ID.
//
// Endpoint: GET /api/events/{uuid}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	ev, err := h.eventService.GetEvent(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ev)
}

// Create stores one event.
//
// Endpoint: POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateCreateEvent(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	ev, err := h.eventService.CreateEvent(eventFromRequest(req))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ev)
}

// ImportResponse reports the outcome of a batch import.
type ImportResponse struct {
	Imported int `json:"imported"`

	// Skipped counts events whose broker transaction ID was already stored.
	Skipped int `json:"skipped"`
}

// Import stores a batch of events atomically: either all events pass
// validation and are stored, or none are.
//
// Endpoint: POST /api/events/import
func (h *EventHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req request.ImportEventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.Events) == 0 {
		response.RespondError(w, http.StatusBadRequest, "no events to import", "")
		return
	}

	events := make([]model.Event, 0, len(req.Events))
	for i, evReq := range req.Events {
		if err := validation.ValidateCreateEvent(evReq); err != nil {
			response.RespondError(w, http.StatusBadRequest,
				fmt.Sprintf("validation failed for event %d", i), err.Error())
			return
		}
		events = append(events, eventFromRequest(evReq))
	}

	stored, skipped, err := h.eventService.ImportEvents(events)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ImportResponse{Imported: len(stored), Skipped: skipped})
}

// Delete removes one event.
//
// Endpoint: DELETE /api/events/{uuid}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.eventService.DeleteEvent(chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func eventFromRequest(req request.CreateEventRequest) model.Event {
	// Values are already validated; parse errors cannot occur here.
	date, _ := time.Parse("2006-01-02", req.Date)
	return model.Event{
		TransactionID: req.TransactionID,
		AssetID:       req.AssetID,
		Date:          date.UTC(),
		Kind:          model.EventKind(req.Kind),
		Side:          model.TradeSide(req.Side),
		Quantity:      parseOrZero(req.Quantity),
		UnitPrice:     parseOrZero(req.UnitPrice),
		Amount:        parseOrZero(req.Amount),
		Currency:      req.Currency,
		Fees:          parseOrZero(req.Fees),
		Ratio:         parseOrZero(req.Ratio),
		CashPerShare:  parseOrZero(req.CashPerShare),
		Description:   req.Description,
	}
}
