package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/repository"
)

// EventService manages the broker event stream.
type EventService struct {
	repo *repository.EventRepository
}

func NewEventService(repo *repository.EventRepository) *EventService {
	return &EventService{repo: repo}
}

func (s *EventService) CreateEvent(ev model.Event) (model.Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if err := s.repo.Create(ev); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// ImportEvents stores a batch of already-validated events atomically and
// returns the stored events with their assigned IDs, plus the number of
// events skipped because their broker transaction ID was already stored.
func (s *EventService) ImportEvents(events []model.Event) ([]model.Event, int, error) {
	var txIDs []string
	for _, ev := range events {
		if ev.TransactionID != "" {
			txIDs = append(txIDs, ev.TransactionID)
		}
	}
	existing, err := s.repo.ExistingTransactionIDs(txIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperrors.ErrFailedToImportEvents, err)
	}

	fresh := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.TransactionID != "" && existing[ev.TransactionID] {
			continue
		}
		if ev.ID == "" {
			ev.ID = uuid.New().String()
		}
		fresh = append(fresh, ev)
	}
	skipped := len(events) - len(fresh)

	if len(fresh) > 0 {
		if err := s.repo.CreateBatch(fresh); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", apperrors.ErrFailedToImportEvents, err)
		}
	}
	return fresh, skipped, nil
}

func (s *EventService) GetEvent(id string) (model.Event, error) {
	return s.repo.GetByID(id)
}

func (s *EventService) ListEvents() ([]model.Event, error) {
	events, err := s.repo.List()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveEvents, err)
	}
	return events, nil
}

// ListEventsUpTo returns every event dated on or before the end of the
// given year.
func (s *EventService) ListEventsUpTo(year int) ([]model.Event, error) {
	events, err := s.repo.ListUpTo(year)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveEvents, err)
	}
	return events, nil
}

func (s *EventService) DeleteEvent(id string) error {
	return s.repo.Delete(id)
}
