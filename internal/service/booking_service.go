package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the booking state machine and the role-scoped,
// time-filtered listing queries.
type BookingService struct {
	repo         domain.Repository
	clock        domain.Clock
	eventBus     domain.EventPublisher
	exportWorker domain.ExportWorker
	logger       *zerolog.Logger
}

func NewBookingService(repo domain.Repository, clock domain.Clock, eventBus domain.EventPublisher,
	exportWorker domain.ExportWorker, logger *zerolog.Logger) *BookingService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &BookingService{
		repo:         repo,
		clock:        clock,
		eventBus:     eventBus,
		exportWorker: exportWorker,
		logger:       logger,
	}
}

// Create books an item for [start, end). The owner of an item can never
// book it; that case reads as not-found on purpose.
func (s *BookingService) Create(ctx context.Context, itemID, bookerID int64, start, end time.Time) (*models.Booking, error) {
	if _, err := s.repo.GetUser(ctx, bookerID); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("user %d", bookerID)
		}
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("item %d", itemID)
		}
		return nil, err
	}
	if IsOwner(bookerID, item) {
		return nil, notFoundf("item %d", itemID)
	}
	if !item.Available {
		return nil, badRequestf("item %d is not available", itemID)
	}
	if !end.After(start) {
		return nil, badRequestf("end must be after start")
	}

	booking := &models.Booking{
		Start:    start,
		End:      end,
		ItemID:   itemID,
		ItemName: item.Name,
		BookerID: bookerID,
		Status:   models.StatusWaiting,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking, bookerID)
	s.enqueueExport(ctx, booking, "upsert")

	return booking, nil
}

// Approve moves a WAITING booking to APPROVED or REJECTED. The transition
// is one-shot: retries of an already-decided booking fail with a bad
// request, and the WAITING precondition is re-verified at write time.
func (s *BookingService) Approve(ctx context.Context, bookingID, actorID int64, approved bool) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("booking %d", bookingID)
		}
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if !CanApprove(actorID, item) {
		return nil, notFoundf("booking %d for user %d", bookingID, actorID)
	}
	if booking.Status != models.StatusWaiting {
		return nil, badRequestf("booking %d is already decided", bookingID)
	}

	status := models.StatusRejected
	if approved {
		status = models.StatusApproved
	}
	if err := s.repo.DecideBookingIfWaiting(ctx, bookingID, status); err != nil {
		if errors.Is(err, database.ErrAlreadyDecided) {
			return nil, badRequestf("booking %d is already decided", bookingID)
		}
		return nil, err
	}
	booking.Status = status

	metrics.IncBookingDecided(status)
	s.publishEvent(events.EventBookingDecided, booking, actorID)
	s.enqueueExport(ctx, booking, "update_status")

	return booking, nil
}

// GetByID returns a booking to its booker or the item owner; anyone else
// gets not-found.
func (s *BookingService) GetByID(ctx context.Context, bookingID, viewerID int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("booking %d", bookingID)
		}
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if !CanView(viewerID, booking, item) {
		return nil, notFoundf("booking %d for user %d", bookingID, viewerID)
	}
	return booking, nil
}

// List returns the page of bookings where userID plays role, filtered by
// state against the clock's now and ordered by start descending.
func (s *BookingService) List(ctx context.Context, role models.Role, userID int64,
	state models.BookingState, from, size int) ([]*models.Booking, error) {

	if _, err := models.ParseBookingState(string(state)); err != nil {
		return nil, badRequestf("%v", err)
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, notFoundf("user %d", userID)
		}
		return nil, err
	}

	bookings, err := s.repo.GetBookingsByParty(ctx, role, userID, state, s.clock.Now(), from, size)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		ItemName:  booking.ItemName,
		BookerID:  booking.BookerID,
		Status:    booking.Status,
		Start:     booking.Start,
		End:       booking.End,
		ActorID:   actorID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueExport(ctx context.Context, booking *models.Booking, taskType string) {
	if s.exportWorker == nil {
		return
	}
	if err := s.exportWorker.EnqueueTask(ctx, taskType, booking); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("export enqueue error")
	}
}
