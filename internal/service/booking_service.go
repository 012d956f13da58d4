package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/apperrors"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"
	"shareit/internal/validation"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo      domain.Repository
	eventBus  domain.EventPublisher
	validator *validation.Validator
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, v *validation.Validator, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:      repo,
		eventBus:  eventBus,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *BookingService) Create(ctx context.Context, bookerID int64, dto models.BookingCreate) (*models.BookingView, error) {
	if err := s.validator.Booking(dto, s.now()); err != nil {
		return nil, err
	}

	item, err := s.repo.GetItemByID(ctx, dto.ItemID)
	if err != nil {
		return nil, notFoundOr(err, "item %d not found", dto.ItemID)
	}
	if !item.Available {
		return nil, apperrors.Validation("item %d is not available", item.ID)
	}
	if item.OwnerID == bookerID {
		return nil, apperrors.Validation("owner cannot book their own item")
	}

	booker, err := s.repo.GetUserByID(ctx, bookerID)
	if err != nil {
		return nil, notFoundOr(err, "user %d not found", bookerID)
	}

	booking := &models.Booking{
		Start:    dto.Start,
		End:      dto.End,
		ItemID:   item.ID,
		BookerID: bookerID,
		Status:   models.StatusWaiting,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.publishEvent(events.EventBookingCreated, booking, item, bookerID)
	return viewOf(booking, item, booker), nil
}

// Approve moves a WAITING booking to APPROVED or REJECTED. Only the item owner may decide, once.
func (s *BookingService) Approve(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.BookingView, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err, "booking %d not found", bookingID)
	}

	item, err := s.repo.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, notFoundOr(err, "item %d not found", booking.ItemID)
	}
	if item.OwnerID != ownerID {
		return nil, apperrors.NotFound("booking %d not found for owner %d", bookingID, ownerID)
	}
	if booking.Status != models.StatusWaiting {
		return nil, apperrors.Validation("booking %d already finalized as %s", bookingID, booking.Status)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	err = s.repo.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, status)
	if err != nil {
		if errors.Is(err, database.ErrConcurrentModification) {
			return nil, apperrors.Validation("booking %d already finalized", bookingID)
		}
		return nil, fmt.Errorf("update booking %d: %w", bookingID, err)
	}
	booking.Status = status
	booking.Version++

	booker, err := s.repo.GetUserByID(ctx, booking.BookerID)
	if err != nil {
		return nil, notFoundOr(err, "user %d not found", booking.BookerID)
	}

	s.publishEvent(eventType, booking, item, ownerID)
	return viewOf(booking, item, booker), nil
}

// Get is visible to the booker and to the item owner only.
func (s *BookingService) Get(ctx context.Context, userID, bookingID int64) (*models.BookingView, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err, "booking %d not found", bookingID)
	}

	item, err := s.repo.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, notFoundOr(err, "item %d not found", booking.ItemID)
	}
	if userID != booking.BookerID && userID != item.OwnerID {
		return nil, apperrors.NotFound("booking %d not found for user %d", bookingID, userID)
	}

	booker, err := s.repo.GetUserByID(ctx, booking.BookerID)
	if err != nil {
		return nil, notFoundOr(err, "user %d not found", booking.BookerID)
	}
	return viewOf(booking, item, booker), nil
}

func (s *BookingService) ListForBooker(ctx context.Context, userID int64, state models.State, page *models.Page) ([]*models.BookingView, error) {
	if err := requireUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	return s.repo.GetBookingsByBooker(ctx, userID, state, s.now(), page)
}

func (s *BookingService) ListForOwner(ctx context.Context, userID int64, state models.State, page *models.Page) ([]*models.BookingView, error) {
	if err := requireUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	return s.repo.GetBookingsByOwner(ctx, userID, state, s.now(), page)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, item *models.Item, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    item.ID,
		OwnerID:   item.OwnerID,
		BookerID:  booking.BookerID,
		Status:    string(booking.Status),
		Start:     booking.Start.Time,
		End:       booking.End.Time,
		ActorID:   actorID,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Int64("booking_id", booking.ID).Msg("failed to publish booking event")
	}
}

func viewOf(booking *models.Booking, item *models.Item, booker *models.User) *models.BookingView {
	return &models.BookingView{
		ID:     booking.ID,
		Start:  booking.Start,
		End:    booking.End,
		Status: booking.Status,
		Item:   *item,
		Booker: *booker,
	}
}
