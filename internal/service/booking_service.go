package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/renthub/laptop-bookings/internal/domain"
	"github.com/renthub/laptop-bookings/internal/persist"
	"github.com/renthub/laptop-bookings/internal/store"
	"github.com/renthub/laptop-bookings/pkg/events"
	"github.com/renthub/laptop-bookings/pkg/logger"
	"github.com/renthub/laptop-bookings/pkg/metrics"
)

type BookingService interface {
	Create(ctx context.Context, userID int64, req *domain.CreateBookingRequest) (*domain.Booking, error)
	Cancel(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
	Update(ctx context.Context, userID, bookingID int64, req *domain.UpdateBookingRequest) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Booking, error)
}

type bookingService struct {
	// mu serializes booking transitions. Without it two concurrent creates
	// could both observe available == true and double-book one laptop.
	mu sync.Mutex

	bookings *store.Bookings
	laptops  *store.Laptops
	gateway  persist.Gateway
	eventBus events.Publisher

	cancelWindow time.Duration
	now          func() time.Time
}

func NewBookingService(
	bookings *store.Bookings,
	laptops *store.Laptops,
	gateway persist.Gateway,
	eventBus events.Publisher,
	cancelWindow time.Duration,
) BookingService {
	return &bookingService{
		bookings:     bookings,
		laptops:      laptops,
		gateway:      gateway,
		eventBus:     eventBus,
		cancelWindow: cancelWindow,
		now:          time.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, userID int64, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, err)
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end_date before start_date", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	laptop, ok := s.laptops.Get(req.LaptopID)
	if !ok || !laptop.Available {
		return nil, fmt.Errorf("%w: laptop not available", domain.ErrConflict)
	}

	booking := s.bookings.Add(domain.Booking{
		LaptopID:   laptop.ID,
		UserID:     userID,
		StartDate:  start,
		EndDate:    end,
		Status:     domain.BookingConfirmed,
		TotalPrice: domain.RentalPrice(laptop.DailyPrice, start, end),
		CreatedAt:  s.now(),
	})

	if err := s.laptops.SetAvailable(laptop.ID, false); err != nil {
		return nil, fmt.Errorf("failed to reserve laptop: %w", err)
	}

	// Bookings and inventory change as one unit. Either flush failing means
	// the operation failed; no success response goes out.
	if err := flush(ctx, s.gateway, persist.CollectionBookings, s.bookings.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to persist bookings: %w", err)
	}
	if err := flush(ctx, s.gateway, persist.CollectionLaptops, s.laptops.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to persist laptops: %w", err)
	}

	metrics.BookingsCreatedTotal.Inc()

	event := events.BookingCreatedEvent{
		BookingID:  booking.ID,
		LaptopID:   booking.LaptopID,
		UserID:     booking.UserID,
		StartDate:  booking.StartDate,
		EndDate:    booking.EndDate,
		TotalPrice: booking.TotalPrice,
		CreatedAt:  booking.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.BookingCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	return &booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings.GetOwned(bookingID, userID)
	if !ok {
		return nil, fmt.Errorf("%w: booking not found", domain.ErrNotFound)
	}

	// A cancelled booking already released its laptop; cancelling again
	// would free a device someone else may hold.
	if booking.Status == domain.BookingCancelled {
		return nil, fmt.Errorf("%w: booking already cancelled", domain.ErrConflict)
	}

	if !booking.CanCancel(s.now(), s.cancelWindow) {
		return nil, fmt.Errorf("%w: booking cannot be cancelled after %s", domain.ErrForbidden, s.cancelWindow)
	}

	booking.Status = domain.BookingCancelled
	if err := s.bookings.Save(booking); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	// The laptop may have been removed by an admin since booking.
	if _, ok := s.laptops.Get(booking.LaptopID); ok {
		if err := s.laptops.SetAvailable(booking.LaptopID, true); err != nil {
			return nil, fmt.Errorf("failed to release laptop: %w", err)
		}
	}

	if err := flush(ctx, s.gateway, persist.CollectionBookings, s.bookings.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to persist bookings: %w", err)
	}
	if err := flush(ctx, s.gateway, persist.CollectionLaptops, s.laptops.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to persist laptops: %w", err)
	}

	metrics.BookingsCancelledTotal.Inc()

	event := events.BookingCancelledEvent{
		BookingID:   booking.ID,
		LaptopID:    booking.LaptopID,
		UserID:      booking.UserID,
		CancelledAt: s.now(),
	}
	if err := s.eventBus.Publish(ctx, events.BookingCancelled, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking cancelled event", "error", err, "booking_id", booking.ID)
	}

	return &booking, nil
}

func (s *bookingService) Update(ctx context.Context, userID, bookingID int64, req *domain.UpdateBookingRequest) (*domain.Booking, error) {
	// Status is not writable here. The cancel transition is the only way
	// out of confirmed, and it enforces the cancellation window.
	if req.Status != nil {
		return nil, fmt.Errorf("%w: status cannot be changed through update; use the cancel endpoint", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings.GetOwned(bookingID, userID)
	if !ok {
		return nil, fmt.Errorf("%w: booking not found", domain.ErrNotFound)
	}
	if booking.Status == domain.BookingCancelled {
		return nil, fmt.Errorf("%w: booking already cancelled", domain.ErrConflict)
	}

	var changes []string
	if req.StartDate != nil {
		start, err := domain.ParseDate(*req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, err)
		}
		booking.StartDate = start
		changes = append(changes, "start_date")
	}
	if req.EndDate != nil {
		end, err := domain.ParseDate(*req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, err)
		}
		booking.EndDate = end
		changes = append(changes, "end_date")
	}

	if booking.EndDate.Before(booking.StartDate) {
		return nil, fmt.Errorf("%w: end_date before start_date", domain.ErrInvalidRequest)
	}

	// Reprice against the current daily rate. If the laptop was removed
	// from inventory the stored price stands.
	if laptop, ok := s.laptops.Get(booking.LaptopID); ok {
		booking.TotalPrice = domain.RentalPrice(laptop.DailyPrice, booking.StartDate, booking.EndDate)
	}

	if err := s.bookings.Save(booking); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	if err := flush(ctx, s.gateway, persist.CollectionBookings, s.bookings.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to persist bookings: %w", err)
	}

	if len(changes) > 0 {
		event := events.BookingUpdatedEvent{
			BookingID:  booking.ID,
			UserID:     booking.UserID,
			Changes:    changes,
			TotalPrice: booking.TotalPrice,
			UpdatedAt:  s.now(),
		}
		if err := s.eventBus.Publish(ctx, events.BookingUpdated, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish booking updated event", "error", err, "booking_id", booking.ID)
		}
	}

	return &booking, nil
}

func (s *bookingService) ListForUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.bookings.ListByUser(userID), nil
}
