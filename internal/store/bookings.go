package store

import (
	"sync"

	"github.com/renthub/laptop-bookings/internal/domain"
)

// Bookings is the in-memory booking collection.
type Bookings struct {
	mu       sync.RWMutex
	nextID   int64
	bookings []domain.Booking
}

func NewBookings() *Bookings {
	return &Bookings{nextID: 1}
}

func (s *Bookings) Add(b domain.Booking) domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.nextID
	s.nextID++
	s.bookings = append(s.bookings, b)
	return b
}

// GetOwned looks a booking up by ID scoped to its owner. Callers can never
// see or mutate another user's booking through this path.
func (s *Bookings) GetOwned(id, userID int64) (domain.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.bookings {
		if s.bookings[i].ID == id && s.bookings[i].UserID == userID {
			return s.bookings[i], true
		}
	}
	return domain.Booking{}, false
}

func (s *Bookings) Save(b domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.bookings {
		if s.bookings[i].ID == b.ID {
			s.bookings[i] = b
			return nil
		}
	}
	return domain.ErrNotFound
}

// ListByUser returns the caller's bookings, any status, stored order.
func (s *Bookings) ListByUser(userID int64) []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Booking
	for i := range s.bookings {
		if s.bookings[i].UserID == userID {
			out = append(out, s.bookings[i])
		}
	}
	return out
}

func (s *Bookings) Snapshot() []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out
}

func (s *Bookings) Load(snapshot []domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookings = make([]domain.Booking, len(snapshot))
	copy(s.bookings, snapshot)
	s.nextID = 1
	for _, b := range snapshot {
		if b.ID >= s.nextID {
			s.nextID = b.ID + 1
		}
	}
}
