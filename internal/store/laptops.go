package store

import (
	"sync"

	"github.com/renthub/laptop-bookings/internal/domain"
)

// Laptops is the in-memory device inventory. The availability flag is only
// flipped through SetAvailable, which the booking engine owns; request
// payloads never reach it directly.
type Laptops struct {
	mu      sync.RWMutex
	nextID  int64
	laptops []domain.Laptop
}

func NewLaptops() *Laptops {
	return &Laptops{nextID: 1}
}

// Add appends a laptop, assigning the next ID. New devices start available.
func (s *Laptops) Add(l domain.Laptop) domain.Laptop {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.ID = s.nextID
	l.Available = true
	s.nextID++
	s.laptops = append(s.laptops, l)
	return l
}

func (s *Laptops) Get(id int64) (domain.Laptop, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.laptops {
		if s.laptops[i].ID == id {
			return s.laptops[i], true
		}
	}
	return domain.Laptop{}, false
}

// SetAvailable flips the availability flag. Reserved for the booking engine.
func (s *Laptops) SetAvailable(id int64, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.laptops {
		if s.laptops[i].ID == id {
			s.laptops[i].Available = available
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Laptops) Remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.laptops {
		if s.laptops[i].ID == id {
			s.laptops = append(s.laptops[:i], s.laptops[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Laptops) List() []domain.Laptop {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Laptop, len(s.laptops))
	copy(out, s.laptops)
	return out
}

func (s *Laptops) Snapshot() []domain.Laptop {
	return s.List()
}

func (s *Laptops) Load(snapshot []domain.Laptop) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.laptops = make([]domain.Laptop, len(snapshot))
	copy(s.laptops, snapshot)
	s.nextID = 1
	for _, l := range snapshot {
		if l.ID >= s.nextID {
			s.nextID = l.ID + 1
		}
	}
}
