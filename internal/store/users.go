package store

import (
	"strings"
	"sync"

	"github.com/renthub/laptop-bookings/internal/domain"
)

// Users is the in-memory system of record for user identities. The
// persistence gateway mirrors it after every mutation; it never reads
// back except at startup.
type Users struct {
	mu     sync.RWMutex
	nextID int64
	users  []domain.User
}

func NewUsers() *Users {
	return &Users{nextID: 1}
}

// Create appends a user, assigning the next ID. Fails with
// domain.ErrConflict when the email is already registered.
func (s *Users) Create(u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, u.Email) {
			return domain.User{}, domain.ErrConflict
		}
	}

	u.ID = s.nextID
	s.nextID++
	s.users = append(s.users, u)
	return u, nil
}

func (s *Users) FindByID(id int64) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].ID == id {
			return s.users[i], true
		}
	}
	return domain.User{}, false
}

func (s *Users) FindByEmail(email string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			return s.users[i], true
		}
	}
	return domain.User{}, false
}

// Save replaces the stored record with the same ID.
func (s *Users) Save(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == u.ID {
			s.users[i] = u
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Users) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// List returns a copy of the collection in stored order.
func (s *Users) List() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out
}

// Snapshot renders the collection for a gateway flush, credential hashes
// included.
func (s *Users) Snapshot() []domain.PersistedUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PersistedUser, len(s.users))
	for i := range s.users {
		out[i] = s.users[i].ToPersisted()
	}
	return out
}

// Load replaces the collection from a startup snapshot.
func (s *Users) Load(snapshot []domain.PersistedUser) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make([]domain.User, len(snapshot))
	s.nextID = 1
	for i, p := range snapshot {
		s.users[i] = p.ToUser()
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
}
