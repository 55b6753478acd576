package persist

import (
	"context"

	"github.com/renthub/laptop-bookings/internal/domain"
)

// Collection names, one durable snapshot per collection.
const (
	CollectionUsers    = "users"
	CollectionLaptops  = "laptops"
	CollectionBookings = "bookings"
)

// Snapshot is the full durable state loaded at startup.
type Snapshot struct {
	Users    []domain.PersistedUser
	Laptops  []domain.Laptop
	Bookings []domain.Booking
}

// Gateway mirrors the in-memory collections into durable storage. Save
// overwrites the whole collection synchronously; the triggering operation
// must not report success if the write fails. LoadAll runs once at process
// start and is fatal on error.
type Gateway interface {
	Save(ctx context.Context, collection string, v any) error
	LoadAll(ctx context.Context) (*Snapshot, error)
	Close()
}
