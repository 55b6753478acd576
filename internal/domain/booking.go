package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID         int64         `json:"id"`
	LaptopID   int64         `json:"laptop_id"`
	UserID     int64         `json:"user_id"`
	StartDate  time.Time     `json:"start_date"`
	EndDate    time.Time     `json:"end_date"`
	Status     BookingStatus `json:"status"`
	TotalPrice float64       `json:"total_price"`
	CreatedAt  time.Time     `json:"created_at"`
}

type CreateBookingRequest struct {
	LaptopID  int64  `json:"laptop_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type UpdateBookingRequest struct {
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Status    *string `json:"status,omitempty"`
}

// InclusiveDays counts rental days between two dates, both endpoints
// included. A same-day rental is one day.
func InclusiveDays(start, end time.Time) int64 {
	days := int64(end.Sub(start)/(24*time.Hour)) + 1
	if days < 1 {
		days = 1
	}
	return days
}

// RentalPrice is daily price times the inclusive day count.
func RentalPrice(dailyPrice float64, start, end time.Time) float64 {
	return dailyPrice * float64(InclusiveDays(start, end))
}

// CanCancel reports whether the booking is still inside its cancellation
// window, measured from creation time.
func (b *Booking) CanCancel(now time.Time, window time.Duration) bool {
	return now.Sub(b.CreatedAt) <= window
}

// ParseDate accepts calendar dates and RFC3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD or RFC3339", s)
}
