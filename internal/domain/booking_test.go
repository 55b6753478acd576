package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestInclusiveDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int64
	}{
		{"same day", "2024-01-01", "2024-01-01", 1},
		{"two days", "2024-01-01", "2024-01-02", 2},
		{"three days", "2024-01-01", "2024-01-03", 3},
		{"across month", "2024-01-30", "2024-02-02", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InclusiveDays(date(tt.start), date(tt.end)))
		})
	}
}

func TestRentalPrice(t *testing.T) {
	// daily 20, Jan 1 through Jan 3 inclusive is 3 days
	assert.Equal(t, 60.0, RentalPrice(20, date("2024-01-01"), date("2024-01-03")))
	assert.Equal(t, 20.0, RentalPrice(20, date("2024-01-01"), date("2024-01-01")))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())

	d, err = ParseDate("2024-01-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	_, err = ParseDate("15/01/2024")
	assert.Error(t, err)
}

func TestCanCancelWindow(t *testing.T) {
	created := time.Now()
	b := &Booking{CreatedAt: created}

	assert.True(t, b.CanCancel(created.Add(23*time.Hour), 24*time.Hour))
	assert.True(t, b.CanCancel(created.Add(24*time.Hour), 24*time.Hour))
	assert.False(t, b.CanCancel(created.Add(24*time.Hour+time.Minute), 24*time.Hour))
}
