package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending can be confirmed", BookingPending, BookingConfirmed, true},
		{"pending can be cancelled", BookingPending, BookingCancelled, true},
		{"pending cannot complete", BookingPending, BookingCompleted, false},
		{"confirmed can complete", BookingConfirmed, BookingCompleted, true},
		{"confirmed can be cancelled", BookingConfirmed, BookingCancelled, true},
		{"confirmed cannot go back to pending", BookingConfirmed, BookingPending, false},
		{"cancelled is terminal", BookingCancelled, BookingPending, false},
		{"cancelled cannot be confirmed", BookingCancelled, BookingConfirmed, false},
		{"completed is terminal", BookingCompleted, BookingCancelled, false},
		{"no self transition", BookingPending, BookingPending, false},
		{"unknown status has no edges", "rejected", BookingConfirmed, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, ValidTransition(tc.from, tc.to))
		})
	}
}
