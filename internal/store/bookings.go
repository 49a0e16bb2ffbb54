package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

var ErrInvalidTransition = errors.New("invalid booking status transition")

// bookingTransitions is the allowed edge set of the booking state machine.
// cancelled and completed are terminal.
var bookingTransitions = map[string][]string{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// ValidTransition reports whether a booking may move from one status to another.
func ValidTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking represents a reservation of a venue for a single event date.
// customer_name, amount, phone and email are point-in-time snapshots taken at
// creation and never refreshed from the referenced rows.
type Booking struct {
	ID           int64     `json:"id"`
	Reference    string    `json:"reference"`
	VenueID      int64     `json:"venue_id"`
	CustomerID   int64     `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	EventDate    time.Time `json:"event_date"`
	EventType    string    `json:"event_type"`
	GuestCount   int       `json:"guest_count"`
	Status       string    `json:"status"`
	Amount       int64     `json:"amount"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Message      *string   `json:"message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Joined fields
	VenueName    string `json:"venue_name,omitempty"`
	VenueAddress string `json:"venue_address,omitempty"`
}

type BookingsStore struct {
	db *pgxpool.Pool
}

// Create inserts a booking with status pending. The partial unique index
// bookings_active_slot_idx guarantees at most one pending/confirmed booking
// per (venue_id, event_date); a violation surfaces as ErrDateTaken, so two
// concurrent requests for the same slot cannot both succeed.
func (s *BookingsStore) Create(ctx context.Context, booking *Booking) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        INSERT INTO bookings
          (reference, venue_id, customer_id, customer_name, event_date,
           event_type, guest_count, status, amount, phone, email, message)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at, updated_at
    `
	err := s.db.QueryRow(ctx, query,
		booking.Reference,
		booking.VenueID,
		booking.CustomerID,
		booking.CustomerName,
		booking.EventDate,
		booking.EventType,
		booking.GuestCount,
		BookingPending,
		booking.Amount,
		booking.Phone,
		booking.Email,
		booking.Message,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDateTaken
		}
		return err
	}
	booking.Status = BookingPending
	return nil
}

func (s *BookingsStore) GetByID(ctx context.Context, bookingID int64) (*Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT b.id, b.reference, b.venue_id, b.customer_id, b.customer_name,
               b.event_date, b.event_type, b.guest_count, b.status, b.amount,
               b.phone, b.email, b.message, b.created_at, b.updated_at,
               v.name, v.address
        FROM bookings b
        JOIN venues v ON v.id = b.venue_id
        WHERE b.id = $1
    `
	var b Booking
	err := s.db.QueryRow(ctx, query, bookingID).Scan(
		&b.ID, &b.Reference, &b.VenueID, &b.CustomerID, &b.CustomerName,
		&b.EventDate, &b.EventType, &b.GuestCount, &b.Status, &b.Amount,
		&b.Phone, &b.Email, &b.Message, &b.CreatedAt, &b.UpdatedAt,
		&b.VenueName, &b.VenueAddress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// GetReservedDates returns the future event dates a venue is unavailable on.
// Only pending and confirmed bookings block a date; cancelling or completing
// a booking frees its slot for rebooking.
func (s *BookingsStore) GetReservedDates(ctx context.Context, venueID int64) ([]time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT event_date
        FROM bookings
        WHERE venue_id = $1
          AND status IN ($2, $3)
          AND event_date >= CURRENT_DATE
        ORDER BY event_date
    `
	rows, err := s.db.Query(ctx, query, venueID, BookingPending, BookingConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// UpdateStatus moves a booking from one status to another with a
// compare-and-swap on the current status, so two concurrent transitions on
// the same booking cannot both apply. Zero rows affected means the booking
// was gone or its status changed underneath the caller.
func (s *BookingsStore) UpdateStatus(ctx context.Context, bookingID int64, from, to string) error {
	if !ValidTransition(from, to) {
		return ErrInvalidTransition
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        UPDATE bookings
        SET status = $1, updated_at = NOW()
        WHERE id = $2 AND status = $3
    `
	res, err := s.db.Exec(ctx, query, to, bookingID, from)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (s *BookingsStore) GetByCustomer(ctx context.Context, customerID int64) ([]Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT b.id, b.reference, b.venue_id, b.customer_id, b.customer_name,
               b.event_date, b.event_type, b.guest_count, b.status, b.amount,
               b.phone, b.email, b.message, b.created_at, b.updated_at,
               v.name, v.address
        FROM bookings b
        JOIN venues v ON v.id = b.venue_id
        WHERE b.customer_id = $1
        ORDER BY b.created_at DESC
    `
	return s.queryBookings(ctx, query, customerID)
}

func (s *BookingsStore) GetByVenue(ctx context.Context, venueID int64) ([]Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT b.id, b.reference, b.venue_id, b.customer_id, b.customer_name,
               b.event_date, b.event_type, b.guest_count, b.status, b.amount,
               b.phone, b.email, b.message, b.created_at, b.updated_at,
               v.name, v.address
        FROM bookings b
        JOIN venues v ON v.id = b.venue_id
        WHERE b.venue_id = $1
        ORDER BY b.event_date
    `
	return s.queryBookings(ctx, query, venueID)
}

func (s *BookingsStore) GetAll(ctx context.Context) ([]Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT b.id, b.reference, b.venue_id, b.customer_id, b.customer_name,
               b.event_date, b.event_type, b.guest_count, b.status, b.amount,
               b.phone, b.email, b.message, b.created_at, b.updated_at,
               v.name, v.address
        FROM bookings b
        JOIN venues v ON v.id = b.venue_id
        ORDER BY b.created_at DESC
    `
	return s.queryBookings(ctx, query)
}

// CompletePastBookings marks confirmed bookings whose event date has passed
// as completed. Run periodically from a background ticker.
func (s *BookingsStore) CompletePastBookings(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, `
        UPDATE bookings
        SET status = $1, updated_at = NOW()
        WHERE status = $2 AND event_date < CURRENT_DATE
    `, BookingCompleted, BookingConfirmed)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (s *BookingsStore) queryBookings(ctx context.Context, query string, args ...any) ([]Booking, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.Reference, &b.VenueID, &b.CustomerID, &b.CustomerName,
			&b.EventDate, &b.EventType, &b.GuestCount, &b.Status, &b.Amount,
			&b.Phone, &b.Email, &b.Message, &b.CreatedAt, &b.UpdatedAt,
			&b.VenueName, &b.VenueAddress,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
