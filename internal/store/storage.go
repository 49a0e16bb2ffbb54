package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("resource already exists")
	ErrDateTaken       = errors.New("this date is already booked")
	ErrAlreadyReviewed = errors.New("you have already reviewed this venue")
	ErrDuplicateEmail  = errors.New("a user with that email already exists")

	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users interface {
		Create(context.Context, *User) error
		GetByID(context.Context, int64) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
		Update(ctx context.Context, userID int64, updates map[string]interface{}) error
		SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error
		GetRefreshToken(ctx context.Context, userID int64) (string, error)
		DeleteRefreshToken(ctx context.Context, userID int64) error
		UpdateResetToken(ctx context.Context, email, resetToken string, expires time.Time) error
		GetByResetToken(ctx context.Context, resetToken string) (*User, error)
		UpdatePassword(ctx context.Context, userID int64, hash []byte) error
	}
	Venues interface {
		Create(context.Context, *Venue) error
		GetByID(context.Context, int64) (*Venue, error)
		List(context.Context, VenueFilter) ([]Venue, error)
		Update(ctx context.Context, venueID int64, updates map[string]interface{}) error
		UpdateStatus(ctx context.Context, venueID int64, status string) error
		Delete(ctx context.Context, venueID int64) error
	}
	Bookings interface {
		Create(context.Context, *Booking) error
		GetByID(context.Context, int64) (*Booking, error)
		GetReservedDates(ctx context.Context, venueID int64) ([]time.Time, error)
		UpdateStatus(ctx context.Context, bookingID int64, from, to string) error
		GetByCustomer(ctx context.Context, customerID int64) ([]Booking, error)
		GetByVenue(ctx context.Context, venueID int64) ([]Booking, error)
		GetAll(context.Context) ([]Booking, error)
		CompletePastBookings(context.Context) (int64, error)
	}
	Reviews interface {
		Create(context.Context, *Review) error
		GetByID(context.Context, int64) (*Review, error)
		GetByVenue(ctx context.Context, venueID int64) ([]Review, error)
		Update(ctx context.Context, review *Review) error
		Delete(ctx context.Context, reviewID int64) error
	}
	Inquiries interface {
		Create(context.Context, *Inquiry) error
		GetByID(context.Context, int64) (*Inquiry, error)
		GetByVenue(ctx context.Context, venueID int64) ([]Inquiry, error)
		UpdateStatus(ctx context.Context, inquiryID int64, status string) error
	}
	Contacts interface {
		Create(context.Context, *ContactMessage) error
		GetAll(context.Context) ([]ContactMessage, error)
	}
	PushTokens interface {
		AddOrUpdate(ctx context.Context, userID int64, token string) error
		Remove(ctx context.Context, userID int64, token string) error
		GetByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]string, error)
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Users:      &UsersStore{db},
		Venues:     &VenuesStore{db},
		Bookings:   &BookingsStore{db},
		Reviews:    &ReviewsStore{db},
		Inquiries:  &InquiriesStore{db},
		Contacts:   &ContactsStore{db},
		PushTokens: &PushTokensStore{db},
	}
}
