package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	InquiryNew       = "new"
	InquiryResponded = "responded"
)

// Inquiry is a prospective customer's question about a venue.
type Inquiry struct {
	ID        int64     `json:"id"`
	VenueID   int64     `json:"venue_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type InquiriesStore struct {
	db *pgxpool.Pool
}

func (s *InquiriesStore) Create(ctx context.Context, inquiry *Inquiry) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        INSERT INTO inquiries (venue_id, name, email, phone, message, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	err := s.db.QueryRow(ctx, query,
		inquiry.VenueID,
		inquiry.Name,
		inquiry.Email,
		inquiry.Phone,
		inquiry.Message,
		InquiryNew,
	).Scan(&inquiry.ID, &inquiry.CreatedAt)
	if err != nil {
		return err
	}
	inquiry.Status = InquiryNew
	return nil
}

func (s *InquiriesStore) GetByID(ctx context.Context, inquiryID int64) (*Inquiry, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT id, venue_id, name, email, phone, message, status, created_at
        FROM inquiries
        WHERE id = $1
    `
	var i Inquiry
	err := s.db.QueryRow(ctx, query, inquiryID).Scan(
		&i.ID, &i.VenueID, &i.Name, &i.Email, &i.Phone, &i.Message,
		&i.Status, &i.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (s *InquiriesStore) GetByVenue(ctx context.Context, venueID int64) ([]Inquiry, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT id, venue_id, name, email, phone, message, status, created_at
        FROM inquiries
        WHERE venue_id = $1
        ORDER BY created_at DESC
    `
	rows, err := s.db.Query(ctx, query, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inquiries []Inquiry
	for rows.Next() {
		var i Inquiry
		if err := rows.Scan(
			&i.ID, &i.VenueID, &i.Name, &i.Email, &i.Phone, &i.Message,
			&i.Status, &i.CreatedAt,
		); err != nil {
			return nil, err
		}
		inquiries = append(inquiries, i)
	}
	return inquiries, rows.Err()
}

func (s *InquiriesStore) UpdateStatus(ctx context.Context, inquiryID int64, status string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx,
		`UPDATE inquiries SET status = $1 WHERE id = $2`, status, inquiryID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
