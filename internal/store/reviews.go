package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Review struct {
	ID           int64     `json:"id"`
	VenueID      int64     `json:"venue_id"`
	CustomerID   int64     `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"` // 1-5
	Comment      string    `json:"comment"`
	EventType    string    `json:"event_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ReviewsStore struct {
	db *pgxpool.Pool
}

// refreshVenueRating recomputes the venue's cached rating and review_count
// from the reviews table. rating is the mean rounded to one decimal, 0 when
// no reviews remain. Must run inside the same transaction as the review
// write so concurrent writers cannot leave the aggregate stale.
func refreshVenueRating(ctx context.Context, tx pgx.Tx, venueID int64) error {
	query := `
        UPDATE venues v SET
            rating = COALESCE(
                (SELECT ROUND(AVG(rating)::numeric, 1) FROM reviews WHERE venue_id = v.id), 0),
            review_count =
                (SELECT COUNT(*) FROM reviews WHERE venue_id = v.id),
            updated_at = NOW()
        WHERE v.id = $1
    `
	_, err := tx.Exec(ctx, query, venueID)
	return err
}

// Create inserts a review and refreshes the venue aggregate in one
// transaction. The unique index on (venue_id, customer_id) enforces one
// review per customer per venue; a violation surfaces as ErrAlreadyReviewed.
func (s *ReviewsStore) Create(ctx context.Context, review *Review) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO reviews (venue_id, customer_id, customer_name, rating, comment, event_type)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `
	err = tx.QueryRow(ctx, query,
		review.VenueID,
		review.CustomerID,
		review.CustomerName,
		review.Rating,
		review.Comment,
		review.EventType,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyReviewed
		}
		return err
	}

	if err := refreshVenueRating(ctx, tx, review.VenueID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *ReviewsStore) GetByID(ctx context.Context, reviewID int64) (*Review, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT id, venue_id, customer_id, customer_name, rating, comment,
               event_type, created_at, updated_at
        FROM reviews
        WHERE id = $1
    `
	var r Review
	err := s.db.QueryRow(ctx, query, reviewID).Scan(
		&r.ID, &r.VenueID, &r.CustomerID, &r.CustomerName, &r.Rating,
		&r.Comment, &r.EventType, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *ReviewsStore) GetByVenue(ctx context.Context, venueID int64) ([]Review, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT id, venue_id, customer_id, customer_name, rating, comment,
               event_type, created_at, updated_at
        FROM reviews
        WHERE venue_id = $1
        ORDER BY created_at DESC
    `
	rows, err := s.db.Query(ctx, query, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(
			&r.ID, &r.VenueID, &r.CustomerID, &r.CustomerName, &r.Rating,
			&r.Comment, &r.EventType, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// Update patches a review's rating/comment/event_type and refreshes the
// venue aggregate in the same transaction.
func (s *ReviewsStore) Update(ctx context.Context, review *Review) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        UPDATE reviews
        SET rating = $1, comment = $2, event_type = $3, updated_at = NOW()
        WHERE id = $4
        RETURNING updated_at
    `
	err = tx.QueryRow(ctx, query,
		review.Rating, review.Comment, review.EventType, review.ID,
	).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := refreshVenueRating(ctx, tx, review.VenueID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes a review and refreshes the venue aggregate in the same
// transaction. Deleting the last review resets the venue rating to 0.
func (s *ReviewsStore) Delete(ctx context.Context, reviewID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var venueID int64
	err = tx.QueryRow(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING venue_id`, reviewID).Scan(&venueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := refreshVenueRating(ctx, tx, venueID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
