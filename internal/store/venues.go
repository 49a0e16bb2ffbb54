package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	VenuePending  = "pending"
	VenueApproved = "approved"
	VenueRejected = "rejected"
)

// Venue represents a bookable space. rating and review_count are derived
// from the reviews table and maintained by the reviews store; they are a
// cache, not source of truth.
type Venue struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Address     string    `json:"address"`
	Capacity    int       `json:"capacity"`
	Price       int64     `json:"price"`
	PriceType   string    `json:"price_type"`
	Amenities   []string  `json:"amenities,omitempty"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VenueFilter narrows the public venue listing.
type VenueFilter struct {
	Location    string
	MinCapacity int
	MaxPrice    int64
	Search      string
	Status      string
}

type VenuesStore struct {
	db *pgxpool.Pool
}

func (s *VenuesStore) Create(ctx context.Context, venue *Venue) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        INSERT INTO venues
          (owner_id, name, location, address, capacity, price, price_type, amenities, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at
    `
	err := s.db.QueryRow(ctx, query,
		venue.OwnerID,
		venue.Name,
		venue.Location,
		venue.Address,
		venue.Capacity,
		venue.Price,
		venue.PriceType,
		venue.Amenities,
		VenuePending,
	).Scan(&venue.ID, &venue.CreatedAt, &venue.UpdatedAt)
	if err != nil {
		return err
	}
	venue.Status = VenuePending
	return nil
}

func (s *VenuesStore) GetByID(ctx context.Context, venueID int64) (*Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT id, owner_id, name, location, address, capacity, price, price_type,
               amenities, rating, review_count, status, created_at, updated_at
        FROM venues
        WHERE id = $1
    `
	var v Venue
	err := s.db.QueryRow(ctx, query, venueID).Scan(
		&v.ID, &v.OwnerID, &v.Name, &v.Location, &v.Address, &v.Capacity,
		&v.Price, &v.PriceType, &v.Amenities, &v.Rating, &v.ReviewCount,
		&v.Status, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s *VenuesStore) List(ctx context.Context, filter VenueFilter) ([]Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT id, owner_id, name, location, address, capacity, price, price_type,
               amenities, rating, review_count, status, created_at, updated_at
        FROM venues
        WHERE 1=1
    `
	args := []interface{}{}
	argCounter := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCounter)
		args = append(args, filter.Status)
		argCounter++
	}
	if filter.Location != "" {
		query += fmt.Sprintf(" AND location ILIKE $%d", argCounter)
		args = append(args, "%"+filter.Location+"%")
		argCounter++
	}
	if filter.MinCapacity > 0 {
		query += fmt.Sprintf(" AND capacity >= $%d", argCounter)
		args = append(args, filter.MinCapacity)
		argCounter++
	}
	if filter.MaxPrice > 0 {
		query += fmt.Sprintf(" AND price <= $%d", argCounter)
		args = append(args, filter.MaxPrice)
		argCounter++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR address ILIKE $%d)", argCounter, argCounter)
		args = append(args, "%"+filter.Search+"%")
		argCounter++
	}
	query += " ORDER BY rating DESC, created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []Venue
	for rows.Next() {
		var v Venue
		if err := rows.Scan(
			&v.ID, &v.OwnerID, &v.Name, &v.Location, &v.Address, &v.Capacity,
			&v.Price, &v.PriceType, &v.Amenities, &v.Rating, &v.ReviewCount,
			&v.Status, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

// Update patches venue content fields from a column->value map. Derived
// fields (rating, review_count) and status are not updatable through here.
func (s *VenuesStore) Update(ctx context.Context, venueID int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	setClauses := []string{}
	args := []interface{}{}
	argCounter := 1

	for column, value := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argCounter))
		args = append(args, value)
		argCounter++
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE venues SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), argCounter)
	args = append(args, venueID)

	res, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *VenuesStore) UpdateStatus(ctx context.Context, venueID int64, status string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx,
		`UPDATE venues SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, venueID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *VenuesStore) Delete(ctx context.Context, venueID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, `DELETE FROM venues WHERE id = $1`, venueID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
