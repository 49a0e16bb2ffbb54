// Package cache keeps the reserved-dates projection in Redis so the public
// availability calendar does not hit Postgres on every page load.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dateLayout = "2006-01-02"

type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAvailability(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func reservedDatesKey(venueID int64) string {
	return fmt.Sprintf("venues:%d:reserved-dates", venueID)
}

// GetReservedDates returns the cached dates and whether the key was present.
// Any Redis or decode error is treated as a miss; the caller falls back to
// the database.
func (c *AvailabilityCache) GetReservedDates(ctx context.Context, venueID int64) ([]time.Time, bool) {
	payload, err := c.rdb.Get(ctx, reservedDatesKey(venueID)).Bytes()
	if err != nil {
		return nil, false
	}

	var raw []string
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, false
	}

	dates := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, false
		}
		dates = append(dates, d)
	}
	return dates, true
}

func (c *AvailabilityCache) SetReservedDates(ctx context.Context, venueID int64, dates []time.Time) error {
	raw := make([]string, 0, len(dates))
	for _, d := range dates {
		raw = append(raw, d.Format(dateLayout))
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, reservedDatesKey(venueID), payload, c.ttl).Err()
}

// Invalidate drops the venue's cached dates. Called after every booking
// create and status change so the calendar never serves a stale slot.
func (c *AvailabilityCache) Invalidate(ctx context.Context, venueID int64) error {
	return c.rdb.Del(ctx, reservedDatesKey(venueID)).Err()
}
