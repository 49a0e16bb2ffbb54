package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PushTokensStore struct {
	db *pgxpool.Pool
}

// AddOrUpdate upserts an Expo push token for a user.
func (s *PushTokensStore) AddOrUpdate(ctx context.Context, userID int64, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	q := `
        INSERT INTO user_push_tokens (user_id, expo_push_token, last_updated)
        VALUES ($1, $2, NOW())
        ON CONFLICT (user_id, expo_push_token)
        DO UPDATE SET last_updated = NOW()
    `
	_, err := s.db.Exec(ctx, q, userID, token)
	return err
}

func (s *PushTokensStore) Remove(ctx context.Context, userID int64, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	q := `DELETE FROM user_push_tokens WHERE user_id = $1 AND expo_push_token = $2`
	_, err := s.db.Exec(ctx, q, userID, token)
	return err
}

// GetByUserIDs returns the push tokens registered for each of the given users.
func (s *PushTokensStore) GetByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]string, error) {
	if len(userIDs) == 0 {
		return map[int64][]string{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	q := `
        SELECT user_id, expo_push_token
        FROM user_push_tokens
        WHERE user_id = ANY($1)
    `
	rows, err := s.db.Query(ctx, q, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]string)
	for rows.Next() {
		var userID int64
		var token string
		if err := rows.Scan(&userID, &token); err != nil {
			return nil, err
		}
		out[userID] = append(out[userID], token)
	}
	return out, rows.Err()
}
