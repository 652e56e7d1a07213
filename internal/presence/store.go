// Package presence tracks which users are online and where. Each client
// only ever writes its own record; readers see everyone else's.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/finhorizon/horizon/internal/db"
)

// Record is one user's liveness/location entry. Multiple tabs for the same
// user share the record: last writer wins.
type Record struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Path        string    `json:"path"`
	Online      bool      `json:"online"`
	LastSeen    time.Time `json:"last_seen"`
}

// Store persists presence records. Staleness is enforced by the reader's
// query window, never by expiring records in place: a row whose last_seen
// has aged out is simply not returned, whatever its online flag says.
type Store struct {
	db         *db.DB
	staleAfter time.Duration
	now        func() time.Time
}

// NewStore creates a presence store with the given staleness window.
func NewStore(database *db.DB, staleAfter time.Duration) *Store {
	return NewStoreWithClock(database, staleAfter, time.Now)
}

// NewStoreWithClock creates a presence store with an injected clock.
func NewStoreWithClock(database *db.DB, staleAfter time.Duration, now func() time.Time) *Store {
	return &Store{db: database, staleAfter: staleAfter, now: now}
}

// Heartbeat upserts the caller's own record with a refreshed timestamp.
func (s *Store) Heartbeat(ctx context.Context, userID, displayName, path string) (*Record, error) {
	rec := Record{
		UserID:      userID,
		DisplayName: displayName,
		Path:        path,
		Online:      true,
		LastSeen:    s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO presence (user_id, display_name, path, online, last_seen)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			path = excluded.path,
			online = 1,
			last_seen = excluded.last_seen`,
		rec.UserID, rec.DisplayName, rec.Path, rec.LastSeen,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting presence: %w", err)
	}
	return &rec, nil
}

// MarkOffline flips the caller's own online flag, typically on logout.
func (s *Store) MarkOffline(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE presence SET online = 0 WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("marking offline: %w", err)
	}
	return nil
}

// Online returns everyone else currently online: flag set and last seen
// within the staleness window, excluding the caller's own record.
func (s *Store) Online(ctx context.Context, excludeUserID string) ([]Record, error) {
	cutoff := s.now().UTC().Add(-s.staleAfter)

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, display_name, path, online, last_seen
		FROM presence
		WHERE online = 1 AND last_seen >= ? AND user_id != ?
		ORDER BY last_seen DESC`,
		cutoff, excludeUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying presence: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var rec Record
		var online int
		if err := rows.Scan(&rec.UserID, &rec.DisplayName, &rec.Path, &online, &rec.LastSeen); err != nil {
			return nil, fmt.Errorf("scanning presence: %w", err)
		}
		rec.Online = online != 0
		result = append(result, rec)
	}
	return result, rows.Err()
}
