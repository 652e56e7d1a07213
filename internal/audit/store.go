package audit

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finhorizon/horizon/internal/db"
)

// Store persists audit entries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a new audit entry. If entry.ID is empty a UUID is generated.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, actor_id, action, scope, scope_id, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ActorID,
		string(entry.Action),
		string(entry.Scope),
		entry.ScopeID,
		entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// Record is the fire-and-forget form of Log used by feature handlers.
// Failures are logged but never surfaced to the request that caused them.
func (s *Store) Record(actorID, action, scope, scopeID, detail string) {
	err := s.Log(context.Background(), Entry{
		ActorID: actorID,
		Action:  Action(action),
		Scope:   Scope(scope),
		ScopeID: scopeID,
		Detail:  detail,
	})
	if err != nil {
		log.Printf("audit: record %s/%s: %v", action, scope, err)
	}
}

// GetByID retrieves a single audit entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, actor_id, action, scope, scope_id, detail
		FROM audit_entries WHERE id = ?`, id)

	var (
		e  Entry
		ts string
	)
	if err := row.Scan(&e.ID, &ts, &e.ActorID, &e.Action, &e.Scope, &e.ScopeID, &e.Detail); err != nil {
		return nil, fmt.Errorf("scanning audit entry: %w", err)
	}
	e.Timestamp = parseTimestamp(ts)
	return &e, nil
}

// QueryFilter controls which audit entries are returned by Query.
type QueryFilter struct {
	ActorID string
	Scope   Scope
	ScopeID string
	Action  Action
	Since   *time.Time
	Until   *time.Time
	Limit   int
	Offset  int
}

// Query returns audit entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.ActorID != "" {
		clauses = append(clauses, "actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if filter.Scope != "" {
		clauses = append(clauses, "scope = ?")
		args = append(args, string(filter.Scope))
	}
	if filter.ScopeID != "" {
		clauses = append(clauses, "scope_id = ?")
		args = append(args, filter.ScopeID)
	}
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format("2006-01-02 15:04:05"))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format("2006-01-02 15:04:05"))
	}

	query := `SELECT id, timestamp, actor_id, action, scope, scope_id, detail FROM audit_entries`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ts string
		)
		if err := rows.Scan(&e.ID, &ts, &e.ActorID, &e.Action, &e.Scope, &e.ScopeID, &e.Detail); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.Timestamp = parseTimestamp(ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
