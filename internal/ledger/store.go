package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finhorizon/horizon/internal/db"
)

// ErrNotFound is returned when an entry does not exist or belongs to
// another user.
var ErrNotFound = errors.New("ledger: entry not found")

// Store provides CRUD operations for accounting entries.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a new entry for the user. The ID is generated.
func (s *Store) Create(ctx context.Context, userID string, e Entry) (*Entry, error) {
	e.ID = uuid.New().String()
	e.UserID = userID
	e.CreatedAt = s.now()
	e.UpdatedAt = e.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (id, user_id, entry_date, description, category, direction, amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Date, e.Description, e.Category, string(e.Direction),
		e.Amount.String(), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting entry: %w", err)
	}
	return &e, nil
}

// Get returns the user's entry by id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, userID, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, entry_date, description, category, direction, amount, created_at, updated_at
		FROM entries WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// Update replaces the mutable fields of the user's entry.
func (s *Store) Update(ctx context.Context, userID string, e Entry) (*Entry, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE entries
		SET entry_date = ?, description = ?, category = ?, direction = ?, amount = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		e.Date, e.Description, e.Category, string(e.Direction), e.Amount.String(), s.now(),
		e.ID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, userID, e.ID)
}

// Delete removes the user's entry by id.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFilter controls which entries List returns.
type ListFilter struct {
	Since     string // inclusive, YYYY-MM-DD
	Until     string // inclusive, YYYY-MM-DD
	Category  string
	Direction Direction
	Limit     int
	Offset    int
}

// List returns the user's entries matching the filter, most recent date first.
func (s *Store) List(ctx context.Context, userID string, filter ListFilter) ([]Entry, error) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}

	if filter.Since != "" {
		clauses = append(clauses, "entry_date >= ?")
		args = append(args, filter.Since)
	}
	if filter.Until != "" {
		clauses = append(clauses, "entry_date <= ?")
		args = append(args, filter.Until)
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Direction != "" {
		clauses = append(clauses, "direction = ?")
		args = append(args, string(filter.Direction))
	}

	query := `SELECT id, user_id, entry_date, description, category, direction, amount, created_at, updated_at
		FROM entries WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY entry_date DESC, created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query += " LIMIT ?"
	args = append(args, limit)
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Totals sums the user's entries between two inclusive dates.
type Totals struct {
	Income     decimal.Decimal            `json:"income"`
	Expenses   decimal.Decimal            `json:"expenses"`
	Net        decimal.Decimal            `json:"net"`
	ByCategory map[string]decimal.Decimal `json:"by_category"`
}

// Summarize aggregates the user's entries in [since, until].
func (s *Store) Summarize(ctx context.Context, userID, since, until string) (*Totals, error) {
	entries, err := s.List(ctx, userID, ListFilter{Since: since, Until: until, Limit: 10000})
	if err != nil {
		return nil, err
	}

	t := &Totals{ByCategory: map[string]decimal.Decimal{}}
	for _, e := range entries {
		switch e.Direction {
		case DirectionIncome:
			t.Income = t.Income.Add(e.Amount)
		case DirectionExpense:
			t.Expenses = t.Expenses.Add(e.Amount)
		}
		cat := e.Category
		if cat == "" {
			cat = "uncategorized"
		}
		t.ByCategory[cat] = t.ByCategory[cat].Add(e.Signed())
	}
	t.Net = t.Income.Sub(t.Expenses)
	return t, nil
}

func scanEntry(scan func(...any) error) (*Entry, error) {
	var (
		e      Entry
		amount string
	)
	if err := scan(&e.ID, &e.UserID, &e.Date, &e.Description, &e.Category, &e.Direction, &amount, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning entry: %w", err)
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	e.Amount = amt
	return &e, nil
}
