package budgets

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
	"github.com/finhorizon/horizon/internal/notify"
)

var (
	// ErrNotFound is returned when a budget does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("budgets: not found")
	// ErrDuplicate is returned when the user already has a budget for the
	// same category and period.
	ErrDuplicate = errors.New("budgets: category already budgeted for period")
)

// Store provides CRUD and spend tracking for budgets. Crossing 80% of a
// limit emits a budget-warning notification, crossing 100% emits
// budget-exceeded. Each fires at most once until spending drops back below
// the threshold.
type Store struct {
	db       *db.DB
	notifier *notify.Manager
	now      func() time.Time
}

// NewStore creates a Store backed by the given database. The manager may be
// nil, in which case threshold crossings emit nothing.
func NewStore(database *db.DB, notifier *notify.Manager) *Store {
	return &Store{
		db:       database,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new budget for the user with zero spend.
func (s *Store) Create(ctx context.Context, userID string, b Budget) (*Budget, error) {
	b.ID = uuid.New().String()
	b.UserID = userID
	b.Spent = decimal.Zero
	b.Warned = false
	b.Exceeded = false
	b.CreatedAt = s.now()
	b.UpdatedAt = b.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, category, period, limit_amount, spent_amount, warned, exceeded, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, '0', 0, 0, ?, ?)`,
		b.ID, b.UserID, b.Category, b.Period, b.Limit.String(), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("inserting budget: %w", err)
	}
	return &b, nil
}

// Get returns the user's budget by id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, userID, id string) (*Budget, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, category, period, limit_amount, spent_amount, warned, exceeded, created_at, updated_at
		FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBudget(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// List returns the user's budgets, optionally restricted to one period,
// ordered by period then category.
func (s *Store) List(ctx context.Context, userID, period string) ([]Budget, error) {
	query := `SELECT id, user_id, category, period, limit_amount, spent_amount, warned, exceeded, created_at, updated_at
		FROM budgets WHERE user_id = ?`
	args := []any{userID}
	if period != "" {
		query += " AND period = ?"
		args = append(args, period)
	}
	query += " ORDER BY period DESC, category ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying budgets: %w", err)
	}
	defer rows.Close()

	var budgets []Budget
	for rows.Next() {
		b, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

// UpdateLimit changes the limit of the user's budget. Threshold flags are
// recomputed so a later crossing can notify again.
func (s *Store) UpdateLimit(ctx context.Context, userID, id string, limit decimal.Decimal) (*Budget, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	b.Limit = limit
	b.Warned = b.Warned && b.pastWarning()
	b.Exceeded = b.Exceeded && b.pastLimit()
	return s.save(ctx, b)
}

// Delete removes the user's budget by id.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordSpend adds amount to the budget's spent total and emits threshold
// notifications for crossings. Negative amounts (refunds) lower the total
// and re-arm thresholds that spending drops back under.
func (s *Store) RecordSpend(ctx context.Context, userID, id string, amount decimal.Decimal) (*Budget, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	b.Spent = b.Spent.Add(amount)

	if b.pastLimit() {
		if !b.Exceeded && s.notifier != nil {
			s.notifier.ForUser(userID).Add(notify.Draft{
				Category: notify.CategoryBudgetExceeded,
				Title:    "Budget exceeded",
				Message:  fmt.Sprintf("%s budget for %s is over its %s limit.", b.Category, b.Period, b.Limit),
				Priority: notify.PriorityHigh,
				Link:     "/budgets/" + b.ID,
			})
		}
		b.Exceeded = true
	} else {
		b.Exceeded = false
	}

	if b.pastWarning() {
		if !b.Warned && !b.Exceeded && s.notifier != nil {
			s.notifier.ForUser(userID).Add(notify.Draft{
				Category: notify.CategoryBudgetWarning,
				Title:    "Budget warning",
				Message:  fmt.Sprintf("%s budget for %s has used 80%% of its %s limit.", b.Category, b.Period, b.Limit),
				Priority: notify.PriorityMedium,
				Link:     "/budgets/" + b.ID,
			})
		}
		b.Warned = true
	} else {
		b.Warned = false
	}

	return s.save(ctx, b)
}

// ApplySpend records spending against the user's budget for the given
// category and period, if one exists. Missing budgets are not an error.
func (s *Store) ApplySpend(ctx context.Context, userID, category, period string, amount decimal.Decimal) error {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM budgets WHERE user_id = ? AND category = ? AND period = ?`,
		userID, category, period,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up budget: %w", err)
	}
	_, err = s.RecordSpend(ctx, userID, id, amount)
	return err
}

func (s *Store) save(ctx context.Context, b *Budget) (*Budget, error) {
	b.UpdatedAt = s.now()
	_, err := s.db.ExecContext(ctx, `
		UPDATE budgets
		SET limit_amount = ?, spent_amount = ?, warned = ?, exceeded = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		b.Limit.String(), b.Spent.String(), boolInt(b.Warned), boolInt(b.Exceeded),
		b.UpdatedAt, b.ID, b.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("saving budget: %w", err)
	}
	return b, nil
}

func scanBudget(scan func(...any) error) (*Budget, error) {
	var (
		b                Budget
		limit, spent     string
		warned, exceeded int
	)
	err := scan(&b.ID, &b.UserID, &b.Category, &b.Period, &limit, &spent,
		&warned, &exceeded, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning budget: %w", err)
	}
	if b.Limit, err = decimal.NewFromString(limit); err != nil {
		return nil, fmt.Errorf("parsing limit %q: %w", limit, err)
	}
	if b.Spent, err = decimal.NewFromString(spent); err != nil {
		return nil, fmt.Errorf("parsing spent %q: %w", spent, err)
	}
	b.Warned = warned != 0
	b.Exceeded = exceeded != 0
	return &b, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
