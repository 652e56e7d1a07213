package invoices

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
	// ErrNotFound is returned when an invoice does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("invoices: not found")
	// ErrDuplicateNumber is returned when the user already has an invoice
	// with the same number.
	ErrDuplicateNumber = errors.New("invoices: duplicate invoice number")
)

// Store provides CRUD and lifecycle operations for invoices.
type Store struct {
	db       *db.DB
	notifier *notify.Manager
	now      func() time.Time
}

// NewStore creates a Store backed by the given database. Notifications for
// paid and overdue invoices are delivered through the manager; it may be nil
// in which case no notifications are emitted.
func NewStore(database *db.DB, notifier *notify.Manager) *Store {
	return &Store{
		db:       database,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new invoice for the user. Status defaults to draft.
func (s *Store) Create(ctx context.Context, userID string, inv Invoice) (*Invoice, error) {
	inv.ID = uuid.New().String()
	inv.UserID = userID
	if inv.Status == "" {
		inv.Status = StatusDraft
	}
	inv.CreatedAt = s.now()
	inv.UpdatedAt = inv.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (id, user_id, number, client_name, issue_date, due_date, amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.UserID, inv.Number, inv.ClientName, inv.IssueDate, inv.DueDate,
		inv.Amount.String(), string(inv.Status), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("inserting invoice: %w", err)
	}
	return &inv, nil
}

// Get returns the user's invoice by id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, userID, id string) (*Invoice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, number, client_name, issue_date, due_date, amount, status, created_at, updated_at
		FROM invoices WHERE id = ? AND user_id = ?`, id, userID)
	inv, err := scanInvoice(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inv, err
}

// Update replaces the mutable fields of the user's invoice.
func (s *Store) Update(ctx context.Context, userID string, inv Invoice) (*Invoice, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invoices
		SET number = ?, client_name = ?, issue_date = ?, due_date = ?, amount = ?, status = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		inv.Number, inv.ClientName, inv.IssueDate, inv.DueDate, inv.Amount.String(),
		string(inv.Status), s.now(), inv.ID, userID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("updating invoice: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, userID, inv.ID)
}

// Delete removes the user's invoice by id.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the user's invoices, optionally filtered by status, newest
// issue date first.
func (s *Store) List(ctx context.Context, userID string, status Status) ([]Invoice, error) {
	query := `SELECT id, user_id, number, client_name, issue_date, due_date, amount, status, created_at, updated_at
		FROM invoices WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY issue_date DESC, number DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// MarkPaid transitions the user's invoice to paid and emits a
// payment-received notification.
func (s *Store) MarkPaid(ctx context.Context, userID, id string) (*Invoice, error) {
	inv, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusPaid {
		return inv, nil
	}

	inv.Status = StatusPaid
	inv, err = s.Update(ctx, userID, *inv)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.ForUser(userID).Add(notify.Draft{
			Category: notify.CategoryPaymentReceived,
			Title:    "Payment received",
			Message:  fmt.Sprintf("Invoice %s (%s) was paid.", inv.Number, inv.ClientName),
			Priority: notify.PriorityMedium,
			Link:     "/invoices/" + inv.ID,
		})
	}
	return inv, nil
}

// SweepOverdue marks every sent invoice whose due date has passed as overdue
// and emits an invoice-overdue notification per invoice. It returns the
// invoices it transitioned. Draft and paid invoices are left alone.
func (s *Store) SweepOverdue(ctx context.Context) ([]Invoice, error) {
	today := s.now().Format(dateLayout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, number, client_name, issue_date, due_date, amount, status, created_at, updated_at
		FROM invoices WHERE status = ? AND due_date < ?`, string(StatusSent), today)
	if err != nil {
		return nil, fmt.Errorf("querying overdue invoices: %w", err)
	}
	defer rows.Close()

	var due []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, err
		}
		due = append(due, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var swept []Invoice
	for _, inv := range due {
		_, err := s.db.ExecContext(ctx,
			`UPDATE invoices SET status = ?, updated_at = ? WHERE id = ?`,
			string(StatusOverdue), s.now(), inv.ID,
		)
		if err != nil {
			return swept, fmt.Errorf("marking invoice %s overdue: %w", inv.Number, err)
		}
		inv.Status = StatusOverdue
		swept = append(swept, inv)

		if s.notifier != nil {
			s.notifier.ForUser(inv.UserID).Add(notify.Draft{
				Category: notify.CategoryInvoiceOverdue,
				Title:    "Invoice overdue",
				Message:  fmt.Sprintf("Invoice %s (%s) was due %s.", inv.Number, inv.ClientName, inv.DueDate),
				Priority: notify.PriorityHigh,
				Link:     "/invoices/" + inv.ID,
			})
		}
	}
	return swept, nil
}

func scanInvoice(scan func(...any) error) (*Invoice, error) {
	var (
		inv    Invoice
		amount string
	)
	err := scan(&inv.ID, &inv.UserID, &inv.Number, &inv.ClientName, &inv.IssueDate,
		&inv.DueDate, &amount, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	inv.Amount = amt
	return &inv, nil
}
