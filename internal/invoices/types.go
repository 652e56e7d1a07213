package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Invoice is a bill issued to a client.
type Invoice struct {
	ID         string          `json:"id"`
	UserID     string          `json:"-"`
	Number     string          `json:"number"`
	ClientName string          `json:"client_name"`
	IssueDate  string          `json:"issue_date"`
	DueDate    string          `json:"due_date"`
	Amount     decimal.Decimal `json:"amount"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

const dateLayout = "2006-01-02"

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
