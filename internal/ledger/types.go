package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether an entry adds to or subtracts from the balance.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// Entry is a single accounting line.
type Entry struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Direction   Direction       `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Signed returns the amount with expenses negated.
func (e Entry) Signed() decimal.Decimal {
	if e.Direction == DirectionExpense {
		return e.Amount.Neg()
	}
	return e.Amount
}

const dateLayout = "2006-01-02"

// ValidDate reports whether s is a calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// Period returns the YYYY-MM budget period a valid entry date falls in.
func Period(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
