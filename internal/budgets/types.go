package budgets

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a spending limit for a category over a calendar month.
type Budget struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	Category  string          `json:"category"`
	Period    string          `json:"period"` // YYYY-MM
	Limit     decimal.Decimal `json:"limit"`
	Spent     decimal.Decimal `json:"spent"`
	Warned    bool            `json:"warned"`
	Exceeded  bool            `json:"exceeded"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Remaining returns limit minus spent. Negative once the budget is blown.
func (b Budget) Remaining() decimal.Decimal {
	return b.Limit.Sub(b.Spent)
}

// warnRatio is the share of the limit at which a warning fires.
var warnRatio = decimal.NewFromFloat(0.8)

// pastWarning reports whether spent has reached 80% of the limit.
func (b Budget) pastWarning() bool {
	return b.Spent.GreaterThanOrEqual(b.Limit.Mul(warnRatio))
}

// pastLimit reports whether spent has reached the limit.
func (b Budget) pastLimit() bool {
	return b.Spent.GreaterThanOrEqual(b.Limit)
}

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidPeriod reports whether s is a calendar month in YYYY-MM form.
func ValidPeriod(s string) bool {
	return periodPattern.MatchString(s)
}
