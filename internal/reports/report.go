package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/finhorizon/horizon/internal/ledger"
)

// Generator builds monthly summary reports from accounting entries.
type Generator struct {
	ledger *ledger.Store
}

// NewGenerator creates a Generator over the given ledger store.
func NewGenerator(store *ledger.Store) *Generator {
	return &Generator{ledger: store}
}

// Summary is a month of aggregated ledger activity.
type Summary struct {
	Period string         `json:"period"`
	Totals *ledger.Totals `json:"totals"`
}

const periodLayout = "2006-01"

// PeriodBounds returns the first and last day of the month in YYYY-MM-DD
// form, or an error if period is not a YYYY-MM month.
func PeriodBounds(period string) (since, until string, err error) {
	start, err := time.Parse(periodLayout, period)
	if err != nil {
		return "", "", fmt.Errorf("period must be YYYY-MM: %w", err)
	}
	end := start.AddDate(0, 1, -1)
	return start.Format("2006-01-02"), end.Format("2006-01-02"), nil
}

// Summarize aggregates the user's entries for the given month.
func (g *Generator) Summarize(ctx context.Context, userID, period string) (*Summary, error) {
	since, until, err := PeriodBounds(period)
	if err != nil {
		return nil, err
	}
	totals, err := g.ledger.Summarize(ctx, userID, since, until)
	if err != nil {
		return nil, fmt.Errorf("summarizing %s: %w", period, err)
	}
	return &Summary{Period: period, Totals: totals}, nil
}

// Markdown renders the summary as a GFM report.
func (g *Generator) Markdown(ctx context.Context, userID, period string) (string, error) {
	s, err := g.Summarize(ctx, userID, period)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Financial Report - %s\n\n", s.Period)

	b.WriteString("## Totals\n\n")
	b.WriteString("| | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Income | %s |\n", s.Totals.Income)
	fmt.Fprintf(&b, "| Expenses | %s |\n", s.Totals.Expenses)
	fmt.Fprintf(&b, "| Net | %s |\n\n", s.Totals.Net)

	b.WriteString("## By category\n\n")
	if len(s.Totals.ByCategory) == 0 {
		b.WriteString("No entries recorded for this period.\n")
		return b.String(), nil
	}

	categories := make([]string, 0, len(s.Totals.ByCategory))
	for cat := range s.Totals.ByCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	b.WriteString("| Category | Net |\n|---|---:|\n")
	for _, cat := range categories {
		fmt.Fprintf(&b, "| %s | %s |\n", cat, s.Totals.ByCategory[cat])
	}
	return b.String(), nil
}
