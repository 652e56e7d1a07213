// Package importer loads bank statement CSV files into the ledger.
//
// Statements are matched with doublestar globs, so patterns like
// "statements/**/*.csv" work across nested directories. Each file is a
// header-first CSV with date, description and amount columns; a negative
// amount is an expense, a positive one income. An optional category column
// is carried through when present.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/shopspring/decimal"

	"github.com/finhorizon/horizon/internal/ledger"
	"github.com/finhorizon/horizon/internal/progress"
)

// Importer reads statement files into a user's ledger.
type Importer struct {
	ledger   *ledger.Store
	budgets  ledger.SpendApplier
	reporter progress.Reporter
}

// New creates an Importer. Imported expenses are booked against the
// user's budgets when budgets is non-nil. The reporter may be nil for
// silent operation.
func New(store *ledger.Store, budgets ledger.SpendApplier, reporter progress.Reporter) *Importer {
	if reporter == nil {
		reporter = progress.Silent()
	}
	return &Importer{ledger: store, budgets: budgets, reporter: reporter}
}

// Result summarizes an import run.
type Result struct {
	Files    int
	Imported int
	Skipped  int
	Errors   []FileError
}

// FileError records a failure for one statement file. A failed file does
// not abort the run; the remaining files are still processed.
type FileError struct {
	Path string
	Err  error
}

// Run imports every file matching the glob pattern for the given user.
func (im *Importer) Run(ctx context.Context, userID, pattern string) (*Result, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files match %q", pattern)
	}

	seen, err := im.existingKeys(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: len(paths)}
	im.reporter.Start(len(paths))
	defer im.reporter.Finish()

	for i, path := range paths {
		im.reporter.Update(i+1, path)
		if err := im.importFile(ctx, userID, path, seen, result); err != nil {
			result.Errors = append(result.Errors, FileError{Path: path, Err: err})
		}
	}
	return result, nil
}

func (im *Importer) importFile(ctx context.Context, userID, path string, seen map[string]bool, result *Result) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return err
	}

	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		entry, err := cols.parse(record)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		key := dedupeKey(entry.Date, entry.Description, entry.Signed())
		if seen[key] {
			result.Skipped++
			continue
		}

		if _, err := im.ledger.Create(ctx, userID, *entry); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if im.budgets != nil && entry.Direction == ledger.DirectionExpense && entry.Category != "" {
			if err := im.budgets.ApplySpend(ctx, userID, entry.Category, ledger.Period(entry.Date), entry.Amount); err != nil {
				return fmt.Errorf("line %d: booking against budget: %w", line, err)
			}
		}
		seen[key] = true
		result.Imported++
	}
}

// existingKeys loads dedupe keys for the user's current entries so a rerun
// of the same statements does not double-book them.
func (im *Importer) existingKeys(ctx context.Context, userID string) (map[string]bool, error) {
	entries, err := im.ledger.List(ctx, userID, ledger.ListFilter{Limit: 100000})
	if err != nil {
		return nil, fmt.Errorf("loading existing entries: %w", err)
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[dedupeKey(e.Date, e.Description, e.Signed())] = true
	}
	return seen, nil
}

func dedupeKey(date, description string, amount decimal.Decimal) string {
	return date + "\x00" + description + "\x00" + amount.String()
}

// columns maps CSV header names to field positions. Category is optional.
type columns struct {
	date, description, amount, category int
}

func mapColumns(header []string) (*columns, error) {
	c := &columns{date: -1, description: -1, amount: -1, category: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			c.date = i
		case "description", "memo":
			c.description = i
		case "amount":
			c.amount = i
		case "category":
			c.category = i
		}
	}
	if c.date < 0 || c.description < 0 || c.amount < 0 {
		return nil, fmt.Errorf("header must include date, description and amount columns")
	}
	return c, nil
}

func (c *columns) parse(record []string) (*ledger.Entry, error) {
	if n := max(c.date, c.description, c.amount); len(record) <= n {
		return nil, fmt.Errorf("expected at least %d fields, got %d", n+1, len(record))
	}

	date := strings.TrimSpace(record[c.date])
	if !ledger.ValidDate(date) {
		return nil, fmt.Errorf("bad date %q", date)
	}

	description := strings.TrimSpace(record[c.description])
	if description == "" {
		return nil, fmt.Errorf("empty description")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(record[c.amount]))
	if err != nil {
		return nil, fmt.Errorf("bad amount %q", record[c.amount])
	}

	direction := ledger.DirectionIncome
	if amount.IsNegative() {
		direction = ledger.DirectionExpense
		amount = amount.Neg()
	}

	var category string
	if c.category >= 0 && c.category < len(record) {
		category = strings.TrimSpace(record[c.category])
	}

	return &ledger.Entry{
		Date:        date,
		Description: description,
		Category:    category,
		Direction:   direction,
		Amount:      amount,
	}, nil
}
