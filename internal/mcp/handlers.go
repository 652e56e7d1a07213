package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/finhorizon/horizon/internal/budgets"
	"github.com/finhorizon/horizon/internal/invoices"
)

// handleListInvoices returns the user's invoices as a plain-text table.
func (s *Server) handleListInvoices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status invoices.Status
	if v := request.GetString("status", ""); v != "" {
		status = invoices.Status(v)
		if !status.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown status %q", v)), nil
		}
	}

	list, err := s.invoices.List(ctx, s.userID, status)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing invoices failed: %v", err)), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No invoices found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d invoice(s):\n\n", len(list))
	for _, inv := range list {
		fmt.Fprintf(&b, "- %s  %s  %s  due %s  [%s]\n",
			inv.Number, inv.ClientName, inv.Amount, inv.DueDate, inv.Status)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleBudgetStatus returns the user's budgets with remaining headroom.
func (s *Server) handleBudgetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	period := request.GetString("period", "")
	if period != "" && !budgets.ValidPeriod(period) {
		return mcp.NewToolResultError(fmt.Sprintf("period %q is not YYYY-MM", period)), nil
	}

	list, err := s.budgets.List(ctx, s.userID, period)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing budgets failed: %v", err)), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No budgets found."), nil
	}

	var b strings.Builder
	for _, budget := range list {
		state := "ok"
		if budget.Exceeded {
			state = "EXCEEDED"
		} else if budget.Warned {
			state = "warning"
		}
		fmt.Fprintf(&b, "- %s %s: spent %s of %s (remaining %s) [%s]\n",
			budget.Period, budget.Category, budget.Spent, budget.Limit, budget.Remaining(), state)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleLedgerSummary returns a month's aggregated ledger totals.
func (s *Server) handleLedgerSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	period, err := request.RequireString("period")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: period"), nil
	}

	summary, err := s.reports.Summarize(ctx, s.userID, period)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summarizing failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summary for %s:\n", summary.Period)
	fmt.Fprintf(&b, "  Income:   %s\n", summary.Totals.Income)
	fmt.Fprintf(&b, "  Expenses: %s\n", summary.Totals.Expenses)
	fmt.Fprintf(&b, "  Net:      %s\n", summary.Totals.Net)

	if len(summary.Totals.ByCategory) > 0 {
		b.WriteString("  By category:\n")
		categories := make([]string, 0, len(summary.Totals.ByCategory))
		for cat := range summary.Totals.ByCategory {
			categories = append(categories, cat)
		}
		sort.Strings(categories)
		for _, cat := range categories {
			fmt.Fprintf(&b, "    %s: %s\n", cat, summary.Totals.ByCategory[cat])
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
