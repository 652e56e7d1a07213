package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"

	"github.com/finhorizon/horizon/internal/budgets"
	"github.com/finhorizon/horizon/internal/db"
	"github.com/finhorizon/horizon/internal/invoices"
	"github.com/finhorizon/horizon/internal/ledger"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewServer("u1",
		ledger.NewStore(database),
		invoices.NewStore(database, nil),
		budgets.NewStore(database, nil),
	)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"list_invoices", listInvoicesTool, "list_invoices"},
		{"budget_status", budgetStatusTool, "budget_status"},
		{"ledger_summary", ledgerSummaryTool, "ledger_summary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestHandleListInvoices(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	if _, err := srv.invoices.Create(ctx, "u1", invoices.Invoice{
		Number: "INV-0001", ClientName: "Acme", IssueDate: "2026-08-01",
		DueDate: "2026-09-01", Amount: mustDecimal(t, "1500"), Status: invoices.StatusSent,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("lists invoices", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		result, err := srv.handleListInvoices(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(textContent(t, result), "INV-0001") {
			t.Error("expected invoice number in output")
		}
	})

	t.Run("status filter", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"status": "paid"}
		result, err := srv.handleListInvoices(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(textContent(t, result), "No invoices") {
			t.Error("expected empty result for paid filter")
		}
	})

	t.Run("bad status", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"status": "void"}
		result, err := srv.handleListInvoices(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected tool error for unknown status")
		}
	})
}

func TestHandleBudgetStatus(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	b, err := srv.budgets.Create(ctx, "u1", budgets.Budget{
		Category: "food", Period: "2026-08", Limit: mustDecimal(t, "500"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := srv.budgets.RecordSpend(ctx, "u1", b.ID, mustDecimal(t, "450")); err != nil {
		t.Fatalf("RecordSpend: %v", err)
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"period": "2026-08"}
	result, err := srv.handleBudgetStatus(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := textContent(t, result)
	if !strings.Contains(text, "remaining 50") || !strings.Contains(text, "warning") {
		t.Errorf("unexpected output:\n%s", text)
	}
}

func TestHandleLedgerSummary(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	if _, err := srv.ledger.Create(ctx, "u1", ledger.Entry{
		Date: "2026-08-01", Description: "Salary", Category: "payroll",
		Direction: ledger.DirectionIncome, Amount: mustDecimal(t, "4000"),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("summary", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"period": "2026-08"}
		result, err := srv.handleLedgerSummary(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := textContent(t, result)
		if !strings.Contains(text, "Income:   4000") {
			t.Errorf("unexpected output:\n%s", text)
		}
	})

	t.Run("missing period", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		result, err := srv.handleLedgerSummary(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected tool error for missing period")
		}
	})
}
