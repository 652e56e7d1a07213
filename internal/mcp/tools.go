package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listInvoicesTool defines the list_invoices MCP tool.
var listInvoicesTool = mcp.NewTool("list_invoices",
	mcp.WithDescription("List the user's invoices with number, client, amount, due date and status."),
	mcp.WithString("status",
		mcp.Description("Only return invoices with this status"),
		mcp.Enum("draft", "sent", "paid", "overdue"),
	),
)

// budgetStatusTool defines the budget_status MCP tool.
var budgetStatusTool = mcp.NewTool("budget_status",
	mcp.WithDescription("Show the user's budgets for a month with limit, spent so far and remaining headroom."),
	mcp.WithString("period",
		mcp.Description("Calendar month in YYYY-MM form (defaults to all periods)"),
	),
)

// ledgerSummaryTool defines the ledger_summary MCP tool.
var ledgerSummaryTool = mcp.NewTool("ledger_summary",
	mcp.WithDescription("Summarize the user's accounting entries for a month: income, expenses, net and per-category totals."),
	mcp.WithString("period",
		mcp.Required(),
		mcp.Description("Calendar month in YYYY-MM form"),
	),
)
