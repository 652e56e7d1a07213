package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/finhorizon/horizon/internal/budgets"
	"github.com/finhorizon/horizon/internal/invoices"
	"github.com/finhorizon/horizon/internal/ledger"
	"github.com/finhorizon/horizon/internal/reports"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the user's financial data as
// tools. It serves a single user, identified up front by the caller; the
// MCP transport carries no authentication of its own.
type Server struct {
	userID   string
	ledger   *ledger.Store
	invoices *invoices.Store
	budgets  *budgets.Store
	reports  *reports.Generator
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server bound to one user's stores.
func NewServer(userID string, ledgerStore *ledger.Store, invoiceStore *invoices.Store, budgetStore *budgets.Store) *Server {
	s := &Server{
		userID:   userID,
		ledger:   ledgerStore,
		invoices: invoiceStore,
		budgets:  budgetStore,
		reports:  reports.NewGenerator(ledgerStore),
	}

	s.mcp = server.NewMCPServer(
		"horizon",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listInvoicesTool, s.handleListInvoices)
	s.mcp.AddTool(budgetStatusTool, s.handleBudgetStatus)
	s.mcp.AddTool(ledgerSummaryTool, s.handleLedgerSummary)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
