package audit

import "time"

// Action describes what was done.
type Action string

const (
	ActionSignup   Action = "signup"
	ActionLogin    Action = "login"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionMarkPaid Action = "mark-paid"
	ActionImport   Action = "import"
)

// Scope describes the kind of record an action applies to.
type Scope string

const (
	ScopeAuth    Scope = "auth"
	ScopeProfile Scope = "profile"
	ScopeEntry   Scope = "entry"
	ScopeInvoice Scope = "invoice"
	ScopeBudget  Scope = "budget"
	ScopeImport  Scope = "import"
)

// Entry is a single audit trail record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id"`
	Action    Action    `json:"action"`
	Scope     Scope     `json:"scope"`
	ScopeID   string    `json:"scope_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}
