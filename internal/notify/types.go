package notify

import "time"

// Category identifies what triggered a notification. The set is closed;
// the dashboard maps each category to its own icon.
type Category string

const (
	CategoryBudgetWarning   Category = "budget-warning"
	CategoryBudgetExceeded  Category = "budget-exceeded"
	CategoryPaymentDue      Category = "payment-due"
	CategoryPaymentReceived Category = "payment-received"
	CategoryInvoiceOverdue  Category = "invoice-overdue"
	CategorySystem          Category = "system"
)

// Valid reports whether the category is one of the declared set.
func (c Category) Valid() bool {
	switch c {
	case CategoryBudgetWarning, CategoryBudgetExceeded, CategoryPaymentDue,
		CategoryPaymentReceived, CategoryInvoiceOverdue, CategorySystem:
		return true
	}
	return false
}

// Priority indicates the importance of a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority is one of the declared set.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ToastSeverity is the styling the client applies to the transient toast
// shown when a notification arrives.
type ToastSeverity string

const (
	ToastError   ToastSeverity = "error"
	ToastWarning ToastSeverity = "warning"
	ToastSuccess ToastSeverity = "success"
)

// Notification is a single in-memory notification record.
type Notification struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  Priority  `json:"priority"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Draft is the caller-supplied part of a notification. The store assigns
// the id, timestamp, and unread flag.
type Draft struct {
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Priority Priority `json:"priority"`
	Link     string   `json:"link,omitempty"`
}

// ToastFor maps a priority to the toast severity shown to the user.
func ToastFor(p Priority) ToastSeverity {
	switch p {
	case PriorityHigh:
		return ToastError
	case PriorityMedium:
		return ToastWarning
	default:
		return ToastSuccess
	}
}
