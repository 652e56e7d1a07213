package ai

import "context"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest contains the parameters for an upstream completion call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse contains the result of an upstream completion call.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// Provider is the seam between the HTTP handlers and the upstream gateway.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// Prediction is one forecast line on the predictions widget.
type Prediction struct {
	Type       string `json:"type"`
	Summary    string `json:"summary"`
	Confidence int    `json:"confidence"`
}

// PredictionSource tags whether a forecast came from the model or from the
// canned fallback, so callers can tell a real forecast from a placeholder.
type PredictionSource string

const (
	SourceModel    PredictionSource = "model"
	SourceFallback PredictionSource = "fallback"
)

// PredictionResult is the tagged response body for the predictions endpoint.
type PredictionResult struct {
	Source      PredictionSource `json:"source"`
	Reason      string           `json:"reason,omitempty"`
	Predictions []Prediction     `json:"predictions"`
}

// fallbackPredictions is substituted when the upstream response cannot be
// parsed as JSON after fence stripping.
var fallbackPredictions = []Prediction{
	{Type: "revenue", Summary: "Revenue is projected to grow modestly next quarter", Confidence: 87},
	{Type: "expenses", Summary: "Expenses are expected to stay near the current run rate", Confidence: 82},
	{Type: "trend", Summary: "Overall cash flow trend remains mildly positive", Confidence: 79},
}
