package ai

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/finhorizon/horizon/internal/auth"
)

const systemPrompt = `You are the Finance-Horizon assistant. You help the user understand their accounting entries, invoices, budgets, and reports. Be concise and concrete. If you are unsure, say so rather than inventing numbers.`

const predictionsPrompt = `Based on typical small-business financials, produce a short financial forecast. Respond with STRICT JSON only, no prose and no code fences, in this exact shape:
[{"type":"revenue","summary":"...","confidence":0-100},{"type":"expenses","summary":"...","confidence":0-100},{"type":"trend","summary":"...","confidence":0-100}]`

// historyLimit is how many trailing conversation turns are forwarded upstream.
const historyLimit = 10

// Handlers carries the dependencies of the two proxy endpoints. memory may
// be nil, in which case no retrieval context is added.
type Handlers struct {
	provider    Provider
	store       *Store
	memory      *Memory
	apiKey      string
	maxTokens   int
	temperature float64
}

// NewHandlers wires the proxy endpoints.
func NewHandlers(provider Provider, store *Store, memory *Memory, apiKey string, maxTokens int, temperature float64) *Handlers {
	return &Handlers{
		provider:    provider,
		store:       store,
		memory:      memory,
		apiKey:      apiKey,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// RegisterRoutes mounts the AI endpoints. They sit outside the auth
// middleware: the hosting platform is the only gatekeeper, matching the
// proxy functions these replace. CORS preflight is answered by the router's
// middleware before reaching these handlers.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/ai", func(r chi.Router) {
		r.Post("/chat", h.handleChat)
		r.Post("/predictions", h.handlePredictions)
	})
}

type chatRequest struct {
	SessionID string    `json:"session_id"`
	Message   string    `json:"message"`
	History   []Message `json:"history"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

func (h *Handlers) handleChat(w http.ResponseWriter, r *http.Request) {
	// Fail fast when the gateway key is missing, whatever the payload.
	if h.apiKey == "" {
		http.Error(w, `{"error":"AI gateway is not configured"}`, http.StatusInternalServerError)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, `{"error":"message is required"}`, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	userID := auth.UserIDFrom(ctx)
	if userID == "" {
		userID = "anonymous"
	}

	// A resumed session must belong to the caller; anything else is
	// indistinguishable from a session that does not exist.
	sessionID := req.SessionID
	if sessionID != "" {
		owner, err := h.store.SessionOwner(ctx, sessionID)
		if err != nil {
			log.Printf("ai: session lookup: %v", err)
			http.Error(w, `{"error":"assistant is unavailable"}`, http.StatusInternalServerError)
			return
		}
		if owner == "" || owner != userID {
			http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
			return
		}
	} else {
		var err error
		if sessionID, err = h.store.CreateSession(ctx, userID); err != nil {
			log.Printf("ai: creating session: %v", err)
			http.Error(w, `{"error":"assistant is unavailable"}`, http.StatusInternalServerError)
			return
		}
	}

	system := systemPrompt
	if h.memory != nil {
		if similar, err := h.memory.Similar(ctx, userID, req.Message, 3); err == nil && len(similar) > 0 {
			system += "\n\nEarlier in this user's conversations:\n- " + strings.Join(similar, "\n- ")
		}
	}

	messages := []Message{{Role: RoleSystem, Content: system}}
	history := req.History
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: req.Message})

	resp, err := h.provider.Complete(ctx, CompletionRequest{
		Messages:    messages,
		MaxTokens:   h.maxTokens,
		Temperature: h.temperature,
	})
	if err != nil {
		// Full detail stays in the server log; the client gets a generic body.
		log.Printf("ai: chat completion: %v", err)
		http.Error(w, `{"error":"assistant is unavailable"}`, http.StatusInternalServerError)
		return
	}

	h.persistTurn(ctx, sessionID, userID, req.Message, resp.Content)

	writeJSON(w, http.StatusOK, chatResponse{SessionID: sessionID, Reply: resp.Content})
}

// persistTurn saves both sides of the exchange and indexes them in memory.
// Failures are logged, not surfaced: the reply already exists.
func (h *Handlers) persistTurn(ctx context.Context, sessionID, userID, question, answer string) {
	if _, err := h.store.AddMessage(ctx, sessionID, RoleUser, question); err != nil {
		log.Printf("ai: saving user turn: %v", err)
	}
	if _, err := h.store.AddMessage(ctx, sessionID, RoleAssistant, answer); err != nil {
		log.Printf("ai: saving assistant turn: %v", err)
	}
	if h.memory != nil {
		if err := h.memory.Remember(ctx, userID, question); err != nil {
			log.Printf("ai: indexing memory: %v", err)
		}
	}
}

type predictionsRequest struct {
	Type string `json:"type"`
}

func (h *Handlers) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if h.apiKey == "" {
		http.Error(w, `{"error":"AI gateway is not configured"}`, http.StatusInternalServerError)
		return
	}

	var req predictionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		http.Error(w, `{"error":"type is required"}`, http.StatusBadRequest)
		return
	}

	resp, err := h.provider.Complete(r.Context(), CompletionRequest{
		Messages:    []Message{{Role: RoleUser, Content: predictionsPrompt}},
		MaxTokens:   h.maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		log.Printf("ai: predictions completion: %v", err)
		http.Error(w, `{"error":"predictions are unavailable"}`, http.StatusInternalServerError)
		return
	}

	result := parsePredictions(resp.Content)
	writeJSON(w, http.StatusOK, result)
}

// parsePredictions strips code fences and parses the upstream text. On any
// parse failure the canned fallback is returned, tagged so callers can tell
// a real forecast from the placeholder.
func parsePredictions(raw string) PredictionResult {
	raw = stripFences(raw)

	var preds []Prediction
	if err := json.Unmarshal([]byte(raw), &preds); err != nil {
		// Some models wrap the array in an object.
		var wrapped struct {
			Predictions []Prediction `json:"predictions"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil || len(wrapped.Predictions) == 0 {
			return PredictionResult{
				Source:      SourceFallback,
				Reason:      "upstream response was not valid JSON",
				Predictions: fallbackPredictions,
			}
		}
		preds = wrapped.Predictions
	}

	if len(preds) == 0 {
		return PredictionResult{
			Source:      SourceFallback,
			Reason:      "upstream response contained no predictions",
			Predictions: fallbackPredictions,
		}
	}

	return PredictionResult{Source: SourceModel, Predictions: preds}
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}

	lines := strings.Split(raw, "\n")
	if len(lines) < 2 {
		return raw
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[1:end], "\n")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
