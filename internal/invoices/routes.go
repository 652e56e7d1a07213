package invoices

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finhorizon/horizon/internal/auth"
)

// Recorder receives audit events for invoice mutations.
type Recorder interface {
	Record(actorID, action, scope, scopeID, detail string)
}

// RegisterRoutes mounts invoice endpoints under /api/invoices.
func RegisterRoutes(r chi.Router, store *Store, recorder Recorder) {
	r.Route("/api/invoices", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store, recorder))
		r.Get("/{id}", handleGet(store))
		r.Put("/{id}", handleUpdate(store, recorder))
		r.Delete("/{id}", handleDelete(store, recorder))
		r.Post("/{id}/pay", handleMarkPaid(store, recorder))
	})
}

type invoiceRequest struct {
	Number     string          `json:"number"`
	ClientName string          `json:"client_name"`
	IssueDate  string          `json:"issue_date"`
	DueDate    string          `json:"due_date"`
	Amount     decimal.Decimal `json:"amount"`
	Status     Status          `json:"status"`
}

func (req invoiceRequest) validate() string {
	switch {
	case req.Number == "":
		return "number is required"
	case req.ClientName == "":
		return "client_name is required"
	case !validDate(req.IssueDate):
		return "issue_date must be YYYY-MM-DD"
	case !validDate(req.DueDate):
		return "due_date must be YYYY-MM-DD"
	case req.DueDate < req.IssueDate:
		return "due_date must not precede issue_date"
	case req.Amount.IsNegative():
		return "amount must not be negative"
	case req.Status != "" && !req.Status.Valid():
		return "status must be draft, sent, paid or overdue"
	}
	return ""
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status Status
		if v := r.URL.Query().Get("status"); v != "" {
			status = Status(v)
		}

		invoices, err := store.List(r.Context(), auth.UserIDFrom(r.Context()), status)
		if err != nil {
			http.Error(w, `{"error":"listing invoices failed"}`, http.StatusInternalServerError)
			return
		}
		if invoices == nil {
			invoices = []Invoice{}
		}
		writeJSON(w, http.StatusOK, invoices)
	}
}

func handleCreate(store *Store, recorder Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req invoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if msg := req.validate(); msg != "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
			return
		}

		userID := auth.UserIDFrom(r.Context())
		inv, err := store.Create(r.Context(), userID, Invoice{
			Number:     req.Number,
			ClientName: req.ClientName,
			IssueDate:  req.IssueDate,
			DueDate:    req.DueDate,
			Amount:     req.Amount,
			Status:     req.Status,
		})
		if err != nil {
			if errors.Is(err, ErrDuplicateNumber) {
				http.Error(w, `{"error":"invoice number already in use"}`, http.StatusConflict)
				return
			}
			http.Error(w, `{"error":"creating invoice failed"}`, http.StatusInternalServerError)
			return
		}
		if recorder != nil {
			recorder.Record(userID, "create", "invoice", inv.ID, inv.Number)
		}
		writeJSON(w, http.StatusCreated, inv)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := store.Get(r.Context(), auth.UserIDFrom(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, `{"error":"invoice not found"}`, status)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func handleUpdate(store *Store, recorder Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req invoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if msg := req.validate(); msg != "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
			return
		}

		userID := auth.UserIDFrom(r.Context())
		status := req.Status
		if status == "" {
			status = StatusDraft
		}
		inv, err := store.Update(r.Context(), userID, Invoice{
			ID:         chi.URLParam(r, "id"),
			Number:     req.Number,
			ClientName: req.ClientName,
			IssueDate:  req.IssueDate,
			DueDate:    req.DueDate,
			Amount:     req.Amount,
			Status:     status,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, `{"error":"invoice not found"}`, http.StatusNotFound)
			case errors.Is(err, ErrDuplicateNumber):
				http.Error(w, `{"error":"invoice number already in use"}`, http.StatusConflict)
			default:
				http.Error(w, `{"error":"updating invoice failed"}`, http.StatusInternalServerError)
			}
			return
		}
		if recorder != nil {
			recorder.Record(userID, "update", "invoice", inv.ID, inv.Number)
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func handleDelete(store *Store, recorder Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFrom(r.Context())
		id := chi.URLParam(r, "id")
		if err := store.Delete(r.Context(), userID, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, `{"error":"invoice not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"deleting invoice failed"}`, http.StatusInternalServerError)
			return
		}
		if recorder != nil {
			recorder.Record(userID, "delete", "invoice", id, "")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMarkPaid(store *Store, recorder Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFrom(r.Context())
		inv, err := store.MarkPaid(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, `{"error":"invoice not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"marking invoice paid failed"}`, http.StatusInternalServerError)
			return
		}
		if recorder != nil {
			recorder.Record(userID, "mark-paid", "invoice", inv.ID, inv.Number)
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
