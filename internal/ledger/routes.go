package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finhorizon/horizon/internal/auth"
)

// Recorder receives audit events for ledger mutations.
type Recorder interface {
	Record(actorID, action, scope, scopeID, detail string)
}

// SpendApplier books expense amounts against the matching budget, when
// one exists for the entry's category and month.
type SpendApplier interface {
	ApplySpend(ctx context.Context, userID, category, period string, amount decimal.Decimal) error
}

// RegisterRoutes mounts accounting entry endpoints under /api/entries.
func RegisterRoutes(r chi.Router, store *Store, recorder Recorder, budgets SpendApplier) {
	r.Route("/api/entries", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store, recorder, budgets))
		r.Get("/{id}", handleGet(store))
		r.Put("/{id}", handleUpdate(store, recorder))
		r.Delete("/{id}", handleDelete(store, recorder))
	})
}

type entryRequest struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Direction   Direction       `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
}

func (req entryRequest) validate() string {
	switch {
	case !ValidDate(req.Date):
		return "date must be YYYY-MM-DD"
	case req.Description == "":
		return "description is required"
	case !req.Direction.Valid():
		return "direction must be income or expense"
	case req.Amount.IsNegative():
		return "amount must not be negative"
	}
	return ""
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := ListFilter{
			Since:    q.Get("since"),
			Until:    q.Get("until"),
			Category: q.Get("category"),
		}
		if v := q.Get("direction"); v != "" {
			filter.Direction = Direction(v)
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}
		if v := q.Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Offset = n
			}
		}

		entries, err := store.List(r.Context(), auth.UserIDFrom(r.Context()), filter)
		if err != nil {
			http.Error(w, `{"error":"listing entries failed"}`, http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func handleCreate(store *Store, recorder Recorder, budgets SpendApplier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if msg := req.validate(); msg != "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
			return
		}

		userID := auth.UserIDFrom(r.Context())
		entry, err := store.Create(r.Context(), userID, Entry{
			Date:        req.Date,
			Description: req.Description,
			Category:    req.Category,
			Direction:   req.Direction,
			Amount:      req.Amount,
		})
		if err != nil {
			http.Error(w, `{"error":"creating entry failed"}`, http.StatusInternalServerError)
			return
		}
		if recorder != nil {
			recorder.Record(userID, "create", "entry", entry.ID, entry.Description)
		}
		if budgets != nil && entry.Direction == DirectionExpense && entry.Category != "" {
			if err := budgets.ApplySpend(r.Context(), userID, entry.Category, Period(entry.Date), entry.Amount); err != nil {
				log.Printf("ledger: applying spend to budget: %v", err)
			}
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := store.Get(r.Context(), auth.UserIDFrom(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, `{"error":"entry not found"}`, status)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func handleUpdate(store *Store, recorder Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if msg := req.validate(); msg != "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
			return
		}

		userID := auth.UserIDFrom(r.Context())
		entry, err := store.Update(r.Context(), userID, Entry{
			ID:          chi.URLParam(r, "id"),
			Date:        req.Date,
			Description: req.Description,
			Category:    req.Category,
			Direction:   req.Direction,
			Amount:      req.Amount,
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, `{"error":"entry not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"updating entry failed"}`, http.StatusInternalServerError)
			return
		}
		if recorder != nil {
			recorder.Record(userID, "update", "entry", entry.ID, entry.Description)
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func handleDelete(store *Store, recorder Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFrom(r.Context())
		id := chi.URLParam(r, "id")
		if err := store.Delete(r.Context(), userID, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, `{"error":"entry not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"deleting entry failed"}`, http.StatusInternalServerError)
			return
		}
		if recorder != nil {
			recorder.Record(userID, "delete", "entry", id, "")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
