package budgets

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finhorizon/horizon/internal/auth"
)

// Recorder receives audit events for budget mutations.
type Recorder interface {
	Record(actorID, action, scope, scopeID, detail string)
}

// RegisterRoutes mounts budget endpoints under /api/budgets.
func RegisterRoutes(r chi.Router, store *Store, recorder Recorder) {
	r.Route("/api/budgets", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store, recorder))
		r.Get("/{id}", handleGet(store))
		r.Put("/{id}", handleUpdateLimit(store, recorder))
		r.Delete("/{id}", handleDelete(store, recorder))
		r.Post("/{id}/spend", handleSpend(store))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		budgets, err := store.List(r.Context(), auth.UserIDFrom(r.Context()), r.URL.Query().Get("period"))
		if err != nil {
			http.Error(w, `{"error":"listing budgets failed"}`, http.StatusInternalServerError)
			return
		}
		if budgets == nil {
			budgets = []Budget{}
		}
		writeJSON(w, http.StatusOK, budgets)
	}
}

func handleCreate(store *Store, recorder Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Category string          `json:"category"`
			Period   string          `json:"period"`
			Limit    decimal.Decimal `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		switch {
		case req.Category == "":
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category is required"})
			return
		case !ValidPeriod(req.Period):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be YYYY-MM"})
			return
		case !req.Limit.IsPositive():
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be positive"})
			return
		}

		userID := auth.UserIDFrom(r.Context())
		b, err := store.Create(r.Context(), userID, Budget{
			Category: req.Category,
			Period:   req.Period,
			Limit:    req.Limit,
		})
		if err != nil {
			if errors.Is(err, ErrDuplicate) {
				http.Error(w, `{"error":"category already budgeted for period"}`, http.StatusConflict)
				return
			}
			http.Error(w, `{"error":"creating budget failed"}`, http.StatusInternalServerError)
			return
		}
		if recorder != nil {
			recorder.Record(userID, "create", "budget", b.ID, b.Category+" "+b.Period)
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := store.Get(r.Context(), auth.UserIDFrom(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, `{"error":"budget not found"}`, status)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func handleUpdateLimit(store *Store, recorder Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Limit decimal.Decimal `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if !req.Limit.IsPositive() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be positive"})
			return
		}

		userID := auth.UserIDFrom(r.Context())
		b, err := store.UpdateLimit(r.Context(), userID, chi.URLParam(r, "id"), req.Limit)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, `{"error":"budget not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"updating budget failed"}`, http.StatusInternalServerError)
			return
		}
		if recorder != nil {
			recorder.Record(userID, "update", "budget", b.ID, b.Category+" "+b.Period)
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func handleDelete(store *Store, recorder Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFrom(r.Context())
		id := chi.URLParam(r, "id")
		if err := store.Delete(r.Context(), userID, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, `{"error":"budget not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"deleting budget failed"}`, http.StatusInternalServerError)
			return
		}
		if recorder != nil {
			recorder.Record(userID, "delete", "budget", id, "")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSpend(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount decimal.Decimal `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Amount.IsZero() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must not be zero"})
			return
		}

		b, err := store.RecordSpend(r.Context(), auth.UserIDFrom(r.Context()), chi.URLParam(r, "id"), req.Amount)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, `{"error":"budget not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"recording spend failed"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
