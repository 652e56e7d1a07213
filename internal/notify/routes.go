package notify

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finhorizon/horizon/internal/auth"
)

// RegisterRoutes mounts the notification endpoints. The router is expected
// to already be behind the auth middleware.
func RegisterRoutes(r chi.Router, manager *Manager) {
	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/", handleList(manager))
		r.Get("/unread-count", handleUnreadCount(manager))
		r.Post("/", handleAdd(manager))
		r.Post("/read-all", handleMarkAllRead(manager))
		r.Post("/{id}/read", handleMarkRead(manager))
		r.Delete("/", handleClear(manager))
		r.Delete("/{id}", handleRemove(manager))
	})
}

func handleList(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := manager.ForUser(auth.UserIDFrom(r.Context()))

		list := store.List()
		if list == nil {
			list = []Notification{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"notifications": list,
			"unread_count":  store.UnreadCount(),
		})
	}
}

func handleUnreadCount(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := manager.ForUser(auth.UserIDFrom(r.Context()))
		writeJSON(w, http.StatusOK, map[string]int{"unread_count": store.UnreadCount()})
	}
}

func handleAdd(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft Draft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if draft.Title == "" || draft.Message == "" {
			http.Error(w, `{"error":"title and message are required"}`, http.StatusBadRequest)
			return
		}
		if draft.Category == "" {
			draft.Category = CategorySystem
		}
		if draft.Priority == "" {
			draft.Priority = PriorityLow
		}
		if !draft.Category.Valid() {
			http.Error(w, `{"error":"unknown category"}`, http.StatusBadRequest)
			return
		}
		if !draft.Priority.Valid() {
			http.Error(w, `{"error":"unknown priority"}`, http.StatusBadRequest)
			return
		}

		store := manager.ForUser(auth.UserIDFrom(r.Context()))
		n, toast := store.Add(draft)

		writeJSON(w, http.StatusCreated, map[string]any{
			"notification": n,
			"toast":        toast,
		})
	}
}

func handleMarkRead(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := manager.ForUser(auth.UserIDFrom(r.Context()))
		store.MarkRead(chi.URLParam(r, "id"))
		writeJSON(w, http.StatusOK, map[string]int{"unread_count": store.UnreadCount()})
	}
}

func handleMarkAllRead(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := manager.ForUser(auth.UserIDFrom(r.Context()))
		store.MarkAllRead()
		writeJSON(w, http.StatusOK, map[string]int{"unread_count": 0})
	}
}

func handleRemove(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := manager.ForUser(auth.UserIDFrom(r.Context()))
		store.Remove(chi.URLParam(r, "id"))
		writeJSON(w, http.StatusOK, map[string]int{"count": store.Len()})
	}
}

func handleClear(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := manager.ForUser(auth.UserIDFrom(r.Context()))
		store.Clear()
		writeJSON(w, http.StatusOK, map[string]int{"count": 0})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
