package presence

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finhorizon/horizon/internal/auth"
)

// RegisterRoutes mounts the presence endpoints. The router is expected to
// already be behind the auth middleware.
func RegisterRoutes(r chi.Router, store *Store, authStore *auth.Store, hub *Hub, pollSeconds int) {
	r.Route("/api/presence", func(r chi.Router) {
		r.Post("/heartbeat", handleHeartbeat(store, authStore, hub))
		r.Post("/offline", handleOffline(store, hub))
		r.Get("/online", handleOnline(store, pollSeconds))
		r.Get("/ws", hub.HandleWS)
	})
}

type heartbeatRequest struct {
	Path string `json:"path"`
}

func handleHeartbeat(store *Store, authStore *auth.Store, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req heartbeatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Path == "" {
			req.Path = "/"
		}

		userID := auth.UserIDFrom(r.Context())

		// Display name from the profile, falling back to the email local-part.
		displayName := ""
		if profile, err := authStore.GetProfile(r.Context(), userID); err == nil && profile != nil {
			displayName = profile.DisplayName
		}
		if displayName == "" {
			if user, err := authStore.GetUser(r.Context(), userID); err == nil && user != nil {
				displayName = auth.LocalPart(user.Email)
			}
		}

		rec, err := store.Heartbeat(r.Context(), userID, displayName, req.Path)
		if err != nil {
			log.Printf("presence: heartbeat: %v", err)
			http.Error(w, `{"error":"could not record presence"}`, http.StatusInternalServerError)
			return
		}

		hub.Broadcast()
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleOffline(store *Store, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.MarkOffline(r.Context(), auth.UserIDFrom(r.Context())); err != nil {
			log.Printf("presence: offline: %v", err)
			http.Error(w, `{"error":"could not update presence"}`, http.StatusInternalServerError)
			return
		}

		hub.Broadcast()
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleOnline(store *Store, pollSeconds int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := store.Online(r.Context(), auth.UserIDFrom(r.Context()))
		if err != nil {
			log.Printf("presence: online: %v", err)
			http.Error(w, `{"error":"could not load presence"}`, http.StatusInternalServerError)
			return
		}
		if users == nil {
			users = []Record{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"users":        users,
			"poll_seconds": pollSeconds,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
