package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/finhorizon/horizon/internal/auth"
)

func setupRouter(t *testing.T, userID string) (*Manager, chi.Router) {
	t.Helper()
	manager := NewManager()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), userID)))
		})
	})
	RegisterRoutes(r, manager)
	return manager, r
}

func postDraft(t *testing.T, r chi.Router, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/notifications/", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddHandlerAcceptsDeclaredCategoryAndPriority(t *testing.T) {
	manager, r := setupRouter(t, "alice")

	w := postDraft(t, r, testDraft(PriorityHigh))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if got := manager.ForUser("alice").Len(); got != 1 {
		t.Fatalf("expected 1 stored notification, got %d", got)
	}
}

func TestAddHandlerDefaultsCategoryAndPriority(t *testing.T) {
	manager, r := setupRouter(t, "alice")

	w := postDraft(t, r, map[string]string{"title": "Heads up", "message": "Quarterly close starts Monday"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	n := manager.ForUser("alice").List()[0]
	if n.Category != CategorySystem {
		t.Errorf("category = %q, want %q", n.Category, CategorySystem)
	}
	if n.Priority != PriorityLow {
		t.Errorf("priority = %q, want %q", n.Priority, PriorityLow)
	}
}

func TestAddHandlerRejectsUnknownCategoryAndPriority(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{"unknown category", map[string]string{
			"title": "t", "message": "m", "category": "totally-bogus",
		}},
		{"unknown priority", map[string]string{
			"title": "t", "message": "m", "category": "system", "priority": "urgent!!",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, r := setupRouter(t, "alice")

			w := postDraft(t, r, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if got := manager.ForUser("alice").Len(); got != 0 {
				t.Errorf("expected nothing stored, got %d", got)
			}
		})
	}
}
