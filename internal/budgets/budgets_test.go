package budgets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finhorizon/horizon/internal/auth"
	"github.com/finhorizon/horizon/internal/db"
	"github.com/finhorizon/horizon/internal/notify"
)

func setupTestStore(t *testing.T) (*Store, *notify.Manager) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	manager := notify.NewManager()
	return NewStore(database, manager), manager
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func seedBudget(t *testing.T, store *Store, userID, category, period, limit string) *Budget {
	t.Helper()
	b, err := store.Create(context.Background(), userID, Budget{
		Category: category,
		Period:   period,
		Limit:    mustDecimal(t, limit),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return b
}

func TestCreateStartsAtZero(t *testing.T) {
	store, _ := setupTestStore(t)

	b := seedBudget(t, store, "u1", "food", "2026-08", "500")
	if !b.Spent.IsZero() || b.Warned || b.Exceeded {
		t.Errorf("expected fresh budget, got %+v", b)
	}
}

func TestDuplicateCategoryPeriod(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	seedBudget(t, store, "u1", "food", "2026-08", "500")

	_, err := store.Create(ctx, "u1", Budget{Category: "food", Period: "2026-08", Limit: mustDecimal(t, "100")})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Same category in a different period is fine.
	if _, err := store.Create(ctx, "u1", Budget{Category: "food", Period: "2026-09", Limit: mustDecimal(t, "100")}); err != nil {
		t.Fatalf("different period: %v", err)
	}
}

func TestWarningFiresOnceAtEightyPercent(t *testing.T) {
	store, manager := setupTestStore(t)
	ctx := context.Background()
	b := seedBudget(t, store, "u1", "food", "2026-08", "100")

	if _, err := store.RecordSpend(ctx, "u1", b.ID, mustDecimal(t, "79.99")); err != nil {
		t.Fatalf("RecordSpend: %v", err)
	}
	if n := manager.ForUser("u1").Len(); n != 0 {
		t.Fatalf("expected no notifications below 80%%, got %d", n)
	}

	if _, err := store.RecordSpend(ctx, "u1", b.ID, mustDecimal(t, "0.01")); err != nil {
		t.Fatalf("RecordSpend: %v", err)
	}
	list := manager.ForUser("u1").List()
	if len(list) != 1 || list[0].Category != notify.CategoryBudgetWarning {
		t.Fatalf("expected one budget-warning, got %+v", list)
	}

	// Further spend under the limit does not repeat the warning.
	if _, err := store.RecordSpend(ctx, "u1", b.ID, mustDecimal(t, "5")); err != nil {
		t.Fatalf("RecordSpend: %v", err)
	}
	if n := manager.ForUser("u1").Len(); n != 1 {
		t.Errorf("expected warning to fire once, got %d notifications", n)
	}
}

func TestExceededFiresAtLimit(t *testing.T) {
	store, manager := setupTestStore(t)
	ctx := context.Background()
	b := seedBudget(t, store, "u1", "travel", "2026-08", "100")

	if _, err := store.RecordSpend(ctx, "u1", b.ID, mustDecimal(t, "90")); err != nil {
		t.Fatalf("RecordSpend: %v", err)
	}
	if _, err := store.RecordSpend(ctx, "u1", b.ID, mustDecimal(t, "10")); err != nil {
		t.Fatalf("RecordSpend: %v", err)
	}

	list := manager.ForUser("u1").List()
	if len(list) != 2 {
		t.Fatalf("expected warning then exceeded, got %+v", list)
	}
	// Newest first.
	if list[0].Category != notify.CategoryBudgetExceeded || list[1].Category != notify.CategoryBudgetWarning {
		t.Errorf("unexpected categories: %s, %s", list[0].Category, list[1].Category)
	}
}

func TestSingleJumpPastLimitEmitsExceededOnly(t *testing.T) {
	store, manager := setupTestStore(t)
	b := seedBudget(t, store, "u1", "gear", "2026-08", "100")

	if _, err := store.RecordSpend(context.Background(), "u1", b.ID, mustDecimal(t, "150")); err != nil {
		t.Fatalf("RecordSpend: %v", err)
	}

	list := manager.ForUser("u1").List()
	if len(list) != 1 || list[0].Category != notify.CategoryBudgetExceeded {
		t.Fatalf("expected single budget-exceeded, got %+v", list)
	}
}

func TestRefundReArmsThresholds(t *testing.T) {
	store, manager := setupTestStore(t)
	ctx := context.Background()
	b := seedBudget(t, store, "u1", "food", "2026-08", "100")

	if _, err := store.RecordSpend(ctx, "u1", b.ID, mustDecimal(t, "120")); err != nil {
		t.Fatalf("RecordSpend: %v", err)
	}
	if _, err := store.RecordSpend(ctx, "u1", b.ID, mustDecimal(t, "-60")); err != nil {
		t.Fatalf("refund: %v", err)
	}
	got, err := store.Get(ctx, "u1", b.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Warned || got.Exceeded {
		t.Errorf("expected thresholds re-armed after refund, got %+v", got)
	}

	if _, err := store.RecordSpend(ctx, "u1", b.ID, mustDecimal(t, "30")); err != nil {
		t.Fatalf("RecordSpend: %v", err)
	}
	// exceeded (120), warning after refund crossing again (90) = 2 total.
	if n := manager.ForUser("u1").Len(); n != 2 {
		t.Errorf("expected 2 notifications, got %d", n)
	}
}

func TestApplySpendMissingBudgetIsNoop(t *testing.T) {
	store, manager := setupTestStore(t)

	if err := store.ApplySpend(context.Background(), "u1", "nonexistent", "2026-08", mustDecimal(t, "10")); err != nil {
		t.Fatalf("ApplySpend: %v", err)
	}
	if n := manager.ForUser("u1").Len(); n != 0 {
		t.Errorf("expected no notifications, got %d", n)
	}
}

func setupTestRouter(t *testing.T, userID string) (*Store, chi.Router) {
	t.Helper()
	store, _ := setupTestStore(t)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), userID)))
		})
	})
	RegisterRoutes(r, store, nil)
	return store, r
}

func TestCreateHandlerValidation(t *testing.T) {
	_, r := setupTestRouter(t, "u1")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing category", map[string]any{"period": "2026-08", "limit": "100"}},
		{"bad period", map[string]any{"category": "food", "period": "August 2026", "limit": "100"}},
		{"bad month", map[string]any{"category": "food", "period": "2026-13", "limit": "100"}},
		{"zero limit", map[string]any{"category": "food", "period": "2026-08", "limit": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, _ := json.Marshal(tt.body)
			req := httptest.NewRequest("POST", "/api/budgets", bytes.NewReader(data))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestSpendEndpoint(t *testing.T) {
	store, r := setupTestRouter(t, "u1")
	b := seedBudget(t, store, "u1", "food", "2026-08", "500")

	data, _ := json.Marshal(map[string]any{"amount": "120.50"})
	req := httptest.NewRequest("POST", "/api/budgets/"+b.ID+"/spend", bytes.NewReader(data))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	var got Budget
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Spent.Equal(mustDecimal(t, "120.50")) {
		t.Errorf("spent = %s, want 120.50", got.Spent)
	}
}
