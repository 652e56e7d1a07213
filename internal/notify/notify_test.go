package notify

import (
	"testing"
	"time"
)

func testDraft(priority Priority) Draft {
	return Draft{
		Category: CategoryPaymentDue,
		Title:    "Payment reminder",
		Message:  "Invoice INV-007 is due tomorrow",
		Priority: priority,
		Link:     "/invoices",
	}
}

func TestAddAssignsIDAndTimestamp(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	store := NewStoreWithClock(func() time.Time { return fixed })

	n, toast := store.Add(testDraft(PriorityLow))

	if n.ID == "" {
		t.Error("expected generated id")
	}
	if !n.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", n.CreatedAt, fixed)
	}
	if n.Read {
		t.Error("new notifications must be unread")
	}
	if toast != ToastSuccess {
		t.Errorf("toast = %q, want success", toast)
	}
}

func TestToastSeverityMapping(t *testing.T) {
	tests := []struct {
		priority Priority
		want     ToastSeverity
	}{
		{PriorityHigh, ToastError},
		{PriorityMedium, ToastWarning},
		{PriorityLow, ToastSuccess},
		{Priority(""), ToastSuccess},
	}

	for _, tt := range tests {
		if got := ToastFor(tt.priority); got != tt.want {
			t.Errorf("ToastFor(%q) = %q, want %q", tt.priority, got, tt.want)
		}
	}
}

func TestListIsNewestFirst(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	store := NewStoreWithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	})

	first, _ := store.Add(testDraft(PriorityLow))
	second, _ := store.Add(testDraft(PriorityMedium))
	third, _ := store.Add(testDraft(PriorityHigh))

	list := store.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(list))
	}
	if list[0].ID != third.ID || list[1].ID != second.ID || list[2].ID != first.ID {
		t.Error("expected newest-first insertion order")
	}
	for i := 0; i < len(list)-1; i++ {
		if list[i].CreatedAt.Before(list[i+1].CreatedAt) {
			t.Errorf("list[%d] older than list[%d]", i, i+1)
		}
	}
}

func TestLengthTracksAddsRemovesClears(t *testing.T) {
	store := NewStore()

	var ids []string
	for i := 0; i < 5; i++ {
		n, _ := store.Add(testDraft(PriorityLow))
		ids = append(ids, n.ID)
	}
	if store.Len() != 5 {
		t.Fatalf("expected 5, got %d", store.Len())
	}

	store.Remove(ids[2])
	store.Remove(ids[4])
	if store.Len() != 3 {
		t.Fatalf("expected 3 after removes, got %d", store.Len())
	}

	// Removing an absent id is a no-op.
	store.Remove("nope")
	if store.Len() != 3 {
		t.Fatalf("expected 3 after no-op remove, got %d", store.Len())
	}

	store.Clear()
	if store.Len() != 0 {
		t.Fatalf("expected empty after clear, got %d", store.Len())
	}
}

func TestMarkAllReadZeroesUnreadCount(t *testing.T) {
	store := NewStore()
	for i := 0; i < 4; i++ {
		store.Add(testDraft(PriorityMedium))
	}
	store.MarkRead(store.List()[1].ID)
	if store.UnreadCount() != 3 {
		t.Fatalf("expected 3 unread, got %d", store.UnreadCount())
	}

	store.MarkAllRead()
	if store.UnreadCount() != 0 {
		t.Fatalf("expected 0 unread after MarkAllRead, got %d", store.UnreadCount())
	}

	// Idempotent.
	store.MarkAllRead()
	if store.UnreadCount() != 0 {
		t.Fatalf("expected 0 unread, got %d", store.UnreadCount())
	}
}

func TestMarkReadAbsentIDIsNoOp(t *testing.T) {
	store := NewStore()
	store.Add(testDraft(PriorityLow))

	store.MarkRead("missing")
	if store.UnreadCount() != 1 {
		t.Errorf("expected 1 unread, got %d", store.UnreadCount())
	}
}

func TestHighPriorityLifecycleScenario(t *testing.T) {
	store := NewStore()

	n, toast := store.Add(testDraft(PriorityHigh))
	if toast != ToastError {
		t.Errorf("toast = %q, want error", toast)
	}

	store.MarkRead(n.ID)
	store.Remove(n.ID)

	if store.Len() != 0 {
		t.Errorf("expected empty list, got %d", store.Len())
	}
	if store.UnreadCount() != 0 {
		t.Errorf("expected unread count 0, got %d", store.UnreadCount())
	}
}

func TestManagerSeparatesUsers(t *testing.T) {
	manager := NewManager()

	manager.ForUser("alice").Add(testDraft(PriorityLow))
	manager.ForUser("alice").Add(testDraft(PriorityLow))
	manager.ForUser("bob").Add(testDraft(PriorityHigh))

	if got := manager.ForUser("alice").Len(); got != 2 {
		t.Errorf("alice has %d notifications, want 2", got)
	}
	if got := manager.ForUser("bob").Len(); got != 1 {
		t.Errorf("bob has %d notifications, want 1", got)
	}
}

func TestSimulatorInjectsBelowProbability(t *testing.T) {
	manager := NewManager()
	manager.ForUser("alice") // materialise the store

	sim := NewSimulator(manager, time.Second, 0.3)

	// Draw under the threshold: one template injected.
	sim.SetRand(func() float64 { return 0.1 }, func(n int) int { return 1 })
	sim.Tick()
	if got := manager.ForUser("alice").Len(); got != 1 {
		t.Fatalf("expected 1 injected notification, got %d", got)
	}
	if got := manager.ForUser("alice").List()[0].Category; got != CategoryBudgetWarning {
		t.Errorf("expected template index 1 (budget-warning), got %q", got)
	}

	// Draw at/above the threshold: nothing injected.
	sim.SetRand(func() float64 { return 0.3 }, func(n int) int { return 0 })
	sim.Tick()
	if got := manager.ForUser("alice").Len(); got != 1 {
		t.Errorf("expected no injection at threshold, got %d", got)
	}
}
