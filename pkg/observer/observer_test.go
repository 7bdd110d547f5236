package observer

import "testing"

func TestSubscribeOrder(t *testing.T) {
	n := NewNotifier(nil)

	var order []int
	for i := 1; i <= 3; i++ {
		n.Subscribe(func() { order = append(order, i) })
	}

	n.Notify(false)

	if len(order) != 3 {
		t.Fatalf("delivered to %d handlers, want 3", len(order))
	}
	for i, got := range order {
		if got != i+1 {
			t.Errorf("delivery %d went to handler %d, want %d", i, got, i+1)
		}
	}
}

func TestNotifyGating(t *testing.T) {
	count := 0
	n := NewNotifier(func() int { return count })

	delivered := 0
	n.Subscribe(func() { delivered++ })

	// The first signal always delivers, even with an unchanged count.
	n.Notify(false)
	if delivered != 1 {
		t.Fatalf("delivered = %d after first notify, want 1", delivered)
	}

	// Unchanged count, not forced: suppressed.
	n.Notify(false)
	if delivered != 1 {
		t.Errorf("delivered = %d after redundant notify, want 1", delivered)
	}

	// Count changed: delivers again.
	count = 5
	n.Notify(false)
	if delivered != 2 {
		t.Errorf("delivered = %d after count change, want 2", delivered)
	}

	// Forced: delivers regardless of the count.
	n.Notify(true)
	if delivered != 3 {
		t.Errorf("delivered = %d after forced notify, want 3", delivered)
	}

	// Force still updates the gate, so the next unforced redundant
	// signal stays suppressed.
	n.Notify(false)
	if delivered != 3 {
		t.Errorf("delivered = %d after post-force redundant notify, want 3", delivered)
	}
}

func TestNotifyNoCountFunc(t *testing.T) {
	n := NewNotifier(nil)

	delivered := 0
	n.Subscribe(func() { delivered++ })

	n.Notify(false)
	n.Notify(false)

	if delivered != 2 {
		t.Errorf("delivered = %d, want every notify delivered without gating", delivered)
	}
}

func TestNotifyNoHandlers(t *testing.T) {
	n := NewNotifier(func() int { return 0 })
	// Must not panic with nothing subscribed.
	n.Notify(false)
	n.Notify(true)
}
