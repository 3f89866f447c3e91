package rewind

import (
	"sync"
	"testing"
)

func TestAddActionWithNoAmbientHistoryAppliesFireAndForget(t *testing.T) {
	var log []string
	a := &recordingAction{name: "solo", log: &log}

	if err := AddAction(a); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	assertStringSlice(t, log, []string{"apply:solo"})
	if LastAction() != nil {
		t.Fatal("LastAction() should be nil with no ambient history bound")
	}
}

func TestAddActionRecordsUnderAmbientCommand(t *testing.T) {
	h := NewHistory()
	var log []string
	a := &recordingAction{name: "bound", log: &log}

	h.BeginCommand("x")
	if err := AddAction(a); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if LastAction() != a {
		t.Fatal("LastAction() should return the action just recorded")
	}
	h.EndCommand(false)

	if err := h.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	assertStringSlice(t, log, []string{"apply:bound", "revert:bound"})
}

func TestAddActionFireAndForgetWhileSuspended(t *testing.T) {
	h := NewHistory()
	var log []string
	a := &recordingAction{name: "suspended", log: &log}

	h.BeginCommand("x")
	h.SuspendCommand()
	if err := AddAction(a); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if LastAction() != nil {
		t.Fatal("LastAction() should be nil while suspended")
	}
	h.ResumeCommand()
	h.EndCommand(false)

	if h.Count() != 0 {
		t.Fatalf("Count() = %d, want 0 (suspended-only command elided)", h.Count())
	}
	if err := h.Undo(); err == nil {
		t.Fatal("expected ErrNothingToUndo: the suspended write was never recorded")
	}
	assertStringSlice(t, log, []string{"apply:suspended"})
}

func TestAmbientBindingIsPerGoroutine(t *testing.T) {
	hA := NewHistory()
	hB := NewHistory()

	var wg sync.WaitGroup
	wg.Add(2)

	results := make(chan *History, 2)

	start := func(h *History) {
		defer wg.Done()
		h.BeginCommand("x")
		defer h.EndCommand(false)
		results <- currentHistory()
	}

	go start(hA)
	go start(hB)
	wg.Wait()
	close(results)

	seen := map[*History]bool{}
	for h := range results {
		seen[h] = true
	}
	if !seen[hA] || !seen[hB] {
		t.Fatal("each goroutine should observe its own ambient history")
	}
	if currentHistory() != nil {
		t.Fatal("the test goroutine itself should have no ambient history bound")
	}
}
