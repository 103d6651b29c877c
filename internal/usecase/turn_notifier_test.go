package usecase

import "testing"

func TestTurnNotifier_FiresOnRisingEdgeOnly(t *testing.T) {
	t.Parallel()

	var fired []int
	n := NewTurnNotifier(nil)

	sequence := []bool{false, true, true, true, false, true}
	for i, v := range sequence {
		if n.Observe("sess-1", v) {
			fired = append(fired, i)
		}
	}

	if len(fired) != 2 || fired[0] != 1 || fired[1] != 5 {
		t.Fatalf("fired at %v, want [1 5]", fired)
	}
}

func TestTurnNotifier_TracksSessionsIndependently(t *testing.T) {
	t.Parallel()

	calls := map[string]int{}
	n := NewTurnNotifier(func(sessionID string) { calls[sessionID]++ })

	n.Observe("a", true)
	n.Observe("b", false)
	n.Observe("b", true)
	n.Observe("a", true)

	if calls["a"] != 1 || calls["b"] != 1 {
		t.Fatalf("calls = %v, want one per session", calls)
	}
}

func TestTurnNotifier_ForgetRearms(t *testing.T) {
	t.Parallel()

	n := NewTurnNotifier(nil)
	if !n.Observe("sess-1", true) {
		t.Fatal("first true should fire")
	}
	n.Forget("sess-1")
	if !n.Observe("sess-1", true) {
		t.Fatal("forgotten session should fire again on true")
	}
}
