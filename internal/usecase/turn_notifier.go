package usecase

import "sync"

// TurnNotifier edge-detects "it is now the user's turn" per session. The
// callback fires only on the false-to-true transition and re-arms once the
// flag drops back to false, so a later turn in another round fires again.
type TurnNotifier struct {
	mu       sync.Mutex
	previous map[string]bool
	notify   func(sessionID string)
}

func NewTurnNotifier(notify func(sessionID string)) *TurnNotifier {
	return &TurnNotifier{
		previous: make(map[string]bool),
		notify:   notify,
	}
}

// Observe records the latest is-user-turn value and reports whether the
// notification fired.
func (n *TurnNotifier) Observe(sessionID string, isUserTurn bool) bool {
	n.mu.Lock()
	was := n.previous[sessionID]
	n.previous[sessionID] = isUserTurn
	n.mu.Unlock()

	if was || !isUserTurn {
		return false
	}
	if n.notify != nil {
		n.notify(sessionID)
	}
	return true
}

// Forget drops tracked state for a finished session.
func (n *TurnNotifier) Forget(sessionID string) {
	n.mu.Lock()
	delete(n.previous, sessionID)
	n.mu.Unlock()
}
