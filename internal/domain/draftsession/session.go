package draftsession

import (
	"fmt"

	"github.com/draftline/draftline/internal/domain/draftboard"
)

// NewSession starts a session at pick 1, round 1.
func NewSession(id, leagueID string, userPickPosition, totalRounds, teamCount int, liveSynced bool) (*Session, error) {
	s := &Session{
		ID:               id,
		LeagueID:         leagueID,
		TotalRounds:      totalRounds,
		TeamCount:        teamCount,
		UserPickPosition: userPickPosition,
		CurrentPick:      1,
		CurrentRound:     1,
		IsActive:         true,
		IsLiveSynced:     liveSynced,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// TotalPicks is the number of selections in a complete draft.
func (s *Session) TotalPicks() int {
	return s.TotalRounds * s.TeamCount
}

// ApplyPick records pick as the session's next selection.
//
// A retry of an already recorded pick with the same player is a no-op, so
// duplicate push delivery converges instead of erroring. A pick behind
// CurrentPick that does not match the record fails with ErrStalePick; a pick
// ahead of CurrentPick fails with ErrOutOfOrderPick and must be resolved by
// an authoritative fetch.
func (s *Session) ApplyPick(pick Pick) error {
	if pick.PickNumber < s.CurrentPick {
		if s.hasRecordedPick(pick.PickNumber, pick.PlayerID) {
			return nil
		}
		return fmt.Errorf("%w: pick %d already passed (current %d)", ErrStalePick, pick.PickNumber, s.CurrentPick)
	}

	if !s.IsActive {
		return fmt.Errorf("%w: session %s", ErrSessionInactive, s.ID)
	}

	if pick.PickNumber != s.CurrentPick {
		return fmt.Errorf("%w: got %d, expected %d", ErrOutOfOrderPick, pick.PickNumber, s.CurrentPick)
	}

	pick.Round = draftboard.RoundOf(pick.PickNumber, s.TeamCount)
	if slot := draftboard.SlotForPick(pick.PickNumber, s.TeamCount); slot == s.UserPickPosition-1 {
		pick.DraftedByUser = true
	}

	s.Picks = append(s.Picks, pick)
	s.CurrentPick++
	s.CurrentRound = draftboard.RoundOf(s.CurrentPick, s.TeamCount)

	if s.CurrentPick > s.TotalPicks() {
		s.IsActive = false
		s.CurrentRound = s.TotalRounds
		s.IsUserTurn = false
	}

	return nil
}

// PickAt returns the recorded pick with the given number, if any.
func (s *Session) PickAt(pickNumber int) (Pick, bool) {
	for i := len(s.Picks) - 1; i >= 0; i-- {
		if s.Picks[i].PickNumber == pickNumber {
			return s.Picks[i], true
		}
	}
	return Pick{}, false
}

func (s *Session) hasRecordedPick(pickNumber int, playerID string) bool {
	p, ok := s.PickAt(pickNumber)
	return ok && p.PlayerID == playerID
}

// ToggleSync flips the live-sync flag. It does not start or stop any poll
// loop itself; the reconciler observes the flag.
func (s *Session) ToggleSync(enable bool) {
	s.IsLiveSynced = enable
}

// NextUserPick returns the smallest pick number >= CurrentPick owned by the
// user's slot, computed per round in closed form.
func (s *Session) NextUserPick() (int, bool) {
	if !s.IsActive {
		return 0, false
	}

	slot := s.UserPickPosition - 1
	for round := draftboard.RoundOf(s.CurrentPick, s.TeamCount); round <= s.TotalRounds; round++ {
		pick := draftboard.PickNumber(round, slot, s.TeamCount)
		if pick >= s.CurrentPick {
			return pick, true
		}
	}

	return 0, false
}

// PicksUntilUserTurn reports how many selections remain before the user is
// on the clock; 0 means it is the user's turn now.
func (s *Session) PicksUntilUserTurn() (int, bool) {
	next, ok := s.NextUserPick()
	if !ok {
		return 0, false
	}

	remaining := next - s.CurrentPick
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// RecordSyncError appends msg to the bounded sync-error list, dropping the
// oldest entries beyond cap.
func (s *Session) RecordSyncError(msg string, cap int) {
	if msg == "" {
		return
	}

	s.SyncErrors = append(s.SyncErrors, msg)
	if cap > 0 && len(s.SyncErrors) > cap {
		s.SyncErrors = s.SyncErrors[len(s.SyncErrors)-cap:]
	}
}
