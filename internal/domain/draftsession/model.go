package draftsession

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrOutOfOrderPick means the pick number is ahead of the session's
	// current pick. The engine never reorders; callers close the gap with an
	// authoritative fetch.
	ErrOutOfOrderPick = errors.New("pick number ahead of current pick")
	// ErrStalePick means the pick number is behind the current pick and does
	// not match any recorded pick.
	ErrStalePick = errors.New("stale pick")
	// ErrSessionInactive means the draft already completed.
	ErrSessionInactive = errors.New("draft session is no longer active")
	// ErrSessionNotFound means no session with the given ID is stored.
	ErrSessionNotFound = errors.New("draft session not found")
)

// Pick is one recorded draft selection.
type Pick struct {
	PlayerID      string
	PlayerName    string
	Position      string
	Team          string
	PickNumber    int
	Round         int
	TeamID        string
	DraftedByUser bool
}

// Session is the authoritative in-memory record of one draft's progress.
//
// Invariants held by the methods in this package:
//   - CurrentPick == max recorded pick number + 1 (1 when no picks).
//   - CurrentRound == ceil(CurrentPick / TeamCount).
//   - Picks is ordered by PickNumber with no duplicates.
//   - Once IsActive is false no further picks are appended.
type Session struct {
	ID               string
	LeagueID         string
	TotalRounds      int
	TeamCount        int
	UserPickPosition int // 1-based draft slot declared by the user
	UserTeamID       string
	CurrentPick      int
	CurrentRound     int
	IsActive         bool
	IsLiveSynced     bool
	IsUserTurn       bool
	Picks            []Pick
	SyncErrors       []string
	StaleEventCount  int
	LastSyncAt       time.Time
}

func (s *Session) Validate() error {
	if s.LeagueID == "" {
		return fmt.Errorf("league id is required")
	}
	if s.TotalRounds < 1 {
		return fmt.Errorf("total rounds must be >= 1")
	}
	if s.TeamCount < 1 {
		return fmt.Errorf("team count must be >= 1")
	}
	if s.UserPickPosition < 1 || s.UserPickPosition > s.TeamCount {
		return fmt.Errorf("user pick position must be in [1, %d]", s.TeamCount)
	}

	return nil
}
