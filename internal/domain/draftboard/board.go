package draftboard

// Snake draft numbering. Direction reverses every round so the team picking
// last in round n picks first in round n+1; the numbering here must match
// that reversal exactly or on-the-clock markers desynchronize from the
// session state.

type CellState string

const (
	CellFilled    CellState = "FILLED"
	CellOnClock   CellState = "ON_CLOCK"
	CellPastEmpty CellState = "PAST_EMPTY"
	CellFuture    CellState = "FUTURE"
)

// PickNumber maps a board cell to its global pick number. round and
// teamCount are 1-based, teamSlot is 0-indexed left to right. Inputs outside
// those ranges return 0.
func PickNumber(round, teamSlot, teamCount int) int {
	if round < 1 || teamCount < 1 || teamSlot < 0 || teamSlot >= teamCount {
		return 0
	}

	if round%2 == 1 {
		return (round-1)*teamCount + teamSlot + 1
	}
	return (round-1)*teamCount + (teamCount - teamSlot)
}

// SlotForPick is the inverse of PickNumber: the 0-indexed team slot that
// owns the given global pick number.
func SlotForPick(pickNumber, teamCount int) int {
	if pickNumber < 1 || teamCount < 1 {
		return -1
	}

	indexInRound := (pickNumber - 1) % teamCount
	if RoundOf(pickNumber, teamCount)%2 == 1 {
		return indexInRound
	}
	return teamCount - 1 - indexInRound
}

// RoundOf returns the 1-based round containing pickNumber.
func RoundOf(pickNumber, teamCount int) int {
	if pickNumber < 1 || teamCount < 1 {
		return 0
	}
	return (pickNumber-1)/teamCount + 1
}

// Classify reports how a board cell should render relative to the session's
// current pick. hasPick indicates a recorded pick exists for the cell.
func Classify(pickNumber, currentPick int, hasPick bool) CellState {
	switch {
	case hasPick:
		return CellFilled
	case pickNumber == currentPick:
		return CellOnClock
	case pickNumber < currentPick:
		return CellPastEmpty
	default:
		return CellFuture
	}
}
