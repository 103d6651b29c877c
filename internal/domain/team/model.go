package team

import "fmt"

// Team is a fantasy roster slot inside a league, supplied by the external
// league service as an immutable snapshot.
type Team struct {
	ID           string
	LeagueID     string
	Name         string
	Abbreviation string
	OwnerName    string
	DraftSlot    int
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.LeagueID == "" {
		return fmt.Errorf("team league id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
