package league

import "fmt"

// League is a fantasy league hosted by the external league service. The
// core treats it as read-only reference data.
type League struct {
	ID          string
	Name        string
	Season      string
	TeamCount   int
	TotalRounds int
	ScoringType string
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.TeamCount < 1 {
		return fmt.Errorf("league team count must be >= 1")
	}

	return nil
}
