package memory

import (
	"github.com/draftline/draftline/internal/domain/league"
	"github.com/draftline/draftline/internal/domain/team"
)

const (
	LeagueIDGridironClassic = "ffl-gridiron-classic-2026"
	LeagueIDDynastyTwelve   = "ffl-dynasty-twelve-2026"
)

// SeedLeagues is the fallback catalog served before the first successful
// provider fetch, so the API is usable offline and in tests.
func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:          LeagueIDGridironClassic,
			Name:        "Gridiron Classic",
			Season:      "2026",
			TeamCount:   10,
			TotalRounds: 15,
			ScoringType: "ppr",
		},
		{
			ID:          LeagueIDDynastyTwelve,
			Name:        "Dynasty Twelve",
			Season:      "2026",
			TeamCount:   12,
			TotalRounds: 16,
			ScoringType: "half-ppr",
		},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "gc-01", LeagueID: LeagueIDGridironClassic, Name: "Mile High Mafia", Abbreviation: "MHM", OwnerName: "Dana", DraftSlot: 1},
		{ID: "gc-02", LeagueID: LeagueIDGridironClassic, Name: "Blitzkrieg Bandits", Abbreviation: "BB", OwnerName: "Ravi", DraftSlot: 2},
		{ID: "gc-03", LeagueID: LeagueIDGridironClassic, Name: "End Zone Elite", Abbreviation: "EZE", OwnerName: "Morgan", DraftSlot: 3},
		{ID: "gc-04", LeagueID: LeagueIDGridironClassic, Name: "Fourth and Goal", Abbreviation: "FNG", OwnerName: "Sam", DraftSlot: 4},
		{ID: "dt-01", LeagueID: LeagueIDDynastyTwelve, Name: "Waiver Wire Wizards", Abbreviation: "WWW", OwnerName: "Alex", DraftSlot: 1},
		{ID: "dt-02", LeagueID: LeagueIDDynastyTwelve, Name: "Garbage Time Gods", Abbreviation: "GTG", OwnerName: "Jordan", DraftSlot: 2},
		{ID: "dt-03", LeagueID: LeagueIDDynastyTwelve, Name: "Hail Mary Heroes", Abbreviation: "HMH", OwnerName: "Priya", DraftSlot: 3},
		{ID: "dt-04", LeagueID: LeagueIDDynastyTwelve, Name: "Couch Coaches", Abbreviation: "CC", OwnerName: "Theo", DraftSlot: 4},
	}
}
