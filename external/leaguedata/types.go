package leaguedata

// Wire payloads returned by the league-data provider. Field names follow the
// provider's JSON; mapping to domain and usecase types happens in the client.

type envelope[T any] struct {
	Data T `json:"data"`
}

type leagueItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Season      string `json:"season"`
	TeamCount   int    `json:"teamCount"`
	TotalRounds int    `json:"totalRounds"`
	ScoringType string `json:"scoringType"`
}

type teamItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	OwnerName    string `json:"ownerName"`
	DraftSlot    int    `json:"draftSlot"`
}

type draftStatusItem struct {
	CurrentPick  int             `json:"currentPick"`
	CurrentRound int             `json:"currentRound"`
	IsUserTurn   bool            `json:"isUserTurn"`
	RecentPicks  []pickEventItem `json:"recentPicks"`
	SyncErrors   []string        `json:"syncErrors"`
}

type pickEventItem struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Position   string `json:"position"`
	Team       string `json:"team"`
	PickNumber int    `json:"pickNumber"`
	TeamID     string `json:"teamId"`
}
