package usecase

import "context"

// LiveDraftStatus is the provider's full draft snapshot as consumed by the
// reconciler's pull channel.
type LiveDraftStatus struct {
	CurrentPick  int
	CurrentRound int
	IsUserTurn   bool
	RecentPicks  []LivePickEvent
	SyncErrors   []string
}

// LivePickEvent is one selection reported by the provider, either inside a
// snapshot or delivered individually over the push channel.
type LivePickEvent struct {
	PlayerID   string
	PlayerName string
	Position   string
	Team       string
	PickNumber int
	TeamID     string
}

// DraftStatusFetcher is the pull channel into the league-data provider.
type DraftStatusFetcher interface {
	FetchDraftStatus(ctx context.Context, leagueID string) (LiveDraftStatus, error)
}
