package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/draftline/draftline/internal/domain/draftsession"
	"github.com/draftline/draftline/internal/infrastructure/repository/memory"
	"github.com/draftline/draftline/internal/platform/logging"
)

type stubFetcher struct {
	mu     sync.Mutex
	status LiveDraftStatus
	err    error
	calls  int
	called chan struct{}
}

func (f *stubFetcher) FetchDraftStatus(_ context.Context, _ string) (LiveDraftStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.called != nil {
		select {
		case f.called <- struct{}{}:
		default:
		}
	}
	return f.status, f.err
}

func (f *stubFetcher) set(status LiveDraftStatus, err error) {
	f.mu.Lock()
	f.status = status
	f.err = err
	f.mu.Unlock()
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestReconciler(t *testing.T, fetcher *stubFetcher, notifier *TurnNotifier) (*Reconciler, *memory.SessionRepository) {
	t.Helper()

	repo := memory.NewSessionRepository()
	r, err := NewReconciler(repo, fetcher, notifier, logging.NewNop(), ReconcilerConfig{
		PollInterval: 10 * time.Millisecond,
		SyncErrorCap: 5,
	})
	require.NoError(t, err)
	t.Cleanup(r.Close)

	return r, repo
}

func seedSession(t *testing.T, repo *memory.SessionRepository, picksApplied int) string {
	t.Helper()

	session, err := draftsession.NewSession("sess-1", "lg-1", 1, 15, 10, true)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), session))

	if picksApplied > 0 {
		_, err = repo.Mutate(context.Background(), session.ID, func(s *draftsession.Session) error {
			for n := 1; n <= picksApplied; n++ {
				if err := s.ApplyPick(pickEventAt(n).toPick()); err != nil {
					return err
				}
			}
			return nil
		})
		require.NoError(t, err)
	}

	return session.ID
}

func pickEventAt(n int) LivePickEvent {
	return LivePickEvent{
		PlayerID:   fmt.Sprintf("p-%03d", n),
		PlayerName: fmt.Sprintf("Player %d", n),
		Position:   "RB",
		Team:       "FA",
		PickNumber: n,
	}
}

func (e LivePickEvent) toPick() draftsession.Pick {
	return draftsession.Pick{
		PlayerID:   e.PlayerID,
		PlayerName: e.PlayerName,
		Position:   e.Position,
		Team:       e.Team,
		PickNumber: e.PickNumber,
		TeamID:     e.TeamID,
	}
}

func TestReconciler_PushMatchingPickApplies(t *testing.T) {
	t.Parallel()

	r, repo := newTestReconciler(t, &stubFetcher{}, nil)
	id := seedSession(t, repo, 4)

	session, err := r.ApplyPushPick(context.Background(), id, pickEventAt(5))
	require.NoError(t, err)
	require.Equal(t, 6, session.CurrentPick)
	require.Len(t, session.Picks, 5)
}

func TestReconciler_PushAheadSchedulesPullWithoutAdvancing(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{called: make(chan struct{}, 1)}
	fetcher.set(LiveDraftStatus{CurrentPick: 5}, nil)

	r, repo := newTestReconciler(t, fetcher, nil)
	id := seedSession(t, repo, 4)

	session, err := r.ApplyPushPick(context.Background(), id, pickEventAt(7))
	require.NoError(t, err)
	require.Equal(t, 5, session.CurrentPick, "gap event must not advance the session")
	require.Len(t, session.Picks, 4)

	select {
	case <-fetcher.called:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an out-of-band pull after a gap event")
	}
}

func TestReconciler_GapResolvedByAuthoritativePull(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	r, repo := newTestReconciler(t, fetcher, nil)
	id := seedSession(t, repo, 4)

	// Push two picks ahead of currentPick 5: rejected.
	session, err := r.ApplyPushPick(context.Background(), id, pickEventAt(7))
	require.NoError(t, err)
	require.Equal(t, 5, session.CurrentPick)

	// The snapshot carries the missing picks; replaying them advances state.
	fetcher.set(LiveDraftStatus{
		CurrentPick: 8,
		RecentPicks: []LivePickEvent{pickEventAt(7), pickEventAt(5), pickEventAt(6)},
	}, nil)
	require.NoError(t, r.PullOnce(context.Background(), id))

	got, found, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 8, got.CurrentPick)
	require.Len(t, got.Picks, 7)
	require.Empty(t, got.SyncErrors)
}

func TestReconciler_StalePushIsCountedNotApplied(t *testing.T) {
	t.Parallel()

	r, repo := newTestReconciler(t, &stubFetcher{}, nil)
	id := seedSession(t, repo, 4)

	conflicting := pickEventAt(3)
	conflicting.PlayerID = "someone-else"

	session, err := r.ApplyPushPick(context.Background(), id, conflicting)
	require.NoError(t, err)
	require.Equal(t, 5, session.CurrentPick)
	require.Equal(t, 1, session.StaleEventCount)
}

func TestReconciler_DuplicatePushIsIdempotent(t *testing.T) {
	t.Parallel()

	r, repo := newTestReconciler(t, &stubFetcher{}, nil)
	id := seedSession(t, repo, 4)

	session, err := r.ApplyPushPick(context.Background(), id, pickEventAt(3))
	require.NoError(t, err)
	require.Equal(t, 5, session.CurrentPick)
	require.Zero(t, session.StaleEventCount)
	require.Len(t, session.Picks, 4)
}

func TestReconciler_PullFailureRetainsStateAndRecordsError(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	fetcher.set(LiveDraftStatus{}, fmt.Errorf("provider down"))

	r, repo := newTestReconciler(t, fetcher, nil)
	id := seedSession(t, repo, 4)

	require.NoError(t, r.PullOnce(context.Background(), id))

	got, _, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 5, got.CurrentPick)
	require.Len(t, got.SyncErrors, 1)
	require.Contains(t, got.SyncErrors[0], "provider down")
}

func TestReconciler_PullNeverRegressesCurrentPick(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	fetcher.set(LiveDraftStatus{
		CurrentPick: 2,
		RecentPicks: []LivePickEvent{pickEventAt(1)},
	}, nil)

	r, repo := newTestReconciler(t, fetcher, nil)
	id := seedSession(t, repo, 4)

	require.NoError(t, r.PullOnce(context.Background(), id))

	got, _, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 5, got.CurrentPick)
	require.Len(t, got.Picks, 4)
}

func TestReconciler_PullFastForwardsBeyondRecentWindow(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	fetcher.set(LiveDraftStatus{CurrentPick: 9}, nil)

	r, repo := newTestReconciler(t, fetcher, nil)
	id := seedSession(t, repo, 4)

	require.NoError(t, r.PullOnce(context.Background(), id))

	got, _, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 9, got.CurrentPick)
	require.NotEmpty(t, got.SyncErrors, "unrecorded picks should be noted")
}

func TestReconciler_PullFiresTurnNotification(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var notified []string
	notifier := NewTurnNotifier(func(sessionID string) {
		mu.Lock()
		notified = append(notified, sessionID)
		mu.Unlock()
	})

	// User drafts last in a 10-team snake: slot 10 owns picks 10 and 11, so
	// a snapshot at currentPick 10 puts the user on the clock.
	fetcher := &stubFetcher{}
	picks := make([]LivePickEvent, 0, 9)
	for n := 1; n <= 9; n++ {
		picks = append(picks, pickEventAt(n))
	}
	fetcher.set(LiveDraftStatus{CurrentPick: 10, RecentPicks: picks}, nil)

	r, repo := newTestReconciler(t, fetcher, notifier)

	session, err := draftsession.NewSession("sess-turn", "lg-1", 10, 15, 10, true)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), session))
	id := session.ID

	require.NoError(t, r.PullOnce(context.Background(), id))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{id}, notified)
}

func TestReconciler_PushTurnEventSetsFlagWithoutAdvancing(t *testing.T) {
	t.Parallel()

	r, repo := newTestReconciler(t, &stubFetcher{}, nil)
	id := seedSession(t, repo, 4)

	session, err := r.ApplyPushTurn(context.Background(), id, true)
	require.NoError(t, err)
	require.True(t, session.IsUserTurn)
	require.Equal(t, 5, session.CurrentPick)
}

func TestReconciler_PollLoopStopsWhenSyncToggledOff(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{called: make(chan struct{}, 1)}
	fetcher.set(LiveDraftStatus{CurrentPick: 1}, nil)

	r, repo := newTestReconciler(t, fetcher, nil)
	id := seedSession(t, repo, 0)

	r.StartPolling(context.Background(), id)
	select {
	case <-fetcher.called:
	case <-time.After(2 * time.Second):
		t.Fatal("poll loop never ticked")
	}

	_, err := repo.Mutate(context.Background(), id, func(s *draftsession.Session) error {
		s.ToggleSync(false)
		return nil
	})
	require.NoError(t, err)
	r.StopPolling(id)

	before, _, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	calls := fetcher.callCount()
	time.Sleep(50 * time.Millisecond)

	after, _, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, before.LastSyncAt, after.LastSyncAt, "no merge may land after the toggle is acknowledged")
	require.Equal(t, calls, fetcher.callCount())
}
