package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/draftline/draftline/internal/domain/draftboard"
	"github.com/draftline/draftline/internal/domain/draftsession"
	"github.com/draftline/draftline/internal/platform/logging"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultPollInterval  = 5 * time.Second
	defaultSyncErrorCap  = 20
	outOfBandPullTimeout = 10 * time.Second
	gapPullWorkers       = 4
)

// ReconcilerConfig carries the tunables of the live status reconciler.
type ReconcilerConfig struct {
	PollInterval time.Duration
	SyncErrorCap int
}

// Reconciler merges the two update channels of a live draft into the
// session store: a periodic authoritative snapshot (pull) and best-effort
// individual events (push). The pull channel alone converges to correct
// state within one polling interval; push only reduces latency.
type Reconciler struct {
	sessions     draftsession.Repository
	fetcher      DraftStatusFetcher
	notifier     *TurnNotifier
	logger       *logging.Logger
	pollInterval time.Duration
	syncErrorCap int
	now          func() time.Time

	gapPool *ants.Pool

	mu      sync.Mutex
	polling map[string]*pollHandle
}

type pollHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewReconciler(
	sessions draftsession.Repository,
	fetcher DraftStatusFetcher,
	notifier *TurnNotifier,
	logger *logging.Logger,
	cfg ReconcilerConfig,
) (*Reconciler, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session repository is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("draft status fetcher is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.SyncErrorCap <= 0 {
		cfg.SyncErrorCap = defaultSyncErrorCap
	}
	if notifier == nil {
		notifier = NewTurnNotifier(nil)
	}

	pool, err := ants.NewPool(gapPullWorkers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create gap pull pool: %w", err)
	}

	return &Reconciler{
		sessions:     sessions,
		fetcher:      fetcher,
		notifier:     notifier,
		logger:       logger,
		pollInterval: cfg.PollInterval,
		syncErrorCap: cfg.SyncErrorCap,
		now:          time.Now,
		gapPool:      pool,
		polling:      make(map[string]*pollHandle),
	}, nil
}

// ApplyPushPick feeds a "pick made" push event into the session.
//
// An event matching the current pick applies immediately; one behind the
// current pick is stale and only counted; one ahead signals a gap, so the
// session is left untouched and an immediate out-of-band pull is scheduled
// to fetch the authoritative intermediate picks.
func (r *Reconciler) ApplyPushPick(ctx context.Context, sessionID string, event LivePickEvent) (draftsession.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Reconciler.ApplyPushPick")
	defer span.End()

	gap := false
	session, err := r.sessions.Mutate(ctx, sessionID, func(s *draftsession.Session) error {
		if event.PickNumber > s.CurrentPick {
			if !s.IsActive {
				return fmt.Errorf("%w: session %s", draftsession.ErrSessionInactive, s.ID)
			}
			gap = true
			return nil
		}

		applyErr := s.ApplyPick(draftsession.Pick{
			PlayerID:   event.PlayerID,
			PlayerName: event.PlayerName,
			Position:   event.Position,
			Team:       event.Team,
			PickNumber: event.PickNumber,
			TeamID:     event.TeamID,
		})
		if errors.Is(applyErr, draftsession.ErrStalePick) {
			s.StaleEventCount++
			return nil
		}
		return applyErr
	})
	if err != nil {
		return draftsession.Session{}, err
	}

	if gap {
		r.logger.WarnContext(ctx, "push pick ahead of session, scheduling out-of-band pull",
			"session_id", sessionID,
			"event_pick", event.PickNumber,
			"current_pick", session.CurrentPick,
		)
		r.scheduleImmediatePull(sessionID)
		return session, nil
	}

	r.observeTurn(&session)
	return session, nil
}

// ApplyPushTurn feeds a "user on clock" push event. The flag is
// informational; currentPick is never advanced here because ground truth is
// derived from session state on the next pull.
func (r *Reconciler) ApplyPushTurn(ctx context.Context, sessionID string, onClock bool) (draftsession.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Reconciler.ApplyPushTurn")
	defer span.End()

	session, err := r.sessions.Mutate(ctx, sessionID, func(s *draftsession.Session) error {
		if s.IsActive {
			s.IsUserTurn = onClock
		}
		return nil
	})
	if err != nil {
		return draftsession.Session{}, err
	}

	r.notifier.Observe(sessionID, session.IsUserTurn)
	return session, nil
}

// PullOnce fetches one authoritative snapshot and merges it. Fetch failures
// are recorded in the session's bounded error list and the previous state is
// retained; the next tick retries at the fixed interval.
func (r *Reconciler) PullOnce(ctx context.Context, sessionID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Reconciler.PullOnce")
	defer span.End()

	current, ok, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: session=%s", ErrNotFound, sessionID)
	}

	status, fetchErr := r.fetcher.FetchDraftStatus(ctx, current.LeagueID)
	if fetchErr != nil {
		r.logger.WarnContext(ctx, "draft status fetch failed, keeping last known state",
			"session_id", sessionID,
			"league_id", current.LeagueID,
			"error", fetchErr,
		)
		_, recordErr := r.sessions.Mutate(ctx, sessionID, func(s *draftsession.Session) error {
			if !s.IsLiveSynced {
				return nil
			}
			s.RecordSyncError(fmt.Sprintf("fetch draft status: %v", fetchErr), r.syncErrorCap)
			return nil
		})
		return recordErr
	}

	session, err := r.sessions.Mutate(ctx, sessionID, func(s *draftsession.Session) error {
		r.mergeSnapshot(s, status)
		return nil
	})
	if err != nil {
		return err
	}

	r.observeTurn(&session)
	return nil
}

// mergeSnapshot takes the snapshot as authoritative without ever regressing
// currentPick: picks the session already confirmed past stay confirmed.
func (r *Reconciler) mergeSnapshot(s *draftsession.Session, status LiveDraftStatus) {
	if !s.IsLiveSynced {
		// Toggled off while the fetch was in flight; the cancellation
		// contract forbids mutating after the toggle is acknowledged.
		return
	}

	// Replay the snapshot's recent-picks window in pick order. Stale entries
	// fall out of ApplyPick as no-ops or counted stale events.
	events := append([]LivePickEvent(nil), status.RecentPicks...)
	for swapped := true; swapped; {
		swapped = false
		for i := 1; i < len(events); i++ {
			if events[i-1].PickNumber > events[i].PickNumber {
				events[i-1], events[i] = events[i], events[i-1]
				swapped = true
			}
		}
	}
	for _, event := range events {
		if event.PickNumber != s.CurrentPick {
			continue
		}
		err := s.ApplyPick(draftsession.Pick{
			PlayerID:   event.PlayerID,
			PlayerName: event.PlayerName,
			Position:   event.Position,
			Team:       event.Team,
			PickNumber: event.PickNumber,
			TeamID:     event.TeamID,
		})
		if err != nil {
			s.RecordSyncError(fmt.Sprintf("apply snapshot pick %d: %v", event.PickNumber, err), r.syncErrorCap)
		}
	}

	// The snapshot may report progress beyond its recent-picks window. The
	// pull channel wins for anything the session has not confirmed itself,
	// so fast-forward the counters and note the unrecorded picks.
	if status.CurrentPick > s.CurrentPick && s.IsActive {
		s.RecordSyncError(
			fmt.Sprintf("snapshot advanced current pick from %d to %d beyond recent picks window", s.CurrentPick, status.CurrentPick),
			r.syncErrorCap,
		)
		s.CurrentPick = status.CurrentPick
		s.CurrentRound = draftboard.RoundOf(s.CurrentPick, s.TeamCount)
		if s.CurrentPick > s.TotalPicks() {
			s.IsActive = false
			s.CurrentRound = s.TotalRounds
		}
	}

	for _, msg := range status.SyncErrors {
		s.RecordSyncError(msg, r.syncErrorCap)
	}

	if remaining, ok := s.PicksUntilUserTurn(); ok {
		s.IsUserTurn = remaining == 0
	} else {
		s.IsUserTurn = false
	}
	s.LastSyncAt = r.now()
}

func (r *Reconciler) observeTurn(s *draftsession.Session) {
	if !s.IsActive {
		r.notifier.Forget(s.ID)
		return
	}
	r.notifier.Observe(s.ID, s.IsUserTurn)
}

func (r *Reconciler) scheduleImmediatePull(sessionID string) {
	err := r.gapPool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), outOfBandPullTimeout)
		defer cancel()
		if err := r.PullOnce(ctx, sessionID); err != nil {
			r.logger.Warn("out-of-band pull failed", "session_id", sessionID, "error", err)
		}
	})
	if err != nil {
		// Pool saturated: the regular poll tick closes the gap instead.
		r.logger.Warn("out-of-band pull not scheduled", "session_id", sessionID, "error", err)
	}
}

// StartPolling launches the session's poll loop. The loop re-checks the
// live-sync flag before every tick and exits as soon as it is off.
func (r *Reconciler) StartPolling(ctx context.Context, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, running := r.polling[sessionID]; running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	handle := &pollHandle{cancel: cancel, done: make(chan struct{})}
	r.polling[sessionID] = handle

	go r.pollLoop(loopCtx, sessionID, handle)
}

func (r *Reconciler) pollLoop(ctx context.Context, sessionID string, handle *pollHandle) {
	defer close(handle.done)
	defer r.removeHandle(sessionID, handle)

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		session, ok, err := r.sessions.Get(ctx, sessionID)
		if err != nil || !ok || !session.IsLiveSynced || !session.IsActive {
			return
		}

		if err := r.PullOnce(ctx, sessionID); err != nil {
			r.logger.WarnContext(ctx, "poll tick failed", "session_id", sessionID, "error", err)
		}
	}
}

func (r *Reconciler) removeHandle(sessionID string, handle *pollHandle) {
	r.mu.Lock()
	if current, ok := r.polling[sessionID]; ok && current == handle {
		delete(r.polling, sessionID)
	}
	r.mu.Unlock()
}

// StopPolling cancels the session's poll loop and waits for it to exit, so
// no in-flight update races a toggled-off session.
func (r *Reconciler) StopPolling(sessionID string) {
	r.mu.Lock()
	handle, ok := r.polling[sessionID]
	r.mu.Unlock()
	if !ok {
		return
	}

	handle.cancel()
	<-handle.done
}

// Close stops every poll loop and releases the gap pull pool.
func (r *Reconciler) Close() {
	r.mu.Lock()
	handles := make([]*pollHandle, 0, len(r.polling))
	for _, handle := range r.polling {
		handles = append(handles, handle)
	}
	r.mu.Unlock()

	for _, handle := range handles {
		handle.cancel()
		<-handle.done
	}
	r.gapPool.Release()
}
