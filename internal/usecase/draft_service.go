package usecase

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/draftline/draftline/internal/domain/draftboard"
	"github.com/draftline/draftline/internal/domain/draftsession"
	"github.com/draftline/draftline/internal/domain/league"
	"github.com/draftline/draftline/internal/platform/logging"
)

// IDGenerator mints session identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// StartSessionInput declares a new tracking session. TotalRounds and
// TeamCount override the league's values when positive.
type StartSessionInput struct {
	LeagueID         string `validate:"required"`
	UserPickPosition int    `validate:"required,min=1"`
	UserTeamID       string
	TotalRounds      int `validate:"min=0"`
	TeamCount        int `validate:"min=0"`
	LiveSynced       bool
}

// LiveView is the merged read model for a session: stored state plus the
// turn arithmetic derived from it.
type LiveView struct {
	Session            draftsession.Session
	NextUserPick       int
	PicksUntilUserTurn int
	UserOnClock        bool
}

// DraftService owns the lifecycle of draft sessions and fronts the
// reconciler for push ingestion and sync toggling.
type DraftService struct {
	sessions    draftsession.Repository
	leagues     league.Repository
	reconciler  *Reconciler
	ids         IDGenerator
	logger      *logging.Logger
	pushEnabled bool
}

func NewDraftService(
	sessions draftsession.Repository,
	leagues league.Repository,
	reconciler *Reconciler,
	ids IDGenerator,
	logger *logging.Logger,
	pushEnabled bool,
) *DraftService {
	if logger == nil {
		logger = logging.Default()
	}
	return &DraftService{
		sessions:    sessions,
		leagues:     leagues,
		reconciler:  reconciler,
		ids:         ids,
		logger:      logger,
		pushEnabled: pushEnabled,
	}
}

// StartSession creates a session for the given league. Round and team counts
// default from the league catalog so callers only declare their draft slot.
func (s *DraftService) StartSession(ctx context.Context, input StartSessionInput) (draftsession.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.StartSession")
	defer span.End()

	ref, found, err := s.leagues.GetByID(ctx, input.LeagueID)
	if err != nil {
		return draftsession.Session{}, fmt.Errorf("resolve league: %w", err)
	}
	if !found {
		return draftsession.Session{}, fmt.Errorf("%w: league=%s", ErrNotFound, input.LeagueID)
	}

	totalRounds := input.TotalRounds
	if totalRounds <= 0 {
		totalRounds = ref.TotalRounds
	}
	teamCount := input.TeamCount
	if teamCount <= 0 {
		teamCount = ref.TeamCount
	}

	id, err := s.ids.NewID()
	if err != nil {
		return draftsession.Session{}, fmt.Errorf("generate session id: %w", err)
	}

	session, err := draftsession.NewSession(id, input.LeagueID, input.UserPickPosition, totalRounds, teamCount, input.LiveSynced)
	if err != nil {
		return draftsession.Session{}, errors.Mark(err, ErrInvalidInput)
	}
	session.UserTeamID = input.UserTeamID

	if err := s.sessions.Create(ctx, session); err != nil {
		return draftsession.Session{}, fmt.Errorf("store session: %w", err)
	}

	if session.IsLiveSynced {
		s.reconciler.StartPolling(context.WithoutCancel(ctx), session.ID)
	}

	s.logger.InfoContext(ctx, "draft session started",
		"session_id", session.ID,
		"league_id", session.LeagueID,
		"team_count", session.TeamCount,
		"total_rounds", session.TotalRounds,
		"live_synced", session.IsLiveSynced,
	)

	return *session, nil
}

func (s *DraftService) GetSession(ctx context.Context, sessionID string) (draftsession.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.GetSession")
	defer span.End()

	session, found, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return draftsession.Session{}, err
	}
	if !found {
		return draftsession.Session{}, fmt.Errorf("%w: session=%s", ErrNotFound, sessionID)
	}

	return session, nil
}

// RecordManualPick applies a pick entered by the user for an offline draft.
func (s *DraftService) RecordManualPick(ctx context.Context, sessionID string, event LivePickEvent) (draftsession.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.RecordManualPick")
	defer span.End()

	session, err := s.sessions.Mutate(ctx, sessionID, func(sess *draftsession.Session) error {
		return sess.ApplyPick(draftsession.Pick{
			PlayerID:   event.PlayerID,
			PlayerName: event.PlayerName,
			Position:   event.Position,
			Team:       event.Team,
			PickNumber: event.PickNumber,
			TeamID:     event.TeamID,
		})
	})
	if err != nil {
		return draftsession.Session{}, err
	}

	return session, nil
}

// IngestPickEvent routes a provider push event through the reconciler.
func (s *DraftService) IngestPickEvent(ctx context.Context, sessionID string, event LivePickEvent) (draftsession.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.IngestPickEvent")
	defer span.End()

	if !s.pushEnabled {
		return draftsession.Session{}, fmt.Errorf("%w: push ingestion is disabled", ErrInvalidInput)
	}

	return s.reconciler.ApplyPushPick(ctx, sessionID, event)
}

// IngestTurnEvent routes a provider "user on clock" push event.
func (s *DraftService) IngestTurnEvent(ctx context.Context, sessionID string, onClock bool) (draftsession.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.IngestTurnEvent")
	defer span.End()

	if !s.pushEnabled {
		return draftsession.Session{}, fmt.Errorf("%w: push ingestion is disabled", ErrInvalidInput)
	}

	return s.reconciler.ApplyPushTurn(ctx, sessionID, onClock)
}

// ToggleSync flips live sync. Enabling starts the poll loop; disabling stops
// it and waits until no poll update is in flight before returning.
func (s *DraftService) ToggleSync(ctx context.Context, sessionID string, enable bool) (draftsession.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.ToggleSync")
	defer span.End()

	session, err := s.sessions.Mutate(ctx, sessionID, func(sess *draftsession.Session) error {
		sess.ToggleSync(enable)
		return nil
	})
	if err != nil {
		return draftsession.Session{}, err
	}

	if enable && session.IsActive {
		s.reconciler.StartPolling(context.WithoutCancel(ctx), sessionID)
	} else {
		s.reconciler.StopPolling(sessionID)
	}

	s.logger.InfoContext(ctx, "live sync toggled", "session_id", sessionID, "enabled", enable)
	return session, nil
}

// LiveStatus returns the merged read model. When live sync is on it first
// performs a pull so the response reflects the provider's latest snapshot.
func (s *DraftService) LiveStatus(ctx context.Context, sessionID string) (LiveView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.LiveStatus")
	defer span.End()

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return LiveView{}, err
	}

	if session.IsLiveSynced && session.IsActive {
		if err := s.reconciler.PullOnce(ctx, sessionID); err != nil {
			s.logger.WarnContext(ctx, "on-demand pull failed, serving stored state",
				"session_id", sessionID, "error", err)
		}
		if session, err = s.GetSession(ctx, sessionID); err != nil {
			return LiveView{}, err
		}
	}

	view := LiveView{Session: session}
	if next, ok := session.NextUserPick(); ok {
		view.NextUserPick = next
	}
	if remaining, ok := session.PicksUntilUserTurn(); ok {
		view.PicksUntilUserTurn = remaining
		view.UserOnClock = remaining == 0
	}

	return view, nil
}

// BoardCell classifies one pick slot for board rendering.
func (s *DraftService) BoardCell(session draftsession.Session, round, slot int) draftboard.CellState {
	pickNumber := draftboard.PickNumber(round, slot, session.TeamCount)
	_, filled := session.PickAt(pickNumber)
	return draftboard.Classify(pickNumber, session.CurrentPick, filled)
}
