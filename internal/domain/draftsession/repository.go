package draftsession

import "context"

// Repository holds live draft sessions. Mutate serializes all writes to a
// given session; different sessions proceed in parallel.
type Repository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, sessionID string) (Session, bool, error)
	Mutate(ctx context.Context, sessionID string, fn func(*Session) error) (Session, error)
	ListLiveSynced(ctx context.Context) ([]string, error)
}
