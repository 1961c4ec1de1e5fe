package store

import (
	"kinlab-backend/internal/model"
)

// SessionStore holds the single active mechanism session. There is no delete:
// a new upload is an unconditional overwrite and the server side is free to
// forget the old session on its own schedule.
type SessionStore interface {
	// Active returns the current session or ErrNoActiveSession.
	Active() (*model.Session, error)
	// Replace installs a new session and returns the new generation.
	Replace(session *model.Session) uint64
	// Generation increments on every Replace; queries compare it before and
	// after a round trip to detect that their session was swapped out.
	Generation() uint64
}
