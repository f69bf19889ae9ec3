package auth

import (
	"context"
	"time"

	domerrors "github.com/amirhosseinghanipour/lockgate/internal/domain/errors"
)

// EvaluateLockState reports whether the identifier is currently locked, with
// a human-readable message stating the remaining lock time. Unknown
// identifiers are never reported as locked. An expired lock is transitioned
// back to unlocked here (lazy expiry) and persisted; there is no background
// timer.
func (e *Engine) EvaluateLockState(ctx context.Context, identifier string) (bool, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	locked, retryAfter, err := e.evaluateLocked(ctx, identifier)
	if err != nil || !locked {
		return locked, "", err
	}
	return true, lockMessage(retryAfter), nil
}

// evaluateLocked is EvaluateLockState with mu held. Login and AccountInfo
// call it inside their own critical sections.
func (e *Engine) evaluateLocked(ctx context.Context, identifier string) (locked bool, retryAfter time.Duration, err error) {
	acct, ok := e.accounts[identifier]
	if !ok {
		return false, 0, nil
	}
	now := e.now()
	if acct.LockedAt(now) {
		return true, acct.LockUntil.Sub(now), nil
	}
	if acct.LockExpired(now) {
		prev := acct.Clone()
		acct.ResetLock(now)
		if err := e.persist(ctx); err != nil {
			e.accounts[identifier] = prev
			return true, 0, err
		}
		e.log.Info().Str("identifier", identifier).Msg("lock expired, account unlocked")
	}
	return false, 0, nil
}

func lockMessage(retryAfter time.Duration) string {
	return (&domerrors.LockedError{RetryAfter: retryAfter}).Error()
}
