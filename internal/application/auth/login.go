package auth

import (
	"context"

	domerrors "github.com/amirhosseinghanipour/lockgate/internal/domain/errors"
)

// Login verifies the password for the identifier. An unknown identifier and a
// wrong password both fail with ErrInvalidCredentials so login never confirms
// whether an identifier exists. A success resets the failure count; a failure
// increments it and, at the threshold, locks the account for the configured
// duration. Every outcome is persisted before it is returned.
func (e *Engine) Login(ctx context.Context, identifier, password string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	acct, ok := e.accounts[identifier]
	if !ok {
		loginAttempts.WithLabelValues("unknown").Inc()
		return domerrors.ErrInvalidCredentials
	}

	locked, retryAfter, err := e.evaluateLocked(ctx, identifier)
	if err != nil {
		return err
	}
	if locked {
		loginAttempts.WithLabelValues("locked").Inc()
		return &domerrors.LockedError{RetryAfter: retryAfter}
	}

	now := e.now()
	if e.hasher.Verify(password, acct.CredentialDigest) {
		prev := acct.Clone()
		acct.FailureCount = 0
		acct.UpdatedAt = now
		if err := e.persist(ctx); err != nil {
			e.accounts[identifier] = prev
			return err
		}
		loginAttempts.WithLabelValues("ok").Inc()
		e.log.Info().Str("identifier", identifier).Msg("login succeeded")
		return nil
	}

	prev := acct.Clone()
	acct.FailureCount++
	acct.UpdatedAt = now
	var failure error
	if acct.FailureCount >= e.maxFailures {
		acct.Lock(now.Add(e.lockDuration), now)
		failure = &domerrors.LockedError{RetryAfter: e.lockDuration, Triggered: true}
	} else {
		failure = &domerrors.CredentialsError{AttemptsRemaining: e.maxFailures - acct.FailureCount}
	}
	if err := e.persist(ctx); err != nil {
		e.accounts[identifier] = prev
		return err
	}
	if acct.Locked {
		lockouts.Inc()
		e.log.Warn().Str("identifier", identifier).Int("failures", acct.FailureCount).Msg("account locked")
	} else {
		loginAttempts.WithLabelValues("failed").Inc()
	}
	return failure
}
