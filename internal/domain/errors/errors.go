package errors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors callers match with errors.Is.
var (
	ErrDuplicateIdentifier = errors.New("identifier is already registered")
	ErrWeakIdentifier      = errors.New("identifier must be at least 3 characters")
	ErrWeakCredential      = errors.New("password must be at least 6 characters")
	ErrInvalidCredentials  = errors.New("invalid identifier or password")
	ErrAccountLocked       = errors.New("account is locked")
	ErrPersistence         = errors.New("persistence failure")
)

// CredentialsError is a failed verification on a known account, carrying the
// attempts left before the account locks. Unknown identifiers get the bare
// ErrInvalidCredentials sentinel instead so that login never confirms whether
// an identifier exists.
type CredentialsError struct {
	AttemptsRemaining int
}

func (e *CredentialsError) Error() string {
	if e.AttemptsRemaining == 1 {
		return fmt.Sprintf("%s, 1 attempt remaining", ErrInvalidCredentials)
	}
	return fmt.Sprintf("%s, %d attempts remaining", ErrInvalidCredentials, e.AttemptsRemaining)
}

func (e *CredentialsError) Is(target error) bool { return target == ErrInvalidCredentials }

// LockedError is a login attempt against a locked account. Triggered is true
// when this very attempt crossed the failure threshold.
type LockedError struct {
	RetryAfter time.Duration
	Triggered  bool
}

func (e *LockedError) Error() string {
	if e.Triggered {
		return fmt.Sprintf("too many failed attempts, account locked for %s", e.RetryAfter)
	}
	secs := int(e.RetryAfter.Seconds())
	return fmt.Sprintf("%s, retry in %dm%02ds", ErrAccountLocked, secs/60, secs%60)
}

func (e *LockedError) Is(target error) bool { return target == ErrAccountLocked }
