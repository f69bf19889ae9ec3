package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is the per-identifier durable authentication state: the credential
// digest, the lock state, and the consecutive-failure count since the last
// success or unlock.
type Account struct {
	ID               uuid.UUID
	Identifier       string
	CredentialDigest string
	Locked           bool
	LockUntil        *time.Time
	FailureCount     int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewAccount returns an unlocked account with zero failures.
func NewAccount(identifier, digest string, now time.Time) *Account {
	return &Account{
		ID:               uuid.New(),
		Identifier:       identifier,
		CredentialDigest: digest,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// LockedAt reports whether the account is locked at the given instant.
func (a *Account) LockedAt(now time.Time) bool {
	return a.Locked && a.LockUntil != nil && now.Before(*a.LockUntil)
}

// LockExpired reports whether a lock was set and its deadline has passed.
func (a *Account) LockExpired(now time.Time) bool {
	return a.Locked && (a.LockUntil == nil || !now.Before(*a.LockUntil))
}

// Lock puts the account into the locked state until the given deadline.
func (a *Account) Lock(until, now time.Time) {
	a.Locked = true
	u := until
	a.LockUntil = &u
	a.UpdatedAt = now
}

// ResetLock clears the lock and the consecutive-failure count. Used by the
// lazy-expiry transition and by explicit unlock; idempotent.
func (a *Account) ResetLock(now time.Time) {
	a.Locked = false
	a.LockUntil = nil
	a.FailureCount = 0
	a.UpdatedAt = now
}

// Clone returns a deep copy. Stores receive clones so no mutable record
// escapes the engine's critical section.
func (a *Account) Clone() *Account {
	c := *a
	if a.LockUntil != nil {
		u := *a.LockUntil
		c.LockUntil = &u
	}
	return &c
}
