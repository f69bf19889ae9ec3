// Package store provides CredentialStore implementations: a JSON file (the
// default), an in-memory map, Postgres, and Redis.
package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/lockgate/internal/domain"
)

// record is the serialized shape of one account, shared by the file and Redis
// stores. Optional fields may be absent in data written by older versions;
// they default to an unlocked record with zero failures.
type record struct {
	ID               string `json:"id,omitempty"`
	CredentialDigest string `json:"credential_digest"`
	Locked           bool   `json:"locked,omitempty"`
	LockUntil        *int64 `json:"lock_until,omitempty"` // epoch seconds
	FailureCount     int    `json:"failure_count,omitempty"`
	CreatedAt        int64  `json:"created_at,omitempty"` // epoch seconds
	UpdatedAt        int64  `json:"updated_at,omitempty"`
}

func encodeRecord(a *domain.Account) record {
	r := record{
		ID:               a.ID.String(),
		CredentialDigest: a.CredentialDigest,
		Locked:           a.Locked,
		FailureCount:     a.FailureCount,
	}
	if a.LockUntil != nil {
		u := a.LockUntil.Unix()
		r.LockUntil = &u
	}
	if !a.CreatedAt.IsZero() {
		r.CreatedAt = a.CreatedAt.Unix()
	}
	if !a.UpdatedAt.IsZero() {
		r.UpdatedAt = a.UpdatedAt.Unix()
	}
	return r
}

func decodeRecord(identifier string, r record) *domain.Account {
	a := &domain.Account{
		Identifier:       identifier,
		CredentialDigest: r.CredentialDigest,
		Locked:           r.Locked,
		FailureCount:     r.FailureCount,
	}
	if id, err := uuid.Parse(r.ID); err == nil {
		a.ID = id
	} else {
		// Records written before IDs existed get one assigned; it sticks on
		// the next save.
		a.ID = uuid.New()
	}
	if r.LockUntil != nil {
		u := time.Unix(*r.LockUntil, 0)
		a.LockUntil = &u
	}
	if r.CreatedAt != 0 {
		a.CreatedAt = time.Unix(r.CreatedAt, 0)
	}
	if r.UpdatedAt != 0 {
		a.UpdatedAt = time.Unix(r.UpdatedAt, 0)
	}
	return a
}
