// Package auth implements the account-lockout authentication engine: it
// verifies credentials, tracks consecutive failures per account, and
// temporarily locks accounts that exceed the failure threshold. The engine is
// the sole mutator of account records and writes every mutation through to a
// CredentialStore before the operation returns.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/lockgate/internal/application/ports"
	"github.com/amirhosseinghanipour/lockgate/internal/domain"
)

const (
	DefaultMaxFailures  = 5
	DefaultLockDuration = 10 * time.Minute
)

// Options configures the lockout policy.
type Options struct {
	// MaxFailures is the number of consecutive failed logins that locks an
	// account. Defaults to DefaultMaxFailures.
	MaxFailures int
	// LockDuration is how long a triggered lock lasts. Defaults to
	// DefaultLockDuration.
	LockDuration time.Duration
}

// Engine owns registration, login, lock-state evaluation, and unlock. A
// single mutex guards the record map and the write-through persistence, so
// every mutating operation runs as one critical section: read state, decide
// the transition, mutate, persist.
type Engine struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account

	store        ports.CredentialStore
	hasher       ports.PasswordHasher
	maxFailures  int
	lockDuration time.Duration
	validate     *validator.Validate
	log          zerolog.Logger
	now          func() time.Time
}

// NewEngine loads the store once and returns a ready engine. A store that
// cannot be read falls back to an empty record map: data loss is preferred
// over startup failure.
func NewEngine(ctx context.Context, store ports.CredentialStore, hasher ports.PasswordHasher, opts Options, log zerolog.Logger) *Engine {
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = DefaultMaxFailures
	}
	if opts.LockDuration <= 0 {
		opts.LockDuration = DefaultLockDuration
	}
	accounts, err := store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("load accounts failed; starting with an empty store")
		accounts = nil
	}
	if accounts == nil {
		accounts = make(map[string]*domain.Account)
	}
	return &Engine{
		accounts:     accounts,
		store:        store,
		hasher:       hasher,
		maxFailures:  opts.MaxFailures,
		lockDuration: opts.LockDuration,
		validate:     validator.New(),
		log:          log,
		now:          time.Now,
	}
}

// AccountCount returns the number of registered accounts. Callers use it to
// decide whether to Seed a fresh store.
func (e *Engine) AccountCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.accounts)
}

// persist writes the full mapping through to the store. Records are cloned so
// nothing mutable escapes the critical section. Callers hold mu.
func (e *Engine) persist(ctx context.Context) error {
	snapshot := make(map[string]*domain.Account, len(e.accounts))
	for id, acct := range e.accounts {
		snapshot[id] = acct.Clone()
	}
	if err := e.store.Save(ctx, snapshot); err != nil {
		e.log.Error().Err(err).Msg("persist accounts")
		return fmt.Errorf("persist accounts: %w", err)
	}
	return nil
}
