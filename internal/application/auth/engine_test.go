package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/amirhosseinghanipour/lockgate/internal/application/ports"
	"github.com/amirhosseinghanipour/lockgate/internal/domain"
	domerrors "github.com/amirhosseinghanipour/lockgate/internal/domain/errors"
	"github.com/amirhosseinghanipour/lockgate/internal/infrastructure/store"
)

// plainHasher is a deterministic stand-in for the argon2 hasher.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain$" + password, nil }
func (plainHasher) Verify(password, digest string) bool  { return digest == "plain$"+password }

// flakyStore wraps a real store and fails saves on demand.
type flakyStore struct {
	mu        sync.Mutex
	inner     ports.CredentialStore
	failSaves bool
}

func (s *flakyStore) setFailing(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSaves = fail
}

func (s *flakyStore) Load(ctx context.Context) (map[string]*domain.Account, error) {
	return s.inner.Load(ctx)
}

func (s *flakyStore) Save(ctx context.Context, accounts map[string]*domain.Account) error {
	s.mu.Lock()
	fail := s.failSaves
	s.mu.Unlock()
	if fail {
		return fmt.Errorf("%w: medium unwritable", domerrors.ErrPersistence)
	}
	return s.inner.Save(ctx, accounts)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestEngine(t *testing.T) (*Engine, *store.MemoryStore, *fakeClock) {
	t.Helper()
	ms := store.NewMemoryStore()
	clk := &fakeClock{t: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)}
	e := NewEngine(context.Background(), ms, plainHasher{}, Options{}, zerolog.Nop())
	e.now = clk.Now
	return e, ms, clk
}

func TestRegister(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Register(ctx, "alice", "secret1"))

	err := e.Register(ctx, "alice", "another1")
	require.ErrorIs(t, err, domerrors.ErrDuplicateIdentifier)

	err = e.Register(ctx, "ab", "secret1")
	require.ErrorIs(t, err, domerrors.ErrWeakIdentifier)

	err = e.Register(ctx, "bob", "12345")
	require.ErrorIs(t, err, domerrors.ErrWeakCredential)

	// Rejected registrations must not create records.
	info, err := e.AccountInfo(ctx, "bob")
	require.NoError(t, err)
	require.Nil(t, info)
}

func TestLoginUnknownIdentifier(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	err := e.Login(ctx, "nobody", "whatever")
	require.ErrorIs(t, err, domerrors.ErrInvalidCredentials)
	// The generic message carries no attempts-remaining suffix: login must
	// not reveal whether the identifier exists.
	require.Equal(t, domerrors.ErrInvalidCredentials.Error(), err.Error())

	info, err := e.AccountInfo(ctx, "nobody")
	require.NoError(t, err)
	require.Nil(t, info)

	locked, msg, err := e.EvaluateLockState(ctx, "nobody")
	require.NoError(t, err)
	require.False(t, locked)
	require.Empty(t, msg)
}

func TestFailureCountingBelowThreshold(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Register(ctx, "alice", "secret1"))

	for n := 1; n < DefaultMaxFailures; n++ {
		err := e.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, domerrors.ErrInvalidCredentials)

		var credErr *domerrors.CredentialsError
		require.ErrorAs(t, err, &credErr)
		require.Equal(t, DefaultMaxFailures-n, credErr.AttemptsRemaining)

		info, err := e.AccountInfo(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, n, info.FailureCount)
		require.False(t, info.Locked)
	}
}

func TestLockoutAtThreshold(t *testing.T) {
	e, _, clk := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Register(ctx, "alice", "secret1"))

	for i := 0; i < DefaultMaxFailures-1; i++ {
		require.Error(t, e.Login(ctx, "alice", "wrong"))
	}
	err := e.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, domerrors.ErrAccountLocked)
	var lockedErr *domerrors.LockedError
	require.ErrorAs(t, err, &lockedErr)
	require.True(t, lockedErr.Triggered)
	require.Equal(t, DefaultLockDuration, lockedErr.RetryAfter)

	until := clk.Now().Add(DefaultLockDuration)
	require.NotNil(t, e.accounts["alice"].LockUntil)
	require.True(t, e.accounts["alice"].LockUntil.Equal(until))

	// The correct password is rejected with the lock message, not a
	// credential mismatch.
	err = e.Login(ctx, "alice", "secret1")
	require.ErrorIs(t, err, domerrors.ErrAccountLocked)
	require.ErrorAs(t, err, &lockedErr)
	require.False(t, lockedErr.Triggered)

	locked, msg, err := e.EvaluateLockState(ctx, "alice")
	require.NoError(t, err)
	require.True(t, locked)
	require.Contains(t, msg, "retry in 10m00s")
}

func TestLockMessageCountsDown(t *testing.T) {
	e, _, clk := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Register(ctx, "alice", "secret1"))
	for i := 0; i < DefaultMaxFailures; i++ {
		require.Error(t, e.Login(ctx, "alice", "wrong"))
	}

	clk.Advance(7*time.Minute + 42*time.Second)
	locked, msg, err := e.EvaluateLockState(ctx, "alice")
	require.NoError(t, err)
	require.True(t, locked)
	require.True(t, strings.HasSuffix(msg, "retry in 2m18s"), msg)
}

func TestLazyExpiryViaEvaluate(t *testing.T) {
	e, ms, clk := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Register(ctx, "alice", "secret1"))
	for i := 0; i < DefaultMaxFailures; i++ {
		require.Error(t, e.Login(ctx, "alice", "wrong"))
	}

	clk.Advance(DefaultLockDuration + time.Second)
	locked, msg, err := e.EvaluateLockState(ctx, "alice")
	require.NoError(t, err)
	require.False(t, locked)
	require.Empty(t, msg)

	info, err := e.AccountInfo(ctx, "alice")
	require.NoError(t, err)
	require.False(t, info.Locked)
	require.Zero(t, info.FailureCount)

	// The expiry transition is persisted, not just held in memory.
	persisted, err := ms.Load(ctx)
	require.NoError(t, err)
	require.False(t, persisted["alice"].Locked)
	require.Nil(t, persisted["alice"].LockUntil)
	require.Zero(t, persisted["alice"].FailureCount)
}

func TestLazyExpiryViaLogin(t *testing.T) {
	e, _, clk := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Register(ctx, "alice", "secret1"))
	for i := 0; i < DefaultMaxFailures; i++ {
		require.Error(t, e.Login(ctx, "alice", "wrong"))
	}

	clk.Advance(DefaultLockDuration + time.Second)
	require.NoError(t, e.Login(ctx, "alice", "secret1"))
}

func TestUnlock(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	ok, err := e.Unlock(ctx, "nobody")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, e.Register(ctx, "alice", "secret1"))
	for i := 0; i < DefaultMaxFailures; i++ {
		require.Error(t, e.Login(ctx, "alice", "wrong"))
	}

	ok, err = e.Unlock(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, e.Login(ctx, "alice", "secret1"))

	// Unlocking an already-unlocked account is a no-op.
	before, err := e.AccountInfo(ctx, "alice")
	require.NoError(t, err)
	ok, err = e.Unlock(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	after, err := e.AccountInfo(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestWriteThroughPersistence(t *testing.T) {
	e, ms, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Register(ctx, "alice", "secret1"))
	require.Error(t, e.Login(ctx, "alice", "wrong"))
	require.Error(t, e.Login(ctx, "alice", "wrong"))

	persisted, err := ms.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, persisted["alice"].FailureCount)

	// A fresh engine over the same store observes the same state.
	e2 := NewEngine(ctx, ms, plainHasher{}, Options{}, zerolog.Nop())
	info, err := e2.AccountInfo(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 2, info.FailureCount)
}

func TestPersistenceFailureRollsBack(t *testing.T) {
	ms := store.NewMemoryStore()
	flaky := &flakyStore{inner: ms}
	e := NewEngine(context.Background(), flaky, plainHasher{}, Options{}, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, e.Register(ctx, "alice", "secret1"))

	flaky.setFailing(true)
	err := e.Register(ctx, "bob", "secret2")
	require.ErrorIs(t, err, domerrors.ErrPersistence)

	err = e.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, domerrors.ErrPersistence)

	flaky.setFailing(false)
	info, err := e.AccountInfo(ctx, "bob")
	require.NoError(t, err)
	require.Nil(t, info)

	info, err = e.AccountInfo(ctx, "alice")
	require.NoError(t, err)
	require.Zero(t, info.FailureCount, "failed save must not leave a phantom failure in memory")
}

func TestSeed(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Register(ctx, "admin", "original1"))
	require.NoError(t, e.Seed(ctx, []SeedAccount{
		{Identifier: "admin", Password: "changed1"},
		{Identifier: "user1", Password: "password1"},
	}))
	require.Equal(t, 2, e.AccountCount())

	// Seeding never overwrites an existing record.
	require.NoError(t, e.Login(ctx, "admin", "original1"))
	require.NoError(t, e.Login(ctx, "user1", "password1"))

	// Seeding is idempotent.
	require.NoError(t, e.Seed(ctx, []SeedAccount{{Identifier: "user1", Password: "password1"}}))
	require.Equal(t, 2, e.AccountCount())
}

func TestLoadFailureFallsBackToEmpty(t *testing.T) {
	failing := &loadFailStore{}
	e := NewEngine(context.Background(), failing, plainHasher{}, Options{}, zerolog.Nop())
	require.Zero(t, e.AccountCount())
}

type loadFailStore struct{ store.MemoryStore }

func (s *loadFailStore) Load(ctx context.Context) (map[string]*domain.Account, error) {
	return nil, errors.New("medium unreachable")
}

func TestConcurrentFailedLogins(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Register(ctx, "alice", "secret1"))

	// Two concurrent wrong-password logins must both be counted; the mutex
	// prevents the lost-update race on the failure count.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Login(ctx, "alice", "wrong")
		}()
	}
	wg.Wait()

	info, err := e.AccountInfo(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 2, info.FailureCount)
}

// TestLockoutScenario walks the full reference scenario end to end.
func TestLockoutScenario(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Register(ctx, "alice", "secret1"))

	for _, remaining := range []int{4, 3, 2, 1} {
		err := e.Login(ctx, "alice", "wrong")
		var credErr *domerrors.CredentialsError
		require.ErrorAs(t, err, &credErr)
		require.Equal(t, remaining, credErr.AttemptsRemaining)
	}

	err := e.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, domerrors.ErrAccountLocked)

	err = e.Login(ctx, "alice", "secret1")
	require.ErrorIs(t, err, domerrors.ErrAccountLocked, "correct password must not bypass an active lock")

	ok, err := e.Unlock(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, e.Login(ctx, "alice", "secret1"))
}
