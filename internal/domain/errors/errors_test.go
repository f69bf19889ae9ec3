package errors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCredentialsErrorMatchesSentinel(t *testing.T) {
	err := &CredentialsError{AttemptsRemaining: 3}
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.NotErrorIs(t, err, ErrAccountLocked)
}

func TestCredentialsErrorMessage(t *testing.T) {
	require.Equal(t,
		"invalid identifier or password, 3 attempts remaining",
		(&CredentialsError{AttemptsRemaining: 3}).Error())
	require.Equal(t,
		"invalid identifier or password, 1 attempt remaining",
		(&CredentialsError{AttemptsRemaining: 1}).Error())
}

func TestLockedErrorMatchesSentinel(t *testing.T) {
	err := &LockedError{RetryAfter: time.Minute}
	require.ErrorIs(t, err, ErrAccountLocked)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLockedErrorMessage(t *testing.T) {
	require.Equal(t,
		"account is locked, retry in 9m59s",
		(&LockedError{RetryAfter: 9*time.Minute + 59*time.Second}).Error())
	require.Equal(t,
		"account is locked, retry in 0m07s",
		(&LockedError{RetryAfter: 7 * time.Second}).Error())
	require.Equal(t,
		"too many failed attempts, account locked for 10m0s",
		(&LockedError{RetryAfter: 10 * time.Minute, Triggered: true}).Error())
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrDuplicateIdentifier,
		ErrWeakIdentifier,
		ErrWeakCredential,
		ErrInvalidCredentials,
		ErrAccountLocked,
		ErrPersistence,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			require.False(t, errors.Is(a, b))
		}
	}
}
