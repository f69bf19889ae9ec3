package auth

import "context"

// Info is a read-only snapshot of one account's lock state.
type Info struct {
	Identifier   string
	Locked       bool
	FailureCount int
	LockMessage  string
}

// AccountInfo returns the identifier's current lock status and failure count,
// or nil for unknown identifiers. Evaluating the lock status may itself
// unlock an expired lock, so the snapshot reflects state after lazy expiry.
func (e *Engine) AccountInfo(ctx context.Context, identifier string) (*Info, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	acct, ok := e.accounts[identifier]
	if !ok {
		return nil, nil
	}
	locked, retryAfter, err := e.evaluateLocked(ctx, identifier)
	if err != nil {
		return nil, err
	}
	info := &Info{
		Identifier:   acct.Identifier,
		Locked:       locked,
		FailureCount: acct.FailureCount,
	}
	if locked {
		info.LockMessage = lockMessage(retryAfter)
	}
	return info, nil
}
