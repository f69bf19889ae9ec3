package auth

import "context"

// Unlock forces the account back to the unlocked state and zeroes its failure
// count, regardless of the current state. It returns false for unknown
// identifiers and is idempotent otherwise.
func (e *Engine) Unlock(ctx context.Context, identifier string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	acct, ok := e.accounts[identifier]
	if !ok {
		return false, nil
	}
	prev := acct.Clone()
	acct.ResetLock(e.now())
	if err := e.persist(ctx); err != nil {
		e.accounts[identifier] = prev
		return false, err
	}
	e.log.Info().Str("identifier", identifier).Msg("account unlocked")
	return true, nil
}
