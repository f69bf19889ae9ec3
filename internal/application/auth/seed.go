package auth

import (
	"context"
	"fmt"

	"github.com/amirhosseinghanipour/lockgate/internal/domain"
)

// SeedAccount is a default credential pair registered by Seed.
type SeedAccount struct {
	Identifier string
	Password   string
}

// Seed registers any of the given accounts that do not exist yet; existing
// records are left untouched. Seeding is an explicit caller decision, not a
// side effect of loading an empty store, so tests and deployments control
// exactly when defaults appear.
func (e *Engine) Seed(ctx context.Context, defaults []SeedAccount) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var added []string
	for _, d := range defaults {
		if _, ok := e.accounts[d.Identifier]; ok {
			continue
		}
		digest, err := e.hasher.Hash(d.Password)
		if err != nil {
			for _, id := range added {
				delete(e.accounts, id)
			}
			return fmt.Errorf("hash credential for %q: %w", d.Identifier, err)
		}
		e.accounts[d.Identifier] = domain.NewAccount(d.Identifier, digest, e.now())
		added = append(added, d.Identifier)
	}
	if len(added) == 0 {
		return nil
	}
	if err := e.persist(ctx); err != nil {
		for _, id := range added {
			delete(e.accounts, id)
		}
		return err
	}
	e.log.Info().Strs("identifiers", added).Msg("seeded default accounts")
	return nil
}
