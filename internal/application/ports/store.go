package ports

import (
	"context"

	"github.com/amirhosseinghanipour/lockgate/internal/domain"
)

// CredentialStore is the durable mapping from identifier to account record.
type CredentialStore interface {
	// Load reads the full mapping from the backing medium. A missing or
	// structurally corrupt medium yields an empty mapping, not an error;
	// errors are reserved for media that cannot be reached at all.
	Load(ctx context.Context) (map[string]*domain.Account, error)
	// Save replaces the backing medium with the given mapping, atomically
	// with respect to concurrent readers. Errors wrap errors.ErrPersistence.
	Save(ctx context.Context, accounts map[string]*domain.Account) error
}
