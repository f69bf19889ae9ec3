package store

import (
	"context"
	"sync"

	"github.com/amirhosseinghanipour/lockgate/internal/application/ports"
	"github.com/amirhosseinghanipour/lockgate/internal/domain"
)

// MemoryStore keeps accounts in process memory. Nothing survives a restart;
// it exists for tests and throwaway runs.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*domain.Account)}
}

func (s *MemoryStore) Load(ctx context.Context) (map[string]*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*domain.Account, len(s.accounts))
	for id, a := range s.accounts {
		out[id] = a.Clone()
	}
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, accounts map[string]*domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*domain.Account, len(accounts))
	for id, a := range accounts {
		s.accounts[id] = a.Clone()
	}
	return nil
}

var _ ports.CredentialStore = (*MemoryStore)(nil)
