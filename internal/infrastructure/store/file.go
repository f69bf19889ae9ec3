package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/lockgate/internal/application/ports"
	"github.com/amirhosseinghanipour/lockgate/internal/domain"
	domerrors "github.com/amirhosseinghanipour/lockgate/internal/domain/errors"
)

// FileStore persists accounts as one JSON object keyed by identifier. Load is
// tolerant: a missing, unreadable, or corrupt file yields an empty mapping
// with a warning, never a startup failure. Save goes through a temp file and
// rename so a concurrent reader never observes a partial write.
type FileStore struct {
	path string
	log  zerolog.Logger
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

func (s *FileStore) Load(ctx context.Context) (map[string]*domain.Account, error) {
	accounts := make(map[string]*domain.Account)
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("account file unreadable, starting empty")
		}
		return accounts, nil
	}
	var records map[string]record
	if err := json.Unmarshal(raw, &records); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("account file corrupt, starting empty")
		return accounts, nil
	}
	for identifier, r := range records {
		accounts[identifier] = decodeRecord(identifier, r)
	}
	return accounts, nil
}

func (s *FileStore) Save(ctx context.Context, accounts map[string]*domain.Account) error {
	records := make(map[string]record, len(accounts))
	for identifier, a := range accounts {
		records[identifier] = encodeRecord(a)
	}
	buf, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode accounts: %v", domerrors.ErrPersistence, err)
	}
	if err := writeFileAtomic(s.path, buf, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %v", domerrors.ErrPersistence, s.path, err)
	}
	return nil
}

var _ ports.CredentialStore = (*FileStore)(nil)
