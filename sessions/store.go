package sessions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-auth-client/storage"
	"github.com/rs/zerolog/log"
)

var _ Repo = (*Store)(nil)

// Store persists the session record as JSON in a storage slot.
type Store struct {
	storage storage.Storage
	key     string
}

// NewStore returns a Store writing to SessionKey in s.
func NewStore(s storage.Storage) *Store {
	return &Store{storage: s, key: SessionKey}
}

// Get reads and decodes the slot. A record that does not decode as a session
// is removed and reported as no session; storage failures are returned.
func (st *Store) Get(ctx context.Context) (*Session, error) {
	raw, ok, err := st.storage.GetItem(ctx, st.key)
	if err != nil {
		return nil, fmt.Errorf("[Store Get] read %s: %w", st.key, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var s *Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		log.Warn().Err(err).Str("key", st.key).Msg("discarding corrupt session record")
		if rmErr := st.storage.RemoveItem(ctx, st.key); rmErr != nil {
			return nil, fmt.Errorf("[Store Get] remove corrupt %s: %w", st.key, rmErr)
		}
		return nil, nil
	}
	return s, nil
}

func (st *Store) Set(ctx context.Context, session *Session) error {
	if session == nil {
		return st.Clear(ctx)
	}
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("[Store Set] encode session: %w", err)
	}
	if err := st.storage.SetItem(ctx, st.key, string(b)); err != nil {
		return fmt.Errorf("[Store Set] write %s: %w", st.key, err)
	}
	return nil
}

func (st *Store) Clear(ctx context.Context) error {
	if err := st.storage.RemoveItem(ctx, st.key); err != nil {
		return fmt.Errorf("[Store Clear] remove %s: %w", st.key, err)
	}
	return nil
}
