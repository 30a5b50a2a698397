// Package identity creates and persists the two opaque identifiers that tag
// every backend request: a per-device client id and a per-user id.
//
// Both are generated once on first run from cryptographically random sources
// and reused verbatim forever after.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/nroh/slidegen/internal/domain"
	"github.com/nroh/slidegen/internal/logging"
	"github.com/nroh/slidegen/internal/storage"
)

// Fixed storage keys. Changing these would orphan existing identities.
const (
	KeyClientID = "client_id"
	KeyUserID   = "user_id"
)

// Store loads or creates the persisted identity.
type Store struct {
	db  *storage.Store
	log *logging.Logger
}

// NewStore wraps the local database.
func NewStore(db *storage.Store) *Store {
	return &Store{db: db, log: logging.New("identity")}
}

// Load returns the device identity, creating and persisting it on first run.
func (s *Store) Load(ctx context.Context) (domain.Identity, error) {
	clientID, created, err := s.loadOrCreate(ctx, KeyClientID, newClientID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("load client id: %w", err)
	}
	userID, userCreated, err := s.loadOrCreate(ctx, KeyUserID, newUserID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("load user id: %w", err)
	}

	if created || userCreated {
		s.log.WithUser(userID).Info("identity_created", map[string]interface{}{
			"client_id": clientID,
		})
	}
	return domain.Identity{ClientID: clientID, UserID: userID}, nil
}

func (s *Store) loadOrCreate(ctx context.Context, key string, gen func() string) (string, bool, error) {
	value, err := s.db.GetValue(ctx, key)
	if err == nil {
		return value, false, nil
	}
	if !errors.Is(err, storage.ErrNoValue) {
		return "", false, err
	}

	value = gen()
	if err := s.db.SetValue(ctx, key, value); err != nil {
		return "", false, err
	}
	return value, true, nil
}

func newClientID() string {
	return uuid.NewString()
}

func newUserID() string {
	return "user_" + ulid.Make().String()
}
