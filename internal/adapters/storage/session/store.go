package session

import (
	"context"

	"classroll/internal/adapters/storage/kv"
	domain "classroll/internal/domain/account"
)

// Store persists the signed-in account across restarts.
type Store interface {
	Load(ctx context.Context) (acct domain.Account, found bool, err error)
	Save(ctx context.Context, acct domain.Account) error
	Clear(ctx context.Context) error
}

// KVStore implements Store under the currentUser key.
type KVStore struct {
	kv kv.Store
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.Store) *KVStore {
	return &KVStore{kv: store}
}

// Load reads the persisted session account.
// PRE: none
// POST: found is false if no session is stored or the blob is malformed
func (s *KVStore) Load(ctx context.Context) (domain.Account, bool, error) {
	var acct domain.Account
	found, err := kv.LoadJSON(ctx, s.kv, kv.KeySession, &acct)
	if err != nil || !found {
		return domain.Account{}, false, err
	}
	return acct, true, nil
}

// Save persists acct as the current session.
func (s *KVStore) Save(ctx context.Context, acct domain.Account) error {
	return kv.SaveJSON(ctx, s.kv, kv.KeySession, acct)
}

// Clear removes the persisted session.
func (s *KVStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, kv.KeySession)
}
