package account

import (
	"context"

	"classroll/internal/adapters/storage/kv"
	domain "classroll/internal/domain/account"
)

// KVStore implements Store under the usersList key.
type KVStore struct {
	kv kv.Store
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.Store) *KVStore {
	return &KVStore{kv: store}
}

// Load reads the directory snapshot.
// PRE: none
// POST: found is false if the key is absent or malformed
func (s *KVStore) Load(ctx context.Context) ([]domain.Account, bool, error) {
	var accounts []domain.Account
	found, err := kv.LoadJSON(ctx, s.kv, kv.KeyUsers, &accounts)
	if err != nil || !found {
		return nil, false, err
	}
	return accounts, true, nil
}

// Save overwrites the directory snapshot.
// PRE: accounts satisfy the directory invariants
// POST: The full list is persisted in order
func (s *KVStore) Save(ctx context.Context, accounts []domain.Account) error {
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return kv.SaveJSON(ctx, s.kv, kv.KeyUsers, accounts)
}
