package attendance

import (
	"context"

	"classroll/internal/adapters/storage/kv"
	domain "classroll/internal/domain/attendance"
)

// KVStore implements Store under the attendanceRecords key.
type KVStore struct {
	kv kv.Store
}

// NewKVStore creates a new KVStore.
func NewKVStore(store kv.Store) *KVStore {
	return &KVStore{kv: store}
}

// Load reads the ledger snapshot.
// PRE: none
// POST: found is false if the key is absent or malformed
func (s *KVStore) Load(ctx context.Context) ([]domain.Record, bool, error) {
	var records []domain.Record
	found, err := kv.LoadJSON(ctx, s.kv, kv.KeyAttendance, &records)
	if err != nil || !found {
		return nil, false, err
	}
	return records, true, nil
}

// Save overwrites the ledger snapshot.
// PRE: records are in insertion order
// POST: The full list is persisted in order
func (s *KVStore) Save(ctx context.Context, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	return kv.SaveJSON(ctx, s.kv, kv.KeyAttendance, records)
}
