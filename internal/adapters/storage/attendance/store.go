package attendance

import (
	"context"

	domain "classroll/internal/domain/attendance"
)

// Store persists the ledger as one ordered snapshot.
type Store interface {
	// Load returns the saved records; found is false when nothing usable is stored.
	Load(ctx context.Context) (records []domain.Record, found bool, err error)
	Save(ctx context.Context, records []domain.Record) error
}
