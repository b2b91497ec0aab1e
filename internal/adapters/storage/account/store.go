package account

import (
	"context"

	domain "classroll/internal/domain/account"
)

// Store persists the directory as one ordered snapshot.
type Store interface {
	// Load returns the saved accounts; found is false when nothing usable is stored.
	Load(ctx context.Context) (accounts []domain.Account, found bool, err error)
	Save(ctx context.Context, accounts []domain.Account) error
}
