// Package kv is the persistence adapter: an opaque key-value store of
// serialized snapshots. Every write replaces the whole value for a key.
package kv

import (
	"context"
	"errors"
)

// Logical keys for persisted state.
const (
	KeyUsers      = "usersList"
	KeyAttendance = "attendanceRecords"
	KeySession    = "currentUser"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kv: key not found")

// Store persists opaque blobs by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
