package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// LoadJSON decodes the value under key into dst.
// A missing key or a blob that does not parse reports found=false with a nil
// error; callers fall back to defaults instead of failing.
// PRE: dst is a non-nil pointer
// POST: dst is populated only when found is true
func LoadJSON[T any](ctx context.Context, store Store, key string, dst *T) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Warn("kv_malformed", "key", key, "error", err.Error())
		return false, nil
	}
	*dst = v
	return true, nil
}

// SaveJSON encodes v and writes it under key as a full snapshot.
func SaveJSON[T any](ctx context.Context, store Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}
