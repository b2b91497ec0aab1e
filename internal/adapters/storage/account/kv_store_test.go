package account_test

import (
	"context"
	"reflect"
	"testing"

	"classroll/internal/adapters/storage/account"
	"classroll/internal/adapters/storage/kv"
	domain "classroll/internal/domain/account"
)

// TestKVStore_RoundTrip verifies save then load yields the same ordered list.
func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := account.NewKVStore(kv.NewMemoryStore())

	want := append(domain.SeedAccounts(), domain.Account{
		Username: "émile",
		Password: "p@ss \"quoted\"",
		FullName: "Émile Zola",
		Role:     domain.RoleTeacher,
	})
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, found, err := store.Load(ctx)
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

// TestKVStore_AbsentAndMalformed verifies both report found=false without error.
func TestKVStore_AbsentAndMalformed(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	store := account.NewKVStore(mem)

	if _, found, err := store.Load(ctx); found || err != nil {
		t.Errorf("Load(absent) found=%v err=%v, want false/nil", found, err)
	}

	mem.Set(ctx, kv.KeyUsers, []byte("{not json"))
	if _, found, err := store.Load(ctx); found || err != nil {
		t.Errorf("Load(malformed) found=%v err=%v, want false/nil", found, err)
	}
}

// TestKVStore_UsesOriginalFieldNames keeps the persisted JSON shape stable.
func TestKVStore_UsesOriginalFieldNames(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	store := account.NewKVStore(mem)

	mem.Set(ctx, kv.KeyUsers, []byte(`[{"username":"admin","password":"1234","fullName":"Admin User","role":"Admin"}]`))
	got, found, err := store.Load(ctx)
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if len(got) != 1 || got[0].FullName != "Admin User" || got[0].Role != domain.RoleAdmin {
		t.Errorf("Load = %+v", got)
	}
}
