package session

import (
	"errors"
	"testing"
	"time"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(30 * time.Minute)

	created := store.Create("starter", "Starter Launch", 250_000_000, "payer-wallet")
	if created.ID == "" {
		t.Fatal("expected generated session id")
	}
	if created.Verified {
		t.Error("new session should not be verified")
	}

	got, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PackageID != "starter" || got.ExpectedLamports != 250_000_000 || got.Wallet != "payer-wallet" {
		t.Errorf("unexpected intent: %+v", got)
	}
}

func TestStore_GetUnknown(t *testing.T) {
	store := NewStore(30 * time.Minute)

	_, err := store.Get("no-such-session")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore(30 * time.Minute)
	created := store.Create("pro", "Pro Launch", 450_000_000, "w")

	got, _ := store.Get(created.ID)
	got.Verified = true

	again, _ := store.Get(created.ID)
	if again.Verified {
		t.Error("mutating a returned intent must not affect the store")
	}
}

func TestStore_CreateSweepsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := NewStore(30 * time.Minute).WithClock(func() time.Time { return now })

	old := store.Create("starter", "Starter Launch", 250_000_000, "w1")
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}

	// Advance past the TTL; the next Create should sweep the stale entry.
	now = now.Add(31 * time.Minute)
	fresh := store.Create("pro", "Pro Launch", 450_000_000, "w2")

	if store.Len() != 1 {
		t.Errorf("expected stale session swept, got %d sessions", store.Len())
	}
	if _, err := store.Get(old.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected swept session to be gone, got %v", err)
	}
	if _, err := store.Get(fresh.ID); err != nil {
		t.Errorf("expected fresh session present, got %v", err)
	}
}

func TestStore_IsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := NewStore(30 * time.Minute).WithClock(func() time.Time { return now })

	intent := store.Create("starter", "Starter Launch", 250_000_000, "w")

	if store.IsExpired(intent) {
		t.Error("fresh session should not be expired")
	}

	now = now.Add(30 * time.Minute)
	if store.IsExpired(intent) {
		t.Error("session exactly at TTL should not be expired")
	}

	now = now.Add(time.Second)
	if !store.IsExpired(intent) {
		t.Error("session past TTL should be expired")
	}
}

func TestStore_MarkVerifiedMonotonic(t *testing.T) {
	store := NewStore(30 * time.Minute)
	intent := store.Create("starter", "Starter Launch", 250_000_000, "w")

	if err := store.MarkVerified(intent.ID, "sig-first"); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}
	if err := store.MarkVerified(intent.ID, "sig-second"); err != nil {
		t.Fatalf("MarkVerified repeat: %v", err)
	}

	got, _ := store.Get(intent.ID)
	if !got.Verified {
		t.Error("expected session verified")
	}
	if got.Signature != "sig-first" {
		t.Errorf("expected original signature kept, got %s", got.Signature)
	}
}

func TestStore_MarkVerifiedUnknown(t *testing.T) {
	store := NewStore(30 * time.Minute)

	if err := store.MarkVerified("missing", "sig"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Consume(t *testing.T) {
	store := NewStore(30 * time.Minute)
	intent := store.Create("starter", "Starter Launch", 250_000_000, "w")

	store.Consume(intent.ID)
	if _, err := store.Get(intent.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected consumed session gone, got %v", err)
	}

	// Consuming again is a no-op.
	store.Consume(intent.ID)
}
