package workflow

import (
	"errors"
	"testing"
	"time"
)

func TestInMemoryDraftStore_PutGet(t *testing.T) {
	store := NewInMemoryDraftStore(time.Minute)
	defer store.Stop()

	draft := NewDraft("d1", "user-1", testSpace())
	store.Put(draft)

	got, err := store.Get("d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "d1" || got.UserID != "user-1" {
		t.Errorf("unexpected draft %+v", got)
	}
}

func TestInMemoryDraftStore_MissingDraft(t *testing.T) {
	store := NewInMemoryDraftStore(time.Minute)
	defer store.Stop()

	if _, err := store.Get("nope"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("expected %v, got %v", ErrDraftNotFound, err)
	}
}

func TestInMemoryDraftStore_Expiry(t *testing.T) {
	store := NewInMemoryDraftStore(10 * time.Millisecond)
	defer store.Stop()

	store.Put(NewDraft("d1", "user-1", testSpace()))
	time.Sleep(20 * time.Millisecond)

	if _, err := store.Get("d1"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("expected expired draft to be gone, got %v", err)
	}
}

func TestInMemoryDraftStore_Delete(t *testing.T) {
	store := NewInMemoryDraftStore(time.Minute)
	defer store.Stop()

	store.Put(NewDraft("d1", "user-1", testSpace()))
	store.Delete("d1")

	if _, err := store.Get("d1"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("expected deleted draft to be gone, got %v", err)
	}
}
