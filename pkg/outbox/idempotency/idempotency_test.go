package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeStore struct {
	setNXResult bool
	setNXError  error
	lastKey     string
	lastTTL     time.Duration
	lastDeleted string
}

func (f *fakeStore) Get(context.Context, string) (string, error) { return "", nil }

func (f *fakeStore) Set(context.Context, string, any, time.Duration) error { return nil }

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	f.lastKey = key
	f.lastTTL = ttl
	return f.setNXResult, f.setNXError
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "bb:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	if len(keys) > 0 {
		f.lastDeleted = keys[0]
	}
	return nil
}

func TestCheckAndMarkProcessed(t *testing.T) {
	cases := []struct {
		name        string
		setNXResult bool
		wantAlready bool
	}{
		{name: "first delivery claims the event", setNXResult: true, wantAlready: false},
		{name: "redelivery is reported as already processed", setNXResult: false, wantAlready: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{setNXResult: tc.setNXResult}
			manager, err := NewManager(store, 24*time.Hour)
			if err != nil {
				t.Fatalf("NewManager: %v", err)
			}

			eventID := uuid.New()
			already, err := manager.CheckAndMarkProcessed(context.Background(), "notifications-worker", eventID)
			if err != nil {
				t.Fatalf("CheckAndMarkProcessed: %v", err)
			}
			if already != tc.wantAlready {
				t.Fatalf("already = %v, want %v", already, tc.wantAlready)
			}

			wantKey := "bb:idempotency:evt:processed:notifications-worker:" + eventID.String()
			if store.lastKey != wantKey {
				t.Fatalf("unexpected key %q", store.lastKey)
			}
			if store.lastTTL != 24*time.Hour {
				t.Fatalf("unexpected ttl %v", store.lastTTL)
			}
		})
	}
}

func TestCheckAndMarkProcessedStoreError(t *testing.T) {
	store := &fakeStore{setNXError: errors.New("boom")}
	manager, err := NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := manager.CheckAndMarkProcessed(context.Background(), "notifications-worker", uuid.New()); err == nil {
		t.Fatal("expected store error to propagate")
	}
}

func TestCheckAndMarkProcessedRejectsBadInput(t *testing.T) {
	manager, err := NewManager(&fakeStore{}, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := manager.CheckAndMarkProcessed(context.Background(), "", uuid.New()); err == nil {
		t.Fatal("expected error for empty consumer")
	}
	if _, err := manager.CheckAndMarkProcessed(context.Background(), "notifications-worker", uuid.Nil); err == nil {
		t.Fatal("expected error for nil event id")
	}
}

func TestDeleteReleasesClaim(t *testing.T) {
	store := &fakeStore{}
	manager, err := NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	eventID := uuid.New()
	if err := manager.Delete(context.Background(), "notifications-worker", eventID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	want := "bb:idempotency:evt:processed:notifications-worker:" + eventID.String()
	if store.lastDeleted != want {
		t.Fatalf("unexpected deleted key %q", store.lastDeleted)
	}
}
