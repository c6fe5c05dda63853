package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := &Session{
		ID:        "s1",
		Title:     "capital quiz",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
		History: []engine.ChatMessage{
			{Role: engine.RoleUser, Content: "capital of France?"},
			{Role: engine.RoleAssistant, Content: "Paris"},
			{Role: engine.RoleEvaluator, Content: "Feedback from the evaluator: correct."},
		},
		Totals: engine.Usage{Prompt: 100, Completion: 20, Total: 120},
	}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != sess.Title || len(got.History) != 3 || got.Totals.Total != 120 {
		t.Errorf("loaded session = %+v", got)
	}
	if got.History[2].Role != engine.RoleEvaluator {
		t.Errorf("evaluator message role lost: %s", got.History[2].Role)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreGetOrCreate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.GetOrCreate(ctx, "fresh")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if sess.ID != "fresh" || len(sess.History) != 0 {
		t.Errorf("created session = %+v", sess)
	}

	// Second call must return the stored row, not recreate it.
	sess.History = append(sess.History, engine.ChatMessage{Role: engine.RoleUser, Content: "hi"})
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}
	again, err := store.GetOrCreate(ctx, "fresh")
	if err != nil {
		t.Fatalf("GetOrCreate second call: %v", err)
	}
	if len(again.History) != 1 {
		t.Errorf("history lost on GetOrCreate: %d messages", len(again.History))
	}
}

func TestStorePutOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	sess := &Session{ID: "s1", CreatedAt: now, UpdatedAt: now}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}

	sess.Title = "renamed"
	sess.History = []engine.ChatMessage{{Role: engine.RoleUser, Content: "x"}}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "renamed" || len(got.History) != 1 {
		t.Errorf("overwrite not applied: %+v", got)
	}
}

func TestStoreDeleteAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b"} {
		now := time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := store.Put(ctx, &Session{ID: id, Title: id, CreatedAt: now, UpdatedAt: now}); err != nil {
			t.Fatalf("Put(%s): %v", id, err)
		}
	}

	metas, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 || metas[0].ID != "b" {
		t.Errorf("List = %+v, want newest first", metas)
	}

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing session is a no-op.
	if err := store.Delete(ctx, "a"); err != nil {
		t.Errorf("repeated Delete: %v", err)
	}
}
