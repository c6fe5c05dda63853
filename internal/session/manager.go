package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
)

// CleanupFunc releases the transient resources bound to one live session.
type CleanupFunc func(ctx context.Context) error

// Live pairs a persisted session with its in-memory resources: the tool
// registry (some tools hold per-session state, like the browser) and the
// cleanup that releases them.
type Live struct {
	Session  *Session
	Registry engine.ToolRegistry

	cleanup  CleanupFunc
	tearOnce sync.Once
	tearErr  error
}

// ResourceFactory builds the per-session tool registry and its cleanup.
type ResourceFactory func(ctx context.Context, sessionID string) (engine.ToolRegistry, CleanupFunc, error)

// Manager owns the live session set. All methods are safe for concurrent use.
type Manager struct {
	store   *Store
	factory ResourceFactory

	mu   sync.Mutex
	live map[string]*Live
}

func NewManager(store *Store, factory ResourceFactory) *Manager {
	return &Manager{
		store:   store,
		factory: factory,
		live:    make(map[string]*Live),
	}
}

// Create provisions a new session: a fresh ID, a persisted empty checkpoint,
// and the per-session resources.
func (m *Manager) Create(ctx context.Context) (*Live, error) {
	id := uuid.NewString()

	sess, err := m.store.GetOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}

	return m.activate(ctx, sess)
}

// Get returns the live session for id, resuming it from its checkpoint if it
// is not already active.
func (m *Manager) Get(ctx context.Context, id string) (*Live, error) {
	m.mu.Lock()
	if l, ok := m.live[id]; ok {
		m.mu.Unlock()
		return l, nil
	}
	m.mu.Unlock()

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return m.activate(ctx, sess)
}

func (m *Manager) activate(ctx context.Context, sess *Session) (*Live, error) {
	registry, cleanup, err := m.factory(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to provision session %s: %w", sess.ID, err)
	}

	l := &Live{
		Session:  sess,
		Registry: registry,
		cleanup:  cleanup,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.live[sess.ID]; ok {
		// Lost the race; release the resources we just built.
		if cleanup != nil {
			_ = cleanup(ctx)
		}
		return existing, nil
	}
	m.live[sess.ID] = l
	return l, nil
}

// Checkpoint persists the live session's current state.
func (m *Manager) Checkpoint(ctx context.Context, l *Live) error {
	l.Session.Touch()
	return m.store.Put(ctx, l.Session)
}

// List returns metadata for all persisted sessions.
func (m *Manager) List(ctx context.Context) ([]Meta, error) {
	return m.store.List(ctx)
}

// Teardown releases a session's resources and drops it from the live set.
// Idempotent: the cleanup runs at most once, later calls return the first
// result. The checkpoint stays in the store so the session can be resumed.
func (m *Manager) Teardown(id string) error {
	m.mu.Lock()
	l, ok := m.live[id]
	if ok {
		delete(m.live, id)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return l.teardown()
}

// TeardownAll releases every live session, returning the first error.
func (m *Manager) TeardownAll() error {
	m.mu.Lock()
	all := make([]*Live, 0, len(m.live))
	for _, l := range m.live {
		all = append(all, l)
	}
	m.live = make(map[string]*Live)
	m.mu.Unlock()

	var firstErr error
	for _, l := range all {
		if err := l.teardown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

const teardownGracePeriod = 10 * time.Second

func (l *Live) teardown() error {
	l.tearOnce.Do(func() {
		if l.cleanup == nil {
			return
		}

		// Graceful release first; if the grace period expires, fall back to
		// a blocking call so the resources are released no matter what.
		ctx, cancel := context.WithTimeout(context.Background(), teardownGracePeriod)
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- l.cleanup(ctx) }()

		select {
		case err := <-done:
			l.tearErr = err
		case <-ctx.Done():
			l.tearErr = l.cleanup(context.Background())
		}
	})
	return l.tearErr
}
