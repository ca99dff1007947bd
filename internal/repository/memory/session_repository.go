package memory

import (
	"sync"
	"time"

	"rickshaw-client/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
	mu    sync.Mutex
}

// NewSessionRepository keeps sessions for ttl after their last write and purges
// expired ones every cleanupInterval.
func NewSessionRepository(ttl, cleanupInterval time.Duration) *SessionRepository {
	return &SessionRepository{
		cache: cache.New(ttl, cleanupInterval),
	}
}

func (r *SessionRepository) Save(session store.Session) {
	r.cache.Set(session.ID.String(), session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID uuid.UUID) (store.Session, bool) {
	if x, found := r.cache.Get(sessionID.String()); found {
		return x.(store.Session), true
	}
	return store.Session{}, false
}

// GetOrCreate returns the stored session or saves a fresh default one.
func (r *SessionRepository) GetOrCreate(sessionID uuid.UUID) store.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.Get(sessionID); ok {
		return s
	}
	s := store.NewSession(sessionID)
	r.Save(s)
	return s
}

// Update applies fn to the stored session atomically. The result is saved only when fn
// succeeds. fn must not block.
func (r *SessionRepository) Update(sessionID uuid.UUID, fn func(store.Session) (store.Session, error)) (store.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.Get(sessionID)
	if !ok {
		return store.Session{}, store.ErrSessionNotFound
	}
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	r.Save(next)
	return next, nil
}

func (r *SessionRepository) Delete(sessionID uuid.UUID) {
	r.cache.Delete(sessionID.String())
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
