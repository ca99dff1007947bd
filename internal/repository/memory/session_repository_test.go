package memory

import (
	"errors"
	"testing"
	"time"

	"rickshaw-client/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate(t *testing.T) {
	repo := NewSessionRepository(time.Minute, time.Minute)
	id := uuid.New()

	_, ok := repo.Get(id)
	assert.False(t, ok)

	s := repo.GetOrCreate(id)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, store.ModeURL, s.InputMode)
	assert.Equal(t, 1, repo.Count())

	again := repo.GetOrCreate(id)
	assert.Equal(t, s.UpdatedAt, again.UpdatedAt)
	assert.Equal(t, 1, repo.Count())
}

func TestUpdate(t *testing.T) {
	repo := NewSessionRepository(time.Minute, time.Minute)
	id := uuid.New()
	repo.GetOrCreate(id)

	next, err := repo.Update(id, func(s store.Session) (store.Session, error) {
		s.ImageURL = "https://x/y.jpg"
		return s, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "https://x/y.jpg", next.ImageURL)

	boom := errors.New("boom")
	_, err = repo.Update(id, func(s store.Session) (store.Session, error) {
		s.ImageURL = "discarded"
		return s, boom
	})
	assert.ErrorIs(t, err, boom)

	stored, _ := repo.Get(id)
	assert.Equal(t, "https://x/y.jpg", stored.ImageURL)
}

func TestUpdateMissingSession(t *testing.T) {
	repo := NewSessionRepository(time.Minute, time.Minute)

	_, err := repo.Update(uuid.New(), func(s store.Session) (store.Session, error) { return s, nil })
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestExpiry(t *testing.T) {
	repo := NewSessionRepository(20*time.Millisecond, time.Hour)
	id := uuid.New()
	repo.GetOrCreate(id)

	time.Sleep(40 * time.Millisecond)

	_, ok := repo.Get(id)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	repo := NewSessionRepository(time.Minute, time.Minute)
	id := uuid.New()
	repo.GetOrCreate(id)

	repo.Delete(id)

	_, ok := repo.Get(id)
	assert.False(t, ok)
}
