package service

import (
	"context"
	"sync"

	"rickshaw-client/internal/dto"

	"github.com/google/uuid"
)

// Cycle is one submission from submit to settle.
type Cycle struct {
	ID        uuid.UUID
	SessionID uuid.UUID

	// Started is the snapshot right after the submit was accepted (or rejected by validation).
	Started dto.SessionSnapshot

	once  sync.Once
	done  chan struct{}
	final dto.SessionSnapshot
}

func newCycle(id, sessionID uuid.UUID, started dto.SessionSnapshot) *Cycle {
	return &Cycle{
		ID:        id,
		SessionID: sessionID,
		Started:   started,
		done:      make(chan struct{}),
	}
}

func (c *Cycle) finish(final dto.SessionSnapshot) {
	c.once.Do(func() {
		c.final = final
		close(c.done)
	})
}

// Done is closed once the cycle has settled.
func (c *Cycle) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the cycle settles or ctx ends.
func (c *Cycle) Wait(ctx context.Context) (dto.SessionSnapshot, error) {
	select {
	case <-c.done:
		return c.final, nil
	case <-ctx.Done():
		return c.Started, ctx.Err()
	}
}
