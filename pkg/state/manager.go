package state

import (
	"errors"

	"rickshaw-client/internal/pkg/logger"
	"rickshaw-client/pkg/store"
)

// Transition is one pure step applied to a session.
type Transition func(store.Session) (store.Session, error)

// Manager applies transitions and logs phase changes.
type Manager struct {
	logger logger.ILogger
}

func NewManager(logger logger.ILogger) *Manager {
	return &Manager{logger: logger}
}

// Apply runs fn on s under the given event name.
func (m *Manager) Apply(event string, s store.Session, fn Transition) (store.Session, error) {
	next, err := fn(s)
	if err != nil {
		if errors.Is(err, ErrStaleCycle) {
			m.logger.Warn("STATE", "Dropped transition for superseded cycle", map[string]interface{}{
				"event":      event,
				"session_id": s.ID.String(),
				"cycle_id":   s.CycleID.String(),
			})
		}
		return s, err
	}

	if next.Phase != s.Phase {
		m.logger.Info("STATE", "Transitioned to "+string(next.Phase), map[string]interface{}{
			"event":      event,
			"session_id": s.ID.String(),
			"from":       string(s.Phase),
			"loading":    next.Loading,
		})
	}
	return next, nil
}
