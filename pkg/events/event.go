package events

import (
	"time"

	"rickshaw-client/internal/dto"

	"github.com/google/uuid"
)

const (
	TopicAnalysis = "analysis.events"

	TypeSessionUpdated  = "SESSION_UPDATED"
	TypeAnalysisStarted = "ANALYSIS_STARTED"
	TypeAnalysisSending = "ANALYSIS_SENDING"
	TypeAnalysisSettled = "ANALYSIS_SETTLED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ANALYSIS_SETTLED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// SessionEvent carries a session snapshot after a transition.
type SessionEvent struct {
	Type       string              `json:"type"`
	SessionID  uuid.UUID           `json:"session_id"`
	CycleID    uuid.UUID           `json:"cycle_id"`
	Snapshot   dto.SessionSnapshot `json:"snapshot"`
	OccurredAt time.Time           `json:"occurred_at"`
}

func NewSessionEvent(eventType string, cycleID uuid.UUID, snapshot dto.SessionSnapshot) SessionEvent {
	return SessionEvent{
		Type:       eventType,
		SessionID:  snapshot.Id,
		CycleID:    cycleID,
		Snapshot:   snapshot,
		OccurredAt: time.Now(),
	}
}

func (e SessionEvent) EventType() string {
	return e.Type
}

func (e SessionEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.SessionID.String(),
		"cycle_id":   e.CycleID.String(),
		"phase":      e.Snapshot.Phase,
		"loading":    e.Snapshot.Loading,
	}
}

func (e SessionEvent) Timestamp() time.Time {
	return e.OccurredAt
}
