package store

import (
	"errors"
	"time"

	"rickshaw-client/internal/dto"

	"github.com/google/uuid"
)

type InputMode string

const (
	ModeURL    InputMode = "url"
	ModeUpload InputMode = "upload"
)

// Phase is the submission lifecycle position of a session.
type Phase string

const (
	PhaseIdle           Phase = "IDLE"
	PhaseValidating     Phase = "VALIDATING"
	PhaseEncoding       Phase = "ENCODING"
	PhaseSending        Phase = "SENDING"
	PhaseSettledSuccess Phase = "SETTLED_SUCCESS"
	PhaseSettledFailure Phase = "SETTLED_FAILURE"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSubmissionInFlight = errors.New("an analysis is already in progress")
	ErrUnknownInputMode   = errors.New("unknown input mode")
)

// ImageFile is an accepted upload held in memory for the session lifetime.
type ImageFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Content  []byte `json:"-"`
}

// Session represents the interaction state of one browser in memory.
// Only the field matching InputMode (ImageURL or ImageFile) is meaningful.
type Session struct {
	ID           uuid.UUID             `json:"id"`
	InputMode    InputMode             `json:"input_mode"`
	ImageURL     string                `json:"image_url"`
	ImageFile    *ImageFile            `json:"image_file,omitempty"`
	ImagePreview string                `json:"image_preview,omitempty"`
	Loading      bool                  `json:"loading"`
	Result       *dto.AnalysisResponse `json:"result,omitempty"`
	Error        string                `json:"error,omitempty"`
	Phase        Phase                 `json:"phase"`
	CycleID      uuid.UUID             `json:"cycle_id"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// NewSession returns a session in its default state: URL mode, idle, nothing entered.
func NewSession(id uuid.UUID) Session {
	return Session{
		ID:        id,
		InputMode: ModeURL,
		Phase:     PhaseIdle,
		UpdatedAt: time.Now(),
	}
}

func ParseInputMode(s string) (InputMode, error) {
	switch InputMode(s) {
	case ModeURL:
		return ModeURL, nil
	case ModeUpload:
		return ModeUpload, nil
	}
	return "", ErrUnknownInputMode
}
