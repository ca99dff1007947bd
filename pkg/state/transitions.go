// Package state holds the pure transition functions of a session.
// Each function takes a Session value and returns the next one; none of them do I/O.
package state

import (
	"errors"
	"time"

	"rickshaw-client/internal/dto"
	"rickshaw-client/pkg/intake"
	"rickshaw-client/pkg/store"

	"github.com/google/uuid"
)

var (
	ErrStaleCycle        = errors.New("analysis cycle superseded")
	ErrInputModeMismatch = errors.New("input does not match the active input mode")
)

func touch(s store.Session) store.Session {
	s.UpdatedAt = time.Now()
	return s
}

// SwitchMode is a hard reset of everything except the field of the newly active mode.
func SwitchMode(s store.Session, mode store.InputMode) (store.Session, error) {
	if s.Loading {
		return s, store.ErrSubmissionInFlight
	}
	if mode != store.ModeURL && mode != store.ModeUpload {
		return s, store.ErrUnknownInputMode
	}

	next := store.NewSession(s.ID)
	next.InputMode = mode
	if mode == s.InputMode {
		switch mode {
		case store.ModeURL:
			next.ImageURL = s.ImageURL
			next.ImagePreview = intake.NormalizeURL(s.ImageURL)
		case store.ModeUpload:
			next.ImageFile = s.ImageFile
			next.ImagePreview = s.ImagePreview
		}
	}
	return touch(next), nil
}

// SetImageURL records the URL as typed; trimming happens at submit time.
func SetImageURL(s store.Session, raw string) (store.Session, error) {
	if s.Loading {
		return s, store.ErrSubmissionInFlight
	}
	if s.InputMode != store.ModeURL {
		return s, ErrInputModeMismatch
	}
	s.ImageURL = raw
	s.ImagePreview = intake.NormalizeURL(raw)
	return touch(s), nil
}

// AcceptFile stores an accepted upload with its data URI preview and clears any error.
func AcceptFile(s store.Session, file *store.ImageFile, preview string) (store.Session, error) {
	if s.Loading {
		return s, store.ErrSubmissionInFlight
	}
	if s.InputMode != store.ModeUpload {
		return s, ErrInputModeMismatch
	}
	s.ImageFile = file
	s.ImagePreview = preview
	s.Error = ""
	return touch(s), nil
}

// RejectFile sets the error and leaves every other field alone.
func RejectFile(s store.Session, message string) (store.Session, error) {
	if s.Loading {
		return s, store.ErrSubmissionInFlight
	}
	s.Error = message
	return touch(s), nil
}

// Guard reports whether the active mode's required field is present.
func Guard(s store.Session) error {
	switch s.InputMode {
	case store.ModeUpload:
		if s.ImageFile == nil {
			return &intake.ValidationError{Field: "image_file", Message: intake.MsgSelectImage}
		}
	default:
		if intake.NormalizeURL(s.ImageURL) == "" {
			return &intake.ValidationError{Field: "image_url", Message: intake.MsgEnterURL}
		}
	}
	return nil
}

// Begin moves Idle to Validating. A failed guard settles as a failure without a cycle
// (Loading stays false, Result untouched); a passing guard enters Encoding with loading
// set and the previous outcome cleared. Callers tell the two apart by Loading.
func Begin(s store.Session, cycleID uuid.UUID) (store.Session, error) {
	if s.Loading {
		return s, store.ErrSubmissionInFlight
	}
	s.Phase = store.PhaseValidating

	if err := Guard(s); err != nil {
		var verr *intake.ValidationError
		if !errors.As(err, &verr) {
			return s, err
		}
		s.Phase = store.PhaseSettledFailure
		s.Error = verr.Message
		return touch(s), nil
	}

	s.Phase = store.PhaseEncoding
	s.Loading = true
	s.Result = nil
	s.Error = ""
	s.CycleID = cycleID
	return touch(s), nil
}

func current(s store.Session, cycleID uuid.UUID) error {
	if !s.Loading || s.CycleID != cycleID {
		return ErrStaleCycle
	}
	return nil
}

func MarkSending(s store.Session, cycleID uuid.UUID) (store.Session, error) {
	if err := current(s, cycleID); err != nil {
		return s, err
	}
	s.Phase = store.PhaseSending
	return touch(s), nil
}

// Succeed stores the parsed response. An application-level failure payload is still a
// success here: the interpreter renders it, Error stays empty.
func Succeed(s store.Session, cycleID uuid.UUID, resp *dto.AnalysisResponse) (store.Session, error) {
	if err := current(s, cycleID); err != nil {
		return s, err
	}
	s.Phase = store.PhaseSettledSuccess
	s.Loading = false
	s.Result = resp
	s.Error = ""
	return touch(s), nil
}

func Fail(s store.Session, cycleID uuid.UUID, message string) (store.Session, error) {
	if err := current(s, cycleID); err != nil {
		return s, err
	}
	s.Phase = store.PhaseSettledFailure
	s.Loading = false
	s.Result = nil
	s.Error = message
	return touch(s), nil
}

// Reset returns the defaults. Refused while a cycle is in flight.
func Reset(s store.Session) (store.Session, error) {
	if s.Loading {
		return s, store.ErrSubmissionInFlight
	}
	return touch(store.NewSession(s.ID)), nil
}
