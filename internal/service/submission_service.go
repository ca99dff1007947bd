package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"rickshaw-client/internal/dto"
	"rickshaw-client/internal/mapper"
	"rickshaw-client/internal/pkg/logger"
	"rickshaw-client/pkg/detection"
	"rickshaw-client/pkg/encoder"
	"rickshaw-client/pkg/events"
	"rickshaw-client/pkg/intake"
	"rickshaw-client/pkg/state"
	"rickshaw-client/pkg/store"

	"github.com/google/uuid"
)

const analyzeFailurePrefix = "Failed to analyze image: "

// SessionStore is the in-memory session storage the controller mutates.
type SessionStore interface {
	Get(sessionID uuid.UUID) (store.Session, bool)
	GetOrCreate(sessionID uuid.UUID) store.Session
	Update(sessionID uuid.UUID, fn func(store.Session) (store.Session, error)) (store.Session, error)
}

type ISubmissionService interface {
	Open(ctx context.Context, sessionID uuid.UUID) dto.SessionSnapshot
	Snapshot(ctx context.Context, sessionID uuid.UUID) (dto.SessionSnapshot, error)
	SwitchMode(ctx context.Context, sessionID uuid.UUID, req *dto.SwitchModeRequest) (dto.SessionSnapshot, error)
	SetImageURL(ctx context.Context, sessionID uuid.UUID, req *dto.SetImageURLRequest) (dto.SessionSnapshot, error)
	SelectFile(ctx context.Context, sessionID uuid.UUID, name, mimeType string, size int64, r io.Reader) (dto.SessionSnapshot, error)
	RejectFile(ctx context.Context, sessionID uuid.UUID, message string) (dto.SessionSnapshot, error)
	Submit(ctx context.Context, sessionID uuid.UUID) (*Cycle, error)
	Reset(ctx context.Context, sessionID uuid.UUID) (dto.SessionSnapshot, error)
}

type submissionService struct {
	sessions  SessionStore
	states    *state.Manager
	encoder   *encoder.Encoder
	reader    intake.DataURIReader
	analyzer  detection.Analyzer
	publisher IPublisherService
	mapper    *mapper.SessionMapper
	logger    logger.ILogger
}

func NewSubmissionService(
	sessions SessionStore,
	states *state.Manager,
	reader intake.DataURIReader,
	analyzer detection.Analyzer,
	publisher IPublisherService,
	sessionMapper *mapper.SessionMapper,
	log logger.ILogger,
) ISubmissionService {
	return &submissionService{
		sessions:  sessions,
		states:    states,
		encoder:   encoder.New(reader),
		reader:    reader,
		analyzer:  analyzer,
		publisher: publisher,
		mapper:    sessionMapper,
		logger:    log,
	}
}

func (s *submissionService) Open(ctx context.Context, sessionID uuid.UUID) dto.SessionSnapshot {
	return s.mapper.ToSnapshot(s.sessions.GetOrCreate(sessionID))
}

func (s *submissionService) Snapshot(ctx context.Context, sessionID uuid.UUID) (dto.SessionSnapshot, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return dto.SessionSnapshot{}, store.ErrSessionNotFound
	}
	return s.mapper.ToSnapshot(sess), nil
}

// apply runs one transition under the store lock.
func (s *submissionService) apply(sessionID uuid.UUID, event string, fn state.Transition) (store.Session, error) {
	return s.sessions.Update(sessionID, func(cur store.Session) (store.Session, error) {
		return s.states.Apply(event, cur, fn)
	})
}

func (s *submissionService) mutate(ctx context.Context, sessionID uuid.UUID, event string, fn state.Transition) (dto.SessionSnapshot, error) {
	next, err := s.apply(sessionID, event, fn)
	if err != nil {
		return dto.SessionSnapshot{}, err
	}
	snap := s.mapper.ToSnapshot(next)
	s.publish(ctx, events.TypeSessionUpdated, uuid.Nil, snap)
	return snap, nil
}

func (s *submissionService) SwitchMode(ctx context.Context, sessionID uuid.UUID, req *dto.SwitchModeRequest) (dto.SessionSnapshot, error) {
	mode, err := store.ParseInputMode(req.Mode)
	if err != nil {
		return dto.SessionSnapshot{}, err
	}
	return s.mutate(ctx, sessionID, "switch_mode", func(cur store.Session) (store.Session, error) {
		return state.SwitchMode(cur, mode)
	})
}

func (s *submissionService) SetImageURL(ctx context.Context, sessionID uuid.UUID, req *dto.SetImageURLRequest) (dto.SessionSnapshot, error) {
	return s.mutate(ctx, sessionID, "set_url", func(cur store.Session) (store.Session, error) {
		return state.SetImageURL(cur, req.ImageURL)
	})
}

// SelectFile validates and reads a picked file, then derives its data URI preview.
// A rejected file only sets the session error; it is not returned as an error.
func (s *submissionService) SelectFile(ctx context.Context, sessionID uuid.UUID, name, mimeType string, size int64, r io.Reader) (dto.SessionSnapshot, error) {
	cur, ok := s.sessions.Get(sessionID)
	if !ok {
		return dto.SessionSnapshot{}, store.ErrSessionNotFound
	}
	if cur.Loading {
		return dto.SessionSnapshot{}, store.ErrSubmissionInFlight
	}
	if cur.InputMode != store.ModeUpload {
		return dto.SessionSnapshot{}, state.ErrInputModeMismatch
	}

	file, err := intake.ReadFile(name, mimeType, size, r)
	if err != nil {
		var verr *intake.ValidationError
		if !errors.As(err, &verr) {
			s.logger.Warn("SubmissionService", "Upload read failed", map[string]interface{}{
				"session_id": sessionID.String(),
				"error":      err.Error(),
			})
			return s.RejectFile(ctx, sessionID, intake.MsgReadFileFail)
		}
		s.logger.Info("SubmissionService", "File rejected", map[string]interface{}{
			"session_id": sessionID.String(),
			"mime_type":  mimeType,
			"size":       size,
		})
		return s.RejectFile(ctx, sessionID, verr.Message)
	}

	preview, err := s.reader.ReadDataURI(ctx, file)
	if err != nil {
		return s.RejectFile(ctx, sessionID, (&encoder.EncodingError{Cause: err}).Error())
	}

	return s.mutate(ctx, sessionID, "accept_file", func(cur store.Session) (store.Session, error) {
		return state.AcceptFile(cur, file, preview)
	})
}

// RejectFile records a file that never made it to SelectFile, such as an upload cut off
// by the body limit. Nothing but the error changes.
func (s *submissionService) RejectFile(ctx context.Context, sessionID uuid.UUID, message string) (dto.SessionSnapshot, error) {
	return s.mutate(ctx, sessionID, "reject_file", func(cur store.Session) (store.Session, error) {
		return state.RejectFile(cur, message)
	})
}

func (s *submissionService) Reset(ctx context.Context, sessionID uuid.UUID) (dto.SessionSnapshot, error) {
	return s.mutate(ctx, sessionID, "reset", state.Reset)
}

// Submit starts a cycle. Validation failures settle immediately; otherwise encoding and
// sending continue on their own goroutine and the returned Cycle settles later.
func (s *submissionService) Submit(ctx context.Context, sessionID uuid.UUID) (*Cycle, error) {
	cycleID := uuid.New()

	next, err := s.apply(sessionID, "submit", func(cur store.Session) (store.Session, error) {
		return state.Begin(cur, cycleID)
	})
	if err != nil {
		return nil, err
	}

	snap := s.mapper.ToSnapshot(next)
	if !next.Loading {
		cycle := newCycle(uuid.Nil, sessionID, snap)
		s.publish(ctx, events.TypeAnalysisSettled, uuid.Nil, snap)
		cycle.finish(snap)
		return cycle, nil
	}

	cycle := newCycle(cycleID, sessionID, snap)
	s.logger.Info("SubmissionService", "Analysis started", map[string]interface{}{
		"session_id": sessionID.String(),
		"cycle_id":   cycleID.String(),
		"mode":       string(next.InputMode),
	})
	s.publish(ctx, events.TypeAnalysisStarted, cycleID, snap)

	go s.run(context.WithoutCancel(ctx), cycle, next)
	return cycle, nil
}

type outcome struct {
	resp    *dto.AnalysisResponse
	failure string
	stale   bool
}

func (s *submissionService) run(ctx context.Context, cycle *Cycle, sess store.Session) {
	var out outcome
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("SubmissionService", "Analysis cycle panicked", map[string]interface{}{
				"cycle_id": cycle.ID.String(),
				"panic":    fmt.Sprint(r),
			})
			out = outcome{failure: analyzeFailurePrefix + fmt.Sprint(r)}
		}
		s.settle(ctx, cycle, out)
	}()

	req, err := s.encoder.Encode(ctx, sess)
	if err != nil {
		out.failure = encodeFailure(err)
		return
	}

	sending, err := s.apply(cycle.SessionID, "sending", func(cur store.Session) (store.Session, error) {
		return state.MarkSending(cur, cycle.ID)
	})
	if err != nil {
		out.stale = true
		return
	}
	s.publish(ctx, events.TypeAnalysisSending, cycle.ID, s.mapper.ToSnapshot(sending))

	resp, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		out.failure = analyzeFailurePrefix + err.Error()
		return
	}
	out.resp = resp
}

// settle is the single exit of a cycle: it always clears Loading for a current cycle.
func (s *submissionService) settle(ctx context.Context, cycle *Cycle, out outcome) {
	var (
		next store.Session
		err  error
	)
	if !out.stale {
		next, err = s.apply(cycle.SessionID, "settle", func(cur store.Session) (store.Session, error) {
			if out.failure != "" || out.resp == nil {
				msg := out.failure
				if msg == "" {
					msg = analyzeFailurePrefix + "empty response"
				}
				return state.Fail(cur, cycle.ID, msg)
			}
			return state.Succeed(cur, cycle.ID, out.resp)
		})
	}

	if out.stale || err != nil {
		s.logger.Warn("SubmissionService", "Discarded outcome of superseded cycle", map[string]interface{}{
			"session_id": cycle.SessionID.String(),
			"cycle_id":   cycle.ID.String(),
		})
		final := cycle.Started
		if cur, ok := s.sessions.Get(cycle.SessionID); ok {
			final = s.mapper.ToSnapshot(cur)
		}
		cycle.finish(final)
		return
	}

	snap := s.mapper.ToSnapshot(next)
	s.logger.Info("SubmissionService", "Analysis settled", map[string]interface{}{
		"session_id": cycle.SessionID.String(),
		"cycle_id":   cycle.ID.String(),
		"phase":      snap.Phase,
		"error":      snap.Error,
	})
	s.publish(ctx, events.TypeAnalysisSettled, cycle.ID, snap)
	cycle.finish(snap)
}

func encodeFailure(err error) string {
	var verr *intake.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

func (s *submissionService) publish(ctx context.Context, eventType string, cycleID uuid.UUID, snap dto.SessionSnapshot) {
	if s.publisher == nil {
		return
	}
	// Publish failures are logged by the publisher; the session state is already stored.
	_ = s.publisher.Publish(ctx, events.NewSessionEvent(eventType, cycleID, snap))
}
