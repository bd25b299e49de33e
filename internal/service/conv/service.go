package conv

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voxline/voxline/internal/model/conv"
	"github.com/voxline/voxline/internal/model/persona"
	"github.com/voxline/voxline/internal/observability"
)

var (
	ErrUnknownMode     = errors.New("unknown conversation mode")
	ErrSessionNotFound = errors.New("session not found")
)

// Archiver receives the final snapshot of a session when it leaves the
// live set. How the snapshot is persisted is up to the hook.
type Archiver func(session conv.Session, reason conv.EndReason)

// Service owns the live session map. One entry per call identifier.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*conv.Session

	personas      persona.Store
	logger        zerolog.Logger
	idleTTL       time.Duration
	sweepInterval time.Duration
	archive       Archiver

	now func() time.Time
}

// NewService bootstraps the in-memory session store.
func NewService(personas persona.Store, logger zerolog.Logger, idleTTL, sweepInterval time.Duration) *Service {
	return &Service{
		sessions:      make(map[string]*conv.Session),
		personas:      personas,
		logger:        logger.With().Str("component", "conv").Logger(),
		idleTTL:       idleTTL,
		sweepInterval: sweepInterval,
		now:           time.Now,
	}
}

// OnArchive installs the archival hook invoked by End.
func (s *Service) OnArchive(fn Archiver) {
	s.archive = fn
}

// Create provisions a session for the call identifier, replacing any
// existing one wholesale. The mode must name a registered persona.
func (s *Service) Create(_ context.Context, id, mode string, meta conv.Metadata) (conv.Session, error) {
	if _, ok := s.personas.FindByID(mode); !ok {
		return conv.Session{}, ErrUnknownMode
	}

	now := s.now().UTC()
	session := &conv.Session{
		ID:           id,
		Mode:         mode,
		Messages:     make([]conv.Message, 0, 16),
		StartedAt:    now,
		LastActiveAt: now,
		Metadata:     meta,
	}

	s.mu.Lock()
	_, replaced := s.sessions[id]
	s.sessions[id] = session
	s.mu.Unlock()

	if !replaced {
		observability.SessionStarted()
	}

	s.logger.Info().
		Str("call_id", id).
		Str("mode", mode).
		Str("ip", meta.RemoteIP).
		Msg("conversation started")

	return snapshot(session), nil
}

// Get retrieves a session by call identifier. A hit refreshes the
// last-activity timestamp: reading a session keeps it alive.
func (s *Service) Get(_ context.Context, id string) (conv.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return conv.Session{}, false
	}

	session.LastActiveAt = s.now().UTC()
	return snapshot(session), true
}

// Append adds a message to the session history and bumps the counters.
func (s *Service) Append(_ context.Context, id, role, content string, ann conv.Annotations) (conv.Message, error) {
	message := conv.Message{
		ID:          uuid.NewString(),
		Role:        role,
		Content:     content,
		Timestamp:   s.now().UTC(),
		Annotations: ann,
	}

	s.mu.Lock()
	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return conv.Message{}, ErrSessionNotFound
	}
	session.Messages = append(session.Messages, message)
	session.Stats.MessageCount++
	session.LastActiveAt = s.now().UTC()
	s.mu.Unlock()

	s.logger.Info().
		Str("call_id", id).
		Str("role", role).
		Str("content", truncate(content, 100)).
		Msg("message appended")

	return message, nil
}

// AddStats merges the delta into the session counters additively.
// A missing session is a silent no-op.
func (s *Service) AddStats(_ context.Context, id string, delta conv.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return
	}
	session.Stats.MessageCount += delta.MessageCount
	session.Stats.AudioProcessing += delta.AudioProcessing
	session.Stats.TotalTurnDuration += delta.TotalTurnDuration
	session.LastActiveAt = s.now().UTC()
}

// End removes the session from the live set and emits the archival event.
// Calling End for an id that is already gone is a no-op, so an explicit
// end racing the idle sweep is harmless.
func (s *Service) End(_ context.Context, id string, reason conv.EndReason) {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	final := snapshot(session)
	duration := s.now().UTC().Sub(final.StartedAt)

	observability.SessionEnded(string(reason))
	s.logger.Info().
		Str("call_id", id).
		Str("reason", string(reason)).
		Dur("duration", duration).
		Int("messages", final.Stats.MessageCount).
		Msg("conversation ended")

	if s.archive != nil {
		s.archive(final, reason)
	}
}

// Summary reports the live session count and its distribution across modes.
func (s *Service) Summary(_ context.Context) (int, map[string]int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	modes := make(map[string]int)
	for _, session := range s.sessions {
		modes[session.Mode]++
	}
	return len(s.sessions), modes
}

// Sweep ends every session idle past the TTL with reason "timeout" and
// returns how many were evicted.
func (s *Service) Sweep(ctx context.Context) int {
	cutoff := s.now().UTC().Add(-s.idleTTL)

	s.mu.RLock()
	var expired []string
	for id, session := range s.sessions {
		if session.LastActiveAt.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range expired {
		s.End(ctx, id, conv.ReasonTimeout)
	}

	if len(expired) > 0 {
		s.logger.Info().Int("evicted", len(expired)).Msg("idle sweep finished")
	}
	return len(expired)
}

// StartSweeper runs the idle sweep on its fixed period until the context
// is cancelled.
func (s *Service) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// snapshot copies the session so callers never share the live message slice.
func snapshot(session *conv.Session) conv.Session {
	out := *session
	out.Messages = make([]conv.Message, len(session.Messages))
	copy(out.Messages, session.Messages)
	return out
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
