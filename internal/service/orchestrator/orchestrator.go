package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxline/voxline/internal/analysis/outcome"
	"github.com/voxline/voxline/internal/model/conv"
	"github.com/voxline/voxline/internal/model/persona"
	speechmodel "github.com/voxline/voxline/internal/model/speech"
	"github.com/voxline/voxline/internal/observability"
	"github.com/voxline/voxline/internal/service/ai"
)

// ErrInternal is returned when a turn fails in an unexpected way. The
// session is left exactly as the last completed stage wrote it.
var ErrInternal = errors.New("internal turn failure")

// RetryPrompt is the user-facing reply when no usable speech was detected.
const RetryPrompt = "Nu am detectat vorbire clară. Vă rog să încercați din nou."

// Transcriber is the abstract speech-to-text capability.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, callID string) (*speechmodel.Transcript, error)
}

// Synthesizer is the abstract text-to-speech capability.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, callID string) (*speechmodel.Synthesis, error)
}

// Generator is the abstract text-generation capability over session state.
type Generator interface {
	Generate(ctx context.Context, session conv.Session) (ai.Reply, error)
}

// SessionStore is the slice of the session service the pipeline needs.
type SessionStore interface {
	Create(ctx context.Context, id, mode string, meta conv.Metadata) (conv.Session, error)
	Get(ctx context.Context, id string) (conv.Session, bool)
	Append(ctx context.Context, id, role, content string, ann conv.Annotations) (conv.Message, error)
	AddStats(ctx context.Context, id string, delta conv.Stats)
	End(ctx context.Context, id string, reason conv.EndReason)
	Summary(ctx context.Context) (int, map[string]int)
}

// Service drives one full turn: transcription, generation, synthesis,
// ending detection, extraction and session bookkeeping. It is the only
// entry point that mutates sessions.
type Service struct {
	store       SessionStore
	personas    persona.Store
	generator   Generator
	transcriber Transcriber
	synthesizer Synthesizer
	detector    *outcome.Detector
	endGrace    time.Duration
	logger      zerolog.Logger

	afterFunc func(d time.Duration, f func()) *time.Timer
}

// NewService wires the pipeline. The ending detector is built from the
// union of all registered personas' phrase sets.
func NewService(store SessionStore, personas persona.Store, generator Generator, transcriber Transcriber, synthesizer Synthesizer, endGrace time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		store:       store,
		personas:    personas,
		generator:   generator,
		transcriber: transcriber,
		synthesizer: synthesizer,
		detector:    outcome.NewDetector(personas.AllEndingPhrases()),
		endGrace:    endGrace,
		logger:      logger.With().Str("component", "orchestrator").Logger(),
		afterFunc:   time.AfterFunc,
	}
}

// ProcessTurn executes the turn stages in strict sequence for one call
// identifier. Unexpected failures are contained here and surface as
// ErrInternal; the session keeps everything appended before the failure.
func (s *Service) ProcessTurn(ctx context.Context, req TurnRequest) (result *TurnResult, err error) {
	start := time.Now()
	logger := s.logger.With().Str("call_id", req.CallID).Str("mode", req.Mode).Logger()

	defer func() {
		if r := recover(); r != nil {
			observability.ComponentError("orchestrator")
			observability.TurnProcessed("error")
			logger.Error().Interface("panic", r).Msg("turn panicked")
			result = nil
			err = ErrInternal
		}
	}()

	// Stage 1: resolve the session, creating it on first contact.
	session, ok := s.store.Get(ctx, req.CallID)
	if !ok {
		session, err = s.store.Create(ctx, req.CallID, req.Mode, req.Metadata)
		if err != nil {
			return nil, err
		}
	}

	var timings Timings
	var audioProcessing time.Duration
	var transcriptText *string

	// Stage 2+3: transcription and user-message append.
	if len(req.Audio) > 0 {
		stageStart := time.Now()
		transcript, terr := s.transcriber.Transcribe(ctx, req.Audio, req.CallID)
		timings.Transcribe = time.Since(stageStart)
		observability.ObserveStage("transcribe", timings.Transcribe)

		if terr != nil || transcript.Text == "" {
			if terr != nil {
				observability.ComponentError("stt")
				logger.Warn().Err(terr).Msg("transcription failed")
			}
			// No usable speech: the turn ends here and the session is
			// left untouched.
			observability.TurnProcessed("no_speech")
			timings.Total = time.Since(start)
			return &TurnResult{NoSpeech: true, Reply: RetryPrompt, Timings: timings}, nil
		}

		audioProcessing += transcript.Duration
		text := transcript.Text
		transcriptText = &text

		userMsg, aerr := s.store.Append(ctx, req.CallID, conv.RoleUser, text, conv.Annotations{
			Confidence: transcript.Confidence,
			Latency:    transcript.Duration,
		})
		if aerr != nil {
			// The idle sweep evicted the session mid-turn. The turn
			// still completes against the local snapshot.
			logger.Warn().Err(aerr).Msg("user append raced session eviction")
			userMsg = conv.Message{Role: conv.RoleUser, Content: text, Timestamp: time.Now().UTC()}
		}
		session.Messages = append(session.Messages, userMsg)
	}

	// Stage 4: generation. Remote failures come back as fallback text,
	// never as an error; an error here is a configuration problem.
	stageStart := time.Now()
	reply, gerr := s.generator.Generate(ctx, session)
	timings.Generate = time.Since(stageStart)
	observability.ObserveStage("generate", timings.Generate)
	if gerr != nil {
		observability.ComponentError("ai")
		observability.TurnProcessed("error")
		logger.Error().Err(gerr).Msg("generation adapter rejected the session")
		return nil, ErrInternal
	}

	assistantMsg, aerr := s.store.Append(ctx, req.CallID, conv.RoleAssistant, reply.Text, conv.Annotations{
		Model:    reply.Model,
		Latency:  reply.Latency,
		Fallback: reply.Fallback,
		Error:    reply.Err,
	})
	if aerr != nil {
		logger.Warn().Err(aerr).Msg("assistant append raced session eviction")
		assistantMsg = conv.Message{Role: conv.RoleAssistant, Content: reply.Text, Timestamp: time.Now().UTC()}
	}
	session.Messages = append(session.Messages, assistantMsg)

	// Stage 5: synthesis. Failure degrades the turn to text-only.
	var audioRef *string
	stageStart = time.Now()
	synthesis, serr := s.synthesizer.Synthesize(ctx, reply.Text, req.CallID)
	timings.Synthesize = time.Since(stageStart)
	observability.ObserveStage("synthesize", timings.Synthesize)
	if serr != nil {
		observability.ComponentError("tts")
		logger.Warn().Err(serr).Msg("synthesis failed, returning text-only turn")
	} else {
		audioRef = &synthesis.AudioRef
		audioProcessing += synthesis.Duration
	}

	// Stage 6: stats.
	timings.Total = time.Since(start)
	observability.ObserveStage("total", timings.Total)
	s.store.AddStats(ctx, req.CallID, conv.Stats{
		AudioProcessing:   audioProcessing,
		TotalTurnDuration: timings.Total,
	})

	// Stage 7: ending detection and structured extraction.
	ended := s.detector.DetectEnding(reply.Text)
	var fields *outcome.Fields
	if ended {
		fields = s.extract(session)
		if fields != nil {
			logger.Info().
				Str("date", fields.Date).
				Str("time", fields.Time).
				Str("service", fields.Service).
				Bool("confirmed", fields.Confirmed).
				Msg("appointment extracted")
		}
		s.scheduleEnd(req.CallID)
	}

	observability.TurnProcessed("ok")
	logger.Info().
		Bool("ended", ended).
		Bool("fallback", reply.Fallback).
		Dur("total", timings.Total).
		Msg("turn finished")

	return &TurnResult{
		Transcript: transcriptText,
		Reply:      reply.Text,
		AudioRef:   audioRef,
		Ended:      ended,
		Outcome:    fields,
		Timings:    timings,
	}, nil
}

// Reset guarantees the next turn for the call identifier starts from an
// empty session.
func (s *Service) Reset(ctx context.Context, callID string) {
	s.store.End(ctx, callID, conv.ReasonReset)
}

// SessionStats returns the live session snapshot for the stats query.
func (s *Service) SessionStats(ctx context.Context, callID string) (conv.Session, bool) {
	return s.store.Get(ctx, callID)
}

// Info reports the live session count and mode distribution.
func (s *Service) Info(ctx context.Context) (int, map[string]int) {
	return s.store.Summary(ctx)
}

// extract runs the session mode's extraction rule set, if it has one,
// over the accumulated dialogue.
func (s *Service) extract(session conv.Session) *outcome.Fields {
	p, ok := s.personas.FindByID(session.Mode)
	if !ok || p.Extraction == "" {
		return nil
	}
	extractFn, ok := outcome.RuleSet(p.Extraction)
	if !ok {
		return nil
	}
	fields, found := extractFn(session.Transcript())
	if !found {
		return nil
	}
	return &fields
}

// scheduleEnd tears the session down after the grace delay so the final
// response can still be delivered. The teardown is unconditional: a turn
// arriving within the delay does not cancel it.
func (s *Service) scheduleEnd(callID string) {
	s.afterFunc(s.endGrace, func() {
		s.store.End(context.Background(), callID, conv.ReasonCompleted)
	})
}
