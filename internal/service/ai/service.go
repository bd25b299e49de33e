package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/voxline/voxline/internal/model/conv"
	"github.com/voxline/voxline/internal/model/persona"
	"github.com/voxline/voxline/internal/observability"
)

// BeginMarker is the synthetic user message sent when a session has no
// history yet, so the model always receives at least one turn.
const BeginMarker = "START_CONVERSATIE"

// Options tunes the adapter.
type Options struct {
	// Model is the identifier reported in reply annotations.
	Model string
	// MaxContextMessages bounds the request size, counting the system
	// prompt as one entry.
	MaxContextMessages int
	// Timeout bounds the single remote attempt.
	Timeout time.Duration
}

// Service turns session state into one remote generation attempt. Remote
// failures are recovered locally with persona fallback text; the adapter
// never retries.
type Service struct {
	chatModel model.ChatModel
	personas  persona.Store
	opts      Options
	logger    zerolog.Logger
}

// NewService wires the adapter to a concrete chat model.
func NewService(chatModel model.ChatModel, personas persona.Store, opts Options, logger zerolog.Logger) *Service {
	if opts.MaxContextMessages < 2 {
		opts.MaxContextMessages = 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Service{
		chatModel: chatModel,
		personas:  personas,
		opts:      opts,
		logger:    logger.With().Str("component", "ai").Logger(),
	}
}

// Generate produces the assistant reply for the session's next turn.
// The returned error is reserved for configuration problems (unknown
// persona); remote failures come back as a fallback Reply.
func (s *Service) Generate(ctx context.Context, session conv.Session) (Reply, error) {
	p, ok := s.personas.FindByID(session.Mode)
	if !ok {
		return Reply{}, fmt.Errorf("no persona registered for mode %q", session.Mode)
	}

	messages := s.buildMessages(p, session.Messages)

	attemptCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	response, err := s.chatModel.Generate(attemptCtx, messages)
	latency := time.Since(start)

	if err != nil {
		class := classifyFailure(err)
		observability.GenerationFallback(string(class))
		s.logger.Warn().
			Str("call_id", session.ID).
			Str("mode", session.Mode).
			Str("class", string(class)).
			Dur("latency", latency).
			Err(err).
			Msg("generation failed, substituting fallback")

		return Reply{
			Text:         fallbackFor(p, class),
			Model:        s.opts.Model,
			Latency:      latency,
			Fallback:     true,
			FailureClass: class,
			Err:          err.Error(),
		}, nil
	}

	reply := Reply{
		Text:    response.Content,
		Model:   s.opts.Model,
		Latency: latency,
	}
	if response.ResponseMeta != nil && response.ResponseMeta.Usage != nil {
		reply.Usage = &Usage{
			PromptTokens:     response.ResponseMeta.Usage.PromptTokens,
			CompletionTokens: response.ResponseMeta.Usage.CompletionTokens,
			TotalTokens:      response.ResponseMeta.Usage.TotalTokens,
		}
	}

	s.logger.Info().
		Str("call_id", session.ID).
		Str("mode", session.Mode).
		Dur("latency", latency).
		Int("history", len(session.Messages)).
		Str("reply", truncate(reply.Text, 100)).
		Msg("generation succeeded")

	return reply, nil
}

// buildMessages assembles the ordered instruction list: system prompt
// first, then the history. When the total would exceed the window, the
// system prompt is kept and only the most recent turns survive.
func (s *Service) buildMessages(p persona.Persona, history []conv.Message) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, schema.SystemMessage(p.SystemPrompt))

	if len(history) == 0 {
		messages = append(messages, schema.UserMessage(BeginMarker))
		return messages
	}

	start := 0
	if budget := s.opts.MaxContextMessages - 1; len(history) > budget {
		start = len(history) - budget
	}

	for _, msg := range history[start:] {
		switch msg.Role {
		case conv.RoleUser:
			messages = append(messages, schema.UserMessage(msg.Content))
		case conv.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return messages
}

// classifyFailure buckets a remote error into the recovery classes.
func classifyFailure(err error) FailureClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return FailureTimeout
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return FailureRateLimited
	default:
		return FailureOther
	}
}

func fallbackFor(p persona.Persona, class FailureClass) string {
	switch class {
	case FailureTimeout:
		return p.Fallbacks.Timeout
	case FailureRateLimited:
		return p.Fallbacks.RateLimited
	default:
		return p.Fallbacks.Other
	}
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
