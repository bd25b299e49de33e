package voicews

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/voxline/voxline/internal/model/conv"
	"github.com/voxline/voxline/internal/model/persona"
	"github.com/voxline/voxline/internal/service/orchestrator"
)

const maxFrameBytes = 10 << 20

// Handler drives the turn pipeline over a WebSocket. Each binary frame is
// one complete utterance; text frames carry JSON control messages.
type Handler struct {
	orch     *orchestrator.Service
	personas persona.Store
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

func New(orch *orchestrator.Service, personas persona.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		orch:     orch,
		personas: personas,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterRoutes registers the realtime voice route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/voice/ws/{callID}", h.handleConnection)
}

type controlMessage struct {
	Type string `json:"type"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *Handler) handleConnection(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	mode := r.URL.Query().Get("mode")

	if _, ok := h.personas.FindByID(mode); !ok {
		http.Error(w, "unknown mode", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxFrameBytes)
	logger := h.logger.With().Str("call_id", callID).Str("mode", mode).Logger()
	logger.Info().Msg("voice connection opened")

	meta := conv.Metadata{UserAgent: r.UserAgent(), RemoteIP: r.RemoteAddr}

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn().Err(err).Msg("voice connection dropped")
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			h.processUtterance(r.Context(), conn, logger, callID, mode, payload, meta)
		case websocket.TextMessage:
			var ctrl controlMessage
			if err := json.Unmarshal(payload, &ctrl); err != nil {
				h.send(conn, outgoingMessage{Type: "error", Error: "invalid control message"})
				continue
			}
			switch ctrl.Type {
			case "reset":
				h.orch.Reset(r.Context(), callID)
				h.send(conn, outgoingMessage{Type: "reset"})
			case "start":
				// An empty-audio turn produces the persona's opening line.
				h.processUtterance(r.Context(), conn, logger, callID, mode, nil, meta)
			default:
				h.send(conn, outgoingMessage{Type: "error", Error: "unknown control type"})
			}
		}
	}
}

func (h *Handler) processUtterance(ctx context.Context, conn *websocket.Conn, logger zerolog.Logger, callID, mode string, audio []byte, meta conv.Metadata) {
	result, err := h.orch.ProcessTurn(ctx, orchestrator.TurnRequest{
		CallID:   callID,
		Mode:     mode,
		Audio:    audio,
		Metadata: meta,
	})
	if err != nil {
		logger.Error().Err(err).Msg("turn failed")
		h.send(conn, outgoingMessage{Type: "error", Error: "turn processing failed"})
		return
	}

	if result.NoSpeech {
		h.send(conn, outgoingMessage{Type: "no_speech", Data: map[string]string{"prompt": result.Reply}})
		return
	}

	h.send(conn, outgoingMessage{Type: "turn", Data: result})

	if result.Ended {
		h.send(conn, outgoingMessage{Type: "ended"})
	}
}

func (h *Handler) send(conn *websocket.Conn, msg outgoingMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn().Err(err).Msg("websocket write failed")
	}
}
