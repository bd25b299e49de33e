package turn

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voxline/voxline/internal/analysis/outcome"
	"github.com/voxline/voxline/internal/model/conv"
	"github.com/voxline/voxline/internal/model/persona"
	convservice "github.com/voxline/voxline/internal/service/conv"
	"github.com/voxline/voxline/internal/service/orchestrator"
	"github.com/voxline/voxline/pkg/utils"
)

// Handler exposes the voice turn pipeline over HTTP.
type Handler struct {
	orch          *orchestrator.Service
	personas      persona.Store
	maxAudioBytes int64
}

// New creates the turn handler. maxAudioBytes caps the uploaded utterance.
func New(orch *orchestrator.Service, personas persona.Store, maxAudioBytes int64) *Handler {
	return &Handler{
		orch:          orch,
		personas:      personas,
		maxAudioBytes: maxAudioBytes,
	}
}

// RegisterRoutes registers the turn routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleTurn)
	r.Post("/chat/reset", h.handleReset)
	r.Get("/chat/stats/{callID}", h.handleStats)
	r.Get("/chat/info", h.handleInfo)
}

type turnResponse struct {
	Success           bool                 `json:"success"`
	Transcript        *string              `json:"transcript"`
	Response          string               `json:"response,omitempty"`
	AudioURL          *string              `json:"audioUrl"`
	ConversationEnded bool                 `json:"conversationEnded"`
	Appointment       *outcome.Fields      `json:"appointment,omitempty"`
	Timings           orchestrator.Timings `json:"timings"`
	Error             string               `json:"error,omitempty"`
}

// handleTurn accepts a multipart form with callId, mode and an optional
// audio part. Without audio the turn produces the persona's opening line.
func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxAudioBytes)
	if err := r.ParseMultipartForm(h.maxAudioBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	callID := r.FormValue("callId")
	mode := r.FormValue("mode")
	if callID == "" {
		utils.RespondError(w, http.StatusBadRequest, "callId is required")
		return
	}
	if mode == "" {
		utils.RespondError(w, http.StatusBadRequest, "mode is required")
		return
	}
	if _, ok := h.personas.FindByID(mode); !ok {
		utils.RespondError(w, http.StatusBadRequest, "unknown mode")
		return
	}

	var audio []byte
	if file, _, err := r.FormFile("audio"); err == nil {
		defer file.Close()
		audio, err = io.ReadAll(file)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "failed to read audio")
			return
		}
	}

	result, err := h.orch.ProcessTurn(r.Context(), orchestrator.TurnRequest{
		CallID: callID,
		Mode:   mode,
		Audio:  audio,
		Metadata: conv.Metadata{
			UserAgent: r.UserAgent(),
			RemoteIP:  r.RemoteAddr,
		},
	})
	if err != nil {
		if errors.Is(err, convservice.ErrUnknownMode) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "turn processing failed")
		return
	}

	if result.NoSpeech {
		utils.RespondJSON(w, http.StatusOK, turnResponse{
			Success: false,
			Error:   result.Reply,
			Timings: result.Timings,
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, turnResponse{
		Success:           true,
		Transcript:        result.Transcript,
		Response:          result.Reply,
		AudioURL:          result.AudioRef,
		ConversationEnded: result.Ended,
		Appointment:       result.Outcome,
		Timings:           result.Timings,
	})
}

// handleReset tears down the caller's session so the next turn starts fresh.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CallID string `json:"callId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.CallID == "" {
		utils.RespondError(w, http.StatusBadRequest, "callId is required")
		return
	}

	h.orch.Reset(r.Context(), payload.CallID)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// handleStats reports one live session's counters.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")

	session, ok := h.orch.SessionStats(r.Context(), callID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"callId":              session.ID,
		"mode":                session.Mode,
		"startedAt":           session.StartedAt,
		"lastActiveAt":        session.LastActiveAt,
		"messageCount":        session.Stats.MessageCount,
		"audioProcessingMs":   session.Stats.AudioProcessing.Milliseconds(),
		"totalTurnDurationMs": session.Stats.TotalTurnDuration.Milliseconds(),
	})
}

// handleInfo reports the available modes and the live session distribution.
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	count, modes := h.orch.Info(r.Context())

	available := make([]string, 0)
	for _, p := range h.personas.List() {
		available = append(available, p.ID)
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"availableModes": available,
		"activeSessions": count,
		"sessionsByMode": modes,
	})
}
