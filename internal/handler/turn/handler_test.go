package turn

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/voxline/voxline/internal/model/conv"
	"github.com/voxline/voxline/internal/model/persona"
	speechmodel "github.com/voxline/voxline/internal/model/speech"
	"github.com/voxline/voxline/internal/service/ai"
	convservice "github.com/voxline/voxline/internal/service/conv"
	"github.com/voxline/voxline/internal/service/orchestrator"
)

type stubTranscriber struct {
	transcript *speechmodel.Transcript
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (*speechmodel.Transcript, error) {
	return s.transcript, nil
}

type stubSynthesizer struct{}

func (stubSynthesizer) Synthesize(_ context.Context, _ string, _ string) (*speechmodel.Synthesis, error) {
	return &speechmodel.Synthesis{AudioRef: "/uploads/responses/x.mp3"}, nil
}

type stubGenerator struct {
	text string
}

func (s *stubGenerator) Generate(_ context.Context, _ conv.Session) (ai.Reply, error) {
	return ai.Reply{Text: s.text, Model: "test-model"}, nil
}

type env struct {
	router http.Handler
	store  *convservice.Service
	stt    *stubTranscriber
}

func newEnv() *env {
	personas := persona.NewMemoryStore(persona.Seed())
	store := convservice.NewService(personas, zerolog.Nop(), time.Hour, time.Minute)
	stt := &stubTranscriber{transcript: &speechmodel.Transcript{Text: "bună ziua", Confidence: 0.95}}
	orch := orchestrator.NewService(store, personas, &stubGenerator{text: "Cu ce vă pot ajuta?"}, stt, stubSynthesizer{}, time.Second, zerolog.Nop())

	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		New(orch, personas, 10<<20).RegisterRoutes(api)
	})
	return &env{router: r, store: store, stt: stt}
}

func multipartTurn(t *testing.T, fields map[string]string, audio []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if audio != nil {
		part, err := mw.CreateFormFile("audio", "utterance.webm")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(audio); err != nil {
			t.Fatalf("write audio: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestTurnValidation(t *testing.T) {
	e := newEnv()

	cases := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{"missing callId", map[string]string{"mode": "dental"}, "callId is required"},
		{"missing mode", map[string]string{"callId": "c1"}, "mode is required"},
		{"unknown mode", map[string]string{"callId": "c1", "mode": "banking"}, "unknown mode"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.router.ServeHTTP(rec, multipartTurn(t, tc.fields, nil))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("body: %s", rec.Body.String())
			}
		})
	}
}

func TestOpeningTurn(t *testing.T) {
	e := newEnv()

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, multipartTurn(t, map[string]string{"callId": "c1", "mode": "dental"}, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success    bool    `json:"success"`
		Transcript *string `json:"transcript"`
		Response   string  `json:"response"`
		AudioURL   *string `json:"audioUrl"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.Transcript != nil {
		t.Fatalf("transcript should be null, got %q", *resp.Transcript)
	}
	if resp.Response != "Cu ce vă pot ajuta?" {
		t.Fatalf("response: %q", resp.Response)
	}
	if resp.AudioURL == nil || *resp.AudioURL != "/uploads/responses/x.mp3" {
		t.Fatal("audioUrl missing")
	}
}

func TestAudioTurnReturnsTranscript(t *testing.T) {
	e := newEnv()

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, multipartTurn(t, map[string]string{"callId": "c1", "mode": "dental"}, []byte{1, 2, 3}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success    bool    `json:"success"`
		Transcript *string `json:"transcript"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Transcript == nil || *resp.Transcript != "bună ziua" {
		t.Fatal("transcript missing")
	}
}

func TestNoSpeechResponse(t *testing.T) {
	e := newEnv()
	e.stt.transcript = &speechmodel.Transcript{Text: ""}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, multipartTurn(t, map[string]string{"callId": "c1", "mode": "dental"}, []byte{1}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}

	var resp struct {
		Success  bool    `json:"success"`
		Error    string  `json:"error"`
		AudioURL *string `json:"audioUrl"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success {
		t.Fatal("expected success=false")
	}
	if resp.Error == "" {
		t.Fatal("retry prompt missing")
	}
	if resp.AudioURL != nil {
		t.Fatal("audioUrl should be null")
	}
}

func TestReset(t *testing.T) {
	e := newEnv()

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, multipartTurn(t, map[string]string{"callId": "c1", "mode": "dental"}, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("turn status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/reset", strings.NewReader(`{"callId":"c1"}`))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status: %d", rec.Code)
	}

	if _, ok := e.store.Get(context.Background(), "c1"); ok {
		t.Fatal("session survived reset")
	}
}

func TestStatsNotFound(t *testing.T) {
	e := newEnv()

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/stats/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestStatsAndInfo(t *testing.T) {
	e := newEnv()

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, multipartTurn(t, map[string]string{"callId": "c1", "mode": "dental"}, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("turn status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/stats/c1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status: %d", rec.Code)
	}
	var stats struct {
		CallID       string `json:"callId"`
		Mode         string `json:"mode"`
		MessageCount int    `json:"messageCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.CallID != "c1" || stats.Mode != "dental" || stats.MessageCount != 1 {
		t.Fatalf("stats: %+v", stats)
	}

	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/info", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("info status: %d", rec.Code)
	}
	var info struct {
		AvailableModes []string       `json:"availableModes"`
		ActiveSessions int            `json:"activeSessions"`
		SessionsByMode map[string]int `json:"sessionsByMode"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(info.AvailableModes) != 3 {
		t.Fatalf("modes: %v", info.AvailableModes)
	}
	if info.ActiveSessions != 1 || info.SessionsByMode["dental"] != 1 {
		t.Fatalf("info: %+v", info)
	}
}
