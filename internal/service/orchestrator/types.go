package orchestrator

import (
	"encoding/json"
	"time"

	"github.com/voxline/voxline/internal/analysis/outcome"
	"github.com/voxline/voxline/internal/model/conv"
)

// TurnRequest carries one request/response cycle's input. Audio may be
// nil for the opening turn.
type TurnRequest struct {
	CallID   string
	Mode     string
	Audio    []byte
	Metadata conv.Metadata
}

// Timings is the per-stage latency breakdown of a turn. It serializes
// as whole milliseconds.
type Timings struct {
	Total      time.Duration
	Transcribe time.Duration
	Generate   time.Duration
	Synthesize time.Duration
}

func (t Timings) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int64{
		"total":        t.Total.Milliseconds(),
		"transcribeMs": t.Transcribe.Milliseconds(),
		"generateMs":   t.Generate.Milliseconds(),
		"synthesizeMs": t.Synthesize.Milliseconds(),
	})
}

// TurnResult is the assembled outcome of one turn. Transcript and
// AudioRef are nil when the corresponding stage produced nothing.
type TurnResult struct {
	Transcript *string         `json:"transcript"`
	Reply      string          `json:"reply"`
	AudioRef   *string         `json:"audioRef"`
	Ended      bool            `json:"ended"`
	NoSpeech   bool            `json:"-"`
	Outcome    *outcome.Fields `json:"appointment,omitempty"`
	Timings    Timings         `json:"timings"`
}
