package conv

import "time"

// EndReason records why a session left the live set.
type EndReason string

const (
	ReasonCompleted EndReason = "completed"
	ReasonReset     EndReason = "reset"
	ReasonTimeout   EndReason = "timeout"
)

// Stats holds per-session counters. They only ever grow.
type Stats struct {
	MessageCount      int           `json:"messageCount"`
	AudioProcessing   time.Duration `json:"audioProcessingMs"`
	TotalTurnDuration time.Duration `json:"totalDurationMs"`
}

// Metadata captures caller-provided context at session creation. Immutable.
type Metadata struct {
	UserAgent string `json:"userAgent,omitempty"`
	RemoteIP  string `json:"remoteIp,omitempty"`
}

// Session is the accumulated state of one call, keyed by the caller-supplied
// call identifier. Mode is fixed at creation.
type Session struct {
	ID           string    `json:"id"`
	Mode         string    `json:"mode"`
	Messages     []Message `json:"messages"`
	StartedAt    time.Time `json:"startedAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	Stats        Stats     `json:"stats"`
	Metadata     Metadata  `json:"metadata"`
}

// Transcript joins all message contents in turn order, one per line.
// The outcome extractor matches its patterns against this.
func (s Session) Transcript() string {
	if len(s.Messages) == 0 {
		return ""
	}
	out := s.Messages[0].Content
	for _, m := range s.Messages[1:] {
		out += "\n" + m.Content
	}
	return out
}
