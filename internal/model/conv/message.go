package conv

import "time"

// Roles a message can carry. The system prompt never enters the session
// history; it is injected per request by the generation adapter.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Annotations carries diagnostic metadata attached to a message. It never
// affects how the message is used.
type Annotations struct {
	Confidence float64       `json:"confidence,omitempty"`
	Latency    time.Duration `json:"latencyMs,omitempty"`
	Fallback   bool          `json:"fallback,omitempty"`
	Model      string        `json:"model,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Message is one turn entry in a session. Immutable once appended.
type Message struct {
	ID          string      `json:"id"`
	Role        string      `json:"role"`
	Content     string      `json:"content"`
	Timestamp   time.Time   `json:"timestamp"`
	Annotations Annotations `json:"annotations,omitempty"`
}
