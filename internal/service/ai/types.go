package ai

import "time"

// FailureClass buckets remote generation failures for fallback selection.
type FailureClass string

const (
	FailureTimeout     FailureClass = "timeout"
	FailureRateLimited FailureClass = "rate_limited"
	FailureOther       FailureClass = "other"
)

// Usage is the token accounting passed through from the remote model.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Reply is the outcome of one generation attempt. When Fallback is set,
// Text carries the persona's substitute for the failure class and Err
// the underlying cause.
type Reply struct {
	Text         string
	Model        string
	Latency      time.Duration
	Usage        *Usage
	Fallback     bool
	FailureClass FailureClass
	Err          string
}
