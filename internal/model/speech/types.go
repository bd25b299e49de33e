package speech

import "time"

// Transcript is the result of one speech-to-text call.
type Transcript struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Duration   time.Duration `json:"durationMs"`
}

// Synthesis is the result of one text-to-speech call. AudioRef is the
// URL path under which the rendered audio file is served.
type Synthesis struct {
	AudioRef string        `json:"audioRef"`
	Size     int           `json:"size"`
	Duration time.Duration `json:"durationMs"`
}
