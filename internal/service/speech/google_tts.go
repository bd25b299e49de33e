package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	speechmodel "github.com/voxline/voxline/internal/model/speech"
)

const (
	synthesizeURL = "https://texttospeech.googleapis.com/v1/text:synthesize"

	// publicAudioPrefix is the URL path the router serves response files
	// under; AudioRef values are built against it.
	publicAudioPrefix = "/uploads/responses"
)

type synthesizeRequest struct {
	Input       synthesisInput  `json:"input"`
	Voice       voiceSelection  `json:"voice"`
	AudioConfig syntAudioConfig `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
	SSMLGender   string `json:"ssmlGender"`
}

type syntAudioConfig struct {
	AudioEncoding string  `json:"audioEncoding"`
	SpeakingRate  float64 `json:"speakingRate"`
	Pitch         float64 `json:"pitch"`
	VolumeGainDb  float64 `json:"volumeGainDb"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize renders the reply text to an MP3 file under the output dir
// and returns its public reference.
func (s *Service) Synthesize(ctx context.Context, text, callID string) (*speechmodel.Synthesis, error) {
	start := time.Now()

	payload := synthesizeRequest{
		Input: synthesisInput{Text: text},
		Voice: voiceSelection{
			LanguageCode: s.cfg.LanguageCode,
			Name:         s.cfg.VoiceName,
			SSMLGender:   "FEMALE",
		},
		AudioConfig: syntAudioConfig{
			AudioEncoding: "MP3",
			SpeakingRate:  1.0,
		},
	}

	var parsed synthesizeResponse
	if err := s.postJSON(ctx, synthesizeURL, payload, &parsed); err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: decode audio: %w", err)
	}

	filename := fmt.Sprintf("response_%s_%s.mp3", callID, uuid.NewString())
	if err := os.WriteFile(filepath.Join(s.cfg.OutputDir, filename), audio, 0o644); err != nil {
		return nil, fmt.Errorf("speech synthesis: write file: %w", err)
	}

	duration := time.Since(start)
	s.logger.Info().
		Str("call_id", callID).
		Str("file", filename).
		Int("bytes", len(audio)).
		Dur("latency", duration).
		Msg("synthesis finished")

	return &speechmodel.Synthesis{
		AudioRef: publicAudioPrefix + "/" + filename,
		Size:     len(audio),
		Duration: duration,
	}, nil
}
