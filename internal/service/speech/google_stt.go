package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	speechmodel "github.com/voxline/voxline/internal/model/speech"
)

const recognizeURL = "https://speech.googleapis.com/v1/speech:recognize"

type recognizeRequest struct {
	Config recognizeConfig `json:"config"`
	Audio  recognizeAudio  `json:"audio"`
}

type recognizeConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
	Model                      string `json:"model"`
	UseEnhanced                bool   `json:"useEnhanced"`
}

type recognizeAudio struct {
	Content string `json:"content"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Transcribe sends one finished utterance to the recognize endpoint.
// No detected speech is not an error: the transcript comes back empty
// and the caller decides how to react.
func (s *Service) Transcribe(ctx context.Context, audio []byte, callID string) (*speechmodel.Transcript, error) {
	start := time.Now()

	payload := recognizeRequest{
		Config: recognizeConfig{
			Encoding:                   detectEncoding(audio),
			SampleRateHertz:            s.cfg.SampleRateHertz,
			LanguageCode:               s.cfg.LanguageCode,
			EnableAutomaticPunctuation: true,
			Model:                      "latest_short", // tuned for short conversational utterances
			UseEnhanced:                true,
		},
		Audio: recognizeAudio{Content: base64.StdEncoding.EncodeToString(audio)},
	}

	var parsed recognizeResponse
	if err := s.postJSON(ctx, recognizeURL, payload, &parsed); err != nil {
		return nil, fmt.Errorf("speech recognition: %w", err)
	}

	var parts []string
	confidence := 0.0
	for i, result := range parsed.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		parts = append(parts, result.Alternatives[0].Transcript)
		if i == 0 {
			confidence = result.Alternatives[0].Confidence
		}
	}
	text := strings.TrimSpace(strings.Join(parts, " "))

	duration := time.Since(start)
	if text == "" {
		s.logger.Info().Str("call_id", callID).Dur("latency", duration).Msg("no speech detected")
	} else {
		s.logger.Info().Str("call_id", callID).Dur("latency", duration).Int("chars", len(text)).Msg("transcription finished")
	}

	return &speechmodel.Transcript{
		Text:       text,
		Confidence: confidence,
		Duration:   duration,
	}, nil
}

func (s *Service) postJSON(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	requestURL := endpoint + "?key=" + url.QueryEscape(s.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// detectEncoding sniffs the container magic bytes the browser recorder
// may produce. WEBM_OPUS is the safe default for unknown input.
func detectEncoding(audio []byte) string {
	if len(audio) >= 12 {
		header := string(audio[:12])
		switch {
		case strings.Contains(header, "WEBM") || bytes.Contains(audio[:12], []byte{0x1A, 0x45, 0xDF, 0xA3}):
			return "WEBM_OPUS"
		case strings.HasPrefix(header, "RIFF"):
			return "LINEAR16"
		case strings.HasPrefix(header, "OggS"):
			return "OGG_OPUS"
		}
	}
	if len(audio) >= 2 && audio[0] == 0xFF && audio[1]&0xE0 == 0xE0 {
		return "MP3"
	}
	return "WEBM_OPUS"
}
