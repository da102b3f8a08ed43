package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"medical-assistant/internal/platform/apperr"
)

const (
	DefaultTTSURL   = "https://api.elevenlabs.io/v1/text-to-speech"
	DefaultVoiceID  = "21m00Tcm4TlvDq8ikWAM"
	defaultTTSModel = "eleven_multilingual_v2"
)

// Synthesizer reads an assistant reply aloud.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type elevenLabsClient struct {
	baseURL    string
	apiKey     string
	voiceID    string
	httpClient *http.Client
}

func NewElevenLabsClient(baseURL, apiKey, voiceID string, timeout time.Duration) Synthesizer {
	if baseURL == "" {
		baseURL = DefaultTTSURL
	}
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	return &elevenLabsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		voiceID: voiceID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

func (c *elevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = Speakable(text)
	if text == "" {
		return nil, apperr.Validation("nothing to synthesize")
	}

	body, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       defaultTTSModel,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
	})
	if err != nil {
		return nil, apperr.Internal("encode speech request", err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Internal("build speech request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.External("speech service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, apperr.External("speech synthesis failed", fmt.Errorf("TTS API error: %s - %s", resp.Status, string(respBody)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.External("read synthesized audio", err)
	}
	return audio, nil
}

var markdown = strings.NewReplacer("**", "", "*", "", "⚠️", "")

// Speakable drops the chat markdown so it is not read out.
func Speakable(text string) string {
	return strings.TrimSpace(markdown.Replace(text))
}
