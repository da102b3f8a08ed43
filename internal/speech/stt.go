package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"medical-assistant/internal/platform/apperr"
)

// Transcriber turns a recorded voice note into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioData []byte, fileName string) (string, error)
}

type whisperClient struct {
	url        string
	httpClient *http.Client
}

// NewWhisperClient talks to a Whisper-style service that accepts a multipart
// "file" field and answers {"text": ..., "language": ...}.
func NewWhisperClient(url string, timeout time.Duration) Transcriber {
	return &whisperClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type sttResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (c *whisperClient) Transcribe(ctx context.Context, audioData []byte, fileName string) (string, error) {
	if fileName == "" {
		fileName = "audio.wav"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", apperr.Internal("build transcription request", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return "", apperr.Internal("build transcription request", err)
	}
	if err := writer.Close(); err != nil {
		return "", apperr.Internal("build transcription request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return "", apperr.Internal("build transcription request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.External("transcription service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", apperr.External("transcription failed", fmt.Errorf("STT API error: %s - %s", resp.Status, string(respBody)))
	}

	var result sttResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperr.External("malformed transcription response", err)
	}

	return strings.TrimSpace(result.Text), nil
}

// Disabled is used when no STT service is configured.
type Disabled struct{}

func (Disabled) Transcribe(context.Context, []byte, string) (string, error) {
	return "", apperr.Validation("voice input is not enabled")
}
