package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"glucovoice-go/internal/logger"
	"glucovoice-go/internal/types"
)

// Voice is the narrow contract to the external voice-synthesis service.
// Synthesize returns a reference (file path or URL) to the rendered audio.
type Voice interface {
	Synthesize(ctx context.Context, script types.VoiceScript) (string, error)
}

// ElevenLabs renders scripts through the ElevenLabs text-to-speech API and
// writes the mp3 next to the configured output directory.
type ElevenLabs struct {
	apiKey  string
	baseURL string
	outDir  string
	client  *http.Client
}

func NewElevenLabs(apiKey, outDir string) *ElevenLabs {
	if outDir == "" {
		outDir = os.TempDir()
	}
	return &ElevenLabs{
		apiKey:  apiKey,
		baseURL: "https://api.elevenlabs.io/v1",
		outDir:  outDir,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
	OutputFormat  string        `json:"output_format"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (e *ElevenLabs) Synthesize(ctx context.Context, script types.VoiceScript) (string, error) {
	log := logger.New().WithField("component", "voice-synthesis")

	if e.apiKey == "" {
		return "", fmt.Errorf("ELEVENLABS_API_KEY not set")
	}

	payload, _ := json.Marshal(ttsRequest{
		Text:    script.Text,
		ModelID: "eleven_multilingual_v2",
		VoiceSettings: voiceSettings{
			Stability:       script.Stability,
			SimilarityBoost: script.ClarityWeight,
		},
		OutputFormat: "mp3_44100_128",
	})

	var audio []byte
	var lastErr error
	op := func() error {
		url := fmt.Sprintf("%s/text-to-speech/%s", e.baseURL, script.VoiceID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("xi-api-key", e.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("tts server error: %s", body)
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("tts request rejected: %s", body)
			return backoff.Permanent(lastErr)
		}
		audio = body
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 20 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		log.WithError(lastErr).Error("voice synthesis failed")
		if lastErr != nil {
			return "", lastErr
		}
		return "", err
	}

	name := fmt.Sprintf("voice_response_%s.mp3", time.Now().Format("20060102150405"))
	path := filepath.Join(e.outDir, name)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	log.WithField("path", path).Info("voice response rendered")
	return path, nil
}
