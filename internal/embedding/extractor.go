// Package embedding converts preprocessed audio into the fixed 512-value
// feature vector consumed by the inference stage. The primary path asks a
// remote speech-representation model service for the time-averaged hidden
// state; if the service is not configured or fails, a deterministic
// spectral-feature pipeline takes over. Extraction never returns an error
// to the caller.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"glucovoice-go/internal/audio"
	"glucovoice-go/internal/logger"
	"glucovoice-go/internal/types"
)

// Extractor holds the model-service client. The client is initialized at
// most once and is read-only afterwards, so one Extractor can be shared by
// concurrent pipeline runs.
type Extractor struct {
	modelURL string

	once   sync.Once
	client *http.Client
}

func NewExtractor(modelURL string) *Extractor {
	return &Extractor{modelURL: modelURL}
}

func (e *Extractor) init() {
	e.once.Do(func() {
		e.client = &http.Client{Timeout: 20 * time.Second}
	})
}

// Extract returns exactly types.EmbeddingDim values for any input.
func (e *Extractor) Extract(ctx context.Context, pa types.ProcessedAudio) []float64 {
	log := logger.New().WithField("component", "embedding")

	if e.modelURL != "" {
		e.init()
		vec, err := e.extractRemote(ctx, pa)
		if err == nil {
			return fitDimension(vec)
		}
		log.WithError(err).Warn("model service failed, falling back to spectral features")
	}

	return fitDimension(audio.Features(pa))
}

type embedRequest struct {
	Samples    []float64 `json:"samples"`
	SampleRate int       `json:"sample_rate"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (e *Extractor) extractRemote(ctx context.Context, pa types.ProcessedAudio) ([]float64, error) {
	payload, err := json.Marshal(embedRequest{Samples: pa.Samples, SampleRate: pa.SampleRate})
	if err != nil {
		return nil, err
	}

	var out embedResponse
	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.modelURL+"/embed", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("model server error: %s", body)
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("model request rejected: %s", body)
			return backoff.Permanent(lastErr)
		}
		if err := json.Unmarshal(body, &out); err != nil {
			lastErr = fmt.Errorf("decode embedding: %w", err)
			return lastErr
		}
		if len(out.Embedding) == 0 {
			lastErr = fmt.Errorf("model returned empty embedding")
			return lastErr
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 15 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, err
	}
	return out.Embedding, nil
}

// fitDimension truncates or zero-pads to exactly EmbeddingDim values.
func fitDimension(vec []float64) []float64 {
	out := make([]float64, types.EmbeddingDim)
	copy(out, vec)
	return out
}
