package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucovoice-go/internal/types"
)

func toneAudio(n int) types.ProcessedAudio {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.7 * math.Sin(2*math.Pi*220*float64(i)/16000)
	}
	return types.ProcessedAudio{Samples: samples, SampleRate: 16000, Duration: float64(n) / 16000}
}

func TestExtractFallbackAlways512(t *testing.T) {
	e := NewExtractor("") // no model configured
	for _, n := range []int{0, 100, 16000, 48000} {
		vec := e.Extract(context.Background(), toneAudio(n))
		assert.Len(t, vec, types.EmbeddingDim)
	}
}

func TestExtractRemoteTruncatesLongVector(t *testing.T) {
	long := make([]float64, 768)
	for i := range long {
		long[i] = float64(i)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)
		json.NewEncoder(w).Encode(embedResponse{Embedding: long})
	}))
	defer srv.Close()

	e := NewExtractor(srv.URL)
	vec := e.Extract(context.Background(), toneAudio(1600))
	require.Len(t, vec, types.EmbeddingDim)
	assert.Equal(t, 0.0, vec[0])
	assert.Equal(t, 511.0, vec[511])
}

func TestExtractRemotePadsShortVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{1, 2, 3}})
	}))
	defer srv.Close()

	e := NewExtractor(srv.URL)
	vec := e.Extract(context.Background(), toneAudio(1600))
	require.Len(t, vec, types.EmbeddingDim)
	assert.Equal(t, 3.0, vec[2])
	assert.Equal(t, 0.0, vec[3])
}

func TestExtractFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadRequest)
	}))
	defer srv.Close()

	e := NewExtractor(srv.URL)
	vec := e.Extract(context.Background(), toneAudio(16000))
	assert.Len(t, vec, types.EmbeddingDim, "model failure silently falls back to spectral features")
}
