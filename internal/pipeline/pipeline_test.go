package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucovoice-go/internal/embedding"
	"glucovoice-go/internal/inference"
	"glucovoice-go/internal/store"
	"glucovoice-go/internal/synthesis"
	"glucovoice-go/internal/types"
)

type failingVoice struct{ calls int }

func (v *failingVoice) Synthesize(context.Context, types.VoiceScript) (string, error) {
	v.calls++
	return "", errors.New("tts unavailable")
}

type okVoice struct{}

func (okVoice) Synthesize(context.Context, types.VoiceScript) (string, error) {
	return "/tmp/voice_response.mp3", nil
}

type memStore struct {
	rec  store.Record
	fail bool
}

func (m *memStore) Store(_ context.Context, rec store.Record) (string, error) {
	m.rec = rec
	if m.fail {
		return "", errors.New("database unreachable")
	}
	return "rec-1", nil
}

func (m *memStore) History(context.Context, string, int) ([]store.HistoryEntry, error) {
	return nil, nil
}

func tone(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.7 * math.Sin(2*math.Pi*220*float64(i)/16000)
	}
	return out
}

func userContext() types.UserContext {
	return types.UserContext{
		UserID:         "user-1",
		DiabetesStatus: "Type 2 diabetes, well-controlled",
		MealTiming:     "1-2 hours ago",
		Symptoms:       []string{"Fatigue or drowsiness"},
	}
}

func newPipeline(voice synthesis.Voice, db store.Store) *Pipeline {
	extractor := embedding.NewExtractor("") // spectral fallback path
	gateway := inference.NewGateway(inference.MockReasoner{}, "", 0)
	return New(extractor, gateway, voice, db)
}

func TestRunSurvivesSynthesisFailure(t *testing.T) {
	voice := &failingVoice{}
	db := &memStore{}
	p := newPipeline(voice, db)

	res, err := p.Run(context.Background(), tone(16000), 16000, userContext())
	require.NoError(t, err)

	assert.Equal(t, 1, voice.calls)
	assert.Empty(t, res.AudioRef, "no audio reference when synthesis fails")
	assert.NotEmpty(t, res.Script.Text, "script text survives synthesis failure")
	assert.NotEmpty(t, res.Assessment.Assessment.PrimaryEstimate)
	assert.Equal(t, "rec-1", res.RecordID)
}

func TestRunPersistenceFailureStillReturnsResult(t *testing.T) {
	db := &memStore{fail: true}
	p := newPipeline(okVoice{}, db)

	res, err := p.Run(context.Background(), tone(16000), 16000, userContext())
	require.Error(t, err, "persistence failure is reported")
	assert.NotEmpty(t, res.Assessment.Assessment.PrimaryEstimate, "assessment is not discarded")
	assert.NotEmpty(t, res.Script.Text)
	assert.NotEmpty(t, res.StoreError)
	assert.Empty(t, res.RecordID)
}

func TestRunStoresFullRecord(t *testing.T) {
	db := &memStore{}
	p := newPipeline(okVoice{}, db)

	res, err := p.Run(context.Background(), tone(16000), 16000, userContext())
	require.NoError(t, err)

	assert.Equal(t, res.SessionID, db.rec.SessionID)
	assert.Equal(t, "user-1", db.rec.UserID)
	assert.Len(t, db.rec.Embedding, types.EmbeddingDim)
	assert.Equal(t, "/tmp/voice_response.mp3", db.rec.AudioRef)
	assert.Equal(t, res.QualityMetrics, db.rec.QualityMetrics)
}

func TestRunEmptyContextStillDelivers(t *testing.T) {
	p := newPipeline(okVoice{}, &memStore{})

	res, err := p.Run(context.Background(), tone(16000), 16000, types.UserContext{})
	require.NoError(t, err)
	assert.Equal(t, types.FallbackAssessment(), res.Assessment, "contract violation degrades to the canonical fallback")
	assert.NotEmpty(t, res.Script.Text)
}
