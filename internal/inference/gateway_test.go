package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucovoice-go/internal/types"
)

type stubReasoner struct {
	reply string
	err   error
	calls int
}

func (s *stubReasoner) Generate(context.Context, string, string, int, string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func someContext() types.UserContext {
	return types.UserContext{
		DiabetesStatus: "Type 1 diabetes",
		MealTiming:     "1-2 hours ago",
	}
}

func someEmbedding() []float64 {
	return make([]float64, types.EmbeddingDim)
}

func TestParseAssessmentExtractsBraceSpan(t *testing.T) {
	reply := `noise {"glucose_assessment":{"primary_estimate":"elevated"}} trailing`
	a, ok := ParseAssessment(reply)
	require.True(t, ok)
	assert.Equal(t, "elevated", a.Assessment.PrimaryEstimate)
	assert.Equal(t, 0.5, a.Assessment.ConfidenceScore, "absent confidence defaults to 0.5")
	assert.Equal(t, "minimal", a.Assessment.RiskLevel)
}

func TestParseAssessmentRepairsMalformedJSON(t *testing.T) {
	// trailing comma, unquoted key: typical LLM sloppiness
	reply := "```json\n{\"glucose_assessment\": {\"primary_estimate\": \"low\", \"confidence_score\": 0.9,}}\n```"
	a, ok := ParseAssessment(reply)
	require.True(t, ok)
	assert.Equal(t, "low", a.Assessment.PrimaryEstimate)
	assert.Equal(t, 0.9, a.Assessment.ConfidenceScore)
}

func TestParseAssessmentNoBraces(t *testing.T) {
	_, ok := ParseAssessment("I cannot provide an assessment.")
	assert.False(t, ok)
}

func TestAnalyzeMissingInputsTyped(t *testing.T) {
	g := NewGateway(&stubReasoner{}, "", 0)

	_, err := g.Analyze(context.Background(), nil, someContext(), types.AudioQualityMetrics{})
	assert.ErrorIs(t, err, ErrMissingInput)

	a, err := g.Analyze(context.Background(), someEmbedding(), types.UserContext{}, types.AudioQualityMetrics{})
	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Equal(t, types.FallbackAssessment(), a, "missing input still yields the canonical fallback")
}

func TestAnalyzeEmptyReplyFallsBack(t *testing.T) {
	g := NewGateway(&stubReasoner{reply: "   "}, "", 0)
	a, err := g.Analyze(context.Background(), someEmbedding(), someContext(), types.AudioQualityMetrics{})
	require.NoError(t, err, "service failure is answered with a fallback, not an error")
	assert.Equal(t, "normal", a.Assessment.PrimaryEstimate)
	assert.Equal(t, 0.3, a.Assessment.ConfidenceScore)
}

func TestAnalyzeServiceErrorFallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // stop the retry loop immediately
	g := NewGateway(&stubReasoner{err: errors.New("overloaded")}, "", 0)
	a, err := g.Analyze(ctx, someEmbedding(), someContext(), types.AudioQualityMetrics{})
	require.NoError(t, err)
	assert.Equal(t, types.FallbackAssessment(), a)
}

func TestAnalyzeParsesWellFormedReply(t *testing.T) {
	stub := &stubReasoner{reply: `{"glucose_assessment":{"primary_estimate":"critical","confidence_score":0.88,"risk_level":"critical"}}`}
	g := NewGateway(stub, "", 0)
	a, err := g.Analyze(context.Background(), someEmbedding(), someContext(), types.AudioQualityMetrics{SNR: 25})
	require.NoError(t, err)
	assert.Equal(t, "critical", a.Assessment.PrimaryEstimate)
	assert.Equal(t, 0.88, a.Assessment.ConfidenceScore)
	assert.Equal(t, 1, stub.calls)
}
