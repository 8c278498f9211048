package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"glucovoice-go/internal/types"
)

func assessmentWith(risk string, confidence float64) types.GlucoseAssessment {
	a := types.FallbackAssessment()
	a.Assessment.RiskLevel = risk
	a.Assessment.ConfidenceScore = confidence
	a.Assessment.PrimaryEstimate = "elevated"
	return a
}

func TestBuildScriptCriticalAlwaysSerious(t *testing.T) {
	for _, confidence := range []float64{0.1, 0.5, 0.95} {
		s := BuildScript(assessmentWith("critical", confidence))
		assert.Equal(t, seriousVoiceID, s.VoiceID)
		assert.Equal(t, 0.8, s.Stability)
		assert.Equal(t, 0.9, s.ClarityWeight)
		assert.Contains(t, s.Text, "critical")
		assert.Contains(t, s.Text, "test your blood sugar immediately")
	}
}

func TestBuildScriptHighRiskSerious(t *testing.T) {
	s := BuildScript(assessmentWith("high", 0.2))
	assert.Equal(t, seriousVoiceID, s.VoiceID)
}

func TestBuildScriptConfident(t *testing.T) {
	a := assessmentWith("moderate", 0.85)
	a.ClinicalInsights.MonitoringSuggestions = "Check again after your next meal."
	s := BuildScript(a)
	assert.Equal(t, confidentVoiceID, s.VoiceID)
	assert.Equal(t, 0.7, s.Stability)
	assert.Contains(t, s.Text, "85% confidence")
	assert.Contains(t, s.Text, "Check again after your next meal.")
}

func TestBuildScriptLowConfidenceCautious(t *testing.T) {
	a := assessmentWith("low", 0.4)
	a.Limitations.ConfidenceFactors = "Background noise reduced reliability."
	s := BuildScript(a)
	assert.Equal(t, cautiousVoiceID, s.VoiceID)
	assert.Equal(t, 0.6, s.Stability)
	assert.Contains(t, s.Text, "limited confidence")
	assert.Contains(t, s.Text, "Background noise reduced reliability.")
}

func TestBuildScriptBoundaryConfidence(t *testing.T) {
	// 0.7 exactly is not "confident"
	s := BuildScript(assessmentWith("minimal", 0.7))
	assert.Equal(t, cautiousVoiceID, s.VoiceID)
}
