// Package synthesis turns an assessment into spoken feedback: a
// deterministic script + voice profile selection, then a call to the
// external text-to-speech service. Synthesis failure never discards the
// script text.
package synthesis

import (
	"fmt"
	"math"
	"strings"

	"glucovoice-go/internal/types"
)

// Voice profiles mirror the three hosted voices the product ships with.
const (
	seriousVoiceID   = "21m00Tcm4TlvDq8ikWAM" // Rachel
	confidentVoiceID = "D38z5RcWu1voky8WS1ja" // Adam
	cautiousVoiceID  = "pNInz6obpgDQGcFmaJgB" // Bella
)

// BuildScript selects the voice profile and message template from the
// assessment's risk level and confidence. High/critical risk always takes
// the serious profile regardless of confidence.
func BuildScript(a types.GlucoseAssessment) types.VoiceScript {
	core := a.Assessment
	confidencePct := int(math.Round(core.ConfidenceScore * 100))

	switch {
	case core.RiskLevel == "high" || core.RiskLevel == "critical":
		recommendations := a.ClinicalInsights.ImmediateRecommendations
		if recommendations == "" {
			recommendations = "Please monitor your glucose levels."
		}
		text := fmt.Sprintf(`Attention: Your voice analysis indicates a potentially %s glucose situation. The AI detected patterns suggesting %s blood sugar with %d%% confidence.

%s

Please test your blood sugar immediately and consider contacting your healthcare provider. Remember, this is experimental technology and should not replace proper glucose monitoring.`,
			core.RiskLevel, core.PrimaryEstimate, confidencePct, recommendations)
		return types.VoiceScript{
			Text:          strings.TrimSpace(text),
			VoiceID:       seriousVoiceID,
			Stability:     0.8,
			ClarityWeight: 0.9,
		}

	case core.ConfidenceScore > 0.7:
		recommendations := a.ClinicalInsights.ImmediateRecommendations
		if recommendations == "" {
			recommendations = "Continue monitoring your glucose levels."
		}
		monitoring := a.ClinicalInsights.MonitoringSuggestions
		if monitoring == "" {
			monitoring = "Pay attention to any changes in how you feel."
		}
		text := fmt.Sprintf(`Based on your voice analysis, I'm detecting patterns suggesting %s glucose levels with %d%% confidence.

%s

%s

This analysis is experimental and should supplement, not replace, regular glucose monitoring.`,
			core.PrimaryEstimate, confidencePct, recommendations, monitoring)
		return types.VoiceScript{
			Text:          strings.TrimSpace(text),
			VoiceID:       confidentVoiceID,
			Stability:     0.7,
			ClarityWeight: 0.8,
		}

	default:
		factors := a.Limitations.ConfidenceFactors
		if factors == "" {
			factors = "Several factors affected the analysis quality."
		}
		text := fmt.Sprintf(`I've analyzed your voice sample, but I have limited confidence in this assessment. The patterns suggest %s glucose, but with only %d%% certainty.

%s

For more reliable monitoring, please use traditional glucose testing methods. This experimental tool works best with clear audio and consistent conditions.`,
			core.PrimaryEstimate, confidencePct, factors)
		return types.VoiceScript{
			Text:          strings.TrimSpace(text),
			VoiceID:       cautiousVoiceID,
			Stability:     0.6,
			ClarityWeight: 0.7,
		}
	}
}
