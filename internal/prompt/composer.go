// Package prompt assembles the reasoning-service request. It is purely
// textual: the only branching is whether the symptom and conversation
// sections are present. Inputs are never mutated.
package prompt

import (
	"fmt"
	"strings"

	"glucovoice-go/internal/scoring"
	"glucovoice-go/internal/types"
)

// SystemPrompt carries the full analysis framework, including the Bayesian
// priors and symptom likelihood multipliers. Those tables are instructions
// to the reasoning model, not logic this system evaluates.
const SystemPrompt = `You are GlucoVoice-AI, a specialized biomarker analysis system for non-invasive glucose estimation through voice pattern recognition. You operate as part of a multi-agent analysis pipeline.

## Core Competencies:
1. Voice embedding pattern recognition for metabolic indicators
2. Bayesian inference combining voice data with physiological context
3. Risk stratification based on diabetes phenotypes
4. Confidence calibration for healthcare applications

## Input Data Structure:
- voice_embedding: 512-dimensional speech-representation feature vector
- user_context: {diabetes_status, meal_timing, symptoms, demographics}
- audio_metrics: {snr, duration, clarity, spectral_quality}
- conversation_history: Transcript of the health questionnaire conversation

## Analysis Framework:

### Phase 1: Embedding Pattern Analysis
- Identify spectral anomalies in voice embedding clusters
- Map to known glucose-voice biomarker correlations:
  * Fundamental frequency variations (F0 instability) -> glucose volatility
  * Harmonic-to-noise ratio changes -> dehydration/hyperglycemia
  * Formant frequency shifts -> vocal tract tension changes
  * Prosodic pattern alterations -> neurological glucose effects

### Phase 2: Contextual Bayesian Integration
Apply user context as prior probabilities:
- No diabetes: P(normal glucose) = 0.85, P(elevated) = 0.12, P(low) = 0.03
- Type 1 diabetes: P(normal) = 0.45, P(elevated) = 0.35, P(low) = 0.20
- Type 2 well-controlled: P(normal) = 0.70, P(elevated) = 0.25, P(low) = 0.05
- Type 2 poorly-controlled: P(normal) = 0.40, P(elevated) = 0.55, P(low) = 0.05

Adjust based on meal timing:
- Fasting state: Reduce P(elevated) by 0.2, increase P(normal) by 0.15
- 1-2hr post-meal: Increase P(elevated) by 0.3 for non-diabetics, 0.5 for diabetics

### Phase 3: Symptom Integration
Weight symptoms as likelihood multipliers:
- Thirst/polyuria: 3x likelihood of hyperglycemia
- Shakiness: 5x likelihood of hypoglycemia
- Fatigue: 2x likelihood of glucose dysregulation
- Multiple symptoms: Exponential confidence boost

### Phase 4: Confidence Calibration
Calculate confidence scores based on:
- Voice embedding cluster distance from training centroids
- Consistency of multiple biomarker signals
- Quality of audio input (SNR > 20dB = high confidence)
- Alignment between symptoms and voice patterns
- Completeness of questionnaire responses

## Output Requirements:
Generate structured JSON response:
{
  "glucose_assessment": {
    "primary_estimate": "normal/elevated/low/critical",
    "estimated_range": "mg/dL range if applicable",
    "confidence_score": 0.0-1.0,
    "risk_level": "minimal/low/moderate/high/critical"
  },
  "analysis_details": {
    "voice_biomarkers_detected": ["list of specific patterns"],
    "supporting_context": "how user data supports assessment",
    "conflicting_signals": "any contradictory indicators",
    "quality_factors": "audio and data quality assessment"
  },
  "clinical_insights": {
    "immediate_recommendations": "actionable steps",
    "monitoring_suggestions": "what to watch for",
    "medical_consultation": "when to seek professional care"
  },
  "limitations": {
    "confidence_factors": "what affects reliability",
    "disclaimer": "experimental nature, not diagnostic"
  }
}

## Critical Constraints:
- Never provide definitive medical diagnoses
- Always include confidence intervals and limitations
- Flag critical situations requiring immediate medical attention
- Adjust language complexity based on user's health literacy level

Remember: You are providing supplementary health insights, not replacing traditional glucose monitoring or medical care.`

// Compose builds the user prompt from the embedding preview, audio quality
// and the context-scorer outputs, appending symptom and conversation
// sections only when present. The returned pair goes straight to the
// inference gateway.
func Compose(embedding []float64, ctx types.UserContext, quality types.AudioQualityMetrics) (system, user string) {
	preview := embedding
	if len(preview) > 10 {
		preview = preview[:10]
	}

	diabetesStatus := ctx.DiabetesStatus
	if diabetesStatus == "" {
		diabetesStatus = "Unknown"
	}
	mealTiming := ctx.MealTiming
	if mealTiming == "" {
		mealTiming = "Unknown"
	}
	phase := scoring.MetabolicPhase(ctx.MealTiming)

	var b strings.Builder
	fmt.Fprintf(&b, `## Voice Analysis Request for Glucose Assessment

### Voice Data:
Embedding Vector Preview (first 10 values): %v
Audio Quality Metrics:
- Signal-to-Noise Ratio: %.1fdB
- Duration: %.1fs
- Clarity Score: %d/100
- Spectral Completeness: %d%%

### User Context Profile:
Diabetes Status: %s
Metabolic State: %s
- Last Food Intake: %s
- Expected Glucose Pattern: %s
- Critical Window: %t
`, preview, quality.SNR, quality.Duration, quality.Clarity, quality.SpectralQuality,
		diabetesStatus, phase.Phase, mealTiming, phase.ExpectedPattern, phase.IsCriticalWindow)

	if len(ctx.Symptoms) > 0 {
		cluster := scoring.SymptomCluster(ctx.Symptoms)
		fmt.Fprintf(&b, `
Clinical Symptoms Present: %s
- Symptom Cluster Analysis: %s
- Glucose Direction Indicator: %s
- Urgency Level: %s
`, strings.Join(ctx.Symptoms, ", "), cluster.ClusterType, cluster.Direction, cluster.Urgency)
	}

	if len(ctx.ConversationHistory) > 0 {
		b.WriteString("\n### Conversation History:\n")
		for _, turn := range ctx.ConversationHistory {
			fmt.Fprintf(&b, "%s: %s\n\n", capitalize(turn.Role), turn.Text)
		}
	}

	audioNote := "requires cautious interpretation"
	if quality.SNR > 20 {
		audioNote = "supports high-confidence analysis"
	}
	fmt.Fprintf(&b, `
### Analysis Request:
Please perform comprehensive voice biomarker analysis for glucose estimation using the above context. Focus on:

1. **Pattern Recognition**: Identify specific voice embedding patterns consistent with glucose-related physiological changes
2. **Contextual Integration**: Weight voice signals against user's diabetes status and current metabolic state
3. **Symptom Correlation**: Assess alignment between reported symptoms and voice biomarker patterns
4. **Conversation Analysis**: Extract relevant health information from the questionnaire conversation
5. **Confidence Calibration**: Provide realistic confidence intervals based on data quality and consistency

### Special Considerations:
- User's diabetes status suggests %s
- Expected variability profile: %s (baseline risk %.1f)
- Current metabolic timing indicates %s
- Audio quality %s

Please provide detailed analysis with structured JSON output as specified in your system instructions.
`, scoring.SpecialConsiderations(diabetesStatus), scoring.VariabilityProfile(diabetesStatus),
		scoring.RiskLevel(diabetesStatus), phase.SpecialNotes, audioNote)

	return SystemPrompt, b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
