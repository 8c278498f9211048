package inference

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

// AnthropicReasoner implements Reasoner on top of the Anthropic Messages
// API.
type AnthropicReasoner struct {
	client *anthropic.Client
}

func NewAnthropicReasoner(apiKey string) *AnthropicReasoner {
	return &AnthropicReasoner{client: anthropic.NewClient(apiKey)}
}

func (r *AnthropicReasoner) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, model string) (string, error) {
	resp, err := r.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(model),
		System:    systemPrompt,
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(userPrompt),
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return "", fmt.Errorf("no response content")
	}
	return *resp.Content[0].Text, nil
}

// MockReasoner returns a deterministic elevated-glucose reply. Enabled with
// USE_MOCK_LLM=true for offline demos.
type MockReasoner struct{}

func (MockReasoner) Generate(_ context.Context, _, _ string, _ int, _ string) (string, error) {
	return `{
  "glucose_assessment": {
    "primary_estimate": "elevated",
    "estimated_range": "140-180 mg/dL",
    "confidence_score": 0.72,
    "risk_level": "moderate"
  },
  "analysis_details": {
    "voice_biomarkers_detected": ["F0 instability", "reduced harmonic-to-noise ratio"],
    "supporting_context": "Postprandial timing consistent with elevated estimate",
    "conflicting_signals": "",
    "quality_factors": "Adequate SNR for analysis"
  },
  "clinical_insights": {
    "immediate_recommendations": "Consider verifying with a glucose meter",
    "monitoring_suggestions": "Watch for thirst and fatigue over the next hours",
    "medical_consultation": "Discuss recurring elevated readings with your provider"
  },
  "limitations": {
    "confidence_factors": "Single recording, no longitudinal baseline",
    "disclaimer": "Experimental technology, not a diagnostic device"
  }
}`, nil
}
