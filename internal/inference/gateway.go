// Package inference sends composed prompts to the external reasoning
// service and turns its free-form reply into a normalized assessment.
// Service outages and unparsable replies both degrade to the canonical
// fallback assessment; only a caller contract violation (missing inputs)
// surfaces as an error.
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kaptinlin/jsonrepair"

	"glucovoice-go/internal/logger"
	"glucovoice-go/internal/prompt"
	"glucovoice-go/internal/types"
)

// ErrMissingInput marks a caller contract violation, distinct from a
// service outage: the gateway was invoked without embeddings or context.
var ErrMissingInput = errors.New("missing embeddings or user context")

const (
	DefaultModel     = "claude-3-7-sonnet-20250219"
	DefaultMaxTokens = 2000
)

// Reasoner is the narrow contract to the external reasoning service.
type Reasoner interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, model string) (string, error)
}

type Gateway struct {
	reasoner  Reasoner
	model     string
	maxTokens int
}

func NewGateway(r Reasoner, model string, maxTokens int) *Gateway {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Gateway{reasoner: r, model: model, maxTokens: maxTokens}
}

// Analyze composes the prompt pair, calls the reasoning service and parses
// the reply. Any service or parse failure yields the canonical fallback
// with a nil error.
func (g *Gateway) Analyze(ctx context.Context, embedding []float64, user types.UserContext, quality types.AudioQualityMetrics) (types.GlucoseAssessment, error) {
	log := logger.New().WithField("component", "inference")

	if len(embedding) == 0 || emptyContext(user) {
		return types.FallbackAssessment(), ErrMissingInput
	}

	system, userPrompt := prompt.Compose(embedding, user, quality)

	var reply string
	var lastErr error
	op := func() error {
		var err error
		reply, err = g.reasoner.Generate(ctx, system, userPrompt, g.maxTokens, g.model)
		if err != nil {
			lastErr = err
			return err
		}
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 45 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		log.WithError(lastErr).Warn("reasoning service failed, using fallback assessment")
		return types.FallbackAssessment(), nil
	}

	if strings.TrimSpace(reply) == "" {
		log.Warn("empty reasoning response, using fallback assessment")
		return types.FallbackAssessment(), nil
	}

	a, ok := ParseAssessment(reply)
	if !ok {
		log.Warn("unparsable reasoning response, using fallback assessment")
		return types.FallbackAssessment(), nil
	}

	log.WithField("confidence", a.Assessment.ConfidenceScore).
		WithField("estimate", a.Assessment.PrimaryEstimate).
		Info("assessment parsed")
	return a, nil
}

// ParseAssessment extracts the span between the first '{' and the last '}'
// and decodes it, repairing malformed JSON before giving up. Missing
// sections and fields are filled with defaults; a reply is never rejected
// for partial omission alone.
func ParseAssessment(reply string) (types.GlucoseAssessment, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return types.GlucoseAssessment{}, false
	}
	raw := reply[start : end+1]

	var a types.GlucoseAssessment
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		fixed, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return types.GlucoseAssessment{}, false
		}
		if err := json.Unmarshal([]byte(fixed), &a); err != nil {
			return types.GlucoseAssessment{}, false
		}
	}
	a.Normalize()
	return a, true
}

func emptyContext(u types.UserContext) bool {
	return u.DiabetesStatus == "" && u.MealTiming == "" &&
		len(u.Symptoms) == 0 && len(u.ConversationHistory) == 0
}
