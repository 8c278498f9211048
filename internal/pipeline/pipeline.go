// Package pipeline sequences one analysis run: Preprocess -> Extract ->
// Infer -> Synthesize -> Persist. The stages are strictly linear; each one
// degrades to its own fallback instead of aborting the run, and only a
// persistence failure is reported to the caller (with the computed result
// still attached).
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"glucovoice-go/internal/audio"
	"glucovoice-go/internal/embedding"
	"glucovoice-go/internal/inference"
	"glucovoice-go/internal/logger"
	"glucovoice-go/internal/store"
	"glucovoice-go/internal/synthesis"
	"glucovoice-go/internal/types"
)

type Pipeline struct {
	extractor *embedding.Extractor
	gateway   *inference.Gateway
	voice     synthesis.Voice
	storage   store.Store
}

func New(extractor *embedding.Extractor, gateway *inference.Gateway, voice synthesis.Voice, storage store.Store) *Pipeline {
	return &Pipeline{extractor: extractor, gateway: gateway, voice: voice, storage: storage}
}

// Run analyzes one recording. The returned result always carries a fully
// populated assessment and script text; a non-nil error means persistence
// failed after the analysis completed.
func (p *Pipeline) Run(ctx context.Context, samples []float64, sampleRate int, user types.UserContext) (types.AnalysisResult, error) {
	start := time.Now()
	sessionID := uuid.New().String()
	log := logger.New().WithField("component", "pipeline").WithField("session_id", sessionID)
	res := types.AnalysisResult{SessionID: sessionID}

	// 1) Preprocess. A preprocessing failure degrades to the raw waveform
	// so the remaining stages can still run.
	pa, err := audio.Preprocess(samples, sampleRate)
	if err != nil {
		log.WithError(err).Warn("preprocessing failed, continuing with raw waveform")
		duration := 0.0
		if sampleRate > 0 {
			duration = float64(len(samples)) / float64(sampleRate)
		}
		pa = types.ProcessedAudio{Samples: samples, SampleRate: sampleRate, Duration: duration}
	}

	// 2) Quality scoring never fails; it falls back internally.
	res.QualityMetrics = audio.AssessQuality(pa)

	// 3) Embedding extraction always yields exactly 512 values.
	emb := p.extractor.Extract(ctx, pa)

	// 4) Inference. Service and parse failures already resolve to the
	// canonical fallback inside the gateway; a missing-input error means
	// the questionnaire context was empty, which is still answered with
	// the fallback here so the caller always gets an assessment.
	assessment, err := p.gateway.Analyze(ctx, emb, user, res.QualityMetrics)
	if err != nil {
		log.WithError(err).Warn("inference rejected input, using fallback assessment")
	}
	res.Assessment = assessment

	// 5) Voice synthesis. The script text survives a synthesis failure.
	res.Script = synthesis.BuildScript(assessment)
	audioRef, err := p.voice.Synthesize(ctx, res.Script)
	if err != nil {
		log.WithError(err).Warn("voice synthesis failed, returning script without audio")
	} else {
		res.AudioRef = audioRef
	}

	// 6) Persist. Non-fatal: the caller still receives the prediction.
	recordID, err := p.storage.Store(ctx, store.Record{
		SessionID:      sessionID,
		UserID:         user.UserID,
		Embedding:      emb,
		Assessment:     assessment,
		AudioRef:       res.AudioRef,
		QualityMetrics: res.QualityMetrics,
		UserContext:    user,
	})
	res.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		log.WithError(err).Error("persistence failed, returning unstored result")
		res.StoreError = err.Error()
		return res, fmt.Errorf("persist analysis: %w", err)
	}
	res.RecordID = recordID

	log.WithField("duration_ms", res.DurationMs).Info("analysis complete")
	return res, nil
}
