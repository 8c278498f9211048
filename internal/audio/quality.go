package audio

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"glucovoice-go/internal/logger"
	"glucovoice-go/internal/types"
)

// DefaultQualityMetrics is returned whenever quality scoring cannot run.
// The pipeline never fails solely because of quality assessment.
func DefaultQualityMetrics(duration float64) types.AudioQualityMetrics {
	return types.AudioQualityMetrics{
		SNR:             20.0,
		Duration:        duration,
		Clarity:         70,
		SpectralQuality: 75,
	}
}

// AssessQuality computes heuristic SNR, clarity and spectral-quality scores
// for a preprocessed recording. The numbers are approximate quality
// indicators, not calibrated acoustic measurements.
func AssessQuality(pa types.ProcessedAudio) types.AudioQualityMetrics {
	log := logger.New().WithField("component", "audio-quality")

	if len(pa.Samples) == 0 {
		log.Warn("empty waveform, using default quality metrics")
		return DefaultQualityMetrics(pa.Duration)
	}

	squared := make([]float64, len(pa.Samples))
	for i, s := range pa.Samples {
		squared[i] = s * s
	}
	signalPower := stat.Mean(squared, nil)
	noiseEstimate := stat.Variance(pa.Samples, nil) * 0.1

	// Degenerate/silent input has no usable noise floor.
	snr := 30.0
	if noiseEstimate > 0 && signalPower > 0 {
		snr = 10 * math.Log10(signalPower/noiseEstimate)
	}

	frames, freqs := spectrogram(pa.Samples, pa.SampleRate)
	centroid := stat.Mean(spectralCentroids(frames, freqs), nil)
	bandwidth := stat.Mean(spectralBandwidths(frames, freqs), nil)

	return types.AudioQualityMetrics{
		SNR:             snr,
		Duration:        pa.Duration,
		Clarity:         clamp100(int(math.Round(centroid / 50))),
		SpectralQuality: clamp100(int(math.Round(100 - bandwidth/100))),
	}
}

func clamp100(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
