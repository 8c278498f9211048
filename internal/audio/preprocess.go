package audio

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"

	"glucovoice-go/internal/types"
)

// TargetSampleRate is the rate every recording is normalized to before
// feature extraction.
const TargetSampleRate = 16000

// trim threshold relative to the peak frame, in dB
const silenceThresholdDB = 20.0

const preEmphasisCoeff = 0.97

// Preprocess resamples a raw waveform to 16 kHz, trims leading/trailing
// silence, peak-normalizes and applies a pre-emphasis filter. The result is
// what every downstream stage consumes.
func Preprocess(samples []float64, sampleRate int) (types.ProcessedAudio, error) {
	if len(samples) == 0 {
		return types.ProcessedAudio{}, fmt.Errorf("empty waveform")
	}
	if sampleRate <= 0 {
		return types.ProcessedAudio{}, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	y := samples
	if sampleRate != TargetSampleRate {
		resampled, err := resample(y, sampleRate, TargetSampleRate)
		if err != nil {
			return types.ProcessedAudio{}, fmt.Errorf("resample: %w", err)
		}
		y = resampled
	}

	y = trimSilence(y)
	y = normalize(y)
	y = preEmphasis(y)

	return types.ProcessedAudio{
		Samples:    y,
		SampleRate: TargetSampleRate,
		Duration:   float64(len(y)) / TargetSampleRate,
	}, nil
}

func resample(samples []float64, from, to int) ([]float64, error) {
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, err
	}
	out, err := r.Process(samples)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("resampler produced no output")
	}
	return out, nil
}

// trimSilence drops leading and trailing frames whose RMS is more than
// silenceThresholdDB below the loudest frame.
func trimSilence(samples []float64) []float64 {
	if len(samples) == 0 {
		return samples
	}

	const frame = 512
	var rms []float64
	for start := 0; start < len(samples); start += frame {
		end := start + frame
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for _, s := range samples[start:end] {
			sum += s * s
		}
		rms = append(rms, math.Sqrt(sum/float64(end-start)))
	}

	peak := 0.0
	for _, r := range rms {
		if r > peak {
			peak = r
		}
	}
	if peak == 0 {
		return samples
	}
	threshold := peak * math.Pow(10, -silenceThresholdDB/20)

	first, last := 0, len(rms)-1
	for first <= last && rms[first] < threshold {
		first++
	}
	for last >= first && rms[last] < threshold {
		last--
	}
	if first > last {
		return samples
	}

	start := first * frame
	end := (last + 1) * frame
	if end > len(samples) {
		end = len(samples)
	}
	return samples[start:end]
}

// normalize scales samples so the peak magnitude is 1.
func normalize(samples []float64) []float64 {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return samples
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s / peak
	}
	return out
}

// preEmphasis applies the first-order high-pass y[n] = x[n] - 0.97*x[n-1].
func preEmphasis(samples []float64) []float64 {
	if len(samples) == 0 {
		return samples
	}
	out := make([]float64, len(samples))
	out[0] = samples[0]
	for i := 1; i < len(samples); i++ {
		out[i] = samples[i] - preEmphasisCoeff*samples[i-1]
	}
	return out
}
