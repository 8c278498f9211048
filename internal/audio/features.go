package audio

import (
	"gonum.org/v1/gonum/stat"

	"glucovoice-go/internal/types"
)

// Features concatenates the deterministic spectral descriptors used by the
// embedding fallback path: 40 mean MFCCs, mean spectral centroid, bandwidth
// and rolloff, 7 spectral-contrast band means and 12 chroma means.
func Features(pa types.ProcessedAudio) []float64 {
	if len(pa.Samples) == 0 {
		return nil
	}

	frames, freqs := spectrogram(pa.Samples, pa.SampleRate)

	out := make([]float64, 0, 62)
	out = append(out, mfccMeans(frames, pa.SampleRate, 40)...)
	out = append(out, stat.Mean(spectralCentroids(frames, freqs), nil))
	out = append(out, stat.Mean(spectralBandwidths(frames, freqs), nil))
	out = append(out, stat.Mean(spectralRolloffs(frames, freqs), nil))
	out = append(out, spectralContrasts(frames, freqs)...)
	out = append(out, chromaMeans(frames, freqs)...)
	return out
}
