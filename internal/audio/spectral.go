package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Frame sizes follow the usual speech-analysis defaults at 16 kHz.
const (
	frameLength = 2048
	hopLength   = 512
)

// spectrogram computes a magnitude spectrogram with a Hann window.
// Each row holds frameLength/2+1 bins for one frame. Short input is
// zero-padded to a single frame.
func spectrogram(samples []float64, sampleRate int) ([][]float64, []float64) {
	if len(samples) < frameLength {
		padded := make([]float64, frameLength)
		copy(padded, samples)
		samples = padded
	}

	fft := fourier.NewFFT(frameLength)
	window := hannWindow(frameLength)

	nFrames := 1 + (len(samples)-frameLength)/hopLength
	frames := make([][]float64, 0, nFrames)
	buf := make([]float64, frameLength)

	for start := 0; start+frameLength <= len(samples); start += hopLength {
		for i := 0; i < frameLength; i++ {
			buf[i] = samples[start+i] * window[i]
		}
		coeffs := fft.Coefficients(nil, buf)
		mags := make([]float64, len(coeffs))
		for i, c := range coeffs {
			mags[i] = cmplxAbs(c)
		}
		frames = append(frames, mags)
	}

	freqs := make([]float64, frameLength/2+1)
	for i := range freqs {
		freqs[i] = float64(i) * float64(sampleRate) / frameLength
	}
	return frames, freqs
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// spectralCentroids returns the magnitude-weighted mean frequency per frame.
func spectralCentroids(frames [][]float64, freqs []float64) []float64 {
	out := make([]float64, len(frames))
	for i, mags := range frames {
		var num, den float64
		for j, m := range mags {
			num += freqs[j] * m
			den += m
		}
		if den > 0 {
			out[i] = num / den
		}
	}
	return out
}

// spectralBandwidths returns the magnitude-weighted frequency spread around
// the centroid per frame.
func spectralBandwidths(frames [][]float64, freqs []float64) []float64 {
	centroids := spectralCentroids(frames, freqs)
	out := make([]float64, len(frames))
	for i, mags := range frames {
		var num, den float64
		for j, m := range mags {
			d := freqs[j] - centroids[i]
			num += m * d * d
			den += m
		}
		if den > 0 {
			out[i] = math.Sqrt(num / den)
		}
	}
	return out
}

// spectralRolloffs returns, per frame, the frequency below which 85% of the
// spectral magnitude lies.
func spectralRolloffs(frames [][]float64, freqs []float64) []float64 {
	const rolloffFraction = 0.85
	out := make([]float64, len(frames))
	for i, mags := range frames {
		var total float64
		for _, m := range mags {
			total += m
		}
		threshold := rolloffFraction * total
		var cum float64
		for j, m := range mags {
			cum += m
			if cum >= threshold {
				out[i] = freqs[j]
				break
			}
		}
	}
	return out
}

// spectralContrasts returns mean peak-to-valley contrast for 7 octave bands
// starting at 200 Hz, averaged over frames.
func spectralContrasts(frames [][]float64, freqs []float64) []float64 {
	const nBands = 7
	edges := make([]float64, nBands+1)
	edges[0] = 200
	for i := 1; i <= nBands; i++ {
		edges[i] = edges[i-1] * 2
	}

	sums := make([]float64, nBands)
	for _, mags := range frames {
		for b := 0; b < nBands; b++ {
			var peak, valley float64
			valley = math.Inf(1)
			seen := false
			for j, f := range freqs {
				if f < edges[b] || f >= edges[b+1] {
					continue
				}
				m := mags[j] + 1e-10
				if m > peak {
					peak = m
				}
				if m < valley {
					valley = m
				}
				seen = true
			}
			if seen {
				sums[b] += math.Log(peak) - math.Log(valley)
			}
		}
	}

	out := make([]float64, nBands)
	if len(frames) == 0 {
		return out
	}
	for b := range out {
		out[b] = sums[b] / float64(len(frames))
	}
	return out
}

// chromaMeans folds spectral energy onto the 12 pitch classes and averages
// over frames.
func chromaMeans(frames [][]float64, freqs []float64) []float64 {
	out := make([]float64, 12)
	if len(frames) == 0 {
		return out
	}
	// C1 reference for pitch-class mapping
	const refFreq = 32.703
	for _, mags := range frames {
		for j, f := range freqs {
			if f < refFreq {
				continue
			}
			pitch := 12 * math.Log2(f/refFreq)
			class := int(math.Round(pitch)) % 12
			out[class] += mags[j]
		}
	}
	for i := range out {
		out[i] /= float64(len(frames))
	}
	return out
}

// mfccMeans computes nCoeffs mel-frequency cepstral coefficients per frame
// (mel filterbank, log energies, DCT-II) and returns their means.
func mfccMeans(frames [][]float64, sampleRate, nCoeffs int) []float64 {
	const nMels = 64
	out := make([]float64, nCoeffs)
	if len(frames) == 0 {
		return out
	}

	filters := melFilterbank(nMels, frameLength/2+1, sampleRate)
	dct := fourier.NewDCT(nMels)

	logEnergies := make([]float64, nMels)
	for _, mags := range frames {
		for m := 0; m < nMels; m++ {
			var e float64
			for j, w := range filters[m] {
				if w > 0 {
					e += w * mags[j] * mags[j]
				}
			}
			logEnergies[m] = math.Log(e + 1e-10)
		}
		cepstrum := dct.Transform(nil, logEnergies)
		for i := 0; i < nCoeffs && i < len(cepstrum); i++ {
			out[i] += cepstrum[i]
		}
	}
	for i := range out {
		out[i] /= float64(len(frames))
	}
	return out
}

// melFilterbank builds nMels triangular filters over nBins FFT bins.
func melFilterbank(nMels, nBins, sampleRate int) [][]float64 {
	hzToMel := func(hz float64) float64 { return 2595 * math.Log10(1+hz/700) }
	melToHz := func(mel float64) float64 { return 700 * (math.Pow(10, mel/2595) - 1) }

	maxMel := hzToMel(float64(sampleRate) / 2)
	melPoints := make([]float64, nMels+2)
	for i := range melPoints {
		melPoints[i] = melToHz(maxMel * float64(i) / float64(nMels+1))
	}

	binFreq := func(i int) float64 { return float64(i) * float64(sampleRate) / frameLength }

	filters := make([][]float64, nMels)
	for m := 0; m < nMels; m++ {
		filters[m] = make([]float64, nBins)
		lo, mid, hi := melPoints[m], melPoints[m+1], melPoints[m+2]
		for j := 0; j < nBins; j++ {
			f := binFreq(j)
			switch {
			case f > lo && f <= mid:
				filters[m][j] = (f - lo) / (mid - lo)
			case f > mid && f < hi:
				filters[m][j] = (hi - f) / (hi - mid)
			}
		}
	}
	return filters
}
