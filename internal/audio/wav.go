package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// DecodeWAV parses a PCM WAV file into mono float64 samples in [-1, 1].
// 16-bit signed little-endian PCM only; stereo input is downmixed by
// averaging channels.
func DecodeWAV(data []byte) ([]float64, int, error) {
	if len(data) < 44 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return nil, 0, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		pcm           []byte
	)

	// walk the chunk list
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("short fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, 0, fmt.Errorf("unsupported WAV format code %d (PCM only)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+size]
		}
		pos = body + size
		if size%2 == 1 {
			pos++ // chunks are word-aligned
		}
	}

	if sampleRate == 0 || pcm == nil {
		return nil, 0, fmt.Errorf("missing fmt or data chunk")
	}
	if bitsPerSample != 16 {
		return nil, 0, fmt.Errorf("unsupported bit depth %d (16-bit PCM only)", bitsPerSample)
	}
	if channels < 1 || channels > 2 {
		return nil, 0, fmt.Errorf("unsupported channel count %d", channels)
	}

	frameBytes := 2 * channels
	n := len(pcm) / frameBytes
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			off := i*frameBytes + c*2
			s := int16(binary.LittleEndian.Uint16(pcm[off : off+2]))
			sum += float64(s) / 32768.0
		}
		samples[i] = sum / float64(channels)
	}
	return samples, sampleRate, nil
}
