package audio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildWAV(t *testing.T, samples []int16, sampleRate, channels int) []byte {
	t.Helper()
	var pcm bytes.Buffer
	for _, s := range samples {
		require.NoError(t, binary.Write(&pcm, binary.LittleEndian, s))
	}

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+pcm.Len()))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(&b, binary.LittleEndian, uint16(channels*2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(pcm.Len()))
	b.Write(pcm.Bytes())
	return b.Bytes()
}

func TestDecodeWAVMono(t *testing.T) {
	data := buildWAV(t, []int16{0, 16384, -16384, 32767}, 16000, 1)
	samples, rate, err := DecodeWAV(data)
	require.NoError(t, err)
	assert.Equal(t, 16000, rate)
	require.Len(t, samples, 4)
	assert.InDelta(t, 0.5, samples[1], 1e-4)
	assert.InDelta(t, -0.5, samples[2], 1e-4)
}

func TestDecodeWAVStereoDownmix(t *testing.T) {
	// L/R pairs averaged into mono
	data := buildWAV(t, []int16{16384, -16384, 8192, 8192}, 44100, 2)
	samples, rate, err := DecodeWAV(data)
	require.NoError(t, err)
	assert.Equal(t, 44100, rate)
	require.Len(t, samples, 2)
	assert.InDelta(t, 0.0, samples[0], 1e-4)
	assert.InDelta(t, 0.25, samples[1], 1e-4)
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, _, err := DecodeWAV([]byte("definitely not audio"))
	assert.Error(t, err)
}
