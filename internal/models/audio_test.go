package models

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pcm16 packs int16 samples as little-endian bytes.
func pcm16(samples ...int16) []byte {
	out := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		out = append(out, byte(uint16(s)&0xFF), byte(uint16(s)>>8))
	}
	return out
}

func TestDecodePCM16(t *testing.T) {
	clip, err := DecodePCM16(pcm16(0, 16384, -16384, 32767, -32768), SpeechSampleRate)
	require.NoError(t, err)

	require.Len(t, clip.Samples, 5)
	assert.Equal(t, SpeechSampleRate, clip.SampleRate)
	assert.InDelta(t, 0.0, clip.Samples[0], 1e-6)
	assert.InDelta(t, 0.5, clip.Samples[1], 1e-6)
	assert.InDelta(t, -0.5, clip.Samples[2], 1e-6)
	assert.InDelta(t, 32767.0/32768.0, clip.Samples[3], 1e-6)
	assert.InDelta(t, -1.0, clip.Samples[4], 1e-6)
}

func TestDecodePCM16OddLength(t *testing.T) {
	_, err := DecodePCM16([]byte{0x00, 0x01, 0x02}, SpeechSampleRate)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOddPCMLength)
}

func TestDecodePCM16InvalidRate(t *testing.T) {
	_, err := DecodePCM16(pcm16(0), 0)
	assert.Error(t, err)
}

func TestDecodePCM16Empty(t *testing.T) {
	clip, err := DecodePCM16(nil, SpeechSampleRate)
	require.NoError(t, err)
	assert.Empty(t, clip.Samples)
}

func TestDecodeBase64(t *testing.T) {
	raw := pcm16(100, -100)
	decoded, err := DecodeBase64(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestDecodeBase64Malformed(t *testing.T) {
	_, err := DecodeBase64("not!!valid!!base64")
	assert.Error(t, err)
}

func TestClipDuration(t *testing.T) {
	clip := &PCMClip{SampleRate: SpeechSampleRate, Samples: make([]float32, SpeechSampleRate*2)}
	assert.InDelta(t, 2.0, clip.Duration(), 1e-9)

	empty := &PCMClip{}
	assert.Zero(t, empty.Duration())
}

func TestWAVRoundTrip(t *testing.T) {
	original := []int16{0, 1000, -1000, 30000, -30000, 32767, -32768}
	clip, err := DecodePCM16(pcm16(original...), SpeechSampleRate)
	require.NoError(t, err)

	data, err := clip.WAV()
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "RIFF", string(data[:4]))

	dec := wav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, 1, buf.Format.NumChannels)
	assert.Equal(t, SpeechSampleRate, buf.Format.SampleRate)
	require.Len(t, buf.Data, len(original))
	for i, want := range original {
		// Normalization and re-quantization may shift a sample by one step.
		assert.InDelta(t, int(want), buf.Data[i], 1, "sample %d", i)
	}
}
