package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SpeechSampleRate is the fixed output rate of the speech collaborator:
// 24 kHz mono signed 16-bit little-endian PCM, raw (no container).
const SpeechSampleRate = 24000

// pcmScale is the maximum magnitude of the signed 16-bit range, used to map
// samples into [-1, 1).
const pcmScale = 32768.0

// ErrOddPCMLength is returned when a PCM payload ends mid-sample.
var ErrOddPCMLength = errors.New("pcm payload length is not a multiple of 2")

// PCMClip is a decoded single-channel audio buffer of normalized samples.
type PCMClip struct {
	SampleRate int
	Samples    []float32
}

// DecodeBase64 decodes a standard base64 speech payload into raw bytes.
// Malformed input (non-alphabet characters, bad padding) is an error.
func DecodeBase64(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 audio payload: %w", err)
	}
	return data, nil
}

// DecodePCM16 interprets data as signed 16-bit little-endian mono PCM at the
// given sample rate and returns the normalized clip. A byte count that is not
// an even multiple of 2 means a truncated sample and is rejected.
func DecodePCM16(data []byte, sampleRate int) (*PCMClip, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrOddPCMLength, len(data))
	}

	samples := make([]float32, len(data)/2)
	for i := range samples {
		s := int16(uint16(data[2*i]) | uint16(data[2*i+1])<<8)
		samples[i] = float32(s) / pcmScale
	}

	return &PCMClip{SampleRate: sampleRate, Samples: samples}, nil
}

// Duration returns the playback length of the clip.
func (c *PCMClip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// WAV renders the clip as a mono 16-bit WAV file for client playback.
func (c *PCMClip) WAV() ([]byte, error) {
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: c.SampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(c.Samples)),
	}
	for i, s := range c.Samples {
		v := int(s * pcmScale)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		buf.Data[i] = v
	}

	out := &seekBuffer{}
	enc := wav.NewEncoder(out, c.SampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize wav: %w", err)
	}

	return out.Bytes(), nil
}

// seekBuffer is an in-memory io.WriteSeeker for the wav encoder, which
// seeks back to patch RIFF chunk sizes on Close.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		grown := make([]byte, need)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(b.pos) + offset
	case io.SeekEnd:
		next = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("negative seek position %d", next)
	}
	b.pos = int(next)
	return next, nil
}

func (b *seekBuffer) Bytes() []byte {
	return b.data
}
