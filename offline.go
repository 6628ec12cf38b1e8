package cadenza

import (
	"encoding/binary"
	"fmt"
	"math"

	intrender "github.com/cbegin/cadenza-go/internal/render"
	intseq "github.com/cbegin/cadenza-go/internal/sequencer"
)

// SampleFormat selects the output sample representation for offline
// rendering. Unlike the device formats, unsigned 16-bit is available
// here: some output paths (raw sample dumps) want the midpoint-biased
// encoding even though neither the audio driver nor WAV support it.
type SampleFormat int

const (
	SampleFormatUint16 SampleFormat = iota
	SampleFormatInt16
	SampleFormatFloat32
)

func (f SampleFormat) quantizer() (intrender.Quantizer, error) {
	switch f {
	case SampleFormatUint16:
		return intrender.Uint16{}, nil
	case SampleFormatInt16:
		return intrender.Int16{}, nil
	case SampleFormatFloat32:
		return intrender.Float32{}, nil
	default:
		return nil, fmt.Errorf("unsupported sample format %d", f)
	}
}

// offlineChunkFrames is the fill granularity for offline rendering. The
// rendered piece ends within one chunk of exhaustion; the remainder of
// the final chunk is quantized silence.
const offlineChunkFrames = 2048

func renderRaw(s Score, cfg Config, sampleRate, channelCount int, q intrender.Quantizer) ([]byte, error) {
	seqCfg, err := cfg.sequencerConfig()
	if err != nil {
		return nil, err
	}
	src, err := intseq.NewSource(seqCfg, s)
	if err != nil {
		return nil, err
	}
	state, err := intrender.New(src, sampleRate, channelCount, seqCfg.MasterVolume)
	if err != nil {
		return nil, err
	}
	chunk := make([]byte, offlineChunkFrames*channelCount*q.BytesPerSample())
	var out []byte
	for !state.Terminating() {
		if err := state.Fill(chunk, q); err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// RenderRaw renders the whole score offline to interleaved little-endian
// samples in the given representation, running the same sequencing and
// quantization pipeline the real-time path uses.
func RenderRaw(s Score, cfg Config, sampleRate, channelCount int, format SampleFormat) ([]byte, error) {
	q, err := format.quantizer()
	if err != nil {
		return nil, err
	}
	return renderRaw(s, cfg, sampleRate, channelCount, q)
}

// RenderSamples renders the whole score offline as interleaved float32
// samples.
func RenderSamples(s Score, cfg Config, sampleRate, channelCount int) ([]float32, error) {
	raw, err := renderRaw(s, cfg, sampleRate, channelCount, intrender.Float32{})
	if err != nil {
		return nil, err
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return samples, nil
}

// RenderWAV renders the score and wraps it in a WAV container. PCM16 and
// float32 are supported; unsigned 16-bit has no WAV encoding.
func RenderWAV(s Score, cfg Config, sampleRate, channelCount int, format SampleFormat) ([]byte, error) {
	raw, err := RenderRaw(s, cfg, sampleRate, channelCount, format)
	if err != nil {
		return nil, err
	}
	return EncodeWAV(raw, sampleRate, channelCount, format)
}

// EncodeWAV wraps raw interleaved samples in a WAV header. format must
// be SampleFormatInt16 (PCM) or SampleFormatFloat32 (IEEE float).
func EncodeWAV(raw []byte, sampleRate, channels int, format SampleFormat) ([]byte, error) {
	var audioFormat uint16
	var bitsPerSample int
	switch format {
	case SampleFormatInt16:
		audioFormat = 1
		bitsPerSample = 16
	case SampleFormatFloat32:
		audioFormat = 3
		bitsPerSample = 32
	default:
		return nil, fmt.Errorf("format %d cannot be encoded as WAV", format)
	}
	bytesPerSample := bitsPerSample / 8
	byteRate := sampleRate * channels * bytesPerSample
	blockAlign := channels * bytesPerSample
	chunkSize := 36 + len(raw)
	out := make([]byte, 44+len(raw))
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], audioFormat)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], uint16(bitsPerSample))
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(len(raw)))
	copy(out[44:], raw)
	return out, nil
}
