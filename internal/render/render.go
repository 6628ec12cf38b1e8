package render

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"
)

// Source is the signal a State pulls from: evaluated at a monotonically
// non-decreasing time t, it returns the mono signal and whether the piece
// has ended. Exhaustion is terminal.
type Source interface {
	Evaluate(t float64) (signal float64, exhausted bool)
}

// Quantizer maps a float signal in roughly [-1, 1] to the little-endian
// byte encoding of one output sample. One implementation exists per
// supported device representation; the choice is made once at session
// setup, never per sample.
type Quantizer interface {
	BytesPerSample() int
	Quantize(v float64, dst []byte)
}

// clamp pins v to [-1, 1]. Values outside the range only occur when a
// score sums hot enough to exceed the master-volume headroom; converting
// an out-of-range float to an integer type is unspecified in Go, so the
// quantizers saturate instead.
func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// Uint16 maps [-1, 1] onto [0, 65535] with signal zero at the midpoint:
// (1 + v) * (max / 2), truncated.
type Uint16 struct{}

func (Uint16) BytesPerSample() int { return 2 }

func (Uint16) Quantize(v float64, dst []byte) {
	u := uint16((1 + clamp(v)) * (math.MaxUint16 / 2.0))
	binary.LittleEndian.PutUint16(dst, u)
}

// Int16 maps [-1, 1] onto [-32767, 32767]: v * max, truncated.
type Int16 struct{}

func (Int16) BytesPerSample() int { return 2 }

func (Int16) Quantize(v float64, dst []byte) {
	i := int16(clamp(v) * math.MaxInt16)
	binary.LittleEndian.PutUint16(dst, uint16(i))
}

// Float32 passes the signal through, narrowed to 32-bit.
type Float32 struct{}

func (Float32) BytesPerSample() int { return 4 }

func (Float32) Quantize(v float64, dst []byte) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v)))
}

// State owns the live Source and the sample counter for one render
// session. It is moved into the audio callback and from then on touched
// only by the render thread; the done channel is the single point of
// synchronization with whoever waits for the piece to finish.
type State struct {
	source       Source
	sampleRate   int
	channelCount int
	volume       float64
	counter      uint64  // samples rendered; render thread only
	terminating  bool    // sticky; render thread only
	scratch      [8]byte // quantize staging; lives here so Fill never allocates
	rendered     atomic.Uint64
	done         chan struct{}
}

func New(source Source, sampleRate, channelCount int, volume float64) (*State, error) {
	if source == nil {
		return nil, fmt.Errorf("render: source must not be nil")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("render: sample rate must be positive, got %d", sampleRate)
	}
	if channelCount < 1 {
		return nil, fmt.Errorf("render: channel count must be at least 1, got %d", channelCount)
	}
	if volume < 0 {
		return nil, fmt.Errorf("render: volume must not be negative, got %v", volume)
	}
	return &State{
		source:       source,
		sampleRate:   sampleRate,
		channelCount: channelCount,
		volume:       volume,
		done:         make(chan struct{}),
	}, nil
}

// Fill renders whole frames into dst: for each frame the source is
// evaluated at counter/sampleRate, attenuated by the master volume,
// quantized once, and the identical sample written to every channel slot.
// After the source reports exhaustion, the remaining frames and every
// later call are quantized silence, and the done channel is closed
// exactly once.
//
// dst must hold a whole number of frames; anything else is a device
// misconfiguration the core cannot patch over, reported as an error that
// ends the session. Fill does not allocate, lock, or block: it runs on
// the audio driver's real-time thread.
func (s *State) Fill(dst []byte, q Quantizer) error {
	bps := q.BytesPerSample()
	frameBytes := bps * s.channelCount
	if len(dst)%frameBytes != 0 {
		return fmt.Errorf("render: buffer of %d bytes is not a whole number of %d-byte frames", len(dst), frameBytes)
	}
	enc := s.scratch[:bps]
	for off := 0; off < len(dst); off += frameBytes {
		var v float64
		if !s.terminating {
			t := float64(s.counter) / float64(s.sampleRate)
			signal, exhausted := s.source.Evaluate(t)
			if exhausted {
				s.terminating = true
				close(s.done)
			} else {
				v = signal * s.volume
			}
		}
		q.Quantize(v, enc)
		for c := 0; c < s.channelCount; c++ {
			copy(dst[off+c*bps:], enc)
		}
		s.counter++
	}
	s.rendered.Store(s.counter)
	return nil
}

// Done is closed once, the first time the source reports exhaustion
// inside a Fill call. Closing a channel is non-blocking, so the render
// thread never waits on the listener.
func (s *State) Done() <-chan struct{} {
	return s.done
}

// Terminating reports whether the source has been exhausted. Render
// thread only; other threads must watch Done instead.
func (s *State) Terminating() bool {
	return s.terminating
}

// Position returns the number of samples rendered so far. Safe to call
// from any thread.
func (s *State) Position() uint64 {
	return s.rendered.Load()
}

func (s *State) SampleRate() int   { return s.sampleRate }
func (s *State) ChannelCount() int { return s.channelCount }
