package synth

import (
	"fmt"
	"math"
)

// Generator maps a phase measured in cycles to an amplitude in [-1, 1].
type Generator func(phase float64) float64

// Sine is the plain sine oscillator.
func Sine(phase float64) float64 {
	return math.Sin(phase * 2 * math.Pi)
}

// Sawtooth is a centered triangle-like rise/fall: 4x on [0, 0.25),
// 2-4x on [0.25, 0.75), 4x-4 on [0.75, 1). The phase is reduced
// modulo 1 first; a reduced phase outside [0,1) means the oscillator
// was fed garbage (NaN/Inf) and that is a sequencing defect, not a
// runtime condition, so it panics instead of returning a default.
func Sawtooth(phase float64) float64 {
	x := math.Mod(phase, 1)
	if x < 0 {
		x++
	}
	if !(x >= 0 && x < 1) {
		panic(fmt.Sprintf("synth: phase %v out of range after modulo reduction", phase))
	}
	switch {
	case x < 0.25:
		return 4 * x
	case x < 0.75:
		return 2 - 4*x
	default:
		return 4*x - 4
	}
}

// GeneratorFor resolves a waveform name from configuration.
func GeneratorFor(name string) (Generator, error) {
	switch name {
	case "", "sine":
		return Sine, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	default:
		return nil, fmt.Errorf("unknown waveform %q (expected sine|sawtooth)", name)
	}
}

// PitchToFrequency converts a semitone offset to a frequency on the
// equal-tempered scale around the given reference (A4 = 440 Hz by
// convention). Total: every integer pitch maps to a positive frequency.
func PitchToFrequency(pitch int, reference float64) float64 {
	return reference * math.Pow(2, float64(pitch)/12)
}

// Envelope is a fixed trapezoid over normalized note progress: linear
// fade-in on [0, 0.1), flat 1.0 on [0.1, 0.9], linear fade-out on
// (0.9, 1]. Amplitude is exactly 0 at both ends, which is what keeps
// note boundaries from clicking. Out-of-range progress clamps to 0.
func Envelope(progress float64) float64 {
	switch {
	case progress < 0 || progress > 1:
		return 0
	case progress < 0.1:
		return progress * 10
	case progress > 0.9:
		return (1 - progress) * 10
	default:
		return 1
	}
}

// Params holds the per-note rendering knobs.
type Params struct {
	Generator          Generator
	ReferenceFrequency float64 // Hz, frequency of pitch 0
	DecayPerSemitone   float64 // loudness rolloff per semitone; 1 disables
}

func DefaultParams() Params {
	return Params{
		Generator:          Sine,
		ReferenceFrequency: 440,
		DecayPerSemitone:   0.96,
	}
}

// RenderNote evaluates one note at elapsed seconds since its onset.
// duration is the note's full length in seconds and must be positive
// (guaranteed upstream by score validation).
func (p Params) RenderNote(elapsed float64, pitch int, duration float64) float64 {
	freq := PitchToFrequency(pitch, p.ReferenceFrequency)
	amp := Envelope(elapsed / duration)
	decay := math.Pow(p.DecayPerSemitone, float64(pitch))
	return p.Generator(elapsed*freq) * amp * decay
}
