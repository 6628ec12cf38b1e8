package sequencer

import (
	"fmt"

	"github.com/cbegin/cadenza-go/internal/score"
	"github.com/cbegin/cadenza-go/internal/synth"
)

// Config carries the tempo and tuning knobs shared by every track of a
// Source. It is plain data so callers can run the same score at several
// tempos without touching package state.
type Config struct {
	BPM                float64
	ReferenceFrequency float64 // Hz, frequency of pitch 0
	MasterVolume       float64 // applied by the render stage, not here
	DecayPerSemitone   float64
	Generator          synth.Generator
}

func DefaultConfig() Config {
	return Config{
		BPM:                120,
		ReferenceFrequency: 440,
		MasterVolume:       0.1,
		DecayPerSemitone:   0.96,
		Generator:          synth.Sine,
	}
}

func (c Config) Validate() error {
	if c.BPM <= 0 {
		return fmt.Errorf("bpm must be positive, got %v", c.BPM)
	}
	if c.ReferenceFrequency <= 0 {
		return fmt.Errorf("reference frequency must be positive, got %v", c.ReferenceFrequency)
	}
	if c.MasterVolume < 0 {
		return fmt.Errorf("master volume must not be negative, got %v", c.MasterVolume)
	}
	if c.DecayPerSemitone <= 0 {
		return fmt.Errorf("decay per semitone must be positive, got %v", c.DecayPerSemitone)
	}
	if c.Generator == nil {
		return fmt.Errorf("generator must not be nil")
	}
	return nil
}

// MeasureDuration returns the length of one 4/4 measure in seconds.
func (c Config) MeasureDuration() float64 {
	return 60 / c.BPM * 4
}

// trackCursor walks one track's instructions forward in wall-clock time.
// It only ever advances; once past the last instruction it stays exhausted.
type trackCursor struct {
	instructions []score.Instruction
	index        int
	startOfInstr float64 // seconds at which instructions[index] began
	exhausted    bool
}

// evaluate returns the track's signal at time t (seconds since the start
// of the piece) and whether the track has run out of instructions.
// t must be non-decreasing across calls; the cursor never rewinds.
//
// The boundary check is strict: the sample landing exactly on an
// instruction's end time still belongs to that instruction, and the
// cursor advances on the sample after it.
func (tc *trackCursor) evaluate(t float64, measure float64, params synth.Params) (float64, bool) {
	if tc.exhausted {
		return 0, true
	}
	// Advance past every instruction whose window has elapsed. Under the
	// real-time contract t moves one sample period per call, so this loop
	// runs at most once, but looping keeps it correct for larger jumps.
	for {
		duration := tc.instructions[tc.index].Length * measure
		if t <= tc.startOfInstr+duration {
			break
		}
		tc.startOfInstr += duration
		tc.index++
		if tc.index == len(tc.instructions) {
			tc.exhausted = true
			return 0, true
		}
	}
	in := tc.instructions[tc.index]
	if in.Kind == score.KindRest {
		return 0, false
	}
	duration := in.Length * measure
	return params.RenderNote(t-tc.startOfInstr, in.Pitch, duration), false
}

// Source mixes one or more tracks into a single mono signal by summation.
// It is exhausted only once every track is exhausted; a silent rest while
// any track still has instructions left is not exhaustion.
type Source struct {
	cfg     Config
	measure float64
	params  synth.Params
	tracks  []trackCursor
}

// NewSource validates the score and config and builds the cursor state.
// The score is copied, so later mutation of the caller's slices cannot
// reach the render thread.
func NewSource(cfg Config, s score.Score) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s = s.Copy()
	tracks := make([]trackCursor, len(s.Tracks))
	for i, t := range s.Tracks {
		tracks[i] = trackCursor{instructions: t.Instructions}
	}
	return &Source{
		cfg:     cfg,
		measure: cfg.MeasureDuration(),
		params: synth.Params{
			Generator:          cfg.Generator,
			ReferenceFrequency: cfg.ReferenceFrequency,
			DecayPerSemitone:   cfg.DecayPerSemitone,
		},
		tracks: tracks,
	}, nil
}

// Evaluate returns the summed signal at time t and whether the whole
// source is exhausted. Callers must evaluate at non-decreasing t.
func (s *Source) Evaluate(t float64) (float64, bool) {
	var sum float64
	exhausted := true
	for i := range s.tracks {
		v, done := s.tracks[i].evaluate(t, s.measure, s.params)
		if !done {
			exhausted = false
			sum += v
		}
	}
	if exhausted {
		return 0, true
	}
	return sum, false
}

// Config returns the configuration the source was built with.
func (s *Source) Config() Config {
	return s.cfg
}
