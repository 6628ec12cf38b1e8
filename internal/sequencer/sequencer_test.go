package sequencer

import (
	"math"
	"testing"

	"github.com/cbegin/cadenza-go/internal/score"
)

const sampleRate = 48000

// evalAt advances the source sample-by-sample up to index n and returns
// the evaluation at n. Sources only support non-decreasing t, so tests
// must walk rather than jump.
func evalAt(src *Source, n int) (float64, bool) {
	var v float64
	var done bool
	for i := 0; i <= n; i++ {
		v, done = src.Evaluate(float64(i) / sampleRate)
	}
	return v, done
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero bpm", func(c *Config) { c.BPM = 0 }},
		{"negative reference", func(c *Config) { c.ReferenceFrequency = -1 }},
		{"negative volume", func(c *Config) { c.MasterVolume = -0.1 }},
		{"zero decay", func(c *Config) { c.DecayPerSemitone = 0 }},
		{"nil generator", func(c *Config) { c.Generator = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestMeasureDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BPM = 120
	if got := cfg.MeasureDuration(); math.Abs(got-2.0) > 1e-12 {
		t.Fatalf("measure at 120 BPM = %v s, want 2.0", got)
	}
	cfg.BPM = 60
	if got := cfg.MeasureDuration(); math.Abs(got-4.0) > 1e-12 {
		t.Fatalf("measure at 60 BPM = %v s, want 4.0", got)
	}
}

func TestNewSourceRejectsBadInput(t *testing.T) {
	if _, err := NewSource(DefaultConfig(), score.Score{}); err == nil {
		t.Fatalf("empty score should be rejected")
	}
	bad := score.Score{Tracks: []score.Track{{Instructions: []score.Instruction{score.Note(0, -1)}}}}
	if _, err := NewSource(DefaultConfig(), bad); err == nil {
		t.Fatalf("negative-length instruction should be rejected")
	}
	// A track with no instructions must be caught here; letting it through
	// would put an empty cursor on the audio path.
	noIns := score.Score{Tracks: []score.Track{{Name: "empty"}}}
	if _, err := NewSource(DefaultConfig(), noIns); err == nil {
		t.Fatalf("track without instructions should be rejected")
	}
	cfg := DefaultConfig()
	cfg.BPM = -10
	ok := score.Score{Tracks: []score.Track{{Instructions: []score.Instruction{score.Note(0, 0.25)}}}}
	if _, err := NewSource(cfg, ok); err == nil {
		t.Fatalf("invalid config should be rejected")
	}
}

// At 120 BPM a measure is 2.0 s, so Note(0, 0.25)+Rest(0.25) spans
// 0.5 s + 0.5 s = 48000 samples at 48 kHz. The boundary check is strict:
// the sample landing exactly on an end time still belongs to the expiring
// instruction, so exhaustion first appears at sample 48001.
func TestTrackExhaustionBoundary(t *testing.T) {
	s := score.Score{Tracks: []score.Track{{
		Instructions: []score.Instruction{score.Note(0, 0.25), score.Rest(0.25)},
	}}}
	src, err := NewSource(DefaultConfig(), s)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	var sawSignal bool
	for i := 0; i <= 48001; i++ {
		v, done := src.Evaluate(float64(i) / sampleRate)
		switch {
		case i <= 24000:
			if done {
				t.Fatalf("sample %d: exhausted during the note", i)
			}
			if math.Abs(v) > 0.1 {
				sawSignal = true
			}
		case i <= 48000:
			if done {
				t.Fatalf("sample %d: exhausted during the rest", i)
			}
			if v != 0 {
				t.Fatalf("sample %d: rest produced %v, want exactly 0", i, v)
			}
		default:
			if !done {
				t.Fatalf("sample %d: expected exhaustion", i)
			}
			if v != 0 {
				t.Fatalf("sample %d: exhausted source produced %v", i, v)
			}
		}
	}
	if !sawSignal {
		t.Fatalf("note region produced no audible signal")
	}
}

func TestSingleNoteBoundarySample(t *testing.T) {
	s := score.Score{Tracks: []score.Track{{
		Instructions: []score.Instruction{score.Note(0, 0.25)},
	}}}
	src, err := NewSource(DefaultConfig(), s)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	// 0.25 measures at 120 BPM = 0.5 s = sample 24000 exactly.
	if _, done := evalAt(src, 24000); done {
		t.Fatalf("sample at the exact end time should still belong to the note")
	}
	if _, done := src.Evaluate(24001.0 / sampleRate); !done {
		t.Fatalf("sample after the end time should exhaust the track")
	}
}

func TestExhaustionIsTerminal(t *testing.T) {
	s := score.Score{Tracks: []score.Track{{
		Instructions: []score.Instruction{score.Rest(0.05)},
	}}}
	src, err := NewSource(DefaultConfig(), s)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if _, done := evalAt(src, 10000); !done {
		t.Fatalf("expected exhaustion after 0.1 s")
	}
	for i := 10001; i < 10010; i++ {
		if _, done := src.Evaluate(float64(i) / sampleRate); !done {
			t.Fatalf("exhaustion must not reset")
		}
	}
}

// A two-track source stays alive until the longer track finishes, and
// once the shorter one is done the mix equals the longer track alone.
func TestMultiTrackOutlivesShortTrack(t *testing.T) {
	short := score.Track{Instructions: []score.Instruction{score.Note(0, 0.25)}}
	long := score.Track{Instructions: []score.Instruction{score.Note(12, 0.5)}}

	both, err := NewSource(DefaultConfig(), score.Score{Tracks: []score.Track{short, long}})
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	solo, err := NewSource(DefaultConfig(), score.Score{Tracks: []score.Track{long}})
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	// long spans 1.0 s = 48000 samples; short ends at 24000.
	for i := 0; i <= 48001; i++ {
		t1 := float64(i) / sampleRate
		vBoth, doneBoth := both.Evaluate(t1)
		vSolo, doneSolo := solo.Evaluate(t1)
		if i <= 48000 && doneBoth {
			t.Fatalf("sample %d: source exhausted before its longest track", i)
		}
		if i > 24001 && !doneSolo {
			if vBoth != vSolo {
				t.Fatalf("sample %d: mix %v differs from solo %v after short track ended", i, vBoth, vSolo)
			}
		}
		if i == 48001 && (!doneBoth || !doneSolo) {
			t.Fatalf("sample %d: both sources should be exhausted", i)
		}
	}
}

// The advance loop must cope with t jumping past several instruction
// windows in one call, not just the one-sample steps of the real-time
// contract.
func TestEvaluateSkipsAcrossInstructions(t *testing.T) {
	s := score.Score{Tracks: []score.Track{{
		Instructions: []score.Instruction{score.Note(0, 0.25), score.Rest(0.25), score.Note(12, 0.25)},
	}}}
	// Windows at 120 BPM: [0, 0.5], (0.5, 1.0], (1.0, 1.5].
	src, err := NewSource(DefaultConfig(), s)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	// First call lands mid-way through the third instruction, skipping the
	// first two entirely. 1.2103 s puts the sine away from a zero crossing.
	v, done := src.Evaluate(1.2103)
	if done {
		t.Fatalf("source exhausted at 1.2103 s, final note runs to 1.5 s")
	}
	if v == 0 {
		t.Fatalf("expected signal from the final note after skipping two instructions")
	}
	if v2, done := src.Evaluate(1.33); done || v2 == 0 {
		t.Fatalf("cursor should still be on the final note at 1.33 s (v=%v done=%v)", v2, done)
	}

	// A jump past the whole piece exhausts in a single call.
	src2, err := NewSource(DefaultConfig(), s)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if v, done := src2.Evaluate(10); !done || v != 0 {
		t.Fatalf("Evaluate(10) = (%v, %v), want exhaustion with no signal", v, done)
	}
}

func TestRestOnlyTrackIsSilentButAlive(t *testing.T) {
	s := score.Score{Tracks: []score.Track{{
		Instructions: []score.Instruction{score.Rest(0.5)},
	}}}
	src, err := NewSource(DefaultConfig(), s)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	v, done := evalAt(src, 1000)
	if done {
		t.Fatalf("rest must not exhaust the source")
	}
	if v != 0 {
		t.Fatalf("rest produced %v, want 0", v)
	}
}

func TestSourceCopiesScore(t *testing.T) {
	s := score.Score{Tracks: []score.Track{{
		Instructions: []score.Instruction{score.Note(0, 1)},
	}}}
	src, err := NewSource(DefaultConfig(), s)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	s.Tracks[0].Instructions[0] = score.Rest(1)
	// Pick a time where the sine phase is not near a zero crossing.
	if v, _ := src.Evaluate(0.2501); v == 0 {
		t.Fatalf("mutating the caller's score reached the source")
	}
}

func BenchmarkSourceEvaluate(b *testing.B) {
	ins := make([]score.Instruction, 64)
	for i := range ins {
		ins[i] = score.Note(i%24-12, 0.125)
	}
	s := score.Score{Tracks: []score.Track{{Instructions: ins}, {Instructions: ins}}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src, err := NewSource(DefaultConfig(), s)
		if err != nil {
			b.Fatalf("new source: %v", err)
		}
		for n := 0; n < 2048; n++ {
			src.Evaluate(float64(n) / sampleRate)
		}
	}
}
