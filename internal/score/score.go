package score

import "fmt"

type Kind int

const (
	KindNote Kind = iota + 1
	KindRest
)

// Instruction is one scored event: a pitched note or a rest. Lengths are
// fractions of a measure and must be positive; Validate rejects anything
// else rather than skipping it, so a malformed score fails loudly before
// rendering starts.
type Instruction struct {
	Kind   Kind
	Pitch  int     // semitones above (or below, negative) the reference pitch
	Length float64 // fraction of a measure, > 0
}

func Note(pitch int, length float64) Instruction {
	return Instruction{Kind: KindNote, Pitch: pitch, Length: length}
}

func Rest(length float64) Instruction {
	return Instruction{Kind: KindRest, Length: length}
}

func (in Instruction) Validate() error {
	switch in.Kind {
	case KindNote, KindRest:
	default:
		return fmt.Errorf("instruction has unknown kind %d", in.Kind)
	}
	if in.Length <= 0 {
		return fmt.Errorf("instruction length must be positive, got %v", in.Length)
	}
	return nil
}

// Track is an ordered sequence of instructions. The slice is fixed at
// construction; cursor state lives in the sequencer, not here.
type Track struct {
	Name         string
	Instructions []Instruction
}

func (t Track) Validate() error {
	if len(t.Instructions) == 0 {
		return fmt.Errorf("track %q has no instructions", t.Name)
	}
	for i, in := range t.Instructions {
		if err := in.Validate(); err != nil {
			return fmt.Errorf("track %q instruction %d: %w", t.Name, i, err)
		}
	}
	return nil
}

// TotalMeasures returns the summed length of all instructions, in measures.
func (t Track) TotalMeasures() float64 {
	var total float64
	for _, in := range t.Instructions {
		total += in.Length
	}
	return total
}

func (t Track) Copy() Track {
	ins := make([]Instruction, len(t.Instructions))
	copy(ins, t.Instructions)
	return Track{Name: t.Name, Instructions: ins}
}

// Score is a fixed piece: one or more tracks played simultaneously.
type Score struct {
	Tracks []Track
}

func (s Score) Validate() error {
	if len(s.Tracks) == 0 {
		return fmt.Errorf("score has no tracks")
	}
	for _, t := range s.Tracks {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s Score) Copy() Score {
	tracks := make([]Track, len(s.Tracks))
	for i, t := range s.Tracks {
		tracks[i] = t.Copy()
	}
	return Score{Tracks: tracks}
}

// TotalMeasures returns the length of the longest track, in measures.
// Shorter tracks fall silent while the longest finishes.
func (s Score) TotalMeasures() float64 {
	var max float64
	for _, t := range s.Tracks {
		if m := t.TotalMeasures(); m > max {
			max = m
		}
	}
	return max
}
