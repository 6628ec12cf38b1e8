package cadenza

import "github.com/cbegin/cadenza-go/internal/score"

// Score authoring surface. Scores are plain data built in Go, not files;
// a piece is a fixed collection of tracks, each
// an ordered sequence of notes and rests measured in fractions of a
// measure.
type (
	Score       = score.Score
	Track       = score.Track
	Instruction = score.Instruction
)

// Note is a pitched event: pitch in semitones relative to the reference
// frequency (0 = reference, +12 = one octave up), length in measures.
func Note(pitch int, length float64) Instruction {
	return score.Note(pitch, length)
}

// Rest is silence for the given fraction of a measure.
func Rest(length float64) Instruction {
	return score.Rest(length)
}
