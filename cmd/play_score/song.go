package main

import cadenza "github.com/cbegin/cadenza-go"

// Pitches in semitones relative to A4 (pitch 0 = 440 Hz).
const (
	g3 = -14
	c4 = -9
	e4 = -5
	g4 = -2
	c5 = 3
	d5 = 5
	e5 = 7
	f5 = 8
	g5 = 10
)

// demoScore is a small two-voice round: the lead carries the tune while
// the bass walks root and fifth underneath in half notes.
func demoScore() cadenza.Score {
	lead := cadenza.Track{
		Name: "lead",
		Instructions: []cadenza.Instruction{
			cadenza.Note(c5, 0.25), cadenza.Note(d5, 0.25), cadenza.Note(e5, 0.25), cadenza.Note(c5, 0.25),
			cadenza.Note(c5, 0.25), cadenza.Note(d5, 0.25), cadenza.Note(e5, 0.25), cadenza.Note(c5, 0.25),
			cadenza.Note(e5, 0.25), cadenza.Note(f5, 0.25), cadenza.Note(g5, 0.5),
			cadenza.Note(e5, 0.25), cadenza.Note(f5, 0.25), cadenza.Note(g5, 0.5),
			cadenza.Note(g5, 0.125), cadenza.Note(f5, 0.125), cadenza.Note(e5, 0.125), cadenza.Note(c5, 0.125),
			cadenza.Note(g5, 0.125), cadenza.Note(f5, 0.125), cadenza.Note(e5, 0.125), cadenza.Note(c5, 0.125),
			cadenza.Note(c5, 0.25), cadenza.Note(g4, 0.25), cadenza.Note(c5, 0.5),
		},
	}
	bass := cadenza.Track{
		Name: "bass",
		Instructions: []cadenza.Instruction{
			cadenza.Note(c4, 0.5), cadenza.Note(g3, 0.5),
			cadenza.Note(c4, 0.5), cadenza.Note(g3, 0.5),
			cadenza.Note(e4, 0.5), cadenza.Note(g3, 0.5),
			cadenza.Rest(0.25), cadenza.Note(g3, 0.25), cadenza.Note(c4, 0.5),
		},
	}
	return cadenza.Score{Tracks: []cadenza.Track{lead, bass}}
}
