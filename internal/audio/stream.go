package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/cbegin/cadenza-go/internal/render"
)

// Format is the device sample representation negotiated at session setup.
// The unsigned 16-bit quantizer exists for offline rendering only; oto
// does not offer a u16 device format.
type Format int

const (
	FormatFloat32LE Format = iota
	FormatInt16LE
)

func (f Format) otoFormat() (oto.Format, error) {
	switch f {
	case FormatFloat32LE:
		return oto.FormatFloat32LE, nil
	case FormatInt16LE:
		return oto.FormatSignedInt16LE, nil
	default:
		return 0, fmt.Errorf("audio: unsupported sample format %d", f)
	}
}

// Quantizer returns the render-stage quantizer matching the format.
func (f Format) Quantizer() (render.Quantizer, error) {
	switch f {
	case FormatFloat32LE:
		return render.Float32{}, nil
	case FormatInt16LE:
		return render.Int16{}, nil
	default:
		return nil, fmt.Errorf("audio: unsupported sample format %d", f)
	}
}

// StreamReader adapts a render State to the io.Reader pull model oto
// drives its mixer thread with. Read trims the request to whole frames,
// fills them, and reports io.EOF once the piece has ended so the driver
// can wind the stream down; the trailing buffer it delivers alongside
// EOF is already quantized silence.
type StreamReader struct {
	state *render.State
	q     render.Quantizer
}

func NewStreamReader(state *render.State, q render.Quantizer) *StreamReader {
	return &StreamReader{state: state, q: q}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	frameBytes := r.q.BytesPerSample() * r.state.ChannelCount()
	n := len(p) - len(p)%frameBytes
	if n == 0 {
		return 0, nil
	}
	if err := r.state.Fill(p[:n], r.q); err != nil {
		return 0, err
	}
	if r.state.Terminating() {
		return n, io.EOF
	}
	return n, nil
}

func (r *StreamReader) Close() error { return nil }

var (
	contextOnce     sync.Once
	context         *oto.Context
	contextErr      error
	contextRate     int
	contextChannels int
	contextFormat   Format
)

// sharedContext initializes the process-wide oto context on first use.
// oto allows a single context per process, so later sessions must ask
// for the same rate, channel count, and format.
func sharedContext(sampleRate, channelCount int, format Format) (*oto.Context, error) {
	contextOnce.Do(func() {
		otoFmt, err := format.otoFormat()
		if err != nil {
			contextErr = err
			return
		}
		contextRate = sampleRate
		contextChannels = channelCount
		contextFormat = format
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       otoFmt,
		})
		if err != nil {
			contextErr = fmt.Errorf("audio: cannot create oto context: %w", err)
			return
		}
		<-ready
		context = ctx
	})
	if contextErr != nil {
		return nil, contextErr
	}
	if contextRate != sampleRate || contextChannels != channelCount || contextFormat != format {
		return nil, fmt.Errorf("audio: context already initialized at %d Hz / %d ch (requested %d Hz / %d ch)",
			contextRate, contextChannels, sampleRate, channelCount)
	}
	return context, nil
}

// Player owns one oto output stream fed by a render State.
type Player struct {
	player *oto.Player
	reader *StreamReader
}

func NewPlayer(state *render.State, format Format) (*Player, error) {
	q, err := format.Quantizer()
	if err != nil {
		return nil, err
	}
	ctx, err := sharedContext(state.SampleRate(), state.ChannelCount(), format)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(state, q)
	return &Player{
		player: ctx.NewPlayer(reader),
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

func (p *Player) Stop() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("audio: cannot close oto player: %w", err)
	}
	return p.reader.Close()
}
