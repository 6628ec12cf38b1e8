package cadenza

import (
	"errors"
	"sync"

	intaudio "github.com/cbegin/cadenza-go/internal/audio"
	intrender "github.com/cbegin/cadenza-go/internal/render"
	intseq "github.com/cbegin/cadenza-go/internal/sequencer"
)

// Format selects the device sample representation negotiated with the
// audio driver at session setup.
type Format = intaudio.Format

const (
	FormatFloat32LE = intaudio.FormatFloat32LE
	FormatInt16LE   = intaudio.FormatInt16LE
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	cfg          Config
	channelCount int
	format       Format
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		cfg:          DefaultConfig(),
		channelCount: 2,
		format:       FormatFloat32LE,
	}
}

// WithConfig replaces the default tempo/tuning configuration.
func WithConfig(cfg Config) PlayerOption {
	return func(pc *playerConfig) {
		pc.cfg = cfg
	}
}

// WithChannelCount sets the output channel count. The mono signal is
// duplicated across all channels.
func WithChannelCount(n int) PlayerOption {
	return func(pc *playerConfig) {
		pc.channelCount = n
	}
}

// WithFormat sets the device sample representation.
func WithFormat(f Format) PlayerOption {
	return func(pc *playerConfig) {
		pc.format = f
	}
}

// Player renders scores through the audio device. Sample rate, channel
// count, and format are fixed at construction; each Play call starts a
// fresh render session whose state is owned by the audio thread.
type Player struct {
	mu           sync.Mutex
	sampleRate   int
	channelCount int
	format       Format
	cfg          Config
	audio        *intaudio.Player
	state        *intrender.State
	done         chan struct{}
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	pc := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&pc)
	}
	if pc.channelCount < 1 {
		return nil, errors.New("channelCount must be at least 1")
	}
	// Surface config mistakes here rather than on the first Play.
	if _, err := pc.cfg.sequencerConfig(); err != nil {
		return nil, err
	}
	return &Player{
		sampleRate:   sampleRate,
		channelCount: pc.channelCount,
		format:       pc.format,
		cfg:          pc.cfg,
	}, nil
}

// Play starts rendering the score. Any session already playing is
// stopped and its waiters released. Play returns as soon as the stream
// is handed to the driver; use Wait to block until the piece ends.
func (p *Player) Play(s Score) error {
	seqCfg, err := p.cfg.sequencerConfig()
	if err != nil {
		return err
	}
	src, err := intseq.NewSource(seqCfg, s)
	if err != nil {
		return err
	}
	state, err := intrender.New(src, p.sampleRate, p.channelCount, seqCfg.MasterVolume)
	if err != nil {
		return err
	}
	backend, err := intaudio.NewPlayer(state, p.format)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.done != nil {
		close(p.done)
	}
	p.done = make(chan struct{})
	if p.audio != nil {
		_ = p.audio.Stop()
	}
	p.audio = backend
	p.state = state
	done := p.done
	p.mu.Unlock()

	// Forward the render thread's one-shot exhaustion signal to Wait.
	// If this session is replaced or stopped first, done is closed by
	// that path and the forwarder just exits.
	go func() {
		select {
		case <-state.Done():
			p.signalDone(done)
		case <-done:
		}
	}()

	backend.Play()
	return nil
}

func (p *Player) signalDone(done chan struct{}) {
	p.mu.Lock()
	current := p.done == done
	if current {
		p.done = nil
	}
	p.mu.Unlock()
	if current {
		close(done)
	}
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

// Stop tears the current stream down. Natural exhaustion is the normal
// way a session ends; Stop is the driver-layer teardown path.
func (p *Player) Stop() error {
	p.mu.Lock()
	if p.audio == nil {
		p.mu.Unlock()
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	p.state = nil
	done := p.done
	p.done = nil
	p.mu.Unlock()
	if done != nil {
		close(done)
	}
	return err
}

// Wait blocks until the current piece is exhausted or the session is
// stopped or replaced. It returns immediately when nothing is playing.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Position returns the number of samples rendered in the current
// session, or 0 if nothing is playing.
func (p *Player) Position() uint64 {
	p.mu.Lock()
	st := p.state
	p.mu.Unlock()
	if st == nil {
		return 0
	}
	return st.Position()
}
