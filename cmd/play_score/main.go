package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"

	cadenza "github.com/cbegin/cadenza-go"
)

func main() {
	var (
		sampleRate = pflag.Int("sample-rate", 48000, "output sample rate in Hz")
		channels   = pflag.Int("channels", 2, "output channel count (mono signal duplicated)")
		formatName = pflag.String("format", "f32", "device sample format: f32|i16")
		bpm        = pflag.Float64("bpm", 0, "tempo override in beats per minute (0 = config value)")
		waveform   = pflag.String("waveform", "", "waveform override: sine|sawtooth")
		configPath = pflag.String("config", "", "path to a YAML config file")
		wavPath    = pflag.String("wav", "", "render to a WAV file instead of playing")
		debug      = pflag.Bool("debug", false, "debug logging, including a dump of the resolved config and score")
	)
	pflag.Parse()
	initLogger(*debug)

	cfg := cadenza.DefaultConfig()
	if *configPath != "" {
		loaded, err := cadenza.LoadConfig(*configPath)
		if err != nil {
			slog.Error("cannot load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *bpm > 0 {
		cfg.BPM = *bpm
	}
	if *waveform != "" {
		cfg.Waveform = *waveform
	}

	song := demoScore()
	if *debug {
		slog.Debug("resolved configuration", "dump", spew.Sdump(cfg))
		slog.Debug("score", "dump", spew.Sdump(song))
	}

	if *wavPath != "" {
		if err := exportWAV(song, cfg, *sampleRate, *channels, *formatName, *wavPath); err != nil {
			slog.Error("WAV export failed", "err", err)
			os.Exit(1)
		}
		slog.Info("WAV written", "path", *wavPath)
		return
	}

	format, err := parseFormat(*formatName)
	if err != nil {
		slog.Error("bad flag", "err", err)
		os.Exit(1)
	}
	pl, err := cadenza.NewPlayer(*sampleRate,
		cadenza.WithConfig(cfg),
		cadenza.WithChannelCount(*channels),
		cadenza.WithFormat(format),
	)
	if err != nil {
		slog.Error("cannot create player", "err", err)
		os.Exit(1)
	}
	if err := pl.Play(song); err != nil {
		slog.Error("playback failed to start", "err", err)
		os.Exit(1)
	}
	slog.Info("playing", "tracks", len(song.Tracks), "bpm", cfg.BPM, "waveform", cfg.Waveform)
	pl.Wait()
	slog.Info("playback finished", "samples", pl.Position())
}

// initLogger configures the shared slog logger; --debug lowers the level.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

func parseFormat(name string) (cadenza.Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "f32", "float32":
		return cadenza.FormatFloat32LE, nil
	case "i16", "int16":
		return cadenza.FormatInt16LE, nil
	default:
		return 0, fmt.Errorf("invalid -format %q (expected f32|i16)", name)
	}
}

func exportWAV(song cadenza.Score, cfg cadenza.Config, sampleRate, channels int, formatName, path string) error {
	var format cadenza.SampleFormat
	switch strings.ToLower(strings.TrimSpace(formatName)) {
	case "f32", "float32":
		format = cadenza.SampleFormatFloat32
	case "i16", "int16":
		format = cadenza.SampleFormatInt16
	default:
		return fmt.Errorf("invalid -format %q for WAV export (expected f32|i16)", formatName)
	}
	data, err := cadenza.RenderWAV(song, cfg, sampleRate, channels, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
