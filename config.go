package cadenza

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	intseq "github.com/cbegin/cadenza-go/internal/sequencer"
	intsynth "github.com/cbegin/cadenza-go/internal/synth"
)

// Config holds the tempo and tuning parameters for a render session.
// All fields have sensible defaults; a YAML config file may override any
// subset of them.
type Config struct {
	BPM                float64 `yaml:"bpm"`
	ReferenceFrequency float64 `yaml:"reference_frequency"` // Hz, frequency of pitch 0
	MasterVolume       float64 `yaml:"master_volume"`       // attenuation applied after mixing
	DecayPerSemitone   float64 `yaml:"decay_per_semitone"`  // per-pitch loudness compensation; 1 disables
	Waveform           string  `yaml:"waveform"`            // "sine" or "sawtooth"
}

func DefaultConfig() Config {
	return Config{
		BPM:                120,
		ReferenceFrequency: 440,
		MasterVolume:       0.1,
		DecayPerSemitone:   0.96,
		Waveform:           "sine",
	}
}

// LoadConfig reads a YAML config file. Fields absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) sequencerConfig() (intseq.Config, error) {
	gen, err := intsynth.GeneratorFor(c.Waveform)
	if err != nil {
		return intseq.Config{}, err
	}
	cfg := intseq.Config{
		BPM:                c.BPM,
		ReferenceFrequency: c.ReferenceFrequency,
		MasterVolume:       c.MasterVolume,
		DecayPerSemitone:   c.DecayPerSemitone,
		Generator:          gen,
	}
	if err := cfg.Validate(); err != nil {
		return intseq.Config{}, err
	}
	return cfg, nil
}
