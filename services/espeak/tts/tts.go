package tts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"vozkit/core"
	"vozkit/utils/audio"
)

// ESpeakTTSConfig holds configuration for the espeak-ng based synthesizer.
type ESpeakTTSConfig struct {
	// BinaryPath overrides binary discovery (espeak-ng, then espeak).
	BinaryPath string `json:"binary_path,omitempty"`
	// Voice pins an exact engine voice id, skipping preference matching.
	Voice string `json:"voice,omitempty"`
	// VoicePreferences are ranked substrings matched against the engine's
	// voice table. Defaults to Spanish.
	VoicePreferences []string `json:"voice_preferences,omitempty"`
	// RateWPM is the speech rate in words per minute.
	RateWPM int `json:"rate_wpm,omitempty"`
	// Volume scales amplitude, 1.0 = nominal.
	Volume float64 `json:"volume,omitempty"`
}

// ESpeakTTS implements core.Synthesizer by shelling out to espeak-ng and
// capturing the WAV it writes to stdout. Rendering and playback are
// separate so callers can test synthesis without a sound device.
type ESpeakTTS struct {
	config ESpeakTTSConfig
	logger *core.Logger

	mu            sync.RWMutex
	binary        string
	voice         string
	isInitialized bool
}

const (
	defaultRateWPM = 170
	defaultVolume  = 1.0
	// espeak amplitude ranges 0..200, 100 is nominal.
	nominalAmplitude = 100
	maxAmplitude     = 200
)

func DefaultVoicePreferences() []string {
	return []string{"es-es", "spanish", "es"}
}

// NewESpeakTTS creates a new espeak-ng synthesizer with the provided config
func NewESpeakTTS(config ESpeakTTSConfig, logger *core.Logger) *ESpeakTTS {
	if config.RateWPM <= 0 {
		config.RateWPM = defaultRateWPM
	}
	if config.Volume <= 0 {
		config.Volume = defaultVolume
	}
	if len(config.VoicePreferences) == 0 {
		config.VoicePreferences = DefaultVoicePreferences()
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &ESpeakTTS{config: config, logger: logger}
}

// Init locates the engine binary and resolves the voice to use. A missing
// preferred voice falls back to the engine default with a warning.
func (s *ESpeakTTS) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	binary := s.config.BinaryPath
	if binary == "" {
		for _, name := range []string{"espeak-ng", "espeak"} {
			if path, err := exec.LookPath(name); err == nil {
				binary = path
				break
			}
		}
	}
	if binary == "" {
		return fmt.Errorf("tts: no espeak-ng or espeak binary found in PATH")
	}
	s.binary = binary

	if s.config.Voice != "" {
		s.voice = s.config.Voice
	} else if voices, err := s.listVoices(ctx); err == nil {
		if match, ok := core.SelectVoice(voices, s.config.VoicePreferences); ok {
			s.voice = match.ID
			s.logger.With(map[string]any{"voice": match.ID, "name": match.DisplayName}).Info("selected synthesis voice")
		} else {
			s.logger.With(map[string]any{"preferences": s.config.VoicePreferences}).
				Warn("no voice matched preferences, using engine default")
		}
	} else {
		s.logger.With(map[string]any{"error": err}).Warn("could not list voices, using engine default")
	}

	s.isInitialized = true
	return nil
}

func (s *ESpeakTTS) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isInitialized = false
	return nil
}

// Voice reports the resolved voice id ("" means engine default).
func (s *ESpeakTTS) Voice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voice
}

// Synthesize renders text to a PCM clip.
func (s *ESpeakTTS) Synthesize(ctx context.Context, text string) (core.AudioClip, error) {
	s.mu.RLock()
	binary, voice, initialized := s.binary, s.voice, s.isInitialized
	s.mu.RUnlock()

	if !initialized {
		return core.AudioClip{}, fmt.Errorf("tts: service not initialized")
	}

	amplitude := int(s.config.Volume * nominalAmplitude)
	if amplitude > maxAmplitude {
		amplitude = maxAmplitude
	}

	args := []string{
		"--stdout",
		"-s", strconv.Itoa(s.config.RateWPM),
		"-a", strconv.Itoa(amplitude),
	}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	args = append(args, "--", text)

	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return core.AudioClip{}, fmt.Errorf("tts: %s failed: %w (%s)", binary, err, bytes.TrimSpace(stderr.Bytes()))
	}

	clip, err := audio.WAVToPCM(stdout.Bytes())
	if err != nil {
		return core.AudioClip{}, fmt.Errorf("tts: bad engine output: %w", err)
	}
	return clip, nil
}

// listVoices asks the engine for its voice table, filtered to the
// preference languages when possible.
func (s *ESpeakTTS) listVoices(ctx context.Context) ([]core.VoiceDescriptor, error) {
	cmd := exec.CommandContext(ctx, s.binary, "--voices")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("tts: list voices: %w", err)
	}
	return ParseVoiceTable(string(out)), nil
}
