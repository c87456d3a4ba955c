package tts

import (
	"context"
	"testing"
)

func TestInitWithPinnedVoice(t *testing.T) {
	// A pinned voice and an explicit binary path make Init run without
	// touching the engine at all.
	s := NewESpeakTTS(ESpeakTTSConfig{
		BinaryPath: "/usr/bin/espeak-ng",
		Voice:      "roa/es",
	}, nil)

	if got := s.Voice(); got != "" {
		t.Fatalf("voice before init = %q", got)
	}
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if got := s.Voice(); got != "roa/es" {
		t.Fatalf("voice = %q, want pinned roa/es", got)
	}
}

func TestSynthesizeRequiresInit(t *testing.T) {
	s := NewESpeakTTS(ESpeakTTSConfig{}, nil)
	if _, err := s.Synthesize(context.Background(), "hola"); err == nil {
		t.Fatal("expected error before init")
	}
}

func TestConfigDefaults(t *testing.T) {
	s := NewESpeakTTS(ESpeakTTSConfig{}, nil)
	if s.config.RateWPM != defaultRateWPM {
		t.Fatalf("rate = %d", s.config.RateWPM)
	}
	if s.config.Volume != defaultVolume {
		t.Fatalf("volume = %v", s.config.Volume)
	}
	if len(s.config.VoicePreferences) == 0 {
		t.Fatal("no default voice preferences")
	}
}
