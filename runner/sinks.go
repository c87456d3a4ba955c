package runner

import (
	"context"
	"fmt"
	"io"

	"vozkit/core"
)

// ConsoleOutput prints replies to a writer, one per line, with a label.
type ConsoleOutput struct {
	w     io.Writer
	label string
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	return &ConsoleOutput{w: w, label: "IA"}
}

func (c *ConsoleOutput) Emit(_ context.Context, text string) {
	fmt.Fprintf(c.w, "%s: %s\n", c.label, text)
}

// AudioPlayer plays one rendered clip. *playback.Player satisfies it.
type AudioPlayer interface {
	Play(ctx context.Context, clip core.AudioClip) error
}

// SpeechOutput synthesizes replies and plays them. It never propagates
// failures: empty text is a logged no-op and synthesis or playback errors
// only produce a log line, so the conversation loop keeps going.
type SpeechOutput struct {
	synth  core.Synthesizer
	player AudioPlayer
	logger *core.Logger
}

func NewSpeechOutput(synth core.Synthesizer, player AudioPlayer, logger *core.Logger) *SpeechOutput {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &SpeechOutput{synth: synth, player: player, logger: logger}
}

func (s *SpeechOutput) Emit(ctx context.Context, text string) {
	spoken := NormalizeForSpeech(text)
	if spoken == "" {
		s.logger.Warn("no text to speak")
		return
	}

	clip, err := s.synth.Synthesize(ctx, spoken)
	if err != nil {
		s.logger.With(map[string]any{"error": err}).Error("synthesis failed")
		return
	}
	if err := s.player.Play(ctx, clip); err != nil {
		s.logger.With(map[string]any{"error": err}).Error("playback failed")
	}
}
