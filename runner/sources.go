package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"vozkit/core"
)

// TextInput reads one utterance per line. Input is trimmed and lower-cased
// so the exit keyword matches regardless of how it was typed.
type TextInput struct {
	scanner *bufio.Scanner
	echo    io.Writer
	prompt  string
}

func NewTextInput(r io.Reader, echo io.Writer) *TextInput {
	return &TextInput{
		scanner: bufio.NewScanner(r),
		echo:    echo,
		prompt:  "Tú: ",
	}
}

func (t *TextInput) Read(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if t.echo != nil && t.prompt != "" {
		fmt.Fprint(t.echo, t.prompt)
	}
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", false, err
		}
		return "", false, io.EOF
	}
	line := strings.ToLower(strings.TrimSpace(t.scanner.Text()))
	return line, line != "", nil
}

// Recorder captures a bounded audio clip. *capture.MicRecorder satisfies it.
type Recorder interface {
	Record(ctx context.Context, d time.Duration) (core.AudioClip, error)
}

// VoiceInput records a clip and transcribes it. Silence and recognition
// failures come back as "no input" so the loop treats them exactly like an
// unreadable typed line.
type VoiceInput struct {
	recorder     Recorder
	recognizer   core.Recognizer
	clipDuration time.Duration
	logger       *core.Logger
}

const DefaultClipDuration = 5 * time.Second

func NewVoiceInput(recorder Recorder, recognizer core.Recognizer, clipDuration time.Duration, logger *core.Logger) *VoiceInput {
	if clipDuration <= 0 {
		clipDuration = DefaultClipDuration
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &VoiceInput{
		recorder:     recorder,
		recognizer:   recognizer,
		clipDuration: clipDuration,
		logger:       logger,
	}
}

func (v *VoiceInput) Read(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	v.logger.Info("Escuchando...")
	clip, err := v.recorder.Record(ctx, v.clipDuration)
	if err != nil {
		v.logger.With(map[string]any{"error": err}).Warn("microphone capture failed")
		return "", false, nil
	}

	result := v.recognizer.Transcribe(ctx, clip)
	switch result.Status {
	case core.Recognized:
		text := strings.ToLower(strings.TrimSpace(result.Text))
		v.logger.With(map[string]any{"text": text}).Info("utterance recognized")
		return text, text != "", nil
	case core.NoSpeechDetected:
		v.logger.Info("no speech detected in clip")
		return "", false, nil
	default:
		v.logger.With(map[string]any{"error": result.Err}).Warn("recognition service unavailable")
		return "", false, nil
	}
}
