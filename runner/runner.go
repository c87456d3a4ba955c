// Package runner drives a conversation loop over pluggable input sources and
// output sinks. The console and voice front ends are the same loop with
// different sources/sinks wired in.
package runner

import (
	"context"
	"errors"
	"io"
	"strings"

	"vozkit/conversation"
	"vozkit/core"
)

// LoopConfig carries the user-facing phrases and the exit keyword.
type LoopConfig struct {
	ExitWord     string `json:"exit_word,omitempty"`
	Greeting     string `json:"greeting,omitempty"`
	Farewell     string `json:"farewell,omitempty"`
	RepeatPrompt string `json:"repeat_prompt,omitempty"`
	Apology      string `json:"apology,omitempty"`
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		ExitWord:     "salir",
		Greeting:     "¡Hola! Soy tu asistente de IA. ¿En qué puedo ayudarte hoy?",
		Farewell:     "¡Hasta luego!",
		RepeatPrompt: "Lo siento, no he podido entenderte. ¿Podrías repetirlo?",
		Apology:      "Lo siento, ahora mismo no puedo responder. Inténtalo de nuevo.",
	}
}

// Loop reads utterances from one source, runs them through the shared
// engine, and emits replies through every sink.
type Loop struct {
	engine *conversation.Engine
	source core.InputSource
	sinks  []core.OutputSink
	config LoopConfig
	logger *core.Logger
}

func NewLoop(engine *conversation.Engine, source core.InputSource, sinks []core.OutputSink, config LoopConfig, logger *core.Logger) *Loop {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Loop{
		engine: engine,
		source: source,
		sinks:  sinks,
		config: config,
		logger: logger,
	}
}

// Run processes exchanges until the exit keyword is heard, the source is
// exhausted, or ctx is cancelled. Generation failures are reported to the
// user and the loop continues; only the exit keyword ends it deliberately.
func (l *Loop) Run(ctx context.Context) error {
	if l.config.Greeting != "" {
		l.emit(ctx, l.config.Greeting)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		utterance, ok, err := l.source.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if !ok {
			l.emit(ctx, l.config.RepeatPrompt)
			continue
		}

		// Exit check comes before the engine: leaving costs no generation call.
		if ContainsExitWord(utterance, l.config.ExitWord) {
			l.emit(ctx, l.config.Farewell)
			return nil
		}

		reply, err := l.engine.Process(ctx, utterance)
		if err != nil {
			if errors.Is(err, core.ErrEmptyUtterance) {
				l.emit(ctx, l.config.RepeatPrompt)
				continue
			}
			l.logger.With(map[string]any{"error": err}).Error("exchange failed")
			l.emit(ctx, l.config.Apology)
			continue
		}
		l.emit(ctx, reply)
	}
}

func (l *Loop) emit(ctx context.Context, text string) {
	for _, sink := range l.sinks {
		sink.Emit(ctx, text)
	}
}

// ContainsExitWord reports whether the utterance contains the exit keyword,
// case-insensitive, anywhere in the text.
func ContainsExitWord(utterance, word string) bool {
	if word == "" {
		return false
	}
	return strings.Contains(strings.ToLower(utterance), strings.ToLower(word))
}
