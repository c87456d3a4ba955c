package conversation

import (
	"context"
	"strings"
	"sync"

	"vozkit/core"
)

// Engine is the single authoritative turn-processing routine. Every front
// end (console loop, voice loop, session server) drives the same Process
// contract against one engine instance: render transcript, build prompt,
// call the backend, and append the exchange only when generation succeeded.
type Engine struct {
	mu         sync.Mutex
	transcript *Transcript
	prompts    *PromptBuilder
	llm        core.GenerationService
	logger     *core.Logger
}

// Option customizes engine construction.
type Option func(*Engine)

// WithHistoryWindow limits the rendered transcript to the last n exchanges.
// The stored history stays complete; only prompt assembly is bounded.
func WithHistoryWindow(n int) Option {
	return func(e *Engine) {
		e.transcript = NewWindowedTranscript(n)
	}
}

// WithTemplate overrides the prompt template.
func WithTemplate(template string) Option {
	return func(e *Engine) {
		e.prompts = NewPromptBuilderWithTemplate(template)
	}
}

func NewEngine(llm core.GenerationService, logger *core.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = core.GetLogger()
	}
	e := &Engine{
		transcript: NewTranscript(),
		prompts:    NewPromptBuilder(),
		llm:        llm,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process runs one exchange. On any failure the transcript is left exactly
// as it was, so a later attempt never sees a half-recorded exchange. The
// engine mutex is held for the full call: two concurrent Process calls can
// never interleave their user/assistant turn pairs.
func (e *Engine) Process(ctx context.Context, utterance string) (string, error) {
	if strings.TrimSpace(utterance) == "" {
		return "", core.ErrEmptyUtterance
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	prompt := e.prompts.Build(e.transcript.Render(), utterance)

	reply, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		e.logger.With(map[string]any{"error": err}).Warn("generation failed, transcript unchanged")
		return "", err
	}

	e.transcript.AppendUser(utterance)
	e.transcript.AppendAssistant(reply)
	return reply, nil
}

// Transcript exposes the engine's history store (read-side only for callers).
func (e *Engine) Transcript() *Transcript {
	return e.transcript
}

// History returns a snapshot of all recorded turns.
func (e *Engine) History() []Turn {
	return e.transcript.Turns()
}
