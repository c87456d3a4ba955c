package runner

import (
	"context"
	"sync/atomic"
	"testing"

	"vozkit/conversation"
	"vozkit/core"
)

type scriptedSource struct {
	lines []string
	pos   int
}

func (s *scriptedSource) Read(ctx context.Context) (string, bool, error) {
	if s.pos >= len(s.lines) {
		return "", false, context.Canceled
	}
	line := s.lines[s.pos]
	s.pos++
	if line == "" {
		return "", false, nil
	}
	return line, true, nil
}

type captureSink struct {
	emitted []string
}

func (c *captureSink) Emit(_ context.Context, text string) {
	c.emitted = append(c.emitted, text)
}

type countingLLM struct {
	calls int32
	reply string
	err   error
}

func (c *countingLLM) Generate(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func TestContainsExitWord(t *testing.T) {
	cases := []struct {
		utterance string
		want      bool
	}{
		{"salir", true},
		{"SALIR", true},
		{"quiero Salir ya", true},
		{"me gustaría salirme de aquí", true}, // substring match, by contract
		{"sal ir", false},
		{"hola", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ContainsExitWord(tc.utterance, "salir"); got != tc.want {
			t.Fatalf("ContainsExitWord(%q) = %v, want %v", tc.utterance, got, tc.want)
		}
	}
	if ContainsExitWord("salir", "") {
		t.Fatalf("empty exit word must never match")
	}
}

func TestLoop_ExitSkipsGeneration(t *testing.T) {
	llm := &countingLLM{reply: "nunca"}
	eng := conversation.NewEngine(llm, nil)
	sink := &captureSink{}
	cfg := DefaultLoopConfig()

	loop := NewLoop(eng, &scriptedSource{lines: []string{"quiero SALIR"}}, []core.OutputSink{sink}, cfg, nil)
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if n := atomic.LoadInt32(&llm.calls); n != 0 {
		t.Fatalf("exit utterance reached the backend %d times", n)
	}
	last := sink.emitted[len(sink.emitted)-1]
	if last != cfg.Farewell {
		t.Fatalf("last emission = %q, want farewell", last)
	}
	if eng.Transcript().Len() != 0 {
		t.Fatalf("exit must not be recorded")
	}
}

func TestLoop_RepeatPromptOnNoInput(t *testing.T) {
	llm := &countingLLM{reply: "ok"}
	eng := conversation.NewEngine(llm, nil)
	sink := &captureSink{}
	cfg := DefaultLoopConfig()
	cfg.Greeting = ""

	loop := NewLoop(eng, &scriptedSource{lines: []string{"", "salir"}}, []core.OutputSink{sink}, cfg, nil)
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.emitted) != 2 || sink.emitted[0] != cfg.RepeatPrompt {
		t.Fatalf("expected repeat prompt then farewell, got %v", sink.emitted)
	}
}

func TestLoop_ApologyOnGenerationFailureThenContinues(t *testing.T) {
	llm := &countingLLM{err: core.NewGenerationError(core.GenerationUnreachable, nil)}
	eng := conversation.NewEngine(llm, nil)
	sink := &captureSink{}
	cfg := DefaultLoopConfig()
	cfg.Greeting = ""

	loop := NewLoop(eng, &scriptedSource{lines: []string{"hola", "salir"}}, []core.OutputSink{sink}, cfg, nil)
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sink.emitted[0] != cfg.Apology {
		t.Fatalf("expected apology first, got %v", sink.emitted)
	}
	if eng.Transcript().Render() != "" {
		t.Fatalf("failed exchange must leave no trace")
	}
}

func TestLoop_SuccessfulExchangeEmitsReplyToAllSinks(t *testing.T) {
	llm := &countingLLM{reply: "buenas"}
	eng := conversation.NewEngine(llm, nil)
	sink1, sink2 := &captureSink{}, &captureSink{}
	cfg := DefaultLoopConfig()
	cfg.Greeting = ""

	loop := NewLoop(eng, &scriptedSource{lines: []string{"hola", "salir"}}, []core.OutputSink{sink1, sink2}, cfg, nil)
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, sink := range []*captureSink{sink1, sink2} {
		if sink.emitted[0] != "buenas" {
			t.Fatalf("sink missed the reply: %v", sink.emitted)
		}
	}
	if got := eng.Transcript().Render(); got != "User:hola\nAssistant:buenas" {
		t.Fatalf("render = %q", got)
	}
}

func TestNormalizeForSpeech(t *testing.T) {
	cases := []struct{ in, want string }{
		{"**hola** mundo", "hola mundo"},
		{"líneas\ncon\nsaltos", "líneas con saltos"},
		{"con emoji 🤖 dentro", "con emoji dentro"},
		{"   ", ""},
		{"¿Qué tal?", "¿Qué tal?"},
	}
	for _, tc := range cases {
		if got := NormalizeForSpeech(tc.in); got != tc.want {
			t.Fatalf("NormalizeForSpeech(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
