package factories

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"

	"vozkit/conversation"
	"vozkit/core"
	"vozkit/runner"
	espeaktts "vozkit/services/espeak/tts"
	openaillm "vozkit/services/openai/llm"
	whisperstt "vozkit/services/whisper/stt"
)

// SessionConfig is the top-level configuration for one assistant session:
// which generation backend answers, the optional speech services around it,
// and the conversational loop texture (greeting, exit word, and so on).
type SessionConfig struct {
	// LLM selects and configures the generation backend.
	// Set exactly one provider field inside LLMFactoryConfig.
	LLM LLMFactoryConfig `json:"llm"`
	// STT, when set, enables voice input via the configured recognizer.
	STT *STTFactoryConfig `json:"stt,omitempty"`
	// TTS, when set, enables spoken replies via the configured synthesizer.
	TTS *TTSFactoryConfig `json:"tts,omitempty"`
	// PromptTemplate overrides the prompt layout sent to the backend.
	// Must contain the {historial} and {pregunta} placeholders.
	PromptTemplate string `json:"prompt_template,omitempty"`
	// HistoryWindow, when positive, limits the rendered history to the last
	// N exchanges. Zero keeps the full history in every prompt.
	HistoryWindow int `json:"history_window,omitempty"`
	// Loop configures the interaction texture: greeting, exit word,
	// farewell, and the canned recovery lines.
	Loop runner.LoopConfig `json:"loop"`
	// RecordSeconds is how long voice input listens per utterance.
	RecordSeconds int `json:"record_seconds,omitempty"`
	// SampleRate is the microphone capture rate in Hz.
	SampleRate int `json:"sample_rate,omitempty"`
}

// DefaultSessionConfig returns a SessionConfig that talks to a local Ollama
// instance and keeps every loop default. Speech services are off until their
// configs are set.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		LLM:           LLMFactoryConfig{OllamaConfig: &openaillm.Config{}},
		Loop:          runner.DefaultLoopConfig(),
		RecordSeconds: 5,
		SampleRate:    16000,
	}
}

// SessionConfigFromJSON parses a JSON blob into a SessionConfig, starting
// from DefaultSessionConfig so that fields absent from the JSON retain their
// defaults. When the JSON names a backend provider it replaces the default
// Ollama backend rather than sitting next to it. API keys should be injected
// after loading via InjectAPIKeys rather than stored in config files.
func SessionConfigFromJSON(data []byte) (SessionConfig, error) {
	cfg := DefaultSessionConfig()
	cfg.LLM = LLMFactoryConfig{}
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return SessionConfig{}, fmt.Errorf("session config: %w", err)
	}
	if !cfg.LLM.hasProvider() {
		cfg.LLM.OllamaConfig = &openaillm.Config{}
	}
	return cfg, nil
}

// APIKeys holds API credentials for all supported service providers.
// Pass to SessionConfig.InjectAPIKeys after loading from JSON so that
// secrets are never stored in config files.
type APIKeys struct {
	OpenAI     string // Used for the OpenAI backend and Whisper recognition.
	Groq       string // Used for the Groq backend.
	Cerebras   string // Used for the Cerebras backend.
	Mistral    string // Used for the Mistral AI backend.
	OpenRouter string // Used for the OpenRouter backend.
}

// InjectAPIKeys applies API credentials to every configured provider that
// does not already carry a key.
func (c *SessionConfig) InjectAPIKeys(keys APIKeys) {
	if c.LLM.OpenAIConfig != nil && c.LLM.OpenAIConfig.APIKey == "" {
		c.LLM.OpenAIConfig.APIKey = keys.OpenAI
	}
	if c.LLM.GroqConfig != nil && c.LLM.GroqConfig.APIKey == "" {
		c.LLM.GroqConfig.APIKey = keys.Groq
	}
	if c.LLM.CerebrasConfig != nil && c.LLM.CerebrasConfig.APIKey == "" {
		c.LLM.CerebrasConfig.APIKey = keys.Cerebras
	}
	if c.LLM.MistralConfig != nil && c.LLM.MistralConfig.APIKey == "" {
		c.LLM.MistralConfig.APIKey = keys.Mistral
	}
	if c.LLM.OpenRouterConfig != nil && c.LLM.OpenRouterConfig.APIKey == "" {
		c.LLM.OpenRouterConfig.APIKey = keys.OpenRouter
	}
	if c.STT != nil && c.STT.WhisperConfig != nil && c.STT.WhisperConfig.APIKey == "" {
		c.STT.WhisperConfig.APIKey = keys.OpenAI
	}
}

// Session holds the constructed, initialised services for one configuration.
// The generation service is always present; the speech services are nil when
// their configs were not set. All sessions built from one Session share the
// same services but get their own transcript via NewEngine.
type Session struct {
	config SessionConfig

	LLM         *openaillm.OpenAILLMService
	Recognizer  *whisperstt.WhisperSTTService
	Synthesizer *espeaktts.ESpeakTTS
}

// BuildSession constructs and initialises every service the config names.
// Call Close when done to release them.
func (c SessionConfig) BuildSession(ctx context.Context, logger *core.Logger) (*Session, error) {
	llm, err := BuildLLMService(c.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if err := llm.Init(ctx); err != nil {
		return nil, fmt.Errorf("session: init llm: %w", err)
	}

	s := &Session{config: c, LLM: llm}

	if c.STT != nil {
		stt, err := BuildSTTService(*c.STT, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("session: %w", err)
		}
		if err := stt.Init(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("session: init stt: %w", err)
		}
		s.Recognizer = stt
	}

	if c.TTS != nil {
		tts, err := BuildTTSService(*c.TTS, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("session: %w", err)
		}
		if err := tts.Init(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("session: init tts: %w", err)
		}
		s.Synthesizer = tts
	}

	return s, nil
}

// NewEngine builds a fresh conversation engine on the shared generation
// service. Each engine keeps its own transcript.
func (s *Session) NewEngine(logger *core.Logger) (*conversation.Engine, error) {
	var opts []conversation.Option
	if s.config.HistoryWindow > 0 {
		opts = append(opts, conversation.WithHistoryWindow(s.config.HistoryWindow))
	}
	if s.config.PromptTemplate != "" {
		opts = append(opts, conversation.WithTemplate(s.config.PromptTemplate))
	}
	return conversation.NewEngine(s.LLM, logger, opts...), nil
}

// Close releases every initialised service. Safe to call on a partially
// built session.
func (s *Session) Close() error {
	var firstErr error
	if s.Synthesizer != nil {
		if err := s.Synthesizer.Cleanup(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.Recognizer != nil {
		if err := s.Recognizer.Cleanup(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.LLM != nil {
		if err := s.LLM.Cleanup(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
