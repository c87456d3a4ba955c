package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"vozkit/core"
)

// Config holds the configuration for an OpenAI-compatible chat-completions
// service. A custom BaseURL points it at any compatible provider, including
// a local Ollama server.
type Config struct {
	APIKey         string  `json:"api_key"`
	BaseURL        string  `json:"base_url"`
	Model          string  `json:"model"`
	MaxTokens      int     `json:"max_tokens"`
	Temperature    float32 `json:"temperature"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// OpenAILLMService implements core.GenerationService against the
// chat-completions protocol. One blocking, non-streaming call per prompt;
// no internal retries.
type OpenAILLMService struct {
	config Config
	logger *core.Logger

	client        *openai.Client
	mu            sync.RWMutex
	isInitialized bool
}

const (
	defaultTimeoutSeconds = 60
	// initPingTimeout bounds the reachability ping so a hung backend cannot
	// stall startup.
	initPingTimeout = 5 * time.Second
)

// NewOpenAILLMService creates a new instance of OpenAILLMService
func NewOpenAILLMService(config Config, logger *core.Logger) *OpenAILLMService {
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = defaultTimeoutSeconds
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &OpenAILLMService{config: config, logger: logger}
}

// Init builds the API client and pings the backend. An unreachable backend
// is logged but not fatal: the process stays up and every Generate call
// surfaces its own failure.
func (s *OpenAILLMService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Model == "" {
		return errors.New("llm: model is required")
	}

	clientConfig := openai.DefaultConfig(s.config.APIKey)
	if s.config.BaseURL != "" {
		clientConfig.BaseURL = s.config.BaseURL
	}
	s.client = openai.NewClientWithConfig(clientConfig)

	pingCtx, cancel := context.WithTimeout(ctx, initPingTimeout)
	defer cancel()
	if _, err := s.client.ListModels(pingCtx); err != nil {
		s.logger.With(map[string]any{"base_url": clientConfig.BaseURL, "error": err}).
			Warn("generation backend is not reachable yet")
	}

	s.isInitialized = true
	return nil
}

func (s *OpenAILLMService) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	s.isInitialized = false
	return nil
}

// Generate sends the opaque prompt as a single user message and returns the
// completion text. Failures come back as *core.GenerationError.
func (s *OpenAILLMService) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.RLock()
	client := s.client
	initialized := s.isInitialized
	s.mu.RUnlock()

	if !initialized || client == nil {
		return "", core.NewGenerationError(core.GenerationUnreachable, errors.New("llm service not initialized"))
	}

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.TimeoutSeconds)*time.Second)
	defer cancel()

	resp, err := client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       s.config.Model,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		kind := core.GenerationUnreachable
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			kind = core.GenerationTimeout
		}
		return "", core.NewGenerationError(kind, fmt.Errorf("chat completion: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", core.NewGenerationError(core.GenerationEmptyReply, errors.New("backend returned no choices"))
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", core.NewGenerationError(core.GenerationEmptyReply, errors.New("backend returned an empty completion"))
	}
	return reply, nil
}
