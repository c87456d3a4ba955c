package stt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"vozkit/core"
	"vozkit/utils/audio"
)

// Config holds configuration for the Whisper transcription service. The
// default endpoint is the hosted OpenAI API; point BaseURL at a local
// whisper.cpp server for fully offline recognition.
type Config struct {
	APIKey         string `json:"api_key"`
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	Language       string `json:"language"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// WhisperSTTService implements core.Recognizer over the Whisper audio
// transcription protocol. Outcomes are value variants: "nothing heard" and
// "service down" are results, not errors.
type WhisperSTTService struct {
	config Config
	logger *core.Logger

	client        *openai.Client
	mu            sync.RWMutex
	isInitialized bool
}

func NewWhisperSTTService(config Config, logger *core.Logger) *WhisperSTTService {
	if config.Model == "" {
		config.Model = openai.Whisper1
	}
	if config.Language == "" {
		config.Language = "es"
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = 30
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &WhisperSTTService{config: config, logger: logger}
}

func (s *WhisperSTTService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clientConfig := openai.DefaultConfig(s.config.APIKey)
	if s.config.BaseURL != "" {
		clientConfig.BaseURL = s.config.BaseURL
	}
	s.client = openai.NewClientWithConfig(clientConfig)
	s.isInitialized = true
	return nil
}

func (s *WhisperSTTService) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	s.isInitialized = false
	return nil
}

// Transcribe wraps the clip as WAV and sends it for recognition.
func (s *WhisperSTTService) Transcribe(ctx context.Context, clip core.AudioClip) core.RecognitionResult {
	s.mu.RLock()
	client := s.client
	initialized := s.isInitialized
	s.mu.RUnlock()

	if !initialized || client == nil {
		return core.RecognitionResult{Status: core.ServiceUnavailable, Err: errServiceNotInitialized}
	}

	pcm, err := audio.ToPCM16(clip)
	if err != nil {
		return core.RecognitionResult{Status: core.ServiceUnavailable, Err: err}
	}
	if len(pcm.Data) == 0 {
		return core.RecognitionResult{Status: core.NoSpeechDetected}
	}
	wav, err := audio.PCMToWAV(pcm)
	if err != nil {
		return core.RecognitionResult{Status: core.ServiceUnavailable, Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.TimeoutSeconds)*time.Second)
	defer cancel()

	resp, err := client.CreateTranscription(callCtx, openai.AudioRequest{
		Model:    s.config.Model,
		Language: s.config.Language,
		FilePath: "utterance.wav",
		Reader:   bytes.NewReader(wav),
	})
	if err != nil {
		s.logger.With(map[string]any{"error": err}).Warn("transcription request failed")
		return core.RecognitionResult{Status: core.ServiceUnavailable, Err: err}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return core.RecognitionResult{Status: core.NoSpeechDetected}
	}
	return core.RecognitionResult{Status: core.Recognized, Text: text}
}

var errServiceNotInitialized = errors.New("stt service not initialized")
