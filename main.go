package main

import (
	"context"
	"encoding/base64"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vozkit/capture"
	"vozkit/core"
	"vozkit/factories"
	"vozkit/playback"
	"vozkit/runner"
	"vozkit/server"
)

func main() {
	var mode string
	flag.StringVar(&mode, "mode", "console", "interaction mode: console, voice, or serve")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(".env.local"); err != nil {
		core.GetLogger().With(map[string]any{"error": err}).Warn("No .env.local file found or failed to load")
	}

	settings, apiKeys := loadSettingsFromEnv()
	settings.Session.InjectAPIKeys(apiKeys)

	logger := core.GetLogger().With(map[string]any{"mode": mode})

	session, err := settings.Session.BuildSession(ctx, logger)
	if err != nil {
		logger.With(map[string]any{"error": err}).Fatal("failed to build session services")
	}
	defer session.Close()

	switch mode {
	case "console":
		err = runConsole(ctx, settings, session, logger)
	case "voice":
		err = runVoice(ctx, settings, session, logger)
	case "serve":
		err = runServe(ctx, settings, session, logger)
	default:
		logger.With(map[string]any{"mode": mode}).Fatal("unknown mode")
	}
	if err != nil {
		logger.With(map[string]any{"error": err}).Error("assistant stopped with error")
	}

	logger.Info("Shutting down...")
}

// runConsole reads typed utterances from stdin and prints replies.
func runConsole(ctx context.Context, settings factories.SettingsConfig, session *factories.Session, logger *core.Logger) error {
	engine, err := session.NewEngine(logger)
	if err != nil {
		return err
	}
	loop := runner.NewLoop(
		engine,
		runner.NewTextInput(os.Stdin, os.Stdout),
		[]core.OutputSink{runner.NewConsoleOutput(os.Stdout)},
		settings.Session.Loop,
		logger,
	)
	return loop.Run(ctx)
}

// runVoice records from the microphone, recognizes speech, and speaks the
// replies, printing them to the console as well.
func runVoice(ctx context.Context, settings factories.SettingsConfig, session *factories.Session, logger *core.Logger) error {
	if session.Recognizer == nil || session.Synthesizer == nil {
		logger.Fatal("voice mode requires stt and tts in settings.json")
	}

	engine, err := session.NewEngine(logger)
	if err != nil {
		return err
	}

	recorder := capture.NewMicRecorder(settings.Session.SampleRate, logger)
	source := runner.NewVoiceInput(recorder, session.Recognizer,
		time.Duration(settings.Session.RecordSeconds)*time.Second, logger)

	player := playback.NewPlayer(logger)

	loop := runner.NewLoop(
		engine,
		source,
		[]core.OutputSink{
			runner.NewConsoleOutput(os.Stdout),
			runner.NewSpeechOutput(session.Synthesizer, player, logger),
		},
		settings.Session.Loop,
		logger,
	)
	return loop.Run(ctx)
}

// runServe exposes the assistant over WebSocket. Voice input and spoken
// replies are available when the session has the corresponding services.
func runServe(ctx context.Context, settings factories.SettingsConfig, session *factories.Session, logger *core.Logger) error {
	config := server.DefaultConfig()
	if settings.Server != nil {
		if settings.Server.Addr != "" {
			config.Addr = settings.Server.Addr
		}
		if settings.Server.DefaultRecordSeconds > 0 {
			config.DefaultRecordSeconds = settings.Server.DefaultRecordSeconds
		}
		if settings.Server.MaxRecordSeconds > 0 {
			config.MaxRecordSeconds = settings.Server.MaxRecordSeconds
		}
	}

	deps := server.Dependencies{
		NewEngine: session.NewEngine,
	}
	if session.Recognizer != nil {
		deps.Recorder = capture.NewMicRecorder(settings.Session.SampleRate, logger)
		deps.Recognizer = session.Recognizer
	}
	if session.Synthesizer != nil {
		deps.Speech = runner.NewSpeechOutput(session.Synthesizer, playback.NewPlayer(logger), logger)
	}

	return server.New(config, deps, logger).ListenAndServe(ctx)
}

// loadSettingsFromEnv loads SettingsConfig from file or SETTINGS_JSON_B64 env var, and API keys from env vars.
func loadSettingsFromEnv() (factories.SettingsConfig, factories.APIKeys) {
	var settings factories.SettingsConfig
	var err error

	if b64 := os.Getenv("SETTINGS_JSON_B64"); b64 != "" {
		data, decErr := base64.StdEncoding.DecodeString(b64)
		if decErr != nil {
			core.GetLogger().With(map[string]any{"error": decErr}).Error("failed to decode SETTINGS_JSON_B64")
			settings = factories.DefaultSettingsConfig()
		} else {
			settings, err = factories.SettingsConfigFromJSON(data)
			if err != nil {
				core.GetLogger().With(map[string]any{"error": err}).Error("failed to parse SETTINGS_JSON_B64")
				settings = factories.DefaultSettingsConfig()
			} else {
				core.GetLogger().Info("loaded settings from SETTINGS_JSON_B64")
			}
		}
	} else {
		settingsPath := getEnv("SETTINGS_PATH", "./settings.json")
		settings, err = factories.SettingsConfigFromFile(settingsPath)
		if err != nil {
			core.GetLogger().With(map[string]any{"path": settingsPath, "error": err}).Warn("failed to load settings, using defaults")
			settings = factories.DefaultSettingsConfig()
		}
	}

	apiKeys := factories.APIKeys{
		OpenAI:     getEnv("OPENAI_API_KEY", ""),
		Groq:       getEnv("GROQ_API_KEY", ""),
		Cerebras:   getEnv("CEREBRAS_API_KEY", ""),
		Mistral:    getEnv("MISTRAL_API_KEY", ""),
		OpenRouter: getEnv("OPENROUTER_API_KEY", ""),
	}

	return settings, apiKeys
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
