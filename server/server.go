// Package server exposes the interactive session surface: one WebSocket
// connection per conversation, each with its own engine and transcript.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"vozkit/conversation"
	"vozkit/core"
	"vozkit/runner"
)

type Config struct {
	Addr                 string `json:"addr,omitempty"`
	DefaultRecordSeconds int    `json:"default_record_seconds,omitempty"`
	MaxRecordSeconds     int    `json:"max_record_seconds,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Addr:                 ":8787",
		DefaultRecordSeconds: 5,
		MaxRecordSeconds:     30,
	}
}

// Dependencies are the collaborators shared by all sessions. Recorder and
// Recognizer are optional: without them the session is text-only. Speech,
// when set, also speaks every reply on the host.
type Dependencies struct {
	NewEngine  func(logger *core.Logger) (*conversation.Engine, error)
	Recorder   runner.Recorder
	Recognizer core.Recognizer
	Speech     core.OutputSink
}

type Server struct {
	config   Config
	deps     Dependencies
	logger   *core.Logger
	upgrader websocket.Upgrader
}

func New(config Config, deps Dependencies, logger *core.Logger) *Server {
	if config.Addr == "" {
		config.Addr = DefaultConfig().Addr
	}
	if config.DefaultRecordSeconds <= 0 {
		config.DefaultRecordSeconds = DefaultConfig().DefaultRecordSeconds
	}
	if config.MaxRecordSeconds <= 0 {
		config.MaxRecordSeconds = DefaultConfig().MaxRecordSeconds
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Server{
		config: config,
		deps:   deps,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	httpServer := &http.Server{Addr: s.config.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.With(map[string]any{"addr": s.config.Addr}).Info("session server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.With(map[string]any{"error": err}).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sessionID := uuid.New().String()
	sessionLogger := s.logger.With(map[string]any{"session_id": sessionID})

	engine, err := s.deps.NewEngine(sessionLogger)
	if err != nil {
		sessionLogger.With(map[string]any{"error": err}).Error("could not build session engine")
		return
	}

	sess := newSession(sessionID, engine, s.deps, s.config, sessionLogger)
	sess.run(r.Context(), conn)
	sessionLogger.Info("session closed")
}
