package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vozkit/conversation"
	"vozkit/core"
	"vozkit/protocol"
	audioutil "vozkit/utils/audio"
)

// session is one conversation: its own engine, its own transcript, one
// client connection. All inbound messages are handled sequentially on the
// connection's read loop, so the session itself needs no locking beyond the
// write mutex.
type session struct {
	id     string
	engine *conversation.Engine
	deps   Dependencies
	config Config
	logger *core.Logger

	emit func(protocol.MessageType, any)

	// pendingAudio is the header of an announced binary frame, consumed by
	// the next binary message.
	pendingAudio *protocol.AudioPayload
}

func newSession(id string, engine *conversation.Engine, deps Dependencies, config Config, logger *core.Logger) *session {
	return &session{
		id:     id,
		engine: engine,
		deps:   deps,
		config: config,
		logger: logger,
	}
}

func (s *session) run(ctx context.Context, conn *websocket.Conn) {
	var writeMu sync.Mutex
	s.emit = func(msgType protocol.MessageType, payload any) {
		data, err := protocol.Marshal(msgType, payload)
		if err != nil {
			s.logger.With(map[string]any{"error": err, "type": msgType}).Error("could not encode message")
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.With(map[string]any{"error": err}).Warn("write failed")
		}
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		switch msgType {
		case websocket.TextMessage:
			s.handleMessage(ctx, data)
		case websocket.BinaryMessage:
			s.handleBinary(ctx, data)
		}
	}
}

func (s *session) handleMessage(ctx context.Context, data []byte) {
	env, err := protocol.Unmarshal(data)
	if err != nil {
		s.sendError(protocol.CodeBadMessage, "mensaje no reconocido")
		return
	}

	switch env.Type {
	case protocol.MsgText:
		payload, err := protocol.UnmarshalPayload[protocol.TextPayload](env)
		if err != nil {
			s.sendError(protocol.CodeBadMessage, "mensaje no reconocido")
			return
		}
		s.processUtterance(ctx, payload.Text)

	case protocol.MsgRecord:
		payload, err := protocol.UnmarshalPayload[protocol.RecordPayload](env)
		if err != nil {
			s.sendError(protocol.CodeBadMessage, "mensaje no reconocido")
			return
		}
		s.handleRecord(ctx, payload.Seconds)

	case protocol.MsgAudio:
		payload, err := protocol.UnmarshalPayload[protocol.AudioPayload](env)
		if err != nil {
			s.sendError(protocol.CodeBadMessage, "cabecera de audio no válida")
			return
		}
		s.pendingAudio = &payload

	case protocol.MsgHistory:
		s.emit(protocol.MsgHistoryUpdate, protocol.HistoryPayload{
			SessionID: s.id,
			Turns:     s.engine.History(),
		})

	default:
		s.sendError(protocol.CodeBadMessage, fmt.Sprintf("tipo de mensaje desconocido: %s", env.Type))
	}
}

func (s *session) handleRecord(ctx context.Context, seconds int) {
	if s.deps.Recorder == nil || s.deps.Recognizer == nil {
		s.sendError(protocol.CodeRecognitionDown, "esta sesión no admite entrada de voz")
		return
	}

	if seconds <= 0 {
		seconds = s.config.DefaultRecordSeconds
	}
	if seconds > s.config.MaxRecordSeconds {
		seconds = s.config.MaxRecordSeconds
	}

	s.emit(protocol.MsgStatus, protocol.StatusPayload{
		Message: fmt.Sprintf("Grabando %d segundos... Habla ahora", seconds),
	})

	clip, err := s.deps.Recorder.Record(ctx, time.Duration(seconds)*time.Second)
	if err != nil {
		s.logger.With(map[string]any{"error": err}).Warn("recording failed")
		s.sendError(protocol.CodeRecordingFailed, "no se pudo grabar el audio")
		return
	}

	s.dispatchRecognition(ctx, s.deps.Recognizer.Transcribe(ctx, clip))
}

func (s *session) handleBinary(ctx context.Context, data []byte) {
	header := s.pendingAudio
	s.pendingAudio = nil
	if header == nil {
		s.sendError(protocol.CodeBadMessage, "trama binaria sin cabecera de audio")
		return
	}
	if s.deps.Recognizer == nil {
		s.sendError(protocol.CodeRecognitionDown, "esta sesión no admite entrada de voz")
		return
	}

	clip, err := clipFromHeader(*header, data)
	if err != nil {
		s.sendError(protocol.CodeBadAudio, err.Error())
		return
	}

	s.dispatchRecognition(ctx, s.deps.Recognizer.Transcribe(ctx, clip))
}

func (s *session) dispatchRecognition(ctx context.Context, result core.RecognitionResult) {
	switch result.Status {
	case core.Recognized:
		s.processUtterance(ctx, result.Text)
	case core.NoSpeechDetected:
		s.sendError(protocol.CodeNoSpeech, "No se pudo reconocer el audio")
	default:
		s.logger.With(map[string]any{"error": result.Err}).Warn("recognition service unavailable")
		s.sendError(protocol.CodeRecognitionDown, "el reconocimiento de voz no está disponible")
	}
}

func (s *session) processUtterance(ctx context.Context, text string) {
	reply, err := s.engine.Process(ctx, text)
	if err != nil {
		if errors.Is(err, core.ErrEmptyUtterance) {
			s.sendError(protocol.CodeEmptyInput, "escribe o di algo primero")
			return
		}
		s.logger.With(map[string]any{"error": err}).Error("exchange failed")
		s.sendError(protocol.CodeGenerationFailed, "Lo siento, ahora mismo no puedo responder. Inténtalo de nuevo.")
		return
	}

	s.emit(protocol.MsgUser, protocol.UserPayload{Text: strings.TrimSpace(text)})
	s.emit(protocol.MsgReply, protocol.ReplyPayload{Text: reply})

	if s.deps.Speech != nil {
		s.deps.Speech.Emit(ctx, reply)
	}
}

func (s *session) sendError(code, message string) {
	s.emit(protocol.MsgError, protocol.ErrorPayload{Code: code, Message: message})
}

// clipFromHeader turns an announced binary frame into a PCM clip, decoding
// telephony encodings when the client sent them.
func clipFromHeader(header protocol.AudioPayload, data []byte) (core.AudioClip, error) {
	var format core.AudioEncodingFormat
	switch strings.ToLower(header.Encoding) {
	case "pcm16", "pcm", "":
		format = core.PCM
	case "mulaw", "ulaw":
		format = core.ULAW
	case "alaw":
		format = core.ALAW
	default:
		return core.AudioClip{}, fmt.Errorf("codificación de audio no admitida: %s", header.Encoding)
	}

	channels := header.Channels
	if channels == 0 {
		channels = 1
	}
	clip := core.AudioClip{
		Data:       data,
		SampleRate: header.SampleRate,
		Channels:   channels,
		Format:     format,
	}
	if clip.SampleRate <= 0 {
		return core.AudioClip{}, errors.New("cabecera de audio sin frecuencia de muestreo")
	}
	return audioutil.ToPCM16(clip)
}
