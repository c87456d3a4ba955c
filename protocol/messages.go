package protocol

import (
	"encoding/json"

	"vozkit/conversation"
)

// MessageType enumerates all session protocol message types.
type MessageType string

const (
	// Client -> server
	MsgText    MessageType = "text"    // submit a typed utterance
	MsgRecord  MessageType = "record"  // trigger a timed microphone capture
	MsgAudio   MessageType = "audio"   // header for a binary audio frame
	MsgHistory MessageType = "history" // request the transcript snapshot

	// Server -> client
	MsgUser          MessageType = "user"   // the utterance the engine accepted
	MsgReply         MessageType = "reply"  // the assistant reply
	MsgStatus        MessageType = "status" // progress notices ("Grabando...")
	MsgError         MessageType = "error"
	MsgHistoryUpdate MessageType = "history" // transcript snapshot
)

// Envelope is the outer JSON wrapper for all WebSocket messages.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Client -> server payloads ---

type TextPayload struct {
	Text string `json:"text"`
}

type RecordPayload struct {
	// Seconds to record; clamped server-side.
	Seconds int `json:"seconds,omitempty"`
}

// AudioPayload announces one binary frame that follows on the socket.
type AudioPayload struct {
	// Encoding is "pcm16", "mulaw" or "alaw".
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels,omitempty"`
}

// --- Server -> client payloads ---

type UserPayload struct {
	Text string `json:"text"`
}

type ReplyPayload struct {
	Text string `json:"text"`
}

type StatusPayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type HistoryPayload struct {
	SessionID string              `json:"session_id"`
	Turns     []conversation.Turn `json:"turns"`
}

// Error codes carried in ErrorPayload.
const (
	CodeEmptyInput       = "empty_input"
	CodeNoSpeech         = "no_speech"
	CodeRecognitionDown  = "recognition_unavailable"
	CodeBadAudio         = "bad_audio"
	CodeBadMessage       = "bad_message"
	CodeRecordingFailed  = "recording_failed"
	CodeGenerationFailed = "generation_failed"
)
