package server

import (
	"context"
	"testing"
	"time"

	"vozkit/conversation"
	"vozkit/core"
	"vozkit/protocol"
)

type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeRecognizer struct {
	result core.RecognitionResult
	clips  []core.AudioClip
}

func (f *fakeRecognizer) Transcribe(ctx context.Context, clip core.AudioClip) core.RecognitionResult {
	f.clips = append(f.clips, clip)
	return f.result
}

type fakeRecorder struct {
	clip core.AudioClip
	err  error
}

func (f *fakeRecorder) Record(ctx context.Context, d time.Duration) (core.AudioClip, error) {
	return f.clip, f.err
}

type emitted struct {
	msgType protocol.MessageType
	payload any
}

func newTestSession(t *testing.T, llm *fakeLLM, deps Dependencies) (*session, *[]emitted) {
	t.Helper()
	engine := conversation.NewEngine(llm, nil)
	sess := newSession("session-1", engine, deps, DefaultConfig(), core.GetLogger())
	var out []emitted
	sess.emit = func(msgType protocol.MessageType, payload any) {
		out = append(out, emitted{msgType: msgType, payload: payload})
	}
	return sess, &out
}

func mustEnvelope(t *testing.T, msgType protocol.MessageType, payload any) []byte {
	t.Helper()
	data, err := protocol.Marshal(msgType, payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestSession_TextExchange(t *testing.T) {
	llm := &fakeLLM{reply: "No tengo reloj."}
	sess, out := newTestSession(t, llm, Dependencies{})

	sess.handleMessage(context.Background(), mustEnvelope(t, protocol.MsgText, protocol.TextPayload{Text: "¿Qué hora es?"}))

	if len(*out) != 2 {
		t.Fatalf("expected user+reply, got %v", *out)
	}
	if (*out)[0].msgType != protocol.MsgUser || (*out)[1].msgType != protocol.MsgReply {
		t.Fatalf("wrong message order: %v", *out)
	}
	if got := (*out)[1].payload.(protocol.ReplyPayload).Text; got != "No tengo reloj." {
		t.Fatalf("reply = %q", got)
	}
	if got := sess.engine.Transcript().Render(); got != "User:¿Qué hora es?\nAssistant:No tengo reloj." {
		t.Fatalf("render = %q", got)
	}
}

func TestSession_EmptyTextRejected(t *testing.T) {
	llm := &fakeLLM{reply: "nunca"}
	sess, out := newTestSession(t, llm, Dependencies{})

	sess.handleMessage(context.Background(), mustEnvelope(t, protocol.MsgText, protocol.TextPayload{Text: "   "}))

	if llm.calls != 0 {
		t.Fatalf("backend called for empty input")
	}
	if len(*out) != 1 || (*out)[0].msgType != protocol.MsgError {
		t.Fatalf("expected one error, got %v", *out)
	}
	if code := (*out)[0].payload.(protocol.ErrorPayload).Code; code != protocol.CodeEmptyInput {
		t.Fatalf("code = %q", code)
	}
}

func TestSession_GenerationFailureLeavesHistoryUntouched(t *testing.T) {
	llm := &fakeLLM{err: core.NewGenerationError(core.GenerationTimeout, nil)}
	sess, out := newTestSession(t, llm, Dependencies{})

	sess.handleMessage(context.Background(), mustEnvelope(t, protocol.MsgText, protocol.TextPayload{Text: "Hola"}))

	if len(*out) != 1 || (*out)[0].msgType != protocol.MsgError {
		t.Fatalf("expected one error, got %v", *out)
	}
	if code := (*out)[0].payload.(protocol.ErrorPayload).Code; code != protocol.CodeGenerationFailed {
		t.Fatalf("code = %q", code)
	}
	if got := sess.engine.Transcript().Render(); got != "" {
		t.Fatalf("transcript mutated on failure: %q", got)
	}
}

func TestSession_HistorySnapshot(t *testing.T) {
	llm := &fakeLLM{reply: "buenas"}
	sess, out := newTestSession(t, llm, Dependencies{})

	sess.handleMessage(context.Background(), mustEnvelope(t, protocol.MsgText, protocol.TextPayload{Text: "hola"}))
	sess.handleMessage(context.Background(), mustEnvelope(t, protocol.MsgHistory, nil))

	last := (*out)[len(*out)-1]
	if last.msgType != protocol.MsgHistoryUpdate {
		t.Fatalf("expected history message, got %v", last.msgType)
	}
	history := last.payload.(protocol.HistoryPayload)
	if history.SessionID != "session-1" || len(history.Turns) != 2 {
		t.Fatalf("history = %+v", history)
	}
	if history.Turns[0].Speaker != conversation.SpeakerUser || history.Turns[1].Speaker != conversation.SpeakerAssistant {
		t.Fatalf("turns out of order: %+v", history.Turns)
	}
}

func TestSession_RecordFlow(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	rec := &fakeRecognizer{result: core.RecognitionResult{Status: core.Recognized, Text: "hola desde el micro"}}
	sess, out := newTestSession(t, llm, Dependencies{
		Recorder:   &fakeRecorder{clip: core.AudioClip{Data: []byte{1, 0}, SampleRate: 16000, Channels: 1}},
		Recognizer: rec,
	})

	sess.handleMessage(context.Background(), mustEnvelope(t, protocol.MsgRecord, protocol.RecordPayload{Seconds: 120}))

	if (*out)[0].msgType != protocol.MsgStatus {
		t.Fatalf("expected status first, got %v", (*out)[0].msgType)
	}
	if (*out)[len(*out)-1].msgType != protocol.MsgReply {
		t.Fatalf("expected reply last, got %v", *out)
	}
	if len(rec.clips) != 1 {
		t.Fatalf("recognizer called %d times", len(rec.clips))
	}
}

func TestSession_RecordWithoutVoiceSupport(t *testing.T) {
	sess, out := newTestSession(t, &fakeLLM{}, Dependencies{})
	sess.handleMessage(context.Background(), mustEnvelope(t, protocol.MsgRecord, protocol.RecordPayload{}))
	if len(*out) != 1 || (*out)[0].payload.(protocol.ErrorPayload).Code != protocol.CodeRecognitionDown {
		t.Fatalf("expected recognition_unavailable, got %v", *out)
	}
}

func TestSession_BinaryAudioNeedsHeader(t *testing.T) {
	sess, out := newTestSession(t, &fakeLLM{}, Dependencies{Recognizer: &fakeRecognizer{}})
	sess.handleBinary(context.Background(), []byte{1, 2, 3})
	if len(*out) != 1 || (*out)[0].payload.(protocol.ErrorPayload).Code != protocol.CodeBadMessage {
		t.Fatalf("expected bad_message, got %v", *out)
	}
}

func TestSession_BinaryAudioMulawDecoded(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	rec := &fakeRecognizer{result: core.RecognitionResult{Status: core.Recognized, Text: "hola"}}
	sess, _ := newTestSession(t, llm, Dependencies{Recognizer: rec})

	sess.handleMessage(context.Background(), mustEnvelope(t, protocol.MsgAudio, protocol.AudioPayload{
		Encoding:   "mulaw",
		SampleRate: 8000,
	}))
	sess.handleBinary(context.Background(), []byte{0x7F, 0xFF, 0x00, 0x80})

	if len(rec.clips) != 1 {
		t.Fatalf("recognizer called %d times", len(rec.clips))
	}
	clip := rec.clips[0]
	if clip.Format != core.PCM {
		t.Fatalf("clip not decoded to PCM")
	}
	if len(clip.Data) != 8 {
		t.Fatalf("expected 8 decoded bytes, got %d", len(clip.Data))
	}
	// Header is single-shot: a second frame without a new header fails.
	var errs int
	sess.emit = func(msgType protocol.MessageType, payload any) {
		if msgType == protocol.MsgError {
			errs++
		}
	}
	sess.handleBinary(context.Background(), []byte{1})
	if errs != 1 {
		t.Fatalf("expected error for headerless second frame")
	}
}

func TestSession_NoSpeechFromRecognizer(t *testing.T) {
	rec := &fakeRecognizer{result: core.RecognitionResult{Status: core.NoSpeechDetected}}
	sess, out := newTestSession(t, &fakeLLM{}, Dependencies{
		Recorder:   &fakeRecorder{clip: core.AudioClip{Data: []byte{1, 0}, SampleRate: 16000, Channels: 1}},
		Recognizer: rec,
	})
	sess.handleMessage(context.Background(), mustEnvelope(t, protocol.MsgRecord, nil))
	last := (*out)[len(*out)-1]
	if last.msgType != protocol.MsgError || last.payload.(protocol.ErrorPayload).Code != protocol.CodeNoSpeech {
		t.Fatalf("expected no_speech error, got %v", *out)
	}
}
