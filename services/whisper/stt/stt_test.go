package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"vozkit/core"
)

func testClip() core.AudioClip {
	return core.AudioClip{Data: []byte{1, 0, 2, 0, 3, 0}, SampleRate: 16000, Channels: 1, Format: core.PCM}
}

func newTestService(t *testing.T, handler http.HandlerFunc) *WhisperSTTService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := NewWhisperSTTService(Config{BaseURL: srv.URL + "/v1", APIKey: "key"}, nil)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s
}

func TestTranscribe_Recognized(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" hola mundo "}`))
	})
	res := s.Transcribe(context.Background(), testClip())
	if res.Status != core.Recognized {
		t.Fatalf("status = %d, err = %v", res.Status, res.Err)
	}
	if res.Text != "hola mundo" {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestTranscribe_EmptyTextMeansNoSpeech(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"   "}`))
	})
	res := s.Transcribe(context.Background(), testClip())
	if res.Status != core.NoSpeechDetected {
		t.Fatalf("status = %d, want NoSpeechDetected", res.Status)
	}
}

func TestTranscribe_BackendErrorMeansUnavailable(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	})
	res := s.Transcribe(context.Background(), testClip())
	if res.Status != core.ServiceUnavailable || res.Err == nil {
		t.Fatalf("status = %d err = %v, want ServiceUnavailable with error", res.Status, res.Err)
	}
}

func TestTranscribe_EmptyClipMeansNoSpeech(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("recognizer must not be called for an empty clip")
	})
	res := s.Transcribe(context.Background(), core.AudioClip{SampleRate: 16000, Channels: 1})
	if res.Status != core.NoSpeechDetected {
		t.Fatalf("status = %d, want NoSpeechDetected", res.Status)
	}
}

func TestTranscribe_NotInitialized(t *testing.T) {
	s := NewWhisperSTTService(Config{}, nil)
	res := s.Transcribe(context.Background(), testClip())
	if res.Status != core.ServiceUnavailable {
		t.Fatalf("status = %d, want ServiceUnavailable", res.Status)
	}
}
