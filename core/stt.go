package core

import "context"

// RecognitionStatus tells callers what a transcription attempt produced.
// "No speech" and "service down" are expected outcomes, not errors: callers
// branch on the value instead of catching anything.
type RecognitionStatus int

const (
	Recognized         RecognitionStatus = iota // Text holds the transcribed utterance.
	NoSpeechDetected                            // clip contained nothing usable
	ServiceUnavailable                          // recognizer could not be reached
)

// RecognitionResult is the value variant returned by a Recognizer.
type RecognitionResult struct {
	Status RecognitionStatus
	Text   string
	Err    error // set only for ServiceUnavailable, for logging
}

// Recognizer turns a captured audio clip into text in a configured locale.
type Recognizer interface {
	Transcribe(ctx context.Context, clip AudioClip) RecognitionResult
}
