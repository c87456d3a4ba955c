package core

import "context"

// InputSource yields one utterance per call. ok=false means "nothing usable
// this time" (silence, failed recognition) and the caller should ask the user
// to repeat; a non-nil error means the source is exhausted or broken and the
// loop should stop.
type InputSource interface {
	Read(ctx context.Context) (utterance string, ok bool, err error)
}

// OutputSink delivers one assistant reply to the user. Implementations never
// propagate failures: a sink that cannot emit logs and returns, so a broken
// speaker can't kill the conversation loop.
type OutputSink interface {
	Emit(ctx context.Context, text string)
}
