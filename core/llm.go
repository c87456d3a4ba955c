package core

import "context"

// GenerationService is the synchronous adapter to a text-generation backend.
// One opaque prompt string in, one completion string out. Implementations
// must not retry internally; every failure surfaces as a *GenerationError.
type GenerationService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type IService interface {
	Init(ctx context.Context) error
	Cleanup() error
}
