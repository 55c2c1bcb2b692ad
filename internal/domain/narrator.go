package domain

import "context"

// Narrator turns a composed prompt into free-text report prose. It is an
// opaque text-generation service; the summarizer never calls it directly.
type Narrator interface {
	Narrate(ctx context.Context, prompt string) (string, error)
}
