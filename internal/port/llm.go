package port

import "context"

// LLM represents a language model for text generation.
type LLM interface {
	// Complete generates a full response for the user text under the
	// given system instructions.
	Complete(ctx context.Context, system, user string) (string, error)

	// Stream generates a response incrementally, calling emit once per
	// fragment in emission order. Stream waits for each emit to return
	// before consuming the next fragment; a non-nil emit error or a
	// cancelled context abandons the underlying model stream.
	Stream(ctx context.Context, system, user string, emit func(delta string) error) error

	// ModelName returns the name of the model.
	ModelName() string
}
