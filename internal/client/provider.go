package client

import (
	"context"
	"fmt"
)

// TextProvider is the uniform adapter over one external text-generation
// provider. Complete returns freeform text; CompleteJSON additionally
// requires the response to parse into out, applying the tolerant decode
// fallbacks before reporting failure.
//
// Failures are reported, never fatal: callers decide how to degrade.
type TextProvider interface {
	Name() string
	IsConfigured() bool
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteJSON(ctx context.Context, system, user string, out interface{}) error
}

// ProviderError is a failed call to an external provider: timeout, non-2xx,
// or a response that did not parse into the required shape.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
}
