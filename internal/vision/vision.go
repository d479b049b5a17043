// Package vision defines the contract between the request handler and the
// hosted vision models, plus the prompt and reply handling every provider
// shares.
package vision

import (
	"context"

	"slate-api/internal/shared"
)

// Payload is an image as it goes upstream: already validated and shrunk.
type Payload struct {
	Data []byte
	MIME string
}

// Engine is one hosted vision provider. Analyze makes exactly one upstream
// call per invocation; no engine retries on its own.
type Engine interface {
	Name() string
	Model() string
	Analyze(ctx context.Context, img Payload, vars map[string]string) ([]shared.ExpressionResult, error)
}
