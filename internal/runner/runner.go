package runner

import "context"

// ProcessHost runs one CLI invocation per call and returns its stdout. A
// result is only ever returned for a zero exit status.
type ProcessHost interface {
	Execute(ctx context.Context, prompt string, stdin string) (string, error)
	// IsAvailable reports whether the runtime and CLI entry exist on disk.
	IsAvailable() bool
}
