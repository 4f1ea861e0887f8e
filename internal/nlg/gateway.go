// Package nlg is the boundary to the natural-language-generation service.
//
// The service is treated as untrusted and slow: callers never talk to a
// Gateway directly but through a Guard, which bounds every call with a
// timeout and converts failures and malformed output into a caller-supplied
// fallback of the same shape.
package nlg

import (
	"context"
	"errors"
	"fmt"
)

// Gateway generates text for a prompt. Implementations may fail for any
// reason (timeout, transport, quota) and may return text that does not
// follow the prompt's instructions.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrorKind classifies a GatewayError.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindTransport   ErrorKind = "transport"
	KindEmpty       ErrorKind = "empty"
	KindMalformed   ErrorKind = "malformed"
	KindUnavailable ErrorKind = "unavailable"
	KindPanic       ErrorKind = "panic"
)

// ErrUnavailable is wrapped by the error returned from an unconfigured gateway.
var ErrUnavailable = errors.New("text generation is not configured")

// GatewayError is any failure calling the generation service or using its
// output. It is always recovered by the Guard and never reaches callers of
// the phase handlers.
type GatewayError struct {
	Kind ErrorKind
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("nlg: %s", e.Kind)
	}
	return fmt.Sprintf("nlg: %s: %v", e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// AsGatewayError reports whether err is (or wraps) a GatewayError.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// classify wraps err into a GatewayError, keeping an existing kind.
func classify(err error) *GatewayError {
	if ge, ok := AsGatewayError(err); ok {
		return ge
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &GatewayError{Kind: KindTimeout, Err: err}
	}
	return &GatewayError{Kind: KindTransport, Err: err}
}

// Unavailable is the Gateway used when no generation backend is configured.
// Every call fails immediately, so every caller serves its fallback.
type Unavailable struct{}

// Generate always fails with KindUnavailable.
func (Unavailable) Generate(context.Context, string) (string, error) {
	return "", &GatewayError{Kind: KindUnavailable, Err: ErrUnavailable}
}

// New returns a Gemini-backed Gateway when apiKey is set, and Unavailable
// otherwise.
func New(ctx context.Context, apiKey, model string) (Gateway, error) {
	if apiKey == "" {
		return Unavailable{}, nil
	}
	return NewGemini(ctx, apiKey, WithModel(model))
}
