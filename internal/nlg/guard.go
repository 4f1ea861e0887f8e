package nlg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// OutcomeOK is reported to the Observer for calls whose output was used.
// Failed calls report the GatewayError kind instead.
const OutcomeOK = "ok"

// Observer receives one notification per guarded call.
type Observer interface {
	ObserveGeneration(purpose, outcome string, elapsed time.Duration)
}

// Guard wraps a Gateway so that no call can fail its caller: errors, panics,
// timeouts, empty text and undecodable JSON all yield the caller's fallback.
// No retries are performed.
type Guard struct {
	gateway  Gateway
	timeout  time.Duration
	logger   *slog.Logger
	observer Observer
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithTimeout bounds each call. Zero means no per-call deadline beyond the
// caller's context.
func WithTimeout(d time.Duration) GuardOption {
	return func(g *Guard) { g.timeout = d }
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) { g.logger = l }
}

// WithObserver sets the call observer (usually metrics).
func WithObserver(o Observer) GuardOption {
	return func(g *Guard) { g.observer = o }
}

// NewGuard returns a Guard around gw. A nil gw behaves like Unavailable.
func NewGuard(gw Gateway, opts ...GuardOption) *Guard {
	if gw == nil {
		gw = Unavailable{}
	}
	g := &Guard{gateway: gw, logger: slog.Default()}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Text asks for free text. It returns the trimmed output and false, or
// fallback and true when the call did not produce usable text.
func (g *Guard) Text(ctx context.Context, purpose, prompt, fallback string) (string, bool) {
	start := time.Now()
	text, err := g.generate(ctx, prompt)
	if err != nil {
		g.fail(ctx, purpose, start, err)
		return fallback, true
	}
	g.succeed(purpose, start)
	return text, false
}

// JSON asks for a JSON object and decodes it into T. accept, when non-nil,
// enforces the schema: a decoded value it rejects counts as malformed.
// On any failure fallback is returned with true.
func JSON[T any](ctx context.Context, g *Guard, purpose, prompt string, accept func(*T) bool, fallback T) (T, bool) {
	start := time.Now()
	text, err := g.generate(ctx, prompt)
	if err != nil {
		g.fail(ctx, purpose, start, err)
		return fallback, true
	}

	raw := ExtractJSON(text)
	if raw == "" {
		g.fail(ctx, purpose, start, &GatewayError{Kind: KindMalformed, Err: errors.New("no JSON object in output")})
		return fallback, true
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		g.fail(ctx, purpose, start, &GatewayError{Kind: KindMalformed, Err: err})
		return fallback, true
	}
	if accept != nil && !accept(&v) {
		g.fail(ctx, purpose, start, &GatewayError{Kind: KindMalformed, Err: errors.New("output failed schema check")})
		return fallback, true
	}

	g.succeed(purpose, start)
	return v, false
}

type generation struct {
	text string
	err  error
}

// generate runs one gateway call in its own goroutine so that a gateway
// ignoring ctx still cannot hold the caller past the deadline, and so that a
// panic inside the gateway is contained.
func (g *Guard) generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	done := make(chan generation, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- generation{err: &GatewayError{Kind: KindPanic, Err: fmt.Errorf("%v", r)}}
			}
		}()
		text, err := g.gateway.Generate(ctx, prompt)
		done <- generation{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", classify(res.err)
		}
		text := strings.TrimSpace(res.text)
		if text == "" {
			return "", &GatewayError{Kind: KindEmpty}
		}
		return text, nil
	case <-ctx.Done():
		return "", classify(ctx.Err())
	}
}

func (g *Guard) succeed(purpose string, start time.Time) {
	if g.observer != nil {
		g.observer.ObserveGeneration(purpose, OutcomeOK, time.Since(start))
	}
}

func (g *Guard) fail(ctx context.Context, purpose string, start time.Time, err error) {
	ge := classify(err)
	if g.observer != nil {
		g.observer.ObserveGeneration(purpose, string(ge.Kind), time.Since(start))
	}
	g.logger.WarnContext(ctx, "text generation fell back",
		"purpose", purpose,
		"kind", string(ge.Kind),
		"error", err,
	)
}
