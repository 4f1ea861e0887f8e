// Package mock provides test doubles for the nlg package using function fields.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/pkordes/wayfarer/internal/nlg"
)

// Interface compliance check.
var _ nlg.Gateway = (*Gateway)(nil)

// Gateway is a test double for nlg.Gateway.
// Set GenerateFn before calling Generate. Prompts are recorded in call order.
type Gateway struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

// Generate records prompt and delegates to GenerateFn.
func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.GenerateFn(ctx, prompt)
}

// Prompts returns a copy of every prompt received so far.
func (g *Gateway) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

// Failing returns a Gateway whose every call fails with err.
func Failing(err error) *Gateway {
	return &Gateway{GenerateFn: func(context.Context, string) (string, error) {
		return "", err
	}}
}

// Replying returns a Gateway that answers every prompt with text.
func Replying(text string) *Gateway {
	return &Gateway{GenerateFn: func(context.Context, string) (string, error) {
		return text, nil
	}}
}

// ByTask returns a Gateway that answers with replies[task] when the prompt
// carries the line "Task: <task>", and fails with err otherwise.
func ByTask(replies map[string]string, err error) *Gateway {
	return &Gateway{GenerateFn: func(_ context.Context, prompt string) (string, error) {
		for task, reply := range replies {
			if strings.Contains(prompt, "Task: "+task+"\n") {
				return reply, nil
			}
		}
		return "", err
	}}
}
