// Package mock provides a test double for [suggest.Suggester].
package mock

import (
	"context"
	"sync"

	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/suggest"
)

// Suggester is a configurable mock. Set Response and Err before use; Calls
// records every request received. Safe for concurrent use.
type Suggester struct {
	// Response is returned from every Suggest call.
	Response string

	// Err, when non-nil, is returned instead of Response.
	Err error

	mu    sync.Mutex
	calls []suggest.Request
}

var _ suggest.Suggester = (*Suggester)(nil)

// Suggest implements [suggest.Suggester].
func (m *Suggester) Suggest(ctx context.Context, req suggest.Request) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Calls returns a snapshot of all requests received so far.
func (m *Suggester) Calls() []suggest.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]suggest.Request, len(m.calls))
	copy(out, m.calls)
	return out
}
