// Package mock provides a test double for [inject.Injector].
package mock

import (
	"context"
	"sync"

	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/inject"
)

// Replacement records one Replace call.
type Replacement struct {
	Original  string
	Corrected string
}

// Injector is a configurable mock. Safe for concurrent use.
type Injector struct {
	// Err, when non-nil, is returned from every Replace call.
	Err error

	// Decline, when true, makes Replace report false with a nil error.
	Decline bool

	mu    sync.Mutex
	calls []Replacement
}

var _ inject.Injector = (*Injector)(nil)

// Replace implements [inject.Injector].
func (m *Injector) Replace(_ context.Context, original, corrected string) (bool, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Replacement{Original: original, Corrected: corrected})
	m.mu.Unlock()

	if m.Err != nil {
		return false, m.Err
	}
	return !m.Decline, nil
}

// Calls returns a snapshot of all replacements requested so far.
func (m *Injector) Calls() []Replacement {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Replacement, len(m.calls))
	copy(out, m.calls)
	return out
}
