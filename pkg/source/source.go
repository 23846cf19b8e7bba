// Package source defines where key events come from.
//
// Real deployments plug in a platform capture backend; this package ships a
// [Reader] source that replays text from any io.Reader as character events,
// used by the demo binary and by end-to-end tests.
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/types"
)

// KeySource delivers key events sequentially until the stream ends or ctx is
// cancelled. emit is called on the source's goroutine, one event at a time.
type KeySource interface {
	Run(ctx context.Context, emit func(types.KeyEvent)) error
}

// Reader replays runes from an io.Reader as character key events. A newline
// is delivered as-is and acts as a word boundary downstream.
type Reader struct {
	r io.Reader

	// Delay, when positive, is slept between events to mimic typing cadence.
	Delay time.Duration
}

var _ KeySource = (*Reader)(nil)

// NewReader creates a replay source over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Run implements [KeySource]. It returns nil when the reader is exhausted.
func (s *Reader) Run(ctx context.Context, emit func(types.KeyEvent)) error {
	br := bufio.NewReader(s.r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, _, err := br.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("source: read: %w", err)
		}
		emit(types.Character(r))
		if s.Delay > 0 {
			select {
			case <-time.After(s.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Events replays a fixed slice of pre-built key events. Test helper for
// exercising explicit separator, backspace, and modifier events that plain
// text cannot express.
type Events struct {
	Events []types.KeyEvent
}

var _ KeySource = (*Events)(nil)

// Run implements [KeySource].
func (s *Events) Run(ctx context.Context, emit func(types.KeyEvent)) error {
	for _, ev := range s.Events {
		if err := ctx.Err(); err != nil {
			return err
		}
		emit(ev)
	}
	return nil
}
