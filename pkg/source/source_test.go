package source

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/types"
)

func TestReader_ReplaysRunes(t *testing.T) {
	t.Parallel()

	var got []rune
	src := NewReader(strings.NewReader("ab c"))
	err := src.Run(context.Background(), func(ev types.KeyEvent) {
		if ev.Kind != types.EventCharacter {
			t.Errorf("event kind = %v, want character", ev.Kind)
		}
		got = append(got, ev.Char)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(got) != "ab c" {
		t.Errorf("replayed %q, want %q", string(got), "ab c")
	}
}

func TestReader_EmptyInputReturnsNil(t *testing.T) {
	t.Parallel()

	src := NewReader(strings.NewReader(""))
	err := src.Run(context.Background(), func(types.KeyEvent) {
		t.Error("emit called for empty input")
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestReader_CancellationStopsReplay(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	src := NewReader(strings.NewReader(strings.Repeat("x", 1000)))
	src.Delay = time.Millisecond

	var n int
	err := src.Run(ctx, func(types.KeyEvent) {
		n++
		if n == 3 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if n > 4 {
		t.Errorf("emitted %d events after cancellation, want prompt stop", n)
	}
}

func TestEvents_ReplaysFixedSequence(t *testing.T) {
	t.Parallel()

	want := []types.KeyEvent{
		types.Character('h'),
		types.Character('i'),
		types.Backspace(),
		types.Separator(types.SeparatorNewline),
		types.Other(),
	}
	src := &Events{Events: want}

	var got []types.KeyEvent
	if err := src.Run(context.Background(), func(ev types.KeyEvent) {
		got = append(got, ev)
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("replayed %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEvents_CancelledContextStopsEarly(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &Events{Events: []types.KeyEvent{types.Character('x')}}
	err := src.Run(ctx, func(types.KeyEvent) {
		t.Error("emit called after cancellation")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}
