// Package clip provides a unified interface to the system clipboard.
//
//	native.go   — golang.design/x/clipboard (cgo; X11, macOS, Windows)
//	command.go  — github.com/atotto/clipboard (wl-copy, xclip, xsel, pbcopy, ...)
//	headless.go — no clipboard; every call fails with ErrUnavailable
//
// Only text is handled. Every call takes a context; the underlying primitives
// do not, so they run in a goroutine and a cancelled context abandons them.
package clip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrUnavailable = errors.New("clipboard unavailable")

// Kind selects a backend.
type Kind string

const (
	KindAuto     Kind = "auto"
	KindNative   Kind = "native"
	KindCommand  Kind = "command"
	KindHeadless Kind = "headless"
)

// Backend is the interface all clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the current clipboard text. An empty clipboard is
	// "", nil.
	ReadText(ctx context.Context) (string, error)

	// WriteText replaces the clipboard contents with text.
	WriteText(ctx context.Context, text string) error

	// Watch returns a channel that receives the clipboard text every time it
	// changes. The channel is closed when ctx is done.
	Watch(ctx context.Context) <-chan string
}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", KindAuto:
		return KindAuto, nil
	case KindNative, KindCommand, KindHeadless:
		return k, nil
	default:
		return "", fmt.Errorf("unknown clipboard backend %q (want auto|native|command|headless)", s)
	}
}

// New returns the backend for kind. KindAuto tries native, then command, and
// finally settles for headless so the caller always gets a usable Backend.
func New(kind Kind) (Backend, error) {
	switch kind {
	case KindNative:
		return newNative()
	case KindCommand:
		return newCommand()
	case KindHeadless:
		return Headless(), nil
	case KindAuto, "":
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q", kind)
	}

	b, err := newNative()
	if err == nil {
		return b, nil
	}
	slog.Debug("native clipboard unavailable", "err", err)

	b, err = newCommand()
	if err == nil {
		return b, nil
	}
	slog.Warn("clipboard unavailable, running headless", "err", err)
	return Headless(), nil
}

// call runs fn and waits for it or for ctx, whichever finishes first.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("clipboard: %w", ctx.Err())
	case r := <-done:
		return r.v, r.err
	}
}
