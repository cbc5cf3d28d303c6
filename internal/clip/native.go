package clip

import (
	"context"
	"fmt"

	"golang.design/x/clipboard"
)

type nativeBackend struct{}

// newNative initialises golang.design/x/clipboard. It fails without a
// display server or when built without cgo.
func newNative() (Backend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nativeBackend{}, nil
}

func (nativeBackend) Name() string { return "native (golang.design/x/clipboard)" }

func (nativeBackend) ReadText(ctx context.Context) (string, error) {
	return call(ctx, func() (string, error) {
		return string(clipboard.Read(clipboard.FmtText)), nil
	})
}

func (nativeBackend) WriteText(ctx context.Context, text string) error {
	_, err := call(ctx, func() (struct{}, error) {
		clipboard.Write(clipboard.FmtText, []byte(text))
		return struct{}{}, nil
	})
	return err
}

func (nativeBackend) Watch(ctx context.Context) <-chan string {
	out := make(chan string, 1)
	in := clipboard.Watch(ctx, clipboard.FmtText)
	go func() {
		defer close(out)
		for b := range in {
			select {
			case out <- string(b):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
