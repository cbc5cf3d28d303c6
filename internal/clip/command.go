package clip

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
)

const commandPollInterval = 250 * time.Millisecond

// commandBackend shells out to the platform clipboard tools. It works on
// Wayland and in cgo-free builds where the native backend cannot.
type commandBackend struct{}

func newCommand() (Backend, error) {
	if clipboard.Unsupported {
		return nil, fmt.Errorf("%w: no clipboard utility found (install wl-clipboard, xclip or xsel)", ErrUnavailable)
	}
	return commandBackend{}, nil
}

func (commandBackend) Name() string { return "command (atotto/clipboard)" }

func (commandBackend) ReadText(ctx context.Context) (string, error) {
	return call(ctx, clipboard.ReadAll)
}

func (commandBackend) WriteText(ctx context.Context, text string) error {
	_, err := call(ctx, func() (struct{}, error) {
		return struct{}{}, clipboard.WriteAll(text)
	})
	return err
}

// Watch polls; the clipboard tools have no change notification.
func (b commandBackend) Watch(ctx context.Context) <-chan string {
	out := make(chan string, 1)
	go func() {
		defer close(out)
		last, _ := clipboard.ReadAll()
		t := time.NewTicker(commandPollInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				text, err := clipboard.ReadAll()
				if err != nil || text == last {
					continue
				}
				last = text
				select {
				case out <- text:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
