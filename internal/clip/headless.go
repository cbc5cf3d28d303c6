package clip

import "context"

// headlessBackend is used where no clipboard exists (servers, containers, CI).
// Reads and writes fail so callers can tell the user instead of silently
// saving nothing.
type headlessBackend struct{}

// Headless returns a backend without a clipboard.
func Headless() Backend { return headlessBackend{} }

func (headlessBackend) Name() string { return "headless (no clipboard)" }

func (headlessBackend) ReadText(context.Context) (string, error) { return "", ErrUnavailable }

func (headlessBackend) WriteText(context.Context, string) error { return ErrUnavailable }

func (headlessBackend) Watch(ctx context.Context) <-chan string {
	out := make(chan string)
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}
