package tui

import (
	"log/slog"
	"time"
)

// ToastKind is the severity of a toast.
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastFailure
	ToastInfo
)

// Toast is a short-lived notification shown in the corner of the screen.
type Toast struct {
	Kind ToastKind
	Text string
	At   time.Time
}

// Notifier feeds toasts into the running program. It implements
// presenter.Notifier and never blocks: when the queue is full the toast is
// dropped.
type Notifier struct {
	ch chan Toast
}

// NewNotifier returns a Notifier with a small buffer.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan Toast, 16)}
}

func (n *Notifier) Success(msg string) { n.push(ToastSuccess, msg) }
func (n *Notifier) Failure(msg string) { n.push(ToastFailure, msg) }
func (n *Notifier) Info(msg string)    { n.push(ToastInfo, msg) }

func (n *Notifier) push(kind ToastKind, msg string) {
	select {
	case n.ch <- Toast{Kind: kind, Text: msg, At: time.Now()}:
	default:
		slog.Warn("toast queue full, dropping", "toast", msg)
	}
}

// Toasts returns the receive side of the queue.
func (n *Notifier) Toasts() <-chan Toast { return n.ch }
