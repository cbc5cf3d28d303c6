// Package presenter connects the saved-clipboard list to a view.
//
// Every user action goes through the Presenter, which performs it in a fixed
// order: clipboard I/O that the action depends on, then the list mutation,
// then a save request to the settings store, then a fresh render, and
// finally a notification. Clipboard I/O never happens while the presenter
// lock is held, and a failed action leaves both the list and the last
// rendered view exactly as they were.
package presenter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.klb.dev/clipshelf/internal/history"
)

// SettingsKey is the settings-store key the list is persisted under.
const SettingsKey = "clipboard-manager"

var ErrClipboardAccess = errors.New("clipboard access failed")

// Notification texts.
const (
	MsgSaved           = "Clipboard content saved"
	MsgClipboardEmpty  = "Clipboard empty or inaccessible"
	MsgClipboardDenied = "Cannot access the clipboard, check permissions"
	MsgNothingToSave   = "Nothing to save"
	MsgCopied          = "Copied to clipboard"
	MsgCopyFailed      = "Failed to copy to clipboard"
	MsgDeleted         = "Item deleted"
	MsgNoSuchItem      = "That item no longer exists"
	MsgCleared         = "All saved items cleared"
	MsgBadCapacity     = "Capacity must be at least 1"
)

// Store persists values by key. Update sets key to fn(current value); the
// write may be deferred and must not block. fn may be run again on a value
// written by another process before the deferred write happens.
type Store interface {
	Load(key string, v any) (bool, error)
	Update(key string, fn func(current json.RawMessage) (any, error))
}

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
}

// Notifier shows short messages to the user.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
	Info(msg string)
}

// Presenter owns the list and keeps the rendered view in step with it.
type Presenter struct {
	list      *history.List
	clipboard Clipboard
	store     Store
	notify    Notifier

	mu   sync.Mutex
	view View
	open bool
}

// New returns a Presenter for list. Call Load to hydrate it from the store.
func New(list *history.List, clipboard Clipboard, store Store, notify Notifier) *Presenter {
	p := &Presenter{
		list:      list,
		clipboard: clipboard,
		store:     store,
		notify:    notify,
	}
	p.view = render(list)
	return p
}

// Load hydrates the list from the store. When nothing is stored yet the
// current (empty) list is saved so the key exists from then on.
func (p *Presenter) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var s history.Snapshot
	ok, err := p.store.Load(SettingsKey, &s)
	if err != nil {
		return fmt.Errorf("load saved items: %w", err)
	}
	if ok {
		p.list.Restore(s)
	} else {
		p.persistLocked(func(*history.List) error { return nil })
	}
	p.view = render(p.list)
	slog.Debug("saved items loaded", "items", p.list.Len(), "capacity", p.list.Capacity())
	return nil
}

// Reload re-reads the store after it was changed elsewhere and re-renders.
func (p *Presenter) Reload() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var s history.Snapshot
	ok, err := p.store.Load(SettingsKey, &s)
	if err != nil {
		return fmt.Errorf("reload saved items: %w", err)
	}
	if !ok {
		return nil
	}
	p.list.Restore(s)
	p.view = render(p.list)
	return nil
}

// SaveFromClipboard saves the current system clipboard text.
func (p *Presenter) SaveFromClipboard(ctx context.Context) error {
	text, err := p.clipboard.ReadText(ctx)
	if err != nil {
		slog.Warn("clipboard read failed", "err", err)
		p.notify.Failure(MsgClipboardDenied)
		return fmt.Errorf("%w: read: %w", ErrClipboardAccess, err)
	}
	if strings.TrimSpace(text) == "" {
		p.notify.Failure(MsgClipboardEmpty)
		return history.ErrEmptyInput
	}
	return p.insert(text)
}

// SaveText saves literal text, e.g. from stdin.
func (p *Presenter) SaveText(text string) error {
	if strings.TrimSpace(text) == "" {
		p.notify.Info(MsgNothingToSave)
		return history.ErrEmptyInput
	}
	return p.insert(text)
}

func (p *Presenter) insert(text string) error {
	p.mu.Lock()
	if err := p.list.Insert(text); err != nil {
		p.mu.Unlock()
		p.notify.Failure(MsgNothingToSave)
		return err
	}
	p.persistLocked(func(l *history.List) error { return l.Insert(text) })
	p.view = render(p.list)
	n := len(p.view.Rows)
	p.mu.Unlock()

	slog.Debug("clipboard item saved", "preview", Preview(text), "items", n)
	p.notify.Success(MsgSaved)
	return nil
}

// Copy writes the text of the row at index in the current view to the system
// clipboard. The list is not modified.
func (p *Presenter) Copy(ctx context.Context, index int) error {
	p.mu.Lock()
	row, ok := p.view.Row(index)
	n := len(p.view.Rows)
	p.mu.Unlock()

	if !ok {
		p.notify.Failure(MsgNoSuchItem)
		return fmt.Errorf("copy: %w: index %d, length %d", history.ErrIndexOutOfRange, index, n)
	}
	if err := p.clipboard.WriteText(ctx, row.Text); err != nil {
		slog.Warn("clipboard write failed", "err", err)
		p.notify.Failure(MsgCopyFailed)
		return fmt.Errorf("%w: write: %w", ErrClipboardAccess, err)
	}
	slog.Debug("clipboard item copied", "index", index, "preview", row.Preview)
	p.notify.Success(MsgCopied)
	return nil
}

// Delete removes the entry at index.
func (p *Presenter) Delete(index int) error {
	p.mu.Lock()
	entry, err := p.list.At(index)
	if err == nil {
		err = p.list.RemoveAt(index)
	}
	if err != nil {
		p.mu.Unlock()
		p.notify.Failure(MsgNoSuchItem)
		return fmt.Errorf("delete: %w", err)
	}
	p.persistLocked(func(l *history.List) error {
		l.Remove(entry.Text)
		return nil
	})
	p.view = render(p.list)
	p.mu.Unlock()

	p.notify.Info(MsgDeleted)
	return nil
}

// SetCapacity changes how many entries are kept, evicting the oldest ones
// that no longer fit.
func (p *Presenter) SetCapacity(n int) error {
	p.mu.Lock()
	if err := p.list.SetCapacity(n); err != nil {
		p.mu.Unlock()
		p.notify.Failure(MsgBadCapacity)
		return err
	}
	p.persistLocked(func(l *history.List) error { return l.SetCapacity(n) })
	p.view = render(p.list)
	p.mu.Unlock()

	p.notify.Info(fmt.Sprintf("Keeping up to %d items", n))
	return nil
}

// Clear removes every entry.
func (p *Presenter) Clear() {
	p.mu.Lock()
	p.list.Clear()
	p.persistLocked(func(l *history.List) error {
		l.Clear()
		return nil
	})
	p.view = render(p.list)
	p.mu.Unlock()

	p.notify.Info(MsgCleared)
}

// Render regenerates the view from the current list state. Calling it twice
// without a mutation in between returns equal views.
func (p *Presenter) Render() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view = render(p.list)
	return p.view
}

// persistLocked hands op, already applied to p.list, to the store. The store
// applies it to the stored list, which is the same list unless another process
// changed it, in which case op lands on top of that change. Deletes are
// recorded by text for that reason. Must be called with p.mu held.
func (p *Presenter) persistLocked(op func(*history.List) error) {
	capacity := p.list.Capacity()
	p.store.Update(SettingsKey, func(current json.RawMessage) (any, error) {
		l := history.New(capacity)
		if len(current) > 0 {
			var s history.Snapshot
			if err := json.Unmarshal(current, &s); err != nil {
				return nil, fmt.Errorf("stored list: %w", err)
			}
			l.Restore(s)
		}
		if err := op(l); err != nil {
			return nil, err
		}
		return l.Snapshot(), nil
	})
}
