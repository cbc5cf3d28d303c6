package presenter

import (
	"log/slog"

	"go.klb.dev/clipshelf/internal/history"
)

const (
	// PreviewLength is the number of characters shown for each row.
	PreviewLength = 50
	ellipsis      = "..."

	EmptyMessage = "No saved items"
)

// ActionKind names an action a row offers.
type ActionKind string

const (
	ActionCopy   ActionKind = "copy"
	ActionDelete ActionKind = "delete"
)

// Action is a row action addressed by the row's index at render time.
type Action struct {
	Kind  ActionKind
	Index int
}

// Row is one rendered entry. Text is the full, untruncated content.
type Row struct {
	Index   int
	Preview string
	Text    string
	Actions []Action
}

// View is a declarative description of the saved list. It is rebuilt in
// full on every render and never patched; treat it as read-only.
type View struct {
	Rows     []Row
	Capacity int
	Empty    bool
	Message  string // shown instead of rows when Empty
}

// Row returns the row at index.
func (v View) Row(index int) (Row, bool) {
	if index < 0 || index >= len(v.Rows) {
		return Row{}, false
	}
	return v.Rows[index], true
}

func render(list *history.List) View {
	s := list.Snapshot()
	v := View{Capacity: s.Capacity}
	if len(s.Entries) == 0 {
		v.Empty = true
		v.Message = EmptyMessage
		return v
	}
	v.Rows = make([]Row, len(s.Entries))
	for i, text := range s.Entries {
		v.Rows[i] = Row{
			Index:   i,
			Preview: Preview(text),
			Text:    text,
			Actions: []Action{
				{Kind: ActionCopy, Index: i},
				{Kind: ActionDelete, Index: i},
			},
		}
	}
	return v
}

// Preview returns the first PreviewLength characters of text, followed by an
// ellipsis if anything was cut.
func Preview(text string) string {
	n := 0
	for i := range text {
		if n == PreviewLength {
			return text[:i] + ellipsis
		}
		n++
	}
	return text
}

// CloseReason records why the panel was closed.
type CloseReason string

const (
	CloseAction  CloseReason = "action"  // toggled closed by the open/close action
	CloseControl CloseReason = "control" // the panel's own close control
	CloseOutside CloseReason = "outside" // a click outside the panel
)

// Open renders the current list and marks the panel visible. Re-opening
// always renders from the list, never from a view kept since the last close.
func (p *Presenter) Open() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view = render(p.list)
	p.open = true
	slog.Debug("panel opened", "items", len(p.view.Rows))
	return p.view
}

// Close hides the panel. It reports whether the panel was open.
func (p *Presenter) Close(reason CloseReason) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return false
	}
	p.open = false
	slog.Debug("panel closed", "reason", reason)
	return true
}

// IsOpen reports whether the panel is visible.
func (p *Presenter) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}
