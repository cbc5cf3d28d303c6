// Package history implements the saved-clipboard list: an ordered,
// most-recent-first collection of unique text entries bounded by a capacity.
//
// Insert follows a fixed order of operations:
//
//	dedup  → remove any existing entry with identical text
//	insert → place the text at index 0
//	trim   → drop tail entries until Len() == Capacity()
//
// so a re-saved entry is promoted rather than duplicated, and an entry that
// is about to be promoted can never be evicted first.
package history

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// DefaultCapacity is the capacity of a new List.
const DefaultCapacity = 10

var (
	ErrEmptyInput      = errors.New("empty input")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
)

// Entry is a single saved clipboard snapshot.
type Entry struct {
	Text string
}

// Snapshot is the persisted form of a List.
type Snapshot struct {
	Entries  []string `json:"entries"`
	Capacity int      `json:"capacity"`
}

// List is safe for concurrent use. A reader never observes Len() > Capacity().
type List struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

// New returns an empty List. A capacity below 1 is clamped to 1.
func New(capacity int) *List {
	return &List{capacity: max(capacity, 1)}
}

// Insert saves text as the most recent entry. An existing entry with the same
// text is promoted to index 0 instead of duplicated.
func (l *List) Insert(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexLocked(text); i >= 0 {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}
	l.entries = append(l.entries, Entry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = Entry{Text: text}
	l.trimLocked()
	return nil
}

// RemoveAt deletes the entry at index. Entries after it shift up by one, so
// any index captured before the call is stale afterwards.
func (l *List) RemoveAt(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.entries) {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, index, len(l.entries))
	}
	l.entries = append(l.entries[:index], l.entries[index+1:]...)
	return nil
}

// Remove deletes the entry with exactly text and reports whether there was one.
func (l *List) Remove(text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(text)
	if i < 0 {
		return false
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return true
}

// SetCapacity changes the bound and evicts the oldest entries that no longer fit.
func (l *List) SetCapacity(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, n)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.capacity = n
	l.trimLocked()
	return nil
}

// Clear removes all entries. Capacity is unchanged.
func (l *List) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// Restore replaces the list contents with a persisted snapshot. Empty texts
// are dropped, duplicates keep their most recent (lowest index) position and
// a missing or invalid capacity leaves the current capacity in place.
func (l *List) Restore(s Snapshot) {
	seen := make(map[string]struct{}, len(s.Entries))
	entries := make([]Entry, 0, len(s.Entries))
	for _, text := range s.Entries {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		entries = append(entries, Entry{Text: text})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if s.Capacity >= 1 {
		l.capacity = s.Capacity
	}
	l.entries = entries
	l.trimLocked()
}

// Snapshot returns the persisted form of the current state.
func (l *List) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	texts := make([]string, len(l.entries))
	for i, e := range l.entries {
		texts[i] = e.Text
	}
	return Snapshot{Entries: texts, Capacity: l.capacity}
}

// Len returns the number of entries.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Capacity returns the current bound.
func (l *List) Capacity() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.capacity
}

// At returns the entry at index.
func (l *List) At(index int) (Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.entries) {
		return Entry{}, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, index, len(l.entries))
	}
	return l.entries[index], nil
}

// Entries returns a copy of all entries, most recent first.
func (l *List) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Texts returns the entry texts, most recent first.
func (l *List) Texts() []string {
	return l.Snapshot().Entries
}

// indexLocked returns the position of text or -1. Must be called with l.mu held.
func (l *List) indexLocked(text string) int {
	for i, e := range l.entries {
		if e.Text == text {
			return i
		}
	}
	return -1
}

// trimLocked drops tail entries beyond capacity. Must be called with l.mu held.
func (l *List) trimLocked() {
	if len(l.entries) > l.capacity {
		clear(l.entries[l.capacity:])
		l.entries = l.entries[:l.capacity]
	}
}
