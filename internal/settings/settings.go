// Package settings provides the key-value settings store clipshelf persists
// its saved list in.
//
// The whole store is a single JSON document (key → arbitrary JSON value)
// kept in one file. Saves are debounced: Update records the new value in
// memory and (re)arms a timer, and only the timer, Flush or Close write the
// file. Several rapid saves therefore end up as one write.
//
// Other processes may write the same file. Updates not yet written are kept
// and, when the file has changed underneath them, replayed in order on top of
// the file's current content before the write, so neither side's changes
// are lost.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.klb.dev/clipshelf/internal/crypto"
)

// DefaultDelay is the debounce delay used when none is configured.
const DefaultDelay = 500 * time.Millisecond

// FileStore is a debounced, file-backed settings store. It is safe for
// concurrent use.
type FileStore struct {
	path  string
	key   *crypto.Key
	delay time.Duration

	mu          sync.Mutex
	doc         map[string]json.RawMessage
	pending     []update // applied to doc, not yet written
	timer       *time.Timer
	lastOnDisk  []byte // file content as last read or written by this store
	stopWatcher func()

	// rebased is signalled when a write had to replay pending updates over
	// another process's changes; Watch forwards it.
	rebased chan struct{}
}

type update struct {
	key string
	fn  func(current json.RawMessage) (any, error)
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithDelay sets the debounce delay. Zero or negative disables debouncing.
func WithDelay(d time.Duration) Option {
	return func(s *FileStore) { s.delay = d }
}

// WithKey encrypts the file at rest with key.
func WithKey(key *crypto.Key) Option {
	return func(s *FileStore) { s.key = key }
}

// Open loads the store at path. A missing file is an empty store.
func Open(path string, opts ...Option) (*FileStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("settings path: %w", err)
	}
	s := &FileStore{
		path:    abs,
		delay:   DefaultDelay,
		doc:     make(map[string]json.RawMessage),
		rebased: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(s)
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	doc, err := s.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	s.doc = doc
	s.lastOnDisk = raw
	return s, nil
}

// Path returns the absolute file path.
func (s *FileStore) Path() string { return s.path }

// Load decodes the value stored under key into v. It reports false if the
// key is absent.
func (s *FileStore) Load(key string, v any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.doc[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("settings %q: %w", key, err)
	}
	return true, nil
}

// Save stores v under key and schedules a write. If another process changes
// the key before the write, v still replaces its value.
func (s *FileStore) Save(key string, v any) {
	s.Update(key, func(json.RawMessage) (any, error) { return v, nil })
}

// Update sets key to fn(current value) and schedules a write. current is nil
// when the key is absent. fn may run again before the write, on the value
// another process stored in the meantime, so it must derive its result from
// current alone. It never blocks on I/O; failures are logged.
func (s *FileStore) Update(key string, fn func(current json.RawMessage) (any, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := apply(s.doc[key], fn)
	if err != nil {
		slog.Error("settings update failed", "key", key, "err", err)
		return
	}
	s.doc[key] = raw
	s.pending = append(s.pending, update{key: key, fn: fn})

	if s.delay <= 0 {
		go s.flushLogged()
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.flushLogged)
	} else {
		s.timer.Reset(s.delay)
	}
}

// Flush writes pending changes now.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// Close stops any watcher and flushes pending changes.
func (s *FileStore) Close() error {
	s.mu.Lock()
	stop := s.stopWatcher
	s.stopWatcher = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	err := s.flushLocked()
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	return err
}

func (s *FileStore) flushLogged() {
	if err := s.Flush(); err != nil {
		slog.Error("settings write failed", "path", s.path, "err", err)
	}
}

func apply(current json.RawMessage, fn func(json.RawMessage) (any, error)) (json.RawMessage, error) {
	v, err := fn(current)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("settings encode: %w", err)
	}
	return raw, nil
}

// flushLocked must be called with s.mu held.
func (s *FileStore) flushLocked() error {
	if len(s.pending) == 0 {
		return nil
	}

	onDisk, err := s.readFile()
	if err != nil {
		return err
	}
	if !bytes.Equal(onDisk, s.lastOnDisk) {
		if err := s.rebaseLocked(onDisk); err != nil {
			return err
		}
		select {
		case s.rebased <- struct{}{}:
		default:
		}
	}

	raw, err := s.encode(s.doc)
	if err != nil {
		return err
	}
	if err := writeAtomic(s.path, raw); err != nil {
		return err
	}
	s.pending = nil
	s.lastOnDisk = raw
	slog.Debug("settings written", "path", s.path, "bytes", len(raw))
	return nil
}

// rebaseLocked makes onDisk the new base document and replays the pending
// updates on top of it. An update that no longer applies is dropped.
func (s *FileStore) rebaseLocked(onDisk []byte) error {
	doc, err := s.decode(onDisk)
	if err != nil {
		return err
	}
	kept := s.pending[:0]
	for _, u := range s.pending {
		raw, err := apply(doc[u.key], u.fn)
		if err != nil {
			slog.Warn("dropping settings update after external change", "key", u.key, "err", err)
			continue
		}
		doc[u.key] = raw
		kept = append(kept, u)
	}
	s.pending = kept
	s.doc = doc
	s.lastOnDisk = onDisk
	slog.Debug("settings rebased on external change", "path", s.path, "pending", len(kept))
	return nil
}

// readFile returns the file content, or nil if there is no file.
func (s *FileStore) readFile() ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return raw, nil
}

// reload re-reads the file after an external change. It reports whether the
// in-memory document changed. Pending updates are replayed on the new content.
func (s *FileStore) reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readFile()
	if err != nil {
		return false, err
	}
	if raw == nil || bytes.Equal(raw, s.lastOnDisk) {
		return false, nil
	}
	if err := s.rebaseLocked(raw); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) encode(doc map[string]json.RawMessage) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("settings encode: %w", err)
	}
	if s.key != nil {
		sealed, err := crypto.Seal(raw, s.key)
		if err != nil {
			return nil, fmt.Errorf("encrypt: %w", err)
		}
		raw = sealed
	}
	return append(raw, '\n'), nil
}

func (s *FileStore) decode(raw []byte) (map[string]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return make(map[string]json.RawMessage), nil
	}
	if s.key != nil {
		plain, err := crypto.Open(raw, s.key)
		if err != nil {
			return nil, fmt.Errorf("decrypt: %w", err)
		}
		raw = plain
	}
	doc := make(map[string]json.RawMessage)
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("settings decode: %w", err)
	}
	return doc, nil
}

// writeAtomic replaces path with data via a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
