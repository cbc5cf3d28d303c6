package settings

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipshelf/internal/crypto"
)

type record struct {
	Entries  []string `json:"entries"`
	Capacity int      `json:"capacity"`
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	var r record
	ok, err := s.Load("clipboard-manager", &r)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_FlushAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	s, err := Open(path, WithDelay(time.Hour))
	require.NoError(t, err)

	s.Save("clipboard-manager", record{Entries: []string{"b", "a"}, Capacity: 5})
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist, "save must be deferred")

	require.NoError(t, s.Flush())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := Open(path)
	require.NoError(t, err)
	var r record
	ok, err := reopened.Load("clipboard-manager", &r)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, record{Entries: []string{"b", "a"}, Capacity: 5}, r)
}

func TestFileStore_DebounceCoalescesSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := Open(path, WithDelay(50*time.Millisecond))
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		s.Save("n", i)
	}

	require.Eventually(t, func() bool {
		raw, err := os.ReadFile(path)
		return err == nil && len(raw) > 0
	}, 2*time.Second, 10*time.Millisecond)

	reopened, err := Open(path)
	require.NoError(t, err)
	var n int
	_, err = reopened.Load("n", &n)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestFileStore_KeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"other-extension":{"enabled":true}}`), 0o600))

	s, err := Open(path)
	require.NoError(t, err)
	s.Save("clipboard-manager", record{Capacity: 10})
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "other-extension")
	assert.Contains(t, string(raw), "clipboard-manager")
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path)
	assert.ErrorContains(t, err, "settings decode")
}

func TestFileStore_LoadTypeMismatch(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	s.Save("k", "a string")

	var n int
	ok, err := s.Load("k", &n)
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestFileStore_Encrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	key, err := crypto.DeriveKey("passphrase")
	require.NoError(t, err)

	s, err := Open(path, WithKey(key))
	require.NoError(t, err)
	s.Save("clipboard-manager", record{Entries: []string{"my password"}, Capacity: 10})
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "my password")

	reopened, err := Open(path, WithKey(key))
	require.NoError(t, err)
	var r record
	_, err = reopened.Load("clipboard-manager", &r)
	require.NoError(t, err)
	assert.Equal(t, []string{"my password"}, r.Entries)

	wrong, err := crypto.DeriveKey("other")
	require.NoError(t, err)
	_, err = Open(path, WithKey(wrong))
	assert.ErrorIs(t, err, crypto.ErrDecrypt)

	_, err = Open(path)
	assert.Error(t, err, "encrypted file must not parse as plain JSON")
}

func TestFileStore_WatchReportsExternalChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := Open(path, WithDelay(0))
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := s.Watch(ctx)
	require.NoError(t, err)

	other, err := Open(path, WithDelay(time.Hour))
	require.NoError(t, err)
	other.Save("clipboard-manager", record{Entries: []string{"from elsewhere"}, Capacity: 3})
	require.NoError(t, other.Flush())

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change signalled")
	}

	var r record
	ok, err := s.Load("clipboard-manager", &r)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"from elsewhere"}, r.Entries)
}

func TestFileStore_WatchIgnoresOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := Open(path, WithDelay(time.Hour))
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := s.Watch(ctx)
	require.NoError(t, err)

	s.Save("k", 1)
	require.NoError(t, s.Flush())

	select {
	case <-changes:
		t.Fatal("own write reported as external change")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFileStore_WatchClosesOnCancel(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := s.Watch(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel not closed")
	}
}

// prepend returns an update that puts text in front of the stored entries.
func prepend(text string) func(json.RawMessage) (any, error) {
	return func(current json.RawMessage) (any, error) {
		r := record{Capacity: 10}
		if current != nil {
			if err := json.Unmarshal(current, &r); err != nil {
				return nil, err
			}
		}
		r.Entries = append([]string{text}, r.Entries...)
		return r, nil
	}
}

func loadRecord(t *testing.T, s interface {
	Load(string, any) (bool, error)
}) record {
	t.Helper()
	var r record
	ok, err := s.Load("clipboard-manager", &r)
	require.NoError(t, err)
	require.True(t, ok)
	return r
}

func TestFileStore_FlushKeepsExternalChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"clipboard-manager":{"entries":["a","b"],"capacity":10}}`), 0o600))

	a, err := Open(path, WithDelay(time.Hour))
	require.NoError(t, err)
	a.Update("clipboard-manager", prepend("new"))
	assert.Equal(t, []string{"new", "a", "b"}, loadRecord(t, a).Entries)

	// Another process deletes "a" while a's update is still pending.
	b, err := Open(path, WithDelay(time.Hour))
	require.NoError(t, err)
	b.Save("clipboard-manager", record{Entries: []string{"b"}, Capacity: 10})
	require.NoError(t, b.Flush())

	require.NoError(t, a.Close())
	assert.Equal(t, []string{"new", "b"}, loadRecord(t, a).Entries)

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "b"}, loadRecord(t, reopened).Entries)
}

func TestFileStore_FlushDropsFailingUpdateAfterExternalChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	a, err := Open(path, WithDelay(time.Hour))
	require.NoError(t, err)
	a.Update("clipboard-manager", prepend("x"))
	a.Update("count", func(current json.RawMessage) (any, error) {
		if current != nil {
			return nil, errors.New("already set")
		}
		return 1, nil
	})

	b, err := Open(path, WithDelay(time.Hour))
	require.NoError(t, err)
	b.Save("count", 7)
	require.NoError(t, b.Flush())

	require.NoError(t, a.Flush())
	reopened, err := Open(path)
	require.NoError(t, err)
	var n int
	_, err = reopened.Load("count", &n)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, []string{"x"}, loadRecord(t, reopened).Entries)
}

func TestFileStore_WatchReplaysPendingUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"clipboard-manager":{"entries":["a","b"],"capacity":10}}`), 0o600))

	a, err := Open(path, WithDelay(time.Hour))
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := a.Watch(ctx)
	require.NoError(t, err)

	a.Update("clipboard-manager", prepend("new"))

	b, err := Open(path, WithDelay(time.Hour))
	require.NoError(t, err)
	b.Save("clipboard-manager", record{Entries: []string{"b"}, Capacity: 10})
	require.NoError(t, b.Flush())

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change signalled")
	}
	assert.Equal(t, []string{"new", "b"}, loadRecord(t, a).Entries)

	require.NoError(t, a.Flush())
	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "b"}, loadRecord(t, reopened).Entries)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()

	var r record
	ok, err := m.Load("k", &r)
	require.NoError(t, err)
	assert.False(t, ok)

	m.Save("k", record{Entries: []string{"x"}, Capacity: 1})
	ok, err = m.Load("k", &r)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"x"}, r.Entries)
	assert.Equal(t, 1, m.Saves())

	raw, ok := m.Raw("k")
	assert.True(t, ok)
	assert.JSONEq(t, `{"entries":["x"],"capacity":1}`, raw)
}
