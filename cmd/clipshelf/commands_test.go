package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipshelf/internal/history"
	"go.klb.dev/clipshelf/internal/notify"
	"go.klb.dev/clipshelf/internal/presenter"
	"go.klb.dev/clipshelf/internal/settings"
)

type env struct {
	store  string
	config string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, "clipshelf.toml")
	require.NoError(t, os.WriteFile(config, nil, 0o600))
	return env{store: filepath.Join(dir, "settings.json"), config: config}
}

// run executes cmd with the env's store and config and returns stdout.
func (e env) run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(bytes.NewReader(nil))
	cmd.SetArgs(append([]string{"--store", e.store, "--config", e.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e env) snapshot(t *testing.T) history.Snapshot {
	t.Helper()
	out, err := e.run(t, newListCmd(), "--json")
	require.NoError(t, err)
	var s history.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	return s
}

func TestCommands_AddListRm(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, newAddCmd(), "hello")
	require.NoError(t, err)
	assert.Contains(t, out, presenter.MsgSaved)

	_, err = e.run(t, newAddCmd(), "world")
	require.NoError(t, err)
	_, err = e.run(t, newAddCmd(), "hello")
	require.NoError(t, err)

	out, err = e.run(t, newListCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "1  hello")
	assert.Contains(t, out, "2  world")
	assert.Contains(t, out, "(2/10)")

	_, err = e.run(t, newRmCmd(), "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, e.snapshot(t).Entries)

	_, err = e.run(t, newRmCmd(), "5")
	assert.ErrorIs(t, err, history.ErrIndexOutOfRange)
}

func TestCommands_EmptyList(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, newListCmd())
	require.NoError(t, err)
	assert.Contains(t, out, presenter.EmptyMessage)

	// Listing persisted the defaults.
	_, err = os.Stat(e.store)
	assert.NoError(t, err)
}

func TestCommands_Capacity(t *testing.T) {
	e := newEnv(t)
	for _, s := range []string{"a", "b", "c"} {
		_, err := e.run(t, newAddCmd(), s)
		require.NoError(t, err)
	}

	out, err := e.run(t, newCapacityCmd())
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)

	_, err = e.run(t, newCapacityCmd(), "2")
	require.NoError(t, err)
	assert.Equal(t, history.Snapshot{Entries: []string{"c", "b"}, Capacity: 2}, e.snapshot(t))

	_, err = e.run(t, newCapacityCmd(), "0")
	assert.ErrorIs(t, err, history.ErrInvalidCapacity)
	_, err = e.run(t, newCapacityCmd(), "many")
	assert.Error(t, err)
}

func TestCommands_Clear(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, newAddCmd(), "a")
	require.NoError(t, err)

	out, err := e.run(t, newClearCmd())
	require.NoError(t, err)
	assert.Contains(t, out, presenter.MsgCleared)
	assert.Empty(t, e.snapshot(t).Entries)
}

func TestCommands_Encrypted(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, newAddCmd(), "--passphrase", "s3cret", "secret text")
	require.NoError(t, err)

	raw, err := os.ReadFile(e.store)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret text")

	out, err := e.run(t, newListCmd(), "--passphrase", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, out, "secret text")

	_, err = e.run(t, newListCmd())
	assert.Error(t, err)
}

func TestCommands_SaveHeadless(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, newSaveCmd(), "--backend", "headless")

	assert.ErrorIs(t, err, presenter.ErrClipboardAccess)
}

func TestWatchClipboard(t *testing.T) {
	list := history.New(history.DefaultCapacity)
	store := settings.NewMemory()
	p := presenter.New(list, nil, store, notify.Log{})

	clips := make(chan string, 4)
	clips <- "a"
	clips <- "b"
	clips <- "  "
	clips <- "a"
	close(clips)

	watchClipboard(context.Background(), p, clips, nil)

	assert.Equal(t, []string{"a", "b"}, list.Texts())
	assert.Equal(t, 3, store.Saves())
}

func TestWatchClipboard_ReloadsOnChange(t *testing.T) {
	list := history.New(history.DefaultCapacity)
	store := settings.NewMemory()
	p := presenter.New(list, nil, store, notify.Log{})
	store.Seed(presenter.SettingsKey, history.Snapshot{Entries: []string{"external"}, Capacity: 5})

	changes := make(chan struct{})
	clips := make(chan string)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		watchClipboard(ctx, p, clips, changes)
		close(done)
	}()

	changes <- struct{}{}
	clips <- "local"
	cancel()
	<-done

	assert.Equal(t, []string{"local", "external"}, list.Texts())
	assert.Equal(t, 5, list.Capacity())
}

func TestWatchClipboard_AppliesPendingChangeBeforeSaving(t *testing.T) {
	for i := 0; i < 100; i++ {
		list := history.New(history.DefaultCapacity)
		store := settings.NewMemory()
		store.Seed(presenter.SettingsKey, history.Snapshot{Entries: []string{"a", "a-secret"}, Capacity: 10})
		p := presenter.New(list, nil, store, notify.Log{})
		require.NoError(t, p.Load())

		// Another process deleted the secret; its change signal and the next
		// clipboard text are ready at the same time.
		store.Seed(presenter.SettingsKey, history.Snapshot{Entries: []string{"a"}, Capacity: 10})
		changes := make(chan struct{}, 1)
		changes <- struct{}{}
		clips := make(chan string, 1)
		clips <- "b"
		close(clips)

		watchClipboard(context.Background(), p, clips, changes)

		require.Equal(t, []string{"b", "a"}, list.Texts())
		raw, ok := store.Raw(presenter.SettingsKey)
		require.True(t, ok)
		require.NotContains(t, raw, "a-secret")
	}
}

func TestCommands_ListReportsWriteFailure(t *testing.T) {
	e := newEnv(t)
	// A dangling symlink as the parent directory: reading finds no file, but
	// the directory can never be created.
	dir := filepath.Dir(e.store)
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "link")))
	e.store = filepath.Join(dir, "link", "settings.json")

	_, err := e.run(t, newListCmd())
	assert.ErrorContains(t, err, "save settings")
}

func TestPrintView(t *testing.T) {
	var buf bytes.Buffer
	view := presenter.View{
		Capacity: 3,
		Rows: []presenter.Row{
			{Index: 0, Preview: "short", Text: "short"},
			{Index: 1, Preview: "long...", Text: "long text"},
		},
	}

	require.NoError(t, printView(&buf, view, false))
	assert.Contains(t, buf.String(), "2  long...")

	buf.Reset()
	require.NoError(t, printView(&buf, view, true))
	assert.Contains(t, buf.String(), "2  long text")
}
