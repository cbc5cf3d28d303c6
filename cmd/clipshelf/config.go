package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipshelf/internal/clip"
	"go.klb.dev/clipshelf/internal/crypto"
	"go.klb.dev/clipshelf/internal/history"
	"go.klb.dev/clipshelf/internal/logging"
	"go.klb.dev/clipshelf/internal/presenter"
	"go.klb.dev/clipshelf/internal/settings"
)

// envKeyReplacer maps flag names to env names: save-delay → CLIPSHELF_SAVE_DELAY.
var envKeyReplacer = strings.NewReplacer("-", "_")

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPSHELF_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPSHELF_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("clipshelf")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipshelf/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "clipshelf"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPSHELF")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error")
	cmd.Flags().String("log-file", "", "append logs to this file instead of stderr")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addStoreFlags adds the flags every command that touches the saved list needs.
func addStoreFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("store", defaultStorePath(), "settings file the saved list is kept in")
	f.Int("capacity", history.DefaultCapacity, "number of items kept when the settings file has no capacity yet")
	f.Duration("save-delay", settings.DefaultDelay, "delay before pending changes are written to the settings file")
	f.String("passphrase", "", "encrypt the settings file with a key derived from this passphrase")
	f.Duration("clipboard-timeout", 2*time.Second, "timeout for each system clipboard read or write")
	f.String("backend", string(clip.KindAuto), "clipboard backend: auto|native|command|headless")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "clipshelf-settings.json"
	}
	return filepath.Join(dir, "clipshelf", "settings.json")
}

// setupLogging reads logging flags from viper and configures slog. The
// returned func closes the log file, if one was opened.
func setupLogging(v *viper.Viper, stderr io.Writer, fallbackLevel string) (func(), error) {
	w, closeFn := stderr, func() {}
	if path := v.GetString("log-file"); path != "" {
		f, err := logging.OpenFile(path)
		if err != nil {
			return nil, err
		}
		w, closeFn = f, func() { _ = f.Close() }
	}
	resolveLogging(w, v.GetString("log-format"), v.GetString("log-level"), fallbackLevel)
	return closeFn, nil
}

// app is the set of collaborators behind every list command.
type app struct {
	store     *settings.FileStore
	clipboard clip.Backend
	list      *history.List
	p         *presenter.Presenter
	timeout   time.Duration
}

// clipboardBackend returns the backend selected by --backend.
func clipboardBackend(v *viper.Viper) (clip.Backend, error) {
	kind, err := clip.ParseKind(v.GetString("backend"))
	if err != nil {
		return nil, err
	}
	b, err := clip.New(kind)
	if err != nil {
		return nil, fmt.Errorf("clipboard: %w", err)
	}
	return b, nil
}

// openApp opens the settings store and loads the saved list. Commands that
// never touch the system clipboard pass clip.Headless().
func openApp(v *viper.Viper, n presenter.Notifier, backend clip.Backend) (*app, error) {
	opts := []settings.Option{settings.WithDelay(v.GetDuration("save-delay"))}
	if pass := v.GetString("passphrase"); pass != "" {
		key, err := crypto.DeriveKey(pass)
		if err != nil {
			return nil, fmt.Errorf("key derivation: %w", err)
		}
		opts = append(opts, settings.WithKey(key))
	}

	store, err := settings.Open(v.GetString("store"), opts...)
	if err != nil {
		return nil, err
	}

	list := history.New(v.GetInt("capacity"))
	p := presenter.New(list, backend, store, n)
	if err := p.Load(); err != nil {
		_ = store.Close()
		return nil, err
	}

	timeout := v.GetDuration("clipboard-timeout")
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	slog.Debug("store opened",
		"path", store.Path(),
		"backend", backend.Name(),
		"items", list.Len(),
		"capacity", list.Capacity(),
	)
	return &app{store: store, clipboard: backend, list: list, p: p, timeout: timeout}, nil
}

// Close writes pending changes.
func (a *app) Close() error {
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
