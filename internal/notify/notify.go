// Package notify implements the user-facing notification sinks: a styled
// console printer for one-shot commands and a slog sink for daemons.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Console prints notifications as single styled lines. Success and info go
// to Out, failures to Err.
type Console struct {
	Out io.Writer
	Err io.Writer
}

// NewConsole returns a Console writing to out and errOut. Nil writers
// default to stdout and stderr.
func NewConsole(out, errOut io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Console{Out: out, Err: errOut}
}

func (c *Console) Success(msg string) { fmt.Fprintln(c.Out, successStyle.Render("✔ "+msg)) }
func (c *Console) Failure(msg string) { fmt.Fprintln(c.Err, failureStyle.Render("✖ "+msg)) }
func (c *Console) Info(msg string)    { fmt.Fprintln(c.Out, infoStyle.Render("• "+msg)) }

// Log reports notifications through slog.
type Log struct {
	Logger *slog.Logger // nil = slog.Default()
}

func (l Log) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l Log) Success(msg string) { l.logger().Info(msg, "notification", "success") }
func (l Log) Failure(msg string) { l.logger().Warn(msg, "notification", "failure") }
func (l Log) Info(msg string)    { l.logger().Info(msg, "notification", "info") }
