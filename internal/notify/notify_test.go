package notify

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &Console{Out: &out, Err: &errOut}

	c.Success("saved")
	c.Info("cleared")
	c.Failure("denied")

	assert.Contains(t, out.String(), "✔ saved")
	assert.Contains(t, out.String(), "• cleared")
	assert.NotContains(t, out.String(), "denied")
	assert.Contains(t, errOut.String(), "✖ denied")
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	l := Log{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	l.Success("saved")
	l.Failure("denied")
	l.Info("cleared")

	s := buf.String()
	assert.Contains(t, s, `level=INFO msg=saved notification=success`)
	assert.Contains(t, s, `level=WARN msg=denied notification=failure`)
	assert.Contains(t, s, `level=INFO msg=cleared notification=info`)
}
