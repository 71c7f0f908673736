package logger

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDebugOnlyInDebugMode(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		DebugMode = false
	})
	flags := log.Flags()
	log.SetFlags(0)
	t.Cleanup(func() { log.SetFlags(flags) })

	DebugMode = false
	Debug("hidden %d", 1)
	Info("shown %d", 2)
	Warn("careful")
	require.Equal(t, "[INFO] shown 2\n[WARN] careful\n", buf.String())

	buf.Reset()
	DebugMode = true
	Debug("visible")
	require.Equal(t, "[DEBUG] visible\n", buf.String())
}
