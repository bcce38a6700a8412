package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftboard/pkg/logger"
)

func TestPromptNotifier(t *testing.T) {
	var out bytes.Buffer
	n := NewPromptNotifier(strings.NewReader("\n"), &out)

	require.NoError(t, n.Notify(context.Background(), "  Esportazione PDF simulata  "))
	assert.Contains(t, out.String(), "Esportazione PDF simulata\n")
	assert.Contains(t, out.String(), "premi invio")
}

func TestPromptNotifier_EOFConfirms(t *testing.T) {
	var out bytes.Buffer
	n := NewPromptNotifier(strings.NewReader(""), &out)
	assert.NoError(t, n.Notify(context.Background(), "ok"))
}

func TestPromptNotifier_KeepsBufferedLines(t *testing.T) {
	closed := errors.New("input closed")
	in := io.MultiReader(strings.NewReader("a\nb\n"), iotest.ErrReader(closed))
	n := NewPromptNotifier(in, io.Discard)
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, "primo"))
	require.NoError(t, n.Notify(ctx, "secondo"))
	assert.ErrorIs(t, n.Notify(ctx, "terzo"), closed)
}

func TestPromptNotifier_CancelledReadIsReused(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	n := NewPromptNotifier(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, "annullato"), context.Canceled)

	go func() { _, _ = pw.Write([]byte("ok\n")) }()
	require.NoError(t, n.Notify(context.Background(), "ripreso"))
	assert.Nil(t, n.pending)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(logger.Config{Level: logger.LevelInfo, EnableJSON: true, Output: &buf})
	require.NoError(t, err)

	require.NoError(t, LogNotifier{Logger: log}.Notify(context.Background(), "fatto"))
	assert.Contains(t, buf.String(), `"text":"fatto"`)
}
