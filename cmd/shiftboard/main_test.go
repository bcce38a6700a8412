package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftboard/internal/config"
	"shiftboard/internal/dashboard"
	"shiftboard/internal/export"
	"shiftboard/pkg/logger"
)

func TestMapLogLevel(t *testing.T) {
	tests := []struct {
		configLevel config.LogLevel
		want        logger.LogLevel
	}{
		{config.LogLevelDebug, logger.LevelDebug},
		{config.LogLevelInfo, logger.LevelInfo},
		{config.LogLevelWarn, logger.LevelWarn},
		{config.LogLevelError, logger.LevelError},
		{config.LogLevel("bogus"), logger.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.configLevel), func(t *testing.T) {
			assert.Equal(t, tt.want, mapLogLevel(tt.configLevel))
		})
	}
}

func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Log.Level = config.LogLevelError
	cfg.Cloud.MinLatency = 0
	cfg.Cloud.MaxLatency = 0
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestNewApplication(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		backend string
	}{
		{name: "memory", backend: config.BackendLocal},
		{name: "file", mutate: func(c *config.Config) {
			c.Storage.Type = config.PersistenceFile
			c.Storage.Path = filepath.Join(dir, "area.json")
		}, backend: config.BackendLocal},
		{name: "sqlite on cloud", mutate: func(c *config.Config) {
			c.Storage.Type = config.PersistenceSQLite
			c.Storage.Path = filepath.Join(dir, "area.db")
			c.Storage.Backend = config.BackendCloud
		}, backend: config.BackendCloud},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewApplication(testConfig(t, tt.mutate), io.Discard)
			require.NoError(t, err)
			t.Cleanup(func() { _ = app.Close() })

			assert.Equal(t, tt.backend, app.manager.Name())
			assert.Equal(t, []string{config.BackendCloud, config.BackendLocal}, app.backends.Names())

			ctx := context.Background()
			require.True(t, app.manager.SetItem(ctx, "k", "v"))
			got, ok := app.manager.GetItem(ctx, "k")
			require.True(t, ok)
			assert.Equal(t, "v", got)
		})
	}
}

func TestNewApplication_NilConfig(t *testing.T) {
	_, err := NewApplication(nil, io.Discard)
	assert.EqualError(t, err, "config cannot be nil")
}

func TestApplication_FileStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "area.json")
	cfg := testConfig(t, func(c *config.Config) {
		c.Storage.Type = config.PersistenceFile
		c.Storage.Path = path
	})
	ctx := context.Background()

	app, err := NewApplication(cfg, io.Discard)
	require.NoError(t, err)
	require.True(t, app.manager.SetItem(ctx, "turni", "[]"))
	require.NoError(t, app.Close())
	require.NoError(t, app.Close(), "Close is idempotent")

	app, err = NewApplication(cfg, io.Discard)
	require.NoError(t, err)
	defer app.Close()

	got, ok := app.manager.GetItem(ctx, "turni")
	require.True(t, ok)
	assert.Equal(t, "[]", got)
}

func TestApplication_HeaderCallbacks(t *testing.T) {
	app, err := NewApplication(testConfig(t, nil), io.Discard)
	require.NoError(t, err)
	defer app.Close()
	ctx := context.Background()

	require.True(t, dashboard.SaveUser(ctx, app.manager, dashboard.User{Name: "Anna Bianchi"}))
	require.True(t, app.manager.SetObject(ctx, dashboard.EmployeesKey, []export.Employee{{ID: 1, FirstName: "Mario"}}))

	h := app.header(ctx)
	assert.Equal(t, "Anna Bianchi", h.User.Name)

	h.Export()
	h.Logout()

	assert.Equal(t, dashboard.User{}, dashboard.LoadUser(ctx, app.manager))
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestApplication_Run(t *testing.T) {
	port := freePort(t)
	app, err := NewApplication(testConfig(t, func(c *config.Config) {
		c.HTTP.Host = "127.0.0.1"
		c.HTTP.Port = port
	}), io.Discard)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestApplication_RunListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	app, err := NewApplication(testConfig(t, func(c *config.Config) {
		c.HTTP.Host = "127.0.0.1"
		c.HTTP.Port = l.Addr().(*net.TCPAddr).Port
	}), io.Discard)
	require.NoError(t, err)

	assert.Error(t, app.Run(context.Background()))
}

// execute runs the CLI with a sqlite store in dir
func execute(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SHIFTBOARD_LOG_LEVEL", "error")
	t.Setenv("SHIFTBOARD_STORAGE_TYPE", "sqlite")
	t.Setenv("SHIFTBOARD_STORAGE_PATH", filepath.Join(dir, "area.db"))
	t.Setenv("SHIFTBOARD_CLOUD_MIN_LATENCY", "0s")
	t.Setenv("SHIFTBOARD_CLOUD_MAX_LATENCY", "0s")

	var out bytes.Buffer
	err := run(args, strings.NewReader(stdin), &out, io.Discard)
	return out.String(), err
}

func TestCLI_Storage(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, "", "storage", "set", "dipendenti", `[{"id":1}]`)
	require.NoError(t, err)

	out, err := execute(t, dir, "", "storage", "get", "dipendenti")
	require.NoError(t, err)
	assert.Equal(t, "[{\"id\":1}]\n", out)

	_, err = execute(t, dir, "", "storage", "get", "assente")
	assert.ErrorIs(t, err, errKeyNotFound)

	out, err = execute(t, dir, "", "storage", "migrate", "dipendenti", "assente")
	require.NoError(t, err)
	assert.Equal(t, "copied 1 of 2 keys from local to cloud\n", out)

	out, err = execute(t, dir, "", "storage", "keys", "--backend", "cloud")
	require.NoError(t, err)
	assert.Equal(t, "dipendenti\n", out)

	out, err = execute(t, dir, "", "storage", "info", "-b", "cloud")
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(out), "KEY")
	assert.Contains(t, strings.ToUpper(out), "VALUE")
	assert.Regexp(t, `backend\s+cloud`, out)
	// "cloud_dipendenti" + `[{"id":1}]` = 26 chars
	assert.Regexp(t, `used\s+52 B \(52 bytes\)`, out)
	assert.Regexp(t, `capacity\s+5\.0 MiB`, out)
	assert.Contains(t, out, "used %")

	_, err = execute(t, dir, "", "storage", "clear", "--backend", "cloud")
	require.NoError(t, err)

	out, err = execute(t, dir, "", "storage", "keys")
	require.NoError(t, err)
	assert.Equal(t, "dipendenti\n", out, "clearing the cloud backend keeps local entries")

	_, err = execute(t, dir, "", "storage", "rm", "dipendenti")
	require.NoError(t, err)
	out, err = execute(t, dir, "", "storage", "keys")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = execute(t, dir, "", "storage", "keys", "--backend", "s3")
	assert.Error(t, err)
}

func TestCLI_Export(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "shifts.json")
	require.NoError(t, os.WriteFile(input, []byte(`[{"id":1,"data":"2024-03-04","inizio":"08:00","fine":"16:00"}]`), 0o600))

	out, err := execute(t, dir, "", "export", "excel", "shifts", "--input", input, "--file", "settimana")
	require.NoError(t, err)
	assert.Contains(t, out, "1 turno, 8.0 ore")
	assert.Contains(t, out, "File: settimana.xlsx")

	out, err = execute(t, dir, `{"totaleDipendenti":2}`, "export", "pdf", "statistics", "-i", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Dipendenti: 2")
	assert.Contains(t, out, ".pdf")

	out, err = execute(t, dir, "\n", "export", "pdf", "shifts", "-i", input, "--confirm")
	require.NoError(t, err)
	assert.Contains(t, out, "premi invio")

	_, err = execute(t, dir, "", "export", "pdf", "employees")
	assert.ErrorContains(t, err, "export failed")

	_, err = execute(t, dir, "", "export", "docx", "employees")
	assert.ErrorIs(t, err, export.ErrUnknownFormat)

	_, err = execute(t, dir, "", "export", "pdf", "payroll")
	assert.ErrorIs(t, err, export.ErrUnknownKind)
}

func TestCLI_Version(t *testing.T) {
	out, err := execute(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.Equal(t, "shiftboard dev\n", out)
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printTable(&buf, []string{"Key", "Value"}, [][]any{
		{"backend", "local"},
		{"used %", "12.50"},
	}))

	out := buf.String()
	assert.Regexp(t, `backend\s+local`, out)
	assert.Regexp(t, `used %\s+12\.50`, out)
	assert.NotContains(t, out, "|")

	buf.Reset()
	require.NoError(t, printTable(&buf, []string{"Key", "Value"}, nil))
	assert.Equal(t, "No data to display\n", buf.String())
}
