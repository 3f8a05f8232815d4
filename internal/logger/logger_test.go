package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	t.Run("default level hides info", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&buf, false, false)

		l.Info("fetching", "url", "https://bugs.debian.org/1")
		l.Warn("slow response")

		assert.NotContains(t, buf.String(), "fetching")
		assert.Contains(t, buf.String(), "slow response")
	})

	t.Run("verbose shows info", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&buf, false, true)

		l.Info("fetching", "url", "https://bugs.debian.org/1")
		l.Debug("cache lookup")

		assert.Contains(t, buf.String(), "fetching")
		assert.NotContains(t, buf.String(), "cache lookup")
	})

	t.Run("debug shows everything", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&buf, true, false)

		l.Debug("cache lookup", "cache", "hit")

		assert.Contains(t, buf.String(), "cache lookup")
		assert.Contains(t, buf.String(), "cache=hit")
	})
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, false, true))
	ctx = With(ctx, "bug", 123456)

	Info(ctx, "showing bug")

	assert.Contains(t, buf.String(), "showing bug")
	assert.Contains(t, buf.String(), "bug=123456")
}

func TestFromContext_Default(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}

func TestPrettyHandler(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	newLogger := func(buf *bytes.Buffer) *slog.Logger {
		return slog.New(NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	t.Run("prefixes the program and level", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger(&buf).Error("request failed", "status", 500)

		assert.Equal(t, "dbts: error: request failed status=500\n", buf.String())
	})

	t.Run("labels each level", func(t *testing.T) {
		var buf bytes.Buffer
		l := newLogger(&buf)

		l.Debug("a")
		l.Info("b")
		l.Warn("c")

		assert.Equal(t, "dbts: debug: a\ndbts: info: b\ndbts: warning: c\n", buf.String())
	})

	t.Run("context attributes come first", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger(&buf).With("bug", 42).With("url", "https://bugs.debian.org/42").Info("fetched", "duration", "1s")

		assert.Equal(t, "dbts: info: fetched bug=42 url=https://bugs.debian.org/42 duration=1s\n", buf.String())
	})

	t.Run("quotes values with spaces", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger(&buf).Warn("http cache disabled", "error", "mkdir: permission denied", "path", "")

		assert.Equal(t, `dbts: warning: http cache disabled error="mkdir: permission denied" path=""`+"\n", buf.String())
	})

	t.Run("groups become dotted keys", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger(&buf).WithGroup("http").With("cache", "hit").Info("get", slog.Group("resp", "status", 200), "bytes", 10)

		assert.Equal(t, "dbts: info: get http.cache=hit http.resp.status=200 http.bytes=10\n", buf.String())
	})

	t.Run("hides records below the level", func(t *testing.T) {
		var buf bytes.Buffer
		slog.New(NewPrettyHandler(&buf, nil)).Info("quiet")

		assert.Empty(t, buf.String())
	})
}
