package logger

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// PrettyHandler writes one line per record in the same shape as the
// command's error messages:
//
//	dbts: warning: http cache disabled bug=42 error="mkdir: permission denied"
//
// Attributes added with WithAttrs come before the record's own, so the bug
// being worked on leads every line logged for it.
type PrettyHandler struct {
	opts   *slog.HandlerOptions
	prog   string
	mu     *sync.Mutex
	w      io.Writer
	attrs  string // rendered WithAttrs attributes, each with a leading space
	prefix string
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{
		opts: opts,
		prog: "dbts",
		mu:   &sync.Mutex{},
		w:    w,
	}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelWarn
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(h.prog)
	b.WriteString(": ")
	b.WriteString(levelLabel(r.Level))
	b.WriteString(" ")
	b.WriteString(r.Message)

	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, h.prefix, a)
		return true
	})

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			b.WriteString(" ")
			b.WriteString(color.HiBlackString("(%s:%d)", filepath.Base(frame.File), frame.Line))
		}
	}
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		h.appendAttr(&b, h.prefix, a)
	}
	h2 := *h
	h2.attrs = b.String()
	return &h2
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return color.New(color.FgRed, color.Bold).Sprint("error:")
	case level >= slog.LevelWarn:
		return color.YellowString("warning:")
	case level >= slog.LevelInfo:
		return color.CyanString("info:")
	default:
		return color.HiBlackString("debug:")
	}
}

// appendAttr writes " key=value", resolving groups into dotted keys.
func (h *PrettyHandler) appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.appendAttr(b, prefix, ga)
		}
		return
	}

	key := prefix + a.Key
	b.WriteString(" ")
	b.WriteString(keyColor(a.Key).Sprintf("%s=%s", key, formatValue(a.Value)))
}

func formatValue(v slog.Value) string {
	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func keyColor(key string) *color.Color {
	switch key {
	case "error", "err", "stderr":
		return color.New(color.FgRed)
	case "duration", "bytes":
		return color.New(color.FgMagenta)
	case "bug", "bugs", "merged", "status":
		return color.New(color.FgGreen)
	case "url", "cache", "command":
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgHiBlack)
	}
}
