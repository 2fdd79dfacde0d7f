package log

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiDim    = "\033[2m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// TerminalHandler writes one human-readable line per record:
//
//	15:04:05.000 INF rows evaluated function=explode_times rows=5
type TerminalHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	color  bool
	prefix string // group path applied to later attrs, e.g. "req."
	preset string // attrs added via WithAttrs, already formatted
}

// NewTerminalHandler returns a TerminalHandler. A nil level means INFO.
func NewTerminalHandler(w io.Writer, level slog.Leveler, color bool) *TerminalHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &TerminalHandler{w: w, mu: &sync.Mutex{}, level: level, color: color}
}

// Enabled reports whether level is at or above the handler's level.
func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes r as a single line.
func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var sb strings.Builder
	h.paint(&sb, ansiDim, ts.Format("15:04:05.000"))
	sb.WriteByte(' ')
	color, label := levelLabel(r.Level)
	h.paint(&sb, color, label)
	sb.WriteByte(' ')
	h.paint(&sb, ansiBold, r.Message)
	sb.WriteString(h.preset)
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&sb, h.prefix, a)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

// WithAttrs returns a handler that prints attrs on every record.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var sb strings.Builder
	sb.WriteString(h.preset)
	for _, a := range attrs {
		h.writeAttr(&sb, h.prefix, a)
	}
	next := *h
	next.preset = sb.String()
	return &next
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *TerminalHandler) paint(sb *strings.Builder, code, s string) {
	if !h.color {
		sb.WriteString(s)
		return
	}
	sb.WriteString(code)
	sb.WriteString(s)
	sb.WriteString(ansiReset)
}

func (h *TerminalHandler) writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(sb, prefix, ga)
		}
		return
	}
	sb.WriteByte(' ')
	h.paint(sb, ansiDim, prefix+a.Key+"=")
	sb.WriteString(quoteValue(a.Value))
}

func levelLabel(level slog.Level) (string, string) {
	switch {
	case level < slog.LevelInfo:
		return ansiCyan, "DBG"
	case level < slog.LevelWarn:
		return ansiGreen, "INF"
	case level < slog.LevelError:
		return ansiYellow, "WRN"
	default:
		return ansiRed, "ERR"
	}
}

func quoteValue(v slog.Value) string {
	s := v.String()
	if v.Kind() == slog.KindString && (s == "" || strings.ContainsAny(s, " \t\n\"\\=")) {
		return strconv.Quote(s)
	}
	return s
}
