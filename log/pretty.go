package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of the pretty handlers. Styles come from a
// renderer bound to the output, so colors are stripped when the output
// is not a terminal.
type palette struct {
	key, str, num, dur, when, null lipgloss.Style
	yes, no                        lipgloss.Style
	trace, debug, info, warn, err  lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		dur:   fg("5"),
		when:  fg("4"),
		null:  fg("8"),
		yes:   fg("2"),
		no:    fg("1"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	}

	return p.trace
}

// styled is text that already carries its own style.
type styled string

// prettyHandler renders records for humans: key=value pairs on one line
// for FormatText, or an indented object per record for FormatJSON.
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	pal    *palette
	mu     *sync.Mutex
	w      io.Writer

	// attrs added with WithAttrs, already qualified by the open groups.
	attrs  []slog.Attr
	groups []string
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, format Format) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		format: format,
		pal:    newPalette(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = append(slices.Clip(h.attrs), h.nest(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(slices.Clip(h.groups), name)

	return &c
}

// nest wraps attrs in the currently open groups.
func (h *prettyHandler) nest(attrs []slog.Attr) []slog.Attr {
	for i := len(h.groups) - 1; i >= 0; i-- {
		attrs = []slog.Attr{{Key: h.groups[i], Value: slog.GroupValue(attrs...)}}
	}

	return attrs
}

func (h *prettyHandler) builtin(key string, v slog.Value) (slog.Attr, bool) {
	a := slog.Attr{Key: key, Value: v}
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	return a, !a.Equal(slog.Attr{})
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if a, ok := h.builtin(slog.TimeKey, slog.TimeValue(r.Time)); ok {
			fields = append(fields, a)
		}
	}

	// The level keeps its slog.Level value for coloring; only its text
	// comes from ReplaceAttr.
	levelText := r.Level.String()
	if a, ok := h.builtin(slog.LevelKey, slog.AnyValue(r.Level)); ok {
		levelText = a.Value.String()
	}

	fields = append(fields,
		slog.Any(slog.LevelKey, styled(h.pal.level(r.Level).Render(levelText))))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			fields = append(fields,
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	recs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		recs = append(recs, a)

		return true
	})

	fields = append(fields, h.nest(recs)...)

	var buf bytes.Buffer

	if h.format == FormatJSON {
		h.writeObject(&buf, fields, 1)
	} else {
		h.writeLine(&buf, "", fields)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// writeLine writes fields as space-separated key=value pairs, flattening
// groups into dotted keys.
func (h *prettyHandler) writeLine(buf *bytes.Buffer, prefix string, fields []slog.Attr) {
	for _, a := range fields {
		v := a.Value.Resolve()
		if a.Key == "" && v.Kind() != slog.KindGroup {
			continue
		}

		key := prefix + a.Key

		if v.Kind() == slog.KindGroup {
			sub := key + "."
			if a.Key == "" {
				sub = prefix
			}

			h.writeLine(buf, sub, v.Group())

			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.pal.key.Render(key))
		buf.WriteByte('=')
		buf.WriteString(h.value(v))
	}
}

// writeObject writes fields as an indented block, one field per line,
// with groups as nested blocks.
func (h *prettyHandler) writeObject(buf *bytes.Buffer, fields []slog.Attr, depth int) {
	pad := strings.Repeat("  ", depth)

	buf.WriteString("{\n")

	first := true

	for _, a := range fields {
		v := a.Value.Resolve()
		if a.Key == "" && v.Kind() != slog.KindGroup {
			continue
		}

		if !first {
			buf.WriteString(",\n")
		}

		first = false

		buf.WriteString(pad)
		buf.WriteString(h.pal.key.Render(a.Key))
		buf.WriteString(": ")

		if v.Kind() == slog.KindGroup {
			h.writeObject(buf, v.Group(), depth+1)

			continue
		}

		buf.WriteString(h.value(v))
	}

	buf.WriteString("\n")
	buf.WriteString(strings.Repeat("  ", depth-1))
	buf.WriteString("}")
}

func (h *prettyHandler) value(v slog.Value) string {
	p := h.pal

	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())
	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")
	case slog.KindDuration:
		return p.dur.Render(v.Duration().String())
	case slog.KindTime:
		return p.when.Render(v.Time().Format(time.RFC3339Nano))
	}

	switch a := v.Any().(type) {
	case nil:
		return p.null.Render("null")
	case styled:
		return string(a)
	}

	return p.str.Render(v.String())
}
