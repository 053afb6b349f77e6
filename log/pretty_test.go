package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPretty_TextLine(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatText), WithTimeLayout("none"), WithLevel(LevelTrace))
	l.With(slog.String("pkg", "lang")).
		WithGroup("scope").
		Trace("push",
			slog.Int("depth", 2),
			slog.Bool("top", false),
			slog.Duration("took", 3*time.Millisecond),
		)

	want := "level=TRACE msg=push pkg=lang scope.depth=2 scope.top=false scope.took=3ms\n"
	if got := buf.String(); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestPretty_NoColorWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatText))
	l.Error("boom", slog.Bool("fatal", true))

	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("escape sequences written to a non-terminal: %q", buf.String())
	}
}

func TestPretty_JSONBlock(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithTimeLayout("none"))
	l.Info("parsed",
		slog.Int("statements", 3),
		slog.Group("cache", slog.Bool("hit", true)),
		slog.Any("missing", nil),
	)

	want := strings.Join([]string{
		"{",
		"  level: INFO,",
		"  msg: parsed,",
		"  statements: 3,",
		"  cache: {",
		"    hit: true",
		"  },",
		"  missing: null",
		"}",
		"",
	}, "\n")

	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPretty_TimeLayoutApplies(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatText), WithTimeLayout("2006"))
	l.Info("x")

	year := time.Now().Format("2006")
	if !strings.HasPrefix(buf.String(), "time="+year+" ") {
		t.Errorf("time attribute not formatted with layout: %q", buf.String())
	}
}

func TestPretty_Caller(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatText), WithCaller(true))
	l.Warn("where")

	if !strings.Contains(buf.String(), "pretty_test.go:") {
		t.Errorf("source missing: %q", buf.String())
	}
}
