package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("hdf")
	l.SetOutput(&buf)
	if l.LogLevel() != LogLevelDefault {
		t.Error("wrong default level", l.LogLevel())
		return
	}
	l.Info("hidden")
	l.Warnf("vdata %d skipped", 7)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info printed at warn level", out)
		return
	}
	if !strings.Contains(out, "WARN  hdf: vdata 7 skipped") {
		t.Error("wrong warning", out)
		return
	}
	old := l.SetLogLevel(LevelInfo)
	if old != LevelWarn {
		t.Error("wrong old level", old)
		return
	}
	buf.Reset()
	l.Info("shown")
	if !strings.Contains(buf.String(), "INFO  hdf: shown") {
		t.Error("info not printed", buf.String())
	}
}

func TestLevelFromInt(t *testing.T) {
	for _, tc := range []struct {
		in   int
		want LogLevel
	}{
		{-5, LevelFatal}, {0, LevelFatal}, {1, LevelError}, {2, LevelWarn}, {3, LevelInfo}, {9, LevelInfo},
	} {
		if got := LevelFromInt(tc.in); got != tc.want {
			t.Error(tc.in, "gave", got, "expected", tc.want)
			return
		}
	}
}

func TestParseLevel(t *testing.T) {
	if l, ok := ParseLevel("Warn"); !ok || l != LevelWarn {
		t.Error("warn not parsed", l, ok)
		return
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Error("bogus level parsed")
	}
}

func TestSetInvalidLevel(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewLogger("x").SetLogLevel(LevelMax + 1)
}
