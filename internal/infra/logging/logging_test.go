package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"case-portal/internal/config"

	"github.com/rs/zerolog"
)

func TestRedact(t *testing.T) {
	cases := []struct {
		in   string
		dev  bool
		want string
	}{
		{"jane@example.com", true, "jane@example.com"},
		{"jane@example.com", false, "jane...om"},
		{"short", false, "***"},
		{"", false, "***"},
	}
	for _, c := range cases {
		if got := Redact(c.in, c.dev); got != c.want {
			t.Errorf("Redact(%q, %v) = %q, want %q", c.in, c.dev, got, c.want)
		}
	}
}

func TestWithAddsContextFields(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	base := NewWithWriter(&buf, config.LogConfig{Level: "debug", Format: "json"}, false)

	ctx := WithTraceID(context.Background(), "tr-1")
	ctx = WithSessionID(ctx, "sess-1")
	ctx = WithCaseID(ctx, "CASE-1")
	With(ctx, base).Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	for k, want := range map[string]string{"trace_id": "tr-1", "session_id": "sess-1", "case_id": "CASE-1", "message": "hello"} {
		if line[k] != want {
			t.Errorf("%s = %v, want %q", k, line[k], want)
		}
	}
	if TraceID(ctx) != "tr-1" {
		t.Errorf("TraceID = %q", TraceID(ctx))
	}
}

func TestLevelFiltering(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LogConfig{Level: "warn", Format: "json"}, false)
	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info written at warn level: %q", buf.String())
	}
	l.Warn().Msg("kept")
	if buf.Len() == 0 {
		t.Fatal("warn not written")
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LogConfig{Level: "loud"}, false)
	l.Debug().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("debug written at default level: %q", buf.String())
	}
}
