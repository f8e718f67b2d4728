package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// restoreLevel puts the shared level back after a test changes it.
func restoreLevel(t *testing.T) {
	t.Helper()
	prev := GetLevel()
	t.Cleanup(func() { SetLevel(prev) })
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNew_Validation(t *testing.T) {
	restoreLevel(t)

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"json", Config{Level: "info", Format: "json"}, false},
		{"text", Config{Level: "debug", Format: "text"}, false},
		{"console alias", Config{Level: "warn", Format: "console"}, false},
		{"upper case", Config{Level: "ERROR", Format: "JSON"}, false},
		{"warning alias", Config{Level: "warning"}, false},
		{"unknown level", Config{Level: "trace"}, true},
		{"unknown format", Config{Level: "info", Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Output = &bytes.Buffer{}
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%+v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Fatal("New() returned nil logger without error")
			}
		})
	}
}

// Every level accepted by ValidLevel must also be accepted by New, since
// configuration validation relies on ValidLevel alone.
func TestValidLevel_AgreesWithNew(t *testing.T) {
	restoreLevel(t)

	levels := []string{"debug", "info", "warn", "warning", "error", "Info", "DEBUG", "", "trace", "fatal", "verbose"}
	for _, level := range levels {
		_, err := New(Config{Level: level, Output: &bytes.Buffer{}})
		valid := ValidLevel(level)

		if valid && err != nil {
			t.Errorf("ValidLevel(%q) = true but New() failed: %v", level, err)
		}
		if !valid && level != "" && err == nil {
			t.Errorf("ValidLevel(%q) = false but New() accepted it", level)
		}
	}
	if ValidLevel("") {
		t.Error("ValidLevel(\"\") = true, want false")
	}
}

func TestNew_TextFormat(t *testing.T) {
	restoreLevel(t)

	for _, format := range []string{"text", "console"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "info", Format: format, Output: &buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			l.Info("server listening", "addr", ":3000")

			out := buf.String()
			if !strings.Contains(out, `msg="server listening"`) || !strings.Contains(out, "addr=:3000") {
				t.Errorf("unexpected text output %q", out)
			}
		})
	}
}

// SetLevel is what a configuration reload calls; loggers built earlier
// must pick up the new level without being rebuilt.
func TestSetLevel_AppliesToExistingLoggers(t *testing.T) {
	restoreLevel(t)

	l, buf := newBufferLogger(t)
	child := l.With("component", "watcher")

	l.Debug("before reload")
	child.Debug("before reload")
	if buf.Len() != 0 {
		t.Fatalf("debug output at info level: %q", buf.String())
	}

	SetLevel("debug")
	l.Debug("after reload")
	child.Debug("after reload")

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries after SetLevel(debug), want 2", len(entries))
	}
	if entries[1]["component"] != "watcher" {
		t.Errorf("child logger lost its attributes: %v", entries[1])
	}

	buf.Reset()
	SetLevel("error")
	l.Warn("suppressed")
	l.Error("kept")
	entries = decodeLines(t, buf)
	if len(entries) != 1 || entries[0]["msg"] != "kept" {
		t.Errorf("entries at error level = %v, want only %q", entries, "kept")
	}
}

func TestSetLevel_GetLevel(t *testing.T) {
	restoreLevel(t)

	tests := []struct {
		set  string
		want string
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"ERROR", "error"},
		{"bogus", "info"},
		{"", "info"},
	}

	for _, tt := range tests {
		SetLevel(tt.set)
		if got := GetLevel(); got != tt.want {
			t.Errorf("SetLevel(%q): GetLevel() = %q, want %q", tt.set, got, tt.want)
		}
	}
}

// Mirrors what the request ID middleware and handlers do: the ID is stored
// on the request context and recovered through L alongside the logger's
// own attributes.
func TestL_RequestIDWithLoggerAttributes(t *testing.T) {
	restoreLevel(t)

	l, buf := newBufferLogger(t)
	ctx := WithLogger(context.Background(), l.With("route", "root"))
	ctx = WithRequestID(ctx, "01J9ZQ4V6M3X8K2T5N7R1B0C4D")

	L(ctx).Error("failed to encode response", "authorization", "Bearer abc.def")

	entries := decodeLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e["request_id"] != "01J9ZQ4V6M3X8K2T5N7R1B0C4D" {
		t.Errorf("request_id = %v", e["request_id"])
	}
	if e["route"] != "root" {
		t.Errorf("route = %v, want root", e["route"])
	}
	if e["authorization"] != "Bearer "+redactedValue {
		t.Errorf("authorization = %v, want redacted", e["authorization"])
	}
}

func TestSetDefault_RoutesSlog(t *testing.T) {
	restoreLevel(t)
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, buf := newBufferLogger(t)
	SetDefault(l)

	if Default().Slog() != l.Slog() {
		t.Error("Default() should return the logger passed to SetDefault")
	}
	if FromContext(context.Background()).Slog() != l.Slog() {
		t.Error("FromContext without a logger should fall back to the new default")
	}

	slog.Info("via slog", "password", "hunter2")
	entries := decodeLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0]["password"] != redactedValue {
		t.Errorf("password = %v, want redacted", entries[0]["password"])
	}
}
