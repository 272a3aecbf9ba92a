package util

import (
	"strings"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	version := GetVersion()
	if version == "" {
		t.Error("Expected a non-empty version")
	}
	if strings.ContainsAny(version, " \n") {
		t.Errorf("Expected a trimmed version string, got '%s'", version)
	}
}

func TestGetNameAndVersion(t *testing.T) {
	nv := GetNameAndVersion()
	if !strings.HasPrefix(nv, Name+" / ") {
		t.Errorf("Expected '%s / <version>', got '%s'", Name, nv)
	}
}

func TestNormalizeInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "hello world", "hello world"},
		{"newlines become spaces", "hello\nworld", "hello world"},
		{"html escaped", "<b>bold</b>", "&lt;b&gt;bold&lt;/b&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeInput(tt.input); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-10 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-48 * time.Hour), "2d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRelativeTime(tt.t); got != tt.want {
				t.Errorf("Expected '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Expected 'short', got '%s'", got)
	}

	long := strings.Repeat("a", 20)
	got := Truncate(long, 10)
	if len(got) != 10 {
		t.Errorf("Expected length 10, got %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected ellipsis suffix, got '%s'", got)
	}
}
