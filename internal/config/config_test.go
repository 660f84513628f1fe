package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "SESSION_TTL_HOURS", "WORDS_FILE", "OTEL_ENABLED"} {
		t.Setenv(k, "")
	}
	c, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Addr() != ":5175" || c.LogLevel != "info" || c.SessionTTL() != 24*time.Hour {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.WordsFile != "" || c.OTelEnabled {
		t.Fatalf("unexpected optional values: %+v", c)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("WORDS_FILE", "/tmp/words.txt")
	c, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Addr() != ":9000" || c.SessionTTL() != 2*time.Hour || !c.OTelEnabled || c.WordsFile != "/tmp/words.txt" {
		t.Fatalf("overrides not applied: %+v", c)
	}
}

func TestParseRejectsBadTTL(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "0")
	if _, err := Parse(); err == nil {
		t.Fatal("expected error for zero TTL")
	}
	t.Setenv("SESSION_TTL_HOURS", "soon")
	if _, err := Parse(); err == nil {
		t.Fatal("expected error for non-numeric TTL")
	}
}
