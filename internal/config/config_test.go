package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %s, want :8080", cfg.Server.Addr)
	}
	if cfg.Stream.ScoreStream != "scores.live" {
		t.Errorf("stream = %s, want scores.live", cfg.Stream.ScoreStream)
	}
	if cfg.Scoring.Strict {
		t.Error("strict mode must default to off (source-compatible leniency)")
	}
	if cfg.Scoring.PersistRetries != 3 {
		t.Errorf("persist retries = %d, want 3", cfg.Scoring.PersistRetries)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("STRICT_MATCHES", "true")
	t.Setenv("PERSIST_TIMEOUT", "250ms")
	t.Setenv("UNDO_DEPTH", "3")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %s", cfg.Server.Addr)
	}
	if !cfg.Scoring.Strict {
		t.Error("strict override ignored")
	}
	if cfg.Scoring.PersistTimeout != 250*time.Millisecond {
		t.Errorf("persist timeout = %v", cfg.Scoring.PersistTimeout)
	}
	if cfg.Scoring.UndoDepth != 3 {
		t.Errorf("undo depth = %d", cfg.Scoring.UndoDepth)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
}
