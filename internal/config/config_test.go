package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8700 {
		t.Errorf("port: got %d, want 8700", cfg.Server.Port)
	}
	if cfg.Scoring.DefaultWeights.Size != 25 {
		t.Errorf("size weight: got %.0f, want 25", cfg.Scoring.DefaultWeights.Size)
	}
	if cfg.Scoring.BatchConcurrency != 8 {
		t.Errorf("batch concurrency: got %d, want 8", cfg.Scoring.BatchConcurrency)
	}
	if cfg.Recalc.MinDecisions != 5 {
		t.Errorf("min decisions: got %d, want 5", cfg.Recalc.MinDecisions)
	}
	if cfg.RecalcInterval() != time.Hour {
		t.Errorf("recalc interval: got %v, want 1h", cfg.RecalcInterval())
	}
	if cfg.Scoring.Geography.FullScore != 95 {
		t.Errorf("geo full score: got %.0f, want 95", cfg.Scoring.Geography.FullScore)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9100
scoring:
  default_weights:
    size: 40
    geography: 20
    service: 20
    owner_goals: 20
  batch_concurrency: 4
recalc:
  min_decisions: 10
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port: got %d, want 9100", cfg.Server.Port)
	}
	if cfg.Scoring.DefaultWeights.Size != 40 {
		t.Errorf("size weight: got %.0f, want 40", cfg.Scoring.DefaultWeights.Size)
	}
	if cfg.Recalc.MinDecisions != 10 {
		t.Errorf("min decisions: got %d, want 10", cfg.Recalc.MinDecisions)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("metrics port: got %d, want 8701", cfg.Server.MetricsPort)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FITSCORE_PORT", "9200")
	t.Setenv("FITSCORE_DATABASE_URL", "postgres://test")
	t.Setenv("FITSCORE_RECALC_ENABLED", "false")
	t.Setenv("FITSCORE_RECALC_INTERVAL_MS", "60000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("port: got %d, want 9200", cfg.Server.Port)
	}
	if cfg.Database.URL != "postgres://test" {
		t.Errorf("database url: got %q", cfg.Database.URL)
	}
	if cfg.Recalc.Enabled {
		t.Error("recalc should be disabled")
	}
	if cfg.RecalcInterval() != time.Minute {
		t.Errorf("recalc interval: got %v, want 1m", cfg.RecalcInterval())
	}
}
