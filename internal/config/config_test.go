package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "campaigns")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "campaigns")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Server.BasePath != "/api/v1" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Scheduler.CampaignSweepInterval != 5*time.Minute {
		t.Fatalf("CampaignSweepInterval = %v, want 5m", cfg.Scheduler.CampaignSweepInterval)
	}
	if cfg.Lifecycle.StrictWindowOrdering {
		t.Fatal("strict window ordering should default to off")
	}
	if got := cfg.Database.DSN(); got != "host=localhost port=5432 user=campaigns password=secret dbname=campaigns sslmode=disable" {
		t.Fatalf("DSN = %q", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("STRICT_WINDOW_ORDERING", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Lifecycle.StrictWindowOrdering {
		t.Fatal("expected strict window ordering")
	}
	if len(cfg.Server.CORSAllowedOrigins) != 2 {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("AccessTokenTTL = %v", cfg.Auth.AccessTokenTTL)
	}
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("DB_HOST", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error without database settings")
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	setRequired(t)
	t.Setenv("CAMPAIGN_SWEEP_INTERVAL", "0s")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a zero sweep interval")
	}
}
