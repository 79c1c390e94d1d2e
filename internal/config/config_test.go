package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "DATABASE_URL", "DATA_SERVICE_URL", "DATA_SERVICE_KEY", "DATA_SERVICE_TIMEOUT", "TRUST_OWNER_HEADER", "LOG_LEVEL", "LOG_DEVELOPMENT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseURL != "./architecta.db" {
		t.Fatalf("DatabaseURL = %q, want ./architecta.db", cfg.DatabaseURL)
	}
	if cfg.DataServiceTimeout != 15*time.Second {
		t.Fatalf("DataServiceTimeout = %v, want 15s", cfg.DataServiceTimeout)
	}
	if cfg.UsesDataService() {
		t.Fatal("UsesDataService() = true with no DATA_SERVICE_URL")
	}
	if cfg.TrustOwnerHeader {
		t.Fatal("TrustOwnerHeader = true by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATA_SERVICE_URL", "https://data.example.com")
	t.Setenv("DATA_SERVICE_TIMEOUT", "3s")
	t.Setenv("LOG_DEVELOPMENT", "true")
	t.Setenv("TRUST_OWNER_HEADER", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Fatalf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if !cfg.UsesDataService() {
		t.Fatal("UsesDataService() = false with DATA_SERVICE_URL set")
	}
	if cfg.DataServiceTimeout != 3*time.Second {
		t.Fatalf("DataServiceTimeout = %v, want 3s", cfg.DataServiceTimeout)
	}
	if !cfg.LogDevelopment {
		t.Fatal("LogDevelopment = false, want true")
	}
	if !cfg.TrustOwnerHeader {
		t.Fatal("TrustOwnerHeader = false, want true")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("DATA_SERVICE_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid DATA_SERVICE_TIMEOUT")
	}
}
