package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://api.inkeep.com" {
		t.Errorf("Unexpected default base URL: %q", cfg.API.BaseURL)
	}
	if cfg.Sync.MaxAttempts != 3 {
		t.Errorf("Unexpected default max attempts: %d", cfg.Sync.MaxAttempts)
	}
	if cfg.GetOracleTimeout() != 120*time.Second {
		t.Errorf("Unexpected default oracle timeout: %v", cfg.GetOracleTimeout())
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.yaml")
	content := `
api:
  base_url: https://api.example.com
  timeout: 10s
sync:
  max_attempts: 5
  volatile_paths:
    - lastSeenAt
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("File override not applied: %q", cfg.API.BaseURL)
	}
	if cfg.GetAPITimeout() != 10*time.Second {
		t.Errorf("Timeout not parsed: %v", cfg.GetAPITimeout())
	}
	if cfg.Sync.MaxAttempts != 5 {
		t.Errorf("Max attempts not applied: %d", cfg.Sync.MaxAttempts)
	}
	if len(cfg.Sync.VolatilePaths) != 1 || cfg.Sync.VolatilePaths[0] != "lastSeenAt" {
		t.Errorf("Volatile paths not applied: %v", cfg.Sync.VolatilePaths)
	}
	// Untouched sections keep their defaults.
	if cfg.Oracle.Model != "gemini-2.5-flash" {
		t.Errorf("Default oracle model lost: %q", cfg.Oracle.Model)
	}
}

func TestEnvOverridesWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.yaml")
	content := `
api:
  api_key: from-file
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("INKEEP_API_KEY", "from-env")
	t.Setenv("INKEEP_API_URL", "https://staging.example.com")
	t.Setenv("GEMINI_API_KEY", "gemini-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.APIKey != "from-env" {
		t.Errorf("Environment must override file: %q", cfg.API.APIKey)
	}
	if cfg.API.BaseURL != "https://staging.example.com" {
		t.Errorf("Base URL override not applied: %q", cfg.API.BaseURL)
	}
	if cfg.Oracle.APIKey != "gemini-env" {
		t.Errorf("Oracle key override not applied: %q", cfg.Oracle.APIKey)
	}
}

func TestInvalidTimeoutFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = "not-a-duration"
	if cfg.GetAPITimeout() != 30*time.Second {
		t.Errorf("Expected fallback timeout, got %v", cfg.GetAPITimeout())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sync.yaml")
	cfg := DefaultConfig()
	cfg.Sync.MaxAttempts = 7
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Sync.MaxAttempts != 7 {
		t.Errorf("Round trip lost max attempts: %d", loaded.Sync.MaxAttempts)
	}
}
