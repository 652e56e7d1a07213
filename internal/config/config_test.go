package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.Presence.StaleAfterMinutes != 5 {
		t.Errorf("expected stale_after_minutes 5, got %d", cfg.Presence.StaleAfterMinutes)
	}
	if cfg.Notify.Probability != 0.3 {
		t.Errorf("expected notify probability 0.3, got %f", cfg.Notify.Probability)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.horizon.yml")

	original := DefaultConfig()
	original.Port = 9000
	original.DataDir = "/tmp/horizon-test"
	original.AI.Model = "openai/gpt-4o"
	original.AI.Temperature = 0.2
	original.Notify.Simulate = false

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.Port != original.Port {
		t.Errorf("port: got %d, want %d", loaded.Port, original.Port)
	}
	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.AI.Model != original.AI.Model {
		t.Errorf("ai.model: got %q, want %q", loaded.AI.Model, original.AI.Model)
	}
	if loaded.AI.Temperature != original.AI.Temperature {
		t.Errorf("ai.temperature: got %f, want %f", loaded.AI.Temperature, original.AI.Temperature)
	}
	if loaded.Notify.Simulate != original.Notify.Simulate {
		t.Errorf("notify.simulate: got %v, want %v", loaded.Notify.Simulate, original.Notify.Simulate)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Port != 8080 {
		t.Errorf("expected default port, got %d", loaded.Port)
	}
}

func TestEnvOverride(t *testing.T) {
	os.Setenv("HORIZON_PORT", "7777")
	defer os.Unsetenv("HORIZON_PORT")

	loaded, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Port != 7777 {
		t.Errorf("expected env override port 7777, got %d", loaded.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Port = 0 }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"zero token ttl", func(c *Config) { c.TokenTTLMinutes = 0 }},
		{"empty model", func(c *Config) { c.AI.Model = "" }},
		{"negative temperature", func(c *Config) { c.AI.Temperature = -1 }},
		{"probability above one", func(c *Config) { c.Notify.Probability = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
