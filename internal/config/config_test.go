package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("ADMIN_API_KEY", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Flow.SubmitDelay != 2*time.Second {
		t.Errorf("expected 2s submit delay, got %s", cfg.Flow.SubmitDelay)
	}
	if cfg.Flow.StateTTL != time.Hour {
		t.Errorf("expected state ttl to follow redis ttl (1h), got %s", cfg.Flow.StateTTL)
	}
	if !cfg.Runtime.Dev {
		t.Error("expected dev flag to be recorded")
	}
}

func TestLoadConfig_MissingFileOutsideDev(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false); err == nil {
		t.Fatal("expected error for missing config outside dev mode")
	}
}

func TestLoadConfig_ParsesYAMLAndEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("REDIS_URL", "")
	t.Setenv("ADMIN_API_KEY", "")

	path := writeConfig(t, `
http:
  port: 9090
  request_timeout: 20s
log:
  level: debug
  format: console
admin:
  api_key: k
  jwt_secret: s
database:
  url: postgres://file/db
flow:
  submit_delay: 500ms
  submissions_per_hour: 3
`)
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.HTTP.RequestTimeout != 20*time.Second {
		t.Errorf("http section not parsed: %+v", cfg.HTTP)
	}
	if cfg.Database.URL != "postgres://env/db" {
		t.Errorf("expected env override for database url, got %q", cfg.Database.URL)
	}
	if cfg.Flow.SubmitDelay != 500*time.Millisecond || cfg.Flow.SubmissionsPerHour != 3 {
		t.Errorf("flow section not parsed: %+v", cfg.Flow)
	}
}

func TestValidate(t *testing.T) {
	t.Run("timeout must exceed submit delay", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.HTTP.RequestTimeout = time.Second
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("api key needs jwt secret outside dev", func(t *testing.T) {
		cfg := &Config{Admin: AdminConfig{APIKey: "k"}}
		applyDefaults(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error")
		}
		cfg.Runtime.Dev = true
		if err := cfg.Validate(); err != nil {
			t.Fatalf("dev mode should allow missing secret: %v", err)
		}
	})
}
